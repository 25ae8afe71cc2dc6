package diorama

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 60.0, cfg.Camera.FOV)
	assert.Equal(t, 0.1, cfg.Camera.Near)
	assert.Equal(t, 8.0, cfg.Camera.Far)
	assert.Equal(t, 0.55, cfg.Lighting.AmbientIntensity)
	assert.Equal(t, DefaultFollowLerp, cfg.Follow.Lerp)
	assert.True(t, cfg.DevMode)
	assert.True(t, cfg.Preloader)
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
model: https://example.com/ship.glb
camera:
  fov: 45
post:
  tone_mapping: reinhard
  vignette:
    darkness: 0.5
`))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/ship.glb", cfg.Model)
	assert.Equal(t, 45.0, cfg.Camera.FOV)
	assert.Equal(t, 0.1, cfg.Camera.Near, "unset keys keep defaults")
	assert.Equal(t, ToneMappingReinhard, cfg.toneMapping())
	assert.Equal(t, 0.5, cfg.Post.Vignette.Darkness)
	assert.Equal(t, 1.0, cfg.Post.Vignette.Offset)
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"fov":          "camera: {fov: 0}",
		"near>=far":    "camera: {near: 9, far: 8}",
		"window":       "window: {width: 0}",
		"lerp":         "follow: {lerp: 1.5}",
		"light type":   "lighting: {lights: [{type: spot, color: '#ffffff'}]}",
		"light color":  "lighting: {lights: [{type: point, color: red}]}",
		"tone mapping": "post: {tone_mapping: filmic}",
		"exposure":     "post: {exposure: 0}",
		"fog range":    "scene: {fog: {enabled: true, near: 5, far: 5}}",
		"background":   "scene: {background: '#12'}",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseConfigBadYAML(t *testing.T) {
	_, err := ParseConfig([]byte("camera: [1, 2"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diorama.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dev_mode: false\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.DevMode)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigLights(t *testing.T) {
	cfg := DefaultConfig()
	lights := cfg.lights()
	require.Len(t, lights, 3)

	assert.Equal(t, LightAmbient, lights[0].Type)
	assert.Equal(t, 0.55, lights[0].Intensity)
	assert.Equal(t, LightDirectional, lights[1].Type)
	assert.Equal(t, mgl64.Vec3{3, 4, 2}, lights[1].Position)
	assert.Equal(t, LightPoint, lights[2].Type)
	assert.Equal(t, 6.0, lights[2].Distance)
	assert.Equal(t, 2.0, lights[2].Decay)
}

func TestConfigFollowController(t *testing.T) {
	cfg := DefaultConfig()
	f := cfg.followController()
	assert.Equal(t, 3.0, f.ScrollXZ)
	assert.Equal(t, 0.6, f.ScrollY)
	assert.Equal(t, mgl64.Vec3{0, 0.4, 0}, f.Offset)
	assert.Equal(t, 0.05, f.Lerp)
}

func TestConfigFogDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scene.Fog.Enabled = false
	assert.Equal(t, Fog{}, cfg.fog())
}
