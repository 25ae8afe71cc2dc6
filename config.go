package diorama

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config describes the whole viewer: which model to load, how the window,
// camera, lights and post-processing are set up, and whether devMode
// helpers are enabled.
type Config struct {
	Model     string         `yaml:"model"`
	DevMode   bool           `yaml:"dev_mode"`
	Preloader bool           `yaml:"preloader"`
	Window    WindowConfig   `yaml:"window"`
	Camera    CameraConfig   `yaml:"camera"`
	Follow    FollowConfig   `yaml:"follow"`
	Scene     SceneConfig    `yaml:"scene"`
	Lighting  LightingConfig `yaml:"lighting"`
	Post      PostConfig     `yaml:"post"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type CameraConfig struct {
	FOV  float64 `yaml:"fov"`
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

type FollowConfig struct {
	ScrollXZ float64    `yaml:"scroll_xz"`
	ScrollY  float64    `yaml:"scroll_y"`
	Offset   [3]float64 `yaml:"offset"`
	Lerp     float64    `yaml:"lerp"`
}

type SceneConfig struct {
	Background string    `yaml:"background"`
	Fog        FogConfig `yaml:"fog"`
}

type FogConfig struct {
	Enabled bool    `yaml:"enabled"`
	Color   string  `yaml:"color"`
	Near    float64 `yaml:"near"`
	Far     float64 `yaml:"far"`
}

type LightingConfig struct {
	AmbientIntensity float64       `yaml:"ambient_intensity"`
	AmbientColor     string        `yaml:"ambient_color"`
	Lights           []LightConfig `yaml:"lights"`
}

type LightConfig struct {
	Type      string     `yaml:"type"`
	Color     string     `yaml:"color"`
	Intensity float64    `yaml:"intensity"`
	Position  [3]float64 `yaml:"position"`
	Target    [3]float64 `yaml:"target"`
	Distance  float64    `yaml:"distance"`
	Decay     float64    `yaml:"decay"`
}

type PostConfig struct {
	Vignette    VignetteConfig `yaml:"vignette"`
	ToneMapping string         `yaml:"tone_mapping"`
	Exposure    float64        `yaml:"exposure"`
}

type VignetteConfig struct {
	Offset   float64 `yaml:"offset"`
	Darkness float64 `yaml:"darkness"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Model:     "assets/model.glb",
		DevMode:   true,
		Preloader: true,
		Window:    WindowConfig{Title: "diorama", Width: 1280, Height: 720},
		Camera:    CameraConfig{FOV: 60, Near: 0.1, Far: 8},
		Follow: FollowConfig{
			ScrollXZ: 3,
			ScrollY:  0.6,
			Offset:   [3]float64{0, 0.4, 0},
			Lerp:     DefaultFollowLerp,
		},
		Scene: SceneConfig{
			Background: "#101014",
			Fog:        FogConfig{Enabled: true, Color: "#101014", Near: 4, Far: 8},
		},
		Lighting: LightingConfig{
			AmbientIntensity: 0.55,
			AmbientColor:     "#ffffff",
			Lights: []LightConfig{
				{Type: "directional", Color: "#ffffff", Intensity: 1.2, Position: [3]float64{3, 4, 2}},
				{Type: "point", Color: "#ffb070", Intensity: 2, Position: [3]float64{-2, 1.5, 1}, Distance: 6, Decay: 2},
			},
		},
		Post: PostConfig{
			Vignette:    VignetteConfig{Offset: 1.0, Darkness: 1.1},
			ToneMapping: "aces",
			Exposure:    1,
		},
	}
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
// Keys absent from data keep their default values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML config file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return invalid("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return invalid("camera fov %v", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= 0 || c.Camera.Near >= c.Camera.Far {
		return invalid("camera clip planes near=%v far=%v", c.Camera.Near, c.Camera.Far)
	}
	if c.Follow.Lerp <= 0 || c.Follow.Lerp > 1 {
		return invalid("follow lerp %v", c.Follow.Lerp)
	}
	if _, err := ParseHexColor(c.Scene.Background); err != nil {
		return invalid("scene background: %v", err)
	}
	if c.Scene.Fog.Enabled {
		if _, err := ParseHexColor(c.Scene.Fog.Color); err != nil {
			return invalid("fog color: %v", err)
		}
		if c.Scene.Fog.Far <= c.Scene.Fog.Near {
			return invalid("fog range near=%v far=%v", c.Scene.Fog.Near, c.Scene.Fog.Far)
		}
	}
	if _, err := ParseHexColor(c.Lighting.AmbientColor); err != nil {
		return invalid("ambient color: %v", err)
	}
	for i, l := range c.Lighting.Lights {
		if _, err := l.build(); err != nil {
			return invalid("light %d: %v", i, err)
		}
	}
	if _, err := ParseToneMapping(c.Post.ToneMapping); err != nil {
		return invalid("%v", err)
	}
	if c.Post.Exposure <= 0 {
		return invalid("exposure %v", c.Post.Exposure)
	}
	return nil
}

// build converts a light entry into a Light.
func (l LightConfig) build() (*Light, error) {
	t, ok := lightTypeNames[l.Type]
	if !ok {
		return nil, fmt.Errorf("unknown light type %q", l.Type)
	}
	c, err := ParseHexColor(l.Color)
	if err != nil {
		return nil, err
	}
	if l.Intensity < 0 {
		return nil, fmt.Errorf("negative intensity %v", l.Intensity)
	}
	pos := mgl64.Vec3(l.Position)
	switch t {
	case LightAmbient:
		return NewAmbientLight(c, l.Intensity), nil
	case LightDirectional:
		return NewDirectionalLight(c, l.Intensity, pos, mgl64.Vec3(l.Target)), nil
	default:
		if l.Distance < 0 || l.Decay < 0 {
			return nil, fmt.Errorf("negative distance or decay")
		}
		return NewPointLight(c, l.Intensity, pos, l.Distance, l.Decay), nil
	}
}

// lights builds the ambient light followed by the configured lights.
// The config must be valid.
func (c Config) lights() []*Light {
	ambient, _ := ParseHexColor(c.Lighting.AmbientColor)
	out := []*Light{NewAmbientLight(ambient, c.Lighting.AmbientIntensity)}
	for _, lc := range c.Lighting.Lights {
		l, err := lc.build()
		if err != nil {
			continue
		}
		out = append(out, l)
	}
	return out
}

// fog builds the scene fog. The config must be valid.
func (c Config) fog() Fog {
	if !c.Scene.Fog.Enabled {
		return Fog{}
	}
	col, _ := ParseHexColor(c.Scene.Fog.Color)
	return Fog{Enabled: true, Color: col, Near: c.Scene.Fog.Near, Far: c.Scene.Fog.Far}
}

// background returns the linear clear color. The config must be valid.
func (c Config) background() Color {
	col, _ := ParseHexColor(c.Scene.Background)
	return col
}

// toneMapping returns the output tone mapping. The config must be valid.
func (c Config) toneMapping() ToneMapping {
	t, _ := ParseToneMapping(c.Post.ToneMapping)
	return t
}

// followController builds the camera follow controller.
func (c Config) followController() *FollowController {
	return &FollowController{
		ScrollXZ: c.Follow.ScrollXZ,
		ScrollY:  c.Follow.ScrollY,
		Offset:   mgl64.Vec3(c.Follow.Offset),
		Lerp:     c.Follow.Lerp,
	}
}
