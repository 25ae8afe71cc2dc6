package diorama

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func newTestScene() *Scene {
	return NewScene(NewCamera(60, 16.0/9.0, 0.1, 8))
}

func TestNewSceneNilCameraPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil camera")
		}
	}()
	NewScene(nil)
}

func TestSceneHelperPerPositionedLight(t *testing.T) {
	s := newTestScene()
	s.SetHelpersVisible(true)
	s.AddLight(NewAmbientLight(ColorWhite, 0.55))
	s.AddLight(NewDirectionalLight(ColorWhite, 1, mgl64.Vec3{3, 4, 2}, mgl64.Vec3{}))
	s.AddLight(NewPointLight(ColorWhite, 1, mgl64.Vec3{-2, 1, 1}, 6, 2))

	if len(s.Lights()) != 3 {
		t.Fatalf("lights = %d, want 3", len(s.Lights()))
	}
	if len(s.Helpers()) != 2 {
		t.Fatalf("helpers = %d, want 2", len(s.Helpers()))
	}
	for _, h := range s.Helpers() {
		if h.Parent != s.Root() {
			t.Error("helper should be attached to the root")
		}
	}
}

func TestSceneHelpersToggle(t *testing.T) {
	s := newTestScene()
	s.AddLight(NewPointLight(ColorWhite, 1, mgl64.Vec3{}, 0, 2))
	if len(s.Helpers()) != 0 {
		t.Fatal("helpers should be off by default")
	}

	s.SetHelpersVisible(true)
	if len(s.Helpers()) != 1 || s.Root().NumChildren() != 1 {
		t.Fatalf("after enable: helpers=%d children=%d, want 1 and 1", len(s.Helpers()), s.Root().NumChildren())
	}
	s.SetHelpersVisible(true)
	if len(s.Helpers()) != 1 {
		t.Fatal("enabling twice should not duplicate helpers")
	}

	s.SetHelpersVisible(false)
	if len(s.Helpers()) != 0 || s.Root().NumChildren() != 0 {
		t.Fatalf("after disable: helpers=%d children=%d, want 0", len(s.Helpers()), s.Root().NumChildren())
	}
}

func TestSceneHelpersDoNotChangeLights(t *testing.T) {
	plain := newTestScene()
	dev := newTestScene()
	dev.SetHelpersVisible(true)
	for _, s := range []*Scene{plain, dev} {
		s.AddLight(NewAmbientLight(ColorWhite, 0.55))
		s.AddLight(NewDirectionalLight(ColorWhite, 1, mgl64.Vec3{3, 4, 2}, mgl64.Vec3{}))
	}
	if len(plain.Lights()) != len(dev.Lights()) {
		t.Error("helpers must be purely additive")
	}
}

func TestSceneSetModelOnce(t *testing.T) {
	s := newTestScene()
	if s.HasModel() {
		t.Fatal("new scene should have no model")
	}
	if err := s.SetModel(nil); err == nil {
		t.Error("SetModel(nil) should fail")
	}

	m := NewMeshNode("box", NewBoxMesh(1, 1, 1, ColorWhite))
	if err := s.SetModel(m); err != nil {
		t.Fatalf("SetModel: %v", err)
	}
	if !s.HasModel() || s.Model() != m || m.Parent != s.Root() {
		t.Error("model should be attached to the root")
	}

	err := s.SetModel(NewGroup("other"))
	if !errors.Is(err, ErrModelAlreadySet) {
		t.Errorf("second SetModel = %v, want ErrModelAlreadySet", err)
	}
}

func TestFogFactor(t *testing.T) {
	f := Fog{Enabled: true, Near: 4, Far: 8}
	if f.factor(2) != 0 {
		t.Errorf("before near = %v, want 0", f.factor(2))
	}
	if f.factor(10) != 1 {
		t.Errorf("past far = %v, want 1", f.factor(10))
	}
	if !approxEqual(f.factor(6), 0.5, epsilon) {
		t.Errorf("midpoint = %v, want 0.5", f.factor(6))
	}
	if (Fog{Near: 4, Far: 8}).factor(10) != 0 {
		t.Error("disabled fog should not blend")
	}
}
