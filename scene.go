package diorama

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrModelAlreadySet is returned by Scene.SetModel when a model subtree is
// already attached.
var ErrModelAlreadySet = errors.New("diorama: scene already has a model")

// Fog blends geometry toward Color between Near and Far view distances.
type Fog struct {
	Enabled   bool
	Color     Color
	Near, Far float64
}

// factor returns the fog blend weight in [0, 1] at view distance d.
func (f Fog) factor(d float64) float64 {
	if !f.Enabled || f.Far <= f.Near {
		return 0
	}
	t := clamp01((d - f.Near) / (f.Far - f.Near))
	return t * t * (3 - 2*t)
}

// Scene is the top-level object that owns the node tree, the camera and the
// lights. Lights are added at startup; the model subtree is attached once
// its load completes. Rendering works with or without the model.
type Scene struct {
	root   *Node
	camera *Camera
	lights []*Light
	model  *Node

	helpers     []*Node
	helperSize  float64
	showHelpers bool

	// Background is the linear clear color.
	Background Color
	// Fog is applied by the geometry pass.
	Fog Fog
}

// NewScene creates a scene viewed through cam, with an empty root group.
func NewScene(cam *Camera) *Scene {
	if cam == nil {
		panic("diorama: scene requires a camera")
	}
	return &Scene{
		root:       NewGroup("root"),
		camera:     cam,
		Background: ColorBlack,
		helperSize: 0.25,
	}
}

// Root returns the scene's root group.
func (s *Scene) Root() *Node {
	return s.root
}

// Camera returns the scene camera.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// Lights returns the scene lights. The returned slice MUST NOT be mutated.
func (s *Scene) Lights() []*Light {
	return s.lights
}

// AddLight adds l to the scene. In helper mode a helper node is attached to
// the root for every light that has a position.
func (s *Scene) AddLight(l *Light) {
	s.lights = append(s.lights, l)
	if s.showHelpers {
		s.addHelper(l)
	}
}

// SetHelpersVisible turns light helpers on for existing and future lights.
// Turning them off detaches the existing helpers.
func (s *Scene) SetHelpersVisible(show bool) {
	if show == s.showHelpers {
		return
	}
	s.showHelpers = show
	if show {
		for _, l := range s.lights {
			s.addHelper(l)
		}
		return
	}
	for _, h := range s.helpers {
		s.root.RemoveChild(h)
	}
	s.helpers = s.helpers[:0]
}

// Helpers returns the attached light helper nodes.
func (s *Scene) Helpers() []*Node {
	return s.helpers
}

func (s *Scene) addHelper(l *Light) {
	h := NewLightHelper(l, s.helperSize)
	if h == nil {
		return
	}
	s.helpers = append(s.helpers, h)
	s.root.AddChild(h)
}

// SetModel attaches the loaded model subtree. Only one model may be attached.
func (s *Scene) SetModel(model *Node) error {
	if model == nil {
		return errors.New("diorama: nil model")
	}
	if s.model != nil {
		return ErrModelAlreadySet
	}
	s.model = model
	s.root.AddChild(model)
	return nil
}

// Model returns the attached model subtree, or nil while it is loading.
func (s *Scene) Model() *Node {
	return s.model
}

// HasModel reports whether the model subtree has been attached.
func (s *Scene) HasModel() bool {
	return s.model != nil
}

// updateWorld refreshes world matrices for the whole tree.
func (s *Scene) updateWorld() {
	updateWorldMatrix(s.root, mgl64.Ident4())
}
