package diorama

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

func newBoxScene(doubleSided bool) *Scene {
	cam := NewCamera(60, 1, 0.1, 100)
	cam.SetPosition(mgl64.Vec3{0, 0, 5})
	cam.LookAt(mgl64.Vec3{})
	s := NewScene(cam)
	s.AddLight(NewAmbientLight(ColorWhite, 1))
	box := NewBoxMesh(1, 1, 1, ColorWhite)
	box.DoubleSided = doubleSided
	_ = s.SetModel(NewMeshNode("box", box))
	return s
}

func TestRenderPassCullsBackFaces(t *testing.T) {
	s := newBoxScene(false)
	p := NewRenderPass(s)
	p.Apply(nil, ebiten.NewImage(64, 64))

	st := p.Stats()
	if st.Triangles != 2 {
		t.Errorf("Triangles = %d, want 2 (front face only)", st.Triangles)
	}
	if st.Culled != 10 {
		t.Errorf("Culled = %d, want 10", st.Culled)
	}
	if st.Batches != 1 {
		t.Errorf("Batches = %d, want 1", st.Batches)
	}
}

func TestRenderPassDoubleSided(t *testing.T) {
	s := newBoxScene(true)
	p := NewRenderPass(s)
	p.Apply(nil, ebiten.NewImage(64, 64))
	if st := p.Stats(); st.Triangles != 12 || st.Culled != 0 {
		t.Errorf("stats = %+v, want all 12 triangles drawn", st)
	}
}

func TestRenderPassBehindCamera(t *testing.T) {
	s := newBoxScene(true)
	s.Model().Position = mgl64.Vec3{0, 0, 10}
	p := NewRenderPass(s)
	p.Apply(nil, ebiten.NewImage(64, 64))
	if st := p.Stats(); st.Triangles != 0 || st.Culled != 12 || st.Batches != 0 {
		t.Errorf("stats = %+v, want everything culled", st)
	}
}

func TestRenderPassWithoutModel(t *testing.T) {
	s := newTestScene()
	p := NewRenderPass(s)
	p.Apply(nil, ebiten.NewImage(16, 16))
	if st := p.Stats(); st != (RenderStats{}) {
		t.Errorf("stats = %+v, want zero", st)
	}
}

func TestRenderPassHiddenNode(t *testing.T) {
	s := newBoxScene(false)
	s.Model().Visible = false
	p := NewRenderPass(s)
	p.Apply(nil, ebiten.NewImage(64, 64))
	if st := p.Stats(); st.Triangles != 0 || st.Culled != 0 {
		t.Errorf("stats = %+v, hidden nodes should be skipped", st)
	}
}

func TestRenderPassDrawsHelpers(t *testing.T) {
	cam := NewCamera(60, 1, 0.1, 100)
	cam.SetPosition(mgl64.Vec3{0, 0, 5})
	cam.LookAt(mgl64.Vec3{})
	s := NewScene(cam)
	s.SetHelpersVisible(true)
	s.AddLight(NewPointLight(ColorWhite, 1, mgl64.Vec3{}, 0, 2))

	p := NewRenderPass(s)
	p.Apply(nil, ebiten.NewImage(64, 64))
	if st := p.Stats(); st.Lines != 12 {
		t.Errorf("Lines = %d, want 12", st.Lines)
	}
}
