package diorama

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBoxMeshShape(t *testing.T) {
	m := NewBoxMesh(2, 4, 6, ColorWhite)
	if len(m.Positions) != 24 || len(m.Normals) != 24 {
		t.Fatalf("vertices = %d normals = %d, want 24", len(m.Positions), len(m.Normals))
	}
	if m.TriangleCount() != 12 {
		t.Fatalf("TriangleCount = %d, want 12", m.TriangleCount())
	}
	lo, hi := m.Bounds()
	if lo != (mgl64.Vec3{-1, -2, -3}) || hi != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("Bounds = %v..%v, want (-1,-2,-3)..(1,2,3)", lo, hi)
	}
}

func TestBoxMeshWindingMatchesNormals(t *testing.T) {
	m := NewBoxMesh(1, 1, 1, ColorWhite)
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		fn := faceNormal(m.Positions[a], m.Positions[b], m.Positions[c])
		if fn.Dot(m.Normals[a]) < 0.99 {
			t.Errorf("triangle %d: face normal %v disagrees with vertex normal %v", i, fn, m.Normals[a])
		}
	}
}

func TestPlaneMeshFacesUp(t *testing.T) {
	m := NewPlaneMesh(2, 2, ColorWhite)
	a, b, c := m.Triangle(0)
	fn := faceNormal(m.Positions[a], m.Positions[b], m.Positions[c])
	if !vecApproxEqual(fn, mgl64.Vec3{0, 1, 0}, epsilon) {
		t.Errorf("face normal = %v, want +Y", fn)
	}
}

func TestMeshNonIndexed(t *testing.T) {
	m := &Mesh{Positions: make([]mgl64.Vec3, 7)}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", m.TriangleCount())
	}
	a, b, c := m.Triangle(1)
	if a != 3 || b != 4 || c != 5 {
		t.Errorf("Triangle(1) = %d,%d,%d, want 3,4,5", a, b, c)
	}
}

func TestMeshVertexColorTint(t *testing.T) {
	m := &Mesh{
		Positions: make([]mgl64.Vec3, 2),
		Colors:    []Color{{0.5, 1, 1, 1}},
		BaseColor: Color{1, 0.5, 1, 1},
	}
	if got := m.vertexColor(0); got != (Color{0.5, 0.5, 1, 1}) {
		t.Errorf("vertexColor(0) = %v, want (0.5,0.5,1,1)", got)
	}
	if got := m.vertexColor(1); got != m.BaseColor {
		t.Errorf("vertexColor(1) = %v, want base color", got)
	}
}

func TestFaceNormalDegenerate(t *testing.T) {
	p := mgl64.Vec3{1, 1, 1}
	if n := faceNormal(p, p, p); n != (mgl64.Vec3{}) {
		t.Errorf("degenerate normal = %v, want zero", n)
	}
}
