package diorama

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is an indexed triangle list in the owning node's local space.
// Normals and Colors are optional; when present they have one entry per
// position. A nil Indices slice means positions form consecutive triangles.
type Mesh struct {
	Positions []mgl64.Vec3
	Normals   []mgl64.Vec3
	Colors    []Color
	Indices   []uint32
	// BaseColor tints every vertex (material base color).
	BaseColor Color
	// DoubleSided disables back-face culling.
	DoubleSided bool
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	if m.Indices != nil {
		return len(m.Indices) / 3
	}
	return len(m.Positions) / 3
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c uint32) {
	if m.Indices != nil {
		return m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
	}
	j := uint32(3 * i)
	return j, j + 1, j + 2
}

// vertexColor returns the tinted color of vertex i.
func (m *Mesh) vertexColor(i uint32) Color {
	if int(i) < len(m.Colors) {
		c := m.Colors[i]
		return Color{c.R * m.BaseColor.R, c.G * m.BaseColor.G, c.B * m.BaseColor.B, c.A * m.BaseColor.A}
	}
	return m.BaseColor
}

// Bounds returns the local-space axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (lo, hi mgl64.Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < lo[k] {
				lo[k] = p[k]
			}
			if p[k] > hi[k] {
				hi[k] = p[k]
			}
		}
	}
	return lo, hi
}

// faceNormal returns the unit normal of a counter-clockwise triangle.
// Degenerate triangles return the zero vector.
func faceNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return n.Mul(1 / l)
}

// NewBoxMesh builds an axis-aligned box of the given size centered at the
// origin, with per-face normals (24 vertices, 12 triangles).
func NewBoxMesh(w, h, d float64, c Color) *Mesh {
	x, y, z := w/2, h/2, d/2
	type face struct {
		n       mgl64.Vec3
		corners [4]mgl64.Vec3
	}
	faces := []face{
		{mgl64.Vec3{0, 0, 1}, [4]mgl64.Vec3{{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z}}},
		{mgl64.Vec3{0, 0, -1}, [4]mgl64.Vec3{{x, -y, -z}, {-x, -y, -z}, {-x, y, -z}, {x, y, -z}}},
		{mgl64.Vec3{1, 0, 0}, [4]mgl64.Vec3{{x, -y, z}, {x, -y, -z}, {x, y, -z}, {x, y, z}}},
		{mgl64.Vec3{-1, 0, 0}, [4]mgl64.Vec3{{-x, -y, -z}, {-x, -y, z}, {-x, y, z}, {-x, y, -z}}},
		{mgl64.Vec3{0, 1, 0}, [4]mgl64.Vec3{{-x, y, z}, {x, y, z}, {x, y, -z}, {-x, y, -z}}},
		{mgl64.Vec3{0, -1, 0}, [4]mgl64.Vec3{{-x, -y, -z}, {x, -y, -z}, {x, -y, z}, {-x, -y, z}}},
	}
	m := &Mesh{BaseColor: c}
	for _, f := range faces {
		base := uint32(len(m.Positions))
		for _, p := range f.corners {
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, f.n)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// NewPlaneMesh builds a w x d plane in the XZ plane facing +Y.
func NewPlaneMesh(w, d float64, c Color) *Mesh {
	x, z := w/2, d/2
	up := mgl64.Vec3{0, 1, 0}
	return &Mesh{
		Positions: []mgl64.Vec3{{-x, 0, z}, {x, 0, z}, {x, 0, -z}, {-x, 0, -z}},
		Normals:   []mgl64.Vec3{up, up, up, up},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
		BaseColor: c,
	}
}
