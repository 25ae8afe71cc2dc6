package diorama

import (
	"cmp"
	"image"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// maxBatchVertices caps vertices per DrawTriangles call (uint16 indices).
const maxBatchVertices = 63000

// whiteImage is the solid source texture for triangle submission. 3x3 so
// that sampling the center texel never bleeds past the edge.
var whiteImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(ColorWhite.RGBA())
	return img
}()

var whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)

// RenderStats counts the work done by one geometry pass.
type RenderStats struct {
	Triangles int // submitted
	Culled    int // rejected (behind camera, beyond far plane or back-facing)
	Lines     int // helper segments drawn
	Batches   int // DrawTriangles calls
}

// shadedTriangle is a projected, lit triangle waiting for depth sorting.
type shadedTriangle struct {
	verts [3]ebiten.Vertex
	depth float64
}

// rasterizer turns the scene into painter-sorted, flat-submitted triangles.
// Buffers are reused across frames.
type rasterizer struct {
	tris  []shadedTriangle
	verts []ebiten.Vertex
	inds  []uint16
	op    ebiten.DrawTrianglesOptions
	stats RenderStats
}

// render clears dst to the scene background and draws every visible node.
func (r *rasterizer) render(dst *ebiten.Image, s *Scene) {
	r.stats = RenderStats{}
	r.tris = r.tris[:0]

	dst.Fill(s.Background.RGBA())
	s.updateWorld()

	b := dst.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w == 0 || h == 0 {
		return
	}
	cam := s.camera
	view := cam.View()
	viewProj := cam.ViewProjection()

	var helpers []*Node
	s.root.Walk(func(n *Node) bool {
		if !n.Visible {
			return false
		}
		switch n.Type {
		case NodeTypeMesh:
			if n.Mesh != nil {
				r.collectMesh(n, s, view, viewProj, w, h)
			}
		case NodeTypeHelper:
			helpers = append(helpers, n)
		}
		return true
	})

	// Far to near.
	slices.SortStableFunc(r.tris, func(a, b shadedTriangle) int {
		return cmp.Compare(b.depth, a.depth)
	})
	r.submit(dst)

	for _, n := range helpers {
		r.drawLines(dst, n, view, viewProj, w, h, cam.Near)
	}
}

// collectMesh projects, culls and shades the triangles of a mesh node.
func (r *rasterizer) collectMesh(n *Node, s *Scene, view, viewProj mgl64.Mat4, w, h float64) {
	m := n.Mesh
	model := n.worldMatrix
	normalMat := model.Mat3().Inv().Transpose()
	cam := s.camera

	for i := 0; i < m.TriangleCount(); i++ {
		ia, ib, ic := m.Triangle(i)
		if int(ia) >= len(m.Positions) || int(ib) >= len(m.Positions) || int(ic) >= len(m.Positions) {
			r.stats.Culled++
			continue
		}
		idx := [3]uint32{ia, ib, ic}
		var world [3]mgl64.Vec3
		var screen [3]ScreenPoint
		visible := true
		beyondFar := 0
		for k, vi := range idx {
			world[k] = model.Mul4x1(m.Positions[vi].Vec4(1)).Vec3()
			pt, ok := projectPoint(viewProj, view, world[k], w, h, cam.Near)
			if !ok {
				visible = false
				break
			}
			if pt.Depth > cam.Far {
				beyondFar++
			}
			screen[k] = pt
		}
		if !visible || beyondFar == 3 {
			r.stats.Culled++
			continue
		}

		// Screen space has Y down, so front faces wind negative.
		cross := (screen[1].X-screen[0].X)*(screen[2].Y-screen[0].Y) -
			(screen[1].Y-screen[0].Y)*(screen[2].X-screen[0].X)
		backFacing := cross >= 0
		if backFacing && !m.DoubleSided {
			r.stats.Culled++
			continue
		}

		fn := faceNormal(world[0], world[1], world[2])
		var tri shadedTriangle
		for k, vi := range idx {
			nrm := fn
			if int(vi) < len(m.Normals) {
				nrm = normalMat.Mul3x1(m.Normals[vi])
				if l := nrm.Len(); l > 0 {
					nrm = nrm.Mul(1 / l)
				}
			}
			if backFacing {
				nrm = nrm.Mul(-1)
			}
			c := shade(s.lights, m.vertexColor(vi), world[k], nrm)
			if f := s.Fog.factor(screen[k].Depth); f > 0 {
				c = c.Lerp(s.Fog.Color, f)
			}
			tri.verts[k] = triangleVertex(screen[k], c)
			tri.depth += screen[k].Depth
		}
		tri.depth /= 3
		r.tris = append(r.tris, tri)
	}
}

// triangleVertex builds a premultiplied ebiten vertex sampling the white
// texel.
func triangleVertex(p ScreenPoint, c Color) ebiten.Vertex {
	a := float32(clamp01(c.A))
	return ebiten.Vertex{
		DstX:   float32(p.X),
		DstY:   float32(p.Y),
		SrcX:   1.5,
		SrcY:   1.5,
		ColorR: float32(c.R) * a,
		ColorG: float32(c.G) * a,
		ColorB: float32(c.B) * a,
		ColorA: a,
	}
}

// submit draws the sorted triangles in as few batches as the index width
// allows.
func (r *rasterizer) submit(dst *ebiten.Image) {
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	r.op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	for i := range r.tris {
		if len(r.verts)+3 > maxBatchVertices {
			r.flush(dst)
		}
		base := uint16(len(r.verts))
		r.verts = append(r.verts, r.tris[i].verts[:]...)
		r.inds = append(r.inds, base, base+1, base+2)
		r.stats.Triangles++
	}
	r.flush(dst)
}

func (r *rasterizer) flush(dst *ebiten.Image) {
	if len(r.inds) == 0 {
		return
	}
	dst.DrawTriangles(r.verts, r.inds, whiteSubImage, &r.op)
	r.stats.Batches++
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
}

// drawLines strokes a helper node's segments. Segments with an endpoint
// behind the near plane are skipped.
func (r *rasterizer) drawLines(dst *ebiten.Image, n *Node, view, viewProj mgl64.Mat4, w, h, near float64) {
	for _, l := range n.Lines {
		a, okA := projectPoint(viewProj, view, l.From, w, h, near)
		b, okB := projectPoint(viewProj, view, l.To, w, h, near)
		if !okA || !okB {
			continue
		}
		vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, l.Color.RGBA(), true)
		r.stats.Lines++
	}
}
