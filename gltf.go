package diorama

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// maxNodeDepth bounds recursion through malformed node hierarchies.
const maxNodeDepth = 64

// buildModel converts the default scene of doc into a node subtree rooted at
// a group called name. Documents without scenes use every parentless node.
func buildModel(doc *gltf.Document, name string) (*Node, error) {
	root := NewGroup(name)

	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	default:
		roots = parentlessNodes(doc)
	}

	for _, idx := range roots {
		n, err := buildNode(doc, idx, 0)
		if err != nil {
			return nil, err
		}
		root.AddChild(n)
	}
	return root, nil
}

func parentlessNodes(doc *gltf.Document) []int {
	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var out []int
	for i, p := range hasParent {
		if !p {
			out = append(out, i)
		}
	}
	return out
}

func buildNode(doc *gltf.Document, idx, depth int) (*Node, error) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return nil, fmt.Errorf("node hierarchy deeper than %d", maxNodeDepth)
	}
	gn := doc.Nodes[idx]

	name := gn.Name
	if name == "" {
		name = fmt.Sprintf("node%d", idx)
	}
	n := NewGroup(name)
	if m := gn.MatrixOrDefault(); m != gltf.DefaultMatrix {
		n.Matrix = mgl64.Mat4(m)
		n.HasMatrix = true
	} else {
		n.Position = mgl64.Vec3(gn.TranslationOrDefault())
		r := gn.RotationOrDefault()
		n.Rotation = mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}
		n.Scale = mgl64.Vec3(gn.ScaleOrDefault())
	}

	if gn.Mesh != nil {
		if *gn.Mesh < 0 || *gn.Mesh >= len(doc.Meshes) {
			return nil, fmt.Errorf("node %q: mesh index %d out of range", name, *gn.Mesh)
		}
		gm := doc.Meshes[*gn.Mesh]
		for i, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			mesh, err := buildMesh(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", gm.Name, i, err)
			}
			n.AddChild(NewMeshNode(fmt.Sprintf("%s/%d", name, i), mesh))
		}
	}

	for _, c := range gn.Children {
		child, err := buildNode(doc, c, depth+1)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}

// buildMesh reads one triangle primitive. Positions are required; normals,
// COLOR_0 and indices are optional.
func buildMesh(doc *gltf.Document, prim *gltf.Primitive) (*Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("missing %s attribute", gltf.POSITION)
	}
	acr, err := accessor(doc, posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	m := &Mesh{BaseColor: ColorWhite}
	m.Positions = make([]mgl64.Vec3, len(positions))
	for i, p := range positions {
		m.Positions[i] = vec3f(p)
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acr, err := accessor(doc, idx)
		if err != nil {
			return nil, err
		}
		normals, err := modeler.ReadNormal(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		if len(normals) == len(positions) {
			m.Normals = make([]mgl64.Vec3, len(normals))
			for i, v := range normals {
				m.Normals[i] = vec3f(v)
			}
		}
	}

	if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		acr, err := accessor(doc, idx)
		if err != nil {
			return nil, err
		}
		colors, err := modeler.ReadColor(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read colors: %w", err)
		}
		if len(colors) == len(positions) {
			m.Colors = make([]Color, len(colors))
			for i, c := range colors {
				m.Colors[i] = Color{float64(c[0]) / 255, float64(c[1]) / 255, float64(c[2]) / 255, float64(c[3]) / 255}
			}
		}
	}

	if prim.Indices != nil {
		acr, err := accessor(doc, *prim.Indices)
		if err != nil {
			return nil, err
		}
		indices, err := modeler.ReadIndices(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		for _, i := range indices {
			if int(i) >= len(positions) {
				return nil, fmt.Errorf("index %d out of range", i)
			}
		}
		m.Indices = indices[:len(indices)/3*3]
		if m.Indices == nil {
			m.Indices = []uint32{}
		}
	}

	if prim.Material != nil && *prim.Material >= 0 && *prim.Material < len(doc.Materials) {
		mat := doc.Materials[*prim.Material]
		m.DoubleSided = mat.DoubleSided
		if mat.PBRMetallicRoughness != nil {
			f := mat.PBRMetallicRoughness.BaseColorFactorOrDefault()
			m.BaseColor = Color{f[0], f[1], f[2], f[3]}
		}
	}
	return m, nil
}

func vec3f(v [3]float32) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
