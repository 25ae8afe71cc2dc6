package diorama

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
)

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeGroup  NodeType = iota // transform-only node with no visual output
	NodeTypeMesh                   // renders a triangle Mesh
	NodeTypeHelper                 // renders debug line segments (devMode)
)

// nodeIDCounter is shared by the game goroutine and model loaders, which
// build their node trees in the background.
var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// Node is the scene graph element. A single flat struct is used for all node
// types to avoid interface dispatch during traversal.
type Node struct {
	ID   uint32
	Name string
	Type NodeType

	Parent   *Node
	children []*Node

	// Local transform. When HasMatrix is set, Matrix replaces the TRS fields.
	Position  mgl64.Vec3
	Rotation  mgl64.Quat
	Scale     mgl64.Vec3
	Matrix    mgl64.Mat4
	HasMatrix bool

	Visible bool

	// Mesh is the geometry drawn by NodeTypeMesh nodes.
	Mesh *Mesh
	// Lines are world-space segments drawn by NodeTypeHelper nodes.
	Lines []Line

	worldMatrix mgl64.Mat4
}

// Line is a colored segment drawn by helper nodes.
type Line struct {
	From, To mgl64.Vec3
	Color    Color
}

func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.Rotation = mgl64.QuatIdent()
	n.Scale = mgl64.Vec3{1, 1, 1}
	n.Matrix = mgl64.Ident4()
	n.Visible = true
	n.worldMatrix = mgl64.Ident4()
}

// NewGroup creates a node with no visual representation.
func NewGroup(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeGroup}
	nodeDefaults(n)
	return n
}

// NewMeshNode creates a node that draws mesh.
func NewMeshNode(name string, mesh *Mesh) *Node {
	n := &Node{Name: name, Type: NodeTypeMesh, Mesh: mesh}
	nodeDefaults(n)
	return n
}

// NewHelper creates a debug node that draws the given world-space lines.
func NewHelper(name string, lines []Line) *Node {
	n := &Node{Name: name, Type: NodeTypeHelper, Lines: lines}
	nodeDefaults(n)
	return n
}

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("diorama: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("diorama: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
}

// RemoveChild detaches child from this node. No-op if child is not a
// direct child of n.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// Children returns the direct children. The returned slice MUST NOT be mutated.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of direct children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// WorldMatrix returns the node's world transform as of the last traversal.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	return n.worldMatrix
}

// LocalMatrix returns the node's local transform.
func (n *Node) LocalMatrix() mgl64.Mat4 {
	if n.HasMatrix {
		return n.Matrix
	}
	t := mgl64.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	r := n.Rotation.Mat4()
	s := mgl64.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// Walk calls fn for n and every descendant in depth-first order. Returning
// false from fn skips that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// TriangleCount returns the number of triangles in n's subtree.
func (n *Node) TriangleCount() int {
	total := 0
	n.Walk(func(c *Node) bool {
		if c.Mesh != nil {
			total += c.Mesh.TriangleCount()
		}
		return true
	})
	return total
}

// updateWorldMatrix recomputes world matrices for n and its subtree.
func updateWorldMatrix(n *Node, parent mgl64.Mat4) {
	n.worldMatrix = parent.Mul4(n.LocalMatrix())
	for _, c := range n.children {
		updateWorldMatrix(c, n.worldMatrix)
	}
}

// isAncestor reports whether candidate is an ancestor of node (or node itself).
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}
