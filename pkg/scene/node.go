package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
)

const (
	// MaxNodes bounds the arena size of a single scene tree
	MaxNodes = 256
	// MaxDepth bounds the evaluation stack; Build rejects deeper trees
	MaxDepth = 32
)

// ErrInvalidTree is returned by Builder.Build for trees the kernel cannot evaluate
var ErrInvalidTree = errors.New("invalid scene tree")

// NodeIndex references a node inside a Tree's arena
type NodeIndex int32

// NodeKind tags the variant a Node holds
type NodeKind uint8

const (
	NodePrimitive NodeKind = iota
	NodeOperator
	NodeTransform
)

// PrimitiveKind selects a distance function
type PrimitiveKind uint8

const (
	PrimSphere PrimitiveKind = iota
	PrimBox
	PrimCylinder
	PrimTorus
	PrimCapsule
	PrimPlane
)

// OperatorKind selects a boolean combinator
type OperatorKind uint8

const (
	OpUnion OperatorKind = iota
	OpSubtract
	OpIntersect
	OpSmoothUnion
	OpSmoothSubtract
	OpSmoothIntersect
)

// TransformKind selects a domain transform
type TransformKind uint8

const (
	XformTwist TransformKind = iota
	XformRound
	XformRepeat
	XformTranslate
)

// Node is one entry of the scene arena. Params are interpreted per kind:
//
//	sphere     [r]
//	box        [hx hy hz]
//	cylinder   [r h]
//	torus      [major minor]
//	capsule    [ax ay az bx by bz r]
//	plane      [nx ny nz offset]
//	twist      [k]
//	round      [r]
//	repeat     [cx cy cz]
//	translate  [x y z]
type Node struct {
	Kind      NodeKind
	Primitive PrimitiveKind
	Operator  OperatorKind
	Transform TransformKind
	Params    [8]float32
	BlendK    float32
	Children  []NodeIndex
}

func (n *Node) vec(i int) core.Vec3 {
	return core.Vec3{X: n.Params[i], Y: n.Params[i+1], Z: n.Params[i+2]}
}

// Tree is an immutable, validated scene. Children always sit at lower
// arena indices than their parent, so the arena is acyclic.
type Tree struct {
	nodes []Node
	root  NodeIndex
	depth int
}

// Root returns the index of the root node
func (t *Tree) Root() NodeIndex { return t.root }

// Len returns the number of nodes in the arena
func (t *Tree) Len() int { return len(t.nodes) }

// Depth returns the number of nodes on the longest root-to-leaf path
func (t *Tree) Depth() int { return t.depth }

// Node returns a copy of the node at index i
func (t *Tree) Node(i NodeIndex) Node { return t.nodes[i] }

// Builder appends nodes bottom-up: children must be added before the
// operator or transform that references them.
type Builder struct {
	nodes []Node
	err   error
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) add(n Node) NodeIndex {
	if b.err == nil && len(b.nodes) >= MaxNodes {
		b.err = fmt.Errorf("%w: more than %d nodes", ErrInvalidTree, MaxNodes)
	}
	b.nodes = append(b.nodes, n)
	return NodeIndex(len(b.nodes) - 1)
}

func (b *Builder) primitive(kind PrimitiveKind, params ...float32) NodeIndex {
	n := Node{Kind: NodePrimitive, Primitive: kind}
	copy(n.Params[:], params)
	return b.add(n)
}

// Sphere adds a sphere of radius r at the origin
func (b *Builder) Sphere(r float32) NodeIndex {
	return b.primitive(PrimSphere, r)
}

// Box adds an axis-aligned box with the given half extents
func (b *Builder) Box(half core.Vec3) NodeIndex {
	return b.primitive(PrimBox, half.X, half.Y, half.Z)
}

// Cylinder adds a y-aligned capped cylinder
func (b *Builder) Cylinder(r, h float32) NodeIndex {
	return b.primitive(PrimCylinder, r, h)
}

// Torus adds a torus in the xz plane
func (b *Builder) Torus(major, minor float32) NodeIndex {
	return b.primitive(PrimTorus, major, minor)
}

// Capsule adds a segment a-b inflated by r
func (b *Builder) Capsule(a, c core.Vec3, r float32) NodeIndex {
	return b.primitive(PrimCapsule, a.X, a.Y, a.Z, c.X, c.Y, c.Z, r)
}

// Plane adds the plane dot(p, n) + offset = 0
func (b *Builder) Plane(n core.Vec3, offset float32) NodeIndex {
	n = n.Normalize()
	return b.primitive(PrimPlane, n.X, n.Y, n.Z, offset)
}

// Operator folds children left to right with the given combinator.
// blendK is only read by the smooth variants.
func (b *Builder) Operator(kind OperatorKind, blendK float32, children ...NodeIndex) NodeIndex {
	return b.add(Node{
		Kind:     NodeOperator,
		Operator: kind,
		BlendK:   blendK,
		Children: append([]NodeIndex(nil), children...),
	})
}

func (b *Builder) Union(children ...NodeIndex) NodeIndex {
	return b.Operator(OpUnion, 0, children...)
}

func (b *Builder) Subtract(children ...NodeIndex) NodeIndex {
	return b.Operator(OpSubtract, 0, children...)
}

func (b *Builder) Intersect(children ...NodeIndex) NodeIndex {
	return b.Operator(OpIntersect, 0, children...)
}

func (b *Builder) SmoothUnion(k float32, children ...NodeIndex) NodeIndex {
	return b.Operator(OpSmoothUnion, k, children...)
}

func (b *Builder) SmoothSubtract(k float32, children ...NodeIndex) NodeIndex {
	return b.Operator(OpSmoothSubtract, k, children...)
}

func (b *Builder) SmoothIntersect(k float32, children ...NodeIndex) NodeIndex {
	return b.Operator(OpSmoothIntersect, k, children...)
}

func (b *Builder) transform(kind TransformKind, child NodeIndex, params ...float32) NodeIndex {
	n := Node{Kind: NodeTransform, Transform: kind, Children: []NodeIndex{child}}
	copy(n.Params[:], params)
	return b.add(n)
}

// Twist rotates the child's xz plane by k radians per unit of y
func (b *Builder) Twist(k float32, child NodeIndex) NodeIndex {
	return b.transform(XformTwist, child, k)
}

// Round inflates the child by r
func (b *Builder) Round(r float32, child NodeIndex) NodeIndex {
	return b.transform(XformRound, child, r)
}

// Repeat tiles the child on a grid of the given cell size (0 disables an axis)
func (b *Builder) Repeat(cell core.Vec3, child NodeIndex) NodeIndex {
	return b.transform(XformRepeat, child, cell.X, cell.Y, cell.Z)
}

// Translate moves the child by offset
func (b *Builder) Translate(offset core.Vec3, child NodeIndex) NodeIndex {
	return b.transform(XformTranslate, child, offset.X, offset.Y, offset.Z)
}

// Build validates the arena and returns a tree rooted at root
func (b *Builder) Build(root NodeIndex) (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}
	if root < 0 || int(root) >= len(b.nodes) {
		return nil, fmt.Errorf("%w: root %d out of range", ErrInvalidTree, root)
	}

	parents := make([]int, len(b.nodes))
	for i := range b.nodes {
		n := &b.nodes[i]
		switch n.Kind {
		case NodePrimitive:
			if len(n.Children) != 0 {
				return nil, fmt.Errorf("%w: primitive %d has children", ErrInvalidTree, i)
			}
		case NodeOperator:
			if len(n.Children) == 0 {
				return nil, fmt.Errorf("%w: operator %d has no children", ErrInvalidTree, i)
			}
		case NodeTransform:
			if len(n.Children) != 1 {
				return nil, fmt.Errorf("%w: transform %d needs exactly one child", ErrInvalidTree, i)
			}
		default:
			return nil, fmt.Errorf("%w: node %d has unknown kind %d", ErrInvalidTree, i, n.Kind)
		}
		for _, c := range n.Children {
			if c < 0 || int(c) >= i {
				return nil, fmt.Errorf("%w: node %d references child %d out of order", ErrInvalidTree, i, c)
			}
			parents[c]++
			if parents[c] > 1 {
				return nil, fmt.Errorf("%w: node %d has more than one parent", ErrInvalidTree, c)
			}
		}
	}

	// children precede parents, so one forward pass computes every depth
	depths := make([]int, len(b.nodes))
	for i := range b.nodes {
		d := 0
		for _, c := range b.nodes[i].Children {
			d = max(d, depths[c])
		}
		depths[i] = d + 1
	}
	if depths[root] > MaxDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds %d", ErrInvalidTree, depths[root], MaxDepth)
	}

	nodes := make([]Node, len(b.nodes))
	copy(nodes, b.nodes)
	return &Tree{nodes: nodes, root: root, depth: depths[root]}, nil
}
