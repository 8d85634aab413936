package scene

import (
	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/sdf"
)

// frame is one level of the explicit evaluation stack
type frame struct {
	node NodeIndex
	p    core.Vec3
	next int // next child to visit
	acc  float32
}

// Distance evaluates the tree at p without recursion. The stack is a fixed
// array of MaxDepth frames and every node is entered once, so the loop runs
// at most 2*Len()+1 times. An empty tree is the unit sphere.
func (t *Tree) Distance(p core.Vec3) float32 {
	if t == nil || len(t.nodes) == 0 {
		return sdf.UnitSphere(p)
	}

	var stack [MaxDepth]frame
	sp := 0
	stack[0] = frame{node: t.root, p: p}

	var ret float32
	returning := false
	limit := 2*len(t.nodes) + 1

	for i := 0; i < limit; i++ {
		top := &stack[sp]
		n := &t.nodes[top.node]

		if returning {
			returning = false
			switch n.Kind {
			case NodeOperator:
				if top.next == 1 {
					top.acc = ret
				} else {
					top.acc = combine(n.Operator, n.BlendK, top.acc, ret)
				}
			case NodeTransform:
				top.acc = untransform(n, ret)
			}
		}

		if n.Kind != NodePrimitive && top.next < len(n.Children) {
			if sp+1 >= MaxDepth {
				return sdf.UnitSphere(p)
			}
			child := n.Children[top.next]
			top.next++
			cp := top.p
			if n.Kind == NodeTransform {
				cp = transform(n, cp)
			}
			sp++
			stack[sp] = frame{node: child, p: cp}
			continue
		}

		if n.Kind == NodePrimitive {
			ret = primitive(n, top.p)
		} else {
			ret = top.acc
		}
		if sp == 0 {
			return ret
		}
		sp--
		returning = true
	}

	return sdf.UnitSphere(p)
}

func primitive(n *Node, p core.Vec3) float32 {
	switch n.Primitive {
	case PrimSphere:
		return sdf.Sphere(p, n.Params[0])
	case PrimBox:
		return sdf.Box(p, n.vec(0))
	case PrimCylinder:
		return sdf.Cylinder(p, n.Params[0], n.Params[1])
	case PrimTorus:
		return sdf.Torus(p, n.Params[0], n.Params[1])
	case PrimCapsule:
		return sdf.Capsule(p, n.vec(0), n.vec(3), n.Params[6])
	case PrimPlane:
		return sdf.Plane(p, n.vec(0), n.Params[3])
	default:
		return sdf.UnitSphere(p)
	}
}

func combine(kind OperatorKind, k, d1, d2 float32) float32 {
	switch kind {
	case OpSubtract:
		return sdf.Subtract(d1, d2)
	case OpIntersect:
		return sdf.Intersect(d1, d2)
	case OpSmoothUnion:
		return sdf.SmoothUnion(d1, d2, k)
	case OpSmoothSubtract:
		return sdf.SmoothSubtract(d1, d2, k)
	case OpSmoothIntersect:
		return sdf.SmoothIntersect(d1, d2, k)
	default:
		return sdf.Union(d1, d2)
	}
}

// transform maps the query point before descending into the child
func transform(n *Node, p core.Vec3) core.Vec3 {
	switch n.Transform {
	case XformTwist:
		return sdf.Twist(p, n.Params[0])
	case XformRepeat:
		return sdf.Repeat(p, n.vec(0))
	case XformTranslate:
		return sdf.Translate(p, n.vec(0))
	default:
		return p
	}
}

// untransform adjusts the child's distance on the way back up
func untransform(n *Node, d float32) float32 {
	if n.Transform == XformRound {
		return sdf.Round(d, n.Params[0])
	}
	return d
}
