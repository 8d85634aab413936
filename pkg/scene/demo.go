package scene

import (
	"github.com/df07/go-procedural-raymarcher/pkg/core"
)

// Built-in demo scene ids
const (
	CarvedSphere uint32 = iota
	SimpleSphere
	RoundedBox
	TorusKnot
	InfinitePillars
	TwistedBox

	// DynamicSceneID selects the externally compiled distance function
	DynamicSceneID uint32 = 100
)

// SceneInfo describes a selectable scene
type SceneInfo struct {
	ID          uint32 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog lists the demo scenes in id order followed by the dynamic slot
var Catalog = []SceneInfo{
	{CarvedSphere, "Carved Sphere", "Sphere and box intersection carved by three cylinders"},
	{SimpleSphere, "Simple Sphere", "Unit sphere at the origin"},
	{RoundedBox, "Rounded Box", "Box with rounded edges"},
	{TorusKnot, "Torus Knot", "Twisted torus smoothly merged with a second ring"},
	{InfinitePillars, "Infinite Pillars", "Repeating field of pillars on a ground plane"},
	{TwistedBox, "Twisted Box", "Rounded column twisted around the y axis"},
	{DynamicSceneID, "Loaded Scene", "Externally compiled distance function"},
}

// demoTrees builds every demo once; the trees are immutable afterwards
func demoTrees() []*Tree {
	builders := []func(b *Builder) NodeIndex{
		buildCarvedSphere,
		buildSimpleSphere,
		buildRoundedBox,
		buildTorusKnot,
		buildInfinitePillars,
		buildTwistedBox,
	}
	trees := make([]*Tree, len(builders))
	for i, build := range builders {
		b := NewBuilder()
		root := build(b)
		tree, err := b.Build(root)
		if err != nil {
			// demo trees are static, so this only trips on a broken edit
			panic(err)
		}
		trees[i] = tree
	}
	return trees
}

func buildCarvedSphere(b *Builder) NodeIndex {
	body := b.SmoothIntersect(0.05,
		b.Sphere(1),
		b.Box(core.NewVec3(0.75, 0.75, 0.75)),
	)
	axisY := b.Cylinder(0.45, 2)
	axisX := b.Capsule(core.NewVec3(-2, 0, 0), core.NewVec3(2, 0, 0), 0.45)
	axisZ := b.Capsule(core.NewVec3(0, 0, -2), core.NewVec3(0, 0, 2), 0.45)
	return b.Subtract(body, axisY, axisX, axisZ)
}

func buildSimpleSphere(b *Builder) NodeIndex {
	return b.Sphere(1)
}

func buildRoundedBox(b *Builder) NodeIndex {
	return b.Round(0.1, b.Box(core.NewVec3(0.6, 0.4, 0.5)))
}

func buildTorusKnot(b *Builder) NodeIndex {
	// the offset breaks the torus' symmetry about y so the twist shows
	twisted := b.Twist(2, b.Translate(core.NewVec3(0.3, 0, 0), b.Torus(0.8, 0.2)))
	ring := b.Translate(core.NewVec3(0, 0.25, 0), b.Torus(0.55, 0.12))
	return b.SmoothUnion(0.2, twisted, ring)
}

func buildInfinitePillars(b *Builder) NodeIndex {
	ground := b.Plane(core.NewVec3(0, 1, 0), 1)
	pillars := b.Repeat(core.NewVec3(3, 0, 3), b.Round(0.05, b.Cylinder(0.3, 4)))
	return b.SmoothUnion(0.15, ground, pillars)
}

func buildTwistedBox(b *Builder) NodeIndex {
	return b.Twist(1, b.Round(0.05, b.Box(core.NewVec3(0.5, 1, 0.5))))
}
