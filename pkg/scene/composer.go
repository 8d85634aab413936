// Package scene describes SDF scenes as arena trees and dispatches a scene id
// to either a built-in demo tree or the externally supplied distance function.
package scene

import (
	"fmt"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/sdf"
)

// Composer resolves scene ids. It is immutable once built and safe to share
// between every worker rendering a frame.
type Composer struct {
	demos   []*Tree
	dynamic sdf.DistanceFunc
}

// NewComposer creates a composer holding the built-in demos and an empty
// dynamic slot
func NewComposer() *Composer {
	return &Composer{demos: demoTrees()}
}

// WithDynamic returns a copy of the composer with fn in the dynamic slot.
// A nil fn leaves the slot empty (unit sphere fallback).
func (c *Composer) WithDynamic(fn sdf.DistanceFunc) *Composer {
	return &Composer{demos: c.demos, dynamic: fn}
}

// HasDynamic reports whether a dynamic distance function has been supplied
func (c *Composer) HasDynamic() bool {
	return c.dynamic != nil
}

// Demo returns the tree for a built-in demo id, falling back to demo 0
func (c *Composer) Demo(id uint32) *Tree {
	if int(id) < len(c.demos) {
		return c.demos[id]
	}
	return c.demos[CarvedSphere]
}

// Resolve returns the distance function selected by id: the demo tree for
// built-in ids, the dynamic slot (or the unit sphere) for DynamicSceneID and
// demo 0 for anything else.
func (c *Composer) Resolve(id uint32) sdf.DistanceFunc {
	if id == DynamicSceneID {
		if c.dynamic != nil {
			return c.dynamic
		}
		return sdf.UnitSphere
	}
	return c.Demo(id).Distance
}

// Distance evaluates scene id at p
func (c *Composer) Distance(id uint32, p core.Vec3) float32 {
	return c.Resolve(id)(p)
}

// Compile turns a validated tree into a pure distance function suitable for
// the dynamic slot
func Compile(tree *Tree) (sdf.DistanceFunc, error) {
	if tree == nil || tree.Len() == 0 {
		return nil, fmt.Errorf("compile: %w: empty tree", ErrInvalidTree)
	}
	return tree.Distance, nil
}
