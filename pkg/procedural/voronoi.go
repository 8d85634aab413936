package procedural

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
)

// VoronoiResult describes the nearest feature points around a query
type VoronoiResult struct {
	F1   float32   // distance to the nearest seed
	F2   float32   // distance to the second nearest seed
	Cell core.Vec2 // integer coordinates of the nearest seed's cell
	ID   float32   // stable per-cell random value in [0, 1)
}

// VoronoiSeed returns the jittered seed of a unit cell. time animates the seed
// inside its cell; at time 0 it is the static jitter.
func VoronoiSeed(cell core.Vec2, time float32) core.Vec2 {
	o := Hash22(cell)
	return core.Vec2{
		X: cell.X + 0.5 + 0.5*math32.Sin(time+2*math32.Pi*o.X),
		Y: cell.Y + 0.5 + 0.5*math32.Sin(time+2*math32.Pi*o.Y),
	}
}

// Voronoi searches the 3x3 block of cells around p for the nearest seeds
func Voronoi(p core.Vec2, time float32) VoronoiResult {
	base := p.Floor()
	res := VoronoiResult{F1: math32.MaxFloat32, F2: math32.MaxFloat32}

	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			cell := base.Add(core.Vec2{X: float32(i), Y: float32(j)})
			d := VoronoiSeed(cell, time).Subtract(p).Length()
			if d < res.F1 {
				res.F2 = res.F1
				res.F1 = d
				res.Cell = cell
			} else if d < res.F2 {
				res.F2 = d
			}
		}
	}

	res.ID = Hash2(res.Cell)
	return res
}
