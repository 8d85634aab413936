package kernel

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/procedural"
	"github.com/df07/go-procedural-raymarcher/pkg/raymarch"
	"github.com/df07/go-procedural-raymarcher/pkg/scene"
	"github.com/df07/go-procedural-raymarcher/pkg/shading"
	"github.com/df07/go-procedural-raymarcher/pkg/xray"
)

// Sample is the result of one 3D pixel evaluation
type Sample struct {
	Color    core.Vec3
	Hit      bool
	Distance float32
	Steps    int
}

// Ray returns the camera ray through uv, where uv (0,0) is the bottom-left
// corner of the image. The camera basis must already have been validated
// by the host.
func (b *FrameBlock) Ray(uv core.Vec2) core.Ray {
	pos := b.CameraPos.Vec3()
	forward := b.CameraTarget.Vec3().Sub(pos).Normalize()
	right := forward.Cross(b.CameraUp.Vec3()).Normalize()
	up := right.Cross(forward)

	aspect := float32(1)
	if b.Resolution[1] > 0 {
		aspect = b.Resolution[0] / b.Resolution[1]
	}
	half := math32.Tan(b.CameraTarget[3] / 2)
	x := (uv.X*2 - 1) * aspect * half
	y := (uv.Y*2 - 1) * half

	dir := forward.Add(right.Mul(x)).Add(up.Mul(y)).Normalize()
	return core.NewRay(core.FromMgl(pos), core.FromMgl(dir))
}

// Raymarch evaluates one 3D pixel: camera ray, sphere trace against the scene
// selected by SceneID, then shading
func Raymarch(b *FrameBlock, composer *scene.Composer, uv core.Vec2) Sample {
	dist := composer.Resolve(b.SceneID)
	settings := b.Settings()
	ray := b.Ray(uv)

	res := raymarch.March(ray, dist, settings)
	return Sample{
		Color:    shading.Shade(dist, ray, res, settings.Flags, uv),
		Hit:      res.Hit,
		Distance: res.Distance,
		Steps:    res.Steps,
	}
}

// Shade2D evaluates one procedural pixel
func Shade2D(b *ProceduralBlock, uv core.Vec2) core.Vec3 {
	return procedural.Generate(uv, b.Zoom, core.FromMgl2(b.Pan), b.Params())
}

// ShadeXRay evaluates one debug overlay pixel
func ShadeXRay(b *XRayBlock, uv core.Vec2) core.Vec3 {
	return xray.Render(uv, b.Zoom, core.FromMgl2(b.Pan), b.Params())
}
