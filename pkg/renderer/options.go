package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-procedural-raymarcher/pkg/raymarch"
	"github.com/df07/go-procedural-raymarcher/pkg/scene"
)

// FrameOptions is the host-facing description of a frame. Angles are in
// degrees; the camera orbits the origin starting from the default camera.
type FrameOptions struct {
	Mode          Mode
	Width, Height int

	// 3D
	Scene    uint32
	Fov      float32
	Yaw      float32
	Pitch    float32
	Distance float32
	March    raymarch.Settings

	// 2D
	Content uint32
	XRay    uint32
	Zoom    float32
	Pan     mgl32.Vec2
	Params  [4]float32

	Time float32
}

// DefaultFrameOptions returns the viewer defaults for a frame of the given size
func DefaultFrameOptions(mode Mode, width, height int) FrameOptions {
	camera := DefaultCameraConfig()
	return FrameOptions{
		Mode:     mode,
		Width:    width,
		Height:   height,
		Fov:      camera.VFov,
		Distance: camera.Position.Length(),
		March:    raymarch.DefaultSettings(),
		Zoom:     1,
	}
}

// BuildFrame converts options into a validated frame snapshot. A nil composer
// serves the demo scenes with an empty dynamic slot.
func BuildFrame(opts FrameOptions, composer *scene.Composer) (*Frame, error) {
	frame := NewFrame(opts.Mode, opts.Width, opts.Height)
	if composer != nil {
		frame.Composer = composer
	}
	frame.SetTime(opts.Time)

	frame.SDF.SceneID = opts.Scene
	frame.SDF.SetSettings(opts.March)

	config := DefaultCameraConfig()
	config.VFov = opts.Fov
	camera, err := NewCamera(config)
	if err != nil {
		return nil, err
	}
	if err := camera.Dolly(config.Position.Length() - opts.Distance); err != nil {
		return nil, err
	}
	// positive pitch looks down from above
	if err := camera.Orbit(mgl32.DegToRad(opts.Yaw), -mgl32.DegToRad(opts.Pitch)); err != nil {
		return nil, err
	}
	camera.Block(&frame.SDF)

	frame.Procedural.ContentType = opts.Content
	frame.Procedural.Zoom = opts.Zoom
	frame.Procedural.Pan = opts.Pan
	frame.Procedural.Param1, frame.Procedural.Param2 = opts.Params[0], opts.Params[1]
	frame.Procedural.Param3, frame.Procedural.Param4 = opts.Params[2], opts.Params[3]

	frame.XRay.XRayType = opts.XRay
	frame.XRay.Zoom = opts.Zoom
	frame.XRay.Pan = opts.Pan
	frame.XRay.Param1, frame.XRay.Param2 = opts.Params[0], opts.Params[1]
	frame.XRay.Param3, frame.XRay.Param4 = opts.Params[2], opts.Params[3]

	if err := frame.Validate(); err != nil {
		return nil, err
	}
	return frame, nil
}
