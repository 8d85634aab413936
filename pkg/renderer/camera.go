package renderer

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/kernel"
)

// ErrDegenerateCamera is returned when a camera has no well-defined basis
var ErrDegenerateCamera = errors.New("degenerate camera")

const (
	minPolar      = 0.01
	minDollyRange = 0.5
)

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Position core.Vec3 // Where the camera is
	LookAt   core.Vec3 // Where the camera is looking
	Up       core.Vec3 // Up direction (usually 0,1,0)
	VFov     float32   // Vertical field of view in degrees
}

// DefaultCameraConfig looks at the origin from five units down +z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Position: core.NewVec3(0, 0, 5),
		LookAt:   core.NewVec3(0, 0, 0),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     45,
	}
}

// Camera is a host-side orbit camera that writes its pose into frame blocks
type Camera struct {
	config CameraConfig
	view   mgl32.Mat4
}

// NewCamera validates the configuration and builds the view basis
func NewCamera(config CameraConfig) (*Camera, error) {
	c := &Camera{config: config}
	if err := c.update(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Camera) update() error {
	cfg := c.config
	forward := cfg.LookAt.Subtract(cfg.Position)
	if forward.Length() < 1e-6 {
		return fmt.Errorf("%w: position equals look-at %v", ErrDegenerateCamera, cfg.Position)
	}
	if forward.Normalize().Cross(cfg.Up).Length() < 1e-6 {
		return fmt.Errorf("%w: up %v is parallel to the view direction", ErrDegenerateCamera, cfg.Up)
	}
	if !(cfg.VFov > 0 && cfg.VFov < 180) {
		return fmt.Errorf("%w: field of view %v outside (0, 180)", ErrDegenerateCamera, cfg.VFov)
	}
	c.view = mgl32.LookAtV(cfg.Position.Mgl(), cfg.LookAt.Mgl(), cfg.Up.Mgl())
	return nil
}

// Config returns the current camera configuration
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Basis returns the orthonormal right, up and forward vectors of the view
func (c *Camera) Basis() (right, up, forward core.Vec3) {
	right = core.FromMgl(c.view.Row(0).Vec3())
	up = core.FromMgl(c.view.Row(1).Vec3())
	forward = core.FromMgl(c.view.Row(2).Vec3()).Negate()
	return right, up, forward
}

// Orbit rotates the camera about its look-at point. dTheta turns around the
// world y axis, dPhi tilts towards the poles; the polar angle stays inside
// [0.01, pi-0.01].
func (c *Camera) Orbit(dTheta, dPhi float32) error {
	offset := c.config.Position.Subtract(c.config.LookAt)
	r := offset.Length()
	theta := math32.Atan2(offset.X, offset.Z) + dTheta
	phi := core.Clamp(math32.Acos(core.Clamp(offset.Y/r, -1, 1))+dPhi, minPolar, math32.Pi-minPolar)

	next := c.config
	next.Position = c.config.LookAt.Add(core.NewVec3(
		r*math32.Sin(phi)*math32.Sin(theta),
		r*math32.Cos(phi),
		r*math32.Sin(phi)*math32.Cos(theta),
	))
	return c.apply(next)
}

// Dolly moves the camera d units towards the look-at point, stopping 0.5 short of it
func (c *Camera) Dolly(d float32) error {
	offset := c.config.Position.Subtract(c.config.LookAt)
	r := max(offset.Length()-d, minDollyRange)

	next := c.config
	next.Position = c.config.LookAt.Add(offset.Normalize().Multiply(r))
	return c.apply(next)
}

// Pan slides both the camera and its look-at point along the view plane
func (c *Camera) Pan(dx, dy float32) error {
	right, up, _ := c.Basis()
	delta := right.Multiply(dx).Add(up.Multiply(dy))

	next := c.config
	next.Position = c.config.Position.Add(delta)
	next.LookAt = c.config.LookAt.Add(delta)
	return c.apply(next)
}

func (c *Camera) apply(next CameraConfig) error {
	prev := c.config
	c.config = next
	if err := c.update(); err != nil {
		c.config = prev
		return err
	}
	return nil
}

// Block writes the camera pose into a frame block
func (c *Camera) Block(b *kernel.FrameBlock) {
	p, t, u := c.config.Position, c.config.LookAt, c.config.Up
	b.CameraPos = mgl32.Vec4{p.X, p.Y, p.Z, 1}
	b.CameraTarget = mgl32.Vec4{t.X, t.Y, t.Z, mgl32.DegToRad(c.config.VFov)}
	b.CameraUp = mgl32.Vec4{u.X, u.Y, u.Z, 0}
}
