// Package kernel holds the fixed-layout per-frame parameter blocks and the
// per-pixel entry points that consume them. A block is written once by the
// host and only read while a frame renders.
package kernel

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-procedural-raymarcher/pkg/procedural"
	"github.com/df07/go-procedural-raymarcher/pkg/raymarch"
	"github.com/df07/go-procedural-raymarcher/pkg/xray"
)

// Block sizes in bytes
const (
	FrameBlockSize      = 96
	ProceduralBlockSize = 48
	XRayBlockSize       = 48
)

// FrameBlock is the 3D frame parameter block. Vec4 fields sit on 16 byte
// boundaries; CameraTarget.W carries the vertical field of view in radians.
type FrameBlock struct {
	Resolution   mgl32.Vec2 // offset 0
	Time         float32    // offset 8
	_            float32    // offset 12
	CameraPos    mgl32.Vec4 // offset 16
	CameraTarget mgl32.Vec4 // offset 32
	CameraUp     mgl32.Vec4 // offset 48
	MaxSteps     uint32     // offset 64
	MaxDistance  float32    // offset 68
	Epsilon      float32    // offset 72
	Flags        uint32     // offset 76
	SceneID      uint32     // offset 80
	_            [3]uint32  // offset 84, pads to 96
}

// ProceduralBlock is the 2D frame parameter block
type ProceduralBlock struct {
	Resolution  mgl32.Vec2 // offset 0
	Time        float32    // offset 8
	Zoom        float32    // offset 12
	Pan         mgl32.Vec2 // offset 16
	ContentType uint32     // offset 24
	Param1      float32    // offset 28
	Param2      float32    // offset 32
	Param3      float32    // offset 36
	Param4      float32    // offset 40
	_           uint32     // offset 44
}

// XRayBlock mirrors ProceduralBlock with the overlay selector in place of
// the content type
type XRayBlock struct {
	Resolution mgl32.Vec2
	Time       float32
	Zoom       float32
	Pan        mgl32.Vec2
	XRayType   uint32
	Param1     float32
	Param2     float32
	Param3     float32
	Param4     float32
	_          uint32
}

// NewFrameBlock returns a block with the default march settings and camera
func NewFrameBlock(width, height int) FrameBlock {
	s := raymarch.DefaultSettings()
	b := FrameBlock{
		Resolution:   mgl32.Vec2{float32(width), float32(height)},
		CameraPos:    mgl32.Vec4{0, 0, 5, 1},
		CameraTarget: mgl32.Vec4{0, 0, 0, mgl32.DegToRad(45)},
		CameraUp:     mgl32.Vec4{0, 1, 0, 0},
	}
	b.SetSettings(s)
	return b
}

// Settings extracts the march settings
func (b *FrameBlock) Settings() raymarch.Settings {
	return raymarch.Settings{
		MaxSteps:    b.MaxSteps,
		MaxDistance: b.MaxDistance,
		Epsilon:     b.Epsilon,
		Flags:       raymarch.Flags(b.Flags),
	}
}

// SetSettings stores the march settings, clamping the step count to the hard ceiling
func (b *FrameBlock) SetSettings(s raymarch.Settings) {
	b.MaxSteps = uint32(s.StepLimit())
	b.MaxDistance = s.MaxDistance
	b.Epsilon = s.Epsilon
	b.Flags = uint32(s.Flags)
}

// NewProceduralBlock returns a 2D block at zoom 1 showing content
func NewProceduralBlock(width, height int, content procedural.ContentType) ProceduralBlock {
	return ProceduralBlock{
		Resolution:  mgl32.Vec2{float32(width), float32(height)},
		Zoom:        1,
		ContentType: uint32(content),
	}
}

// Params converts the block to generator parameters
func (b *ProceduralBlock) Params() procedural.Params {
	return procedural.Params{
		Content: procedural.ContentType(b.ContentType),
		Time:    b.Time,
		P1:      b.Param1,
		P2:      b.Param2,
		P3:      b.Param3,
		P4:      b.Param4,
	}
}

// NewXRayBlock returns an overlay block at zoom 1
func NewXRayBlock(width, height int, mode xray.Type) XRayBlock {
	return XRayBlock{
		Resolution: mgl32.Vec2{float32(width), float32(height)},
		Zoom:       1,
		XRayType:   uint32(mode),
	}
}

// Params converts the block to overlay parameters
func (b *XRayBlock) Params() xray.Params {
	return xray.Params{
		Type: xray.Type(b.XRayType),
		Time: b.Time,
		P1:   b.Param1,
		P2:   b.Param2,
		P3:   b.Param3,
		P4:   b.Param4,
	}
}

func marshal(v any, size int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(size)
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		return nil, fmt.Errorf("encode parameter block: %w", err)
	}
	return buf.Bytes(), nil
}

func unmarshal(data []byte, v any, size int) error {
	if len(data) != size {
		return fmt.Errorf("decode parameter block: got %d bytes, want %d", len(data), size)
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, v); err != nil {
		return fmt.Errorf("decode parameter block: %w", err)
	}
	return nil
}

// MarshalBinary encodes the block in its little-endian upload layout
func (b FrameBlock) MarshalBinary() ([]byte, error) {
	return marshal(&b, FrameBlockSize)
}

// UnmarshalBinary decodes a block produced by MarshalBinary
func (b *FrameBlock) UnmarshalBinary(data []byte) error {
	return unmarshal(data, b, FrameBlockSize)
}

// MarshalBinary encodes the block in its little-endian upload layout
func (b ProceduralBlock) MarshalBinary() ([]byte, error) {
	return marshal(&b, ProceduralBlockSize)
}

// UnmarshalBinary decodes a block produced by MarshalBinary
func (b *ProceduralBlock) UnmarshalBinary(data []byte) error {
	return unmarshal(data, b, ProceduralBlockSize)
}

// MarshalBinary encodes the block in its little-endian upload layout
func (b XRayBlock) MarshalBinary() ([]byte, error) {
	return marshal(&b, XRayBlockSize)
}

// UnmarshalBinary decodes a block produced by MarshalBinary
func (b *XRayBlock) UnmarshalBinary(data []byte) error {
	return unmarshal(data, b, XRayBlockSize)
}
