package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vec2 represents a 2D vector, used for screen uv and procedural world space
type Vec2 struct {
	X, Y float32
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Subtract returns the difference of two vectors
func (v Vec2) Subtract(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Multiply returns the vector scaled by a scalar
func (v Vec2) Multiply(scalar float32) Vec2 {
	return Vec2{v.X * scalar, v.Y * scalar}
}

// Dot returns the dot product of two vectors
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Length returns the magnitude of the vector
func (v Vec2) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns a unit vector in the same direction
func (v Vec2) Normalize() Vec2 {
	length := v.Length()
	if length == 0 {
		return Vec2{0, 0}
	}
	return Vec2{v.X / length, v.Y / length}
}

// Floor returns the component-wise floor
func (v Vec2) Floor() Vec2 {
	return Vec2{math32.Floor(v.X), math32.Floor(v.Y)}
}

// Fract returns the component-wise fractional part
func (v Vec2) Fract() Vec2 {
	return Vec2{Fract(v.X), Fract(v.Y)}
}

// Abs returns the component-wise absolute value
func (v Vec2) Abs() Vec2 {
	return Vec2{math32.Abs(v.X), math32.Abs(v.Y)}
}

// Mgl converts to an mgl32 vector
func (v Vec2) Mgl() mgl32.Vec2 {
	return mgl32.Vec2{v.X, v.Y}
}

// FromMgl2 converts an mgl32 vector to a Vec2
func FromMgl2(v mgl32.Vec2) Vec2 {
	return Vec2{v[0], v[1]}
}
