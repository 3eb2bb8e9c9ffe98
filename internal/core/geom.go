// Package core provides fundamental value types shared across the engine.
// It has no dependencies outside the standard library so level logic stays
// pure and testable.
package core

import "math"

// Vec3 is a point or direction in level space.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// V creates a Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Length()
}

// Box is an axis-aligned bounding box centered on the origin.
type Box struct {
	HalfX, HalfY, HalfZ float64
}

// Clamp restricts p to lie inside the box.
func (b Box) Clamp(p Vec3) Vec3 {
	return Vec3{
		X: ClampF(p.X, -b.HalfX, b.HalfX),
		Y: ClampF(p.Y, -b.HalfY, b.HalfY),
		Z: ClampF(p.Z, -b.HalfZ, b.HalfZ),
	}
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Lerp interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
