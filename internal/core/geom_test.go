package core

import (
	"math"
	"testing"
)

func TestVec3Arithmetic(t *testing.T) {
	a := V(1, 2, 3)
	b := V(4, 6, 3)

	if got := b.Sub(a); got != V(3, 4, 0) {
		t.Errorf("Sub() = %v, expected (3,4,0)", got)
	}
	if got := a.Add(b); got != V(5, 8, 6) {
		t.Errorf("Add() = %v, expected (5,8,6)", got)
	}
	if got := Distance(a, b); got != 5 {
		t.Errorf("Distance() = %v, expected 5", got)
	}
	if got := a.Scale(2); got != V(2, 4, 6) {
		t.Errorf("Scale() = %v, expected (2,4,6)", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := V(0, 3, 4).Normalize()
	if math.Abs(n.Length()-1) > 1e-12 {
		t.Errorf("Normalize() length = %v, expected 1", n.Length())
	}

	zero := Vec3{}
	if zero.Normalize() != zero {
		t.Error("Normalize() of zero vector should be zero")
	}
}

func TestBoxClamp(t *testing.T) {
	b := Box{HalfX: 10, HalfY: 2, HalfZ: 10}

	tests := []struct {
		name     string
		in, want Vec3
	}{
		{"inside", V(1, 1, 1), V(1, 1, 1)},
		{"above", V(0, 5, 0), V(0, 2, 0)},
		{"corner", V(-20, -20, 20), V(-10, -2, 10)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.Clamp(tc.in); got != tc.want {
				t.Errorf("Clamp(%v) = %v, expected %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},   // within range
		{-5, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tc := range tests {
		result := Clamp(tc.val, tc.min, tc.max)
		if result != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, result, tc.expected)
		}
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, min, max, expected float64
	}{
		{0.5, 0.0, 1.0, 0.5},
		{-0.2, 0.0, 1.0, 0.0},
		{1.7, 0.0, 1.0, 1.0},
	}

	for _, tc := range tests {
		result := ClampF(tc.val, tc.min, tc.max)
		if result != tc.expected {
			t.Errorf("ClampF(%f, %f, %f) = %f, expected %f", tc.val, tc.min, tc.max, result, tc.expected)
		}
	}
}
