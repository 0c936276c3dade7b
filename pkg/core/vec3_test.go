package core

import (
	"math"
	"testing"
)

func TestVec3_RotateZ(t *testing.T) {
	tests := []struct {
		name     string
		vector   Vec3
		angle    float64
		expected Vec3
	}{
		{
			name:     "No rotation",
			vector:   East,
			angle:    0,
			expected: East,
		},
		{
			name:     "Quarter turn east to south",
			vector:   East,
			angle:    math.Pi / 2,
			expected: South,
		},
		{
			name:     "Negative quarter turn south to east",
			vector:   South,
			angle:    -math.Pi / 2,
			expected: East,
		},
		{
			name:     "Half turn",
			vector:   North,
			angle:    math.Pi,
			expected: South,
		},
		{
			name:     "Z is preserved",
			vector:   NewVec3(1, 0, 0.5),
			angle:    math.Pi / 2,
			expected: NewVec3(0, 1, 0.5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.vector.RotateZ(tt.angle)

			const tolerance = 1e-9
			if result.Subtract(tt.expected).Length() > tolerance {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_NormalizeIsUnit(t *testing.T) {
	vectors := []Vec3{
		NewVec3(3, 4, 0),
		NewVec3(-0.001, 0.002, 0),
		NewVec3(1e6, -2e6, 5),
	}
	for _, v := range vectors {
		n := v.Normalize()
		if !n.IsUnit(1e-12) {
			t.Errorf("Normalize(%v) has length %f", v, n.Length())
		}
	}

	if zero := (Vec3{}).Normalize(); zero != (Vec3{}) {
		t.Errorf("Normalizing the zero vector should return zero, got %v", zero)
	}
}

func TestCellOf(t *testing.T) {
	tests := []struct {
		point    Vec3
		expected Cell
	}{
		{NewVec3(5, 5, 0), Cell{5, 5}},
		{NewVec3(4.49, 5, 0), Cell{4, 5}},
		{NewVec3(4.5, 5, 0), Cell{5, 5}},
		{NewVec3(-0.4, 0.2, 0), Cell{0, 0}},
		{NewVec3(-0.6, 0, 0), Cell{-1, 0}},
	}
	for _, tt := range tests {
		if got := CellOf(tt.point); got != tt.expected {
			t.Errorf("CellOf(%v) = %v, want %v", tt.point, got, tt.expected)
		}
	}
}

func TestCell_InBounds(t *testing.T) {
	if !(Cell{0, 0}).InBounds(3, 3) {
		t.Error("(0,0) should be inside a 3x3 grid")
	}
	if (Cell{3, 1}).InBounds(3, 3) {
		t.Error("(3,1) should be outside a 3x3 grid")
	}
	if (Cell{1, -1}).InBounds(3, 3) {
		t.Error("(1,-1) should be outside a 3x3 grid")
	}
}

func TestClipToGrid(t *testing.T) {
	got := ClipToGrid(NewVec3(12.3, -2, 1), 10, 8)
	want := NewVec3(9.5, -0.5, 1)
	if !got.Equals(want, 1e-12) {
		t.Errorf("ClipToGrid = %v, want %v", got, want)
	}
}

func TestAngles(t *testing.T) {
	wraps := []struct{ in, want float64 }{
		{0, 0}, {360, 0}, {370, 10}, {-10, 350}, {-730, 350},
	}
	for _, tt := range wraps {
		if got := WrapDegrees(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WrapDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	distances := []struct{ a, b, want float64 }{
		{0, 0, 0}, {350, 5, 15}, {5, 350, 15}, {90, 270, 180}, {10, 100, 90},
	}
	for _, tt := range distances {
		if got := CircularDistance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CircularDistance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
