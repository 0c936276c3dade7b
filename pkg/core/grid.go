package core

import (
	"fmt"
	"math"
)

// Cell is an integer grid coordinate. Cell centres sit on integer world
// coordinates, so cell (3,4) covers [2.5,3.5) x [3.5,4.5).
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CellOf returns the cell containing a world position
func CellOf(p Vec3) Cell {
	return Cell{X: int(math.Floor(p.X + 0.5)), Y: int(math.Floor(p.Y + 0.5))}
}

// Center returns the world position of the cell centre (Z = 0)
func (c Cell) Center() Vec3 {
	return Vec3{X: float64(c.X), Y: float64(c.Y)}
}

// Add offsets the cell by dx, dy
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// InBounds reports whether the cell lies inside a width x height grid
func (c Cell) InBounds(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// ClipToGrid clamps a world position onto the outer border of a
// width x height grid.
func ClipToGrid(p Vec3, width, height int) Vec3 {
	return Vec3{
		X: max(-0.5, min(float64(width)-0.5, p.X)),
		Y: max(-0.5, min(float64(height)-0.5, p.Y)),
		Z: p.Z,
	}
}

// Radians converts degrees to radians
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// WrapDegrees maps an angle into [0, 360)
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// CircularDistance returns the shortest angular distance between two
// angles in degrees, in [0, 180].
func CircularDistance(a, b float64) float64 {
	d := WrapDegrees(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}
