package tracer

import (
	"fmt"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
)

// Propagation limits. They shape how far beams travel in a puzzle, so
// changing them changes gameplay.
const (
	MaxDepth   = 18   // beams deeper than this are discarded
	MaxBounces = 48   // mirror reflections plus portal jumps per beam
	MaxSteps   = 560  // integration steps per beam
	StepLength = 0.24 // world units per step
)

// Effect tuning
const (
	GravityStrength   = 0.05
	MinGravityDist2   = 0.25
	SurfaceEpsilon    = 0.05
	DopplerFactor     = 0.08
	JumpDimming       = 0.35
	FilterLoss        = 0.92
	PolarizerCutoff   = 0.1
	PrismFanLoss      = 0.9
	LensWidthFactor   = 0.7
	LensIntensityGain = 1.15
)

// Beam is the value-typed state of one ray in flight
type Beam struct {
	Pos          core.Vec3
	Dir          core.Vec3 // unit length
	Color        core.Color
	Intensity    float64
	Phase        float64 // degrees in [0, 360)
	Wavelength   float64 // nm, clamped to the visible range
	Width        float64
	Polarization float64 // degrees
	Depth        int
	Bounces      int
}

// NewBeam creates the root beam emitted by a source
func NewBeam(src level.Source) Beam {
	color := src.Color
	if color == "" {
		color = core.White
	}
	wavelength := src.Wavelength
	if wavelength == 0 {
		wavelength = core.DefaultWavelength
	}
	return Beam{
		Pos:          src.Position(),
		Dir:          src.Direction.Normalize(),
		Color:        color,
		Intensity:    max(0, src.Intensity),
		Phase:        core.WrapDegrees(src.Phase),
		Wavelength:   core.ClampWavelength(wavelength),
		Width:        src.Width,
		Polarization: src.Polarization,
	}
}

// Cell returns the grid cell under the beam head
func (b Beam) Cell() core.Cell {
	return core.CellOf(b.Pos)
}

// sameStyle reports whether two beam states draw identically
func (b Beam) sameStyle(o Beam) bool {
	return b.Color == o.Color && b.Intensity == o.Intensity && b.Width == o.Width &&
		b.Wavelength == o.Wavelength && b.Phase == o.Phase
}

func (b Beam) String() string {
	return fmt.Sprintf("beam %s at %v dir %v I=%.2f depth=%d", b.Color, b.Pos, b.Dir, b.Intensity, b.Depth)
}
