package level

import (
	"fmt"

	"github.com/df07/go-lightpath/pkg/core"
)

// Kind identifies the entity variant
type Kind string

const (
	KindWall         Kind = "wall"
	KindGate         Kind = "gate"
	KindPortal       Kind = "portal"
	KindMirror       Kind = "mirror"
	KindPrism        Kind = "prism"
	KindFilter       Kind = "filter"
	KindPolarizer    Kind = "polarizer"
	KindLens         Kind = "lens"
	KindPhaseShifter Kind = "phase_shifter"
	KindGravity      Kind = "gravity"
	KindReceptor     Kind = "receptor"
	KindTarget       Kind = "target"
	KindCollectible  Kind = "collectible"
)

// Kinds lists every entity kind in interaction priority order
var Kinds = []Kind{
	KindWall, KindGate, KindPortal, KindMirror, KindPrism,
	KindFilter, KindPolarizer, KindLens, KindPhaseShifter,
	KindReceptor, KindTarget, KindGravity, KindCollectible,
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Rotatable reports whether players may rotate entities of this kind
func (k Kind) Rotatable() bool {
	switch k {
	case KindMirror, KindPrism, KindPolarizer, KindPortal:
		return true
	}
	return false
}

// PhaseTag gates an entity to one gameplay phase. Empty means both.
type PhaseTag string

const (
	PhaseA    PhaseTag = "A"
	PhaseB    PhaseTag = "B"
	PhaseBoth PhaseTag = ""
)

// Axis is the direction an oscillating entity moves along
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Motion describes an oscillating mover: offset = sin(t*Speed + Phase) * Range
type Motion struct {
	Axis  Axis    `json:"axis"`
	Range float64 `json:"range"`
	Speed float64 `json:"speed"`
	Phase float64 `json:"phase,omitempty"`
}

// PrismOutput is one outgoing beam of a prism. Turn counts quarter turns,
// negative values turn counter-clockwise on screen.
type PrismOutput struct {
	Color core.Color `json:"color"`
	Turn  int        `json:"turn"`
}

// DefaultPrismOutputs is the RGB fan used when a prism lists no outputs
var DefaultPrismOutputs = []PrismOutput{
	{Color: core.Red, Turn: -1},
	{Color: core.Green, Turn: 0},
	{Color: core.Blue, Turn: 1},
}

// LensType selects focusing or spreading behaviour
type LensType string

const (
	LensConvex  LensType = "convex"
	LensConcave LensType = "concave"
)

// TargetSpec holds the goal criteria of a target. Unset fields are vacuous.
type TargetSpec struct {
	RequiredColors        []core.Color `json:"requiredColors,omitempty"`
	RequiredHits          int          `json:"requiredHits,omitempty"`
	RequiredIntensity     *float64     `json:"requiredIntensity,omitempty"`
	RequiredPhase         *float64     `json:"requiredPhase,omitempty"`
	RequiredWavelengthMax *float64     `json:"requiredWavelengthMax,omitempty"`
	Absorb                *bool        `json:"absorb,omitempty"`
}

// Absorbs reports whether the target stops beams (default true)
func (t TargetSpec) Absorbs() bool {
	return t.Absorb == nil || *t.Absorb
}

// Entity is a placed piece of the level. Kind selects which of the
// kind-specific fields are meaningful.
type Entity struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Motion   *Motion  `json:"motion,omitempty"`
	PhaseTag PhaseTag `json:"phaseTag,omitempty"`

	// Mirror, prism, polarizer
	Orientation float64 `json:"orientation,omitempty"`

	// Mirror
	Doppler bool `json:"doppler,omitempty"`

	// Gate
	Open bool `json:"open,omitempty"`

	// Portal
	Link   string  `json:"link,omitempty"`
	Facing float64 `json:"facing,omitempty"`

	// Prism
	Outputs []PrismOutput `json:"outputs,omitempty"`

	// Filter
	Color core.Color `json:"color,omitempty"`

	// Lens
	Lens LensType `json:"lens,omitempty"`

	// Phase shifter
	Delta float64 `json:"delta,omitempty"`

	// Gravity node
	Mass   float64 `json:"mass,omitempty"`
	Radius float64 `json:"radius,omitempty"`

	// Receptor
	Gate        string  `json:"gate,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	PassThrough bool    `json:"passThrough,omitempty"`

	// Target
	Target *TargetSpec `json:"target,omitempty"`
}

// Cell returns the base grid cell of the entity
func (e *Entity) Cell() core.Cell {
	return core.Cell{X: e.X, Y: e.Y}
}

// PrismOutputs returns the configured outputs or the default RGB fan
func (e *Entity) PrismOutputs() []PrismOutput {
	if len(e.Outputs) == 0 {
		return DefaultPrismOutputs
	}
	return e.Outputs
}

// TargetSpec returns the target criteria, or an empty spec
func (e *Entity) TargetSpec() TargetSpec {
	if e.Target == nil {
		return TargetSpec{}
	}
	return *e.Target
}

// BaseOrientation returns the authored angle used for rotation:
// facing for portals, orientation for everything else.
func (e *Entity) BaseOrientation() float64 {
	if e.Kind == KindPortal {
		return e.Facing
	}
	return e.Orientation
}

func (e *Entity) String() string {
	return fmt.Sprintf("%s %q at (%d,%d)", e.Kind, e.ID, e.X, e.Y)
}

// Priority returns the interaction rank of a kind inside one cell. Lower
// ranks are scanned first.
func Priority(k Kind) int {
	switch k {
	case KindWall:
		return 0
	case KindGate:
		return 1
	case KindPortal:
		return 2
	case KindMirror:
		return 3
	case KindPrism:
		return 4
	case KindFilter, KindPolarizer, KindLens, KindPhaseShifter:
		return 5
	case KindReceptor:
		return 6
	case KindTarget:
		return 7
	default:
		return 8
	}
}
