package level

import (
	"fmt"
	"sort"

	"github.com/df07/go-lightpath/pkg/core"
)

// builtins maps level ids to constructors. Each call returns a fresh copy.
var builtins = map[string]func() *Level{
	"corridor":    NewCorridorLevel,
	"prism-split": NewPrismSplitLevel,
	"mirror-hall": NewMirrorHallLevel,
	"portal-hop":  NewPortalHopLevel,
	"slingshot":   NewSlingshotLevel,
	"gatekeeper":  NewGatekeeperLevel,
	"polarized":   NewPolarizedLevel,
	"spectrum":    NewSpectrumLevel,
	"doppler":     NewDopplerLevel,
	"phase-lock":  NewPhaseLockLevel,
	"pendulum":    NewPendulumLevel,
}

// Builtin returns a fresh copy of a built-in level
func Builtin(id string) (*Level, bool) {
	ctor, ok := builtins[id]
	if !ok {
		return nil, false
	}
	lvl := ctor()
	lvl.ApplyDefaults()
	return lvl, true
}

// BuiltinIDs returns the built-in level ids in sorted order
func BuiltinIDs() []string {
	ids := make([]string, 0, len(builtins))
	for id := range builtins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BuiltinLevels returns fresh copies of all built-in levels sorted by id
func BuiltinLevels() []*Level {
	var levels []*Level
	for _, id := range BuiltinIDs() {
		lvl, _ := Builtin(id)
		levels = append(levels, lvl)
	}
	return levels
}

func ptr[T any](v T) *T { return &v }

// NewCorridorLevel is a single cyan beam running down a 1-wide corridor
// into a wall
func NewCorridorLevel() *Level {
	entities := []Entity{{ID: "w1", Kind: KindWall, X: 5, Y: 5}}
	for x := 0; x <= 5; x++ {
		entities = append(entities,
			Entity{ID: fmt.Sprintf("n%d", x), Kind: KindWall, X: x, Y: 4},
			Entity{ID: fmt.Sprintf("s%d", x), Kind: KindWall, X: x, Y: 6},
		)
	}
	return &Level{
		ID:          "corridor",
		Description: "A cyan beam runs east down a corridor into a wall",
		Width:       10,
		Height:      11,
		Sources: []Source{
			{X: 1, Y: 5, Direction: core.East, Color: core.Cyan, Intensity: 100},
		},
		Entities: entities,
	}
}

// NewPrismSplitLevel splits white light into a red and a blue beam
func NewPrismSplitLevel() *Level {
	return &Level{
		ID:          "prism-split",
		Description: "A dual-output prism sends red east and blue west",
		Width:       13,
		Height:      9,
		Sources: []Source{
			{X: 6, Y: 1, Direction: core.South, Color: core.White, Intensity: 100},
		},
		Entities: []Entity{
			{ID: "prism", Kind: KindPrism, X: 6, Y: 4, Outputs: []PrismOutput{
				{Color: core.Red, Turn: -1},
				{Color: core.Blue, Turn: 1},
			}},
			{ID: "t-red", Kind: KindTarget, X: 11, Y: 4, Target: &TargetSpec{
				RequiredColors: []core.Color{core.Red},
			}},
			{ID: "t-blue", Kind: KindTarget, X: 1, Y: 4, Target: &TargetSpec{
				RequiredColors: []core.Color{core.Blue},
			}},
		},
		Objectives: []string{"t-red", "t-blue"},
	}
}

// NewMirrorHallLevel traps a beam between two facing mirrors
func NewMirrorHallLevel() *Level {
	return &Level{
		ID:          "mirror-hall",
		Description: "Two facing mirrors with nothing to absorb the beam",
		Width:       13,
		Height:      5,
		Sources: []Source{
			{X: 6, Y: 2, Direction: core.East, Color: core.Yellow},
		},
		Entities: []Entity{
			{ID: "m-west", Kind: KindMirror, X: 5, Y: 2, Orientation: 90},
			{ID: "m-east", Kind: KindMirror, X: 7, Y: 2, Orientation: 90},
		},
	}
}

// NewPortalHopLevel carries a beam through a linked portal pair
func NewPortalHopLevel() *Level {
	return &Level{
		ID:          "portal-hop",
		Description: "Jump the beam past a wall through linked portals",
		Width:       12,
		Height:      8,
		Sources: []Source{
			{X: 1, Y: 2, Direction: core.East, Color: core.Magenta},
		},
		Entities: []Entity{
			{ID: "p-in", Kind: KindPortal, X: 4, Y: 2, Link: "hop"},
			{ID: "p-out", Kind: KindPortal, X: 4, Y: 6, Link: "hop"},
			{ID: "w1", Kind: KindWall, X: 7, Y: 2},
			{ID: "t1", Kind: KindTarget, X: 10, Y: 6},
		},
		Objectives: []string{"t1"},
	}
}

// NewSlingshotLevel bends a beam around a gravity node
func NewSlingshotLevel() *Level {
	return &Level{
		ID:          "slingshot",
		Description: "Sandbox: a heavy node curves a passing beam",
		Width:       16,
		Height:      11,
		Sources: []Source{
			{X: 1, Y: 5, Direction: core.East, Color: core.White},
		},
		Entities: []Entity{
			{ID: "well", Kind: KindGravity, X: 8, Y: 3, Mass: 6, Radius: 5},
		},
	}
}

// NewGatekeeperLevel needs a receptor to open a gate for a second beam
func NewGatekeeperLevel() *Level {
	return &Level{
		ID:          "gatekeeper",
		Description: "Feed the receptor to open the gate for the lower beam",
		Width:       12,
		Height:      8,
		Sources: []Source{
			{X: 1, Y: 2, Direction: core.East, Color: core.Green},
			{X: 1, Y: 5, Direction: core.East, Color: core.Red},
		},
		Entities: []Entity{
			{ID: "r1", Kind: KindReceptor, X: 6, Y: 2, Gate: "g1", Duration: 2},
			{ID: "g1", Kind: KindGate, X: 5, Y: 5},
			{ID: "t1", Kind: KindTarget, X: 10, Y: 5, Target: &TargetSpec{
				RequiredColors: []core.Color{core.Red},
			}},
		},
		Objectives: []string{"t1"},
	}
}

// NewPolarizedLevel chains two polarizers in front of an intensity target
func NewPolarizedLevel() *Level {
	return &Level{
		ID:          "polarized",
		Description: "Rotate the first polarizer to let enough light through",
		Width:       12,
		Height:      7,
		Sources: []Source{
			{X: 1, Y: 3, Direction: core.East, Color: core.White, Intensity: 100},
		},
		Entities: []Entity{
			{ID: "p1", Kind: KindPolarizer, X: 4, Y: 3, Orientation: 60},
			{ID: "p2", Kind: KindPolarizer, X: 7, Y: 3, Orientation: 90},
			{ID: "t1", Kind: KindTarget, X: 10, Y: 3, Target: &TargetSpec{
				RequiredIntensity: ptr(20.0),
			}},
		},
		Objectives: []string{"t1"},
	}
}

// NewSpectrumLevel fans white light into three coloured targets
func NewSpectrumLevel() *Level {
	return &Level{
		ID:          "spectrum",
		Description: "Split white light and route each colour home",
		Width:       12,
		Height:      9,
		Sources: []Source{
			{X: 1, Y: 4, Direction: core.East, Color: core.White, Intensity: 120},
		},
		Entities: []Entity{
			{ID: "prism", Kind: KindPrism, X: 4, Y: 4},
			{ID: "f-green", Kind: KindFilter, X: 7, Y: 4, Color: core.Green},
			{ID: "t-red", Kind: KindTarget, X: 4, Y: 1, Target: &TargetSpec{
				RequiredColors: []core.Color{core.Red},
			}},
			{ID: "t-green", Kind: KindTarget, X: 10, Y: 4, Target: &TargetSpec{
				RequiredColors:    []core.Color{core.Green},
				RequiredIntensity: ptr(30.0),
			}},
			{ID: "t-blue", Kind: KindTarget, X: 4, Y: 7, Target: &TargetSpec{
				RequiredColors: []core.Color{core.Blue},
			}},
		},
		Objectives: []string{"t-red", "t-green", "t-blue"},
	}
}

// NewDopplerLevel needs the moving mirror to blue-shift the beam
func NewDopplerLevel() *Level {
	return &Level{
		ID:          "doppler",
		Description: "Catch the oscillating mirror while it rushes toward the beam",
		Width:       10,
		Height:      10,
		Sources: []Source{
			{X: 1, Y: 3, Direction: core.East, Color: core.White, Wavelength: 560},
		},
		Entities: []Entity{
			{ID: "m1", Kind: KindMirror, X: 6, Y: 3, Orientation: 45, Doppler: true,
				Motion: &Motion{Axis: AxisX, Range: 0.4, Speed: 2}},
			{ID: "t1", Kind: KindTarget, X: 6, Y: 7, Target: &TargetSpec{
				RequiredWavelengthMax: ptr(540.0),
			}},
		},
		Objectives: []string{"t1"},
	}
}

// NewPhaseLockLevel shifts the beam phase behind a wall that only exists
// in phase A
func NewPhaseLockLevel() *Level {
	return &Level{
		ID:          "phase-lock",
		Description: "Switch to phase B to remove the blocker",
		Width:       12,
		Height:      5,
		Sources: []Source{
			{X: 1, Y: 2, Direction: core.East, Color: core.Blue},
		},
		Entities: []Entity{
			{ID: "s1", Kind: KindPhaseShifter, X: 3, Y: 2, Delta: 90},
			{ID: "s2", Kind: KindPhaseShifter, X: 5, Y: 2, Delta: 90},
			{ID: "blocker", Kind: KindWall, X: 7, Y: 2, PhaseTag: PhaseA},
			{ID: "lens", Kind: KindLens, X: 8, Y: 2, Lens: LensConvex},
			{ID: "t1", Kind: KindTarget, X: 10, Y: 2, Target: &TargetSpec{
				RequiredPhase: ptr(180.0),
			}},
		},
		Objectives: []string{"t1"},
	}
}

// NewPendulumLevel swings a wall across the beam path
func NewPendulumLevel() *Level {
	return &Level{
		ID:          "pendulum",
		Description: "Wait for the swinging wall to clear the path",
		Width:       12,
		Height:      7,
		Sources: []Source{
			{X: 1, Y: 3, Direction: core.East, Color: core.Red},
		},
		Entities: []Entity{
			{ID: "swing", Kind: KindWall, X: 6, Y: 3, Motion: &Motion{Axis: AxisY, Range: 2, Speed: 1}},
			{ID: "t1", Kind: KindTarget, X: 10, Y: 3},
		},
		Objectives: []string{"t1"},
	}
}
