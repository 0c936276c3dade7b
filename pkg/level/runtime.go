package level

import "maps"

// Runtime is the per-tick world state owned by the game loop. The simulator
// only reads it.
type Runtime struct {
	Elapsed      float64            `json:"elapsed"`
	ActivePhase  PhaseTag           `json:"activePhase"`
	GateTimers   map[string]float64 `json:"gateTimers,omitempty"`
	Orientations map[string]float64 `json:"orientations,omitempty"`
}

// NewRuntime returns a runtime at t=0 in phase A
func NewRuntime() Runtime {
	return Runtime{
		ActivePhase:  PhaseA,
		GateTimers:   make(map[string]float64),
		Orientations: make(map[string]float64),
	}
}

// Clone returns a deep copy so the caller can mutate it freely
func (r Runtime) Clone() Runtime {
	c := r
	c.GateTimers = maps.Clone(r.GateTimers)
	c.Orientations = maps.Clone(r.Orientations)
	if c.GateTimers == nil {
		c.GateTimers = make(map[string]float64)
	}
	if c.Orientations == nil {
		c.Orientations = make(map[string]float64)
	}
	return c
}

// Phase returns the active phase, defaulting to A
func (r Runtime) Phase() PhaseTag {
	if r.ActivePhase == PhaseBoth {
		return PhaseA
	}
	return r.ActivePhase
}

// PhaseActive reports whether an entity tagged with tag is active
func (r Runtime) PhaseActive(tag PhaseTag) bool {
	return tag == PhaseBoth || tag == r.Phase()
}

// GateOpenFor returns the remaining open time of a gate
func (r Runtime) GateOpenFor(id string) float64 {
	return r.GateTimers[id]
}
