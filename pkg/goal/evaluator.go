package goal

import (
	"sort"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/tracer"
)

// PhaseTolerance is the circular distance in degrees within which a hit
// matches a required phase
const PhaseTolerance = 12.0

// Criteria is the predicate a target's hits must satisfy. Unset fields
// always pass.
type Criteria level.TargetSpec

// Satisfied reports whether hits meet every criterion. At least one hit
// is always required.
func (c Criteria) Satisfied(hits []tracer.TargetHit) bool {
	if len(hits) == 0 {
		return false
	}
	if len(hits) < c.RequiredHits {
		return false
	}

	seen := make(map[core.Color]bool)
	total := 0.0
	phaseOK := c.RequiredPhase == nil
	wavelengthOK := c.RequiredWavelengthMax == nil
	for _, h := range hits {
		seen[h.Color] = true
		total += h.Intensity
		if c.RequiredPhase != nil && core.CircularDistance(h.Phase, *c.RequiredPhase) <= PhaseTolerance {
			phaseOK = true
		}
		if c.RequiredWavelengthMax != nil && h.Wavelength <= *c.RequiredWavelengthMax {
			wavelengthOK = true
		}
	}

	for _, want := range c.RequiredColors {
		if !seen[want] {
			return false
		}
	}
	if c.RequiredIntensity != nil && total < *c.RequiredIntensity {
		return false
	}
	return phaseOK && wavelengthOK
}

// Report summarises one objective for UI feedback
type Report struct {
	Hits      int          `json:"hits"`
	Intensity float64      `json:"intensity"`
	Colors    []core.Color `json:"colors"`
	Solved    bool         `json:"solved"`
}

// Evaluation is the goal state of one tick
type Evaluation struct {
	Solved  map[string]bool   `json:"solved"`
	Reports map[string]Report `json:"reports"`
}

// Complete reports whether the level has objectives and all are solved
func (e Evaluation) Complete(lvl *level.Level) bool {
	if len(lvl.Objectives) == 0 {
		return false
	}
	for _, id := range lvl.Objectives {
		if !e.Solved[id] {
			return false
		}
	}
	return true
}

// Evaluate checks every objective of lvl against this tick's hits. Nothing
// carries over between calls.
func Evaluate(lvl *level.Level, hits []tracer.TargetHit) Evaluation {
	byTarget := make(map[string][]tracer.TargetHit)
	for _, h := range hits {
		byTarget[h.TargetID] = append(byTarget[h.TargetID], h)
	}

	eval := Evaluation{
		Solved:  make(map[string]bool),
		Reports: make(map[string]Report),
	}
	for _, id := range lvl.Objectives {
		var criteria Criteria
		if e, ok := lvl.Entity(id); ok {
			criteria = Criteria(e.TargetSpec())
		}
		targetHits := byTarget[id]
		solved := criteria.Satisfied(targetHits)
		if solved {
			eval.Solved[id] = true
		}
		eval.Reports[id] = report(targetHits, solved)
	}
	return eval
}

func report(hits []tracer.TargetHit, solved bool) Report {
	r := Report{Hits: len(hits), Solved: solved}
	seen := make(map[core.Color]bool)
	for _, h := range hits {
		r.Intensity += h.Intensity
		if !seen[h.Color] {
			seen[h.Color] = true
			r.Colors = append(r.Colors, h.Color)
		}
	}
	sort.Slice(r.Colors, func(i, j int) bool { return r.Colors[i] < r.Colors[j] })
	return r
}
