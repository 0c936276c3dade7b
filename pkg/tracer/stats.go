package tracer

import (
	"fmt"
	"sort"
	"strings"
)

// Reason says why a beam stopped
type Reason string

const (
	ReasonWall        Reason = "wall"
	ReasonGate        Reason = "gate"
	ReasonAbsorbed    Reason = "absorbed" // colour filter mismatch
	ReasonPolarized   Reason = "polarized"
	ReasonReceptor    Reason = "receptor"
	ReasonTarget      Reason = "target"
	ReasonBounceCap   Reason = "bounce_cap"
	ReasonUnlinked    Reason = "unlinked_portal"
	ReasonMissingGate Reason = "missing_gate"
	ReasonOutOfBounds Reason = "out_of_bounds"
	ReasonStepBudget  Reason = "step_budget"
	ReasonSplit       Reason = "split"
	ReasonDepthCap    Reason = "depth_cap"
)

// Stats contains statistics about one trace
type Stats struct {
	Beams    int            `json:"beams"`    // beams popped from the queue and traced
	Steps    int            `json:"steps"`    // integration steps over all beams
	Bounces  int            `json:"bounces"`  // mirror reflections and portal jumps
	Splits   int            `json:"splits"`   // prism splits
	MaxDepth int            `json:"maxDepth"` // deepest traced beam
	Endings  map[Reason]int `json:"endings"`  // termination reasons
}

func newStats() Stats {
	return Stats{Endings: make(map[Reason]int)}
}

func (s *Stats) end(r Reason) {
	s.Endings[r]++
}

// Ended returns how many beams stopped for reason r
func (s Stats) Ended(r Reason) int {
	return s.Endings[r]
}

func (s Stats) String() string {
	reasons := make([]string, 0, len(s.Endings))
	for r, n := range s.Endings {
		reasons = append(reasons, fmt.Sprintf("%s=%d", r, n))
	}
	sort.Strings(reasons)
	return fmt.Sprintf("%d beams, %d steps, %d bounces, %d splits, max depth %d [%s]",
		s.Beams, s.Steps, s.Bounces, s.Splits, s.MaxDepth, strings.Join(reasons, " "))
}
