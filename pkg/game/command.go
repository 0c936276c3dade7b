package game

import (
	"fmt"

	"github.com/df07/go-lightpath/pkg/level"
)

// Command is a player action sent by remote front-ends
type Command struct {
	Type  string  `json:"type"`            // advance, rotate, phase, toggle, reset
	ID    string  `json:"id,omitempty"`    // rotate target
	Delta float64 `json:"delta,omitempty"` // rotate degrees, advance seconds
	Phase string  `json:"phase,omitempty"` // A or B
}

// Apply executes a command against the session
func (s *Session) Apply(cmd Command) error {
	switch cmd.Type {
	case "advance":
		s.Advance(cmd.Delta)
	case "rotate":
		delta := cmd.Delta
		if delta == 0 {
			delta = 90
		}
		return s.Rotate(cmd.ID, delta)
	case "phase":
		return s.SetPhase(level.PhaseTag(cmd.Phase))
	case "toggle":
		s.TogglePhase()
	case "reset":
		s.Reset()
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
	return nil
}
