package game

import (
	"fmt"
	"sync"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/resolve"
	"github.com/df07/go-lightpath/pkg/sim"
	"github.com/df07/go-lightpath/pkg/spatial"
	"github.com/df07/go-lightpath/pkg/tracer"
)

// Session is the game loop around the simulator. It owns the runtime
// state: elapsed time, gate timers, the active phase and player rotations.
// A Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	lvl    *level.Level
	rt     level.Runtime
	frame  sim.Frame
	ticks  int
	solved bool
	logger core.Logger
}

// NewSession starts a level at t=0 and simulates the first tick
func NewSession(lvl *level.Level, logger core.Logger) *Session {
	s := &Session{
		lvl:    lvl,
		rt:     level.NewRuntime(),
		logger: logger,
	}
	s.simulate()
	return s
}

// Level returns the level being played
func (s *Session) Level() *level.Level {
	return s.lvl
}

// Advance moves time forward by dt seconds: gate timers run down, the
// tick is simulated and new gate requests are merged.
func (s *Session) Advance(dt float64) sim.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dt < 0 {
		dt = 0
	}
	s.rt.Elapsed += dt
	for id, remaining := range s.rt.GateTimers {
		if remaining-dt <= 0 {
			delete(s.rt.GateTimers, id)
			core.Logf(s.logger, "Gate %q closed at %.2fs\n", id, s.rt.Elapsed)
			continue
		}
		s.rt.GateTimers[id] = remaining - dt
	}
	s.ticks++
	s.simulate()
	return s.frame
}

// Rotate turns a rotatable entity by delta degrees
func (s *Session) Rotate(id string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lvl.Entity(id)
	if !ok {
		return fmt.Errorf("unknown entity %q", id)
	}
	if !e.Kind.Rotatable() {
		return fmt.Errorf("%s cannot be rotated", e)
	}

	current, ok := s.rt.Orientations[id]
	if !ok {
		current = e.BaseOrientation()
	}
	s.rt.Orientations[id] = core.WrapDegrees(current + delta)
	s.simulate()
	return nil
}

// RotatableAt returns the first rotatable entity occupying cell at the
// current tick, following moving entities
func (s *Session) RotatableAt(cell core.Cell) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range spatial.Build(resolve.Resolve(s.lvl, s.rt)).At(cell) {
		if e.Kind.Rotatable() {
			return e.ID, true
		}
	}
	return "", false
}

// SetPhase selects the active gameplay phase
func (s *Session) SetPhase(p level.PhaseTag) error {
	if p != level.PhaseA && p != level.PhaseB {
		return fmt.Errorf("unknown phase %q", p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rt.ActivePhase = p
	s.simulate()
	return nil
}

// TogglePhase switches between phase A and B and returns the new phase
func (s *Session) TogglePhase() level.PhaseTag {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rt.Phase() == level.PhaseA {
		s.rt.ActivePhase = level.PhaseB
	} else {
		s.rt.ActivePhase = level.PhaseA
	}
	s.simulate()
	return s.rt.ActivePhase
}

// Reset restarts the level
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rt = level.NewRuntime()
	s.ticks = 0
	s.solved = false
	s.simulate()
}

// Frame returns the latest simulated tick
func (s *Session) Frame() sim.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Runtime returns a copy of the runtime state
func (s *Session) Runtime() level.Runtime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rt.Clone()
}

// Solved reports whether every objective has been solved in some tick
func (s *Session) Solved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.solved
}

// simulate runs one tick for the current runtime and merges gate requests.
// Requests only ever extend a timer. Callers hold the lock.
func (s *Session) simulate() {
	frame := sim.Simulate(s.lvl, s.rt, tracer.Options{Logger: s.logger})
	frame.Index = s.ticks

	for id, duration := range frame.GateTriggers {
		if duration <= s.rt.GateTimers[id] {
			continue
		}
		if s.rt.GateTimers[id] <= 0 {
			core.Logf(s.logger, "Gate %q opened for %.2fs\n", id, duration)
		}
		s.rt.GateTimers[id] = duration
	}

	if frame.Complete && !s.solved {
		s.solved = true
		core.Logf(s.logger, "Level %q complete at %.2fs\n", s.lvl.ID, s.rt.Elapsed)
	}
	s.frame = frame
}
