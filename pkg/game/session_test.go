package game

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
)

// testLogger collects log lines
type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *testLogger) contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func newSession(t *testing.T, id string) (*Session, *testLogger) {
	t.Helper()
	lvl, ok := level.Builtin(id)
	if !ok {
		t.Fatalf("missing built-in level %q", id)
	}
	logger := &testLogger{}
	return NewSession(lvl, logger), logger
}

func TestGatekeeperOpensOnNextTick(t *testing.T) {
	s, logger := newSession(t, "gatekeeper")

	if s.Frame().Complete {
		t.Fatal("gate should still be closed on the first tick")
	}
	if got := s.Runtime().GateTimers["g1"]; got != 2 {
		t.Fatalf("gate timer = %v, want 2 after the receptor fired", got)
	}
	if !logger.contains(`Gate "g1" opened`) {
		t.Error("gate opening should be logged")
	}

	frame := s.Advance(0.1)
	if !frame.Complete || !s.Solved() {
		t.Error("beam should pass the open gate on the next tick")
	}
	if got := s.Runtime().GateTimers["g1"]; got != 2 {
		t.Errorf("gate timer = %v, want it refreshed to 2", got)
	}
	if !logger.contains("complete") {
		t.Error("completion should be logged")
	}
	if frame.Index != 1 {
		t.Errorf("frame index = %d, want 1", frame.Index)
	}
}

func TestGateTimerRunsDown(t *testing.T) {
	lvl, _ := level.Builtin("gatekeeper")
	lvl.Sources = lvl.Sources[1:] // no beam feeds the receptor
	s := NewSession(lvl, nil)

	s.mu.Lock()
	s.rt.GateTimers["g1"] = 1
	s.mu.Unlock()

	if !s.Advance(0.5).Complete {
		t.Error("gate should be open with time remaining")
	}
	if math.Abs(s.Runtime().GateTimers["g1"]-0.5) > 1e-9 {
		t.Errorf("timer = %v, want 0.5", s.Runtime().GateTimers["g1"])
	}
	if s.Advance(0.6).Complete {
		t.Error("gate should have closed")
	}
	if _, ok := s.Runtime().GateTimers["g1"]; ok {
		t.Error("expired timer should be removed")
	}
}

func TestRotate(t *testing.T) {
	s, _ := newSession(t, "polarized")
	if s.Frame().Complete {
		t.Fatal("polarized should start unsolved")
	}

	if err := s.Rotate("p1", -15); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if got := s.Runtime().Orientations["p1"]; got != 45 {
		t.Errorf("orientation = %v, want 45", got)
	}
	if !s.Frame().Complete {
		t.Error("aligning the polarizers should solve the level")
	}

	if err := s.Rotate("p1", -90); err != nil {
		t.Fatal(err)
	}
	if got := s.Runtime().Orientations["p1"]; got != 315 {
		t.Errorf("orientation = %v, want it wrapped to 315", got)
	}

	if err := s.Rotate("t1", 90); err == nil {
		t.Error("targets should not rotate")
	}
	if err := s.Rotate("ghost", 90); err == nil {
		t.Error("unknown ids should be rejected")
	}
}

func TestRotatableAt(t *testing.T) {
	s, _ := newSession(t, "portal-hop")

	testCases := []struct {
		cell   core.Cell
		wantID string
		wantOK bool
	}{
		{core.Cell{X: 4, Y: 2}, "p-in", true},
		{core.Cell{X: 4, Y: 6}, "p-out", true},
		{core.Cell{X: 7, Y: 2}, "", false}, // wall
		{core.Cell{X: 10, Y: 6}, "", false}, // target
		{core.Cell{X: 0, Y: 0}, "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.cell.String(), func(t *testing.T) {
			id, ok := s.RotatableAt(tc.cell)
			if id != tc.wantID || ok != tc.wantOK {
				t.Errorf("RotatableAt(%s) = %q, %v, want %q, %v", tc.cell, id, ok, tc.wantID, tc.wantOK)
			}
		})
	}
}

func TestPhases(t *testing.T) {
	s, _ := newSession(t, "phase-lock")
	if s.Frame().Complete {
		t.Fatal("blocker should stop the beam in phase A")
	}
	if p := s.TogglePhase(); p != level.PhaseB {
		t.Errorf("TogglePhase = %q, want B", p)
	}
	if !s.Frame().Complete {
		t.Error("phase B should clear the blocker")
	}
	if err := s.SetPhase(level.PhaseA); err != nil {
		t.Fatal(err)
	}
	if s.Frame().Complete {
		t.Error("back in phase A the blocker returns")
	}
	if !s.Solved() {
		t.Error("Solved should remember a completed tick")
	}
	if err := s.SetPhase("C"); err == nil {
		t.Error("unknown phase should be rejected")
	}
}

func TestReset(t *testing.T) {
	s, _ := newSession(t, "polarized")
	_ = s.Rotate("p1", -15)
	s.Advance(1)
	s.Reset()

	rt := s.Runtime()
	if rt.Elapsed != 0 || len(rt.Orientations) != 0 {
		t.Errorf("runtime after reset = %+v", rt)
	}
	if s.Solved() || s.Frame().Complete {
		t.Error("reset should clear completion")
	}
}

func TestApply(t *testing.T) {
	s, _ := newSession(t, "pendulum")

	testCases := []struct {
		cmd     Command
		wantErr bool
	}{
		{Command{Type: "advance", Delta: math.Pi / 2}, false},
		{Command{Type: "toggle"}, false},
		{Command{Type: "phase", Phase: "A"}, false},
		{Command{Type: "rotate", ID: "swing"}, true},
		{Command{Type: "reset"}, false},
		{Command{Type: "explode"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.cmd.Type, func(t *testing.T) {
			err := s.Apply(tc.cmd)
			if (err != nil) != tc.wantErr {
				t.Errorf("Apply(%+v) error = %v, wantErr %v", tc.cmd, err, tc.wantErr)
			}
		})
	}
}

func TestAdvanceSolvesPendulum(t *testing.T) {
	s, _ := newSession(t, "pendulum")
	if s.Frame().Complete {
		t.Fatal("wall should block at t=0")
	}
	if !s.Advance(math.Pi / 2).Complete {
		t.Error("wall should have swung clear")
	}
}
