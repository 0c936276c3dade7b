package sim

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/tracer"
)

func mustBuiltin(t *testing.T, id string) *level.Level {
	t.Helper()
	lvl, ok := level.Builtin(id)
	if !ok {
		t.Fatalf("missing built-in level %q", id)
	}
	return lvl
}

func TestSimulate(t *testing.T) {
	testCases := []struct {
		level    string
		complete bool
		solved   []string
	}{
		{"prism-split", true, []string{"t-red", "t-blue"}},
		{"spectrum", true, []string{"t-red", "t-green", "t-blue"}},
		{"corridor", false, nil},
		{"gatekeeper", false, nil},
		{"polarized", false, nil},
		{"doppler", false, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			lvl := mustBuiltin(t, tc.level)
			frame := Simulate(lvl, level.NewRuntime(), tracer.Options{})
			if frame.Complete != tc.complete {
				t.Errorf("Complete = %v, want %v", frame.Complete, tc.complete)
			}
			if got := frame.SolvedIDs(lvl); !reflect.DeepEqual(got, tc.solved) {
				t.Errorf("solved = %v, want %v", got, tc.solved)
			}
			if len(frame.Reports) != len(lvl.Objectives) {
				t.Errorf("got %d reports for %d objectives", len(frame.Reports), len(lvl.Objectives))
			}
		})
	}
}

func TestSimulateGateRequests(t *testing.T) {
	frame := Simulate(mustBuiltin(t, "gatekeeper"), level.NewRuntime(), tracer.Options{})
	if frame.GateTriggers["g1"] != 2 {
		t.Errorf("gate triggers = %v, want g1 for 2s", frame.GateTriggers)
	}
	if !frame.ReceptorHits["r1"] {
		t.Error("receptor r1 should be reported")
	}
	if frame.Phase != level.PhaseA {
		t.Errorf("phase = %q, want A", frame.Phase)
	}
}

func TestTimelineConfig(t *testing.T) {
	cfg := TimelineConfig{From: 1, To: 3, Frames: 5}
	want := []float64{1, 1.5, 2, 2.5, 3}
	if got := cfg.Times(); !reflect.DeepEqual(got, want) {
		t.Errorf("Times() = %v, want %v", got, want)
	}
	if got := (TimelineConfig{From: 2, To: 9, Frames: 1}).Times(); !reflect.DeepEqual(got, []float64{2}) {
		t.Errorf("single frame Times() = %v, want [2]", got)
	}

	invalid := []TimelineConfig{
		{From: 0, To: 1, Frames: 0},
		{From: 0, To: 1, Frames: MaxFrames + 1},
		{From: 2, To: 1, Frames: 3},
	}
	for _, c := range invalid {
		if err := c.Validate(); err == nil {
			t.Errorf("config %+v should be rejected", c)
		}
	}
}

func TestTimelineDeterministic(t *testing.T) {
	lvl := mustBuiltin(t, "pendulum")
	cfg := TimelineConfig{From: 0, To: 2 * math.Pi, Frames: 9}

	cfg.Workers = 1
	serial, err := Timeline(context.Background(), lvl, level.NewRuntime(), cfg)
	if err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}
	cfg.Workers = 4
	parallel, err := Timeline(context.Background(), lvl, level.NewRuntime(), cfg)
	if err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}

	if !reflect.DeepEqual(serial, parallel) {
		t.Error("timeline depends on the worker count")
	}
	for i, f := range serial {
		if f.Index != i {
			t.Errorf("frame %d has index %d", i, f.Index)
		}
	}

	// the wall swings out of the path at a quarter period
	if serial[0].Complete {
		t.Error("pendulum should block the beam at t=0")
	}
	if !serial[2].Complete {
		t.Errorf("pendulum should be clear at t=%.3f", serial[2].Elapsed)
	}
}

func TestTimelineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Timeline(ctx, mustBuiltin(t, "spectrum"), level.NewRuntime(), TimelineConfig{To: 1, Frames: 4, Workers: 2})
	if err == nil {
		t.Error("cancelled timeline should return an error")
	}
}

func TestTimelineLeavesRuntimeAlone(t *testing.T) {
	rt := level.NewRuntime()
	rt.Elapsed = 42
	rt.GateTimers["g1"] = 1

	frames, err := Timeline(context.Background(), mustBuiltin(t, "gatekeeper"), rt, TimelineConfig{From: 0, To: 1, Frames: 3, Workers: 2})
	if err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}
	if rt.Elapsed != 42 || rt.GateTimers["g1"] != 1 {
		t.Error("Timeline modified the base runtime")
	}
	for _, f := range frames {
		if !f.Complete {
			t.Errorf("frame at %.2fs should be complete with the gate held open", f.Elapsed)
		}
	}
}

func TestShippedLevelFiles(t *testing.T) {
	infos, warnings, err := level.ListLevelFiles("../../levels")
	if err != nil {
		t.Fatalf("ListLevelFiles failed: %v", err)
	}
	if len(warnings) > 0 {
		t.Errorf("level files have problems: %v", warnings)
	}
	if len(infos) != 2 {
		t.Fatalf("found %d level files, want 2", len(infos))
	}

	for _, info := range infos {
		t.Run(info.ID, func(t *testing.T) {
			lvl, err := level.Load(info.FilePath)
			if err != nil {
				t.Fatal(err)
			}
			if w := lvl.Warnings(); len(w) > 0 {
				t.Errorf("unexpected warnings %v", w)
			}
			if frame := Simulate(lvl, level.NewRuntime(), tracer.Options{}); !frame.Complete {
				t.Errorf("%s should be solved as shipped, solved=%v", info.ID, frame.Solved)
			}
		})
	}
}
