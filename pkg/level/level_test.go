package level

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-lightpath/pkg/core"
)

const corridorJSON = `{
  "id": "tiny-corridor",
  "width": 8,
  "height": 3,
  "sources": [{"x": 0, "y": 1, "direction": {"x": 1, "y": 0}, "color": "cyan"}],
  "entities": [
    {"id": "w1", "kind": "wall", "x": 5, "y": 1},
    {"id": "t1", "kind": "target", "x": 3, "y": 1, "target": {"requiredColors": ["Cyan"], "absorb": false}}
  ],
  "objectives": ["t1"]
}`

func TestParse(t *testing.T) {
	lvl, err := Parse([]byte(corridorJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if lvl.Name != "Tiny Corridor" {
		t.Errorf("Name = %q, want %q", lvl.Name, "Tiny Corridor")
	}
	src := lvl.Sources[0]
	if src.Color != core.Cyan {
		t.Errorf("source color = %q, want CYAN", src.Color)
	}
	if src.Intensity != 100 || src.Wavelength != core.DefaultWavelength || src.Width != 1 {
		t.Errorf("source defaults not applied: %+v", src)
	}

	target, ok := lvl.Entity("t1")
	if !ok {
		t.Fatal("target t1 not found")
	}
	spec := target.TargetSpec()
	if len(spec.RequiredColors) != 1 || spec.RequiredColors[0] != core.Cyan {
		t.Errorf("requiredColors = %v, want [CYAN]", spec.RequiredColors)
	}
	if spec.Absorbs() {
		t.Error("target with absorb=false should not absorb")
	}
}

func TestParseKeepsExplicitZero(t *testing.T) {
	data := `{
  "id": "dim",
  "width": 4,
  "height": 3,
  "sources": [
    {"x": 0, "y": 1, "direction": {"x": 1, "y": 0}, "intensity": 0, "wavelength": 0, "width": 0},
    {"x": 0, "y": 2, "direction": {"x": 1, "y": 0}}
  ],
  "entities": []
}`
	lvl, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	dim := lvl.Sources[0]
	if dim.Intensity != 0 || dim.Wavelength != 0 || dim.Width != 0 {
		t.Errorf("authored zeros were overwritten: %+v", dim)
	}
	if dim.Color != core.White {
		t.Errorf("omitted color = %q, want WHITE", dim.Color)
	}

	plain := lvl.Sources[1]
	if plain.Intensity != 100 || plain.Wavelength != core.DefaultWavelength || plain.Width != 1 {
		t.Errorf("omitted properties should get defaults: %+v", plain)
	}

	encoded, err := json.Marshal(lvl)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	again, err := Parse(encoded)
	if err != nil {
		t.Fatalf("re-Parse failed: %v", err)
	}
	if again.Sources[0].Intensity != 0 {
		t.Errorf("zero intensity lost on round trip: %+v", again.Sources[0])
	}
}

func TestParseRejects(t *testing.T) {
	testCases := []struct {
		name    string
		json    string
		wantErr string
	}{
		{
			name:    "malformed json",
			json:    `{"id": `,
			wantErr: "decode",
		},
		{
			name: "missing kind",
			json: `{"id": "x", "width": 4, "height": 4,
				"sources": [{"x": 0, "y": 0, "direction": {"x": 1}}],
				"entities": [{"id": "a", "x": 1, "y": 1}]}`,
			wantErr: "validation",
		},
		{
			name: "unknown color",
			json: `{"id": "x", "width": 4, "height": 4,
				"sources": [{"x": 0, "y": 0, "direction": {"x": 1}, "color": "purple"}],
				"entities": []}`,
			wantErr: "validation",
		},
		{
			name: "portal without link",
			json: `{"id": "x", "width": 4, "height": 4,
				"sources": [{"x": 0, "y": 0, "direction": {"x": 1}}],
				"entities": [{"id": "p", "kind": "portal", "x": 1, "y": 1}]}`,
			wantErr: "validation",
		},
		{
			name: "duplicate ids",
			json: `{"id": "x", "width": 4, "height": 4,
				"sources": [{"x": 0, "y": 0, "direction": {"x": 1}}],
				"entities": [{"id": "a", "kind": "wall", "x": 1, "y": 1}, {"id": "a", "kind": "wall", "x": 2, "y": 1}]}`,
			wantErr: "duplicate entity id",
		},
		{
			name: "stacked walls",
			json: `{"id": "x", "width": 4, "height": 4,
				"sources": [{"x": 0, "y": 0, "direction": {"x": 1}}],
				"entities": [{"id": "a", "kind": "wall", "x": 1, "y": 1}, {"id": "b", "kind": "wall", "x": 1, "y": 1}]}`,
			wantErr: "same priority",
		},
		{
			name: "objective is not a target",
			json: `{"id": "x", "width": 4, "height": 4,
				"sources": [{"x": 0, "y": 0, "direction": {"x": 1}}],
				"entities": [{"id": "a", "kind": "wall", "x": 1, "y": 1}],
				"objectives": ["a"]}`,
			wantErr: "not a target",
		},
		{
			name: "zero direction",
			json: `{"id": "x", "width": 4, "height": 4,
				"sources": [{"x": 0, "y": 0, "direction": {"x": 0, "y": 0}}],
				"entities": []}`,
			wantErr: "zero direction",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.json))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidateOutOfBounds(t *testing.T) {
	lvl := NewCorridorLevel()
	lvl.Entities = append(lvl.Entities, Entity{ID: "far", Kind: KindWall, X: 40, Y: 2})
	err := lvl.Validate()
	if err == nil || !strings.Contains(err.Error(), "outside") {
		t.Errorf("expected out-of-grid error, got %v", err)
	}
}

func TestWarnings(t *testing.T) {
	lvl := &Level{
		ID: "warn", Width: 6, Height: 6,
		Sources: []Source{{X: 0, Y: 0, Direction: core.East, Color: core.White}},
		Entities: []Entity{
			{ID: "p1", Kind: KindPortal, X: 1, Y: 1, Link: "solo"},
			{ID: "r1", Kind: KindReceptor, X: 2, Y: 2, Gate: "missing"},
			{ID: "m1", Kind: KindMirror, X: 3, Y: 3},
			{ID: "t1", Kind: KindTarget, X: 3, Y: 3},
		},
	}
	if err := lvl.Validate(); err != nil {
		t.Fatalf("different priorities in one cell should validate, got %v", err)
	}

	warnings := lvl.Warnings()
	wants := []string{`portal link "solo"`, `gate "missing"`, "several entities"}
	if len(warnings) != len(wants) {
		t.Fatalf("got %d warnings %v, want %d", len(warnings), warnings, len(wants))
	}
	for _, want := range wants {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("no warning mentions %q in %v", want, warnings)
		}
	}
}

func TestBuiltinLevelsValidate(t *testing.T) {
	levels := BuiltinLevels()
	if len(levels) != len(BuiltinIDs()) {
		t.Fatalf("BuiltinLevels returned %d levels, want %d", len(levels), len(BuiltinIDs()))
	}
	for _, lvl := range levels {
		t.Run(lvl.ID, func(t *testing.T) {
			if err := lvl.Validate(); err != nil {
				t.Errorf("built-in level fails validation: %v", err)
			}
			if w := lvl.Warnings(); len(w) > 0 {
				t.Errorf("built-in level has warnings: %v", w)
			}
			if lvl.Name == "" {
				t.Error("defaults not applied")
			}
		})
	}
}

func TestCorridorIsBounded(t *testing.T) {
	lvl, _ := Builtin("corridor")

	walls := make(map[core.Cell]bool)
	for _, e := range lvl.Entities {
		if e.Kind == KindWall {
			walls[e.Cell()] = true
		}
	}
	for x := 0; x <= 5; x++ {
		for _, y := range []int{4, 6} {
			if !walls[core.Cell{X: x, Y: y}] {
				t.Errorf("no wall at (%d,%d)", x, y)
			}
		}
		if x < 5 && walls[core.Cell{X: x, Y: 5}] {
			t.Errorf("corridor cell (%d,5) is blocked", x)
		}
	}
	if !walls[core.Cell{X: 5, Y: 5}] {
		t.Error("corridor should end in a wall at (5,5)")
	}
}

func TestBuiltinReturnsFreshCopies(t *testing.T) {
	a, _ := Builtin("prism-split")
	b, _ := Builtin("prism-split")
	a.Entities[0].Orientation = 90
	if b.Entities[0].Orientation != 0 {
		t.Error("mutating one built-in copy leaked into another")
	}
	if _, ok := Builtin("no-such-level"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestRuntimeClone(t *testing.T) {
	rt := NewRuntime()
	rt.GateTimers["g1"] = 2
	c := rt.Clone()
	c.GateTimers["g1"] = 0
	c.Orientations["m1"] = 45
	if rt.GateTimers["g1"] != 2 || len(rt.Orientations) != 0 {
		t.Error("Clone shares maps with the original")
	}

	var zero Runtime
	if zero.Phase() != PhaseA {
		t.Errorf("zero runtime phase = %q, want A", zero.Phase())
	}
	if !zero.PhaseActive(PhaseBoth) || !zero.PhaseActive(PhaseA) || zero.PhaseActive(PhaseB) {
		t.Error("phase activity wrong for default phase")
	}
	if zero.Clone().GateTimers == nil {
		t.Error("Clone should allocate nil maps")
	}
}

func TestPriorityOrder(t *testing.T) {
	order := []Kind{KindWall, KindGate, KindPortal, KindMirror, KindPrism, KindFilter, KindReceptor, KindTarget, KindCollectible}
	for i := 1; i < len(order); i++ {
		if Priority(order[i-1]) >= Priority(order[i]) {
			t.Errorf("Priority(%s) should be below Priority(%s)", order[i-1], order[i])
		}
	}
	for _, k := range []Kind{KindPolarizer, KindLens, KindPhaseShifter} {
		if Priority(k) != Priority(KindFilter) {
			t.Errorf("%s should share the filter priority", k)
		}
	}
}

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"mirror-hall", "Mirror Hall"},
		{"phase_lock", "Phase Lock"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if result := titleCase(tc.input); result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestListAllLevels(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tiny.json"), []byte(corridorJSON), 0644); err != nil {
		t.Fatal(err)
	}
	grouped := strings.Replace(corridorJSON, `"id": "tiny-corridor",`, `"id": "grouped", "group": "Workshop",`, 1)
	if err := os.WriteFile(filepath.Join(dir, "grouped.json"), []byte(grouped), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"id": 3}`), 0644); err != nil {
		t.Fatal(err)
	}

	response, warnings, err := ListAllLevels(dir)
	if err != nil {
		t.Fatalf("ListAllLevels failed: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "broken.json") {
		t.Errorf("expected one warning about broken.json, got %v", warnings)
	}

	var names []string
	for _, g := range response.Groups {
		names = append(names, g.Name)
	}
	want := []string{builtinGroup, fileGroup, "Workshop"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("groups = %v, want %v", names, want)
	}
	if n := len(response.Groups[0].Levels); n != len(BuiltinIDs()) {
		t.Errorf("builtin group has %d levels, want %d", n, len(BuiltinIDs()))
	}
	file := response.Groups[1].Levels[0]
	if file.Type != "file" || file.FilePath == "" || file.ID != "tiny-corridor" {
		t.Errorf("unexpected file level info %+v", file)
	}
}

func TestListLevelFilesMissingDir(t *testing.T) {
	levels, warnings, err := ListLevelFiles(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(levels) != 0 || len(warnings) != 0 {
		t.Errorf("missing dir should yield nothing, got %v %v %v", levels, warnings, err)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.json")
	if err := os.WriteFile(path, []byte(corridorJSON), 0644); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name   string
		wantID string
	}{
		{"corridor", "corridor"},
		{"tiny", "tiny-corridor"},
		{path, "tiny-corridor"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lvl, err := Resolve(tc.name, dir)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tc.name, err)
			}
			if lvl.ID != tc.wantID {
				t.Errorf("Resolve(%q).ID = %q, want %q", tc.name, lvl.ID, tc.wantID)
			}
		})
	}

	if _, err := Resolve("missing", dir); err == nil {
		t.Error("expected error for unknown level")
	}
}
