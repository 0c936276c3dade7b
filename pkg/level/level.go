package level

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Source emits one beam at the start of every tick
type Source struct {
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Z            float64    `json:"z,omitempty"`
	Direction    core.Vec3  `json:"direction"`
	Color        core.Color `json:"color,omitempty"`
	Intensity    float64    `json:"intensity"`
	Phase        float64    `json:"phase,omitempty"`
	Wavelength   float64    `json:"wavelength"`
	Width        float64    `json:"width"`
	Polarization float64    `json:"polarization,omitempty"`
}

// UnmarshalJSON fills the source defaults before decoding so that an
// authored zero intensity, wavelength or width is kept
func (s *Source) UnmarshalJSON(data []byte) error {
	type plain Source
	p := plain{
		Color:      core.White,
		Intensity:  100,
		Wavelength: core.DefaultWavelength,
		Width:      1,
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Source(p)
	return nil
}

// Position returns the emission point
func (s Source) Position() core.Vec3 {
	return core.NewVec3(s.X, s.Y, s.Z)
}

// Level is the immutable descriptor of a puzzle
type Level struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Group       string   `json:"group,omitempty"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Sources     []Source `json:"sources"`
	Entities    []Entity `json:"entities"`
	Objectives  []string `json:"objectives,omitempty"`
}

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("level.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// Parse decodes a level from JSON, validates it against the level schema,
// fills defaults and runs the semantic checks of Validate.
func Parse(data []byte) (*Level, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	var v interface{}
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode level json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("level validation failed: %w", err)
	}

	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("failed to unmarshal level: %w", err)
	}
	if lvl.Name == "" {
		lvl.Name = titleCase(lvl.ID)
	}

	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

// Load reads and parses a level file
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lvl, nil
}

// ApplyDefaults fills zero-valued source properties of a level built in
// code. Parse sets source defaults while decoding instead.
func (l *Level) ApplyDefaults() {
	if l.Name == "" {
		l.Name = titleCase(l.ID)
	}
	for i := range l.Sources {
		s := &l.Sources[i]
		if s.Color == "" {
			s.Color = core.White
		}
		if s.Intensity == 0 {
			s.Intensity = 100
		}
		if s.Wavelength == 0 {
			s.Wavelength = core.DefaultWavelength
		}
		if s.Width == 0 {
			s.Width = 1
		}
	}
}

// Entity returns the entity with the given id
func (l *Level) Entity(id string) (*Entity, bool) {
	for i := range l.Entities {
		if l.Entities[i].ID == id {
			return &l.Entities[i], true
		}
	}
	return nil, false
}

// Validate reports authoring errors. Cells holding two entities of the same
// interaction priority are rejected: the contract is one blocking or
// interactive entity per cell.
func (l *Level) Validate() error {
	var errs []error

	if l.Width <= 0 || l.Height <= 0 {
		errs = append(errs, fmt.Errorf("grid size must be positive, got %dx%d", l.Width, l.Height))
	}
	if len(l.Sources) == 0 {
		errs = append(errs, errors.New("level has no light source"))
	}
	for i, s := range l.Sources {
		if s.Direction.LengthSquared() == 0 {
			errs = append(errs, fmt.Errorf("source %d has a zero direction", i))
		}
		if !s.Color.Valid() {
			errs = append(errs, fmt.Errorf("source %d has unknown color %q", i, s.Color))
		}
	}

	ids := make(map[string]bool)
	type slot struct {
		cell     core.Cell
		priority int
	}
	occupied := make(map[slot]string)
	for i := range l.Entities {
		e := &l.Entities[i]
		if e.ID == "" {
			errs = append(errs, fmt.Errorf("entity %d has no id", i))
		} else if ids[e.ID] {
			errs = append(errs, fmt.Errorf("duplicate entity id %q", e.ID))
		}
		ids[e.ID] = true

		if !e.Kind.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown kind", e))
			continue
		}
		if !e.Cell().InBounds(l.Width, l.Height) {
			errs = append(errs, fmt.Errorf("%s: outside the %dx%d grid", e, l.Width, l.Height))
		}
		if e.Kind == KindCollectible || e.Kind == KindGravity {
			continue
		}
		key := slot{e.Cell(), Priority(e.Kind)}
		if other, ok := occupied[key]; ok {
			errs = append(errs, fmt.Errorf("%s: shares its cell with %q at the same priority", e, other))
		}
		occupied[key] = e.ID
	}

	for _, id := range l.Objectives {
		e, ok := l.Entity(id)
		if !ok || e.Kind != KindTarget {
			errs = append(errs, fmt.Errorf("objective %q is not a target", id))
		}
	}

	return errors.Join(errs...)
}

// Warnings lists non-fatal authoring issues. The simulator degrades
// gracefully on all of them.
func (l *Level) Warnings() []string {
	var warnings []string

	links := make(map[string]int)
	cells := make(map[core.Cell][]string)
	for i := range l.Entities {
		e := &l.Entities[i]
		switch e.Kind {
		case KindPortal:
			links[e.Link]++
		case KindReceptor:
			if g, ok := l.Entity(e.Gate); !ok || g.Kind != KindGate {
				warnings = append(warnings, fmt.Sprintf("%s: gate %q does not exist", e, e.Gate))
			}
		}
		if e.Kind != KindCollectible && e.Kind != KindGravity {
			cells[e.Cell()] = append(cells[e.Cell()], e.ID)
		}
	}

	for link, n := range links {
		if n != 2 {
			warnings = append(warnings, fmt.Sprintf("portal link %q has %d ends, want 2", link, n))
		}
	}
	for cell, stacked := range cells {
		if len(stacked) > 1 {
			warnings = append(warnings, fmt.Sprintf("cell %s holds several entities %v", cell, stacked))
		}
	}

	sort.Strings(warnings)
	return warnings
}
