package server

import (
	"fmt"
	"net/http"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/resolve"
	"github.com/df07/go-lightpath/pkg/spatial"
	"github.com/df07/go-lightpath/pkg/tracer"
)

// InspectResponse describes one grid cell at one tick
type InspectResponse struct {
	Cell     core.Cell      `json:"cell"`
	Elapsed  float64        `json:"elapsed"`
	Phase    level.PhaseTag `json:"phase"`
	Entities []EntityInfo   `json:"entities"` // in interaction order
	Beams    []BeamInfo     `json:"beams"`    // segments passing through the cell
}

// EntityInfo is a resolved entity with its kind-specific properties
type EntityInfo struct {
	ID         string                 `json:"id"`
	Kind       level.Kind             `json:"kind"`
	Angle      float64                `json:"angle"`
	Active     bool                   `json:"active"`
	Moving     bool                   `json:"moving"`
	Velocity   core.Vec3              `json:"velocity"`
	Properties map[string]interface{} `json:"properties"`
}

// BeamInfo summarizes a segment crossing the inspected cell
type BeamInfo struct {
	Color      string  `json:"color"`
	Hex        string  `json:"hex"`
	Intensity  float64 `json:"intensity"`
	Wavelength float64 `json:"wavelength"`
	Phase      float64 `json:"phase"`
	Depth      int     `json:"depth"`
}

// inspectCell resolves the level at rt and reports everything at cell
func inspectCell(lvl *level.Level, rt level.Runtime, cell core.Cell) InspectResponse {
	idx := spatial.Build(resolve.Resolve(lvl, rt))
	result := tracer.TraceIndex(lvl, rt, idx, tracer.Options{})

	response := InspectResponse{
		Cell:     cell,
		Elapsed:  rt.Elapsed,
		Phase:    rt.Phase(),
		Entities: []EntityInfo{},
		Beams:    []BeamInfo{},
	}

	for _, e := range idx.At(cell) {
		response.Entities = append(response.Entities, EntityInfo{
			ID:         e.ID,
			Kind:       e.Kind,
			Angle:      e.Angle,
			Active:     e.Active,
			Moving:     e.Motion != nil,
			Velocity:   e.Velocity,
			Properties: entityProperties(e, rt),
		})
	}
	for _, seg := range result.Traces {
		if seg.Jump || !crosses(seg, cell) {
			continue
		}
		response.Beams = append(response.Beams, BeamInfo{
			Color:      string(seg.Color),
			Hex:        seg.Color.Hex(),
			Intensity:  seg.Intensity,
			Wavelength: seg.Wavelength,
			Phase:      seg.Phase,
			Depth:      seg.Depth,
		})
	}
	return response
}

func crosses(seg tracer.Segment, cell core.Cell) bool {
	for _, p := range seg.Points {
		if core.CellOf(p) == cell {
			return true
		}
	}
	return false
}

// entityProperties extracts the fields that matter for the entity's kind
func entityProperties(e resolve.Entity, rt level.Runtime) map[string]interface{} {
	properties := make(map[string]interface{})

	switch e.Kind {
	case level.KindGate:
		properties["open"] = e.Open
		properties["timer"] = rt.GateTimers[e.ID]
	case level.KindPortal:
		properties["link"] = e.Link
	case level.KindMirror:
		properties["doppler"] = e.Doppler
	case level.KindPrism:
		var outputs []string
		for _, o := range e.PrismOutputs() {
			outputs = append(outputs, fmt.Sprintf("%s:%+d", o.Color, o.Turn))
		}
		properties["outputs"] = outputs
	case level.KindFilter:
		properties["color"] = e.Color
	case level.KindLens:
		properties["lens"] = e.Lens
	case level.KindPhaseShifter:
		properties["delta"] = e.Delta
	case level.KindGravity:
		properties["mass"] = e.Mass
		properties["radius"] = e.Radius
	case level.KindReceptor:
		properties["gate"] = e.Gate
		properties["duration"] = e.Duration
		properties["passThrough"] = e.PassThrough
	case level.KindTarget:
		spec := e.TargetSpec()
		properties["absorb"] = spec.Absorbs()
		if len(spec.RequiredColors) > 0 {
			properties["requiredColors"] = spec.RequiredColors
		}
		if spec.RequiredIntensity != nil {
			properties["requiredIntensity"] = *spec.RequiredIntensity
		}
		if spec.RequiredPhase != nil {
			properties["requiredPhase"] = *spec.RequiredPhase
		}
		if spec.RequiredWavelengthMax != nil {
			properties["requiredWavelengthMax"] = *spec.RequiredWavelengthMax
		}
	}
	if e.PhaseTag != level.PhaseBoth {
		properties["phaseTag"] = e.PhaseTag
	}
	return properties
}

// handleInspect reports the entities and beams in one grid cell
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	lvl, rt, err := s.parseTraceQuery(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	x, err := parseIntParam(values, "x", -1, 0, lvl.Width-1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Cell out of bounds: "+err.Error())
		return
	}
	y, err := parseIntParam(values, "y", -1, 0, lvl.Height-1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Cell out of bounds: "+err.Error())
		return
	}
	if x < 0 || y < 0 {
		writeError(w, http.StatusBadRequest, "x and y are required")
		return
	}

	writeJSON(w, http.StatusOK, inspectCell(lvl, rt, core.Cell{X: x, Y: y}))
}
