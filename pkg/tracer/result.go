package tracer

import "github.com/df07/go-lightpath/pkg/core"

// Segment is a render-ready polyline with uniform beam properties
type Segment struct {
	Points     []core.Vec3 `json:"points"`
	Color      core.Color  `json:"color"`
	Intensity  float64     `json:"intensity"`
	Width      float64     `json:"width"`
	Wavelength float64     `json:"wavelength"`
	Phase      float64     `json:"phase"`
	Depth      int         `json:"depth"`
	Jump       bool        `json:"jump,omitempty"` // dimmed portal connector
}

func newSegment(b Beam, start core.Vec3) Segment {
	return Segment{
		Points:     []core.Vec3{start},
		Color:      b.Color,
		Intensity:  b.Intensity,
		Width:      b.Width,
		Wavelength: b.Wavelength,
		Phase:      b.Phase,
		Depth:      b.Depth,
	}
}

// Start returns the first point of the segment
func (s Segment) Start() core.Vec3 {
	return s.Points[0]
}

// End returns the last point of the segment
func (s Segment) End() core.Vec3 {
	return s.Points[len(s.Points)-1]
}

// Length returns the polyline length
func (s Segment) Length() float64 {
	total := 0.0
	for i := 1; i < len(s.Points); i++ {
		total += s.Points[i].Subtract(s.Points[i-1]).Length()
	}
	return total
}

func (s *Segment) add(p core.Vec3) {
	s.Points = append(s.Points, p)
}

// moveEnd replaces the last point
func (s *Segment) moveEnd(p core.Vec3) {
	s.Points[len(s.Points)-1] = p
}

// TargetHit records one beam reaching a target
type TargetHit struct {
	TargetID   string     `json:"targetId"`
	Color      core.Color `json:"color"`
	Intensity  float64    `json:"intensity"`
	Phase      float64    `json:"phase"`
	Wavelength float64    `json:"wavelength"`
}

// Result is everything one trace produced. Runtime state is never
// modified; gate requests are returned for the caller to merge.
type Result struct {
	Traces       []Segment          `json:"traces"`
	Hits         []TargetHit        `json:"hits"`
	ReceptorHits map[string]bool    `json:"receptorHits"`
	GateTriggers map[string]float64 `json:"gateTriggers"`
	Stats        Stats              `json:"stats"`
	Truncated    bool               `json:"truncated,omitempty"`
}

func newResult() *Result {
	return &Result{
		ReceptorHits: make(map[string]bool),
		GateTriggers: make(map[string]float64),
		Stats:        newStats(),
	}
}

// HitsFor returns the hits recorded for a target
func (r *Result) HitsFor(id string) []TargetHit {
	var hits []TargetHit
	for _, h := range r.Hits {
		if h.TargetID == id {
			hits = append(hits, h)
		}
	}
	return hits
}

func (r *Result) commit(s Segment) {
	if len(s.Points) < 2 {
		return
	}
	r.Traces = append(r.Traces, s)
}
