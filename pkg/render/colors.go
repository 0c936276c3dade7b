package render

import (
	"image/color"
	"math"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/tracer"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette of the board
var (
	Background = colorful.Color{R: 0.05, G: 0.06, B: 0.09}
	GridLine   = colorful.Color{R: 0.12, G: 0.13, B: 0.17}
)

var kindColors = map[level.Kind]colorful.Color{
	level.KindWall:         {R: 0.45, G: 0.47, B: 0.52},
	level.KindGate:         {R: 0.85, G: 0.5, B: 0.15},
	level.KindPortal:       {R: 0.6, G: 0.35, B: 0.95},
	level.KindMirror:       {R: 0.85, G: 0.92, B: 1},
	level.KindPrism:        {R: 0.75, G: 0.95, B: 0.95},
	level.KindPolarizer:    {R: 0.55, G: 0.75, B: 0.55},
	level.KindLens:         {R: 0.5, G: 0.8, B: 1},
	level.KindPhaseShifter: {R: 0.95, G: 0.6, B: 0.8},
	level.KindGravity:      {R: 0.4, G: 0.25, B: 0.55},
	level.KindReceptor:     {R: 0.95, G: 0.85, B: 0.3},
	level.KindTarget:       {R: 0.3, G: 0.9, B: 0.5},
	level.KindCollectible:  {R: 1, G: 0.8, B: 0.2},
}

// EntityColor returns the display colour of an entity. Filters show their
// pass colour.
func EntityColor(e *level.Entity) colorful.Color {
	if e.Kind == level.KindFilter {
		return e.Color.RGB()
	}
	if c, ok := kindColors[e.Kind]; ok {
		return c
	}
	return GridLine
}

// SegmentColor returns the hue of a beam segment. White light is tinted
// by its wavelength once a Doppler shift moved it off the default.
func SegmentColor(seg tracer.Segment) colorful.Color {
	base := seg.Color.RGB()
	if seg.Color.IsWhite() && math.Abs(seg.Wavelength-core.DefaultWavelength) > 1 {
		return base.BlendLab(core.WavelengthRGB(seg.Wavelength), 0.6).Clamped()
	}
	return base
}

// Strength maps a segment intensity onto a 0.15..1 blend weight
func Strength(seg tracer.Segment) float64 {
	return max(0.15, min(1, seg.Intensity/100))
}

// Shade returns the segment colour blended toward bg by its strength
func Shade(seg tracer.Segment, bg colorful.Color) colorful.Color {
	return bg.BlendLab(SegmentColor(seg), Strength(seg)).Clamped()
}

// ToRGBA converts a colour for image output
func ToRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
