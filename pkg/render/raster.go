package render

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/resolve"
	"github.com/df07/go-lightpath/pkg/sim"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultScale is the cell size in pixels
const DefaultScale = 32

// Canvas maps world coordinates onto an RGBA image
type Canvas struct {
	Img   *image.RGBA
	Scale float64
}

// NewCanvas creates a canvas for a width x height grid
func NewCanvas(width, height, scale int) *Canvas {
	if scale <= 0 {
		scale = DefaultScale
	}
	img := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	return &Canvas{Img: img, Scale: float64(scale)}
}

// Pixel converts a world position to image coordinates
func (c *Canvas) Pixel(p core.Vec3) (float64, float64) {
	return (p.X + 0.5) * c.Scale, (p.Y + 0.5) * c.Scale
}

// Fill paints the whole canvas
func (c *Canvas) Fill(col colorful.Color) {
	rgba := ToRGBA(col)
	b := c.Img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c.Img.SetRGBA(x, y, rgba)
		}
	}
}

// Rect fills a pixel rectangle clipped to the image
func (c *Canvas) Rect(x0, y0, x1, y1 int, col color.RGBA) {
	r := image.Rect(x0, y0, x1, y1).Intersect(c.Img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c.Img.SetRGBA(x, y, col)
		}
	}
}

// Dot stamps a filled square of the given pixel radius
func (c *Canvas) Dot(px, py, radius float64, col color.RGBA) {
	x, y := int(math.Floor(px)), int(math.Floor(py))
	r := int(math.Ceil(radius))
	c.Rect(x-r+1, y-r+1, x+r, y+r, col)
}

// Line draws a world-space line with a pixel thickness
func (c *Canvas) Line(a, b core.Vec3, thickness float64, col color.RGBA) {
	ax, ay := c.Pixel(a)
	bx, by := c.Pixel(b)
	n := int(math.Ceil(math.Hypot(bx-ax, by-ay)))
	if n == 0 {
		c.Dot(ax, ay, thickness, col)
		return
	}
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		c.Dot(ax+(bx-ax)*t, ay+(by-ay)*t, thickness, col)
	}
}

// Ring draws a circle outline around a world position
func (c *Canvas) Ring(center core.Vec3, radius float64, col color.RGBA) {
	cx, cy := c.Pixel(center)
	r := radius * c.Scale
	n := max(16, int(2*math.Pi*r))
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		c.Dot(cx+r*math.Cos(a), cy+r*math.Sin(a), 1, col)
	}
}

// Rasterize draws the board, its entities for rt and the traced beams
// of frame.
func Rasterize(lvl *level.Level, rt level.Runtime, frame sim.Frame, scale int) *image.RGBA {
	c := NewCanvas(lvl.Width, lvl.Height, scale)
	c.Fill(Background)
	c.grid(lvl.Width, lvl.Height)

	for _, e := range resolve.Resolve(lvl, rt) {
		c.entity(e, rt, frame)
	}

	for _, seg := range frame.Traces {
		thickness := max(1, seg.Width*c.Scale*0.08)
		col := ToRGBA(Shade(seg, Background))
		for i := 1; i < len(seg.Points); i++ {
			c.Line(seg.Points[i-1], seg.Points[i], thickness, col)
		}
	}
	return c.Img
}

func (c *Canvas) grid(width, height int) {
	col := ToRGBA(GridLine)
	s := int(c.Scale)
	for x := 0; x <= width; x++ {
		c.Rect(x*s, 0, x*s+1, height*s, col)
	}
	for y := 0; y <= height; y++ {
		c.Rect(0, y*s, width*s, y*s+1, col)
	}
}

func (c *Canvas) entity(e resolve.Entity, rt level.Runtime, frame sim.Frame) {
	base := EntityColor(e.Entity)
	if !e.Active {
		base = Background.BlendLab(base, 0.25)
	}
	col := ToRGBA(base)
	center := e.Center()
	s := int(c.Scale)
	x0, y0 := e.Pos.X*s, e.Pos.Y*s

	switch e.Kind {
	case level.KindWall, level.KindFilter, level.KindPhaseShifter, level.KindLens:
		c.Rect(x0+2, y0+2, x0+s-1, y0+s-1, col)
	case level.KindGate:
		if e.Open || rt.GateOpenFor(e.ID) > 0 {
			c.Rect(x0+2, y0+2, x0+s-1, y0+4, col)
			c.Rect(x0+2, y0+s-4, x0+s-1, y0+s-1, col)
		} else {
			c.Rect(x0+2, y0+2, x0+s-1, y0+s-1, col)
		}
	case level.KindMirror, level.KindPolarizer:
		dir := core.East.RotateZ(core.Radians(e.Angle)).Multiply(0.45)
		c.Line(center.Subtract(dir), center.Add(dir), 1.5, col)
	case level.KindPrism:
		r := s / 4
		c.Rect(x0+s/2-r, y0+s/2-r, x0+s/2+r, y0+s/2+r, col)
	case level.KindPortal:
		c.Ring(center, 0.38, col)
		facing := core.East.RotateZ(core.Radians(e.Angle)).Multiply(0.38)
		c.Line(center, center.Add(facing), 1, col)
	case level.KindGravity:
		c.Ring(center, 0.3, col)
		if e.Radius > 0 {
			c.Ring(center, e.Radius, ToRGBA(Background.BlendLab(base, 0.3)))
		}
	case level.KindReceptor:
		if frame.ReceptorHits[e.ID] {
			col = ToRGBA(base.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.5))
		}
		c.Ring(center, 0.3, col)
		c.Ring(center, 0.2, col)
	case level.KindTarget:
		if frame.Solved[e.ID] {
			c.Rect(x0+s/3, y0+s/3, x0+s-s/3, y0+s-s/3, col)
		}
		c.Ring(center, 0.38, col)
	}
}
