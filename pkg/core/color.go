package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is the colour channel of a beam or of a colour-sensitive entity.
// White stands for "any/all" colours: filters accept it and prisms split it.
type Color string

const (
	White   Color = "WHITE"
	Red     Color = "RED"
	Green   Color = "GREEN"
	Blue    Color = "BLUE"
	Cyan    Color = "CYAN"
	Magenta Color = "MAGENTA"
	Yellow  Color = "YELLOW"
)

// Visible wavelength range in nanometres
const (
	MinWavelength     = 380.0
	MaxWavelength     = 750.0
	DefaultWavelength = 550.0
)

var palette = map[Color]colorful.Color{
	White:   {R: 1, G: 1, B: 1},
	Red:     {R: 1, G: 0.18, B: 0.18},
	Green:   {R: 0.2, G: 0.95, B: 0.3},
	Blue:    {R: 0.25, G: 0.4, B: 1},
	Cyan:    {R: 0.1, G: 0.95, B: 0.95},
	Magenta: {R: 0.95, G: 0.2, B: 0.9},
	Yellow:  {R: 1, G: 0.9, B: 0.15},
}

// ParseColor parses a colour name, case-insensitively
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown color %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known colours
func (c Color) Valid() bool {
	_, ok := palette[c]
	return ok
}

// IsWhite reports whether c is the any/all colour
func (c Color) IsWhite() bool {
	return c == White
}

// RGB returns the display colour
func (c Color) RGB() colorful.Color {
	if rgb, ok := palette[c]; ok {
		return rgb
	}
	return palette[White]
}

// Hex returns the display colour as #rrggbb
func (c Color) Hex() string {
	return c.RGB().Hex()
}

// UnmarshalJSON accepts colour names in any case
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ClampWavelength limits a wavelength to the visible range
func ClampWavelength(nm float64) float64 {
	return max(MinWavelength, min(MaxWavelength, nm))
}

// WavelengthRGB maps a visible wavelength onto a spectral hue, violet at
// the short end and red at the long end.
func WavelengthRGB(nm float64) colorful.Color {
	t := (MaxWavelength - ClampWavelength(nm)) / (MaxWavelength - MinWavelength)
	return colorful.Hsv(270*t, 0.85, 1)
}
