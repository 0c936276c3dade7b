// Command viewer opens a window on a level and runs the game loop live.
// Click a piece to rotate it, space toggles phase A/B, R resets and
// P pauses the clock.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/game"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/render"
	"github.com/df07/go-lightpath/pkg/resolve"
	"github.com/df07/go-lightpath/pkg/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const statusHeight = 36

type Game struct {
	session *game.Session
	scale   int
	paused  bool
	logger  *log.Logger
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.logger.Debug("Phase toggled", "phase", g.session.TogglePhase())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.session.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		x, y := ebiten.CursorPosition()
		cell := core.Cell{X: x / g.scale, Y: y / g.scale}
		if id, ok := g.session.RotatableAt(cell); ok {
			delta := 45.0
			if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
				delta = -45
			}
			if err := g.session.Rotate(id, delta); err != nil {
				g.logger.Warn("Rotate failed", "id", id, "err", err)
			}
		}
	}

	if !g.paused {
		g.session.Advance(1 / float64(ebiten.TPS()))
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	lvl := g.session.Level()
	rt := g.session.Runtime()
	frame := g.session.Frame()
	s := float32(g.scale)

	screen.Fill(render.ToRGBA(render.Background))
	grid := render.ToRGBA(render.GridLine)
	for x := 0; x <= lvl.Width; x++ {
		vector.StrokeLine(screen, float32(x)*s, 0, float32(x)*s, float32(lvl.Height)*s, 1, grid, false)
	}
	for y := 0; y <= lvl.Height; y++ {
		vector.StrokeLine(screen, 0, float32(y)*s, float32(lvl.Width)*s, float32(y)*s, 1, grid, false)
	}

	for _, e := range resolve.Resolve(lvl, rt) {
		g.drawEntity(screen, e, rt, frame)
	}

	for _, seg := range frame.Traces {
		col := render.ToRGBA(render.Shade(seg, render.Background))
		width := float32(math.Max(1, seg.Width*2))
		if seg.Jump {
			width = 1
		}
		for i := 1; i < len(seg.Points); i++ {
			a, b := seg.Points[i-1], seg.Points[i]
			vector.StrokeLine(screen, g.px(a.X), g.px(a.Y), g.px(b.X), g.px(b.Y), width, col, true)
		}
	}

	g.drawStatus(screen, lvl, frame)
}

// px maps a world coordinate to a pixel: cell centres sit on integers
func (g *Game) px(v float64) float32 {
	return float32((v + 0.5) * float64(g.scale))
}

func (g *Game) drawEntity(screen *ebiten.Image, e resolve.Entity, rt level.Runtime, frame sim.Frame) {
	col := render.ToRGBA(render.EntityColor(e.Entity))
	if !e.Active {
		// premultiplied alpha
		col = color.RGBA{R: col.R / 3, G: col.G / 3, B: col.B / 3, A: 85}
	}
	s := float32(g.scale)
	cx, cy := g.px(float64(e.Pos.X)), g.px(float64(e.Pos.Y))
	half := s / 2

	switch e.Kind {
	case level.KindWall:
		vector.FillRect(screen, cx-half+1, cy-half+1, s-2, s-2, col, false)
	case level.KindGate:
		if e.Open || rt.GateOpenFor(e.ID) > 0 {
			vector.StrokeRect(screen, cx-half+2, cy-half+2, s-4, s-4, 1, col, false)
		} else {
			vector.FillRect(screen, cx-half+2, cy-half+2, s-4, s-4, col, false)
		}
	case level.KindMirror, level.KindPolarizer:
		rad := core.Radians(e.Angle)
		dx, dy := float32(math.Cos(rad))*half*0.9, float32(math.Sin(rad))*half*0.9
		vector.StrokeLine(screen, cx-dx, cy-dy, cx+dx, cy+dy, 3, col, true)
	case level.KindPortal:
		vector.StrokeCircle(screen, cx, cy, half*0.7, 2, col, true)
	case level.KindGravity:
		vector.StrokeCircle(screen, cx, cy, float32(e.Radius)*s, 1, col, true)
		vector.FillCircle(screen, cx, cy, half*0.4, col, true)
	case level.KindTarget, level.KindReceptor:
		vector.StrokeCircle(screen, cx, cy, half*0.6, 2, col, true)
		if frame.Solved[e.ID] || frame.ReceptorHits[e.ID] {
			vector.FillCircle(screen, cx, cy, half*0.35, col, true)
		}
	default:
		vector.StrokeRect(screen, cx-half*0.6, cy-half*0.6, s*0.6, s*0.6, 2, col, true)
	}
}

func (g *Game) drawStatus(screen *ebiten.Image, lvl *level.Level, frame sim.Frame) {
	y := lvl.Height * g.scale
	vector.FillRect(screen, 0, float32(y), float32(lvl.Width*g.scale), statusHeight, color.RGBA{A: 255}, false)

	status := fmt.Sprintf("%s  t=%.1fs  phase %s  solved %d/%d",
		lvl.Name, frame.Elapsed, frame.Phase, len(frame.SolvedIDs(lvl)), len(lvl.Objectives))
	if frame.Complete {
		status += "  COMPLETE"
	}
	if g.paused {
		status += "  (paused)"
	}
	ebitenutil.DebugPrintAt(screen, status, 4, y+2)
	ebitenutil.DebugPrintAt(screen, "click rotate  space phase  R reset  P pause", 4, y+18)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	lvl := g.session.Level()
	return lvl.Width * g.scale, lvl.Height*g.scale + statusHeight
}

func main() {
	levelName := flag.String("level", "spectrum", "Built-in level id, level file name or path")
	levelsDir := flag.String("levels", "levels", "Directory scanned for level files")
	scale := flag.Int("scale", 48, "Pixels per grid cell")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "viewer"})
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	}

	lvl, err := level.Resolve(*levelName, *levelsDir)
	if err != nil {
		logger.Fatal("Failed to load level", "err", err)
	}

	g := &Game{
		session: game.NewSession(lvl, logger),
		scale:   *scale,
		logger:  logger,
	}

	ebiten.SetWindowSize(lvl.Width**scale, lvl.Height**scale+statusHeight)
	ebiten.SetWindowTitle("Lightpath - " + lvl.Name)
	if err := ebiten.RunGame(g); err != nil {
		logger.Fatal("Viewer stopped", "err", err)
	}
}
