// Command play runs a level in the terminal. Arrows move the cursor, r/R
// rotate the piece under it, p toggles phase, space pauses, x resets and q
// quits. A chime plays when the level is completed.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/game"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/render"
	"github.com/df07/go-lightpath/pkg/resolve"
	"github.com/df07/go-lightpath/pkg/sim"
	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	tickRate   = 30 * time.Millisecond
	cellWidth  = 2 // terminal columns per grid cell
	sampleRate = beep.SampleRate(44100)
)

type Player struct {
	screen  tcell.Screen
	session *game.Session
	cursor  core.Cell
	paused  bool
	solved  bool
	message string
	logger  *log.Logger

	audioInit bool
}

func NewPlayer(session *game.Session, logger *log.Logger) (*Player, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	p := &Player{
		screen:  screen,
		session: session,
		logger:  logger,
	}
	lvl := session.Level()
	p.cursor = core.Cell{X: lvl.Width / 2, Y: lvl.Height / 2}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		// Non-fatal, the game runs without sound
		logger.Warn("Audio initialization failed", "err", err)
	} else {
		p.audioInit = true
	}
	return p, nil
}

// playChime plays a rising two-note chime
func (p *Player) playChime() {
	if !p.audioInit {
		return
	}
	low, err := generators.SineTone(sampleRate, 660)
	if err != nil {
		return
	}
	high, err := generators.SineTone(sampleRate, 880)
	if err != nil {
		return
	}
	note := sampleRate.N(120 * time.Millisecond)
	speaker.Play(beep.Seq(beep.Take(note, low), beep.Take(note*2, high)))
}

func (p *Player) handleInput(ev tcell.Event) bool {
	lvl := p.session.Level()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			p.cursor.X = max(p.cursor.X-1, 0)
		case tcell.KeyRight:
			p.cursor.X = min(p.cursor.X+1, lvl.Width-1)
		case tcell.KeyUp:
			p.cursor.Y = max(p.cursor.Y-1, 0)
		case tcell.KeyDown:
			p.cursor.Y = min(p.cursor.Y+1, lvl.Height-1)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'r':
				p.rotate(45)
			case 'R':
				p.rotate(-45)
			case 'p':
				p.message = fmt.Sprintf("phase %s", p.session.TogglePhase())
			case ' ':
				p.paused = !p.paused
			case 'x':
				p.session.Reset()
				p.solved = false
				p.message = "reset"
			}
		}
	case *tcell.EventResize:
		p.screen.Sync()
	}
	return true
}

func (p *Player) rotate(delta float64) {
	id, ok := p.session.RotatableAt(p.cursor)
	if !ok {
		p.message = fmt.Sprintf("nothing to rotate at %s", p.cursor)
		return
	}
	if err := p.session.Rotate(id, delta); err != nil {
		p.message = err.Error()
		return
	}
	p.message = fmt.Sprintf("rotated %s to %.0f", id, p.session.Runtime().Orientations[id])
}

func (p *Player) draw() {
	lvl := p.session.Level()
	rt := p.session.Runtime()
	frame := p.session.Frame()

	p.screen.Clear()
	bg := tcellColor(render.Background)
	base := tcell.StyleDefault.Background(bg)
	for y := 0; y < lvl.Height; y++ {
		for x := 0; x < lvl.Width*cellWidth; x++ {
			p.screen.SetContent(x, y, ' ', nil, base)
		}
	}

	for _, seg := range frame.Traces {
		if seg.Jump {
			continue
		}
		style := base.Foreground(tcellColor(render.Shade(seg, render.Background)))
		for i := 1; i < len(seg.Points); i++ {
			a, b := seg.Points[i-1], seg.Points[i]
			steps := int(math.Ceil(b.Subtract(a).Length()/0.25)) + 1
			for k := 0; k <= steps; k++ {
				c := core.CellOf(a.Add(b.Subtract(a).Multiply(float64(k) / float64(steps))))
				if c.InBounds(lvl.Width, lvl.Height) {
					p.setCell(c, '·', style)
				}
			}
		}
	}

	for _, e := range resolve.Resolve(lvl, rt) {
		style := base.Foreground(tcellColor(render.EntityColor(e.Entity)))
		if !e.Active {
			style = style.Dim(true)
		}
		p.setCell(e.Pos, glyph(e, rt, frame), style)
	}

	cursor := base.Reverse(true)
	mainc, _, _, _ := p.screen.GetContent(p.cursor.X*cellWidth, p.cursor.Y)
	p.screen.SetContent(p.cursor.X*cellWidth, p.cursor.Y, mainc, nil, cursor)

	status := fmt.Sprintf("%s  t=%.1fs  phase %s  solved %d/%d",
		lvl.Name, frame.Elapsed, frame.Phase, len(frame.SolvedIDs(lvl)), len(lvl.Objectives))
	if frame.Complete {
		status += "  COMPLETE"
	}
	if p.paused {
		status += "  (paused)"
	}
	p.drawText(0, lvl.Height+1, status, tcell.StyleDefault.Bold(true))
	p.drawText(0, lvl.Height+2, "arrows move  r/R rotate  p phase  space pause  x reset  q quit", tcell.StyleDefault.Dim(true))
	p.drawText(0, lvl.Height+3, p.message, tcell.StyleDefault)

	p.screen.Show()
}

func (p *Player) setCell(c core.Cell, r rune, style tcell.Style) {
	p.screen.SetContent(c.X*cellWidth, c.Y, r, nil, style)
}

func (p *Player) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		p.screen.SetContent(x+i, y, r, nil, style)
	}
}

// glyph picks the character drawn for an entity
func glyph(e resolve.Entity, rt level.Runtime, frame sim.Frame) rune {
	switch e.Kind {
	case level.KindWall:
		return '#'
	case level.KindGate:
		if e.Open || rt.GateOpenFor(e.ID) > 0 {
			return ':'
		}
		return '='
	case level.KindPortal:
		return 'O'
	case level.KindMirror, level.KindPolarizer:
		// surface direction rounded to the nearest eighth turn
		switch int(math.Round(core.WrapDegrees(e.Angle)/45)) % 4 {
		case 0:
			return '-'
		case 1:
			return '\\'
		case 2:
			return '|'
		default:
			return '/'
		}
	case level.KindPrism:
		return 'A'
	case level.KindFilter:
		return 'F'
	case level.KindLens:
		return ')'
	case level.KindPhaseShifter:
		return '~'
	case level.KindGravity:
		return '@'
	case level.KindReceptor:
		if frame.ReceptorHits[e.ID] {
			return 'R'
		}
		return 'r'
	case level.KindTarget:
		if frame.Solved[e.ID] {
			return '*'
		}
		return 'T'
	}
	return '?'
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (p *Player) run() {
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- p.screen.PollEvent()
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-eventChan:
			if !p.handleInput(ev) {
				return
			}
		case now := <-ticker.C:
			if !p.paused {
				p.session.Advance(now.Sub(last).Seconds())
			}
			last = now
		}

		if complete := p.session.Frame().Complete; complete && !p.solved {
			p.solved = true
			p.message = "level complete!"
			p.playChime()
		}
		p.draw()
	}
}

func main() {
	levelName := flag.String("level", "corridor", "Built-in level id, level file name or path")
	levelsDir := flag.String("levels", "levels", "Directory scanned for level files")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	// Log to stderr only above the terminal UI's level of noise
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "play"})
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	}

	lvl, err := level.Resolve(*levelName, *levelsDir)
	if err != nil {
		logger.Fatal("Failed to load level", "err", err)
	}

	player, err := NewPlayer(game.NewSession(lvl, nil), logger)
	if err != nil {
		logger.Fatal("Failed to open terminal", "err", err)
	}
	defer player.screen.Fini()

	player.run()
}
