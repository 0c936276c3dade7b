package tracer

import (
	"context"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/resolve"
	"github.com/df07/go-lightpath/pkg/spatial"
)

// Options configures a trace
type Options struct {
	Logger  core.Logger     // optional, nil is silent
	Context context.Context // optional deadline checked between beams
}

type tracer struct {
	lvl    *level.Level
	rt     level.Runtime
	idx    *spatial.Index
	logger core.Logger

	queue  []Beam
	head   int
	result *Result
}

// Trace resolves the level for rt and propagates every source beam.
// Neither argument is modified.
func Trace(lvl *level.Level, rt level.Runtime, opts Options) Result {
	idx := spatial.Build(resolve.Resolve(lvl, rt))
	return TraceIndex(lvl, rt, idx, opts)
}

// TraceIndex propagates every source beam through a prebuilt index
func TraceIndex(lvl *level.Level, rt level.Runtime, idx *spatial.Index, opts Options) Result {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	t := newTracer(lvl, rt, idx, opts.Logger)
	for _, src := range lvl.Sources {
		t.queue = append(t.queue, NewBeam(src))
	}
	t.run(ctx)
	return *t.result
}

func newTracer(lvl *level.Level, rt level.Runtime, idx *spatial.Index, logger core.Logger) *tracer {
	return &tracer{
		lvl:    lvl,
		rt:     rt,
		idx:    idx,
		logger: logger,
		result: newResult(),
	}
}

// run drains the FIFO beam queue. Splits append to the tail, so the queue
// only grows until every beam has reached the depth cap.
func (t *tracer) run(ctx context.Context) {
	for t.head < len(t.queue) {
		if err := ctx.Err(); err != nil {
			t.result.Truncated = true
			core.Logf(t.logger, "Trace of %q stopped with %d beams pending: %v\n",
				t.lvl.ID, len(t.queue)-t.head, err)
			return
		}

		b := t.queue[t.head]
		t.head++

		if b.Depth > MaxDepth {
			t.result.Stats.end(ReasonDepthCap)
			continue
		}
		t.propagate(b)
	}
}

// propagate integrates one beam until an entity, the grid edge or the
// step budget stops it.
func (t *tracer) propagate(b Beam) {
	stats := &t.result.Stats
	stats.Beams++
	stats.MaxDepth = max(stats.MaxDepth, b.Depth)

	seg := newSegment(b, b.Pos)
	prev := b.Cell()
	gravity := t.idx.Gravity()

	for step := 0; step < MaxSteps; step++ {
		stats.Steps++

		if len(gravity) > 0 {
			b.Dir = bend(b.Dir, b.Pos, gravity)
		}
		b.Pos = b.Pos.Add(b.Dir.Multiply(StepLength))
		seg.add(b.Pos)

		cell := b.Cell()
		if cell == prev {
			continue
		}
		if !cell.InBounds(t.lvl.Width, t.lvl.Height) {
			seg.moveEnd(core.ClipToGrid(b.Pos, t.lvl.Width, t.lvl.Height))
			t.result.commit(seg)
			stats.end(ReasonOutOfBounds)
			return
		}

		for _, e := range t.idx.At(cell) {
			if !e.Active {
				continue
			}
			out := t.apply(e, b)
			if out.Action == Pass {
				continue
			}
			if out.Snap {
				seg.moveEnd(onPlane(e.Center(), b.Pos))
			}

			switch out.Action {
			case Terminate:
				t.result.commit(seg)
				stats.end(out.Reason)
				return

			case Split:
				t.result.commit(seg)
				t.queue = append(t.queue, out.Children...)
				stats.Splits++
				stats.end(out.Reason)
				return

			case Continue:
				if out.Beam.Bounces > b.Bounces {
					stats.Bounces++
				}
				if out.Exit != nil {
					seg = t.jump(seg, out.Beam, *out.Exit)
				} else if !out.Beam.sameStyle(b) {
					t.result.commit(seg)
					seg = newSegment(out.Beam, seg.End())
				}
				b = out.Beam
			}
			break
		}
		prev = b.Cell()
	}

	t.result.commit(seg)
	stats.end(ReasonStepBudget)
}

// jump closes the entry segment, adds the dimmed connector between the
// two portal centres and opens a new polyline at the exit.
func (t *tracer) jump(seg Segment, b Beam, exit resolve.Entity) Segment {
	entry := seg.End()
	t.result.commit(seg)

	connector := newSegment(b, entry)
	connector.Intensity *= JumpDimming
	connector.Jump = true
	exitCenter := onPlane(exit.Center(), b.Pos)
	connector.add(exitCenter)
	t.result.commit(connector)

	return newSegment(b, exitCenter)
}
