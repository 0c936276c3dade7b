package sim

import (
	"context"
	"fmt"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
)

// MaxFrames bounds a single timeline request
const MaxFrames = 4096

// TimelineConfig describes a batch of evenly spaced ticks
type TimelineConfig struct {
	From    float64     // first tick time in seconds
	To      float64     // last tick time in seconds
	Frames  int         // number of ticks, at least 1
	Workers int         // parallel workers, 0 means one per CPU
	Logger  core.Logger // optional
}

// Times returns the tick times of the timeline
func (c TimelineConfig) Times() []float64 {
	times := make([]float64, c.Frames)
	if c.Frames == 1 {
		times[0] = c.From
		return times
	}
	step := (c.To - c.From) / float64(c.Frames-1)
	for i := range times {
		times[i] = c.From + float64(i)*step
	}
	return times
}

// Validate checks the timeline bounds
func (c TimelineConfig) Validate() error {
	if c.Frames < 1 || c.Frames > MaxFrames {
		return fmt.Errorf("frames must be between 1 and %d, got %d", MaxFrames, c.Frames)
	}
	if c.To < c.From {
		return fmt.Errorf("timeline end %.3f is before start %.3f", c.To, c.From)
	}
	return nil
}

// Timeline simulates evenly spaced ticks of lvl on a worker pool. Frames
// come back ordered by index and do not depend on the worker count. The
// base runtime is copied for each tick and only its elapsed time varies.
func Timeline(ctx context.Context, lvl *level.Level, base level.Runtime, cfg TimelineConfig) ([]Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	times := cfg.Times()
	pool := NewWorkerPool(ctx, lvl, base.Clone(), len(times), cfg.Workers, cfg.Logger)
	pool.Start()

	core.Logf(cfg.Logger, "Simulating %d ticks of %q from %.2fs to %.2fs (using %d workers)...\n",
		len(times), lvl.ID, cfg.From, cfg.To, pool.GetNumWorkers())

	for i, t := range times {
		pool.SubmitTask(FrameTask{Index: i, Elapsed: t})
	}

	frames := make([]Frame, len(times))
	for range times {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		frames[result.Index] = result.Frame
	}
	pool.Stop()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("timeline cancelled: %w", err)
	}
	return frames, nil
}
