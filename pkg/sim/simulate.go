package sim

import (
	"github.com/df07/go-lightpath/pkg/goal"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/resolve"
	"github.com/df07/go-lightpath/pkg/spatial"
	"github.com/df07/go-lightpath/pkg/tracer"
)

// Frame is the full simulator output for one tick
type Frame struct {
	Index   int            `json:"index"`
	Elapsed float64        `json:"elapsed"`
	Phase   level.PhaseTag `json:"phase"`

	tracer.Result

	Solved   map[string]bool        `json:"solved"`
	Reports  map[string]goal.Report `json:"reports"`
	Complete bool                   `json:"complete"`
}

// Simulate runs resolver, spatial index, tracer and goal evaluator for one
// tick. The level and runtime are only read.
func Simulate(lvl *level.Level, rt level.Runtime, opts tracer.Options) Frame {
	idx := spatial.Build(resolve.Resolve(lvl, rt))
	result := tracer.TraceIndex(lvl, rt, idx, opts)
	eval := goal.Evaluate(lvl, result.Hits)

	return Frame{
		Elapsed:  rt.Elapsed,
		Phase:    rt.Phase(),
		Result:   result,
		Solved:   eval.Solved,
		Reports:  eval.Reports,
		Complete: eval.Complete(lvl),
	}
}

// SolvedIDs returns the solved objectives in level order
func (f Frame) SolvedIDs(lvl *level.Level) []string {
	var ids []string
	for _, id := range lvl.Objectives {
		if f.Solved[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
