package sim

import (
	"context"
	"runtime"
	"sync"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/tracer"
)

// FrameTask asks a worker to simulate one tick
type FrameTask struct {
	Index   int     // For deterministic ordering
	Elapsed float64 // Tick time in seconds
}

// FrameResult contains the result from simulating a tick
type FrameResult struct {
	Index int
	Frame Frame
}

// WorkerPool manages parallel tick simulation
type WorkerPool struct {
	taskQueue   chan FrameTask
	resultQueue chan FrameResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker simulates ticks of one level
type Worker struct {
	ID          int
	lvl         *level.Level
	base        level.Runtime
	ctx         context.Context
	logger      core.Logger
	taskQueue   chan FrameTask
	resultQueue chan FrameResult
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// capacity bounds the number of queued tasks and results.
func NewWorkerPool(ctx context.Context, lvl *level.Level, base level.Runtime, capacity, numWorkers int, logger core.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan FrameTask, capacity),
		resultQueue: make(chan FrameResult, capacity),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			lvl:         lvl,
			base:        base,
			ctx:         ctx,
			logger:      logger,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask submits a tick to the worker pool
func (wp *WorkerPool) SubmitTask(task FrameTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a simulated tick
func (wp *WorkerPool) GetResult() (FrameResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop. The shared base runtime is only read; each
// task gets its own copy with the tick time applied.
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		rt := w.base.Clone()
		rt.Elapsed = task.Elapsed

		frame := Simulate(w.lvl, rt, tracer.Options{Logger: w.logger, Context: w.ctx})
		frame.Index = task.Index

		w.resultQueue <- FrameResult{Index: task.Index, Frame: frame}
	}
}
