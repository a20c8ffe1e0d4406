package preload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolStopped is returned by Submit after the pool has been stopped.
var ErrPoolStopped = errors.New("worker pool is stopped")

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to the number of CPUs
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig sized to the hardware
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: runtime.NumCPU(),
	}
}

// WorkerPool executes submitted tasks on a fixed set of worker goroutines.
// Submit is fire-and-forget: tasks go into an internal unbounded backlog and
// run on any available worker, in no particular order. Each submitted task is
// executed exactly once; failures and panics are contained per task.
type WorkerPool struct {
	// mu guards backlog and closed; cond signals waiting workers
	mu      sync.Mutex
	cond    *sync.Cond
	backlog []Task
	closed  bool

	// inflight counts tasks submitted but not yet finished. Quiescence is
	// inflight == 0, which covers both queued and actively running work.
	inflight atomic.Int64

	// active counts tasks currently being executed by a worker
	active atomic.Int64

	// submitted and completed are cumulative counters for progress reporting
	submitted atomic.Int64
	completed atomic.Int64

	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *slog.Logger

	// errorHandler is called when a task execution fails.
	// If nil, errors are only logged. Set it before Start.
	errorHandler func(task Task, err error)
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
		logger.Debug("worker count not specified, sizing to hardware",
			"specified_count", config.WorkerCount,
			"worker_count", workerCount)
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &WorkerPool{
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// SetErrorHandler allows setting a custom error handler for task execution failures
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines
func (p *WorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Debug("worker pool started", "worker_count", p.workerCount)
}

// Submit hands a task to the pool for asynchronous execution and returns
// immediately. There is no result handle; completion is observed through
// IsQuiescent. Returns ErrPoolStopped if the pool has been stopped.
func (p *WorkerPool) Submit(task Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("%w: task %q rejected", ErrPoolStopped, task.Name())
	}
	p.inflight.Add(1)
	p.submitted.Add(1)
	p.backlog = append(p.backlog, task)
	p.cond.Signal()
	p.mu.Unlock()

	p.logger.Debug("task submitted",
		"task_id", task.ID(),
		"task_name", task.Name())
	return nil
}

// IsQuiescent reports whether no worker is executing a task and no task is
// queued internally awaiting a worker.
func (p *WorkerPool) IsQuiescent() bool {
	return p.inflight.Load() == 0
}

// Stats is a point-in-time snapshot of the pool's progress counters.
type Stats struct {
	Submitted int64
	Completed int64
	Active    int64
	Queued    int64
}

// Stats returns a snapshot of the pool's progress counters. The fields are
// read independently, so a snapshot taken while workers are running may be
// momentarily inconsistent; it is intended for progress display only.
func (p *WorkerPool) Stats() Stats {
	p.mu.Lock()
	queued := int64(len(p.backlog))
	p.mu.Unlock()

	return Stats{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Active:    p.active.Load(),
		Queued:    queued,
	}
}

// Stop disposes of the pool. Workers finish the remaining backlog, then
// exit; further Submit calls are rejected. Stop blocks until all workers
// have returned and is safe to call more than once.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
	p.logger.Debug("worker pool stopped",
		"submitted", p.submitted.Load(),
		"completed", p.completed.Load())
}

// worker pulls tasks from the backlog until the pool is stopped and drained
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		p.mu.Lock()
		for len(p.backlog) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.backlog) == 0 {
			// closed and drained
			p.mu.Unlock()
			p.logger.Debug("stopping worker", "worker_id", id)
			return
		}
		task := p.backlog[0]
		p.backlog[0] = nil
		p.backlog = p.backlog[1:]
		p.mu.Unlock()

		p.processTask(task, id)
	}
}

// processTask handles execution of a single task
func (p *WorkerPool) processTask(task Task, workerID int) {
	logger := p.logger.With(
		"task_id", task.ID(),
		"task_name", task.Name(),
		"worker_id", workerID,
	)

	p.active.Add(1)
	defer func() {
		p.active.Add(-1)
		p.completed.Add(1)
		p.inflight.Add(-1)
	}()

	logger.Debug("processing task")

	err := p.execute(task)
	if err != nil {
		logger.Error("task execution failed", "error", err)
		if p.errorHandler != nil {
			p.errorHandler(task, err)
		}
		return
	}

	logger.Debug("task completed")
}

// execute runs the task, converting a panic into an error so that one
// misbehaving task cannot take down a worker.
func (p *WorkerPool) execute(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.Execute(p.ctx)
}
