package preload

import (
	"context"
	"log/slog"
)

// Config holds configuration for a Preloader
type Config struct {
	// Workers determines how many concurrent workers execute tasks.
	// If zero or negative, defaults to the number of CPUs.
	Workers int
}

// DefaultConfig returns a Config with hardware-sized worker count
func DefaultConfig() Config {
	return Config{Workers: 0}
}

// Preloader coordinates a pending queue and a worker pool so a host render
// loop can kick off background work and poll for its completion. It is
// reusable: once IsLoading returns false, a fresh batch of tasks may be
// registered and started.
//
// AddTask, AddTaskOn and AddFunc are safe for concurrent callers. Start,
// Frame and Stop are expected to be called from the host's control thread.
type Preloader struct {
	// host is the default receiver for name-based registration. It is an
	// explicit construction-time value, never ambient process state.
	host    any
	queue   *PendingQueue
	pool    *WorkerPool
	overlay Overlay
	logger  *slog.Logger
}

// NewPreloader creates a Preloader and starts its worker pool. host is used
// as the default receiver by AddTask and may be nil if only AddTaskOn and
// AddFunc are used.
func NewPreloader(host any, config Config, logger *slog.Logger) *Preloader {
	pool := NewWorkerPool(WorkerPoolConfig{WorkerCount: config.Workers}, logger)
	pool.Start()

	return &Preloader{
		host:    host,
		queue:   NewPendingQueue(logger),
		pool:    pool,
		overlay: nopOverlay{},
		logger:  logger,
	}
}

// SetOverlay injects the loading-screen collaborator used by Frame.
// Set it before the render loop starts calling Frame.
func (p *Preloader) SetOverlay(overlay Overlay) {
	if overlay == nil {
		overlay = nopOverlay{}
	}
	p.overlay = overlay
}

// AddTask registers a zero-argument method by name on the default host
// receiver. A name that does not resolve is logged and dropped; other
// registrations are unaffected.
func (p *Preloader) AddTask(name string) {
	p.AddTaskOn(p.host, name)
}

// AddTaskOn registers a zero-argument method by name on the given receiver.
// A name that does not resolve is logged and dropped; other registrations
// are unaffected.
func (p *Preloader) AddTaskOn(receiver any, name string) {
	task, err := NewMethod(receiver, name)
	if err != nil {
		p.logger.Error("task registration failed",
			"task_name", name,
			"error", err)
		return
	}
	p.queue.Enqueue(task)
}

// AddFunc registers a function value as a task. name is used for logging.
func (p *Preloader) AddFunc(name string, fn func(ctx context.Context) error) {
	p.queue.Enqueue(NewFunc(name, fn))
}

// Start drains the pending queue into the worker pool, one task at a time,
// until the queue reports empty. Tasks enqueued concurrently while the drain
// is running are picked up by the same call. Start returns once the queue is
// empty; it does not wait for submitted tasks to finish.
func (p *Preloader) Start() {
	count := 0
	for {
		task, ok := p.queue.DrainOne()
		if !ok {
			break
		}
		if err := p.pool.Submit(task); err != nil {
			p.logger.Error("task submission failed",
				"task_id", task.ID(),
				"task_name", task.Name(),
				"error", err)
			continue
		}
		count++
	}

	if count > 0 {
		p.logger.Info("pending tasks submitted", "count", count)
	}
}

// IsLoading reports whether any submitted task has not yet completed.
// It never blocks and is intended to be polled once per frame.
func (p *Preloader) IsLoading() bool {
	return !p.pool.IsQuiescent()
}

// Frame is the per-tick hook for the host render loop: while work is
// outstanding it hands a progress snapshot to the injected overlay,
// otherwise it does nothing. It never blocks.
func (p *Preloader) Frame() {
	if p.IsLoading() {
		p.overlay.DrawLoading(p.pool.Stats())
	}
}

// Pool exposes the underlying worker pool, mirroring the original API that
// let callers inspect the executor directly.
func (p *Preloader) Pool() *WorkerPool {
	return p.pool
}

// Stop disposes of the worker pool. Outstanding tasks are allowed to finish.
func (p *Preloader) Stop() {
	p.pool.Stop()
}
