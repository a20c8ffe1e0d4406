package preload

import (
	"log/slog"
	"sync"
)

// PendingQueue holds tasks that have been registered but not yet submitted
// to the worker pool. It is an unbounded FIFO safe for concurrent producers;
// Enqueue never blocks. Registration typically happens before the loading
// phase begins, so the absence of backpressure is deliberate.
type PendingQueue struct {
	mu     sync.Mutex
	tasks  []Task
	logger *slog.Logger
}

// NewPendingQueue creates an empty pending queue
func NewPendingQueue(logger *slog.Logger) *PendingQueue {
	return &PendingQueue{
		logger: logger,
	}
}

// Enqueue appends a task to the queue. It never blocks and never fails.
func (q *PendingQueue) Enqueue(task Task) {
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	pending := len(q.tasks)
	q.mu.Unlock()

	q.logger.Debug("task enqueued",
		"task_id", task.ID(),
		"task_name", task.Name(),
		"pending", pending)
}

// DrainOne removes and returns the oldest task, or reports false if the
// queue is empty. Removal is atomic per item: no two callers receive the
// same task.
func (q *PendingQueue) DrainOne() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return nil, false
	}

	task := q.tasks[0]
	q.tasks[0] = nil // release the reference for GC
	q.tasks = q.tasks[1:]
	return task, true
}

// IsEmpty reports whether the queue currently holds no tasks.
func (q *PendingQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns a snapshot of the number of pending tasks.
func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
