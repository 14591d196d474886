package parallel

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
)

// WorkerPool manages a pool of worker goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
}

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Task  int
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %d panicked: %v", e.Task, e.Value)
}

// NewWorkerPool creates a new worker pool with specified number of workers.
// A non-positive count uses GOMAXPROCS workers.
// Returns an error if the worker count exceeds MaxWorkers.
func NewWorkerPool(workers int) (*WorkerPool, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2), // Buffer for 2x workers
	}

	pool.start()
	return pool, nil
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// start initializes the worker goroutines
func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// worker processes tasks from the queue. Tasks are expected to recover
// their own panics; see ForEach.
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		task()
	}
}

// Submit adds a task to the worker pool
// Returns false if the pool is closed, true if task was submitted
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	// Check if pool is closed while holding read lock
	if wp.closed {
		return false
	}

	// Safe to send because we hold the lock and pool is not closed
	wp.taskQueue <- task
	return true
}

// Close shuts down the worker pool and waits for queued tasks to finish
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		// Acquire write lock before closing
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// ForEach runs fn for every task index in [0, n) on the pool and waits for
// all of them. Each result slot receives the task's error, or a *PanicError
// if the task panicked; one failing task never stops the others. Tasks not
// yet started when ctx is cancelled receive ctx.Err().
func (wp *WorkerPool) ForEach(ctx context.Context, n int, fn func(ctx context.Context, task int) error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		task := i
		submitted := wp.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[task] = &PanicError{Task: task, Value: r}
				}
			}()

			if err := ctx.Err(); err != nil {
				errs[task] = err
				return
			}
			errs[task] = fn(ctx, task)
		})
		if !submitted {
			errs[task] = fmt.Errorf("task %d: worker pool closed", task)
			wg.Done()
		}
	}

	wg.Wait()
	return errs
}
