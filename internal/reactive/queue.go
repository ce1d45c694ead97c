package reactive

import (
	"sync"
)

// Queue runs submitted tasks one at a time, in submission order, on a single
// goroutine. It backs every live subscription so that notifications for one
// stream are never delivered concurrently or out of order.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []func()
	stopped bool
	done    chan struct{}
}

// NewQueue starts a Queue.
func NewQueue() *Queue {
	q := &Queue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)

	go q.run()

	return q
}

// Submit enqueues fn. It reports false if the queue has been stopped.
func (q *Queue) Submit(fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return false
	}

	q.tasks = append(q.tasks, fn)
	q.cond.Signal()

	return true
}

// Stop discards pending tasks and waits for the running one to return.
// After Stop returns no task of this queue runs again. Stop must not be
// called from inside a task of the same queue.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		<-q.done

		return
	}
	q.stopped = true
	q.tasks = nil
	q.cond.Signal()
	q.mu.Unlock()

	<-q.done
}

// Stopped reports whether Stop has been called.
func (q *Queue) Stopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.stopped
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.stopped {
			q.cond.Wait()
		}
		if q.stopped {
			q.mu.Unlock()

			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		task()
	}
}
