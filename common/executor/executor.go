package executor

import (
	"context"
	"sync"

	"github.com/zeromicro/go-zero/core/threading"
)

// Executor runs handler on queued tasks with a fixed number of workers.
type Executor[P interface{}] struct {
	ctx     context.Context
	cancel  context.CancelFunc
	tasks   chan P
	handler func(task P)
	workers int
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewExecutor[P interface{}](ctx context.Context, workers int, queueSize int, handler func(task P)) *Executor[P] {
	if workers < 1 {
		workers = 1
	}
	ret := &Executor[P]{
		tasks:   make(chan P, queueSize),
		handler: handler,
		workers: workers,
	}
	ret.ctx, ret.cancel = context.WithCancel(ctx)
	return ret
}

func (e *Executor[P]) Start() {
	e.wg.Add(e.workers)
	for i := 0; i < e.workers; i++ {
		go func() {
			defer e.wg.Done()
			for {
				select {
				case <-e.ctx.Done():
					return
				case task, ok := <-e.tasks:
					if !ok {
						return
					}
					threading.RunSafe(func() {
						e.handler(task)
					})
				}
			}
		}()
	}
}

// Commit queues a task, blocking while the queue is full. It returns false if
// the executor was stopped or closed first.
func (e *Executor[P]) Commit(task P) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return false
	}
	select {
	case <-e.ctx.Done():
		return false
	case e.tasks <- task:
		return true
	}
}

// Close tells the workers no more tasks will be committed. Queued tasks are
// still handled.
func (e *Executor[P]) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.tasks)
	}
}

// Wait blocks until every worker has returned, after Close or Stop.
func (e *Executor[P]) Wait() {
	e.wg.Wait()
}

// Stop abandons the queued tasks.
func (e *Executor[P]) Stop() {
	e.cancel()
}

func (e *Executor[P]) QueueSize() int {
	return len(e.tasks)
}
