package queue

import (
	"context"
	"sync"
)

// pool is a fixed set of execution slots fed from an unbounded
// in-process backlog. Scheduling never blocks the submitter; work
// beyond the slot count waits in the backlog until a slot frees up.
// The backlog is internal to the pool and never exposed to callers.
type pool struct {
	workers int

	mu      sync.Mutex
	cond    *sync.Cond
	backlog []func()
	closed  bool

	wg sync.WaitGroup
}

func newPool(workers int) *pool {
	p := &pool{
		workers: workers,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// start launches the worker goroutines
func (p *pool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

// run is one execution slot: pop the oldest queued job, run it, repeat.
// Slots drain the backlog before exiting on shutdown.
func (p *pool) run() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.backlog) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.backlog) == 0 {
			p.mu.Unlock()
			return
		}
		job := p.backlog[0]
		p.backlog = p.backlog[1:]
		p.mu.Unlock()

		job()
	}
}

// schedule queues fn for execution. Returns false if the pool has been
// shut down and fn will never run.
func (p *pool) schedule(fn func()) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.backlog = append(p.backlog, fn)
	p.mu.Unlock()

	p.cond.Signal()
	return true
}

// shutdown stops accepting work and waits for the slots to drain the
// backlog, or for ctx to expire
func (p *pool) shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
