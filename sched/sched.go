// Package sched provides the data-parallel loop primitive used by the
// analysis operators. The core is sequential; parallelism only enters
// through an explicit Scheduler.
package sched

import (
	"runtime"
	"sync"
)

// Scheduler runs an index range, possibly split across threads. ForEach
// gives no ordering guarantees across iterations; fn receives the worker
// index for per-thread scratch and the element index.
type Scheduler interface {
	ThreadCnt() int
	ForEach(from, to int, fn func(thread, i int))
}

// ParallelFor runs fn over [from, to) on the scheduler.
func ParallelFor(s Scheduler, from, to int, fn func(i int)) {
	s.ForEach(from, to, func(_, i int) { fn(i) })
}

// Serial runs everything on the calling goroutine, in index order.
type Serial struct{}

func (Serial) ThreadCnt() int { return 1 }

func (Serial) ForEach(from, to int, fn func(thread, i int)) {
	for i := from; i < to; i++ {
		fn(0, i)
	}
}

// Pool fans iterations out to a fixed number of goroutines in contiguous
// blocks.
type Pool struct {
	threadCnt int
}

// NewPool makes a pool of threadCnt workers; threadCnt <= 0 selects
// GOMAXPROCS.
func NewPool(threadCnt int) *Pool {
	if threadCnt <= 0 {
		threadCnt = runtime.GOMAXPROCS(0)
	}
	return &Pool{threadCnt: threadCnt}
}

func (p *Pool) ThreadCnt() int { return p.threadCnt }

func (p *Pool) ForEach(from, to int, fn func(thread, i int)) {
	n := to - from
	if n <= 0 {
		return
	}
	workers := p.threadCnt
	if workers > n {
		workers = n
	}
	block := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := from + w*block
		hi := lo + block
		if hi > to {
			hi = to
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(thread, lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(thread, i)
			}
		}(w, lo, hi)
	}
	wg.Wait()
}

// ThreadLocal holds one value per scheduler thread, created up front so
// workers never contend.
type ThreadLocal[T any] struct {
	vals []T
}

func NewThreadLocal[T any](s Scheduler, create func() T) *ThreadLocal[T] {
	vals := make([]T, s.ThreadCnt())
	for i := range vals {
		vals[i] = create()
	}
	return &ThreadLocal[T]{vals: vals}
}

// Local returns the value of one worker.
func (t *ThreadLocal[T]) Local(thread int) *T {
	return &t.vals[thread]
}

// Values exposes all per-thread values for the final reduction.
func (t *ThreadLocal[T]) Values() []T {
	return t.vals
}
