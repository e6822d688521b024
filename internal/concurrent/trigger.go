package concurrent

import (
	"sync"
)

// Async runs exec in a new go routine
// and returns only once the go routine has started.
func Async(exec func()) {
	started := new(sync.WaitGroup)
	started.Add(1)
	go func() {
		started.Done()
		exec()
	}()
	started.Wait()
}

// Latch is closed once the tracked go routine has finished.
type Latch struct {
	done chan struct{}
	once *sync.Once
}

// NewLatch creates a new open latch.
func NewLatch() *Latch {
	return &Latch{
		done: make(chan struct{}),
		once: new(sync.Once),
	}
}

// Release closes the latch, subsequent calls have no effect.
func (l *Latch) Release() {
	l.once.Do(func() {
		close(l.done)
	})
}

// Done returns a channel that is closed when the latch is released.
func (l *Latch) Done() <-chan struct{} {
	return l.done
}

// Go runs exec asynchronously and releases the returned latch when it returns.
func Go(exec func()) *Latch {
	latch := NewLatch()
	Async(func() {
		defer latch.Release()
		exec()
	})
	return latch
}
