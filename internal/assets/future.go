package assets

import (
	"context"
	"sync"
)

// Future is the result of an asynchronous load. It resolves exactly once;
// continuations registered with Then run once, either at resolution or
// immediately if the future is already resolved.
type Future struct {
	mu        sync.Mutex
	done      chan struct{}
	resolved  bool
	mat       *Material
	err       error
	callbacks []func(*Material, error)
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a future that already holds its result.
func Resolved(mat *Material, err error) *Future {
	f := newFuture()
	f.resolve(mat, err)
	return f
}

// Then registers a continuation.
func (f *Future) Then(cb func(*Material, error)) {
	f.mu.Lock()
	if !f.resolved {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	mat, err := f.mat, f.err
	f.mu.Unlock()
	cb(mat, err)
}

// Done reports whether the future has resolved.
func (f *Future) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved
}

// Wait blocks until the future resolves or ctx ends.
func (f *Future) Wait(ctx context.Context) (*Material, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.mat, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resolve stores the result and runs pending continuations. Later calls
// are ignored. Continuations run outside the lock, so they may call Then.
func (f *Future) resolve(mat *Material, err error) {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return
	}
	f.resolved = true
	f.mat, f.err = mat, err
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	// Waiters wake only after every continuation has run.
	for _, cb := range callbacks {
		cb(mat, err)
	}
	close(f.done)
}
