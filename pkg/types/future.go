package types

import (
	"context"
	"sync"
)

// Future is the promise-style delivery channel for a single request
// execution. It is created pending and settles exactly once, with either a
// Response or a classified error, never both and never twice. Abandoning a
// Future is safe; it does not abort the underlying request.
type Future struct {
	done chan struct{}
	once sync.Once
	resp *Response
	err  error
}

// NewFuture returns a pending Future together with its resolve function.
// The resolve function settles the Future on first call; later calls are
// no-ops. Only the component executing the request should hold the resolver.
func NewFuture() (*Future, func(*Response, error)) {
	f := &Future{done: make(chan struct{})}
	resolve := func(resp *Response, err error) {
		f.once.Do(func() {
			f.resp = resp
			f.err = err
			close(f.done)
		})
	}
	return f, resolve
}

// Done returns a channel that is closed once the Future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the Future settles or ctx is done, and returns the
// terminal outcome. Waiting repeatedly returns the same outcome.
func (f *Future) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.resp, f.err
	}
}
