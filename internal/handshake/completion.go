package handshake

import (
	"context"
	"sync"
)

// DoneFunc receives the outcome of a handshake started with Start.
type DoneFunc func(*Result, error)

// completer is the single way the handshake hands back its outcome.
type completer interface {
	resolve(*Result, error)
}

type callbackCompleter struct {
	once sync.Once
	done DoneFunc
}

func (c *callbackCompleter) resolve(result *Result, err error) {
	c.once.Do(func() { c.done(result, err) })
}

// Future is a handshake outcome that is not known yet.
type Future struct {
	once   sync.Once
	done   chan struct{}
	result *Result
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(result *Result, err error) {
	f.once.Do(func() {
		f.result, f.err = result, err
		close(f.done)
	})
}

// Done is closed when the outcome is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the outcome is available or ctx ends. Giving up on ctx
// does not stop the handshake.
func (f *Future) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// newCompleter picks the calling convention: a callback when done is set,
// a Future otherwise.
func newCompleter(done DoneFunc) (completer, *Future) {
	if done != nil {
		return &callbackCompleter{done: done}, nil
	}
	f := newFuture()
	return f, f
}

// Start runs the handshake in the background.
//
// With a done callback, Start returns a nil Future and calls done exactly once.
// Without one, the outcome is delivered through the returned Future and
// progress, if set, still receives a report per failed attempt. Option errors
// are returned directly by Start, before any request and without calling done.
func Start(host string, port int, opts *Options, done DoneFunc, progress ProgressFunc) (*Future, error) {
	inv, err := prepare(host, port, opts)
	if err != nil {
		return nil, err
	}
	return inv.start(done, progress), nil
}

func (inv *invocation) start(done DoneFunc, progress ProgressFunc) *Future {
	completion, future := newCompleter(done)
	go func() {
		completion.resolve(inv.run(context.Background(), progress))
	}()
	return future
}
