// Package exclproc hands a procedure to the streaming goroutine so it runs
// while scan-out is stopped.
package exclproc

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("exclproc: closed")

type request struct {
	fn   func()
	done chan struct{}
}

// Proc is a rendezvous between requesters and the streaming loop. A
// requester queues a function with Do and blocks; the streaming loop sees
// it through Pending, stops its output and runs it with ProcessOrWait.
type Proc struct {
	req    chan *request
	closed chan struct{}
	once   sync.Once
}

func New() *Proc {
	return &Proc{
		req:    make(chan *request, 1),
		closed: make(chan struct{}),
	}
}

// Do queues fn and waits for it to complete. If ctx ends first Do returns
// its error; an fn already queued may still run afterwards.
func (p *Proc) Do(ctx context.Context, fn func()) error {
	r := &request{fn: fn, done: make(chan struct{})}
	select {
	case p.req <- r:
	case <-p.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-r.done:
		return nil
	case <-p.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports whether a procedure is queued.
func (p *Proc) Pending() bool {
	return len(p.req) > 0
}

// ProcessOrWait runs the queued procedure, if any, and releases its
// requester. It returns whether a procedure ran.
func (p *Proc) ProcessOrWait() bool {
	select {
	case r := <-p.req:
		r.fn()
		close(r.done)
		return true
	default:
		return false
	}
}

// Close fails current and future requesters with ErrClosed.
func (p *Proc) Close() {
	p.once.Do(func() { close(p.closed) })
}
