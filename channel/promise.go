// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package channel

import "sync/atomic"

const (
	promisePending int32 = iota
	promiseResolved
	promiseFailed
)

// promise is a single-assignment result cell. Exactly one of resolve
// or fail ever takes effect; the transition is claimed with an atomic
// compare-and-swap so the outcome never depends on caller discipline.
// A caller that stops waiting simply abandons the cell; a late
// resolve still succeeds and the result is discarded.
type promise struct {
	state atomic.Int32
	frame []byte
	err   error
	done  chan struct{}
}

func newPromise() *promise {
	return &promise{done: make(chan struct{})}
}

// resolve fulfils the promise with a response frame. It reports
// whether this call won the transition.
func (p *promise) resolve(frame []byte) bool {
	if !p.state.CompareAndSwap(promisePending, promiseResolved) {
		return false
	}
	p.frame = frame
	close(p.done)
	return true
}

// fail fulfils the promise with an error. It reports whether this
// call won the transition.
func (p *promise) fail(err error) bool {
	if !p.state.CompareAndSwap(promisePending, promiseFailed) {
		return false
	}
	p.err = err
	close(p.done)
	return true
}

// ready is closed once the promise is fulfilled either way.
func (p *promise) ready() <-chan struct{} {
	return p.done
}

// result returns the outcome. It must only be called after ready has
// been closed; the frame and err fields are published by the close.
func (p *promise) result() ([]byte, error) {
	return p.frame, p.err
}
