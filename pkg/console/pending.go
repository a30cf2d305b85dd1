package console

import (
	"context"
	"errors"
	"sync"
)

// ErrInvalidState is returned when an operation conflicts with the
// engine's current state, such as a second Read while one is pending.
var ErrInvalidState = errors.New("invalid state")

// DefaultAbortReason is the reason used when AbortRead is given none
const DefaultAbortReason = "aborted"

// AbortError rejects a pending read that was cancelled with AbortRead
type AbortError struct {
	Reason string
}

func (e *AbortError) Error() string {
	return "read aborted: " + e.Reason
}

// IsAbort reports whether err is an *AbortError
func IsAbort(err error) bool {
	var abort *AbortError
	return errors.As(err, &abort)
}

// Pending is the one-shot result of Read or ReadChar
type Pending struct {
	done  chan struct{}
	once  sync.Once
	value string
	err   error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// settle stores the outcome. Only the first call has any effect.
func (p *Pending) settle(value string, err error) bool {
	settled := false
	p.once.Do(func() {
		p.value = value
		p.err = err
		settled = true
		close(p.done)
	})
	return settled
}

// Done is closed once the result is available
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether the result is available
func (p *Pending) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the result is available or ctx is done. Cancelling ctx
// does not cancel the read itself.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Then runs fn with the outcome once it is available and returns a
// Pending that settles with the same outcome after fn has returned.
func (p *Pending) Then(fn func(value string, err error)) *Pending {
	next := newPending()
	go func() {
		<-p.done
		fn(p.value, p.err)
		next.settle(p.value, p.err)
	}()
	return next
}
