package krill

import "time"

// Terminator is a polled cancellation predicate. An engine polls it at
// bounded intervals during a check; once it reports true the check is
// abandoned and yields StatusUnknown.
//
// The predicate must be cheap and side-effect free: it is called at
// high frequency from the solving goroutine while the owning
// application may flip the flag it reads from another goroutine, so an
// implementation should read an atomic flag or a monotonic clock.
type Terminator interface {
	Terminated() bool
}

// TerminatorFunc adapts a plain function to the Terminator interface.
type TerminatorFunc func() bool

// Terminated returns f().
func (f TerminatorFunc) Terminated() bool { return f() }

// TimeLimit returns a terminator that fires once d has elapsed from the
// moment of this call. Sessions have no built-in timeout; this is the
// caller-side building block for one.
func TimeLimit(d time.Duration) Terminator {
	deadline := time.Now().Add(d)
	return TerminatorFunc(func() bool {
		return !time.Now().Before(deadline)
	})
}
