// Package krill implements an incremental bit-vector SMT solving core.
//
// Terms and sorts are built through a TermManager, which owns their
// identity for as long as it lives. A Session binds a TermManager and a
// frozen snapshot of an OptionSet to one assertion stack and one engine
// instance. There is deliberately no reset operation: to reset, discard
// the session and create a new one, optionally reusing the TermManager
// so that previously built terms stay valid.
package krill

import (
	"errors"
	"fmt"
)

// Standard widths.
const (
	WidthBool = 1
	Width8    = 8
	Width16   = 16
	Width32   = 32
	Width64   = 64
)

var (
	ErrInvalidOption    = errors.New("krill: invalid option")
	ErrTypeMismatch     = errors.New("krill: option value type mismatch")
	ErrLockedOption     = errors.New("krill: option locked after first check")
	ErrForeignTerm      = errors.New("krill: term built by a different term manager")
	ErrSortMismatch     = errors.New("krill: sort mismatch")
	ErrModelUnavailable = errors.New("krill: model unavailable")
)

// Status represents the tri-state outcome of a satisfiability check.
// A fired terminator and genuine engine incompleteness both surface as
// StatusUnknown; callers that need to tell them apart must consult
// their own terminator.
type Status int

const (
	StatusUnknown Status = 0
	StatusSat     Status = 1
	StatusUnsat   Status = -1
)

// String returns the SMT-LIB spelling of the status.
func (s Status) String() string {
	switch s {
	case StatusSat:
		return "sat"
	case StatusUnsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Engine represents the decision procedure a session delegates to.
//
// Check reports the satisfiability of the conjunction of formulas and
// assumptions. Formulas are the session's assertion stack in insertion
// order; the slice passed to consecutive calls only ever grows, so an
// engine may encode incrementally. Assumptions hold for a single call.
// opts is the owning session's frozen option snapshot. stop is never
// nil; the engine must poll it at bounded intervals and abandon the
// search when it reports true, returning StatusUnknown. Engine-internal
// failures surface as StatusUnknown, never as a panic.
//
// An Engine instance holds per-session solver state and must not be
// shared between sessions.
type Engine interface {
	Check(formulas, assumptions []*Term, opts *OptionSet, stop func() bool) (Status, *Model)
}

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
