package sat

import (
	"time"

	"github.com/crillab/gophersat/solver"

	"github.com/go-krill/krill"
)

// Gopher is a solving engine backed by the gophersat solver. The
// translator accumulates clauses across checks, but gophersat offers no
// assumption interface, so each check builds a fresh solver over the
// accumulated clauses plus per-check assumption units. Gophersat cannot
// be interrupted mid-solve either; when the termination gate fires the
// engine walks away from the solving goroutine and reports unknown.
type Gopher struct {
	buf  *clauseBuf
	tr   *translator
	done int // formulas already encoded
}

var _ krill.Engine = (*Gopher)(nil)

// NewGopher returns an engine backed by gophersat.
func NewGopher() *Gopher {
	buf := &clauseBuf{}
	return &Gopher{buf: buf, tr: newTranslator(buf)}
}

// Check implements krill.Engine.
func (e *Gopher) Check(formulas, assumptions []*krill.Term, opts *krill.OptionSet, stop func() bool) (krill.Status, *krill.Model) {
	for _, t := range formulas[e.done:] {
		e.tr.assertTrue(t)
	}
	e.done = len(formulas)

	// Assumption gates persist; the unit clauses asserting them are
	// discarded after the check.
	lits := make([]int, len(assumptions))
	for i, t := range assumptions {
		lits[i] = e.tr.literal(t)
	}
	base := len(e.buf.clauses)
	for _, l := range lits {
		e.buf.clause(l)
	}
	defer func() { e.buf.clauses = e.buf.clauses[:base] }()

	s := solver.New(solver.ParseSlice(e.buf.clauses))
	s.Verbose = opts.Uint(krill.Verbosity) > 0

	st, ok := e.solve(s, stop)
	if !ok || st == solver.Indet {
		return krill.StatusUnknown, nil
	}
	if st == solver.Unsat {
		return krill.StatusUnsat, nil
	}

	model := s.Model()
	return krill.StatusSat, e.tr.model(func(v int) bool {
		// Variables the solver never saw are unconstrained.
		if v > len(model) {
			return false
		}
		return model[v-1]
	})
}

// solve waits for the solver or the gate, whichever finishes first.
func (e *Gopher) solve(s *solver.Solver, stop func() bool) (solver.Status, bool) {
	if stop() {
		return solver.Indet, false
	}

	ch := make(chan solver.Status, 1)
	go func() { ch <- s.Solve() }()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case st := <-ch:
			return st, true
		case <-ticker.C:
			if stop() {
				return solver.Indet, false
			}
		}
	}
}

// clauseBuf collects the translated CNF for per-check solver builds.
type clauseBuf struct {
	nVars   int
	clauses [][]int
}

func (b *clauseBuf) fresh() int {
	b.nVars++
	return b.nVars
}

func (b *clauseBuf) clause(lits ...int) {
	c := make([]int, len(lits))
	copy(c, lits)
	b.clauses = append(b.clauses, c)
}
