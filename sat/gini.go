package sat

import (
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/go-krill/krill"
)

// pollInterval is how often a running solve is tested against the
// session's termination gate.
const pollInterval = 5 * time.Millisecond

// Gini is a solving engine backed by the gini SAT solver. It encodes
// incrementally: formulas keep their clauses across checks, and
// per-check assumptions ride on gini's native assumption mechanism.
type Gini struct {
	g    *gini.Gini
	tr   *translator
	done int // formulas already encoded
}

var _ krill.Engine = (*Gini)(nil)

// NewGini returns an engine backed by a fresh gini solver.
func NewGini() *Gini {
	g := gini.New()
	return &Gini{g: g, tr: newTranslator(giniSink{g})}
}

// Check implements krill.Engine.
func (e *Gini) Check(formulas, assumptions []*krill.Term, opts *krill.OptionSet, stop func() bool) (krill.Status, *krill.Model) {
	for _, t := range formulas[e.done:] {
		e.tr.assertTrue(t)
	}
	e.done = len(formulas)

	for _, t := range assumptions {
		e.g.Assume(z.Dimacs2Lit(e.tr.literal(t)))
	}

	res := e.solve(stop)
	if res != 1 {
		return krill.Status(res), nil
	}
	return krill.StatusSat, e.tr.model(func(v int) bool {
		return e.g.Value(z.Dimacs2Lit(v))
	})
}

// solve runs the solver in the background and polls the gate. The
// result follows gini's convention: 1 sat, -1 unsat, 0 given up.
func (e *Gini) solve(stop func() bool) int {
	if stop() {
		return 0
	}
	c := e.g.GoSolve()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for range ticker.C {
		if r, solved := c.Test(); solved {
			return r
		}
		if stop() {
			return c.Stop()
		}
	}
	return 0
}

// giniSink adapts a gini solver to the translator's DIMACS view.
type giniSink struct {
	g *gini.Gini
}

func (s giniSink) fresh() int {
	return s.g.Lit().Dimacs()
}

func (s giniSink) clause(lits ...int) {
	for _, m := range lits {
		s.g.Add(z.Dimacs2Lit(m))
	}
	s.g.Add(z.LitNull)
}
