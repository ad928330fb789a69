package krill

import (
	"sort"

	"github.com/benbjohnson/immutable"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Session owns one incremental run of satisfiability checks over a
// growing stack of asserted formulas. A session snapshots its option
// set at creation; later changes to the originating set do not affect
// it. There is no reset operation: discard the session and create a
// new one against the same TermManager.
type Session struct {
	id     string
	tm     *TermManager
	opts   *OptionSet // private snapshot
	origin *OptionSet // locked at first check
	engine Engine

	stack *immutable.List[*Term]
	rw    *rewriter
	gate  Terminator

	checked bool
	status  Status
	model   *Model
}

// NewSession returns a session over tm solving with engine. A nil opts
// selects the defaults for every option.
func NewSession(tm *TermManager, opts *OptionSet, engine Engine) *Session {
	assert(tm != nil, "krill.NewSession: nil term manager")
	assert(engine != nil, "krill.NewSession: nil engine")
	if opts == nil {
		opts = NewOptionSet()
	}
	return &Session{
		id:     uuid.NewString(),
		tm:     tm,
		opts:   opts.clone(),
		origin: opts,
		engine: engine,
		stack:  immutable.NewList[*Term](),
		rw:     newRewriter(tm),
	}
}

// ID returns the unique identifier of the session.
func (s *Session) ID() string { return s.id }

// TermManager returns the manager the session's terms must belong to.
func (s *Session) TermManager() *TermManager { return s.tm }

// ConfigureTerminator attaches gate to the session. Checks in progress
// and later checks poll it and give up once it fires. A nil gate
// detaches the current one.
func (s *Session) ConfigureTerminator(gate Terminator) {
	s.gate = gate
}

// AssertFormula pushes t onto the assertion stack. Growing the stack
// invalidates the model of the previous check.
func (s *Session) AssertFormula(t *Term) error {
	if err := s.checkOwned(t); err != nil {
		return err
	}
	if !t.sort.IsBool() {
		return ErrSortMismatch
	}
	s.stack = s.stack.Append(t)
	s.status = StatusUnknown
	s.model = nil
	return nil
}

// Assertions returns the asserted formulas in assertion order.
func (s *Session) Assertions() []*Term {
	formulas := make([]*Term, 0, s.stack.Len())
	for itr := s.stack.Iterator(); !itr.Done(); {
		_, t := itr.Next()
		formulas = append(formulas, t)
	}
	return formulas
}

// CheckSat decides the conjunction of the assertion stack and the
// given assumptions. Assumptions hold for this call only. The returned
// error reports misuse; an inconclusive solve is not an error, it is
// StatusUnknown.
func (s *Session) CheckSat(assumptions ...*Term) (Status, error) {
	for _, t := range assumptions {
		if err := s.checkOwned(t); err != nil {
			return StatusUnknown, err
		}
		if !t.sort.IsBool() {
			return StatusUnknown, ErrSortMismatch
		}
	}

	if !s.checked {
		s.origin.lock()
		s.checked = true
	}
	s.model = nil

	formulas := s.Assertions()
	if s.opts.Bool(Preprocess) {
		formulas = lo.Map(formulas, func(t *Term, _ int) *Term { return s.rw.rewrite(t) })
		assumptions = lo.Map(assumptions, func(t *Term, _ int) *Term { return s.rw.rewrite(t) })
	}

	status, model := s.engine.Check(formulas, assumptions, s.opts, s.stopFunc())
	s.status = status
	if status == StatusSat && s.opts.Bool(ProduceModels) {
		s.model = model
	}
	return status, nil
}

// stopFunc adapts the attached terminator for the engine. The gate is
// read per call so a terminator configured mid-session applies to the
// next poll.
func (s *Session) stopFunc() func() bool {
	return func() bool {
		return s.gate != nil && s.gate.Terminated()
	}
}

// Value returns the value of t under the model of the last check. It
// fails with ErrModelUnavailable unless model production is on and the
// last check returned StatusSat.
func (s *Session) Value(t *Term) (*Term, error) {
	if err := s.checkOwned(t); err != nil {
		return nil, err
	}
	if s.model == nil {
		return nil, ErrModelUnavailable
	}

	if t.sort.IsArray() {
		return s.arrayValue(t), nil
	}
	return s.tm.BVValue(t.sort, s.model.Eval(t)), nil
}

// arrayValue renders the model of an array term as stores over a
// constant array, with indices in increasing order.
func (s *Session) arrayValue(t *Term) *Term {
	def, elems := s.model.evalArray(t)

	indices := make([]uint64, 0, len(elems))
	for idx := range elems {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	isort, esort := t.sort.index, t.sort.elem
	v := s.tm.ConstArray(t.sort, def)
	for _, idx := range indices {
		v = s.tm.Store(v, s.tm.BVValue(isort, idx), s.tm.BVValue(esort, elems[idx]))
	}
	return v
}

func (s *Session) checkOwned(t *Term) error {
	assert(t != nil, "krill: nil term")
	if t.tm != s.tm {
		return ErrForeignTerm
	}
	return nil
}
