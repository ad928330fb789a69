package krill

// Model is a satisfying assignment produced by an engine. It maps
// uninterpreted bit-vector constants to literals and uninterpreted
// array constants to the element values the engine committed to.
// Constants the engine never saw evaluate to zero.
type Model struct {
	values map[*Term]uint64
	arrays map[*Term]map[uint64]uint64
}

// NewModel returns a new empty model.
func NewModel() *Model {
	return &Model{
		values: make(map[*Term]uint64),
		arrays: make(map[*Term]map[uint64]uint64),
	}
}

// SetConst assigns value to the uninterpreted constant t.
func (m *Model) SetConst(t *Term, value uint64) {
	assert(t.kind == CONST && t.sort.IsBitVec(), "model assignment to non-constant term: %s", t)
	m.values[t] = value & bitmask(t.sort.width)
}

// SetArrayElem assigns value to the element of the uninterpreted array
// constant t at index.
func (m *Model) SetArrayElem(t *Term, index, value uint64) {
	assert(t.kind == CONST && t.sort.IsArray(), "model array assignment to non-array term: %s", t)
	elems, ok := m.arrays[t]
	if !ok {
		elems = make(map[uint64]uint64)
		m.arrays[t] = elems
	}
	elems[index] = value & bitmask(t.sort.elem.width)
}

// Const returns the assignment of the uninterpreted constant t and
// whether the model constrains it.
func (m *Model) Const(t *Term) (uint64, bool) {
	v, ok := m.values[t]
	return v, ok
}

// Eval evaluates a bit-vector term under the model. Unconstrained
// constants evaluate to zero.
func (m *Model) Eval(t *Term) uint64 {
	assert(t.sort.IsBitVec(), "eval of non-bit-vector term: %s", t)
	switch t.kind {
	case VALUE:
		return t.val
	case CONST:
		return m.values[t]
	case NOT:
		return ^m.Eval(t.args[0]) & bitmask(t.sort.width)
	case CONCAT:
		return m.Eval(t.args[0])<<t.args[1].sort.width | m.Eval(t.args[1])
	case EXTRACT:
		return m.Eval(t.args[0]) >> t.off & bitmask(t.sort.width)
	case ZEXT:
		return m.Eval(t.args[0])
	case SEXT:
		return uint64(toSigned(m.Eval(t.args[0]), t.args[0].sort.width)) & bitmask(t.sort.width)
	case ITE:
		if m.Eval(t.args[0]) != 0 {
			return m.Eval(t.args[1])
		}
		return m.Eval(t.args[2])
	case SELECT:
		def, elems := m.evalArray(t.args[0])
		if v, ok := elems[m.Eval(t.args[1])]; ok {
			return v
		}
		return def
	default:
		assert(t.kind.IsArithmetic() || t.kind.IsCompare(), "eval: unexpected kind: %s", t.kind)
		return evalBinary(t.kind, t.args[0].sort.width, m.Eval(t.args[0]), m.Eval(t.args[1]))
	}
}

// evalArray evaluates an array term to a default element value plus
// explicit per-index elements.
func (m *Model) evalArray(t *Term) (def uint64, elems map[uint64]uint64) {
	switch t.kind {
	case CONSTARRAY:
		return t.val, nil
	case CONST:
		return 0, m.arrays[t]
	case STORE:
		def, base := m.evalArray(t.args[0])
		elems = make(map[uint64]uint64, len(base)+1)
		for i, v := range base {
			elems[i] = v
		}
		elems[m.Eval(t.args[1])] = m.Eval(t.args[2])
		return def, elems
	default:
		panic("unreachable")
	}
}
