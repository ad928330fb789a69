// Package sat provides solving engines that decide bit-vector formulas
// by reduction to propositional satisfiability. The translation is a
// word-level Tseitin encoding: each bit-vector term becomes a vector of
// literals, least significant bit first, and each operator becomes a
// circuit over those literals. Array reads are eliminated by pushing
// them through store chains and constraining reads of the same base
// array pairwise.
//
// Two backends are available: NewGini, which solves incrementally and
// supports mid-solve cancellation, and NewGopher, which rebuilds the
// solver per check.
package sat

import (
	"github.com/go-krill/krill"
)

// sink receives the generated CNF. Literals use the DIMACS convention:
// variables are positive integers, negation is arithmetic negation.
type sink interface {
	fresh() int
	clause(lits ...int)
}

// aread is one read from a base array: the index it was read at and the
// literals holding the value found there.
type aread struct {
	idx []int
	val []int
}

// translator encodes terms into a sink. It is stateful so that terms
// shared across formulas, and formulas re-asserted across incremental
// checks, are encoded exactly once.
type translator struct {
	snk   sink
	truth int // literal constrained to true

	bits   map[*krill.Term][]int
	consts []*krill.Term            // bit-vector constants, in encoding order
	arrays []*krill.Term            // array constants, in encoding order
	reads  map[*krill.Term][]aread // reads per array constant
}

func newTranslator(snk sink) *translator {
	tr := &translator{
		snk:   snk,
		bits:  make(map[*krill.Term][]int),
		reads: make(map[*krill.Term][]aread),
	}
	tr.truth = snk.fresh()
	snk.clause(tr.truth)
	return tr
}

// assertTrue constrains t, a boolean term, to hold.
func (tr *translator) assertTrue(t *krill.Term) {
	tr.snk.clause(tr.literal(t))
}

// literal returns the single literal of a boolean term.
func (tr *translator) literal(t *krill.Term) int {
	return tr.bitsOf(t)[0]
}

func (tr *translator) bitsOf(t *krill.Term) []int {
	if bs, ok := tr.bits[t]; ok {
		return bs
	}
	bs := tr.translate(t)
	tr.bits[t] = bs
	return bs
}

func (tr *translator) translate(t *krill.Term) []int {
	switch t.Kind() {
	case krill.VALUE:
		return tr.constBits(t.Uint64(), int(t.Sort().Width()))

	case krill.CONST:
		bs := tr.freshVec(int(t.Sort().Width()))
		tr.consts = append(tr.consts, t)
		return bs

	case krill.NOT:
		return notVec(tr.bitsOf(t.Child(0)))

	case krill.ADD:
		sum, _ := tr.adder(tr.bitsOf(t.Child(0)), tr.bitsOf(t.Child(1)), -tr.truth)
		return sum
	case krill.SUB:
		sum, _ := tr.adder(tr.bitsOf(t.Child(0)), notVec(tr.bitsOf(t.Child(1))), tr.truth)
		return sum
	case krill.MUL:
		return tr.mulVec(tr.bitsOf(t.Child(0)), tr.bitsOf(t.Child(1)))
	case krill.UDIV:
		q, _ := tr.udivRem(tr.bitsOf(t.Child(0)), tr.bitsOf(t.Child(1)))
		return q
	case krill.UREM:
		_, r := tr.udivRem(tr.bitsOf(t.Child(0)), tr.bitsOf(t.Child(1)))
		return r
	case krill.SDIV:
		q, _ := tr.sdivRem(tr.bitsOf(t.Child(0)), tr.bitsOf(t.Child(1)))
		return q
	case krill.SREM:
		_, r := tr.sdivRem(tr.bitsOf(t.Child(0)), tr.bitsOf(t.Child(1)))
		return r

	case krill.AND, krill.OR, krill.XOR:
		a, b := tr.bitsOf(t.Child(0)), tr.bitsOf(t.Child(1))
		out := make([]int, len(a))
		for i := range a {
			switch t.Kind() {
			case krill.AND:
				out[i] = tr.and2(a[i], b[i])
			case krill.OR:
				out[i] = tr.or2(a[i], b[i])
			default:
				out[i] = tr.xor2(a[i], b[i])
			}
		}
		return out

	case krill.SHL, krill.LSHR, krill.ASHR:
		return tr.shift(t.Kind(), tr.bitsOf(t.Child(0)), tr.bitsOf(t.Child(1)))

	case krill.EQ:
		return []int{tr.eqVec(tr.bitsOf(t.Child(0)), tr.bitsOf(t.Child(1)))}
	case krill.ULT:
		return []int{tr.ultVec(tr.bitsOf(t.Child(0)), tr.bitsOf(t.Child(1)))}
	case krill.ULE:
		return []int{-tr.ultVec(tr.bitsOf(t.Child(1)), tr.bitsOf(t.Child(0)))}
	case krill.SLT:
		return []int{tr.ultVec(flipSign(tr.bitsOf(t.Child(0))), flipSign(tr.bitsOf(t.Child(1))))}
	case krill.SLE:
		return []int{-tr.ultVec(flipSign(tr.bitsOf(t.Child(1))), flipSign(tr.bitsOf(t.Child(0))))}

	case krill.CONCAT:
		msb, lsb := tr.bitsOf(t.Child(0)), tr.bitsOf(t.Child(1))
		out := make([]int, 0, len(msb)+len(lsb))
		out = append(out, lsb...)
		return append(out, msb...)

	case krill.EXTRACT:
		off, w := int(t.Offset()), int(t.Sort().Width())
		return tr.bitsOf(t.Child(0))[off : off+w]

	case krill.ZEXT, krill.SEXT:
		a := tr.bitsOf(t.Child(0))
		fill := -tr.truth
		if t.Kind() == krill.SEXT {
			fill = a[len(a)-1]
		}
		out := make([]int, int(t.Sort().Width()))
		copy(out, a)
		for i := len(a); i < len(out); i++ {
			out[i] = fill
		}
		return out

	case krill.ITE:
		sel := tr.literal(t.Child(0))
		return tr.muxVec(sel, tr.bitsOf(t.Child(1)), tr.bitsOf(t.Child(2)))

	case krill.SELECT:
		return tr.selectBits(t.Child(0), t.Child(1))

	default:
		panic("sat: cannot translate term kind " + t.Kind().String())
	}
}

// selectBits resolves a read over a store chain down to its base array.
func (tr *translator) selectBits(array, index *krill.Term) []int {
	switch array.Kind() {
	case krill.STORE:
		inner := tr.selectBits(array.Child(0), index)
		same := tr.eqVec(tr.bitsOf(index), tr.bitsOf(array.Child(1)))
		return tr.muxVec(same, tr.bitsOf(array.Child(2)), inner)

	case krill.CONSTARRAY:
		return tr.constBits(array.Uint64(), int(array.Sort().ElemSort().Width()))

	case krill.CONST:
		return tr.readBase(array, index)

	default:
		panic("sat: cannot read array kind " + array.Kind().String())
	}
}

// readBase reads a base array constant at index. Each distinct read
// gets a fresh value vector; reads at provably equal indices must agree.
func (tr *translator) readBase(base, index *krill.Term) []int {
	idx := tr.bitsOf(index)
	for _, rd := range tr.reads[base] {
		if sameVec(rd.idx, idx) {
			return rd.val
		}
	}

	val := tr.freshVec(int(base.Sort().ElemSort().Width()))
	for _, rd := range tr.reads[base] {
		same := tr.eqVec(rd.idx, idx)
		tr.snk.clause(-same, tr.eqVec(rd.val, val))
	}
	if len(tr.reads[base]) == 0 {
		tr.arrays = append(tr.arrays, base)
	}
	tr.reads[base] = append(tr.reads[base], aread{idx: idx, val: val})
	return val
}

// model maps every encoded constant back to concrete values using the
// backend's assignment for a satisfiable check.
func (tr *translator) model(value func(v int) bool) *krill.Model {
	m := krill.NewModel()
	for _, c := range tr.consts {
		m.SetConst(c, decode(tr.bits[c], value))
	}
	for _, base := range tr.arrays {
		for _, rd := range tr.reads[base] {
			m.SetArrayElem(base, decode(rd.idx, value), decode(rd.val, value))
		}
	}
	return m
}

func decode(bs []int, value func(v int) bool) uint64 {
	var v uint64
	for i, l := range bs {
		b := value(abs(l))
		if l < 0 {
			b = !b
		}
		if b {
			v |= 1 << uint(i)
		}
	}
	return v
}

func abs(l int) int {
	if l < 0 {
		return -l
	}
	return l
}

// --- gates ---

func (tr *translator) lit(b bool) int {
	if b {
		return tr.truth
	}
	return -tr.truth
}

func (tr *translator) and2(a, b int) int {
	switch {
	case a == tr.truth:
		return b
	case b == tr.truth:
		return a
	case a == -tr.truth || b == -tr.truth:
		return -tr.truth
	case a == b:
		return a
	case a == -b:
		return -tr.truth
	}
	o := tr.snk.fresh()
	tr.snk.clause(-o, a)
	tr.snk.clause(-o, b)
	tr.snk.clause(o, -a, -b)
	return o
}

func (tr *translator) or2(a, b int) int {
	return -tr.and2(-a, -b)
}

func (tr *translator) xor2(a, b int) int {
	switch {
	case a == -tr.truth:
		return b
	case b == -tr.truth:
		return a
	case a == tr.truth:
		return -b
	case b == tr.truth:
		return -a
	case a == b:
		return -tr.truth
	case a == -b:
		return tr.truth
	}
	o := tr.snk.fresh()
	tr.snk.clause(-o, a, b)
	tr.snk.clause(-o, -a, -b)
	tr.snk.clause(o, a, -b)
	tr.snk.clause(o, -a, b)
	return o
}

// mux returns sel ? a : b.
func (tr *translator) mux(sel, a, b int) int {
	switch {
	case sel == tr.truth:
		return a
	case sel == -tr.truth:
		return b
	case a == b:
		return a
	}
	o := tr.snk.fresh()
	tr.snk.clause(-sel, -a, o)
	tr.snk.clause(-sel, a, -o)
	tr.snk.clause(sel, -b, o)
	tr.snk.clause(sel, b, -o)
	return o
}

// --- vectors ---

func (tr *translator) freshVec(w int) []int {
	bs := make([]int, w)
	for i := range bs {
		bs[i] = tr.snk.fresh()
	}
	return bs
}

func (tr *translator) constBits(v uint64, w int) []int {
	bs := make([]int, w)
	for i := range bs {
		bs[i] = tr.lit(v&(1<<uint(i)) != 0)
	}
	return bs
}

func notVec(a []int) []int {
	out := make([]int, len(a))
	for i, l := range a {
		out[i] = -l
	}
	return out
}

// flipSign inverts the sign bit, turning signed order into unsigned.
func flipSign(a []int) []int {
	out := make([]int, len(a))
	copy(out, a)
	out[len(out)-1] = -out[len(out)-1]
	return out
}

func sameVec(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (tr *translator) muxVec(sel int, a, b []int) []int {
	out := make([]int, len(a))
	for i := range a {
		out[i] = tr.mux(sel, a[i], b[i])
	}
	return out
}

func (tr *translator) eqVec(a, b []int) int {
	acc := tr.truth
	for i := range a {
		acc = tr.and2(acc, -tr.xor2(a[i], b[i]))
	}
	return acc
}

// ultVec compares unsigned: a < b iff a + ^b + 1 borrows.
func (tr *translator) ultVec(a, b []int) int {
	_, cout := tr.adder(a, notVec(b), tr.truth)
	return -cout
}

// adder is a ripple-carry adder over equal-width vectors.
func (tr *translator) adder(a, b []int, cin int) (sum []int, cout int) {
	sum = make([]int, len(a))
	c := cin
	for i := range a {
		axb := tr.xor2(a[i], b[i])
		sum[i] = tr.xor2(axb, c)
		c = tr.or2(tr.and2(a[i], b[i]), tr.and2(axb, c))
	}
	return sum, c
}

func (tr *translator) negVec(a []int) []int {
	sum, _ := tr.adder(notVec(a), tr.constBits(0, len(a)), tr.truth)
	return sum
}

// mulVec is a shift-and-add multiplier truncated to the operand width.
func (tr *translator) mulVec(a, b []int) []int {
	w := len(a)
	acc := tr.constBits(0, w)
	for i := 0; i < w; i++ {
		part := make([]int, w)
		for j := 0; j < i; j++ {
			part[j] = -tr.truth
		}
		for j := i; j < w; j++ {
			part[j] = tr.and2(a[i], b[j-i])
		}
		acc, _ = tr.adder(acc, part, -tr.truth)
	}
	return acc
}

// shift is a barrel shifter. Amounts at or above the width produce the
// fill bit in every position.
func (tr *translator) shift(kind krill.Kind, a, amt []int) []int {
	w := len(a)
	fill := -tr.truth
	if kind == krill.ASHR {
		fill = a[w-1]
	}

	cur := make([]int, w)
	copy(cur, a)
	k := 0
	for ; 1<<uint(k) < w; k++ {
		d := 1 << uint(k)
		sh := make([]int, w)
		for i := 0; i < w; i++ {
			var src int
			if kind == krill.SHL {
				if i >= d {
					src = cur[i-d]
				} else {
					src = -tr.truth
				}
			} else {
				if i+d < w {
					src = cur[i+d]
				} else {
					src = fill
				}
			}
			sh[i] = src
		}
		for i := 0; i < w; i++ {
			cur[i] = tr.mux(amt[k], sh[i], cur[i])
		}
	}

	over := -tr.truth
	for i := k; i < len(amt); i++ {
		over = tr.or2(over, amt[i])
	}
	out := make([]int, w)
	for i := 0; i < w; i++ {
		out[i] = tr.mux(over, fill, cur[i])
	}
	return out
}

// udivRem is a restoring divider. The remainder is tracked one bit
// wider than the operands so the shift-in never overflows. Division by
// zero yields the all-ones quotient and the dividend as remainder.
func (tr *translator) udivRem(a, b []int) (q, r []int) {
	w := len(a)
	bx := make([]int, w+1)
	copy(bx, b)
	bx[w] = -tr.truth

	rem := tr.constBits(0, w+1)
	q = make([]int, w)
	for i := w - 1; i >= 0; i-- {
		next := make([]int, w+1)
		next[0] = a[i]
		copy(next[1:], rem[:w])
		rem = next

		ge := -tr.ultVec(rem, bx)
		diff, _ := tr.adder(rem, notVec(bx), tr.truth)
		rem = tr.muxVec(ge, diff, rem)
		q[i] = ge
	}
	r = rem[:w]

	zero := tr.eqVec(b, tr.constBits(0, w))
	ones := tr.constBits(bitmask(w), w)
	q = tr.muxVec(zero, ones, q)
	r = tr.muxVec(zero, a, r)
	return q, r
}

// sdivRem divides by magnitude and restores the signs afterwards. The
// quotient is negative when operand signs differ; the remainder takes
// the dividend's sign.
func (tr *translator) sdivRem(a, b []int) (q, r []int) {
	w := len(a)
	sa, sb := a[w-1], b[w-1]
	absA := tr.muxVec(sa, tr.negVec(a), a)
	absB := tr.muxVec(sb, tr.negVec(b), b)

	uq, ur := tr.udivRem(absA, absB)
	q = tr.muxVec(tr.xor2(sa, sb), tr.negVec(uq), uq)
	r = tr.muxVec(sa, tr.negVec(ur), ur)
	return q, r
}

func bitmask(w int) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (1 << uint(w)) - 1
}
