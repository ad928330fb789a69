package krill

import "sort"

// rewriter normalizes formulas ahead of solving. It implements the
// preprocessing controlled by the Preprocess option: constant
// propagation, neutral and absorbing elements, and flattening plus
// operand ordering of associative-commutative chains. The cache is
// session-scoped so that re-checking a grown assertion stack rewrites
// each formula to the same term it produced before.
type rewriter struct {
	tm    *TermManager
	cache map[*Term]*Term
}

func newRewriter(tm *TermManager) *rewriter {
	return &rewriter{tm: tm, cache: make(map[*Term]*Term)}
}

// acNeutral returns the neutral element of an associative-commutative
// operator at the given width.
func acNeutral(kind Kind, width uint) uint64 {
	switch kind {
	case ADD, OR, XOR:
		return 0
	case MUL:
		return 1
	case AND:
		return bitmask(width)
	default:
		panic("unreachable")
	}
}

// rewrite returns the normal form of t.
func (r *rewriter) rewrite(t *Term) *Term {
	if u, ok := r.cache[t]; ok {
		return u
	}
	u := r.rewriteTerm(t)
	r.cache[t] = u
	return u
}

func (r *rewriter) rewriteTerm(t *Term) *Term {
	tm := r.tm
	switch t.kind {
	case VALUE, CONST, CONSTARRAY:
		return t

	case ADD, MUL, AND, OR, XOR:
		return r.rewriteAC(t)

	case NOT:
		return tm.Not(r.rewrite(t.args[0]))

	case EQ:
		// Folding of equal and constant operands happens in the
		// constructor once both sides are in normal form.
		return tm.Eq(r.rewrite(t.args[0]), r.rewrite(t.args[1]))

	case ULT, ULE:
		return r.rewriteUnsignedCmp(t)

	case SLT, SLE, SUB, UDIV, SDIV, UREM, SREM, SHL, LSHR, ASHR:
		return tm.binary(t.kind, r.rewrite(t.args[0]), r.rewrite(t.args[1]))

	case CONCAT:
		return tm.Concat(r.rewrite(t.args[0]), r.rewrite(t.args[1]))

	case EXTRACT:
		return tm.Extract(r.rewrite(t.args[0]), t.off, t.sort.width)

	case ZEXT, SEXT:
		return tm.extend(t.kind, r.rewrite(t.args[0]), t.sort.width)

	case ITE:
		return tm.Ite(r.rewrite(t.args[0]), r.rewrite(t.args[1]), r.rewrite(t.args[2]))

	case SELECT:
		return tm.Select(r.rewrite(t.args[0]), r.rewrite(t.args[1]))

	case STORE:
		return tm.Store(r.rewrite(t.args[0]), r.rewrite(t.args[1]), r.rewrite(t.args[2]))

	default:
		panic("unreachable")
	}
}

// rewriteUnsignedCmp rewrites trivially decided unsigned comparisons.
func (r *rewriter) rewriteUnsignedCmp(t *Term) *Term {
	tm := r.tm
	lhs, rhs := r.rewrite(t.args[0]), r.rewrite(t.args[1])
	mask := bitmask(lhs.sort.width)

	if t.kind == ULT {
		if rhs.kind == VALUE && rhs.val == 0 { // x < 0
			return tm.False()
		}
		if lhs.kind == VALUE && lhs.val == mask { // max < x
			return tm.False()
		}
	} else {
		if lhs.kind == VALUE && lhs.val == 0 { // 0 <= x
			return tm.True()
		}
		if rhs.kind == VALUE && rhs.val == mask { // x <= max
			return tm.True()
		}
	}
	return tm.binary(t.kind, lhs, rhs)
}

// rewriteAC flattens a chain of one associative-commutative operator,
// folds its constant operands, applies neutral and absorbing elements,
// and rebuilds the chain with operands in a canonical order. Two chains
// over the same multiset of operands normalize to the identical term,
// which is what lets reassociated expressions cancel without search.
func (r *rewriter) rewriteAC(t *Term) *Term {
	tm := r.tm
	kind, width := t.kind, t.sort.width
	neutral := acNeutral(kind, width)

	// Flatten the chain and rewrite its leaves. Rewritten leaves may
	// themselves be chains of the same operator; flatten those too.
	var ops []*Term
	var gather func(u *Term, rewritten bool)
	gather = func(u *Term, rewritten bool) {
		if u.kind == kind && u.sort == t.sort {
			gather(u.args[0], rewritten)
			gather(u.args[1], rewritten)
			return
		}
		if !rewritten {
			if v := r.rewrite(u); v != u {
				gather(v, true)
				return
			}
		}
		ops = append(ops, u)
	}
	gather(t, false)

	// Fold constants into a single literal.
	folded := neutral
	vars := ops[:0]
	for _, op := range ops {
		if op.kind == VALUE {
			folded = evalBinary(kind, width, folded, op.val)
		} else {
			vars = append(vars, op)
		}
	}

	// Absorbing constants decide the chain outright.
	switch {
	case kind == MUL && folded == 0,
		kind == AND && folded == 0,
		kind == OR && folded == bitmask(width):
		return tm.BVValue(t.sort, folded)
	}

	// Duplicate operands cancel under XOR.
	if kind == XOR {
		vars = cancelPairs(vars)
	}

	sort.Slice(vars, func(i, j int) bool { return vars[i].id < vars[j].id })

	if len(vars) == 0 {
		return tm.BVValue(t.sort, folded)
	}
	acc := vars[0]
	for _, op := range vars[1:] {
		acc = tm.binary(kind, acc, op)
	}
	if folded != neutral {
		acc = tm.binary(kind, tm.BVValue(t.sort, folded), acc)
	}
	return acc
}

// cancelPairs removes operands occurring an even number of times.
func cancelPairs(ops []*Term) []*Term {
	counts := make(map[*Term]int, len(ops))
	for _, op := range ops {
		counts[op]++
	}
	out := ops[:0]
	for _, op := range ops {
		if counts[op]%2 == 1 {
			out = append(out, op)
			counts[op] = 0 // emit odd occurrences once
		}
	}
	return out
}
