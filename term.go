package krill

import (
	"fmt"
	"sync"
)

// Kind represents a term kind.
type Kind int

// Term kinds.
const (
	VALUE Kind = iota + 1
	CONST
	CONSTARRAY

	NOT

	arithmetic_op_begin
	ADD
	SUB
	MUL
	UDIV
	SDIV
	UREM
	SREM
	AND
	OR
	XOR
	SHL
	LSHR
	ASHR
	arithmetic_op_end

	compare_op_begin
	EQ
	ULT
	ULE
	SLT
	SLE
	compare_op_end

	CONCAT
	EXTRACT
	ZEXT
	SEXT
	ITE
	SELECT
	STORE
)

var kindNames = map[Kind]string{
	VALUE:      "const",
	CONST:      "var",
	CONSTARRAY: "const-array",
	NOT:        "not",
	ADD:        "add",
	SUB:        "sub",
	MUL:        "mul",
	UDIV:       "udiv",
	SDIV:       "sdiv",
	UREM:       "urem",
	SREM:       "srem",
	AND:        "and",
	OR:         "or",
	XOR:        "xor",
	SHL:        "shl",
	LSHR:       "lshr",
	ASHR:       "ashr",
	EQ:         "eq",
	ULT:        "ult",
	ULE:        "ule",
	SLT:        "slt",
	SLE:        "sle",
	CONCAT:     "concat",
	EXTRACT:    "extract",
	ZEXT:       "zext",
	SEXT:       "sext",
	ITE:        "ite",
	SELECT:     "select",
	STORE:      "store",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind<%d>", int(k))
}

// IsArithmetic returns true if k is a binary arithmetic operator.
func (k Kind) IsArithmetic() bool {
	return k > arithmetic_op_begin && k < arithmetic_op_end
}

// IsCompare returns true if k is a binary comparison operator.
func (k Kind) IsCompare() bool {
	return k > compare_op_begin && k < compare_op_end
}

type sortKind int

const (
	sortBitVec sortKind = iota
	sortArray
)

// Sort represents a term sort. Sorts are hash-consed by their
// TermManager: structurally equal sorts from one manager are pointer
// equal. Booleans are bit-vectors of width one.
type Sort struct {
	tm    *TermManager
	id    int
	kind  sortKind
	width uint
	index *Sort
	elem  *Sort
}

// IsBitVec returns true if the sort is a bit-vector sort.
func (s *Sort) IsBitVec() bool { return s.kind == sortBitVec }

// IsBool returns true if the sort is a bit-vector sort of width one.
func (s *Sort) IsBool() bool { return s.kind == sortBitVec && s.width == WidthBool }

// IsArray returns true if the sort is an array sort.
func (s *Sort) IsArray() bool { return s.kind == sortArray }

// Width returns the width of a bit-vector sort.
func (s *Sort) Width() uint {
	assert(s.kind == sortBitVec, "width of non-bit-vector sort")
	return s.width
}

// IndexSort returns the index sort of an array sort.
func (s *Sort) IndexSort() *Sort {
	assert(s.kind == sortArray, "index sort of non-array sort")
	return s.index
}

// ElemSort returns the element sort of an array sort.
func (s *Sort) ElemSort() *Sort {
	assert(s.kind == sortArray, "element sort of non-array sort")
	return s.elem
}

// String returns the SMT-LIB representation of the sort.
func (s *Sort) String() string {
	if s.kind == sortArray {
		return fmt.Sprintf("(Array %s %s)", s.index, s.elem)
	}
	return fmt.Sprintf("(_ BitVec %d)", s.width)
}

// Term represents an immutable, hash-consed term. Terms are created
// through a TermManager and are only meaningful within sessions bound
// to the same manager.
type Term struct {
	tm   *TermManager
	id   uint64
	kind Kind
	sort *Sort
	args []*Term
	val  uint64 // VALUE literal, CONSTARRAY default element
	name string // CONST symbol
	off  uint   // EXTRACT offset
}

// ID returns the manager-unique identifier of the term.
func (t *Term) ID() uint64 { return t.id }

// Kind returns the term kind.
func (t *Term) Kind() Kind { return t.kind }

// Sort returns the term sort.
func (t *Term) Sort() *Sort { return t.sort }

// NumChildren returns the number of operand terms.
func (t *Term) NumChildren() int { return len(t.args) }

// Child returns the i-th operand term.
func (t *Term) Child(i int) *Term { return t.args[i] }

// Uint64 returns the literal of a VALUE term, or the default element of
// a CONSTARRAY term.
func (t *Term) Uint64() uint64 {
	assert(t.kind == VALUE || t.kind == CONSTARRAY, "uint64 of non-value term: %s", t.kind)
	return t.val
}

// Symbol returns the symbol of a CONST term.
func (t *Term) Symbol() string {
	assert(t.kind == CONST, "symbol of non-constant term: %s", t.kind)
	return t.name
}

// Offset returns the bit offset of an EXTRACT term.
func (t *Term) Offset() uint {
	assert(t.kind == EXTRACT, "offset of non-extract term: %s", t.kind)
	return t.off
}

// IsValue returns true if the term is a bit-vector literal.
func (t *Term) IsValue() bool { return t.kind == VALUE }

// IsTrue returns true if this is the boolean true term.
func (t *Term) IsTrue() bool { return t.kind == VALUE && t.sort.IsBool() && t.val != 0 }

// IsFalse returns true if this is the boolean false term.
func (t *Term) IsFalse() bool { return t.kind == VALUE && t.sort.IsBool() && t.val == 0 }

// String returns the string representation of the term.
func (t *Term) String() string {
	switch t.kind {
	case VALUE:
		return fmt.Sprintf("(const %d %d)", t.val, t.sort.width)
	case CONST:
		return t.name
	case CONSTARRAY:
		return fmt.Sprintf("(const-array %s %d)", t.sort, t.val)
	case EXTRACT:
		return fmt.Sprintf("(extract %s %d %d)", t.args[0], t.off, t.sort.width)
	case ZEXT, SEXT:
		return fmt.Sprintf("(%s %s %d)", t.kind, t.args[0], t.sort.width)
	default:
		s := "(" + t.kind.String()
		for _, arg := range t.args {
			s += " " + arg.String()
		}
		return s + ")"
	}
}

type sortKey struct {
	kind  sortKind
	width uint
	index int
	elem  int
}

type termKey struct {
	kind Kind
	sort int
	a0   uint64
	a1   uint64
	a2   uint64
	val  uint64
	off  uint
}

// TermManager constructs and uniquely represents sorts and terms. It
// owns term identity for its whole lifetime: sessions hold non-owning
// references to it, so terms survive any number of session resets.
//
// A TermManager is safe for concurrent term construction from multiple
// goroutines.
type TermManager struct {
	mu      sync.Mutex
	sortSeq int
	termSeq uint64
	nameSeq int
	sorts   map[sortKey]*Sort
	terms   map[termKey]*Term
}

// NewTermManager returns a new instance of TermManager.
func NewTermManager() *TermManager {
	return &TermManager{
		sorts: make(map[sortKey]*Sort),
		terms: make(map[termKey]*Term),
	}
}

// internSort returns the canonical sort for key, constructing it with
// build on first use.
func (tm *TermManager) internSort(key sortKey, build func(id int) *Sort) *Sort {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if s, ok := tm.sorts[key]; ok {
		return s
	}
	tm.sortSeq++
	s := build(tm.sortSeq)
	tm.sorts[key] = s
	return s
}

// intern returns the canonical term for key, constructing it with build
// on first use.
func (tm *TermManager) intern(key termKey, build func(id uint64) *Term) *Term {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if t, ok := tm.terms[key]; ok {
		return t
	}
	tm.termSeq++
	t := build(tm.termSeq)
	tm.terms[key] = t
	return t
}

// BoolSort returns the boolean sort, a bit-vector sort of width one.
func (tm *TermManager) BoolSort() *Sort { return tm.BitVecSort(WidthBool) }

// BitVecSort returns the bit-vector sort of the given width.
// Widths are limited to 1 through 64 bits.
func (tm *TermManager) BitVecSort(width uint) *Sort {
	assert(width >= 1 && width <= Width64, "invalid bit-vector width: %d", width)
	return tm.internSort(sortKey{kind: sortBitVec, width: width}, func(id int) *Sort {
		return &Sort{tm: tm, id: id, kind: sortBitVec, width: width}
	})
}

// ArraySort returns the array sort with the given bit-vector index and
// element sorts.
func (tm *TermManager) ArraySort(index, elem *Sort) *Sort {
	tm.checkSort(index)
	tm.checkSort(elem)
	assert(index.IsBitVec(), "array index sort must be a bit-vector")
	assert(elem.IsBitVec(), "array element sort must be a bit-vector")
	return tm.internSort(sortKey{kind: sortArray, index: index.id, elem: elem.id}, func(id int) *Sort {
		return &Sort{tm: tm, id: id, kind: sortArray, index: index, elem: elem}
	})
}

// BVValue returns the bit-vector literal of the given sort. The value
// is truncated to the sort width.
func (tm *TermManager) BVValue(sort *Sort, value uint64) *Term {
	tm.checkSort(sort)
	assert(sort.IsBitVec(), "value of non-bit-vector sort")
	value &= bitmask(sort.width)
	key := termKey{kind: VALUE, sort: sort.id, val: value}
	return tm.intern(key, func(id uint64) *Term {
		return &Term{tm: tm, id: id, kind: VALUE, sort: sort, val: value}
	})
}

// True returns the boolean true term.
func (tm *TermManager) True() *Term { return tm.BVValue(tm.BoolSort(), 1) }

// False returns the boolean false term.
func (tm *TermManager) False() *Term { return tm.BVValue(tm.BoolSort(), 0) }

// Bool returns the boolean term for value.
func (tm *TermManager) Bool(value bool) *Term {
	if value {
		return tm.True()
	}
	return tm.False()
}

// Const returns a fresh uninterpreted constant of the given sort.
// Every call creates a distinct term, even under the same symbol.
// An empty symbol is replaced by a generated one.
func (tm *TermManager) Const(sort *Sort, symbol string) *Term {
	tm.checkSort(sort)
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if symbol == "" {
		tm.nameSeq++
		symbol = fmt.Sprintf("k!%d", tm.nameSeq)
	}
	tm.termSeq++
	return &Term{tm: tm, id: tm.termSeq, kind: CONST, sort: sort, name: symbol}
}

// ConstArray returns the array of the given sort holding elem at every
// index.
func (tm *TermManager) ConstArray(sort *Sort, elem uint64) *Term {
	tm.checkSort(sort)
	assert(sort.IsArray(), "const-array of non-array sort")
	elem &= bitmask(sort.elem.width)
	key := termKey{kind: CONSTARRAY, sort: sort.id, val: elem}
	return tm.intern(key, func(id uint64) *Term {
		return &Term{tm: tm, id: id, kind: CONSTARRAY, sort: sort, val: elem}
	})
}

// Not returns the bitwise complement of x; on booleans this is logical
// negation.
func (tm *TermManager) Not(x *Term) *Term {
	tm.checkTerm(x)
	assert(x.sort.IsBitVec(), "not: non-bit-vector operand")
	if x.kind == VALUE {
		return tm.BVValue(x.sort, ^x.val)
	}
	if x.kind == NOT {
		return x.args[0]
	}
	key := termKey{kind: NOT, sort: x.sort.id, a0: x.id}
	return tm.intern(key, func(id uint64) *Term {
		return &Term{tm: tm, id: id, kind: NOT, sort: x.sort, args: []*Term{x}}
	})
}

// binary constructs a binary term, folding constant operands.
func (tm *TermManager) binary(kind Kind, lhs, rhs *Term) *Term {
	tm.checkTerm(lhs)
	tm.checkTerm(rhs)
	assert(lhs.sort.IsBitVec() && lhs.sort == rhs.sort,
		"%s: operand sort mismatch: %s != %s", kind, lhs.sort, rhs.sort)

	sort := lhs.sort
	if kind.IsCompare() {
		sort = tm.BoolSort()
	}

	// Identical operands of a comparison fold without a model.
	if kind == EQ && lhs == rhs {
		return tm.True()
	}
	if lhs.kind == VALUE && rhs.kind == VALUE {
		return tm.BVValue(sort, evalBinary(kind, lhs.sort.width, lhs.val, rhs.val))
	}

	key := termKey{kind: kind, sort: sort.id, a0: lhs.id, a1: rhs.id}
	return tm.intern(key, func(id uint64) *Term {
		return &Term{tm: tm, id: id, kind: kind, sort: sort, args: []*Term{lhs, rhs}}
	})
}

// Add returns the sum of lhs and rhs.
func (tm *TermManager) Add(lhs, rhs *Term) *Term { return tm.binary(ADD, lhs, rhs) }

// Sub returns the difference of lhs and rhs.
func (tm *TermManager) Sub(lhs, rhs *Term) *Term { return tm.binary(SUB, lhs, rhs) }

// Mul returns the product of lhs and rhs.
func (tm *TermManager) Mul(lhs, rhs *Term) *Term { return tm.binary(MUL, lhs, rhs) }

// UDiv returns the unsigned quotient of lhs and rhs. Division by zero
// yields the all-ones vector.
func (tm *TermManager) UDiv(lhs, rhs *Term) *Term { return tm.binary(UDIV, lhs, rhs) }

// SDiv returns the signed quotient of lhs and rhs.
func (tm *TermManager) SDiv(lhs, rhs *Term) *Term { return tm.binary(SDIV, lhs, rhs) }

// URem returns the unsigned remainder of lhs divided by rhs. Division
// by zero yields lhs.
func (tm *TermManager) URem(lhs, rhs *Term) *Term { return tm.binary(UREM, lhs, rhs) }

// SRem returns the signed remainder of lhs divided by rhs. The sign
// follows the dividend.
func (tm *TermManager) SRem(lhs, rhs *Term) *Term { return tm.binary(SREM, lhs, rhs) }

// And returns the bitwise AND of lhs and rhs.
func (tm *TermManager) And(lhs, rhs *Term) *Term { return tm.binary(AND, lhs, rhs) }

// Or returns the bitwise OR of lhs and rhs.
func (tm *TermManager) Or(lhs, rhs *Term) *Term { return tm.binary(OR, lhs, rhs) }

// Xor returns the bitwise XOR of lhs and rhs.
func (tm *TermManager) Xor(lhs, rhs *Term) *Term { return tm.binary(XOR, lhs, rhs) }

// Shl returns lhs shifted left by rhs bits. Shift amounts at or beyond
// the width yield zero.
func (tm *TermManager) Shl(lhs, rhs *Term) *Term { return tm.binary(SHL, lhs, rhs) }

// LShr returns lhs logically shifted right by rhs bits.
func (tm *TermManager) LShr(lhs, rhs *Term) *Term { return tm.binary(LSHR, lhs, rhs) }

// AShr returns lhs arithmetically shifted right by rhs bits.
func (tm *TermManager) AShr(lhs, rhs *Term) *Term { return tm.binary(ASHR, lhs, rhs) }

// Eq returns the equality of lhs and rhs.
func (tm *TermManager) Eq(lhs, rhs *Term) *Term { return tm.binary(EQ, lhs, rhs) }

// Distinct returns the disequality of lhs and rhs.
func (tm *TermManager) Distinct(lhs, rhs *Term) *Term { return tm.Not(tm.Eq(lhs, rhs)) }

// Ult returns the unsigned less-than comparison of lhs and rhs.
func (tm *TermManager) Ult(lhs, rhs *Term) *Term { return tm.binary(ULT, lhs, rhs) }

// Ule returns the unsigned less-than-or-equal comparison of lhs and rhs.
func (tm *TermManager) Ule(lhs, rhs *Term) *Term { return tm.binary(ULE, lhs, rhs) }

// Ugt returns the unsigned greater-than comparison of lhs and rhs.
func (tm *TermManager) Ugt(lhs, rhs *Term) *Term { return tm.binary(ULT, rhs, lhs) } // reverse

// Uge returns the unsigned greater-than-or-equal comparison of lhs and rhs.
func (tm *TermManager) Uge(lhs, rhs *Term) *Term { return tm.binary(ULE, rhs, lhs) } // reverse

// Slt returns the signed less-than comparison of lhs and rhs.
func (tm *TermManager) Slt(lhs, rhs *Term) *Term { return tm.binary(SLT, lhs, rhs) }

// Sle returns the signed less-than-or-equal comparison of lhs and rhs.
func (tm *TermManager) Sle(lhs, rhs *Term) *Term { return tm.binary(SLE, lhs, rhs) }

// Sgt returns the signed greater-than comparison of lhs and rhs.
func (tm *TermManager) Sgt(lhs, rhs *Term) *Term { return tm.binary(SLT, rhs, lhs) } // reverse

// Sge returns the signed greater-than-or-equal comparison of lhs and rhs.
func (tm *TermManager) Sge(lhs, rhs *Term) *Term { return tm.binary(SLE, rhs, lhs) } // reverse

// Implies returns the boolean implication of lhs and rhs.
func (tm *TermManager) Implies(lhs, rhs *Term) *Term {
	assert(lhs.sort.IsBool() && rhs.sort.IsBool(), "implies: non-boolean operand")
	return tm.Or(tm.Not(lhs), rhs)
}

// Concat returns the concatenation of msb and lsb.
func (tm *TermManager) Concat(msb, lsb *Term) *Term {
	tm.checkTerm(msb)
	tm.checkTerm(lsb)
	assert(msb.sort.IsBitVec() && lsb.sort.IsBitVec(), "concat: non-bit-vector operand")
	width := msb.sort.width + lsb.sort.width
	assert(width <= Width64, "concat: width out of range: %d", width)

	sort := tm.BitVecSort(width)
	if msb.kind == VALUE && lsb.kind == VALUE {
		return tm.BVValue(sort, msb.val<<lsb.sort.width|lsb.val)
	}
	key := termKey{kind: CONCAT, sort: sort.id, a0: msb.id, a1: lsb.id}
	return tm.intern(key, func(id uint64) *Term {
		return &Term{tm: tm, id: id, kind: CONCAT, sort: sort, args: []*Term{msb, lsb}}
	})
}

// Extract returns bits [offset, offset+width) of x.
func (tm *TermManager) Extract(x *Term, offset, width uint) *Term {
	tm.checkTerm(x)
	assert(x.sort.IsBitVec(), "extract: non-bit-vector operand")
	assert(width > 0, "extract: width cannot be zero")
	assert(offset+width <= x.sort.width, "extract out of bounds: %d+%d > %d", offset, width, x.sort.width)

	if width == x.sort.width {
		return x
	}
	sort := tm.BitVecSort(width)
	if x.kind == VALUE {
		return tm.BVValue(sort, x.val>>offset)
	}
	key := termKey{kind: EXTRACT, sort: sort.id, a0: x.id, off: offset}
	return tm.intern(key, func(id uint64) *Term {
		return &Term{tm: tm, id: id, kind: EXTRACT, sort: sort, args: []*Term{x}, off: offset}
	})
}

// ZeroExt returns x zero-extended to the given width.
func (tm *TermManager) ZeroExt(x *Term, width uint) *Term { return tm.extend(ZEXT, x, width) }

// SignExt returns x sign-extended to the given width.
func (tm *TermManager) SignExt(x *Term, width uint) *Term { return tm.extend(SEXT, x, width) }

func (tm *TermManager) extend(kind Kind, x *Term, width uint) *Term {
	tm.checkTerm(x)
	assert(x.sort.IsBitVec(), "%s: non-bit-vector operand", kind)
	assert(width >= x.sort.width && width <= Width64, "%s: invalid width: %d", kind, width)

	if width == x.sort.width {
		return x
	}
	sort := tm.BitVecSort(width)
	if x.kind == VALUE {
		if kind == SEXT {
			return tm.BVValue(sort, uint64(toSigned(x.val, x.sort.width)))
		}
		return tm.BVValue(sort, x.val)
	}
	key := termKey{kind: kind, sort: sort.id, a0: x.id}
	return tm.intern(key, func(id uint64) *Term {
		return &Term{tm: tm, id: id, kind: kind, sort: sort, args: []*Term{x}}
	})
}

// Ite returns the if-then-else of a boolean condition over two
// bit-vector branches of equal sort.
func (tm *TermManager) Ite(cond, then, els *Term) *Term {
	tm.checkTerm(cond)
	tm.checkTerm(then)
	tm.checkTerm(els)
	assert(cond.sort.IsBool(), "ite: non-boolean condition")
	assert(then.sort.IsBitVec() && then.sort == els.sort,
		"ite: branch sort mismatch: %s != %s", then.sort, els.sort)

	if cond.kind == VALUE {
		if cond.val != 0 {
			return then
		}
		return els
	}
	if then == els {
		return then
	}
	key := termKey{kind: ITE, sort: then.sort.id, a0: cond.id, a1: then.id, a2: els.id}
	return tm.intern(key, func(id uint64) *Term {
		return &Term{tm: tm, id: id, kind: ITE, sort: then.sort, args: []*Term{cond, then, els}}
	})
}

// Select returns the element of array at index.
//
// Walks the store chain for a concrete resolution: a select with a
// literal index over stores with literal indices reads through to the
// stored value or the underlying array.
func (tm *TermManager) Select(array, index *Term) *Term {
	tm.checkTerm(array)
	tm.checkTerm(index)
	assert(array.sort.IsArray(), "select: non-array operand")
	assert(index.sort == array.sort.index, "select: index sort mismatch: %s != %s", index.sort, array.sort.index)

	if index.kind == VALUE {
		for array.kind == STORE {
			si := array.args[1]
			if si.kind != VALUE {
				break
			}
			if si.val == index.val {
				return array.args[2]
			}
			array = array.args[0] // read past a store at a different index
		}
		if array.kind == CONSTARRAY {
			return tm.BVValue(array.sort.elem, array.val)
		}
	}
	sort := array.sort.elem
	key := termKey{kind: SELECT, sort: sort.id, a0: array.id, a1: index.id}
	return tm.intern(key, func(id uint64) *Term {
		return &Term{tm: tm, id: id, kind: SELECT, sort: sort, args: []*Term{array, index}}
	})
}

// Store returns array with the element at index replaced by value.
func (tm *TermManager) Store(array, index, value *Term) *Term {
	tm.checkTerm(array)
	tm.checkTerm(index)
	tm.checkTerm(value)
	assert(array.sort.IsArray(), "store: non-array operand")
	assert(index.sort == array.sort.index, "store: index sort mismatch: %s != %s", index.sort, array.sort.index)
	assert(value.sort == array.sort.elem, "store: value sort mismatch: %s != %s", value.sort, array.sort.elem)

	key := termKey{kind: STORE, sort: array.sort.id, a0: array.id, a1: index.id, a2: value.id}
	return tm.intern(key, func(id uint64) *Term {
		return &Term{tm: tm, id: id, kind: STORE, sort: array.sort, args: []*Term{array, index, value}}
	})
}

// checkTerm panics if t was built by a different manager. Session-level
// boundaries report ErrForeignTerm instead; inside the factory a mixed
// term is a hard programmer error.
func (tm *TermManager) checkTerm(t *Term) {
	assert(t != nil, "nil term")
	assert(t.tm == tm, "term %s built by a different term manager", t)
}

func (tm *TermManager) checkSort(s *Sort) {
	assert(s != nil, "nil sort")
	assert(s.tm == tm, "sort %s built by a different term manager", s)
}

// bitmask returns a mask of the width's lower bits.
func bitmask(width uint) uint64 {
	if width >= Width64 {
		return ^uint64(0)
	}
	return (1 << width) - 1
}

// toSigned reinterprets the low width bits of v as a signed integer.
func toSigned(v uint64, width uint) int64 {
	return int64(v<<(Width64-width)) >> (Width64 - width)
}

func boolVal(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// evalBinary computes a binary operation over two literals of the given
// width. This is the single definition of operator semantics: constant
// folding, model evaluation, and the engine test oracle all go through
// it.
func evalBinary(kind Kind, width uint, a, b uint64) uint64 {
	mask := bitmask(width)
	switch kind {
	case ADD:
		return (a + b) & mask
	case SUB:
		return (a - b) & mask
	case MUL:
		return (a * b) & mask
	case UDIV:
		if b == 0 {
			return mask
		}
		return a / b
	case UREM:
		if b == 0 {
			return a
		}
		return a % b
	case SDIV, SREM:
		return evalSigned(kind, width, a, b)
	case AND:
		return a & b
	case OR:
		return a | b
	case XOR:
		return a ^ b
	case SHL:
		if b >= uint64(width) {
			return 0
		}
		return (a << b) & mask
	case LSHR:
		if b >= uint64(width) {
			return 0
		}
		return a >> b
	case ASHR:
		sign := a >> (width - 1) & 1
		if b >= uint64(width) {
			if sign != 0 {
				return mask
			}
			return 0
		}
		return uint64(toSigned(a, width)>>b) & mask
	case EQ:
		return boolVal(a == b)
	case ULT:
		return boolVal(a < b)
	case ULE:
		return boolVal(a <= b)
	case SLT:
		return boolVal(toSigned(a, width) < toSigned(b, width))
	case SLE:
		return boolVal(toSigned(a, width) <= toSigned(b, width))
	default:
		panic("unreachable")
	}
}

// evalSigned computes signed division or remainder by reduction to the
// unsigned operations over magnitudes, matching the engine's encoding.
func evalSigned(kind Kind, width uint, a, b uint64) uint64 {
	mask := bitmask(width)
	sa := a>>(width-1)&1 != 0
	sb := b>>(width-1)&1 != 0
	absA, absB := a, b
	if sa {
		absA = (-a) & mask
	}
	if sb {
		absB = (-b) & mask
	}
	if kind == SDIV {
		q := evalBinary(UDIV, width, absA, absB)
		if sa != sb {
			return (-q) & mask
		}
		return q
	}
	r := evalBinary(UREM, width, absA, absB)
	if sa {
		return (-r) & mask
	}
	return r
}
