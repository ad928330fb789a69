package sat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-krill/krill"
	"github.com/go-krill/krill/sat"
)

// solveValue constrains two 8-bit constants and returns the model value
// of op(x, y). Constraining the operands through equalities keeps the
// operator symbolic, so the circuit does the work rather than constant
// folding.
func solveValue(t *testing.T, engine krill.Engine, op func(tm *krill.TermManager, x, y *krill.Term) *krill.Term, a, b uint64) uint64 {
	t.Helper()

	tm := krill.NewTermManager()
	s8 := tm.BitVecSort(8)
	x, y, z := tm.Const(s8, "x"), tm.Const(s8, "y"), tm.Const(s8, "z")

	opts := krill.NewOptionSet()
	require.NoError(t, opts.Set(krill.ProduceModels, true))
	require.NoError(t, opts.Set(krill.Preprocess, false))

	sess := krill.NewSession(tm, opts, engine)
	require.NoError(t, sess.AssertFormula(tm.Eq(x, tm.BVValue(s8, a))))
	require.NoError(t, sess.AssertFormula(tm.Eq(y, tm.BVValue(s8, b))))
	require.NoError(t, sess.AssertFormula(tm.Eq(z, op(tm, x, y))))

	status, err := sess.CheckSat()
	require.NoError(t, err)
	require.Equal(t, krill.StatusSat, status)

	v, err := sess.Value(z)
	require.NoError(t, err)
	return v.Uint64()
}

func TestEngineArithmetic(t *testing.T) {
	signed := func(v uint64) int64 { return int64(int8(v)) }

	ops := []struct {
		name string
		op   func(tm *krill.TermManager, x, y *krill.Term) *krill.Term
		ref  func(a, b uint64) uint64
	}{
		{"Add", (*krill.TermManager).Add, func(a, b uint64) uint64 { return (a + b) & 0xff }},
		{"Sub", (*krill.TermManager).Sub, func(a, b uint64) uint64 { return (a - b) & 0xff }},
		{"Mul", (*krill.TermManager).Mul, func(a, b uint64) uint64 { return (a * b) & 0xff }},
		{"UDiv", (*krill.TermManager).UDiv, func(a, b uint64) uint64 {
			if b == 0 {
				return 0xff
			}
			return a / b
		}},
		{"URem", (*krill.TermManager).URem, func(a, b uint64) uint64 {
			if b == 0 {
				return a
			}
			return a % b
		}},
		{"SDiv", (*krill.TermManager).SDiv, func(a, b uint64) uint64 {
			if b == 0 {
				if signed(a) < 0 {
					return 1
				}
				return 0xff
			}
			return uint64(signed(a)/signed(b)) & 0xff
		}},
		{"SRem", (*krill.TermManager).SRem, func(a, b uint64) uint64 {
			if b == 0 {
				return a
			}
			return uint64(signed(a)%signed(b)) & 0xff
		}},
		{"And", (*krill.TermManager).And, func(a, b uint64) uint64 { return a & b }},
		{"Or", (*krill.TermManager).Or, func(a, b uint64) uint64 { return a | b }},
		{"Xor", (*krill.TermManager).Xor, func(a, b uint64) uint64 { return a ^ b }},
	}
	pairs := [][2]uint64{{0, 0}, {1, 2}, {7, 3}, {0xff, 1}, {0x80, 0xff}, {200, 0}}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			for _, p := range pairs {
				got := solveValue(t, sat.NewGini(), op.op, p[0], p[1])
				require.Equalf(t, op.ref(p[0], p[1]), got, "operands %d, %d", p[0], p[1])
			}
		})
	}
}

func TestEngineShifts(t *testing.T) {
	ops := []struct {
		name string
		op   func(tm *krill.TermManager, x, y *krill.Term) *krill.Term
		ref  func(a, b uint64) uint64
	}{
		{"Shl", (*krill.TermManager).Shl, func(a, b uint64) uint64 {
			if b >= 8 {
				return 0
			}
			return (a << b) & 0xff
		}},
		{"LShr", (*krill.TermManager).LShr, func(a, b uint64) uint64 {
			if b >= 8 {
				return 0
			}
			return a >> b
		}},
		{"AShr", (*krill.TermManager).AShr, func(a, b uint64) uint64 {
			if b >= 8 {
				b = 8 // shifting in the sign bit everywhere
			}
			return uint64(int64(int8(a))>>b) & 0xff
		}},
	}
	pairs := [][2]uint64{{0x81, 0}, {0x81, 1}, {0x81, 7}, {0x81, 9}, {0x81, 200}, {1, 3}}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			for _, p := range pairs {
				got := solveValue(t, sat.NewGini(), op.op, p[0], p[1])
				require.Equalf(t, op.ref(p[0], p[1]), got, "operands %d, %d", p[0], p[1])
			}
		})
	}
}

func TestEngineCompare(t *testing.T) {
	tm := krill.NewTermManager()
	s8 := tm.BitVecSort(8)
	x := tm.Const(s8, "x")

	// x < 0x80 unsigned and x < 0 signed pins x to [0x80, 0x100) and
	// [0x00, 0x80) at once, which no value satisfies.
	sess := krill.NewSession(tm, nil, sat.NewGini())
	require.NoError(t, sess.AssertFormula(tm.Ult(x, tm.BVValue(s8, 0x80))))
	require.NoError(t, sess.AssertFormula(tm.Slt(x, tm.BVValue(s8, 0))))

	status, err := sess.CheckSat()
	require.NoError(t, err)
	require.Equal(t, krill.StatusUnsat, status)
}

func TestEngineStructural(t *testing.T) {
	tm := krill.NewTermManager()
	s8, s16 := tm.BitVecSort(8), tm.BitVecSort(16)
	x := tm.Const(s8, "x")

	opts := krill.NewOptionSet()
	require.NoError(t, opts.Set(krill.ProduceModels, true))

	sess := krill.NewSession(tm, opts, sat.NewGini())
	require.NoError(t, sess.AssertFormula(tm.Eq(x, tm.BVValue(s8, 0x9a))))

	status, err := sess.CheckSat()
	require.NoError(t, err)
	require.Equal(t, krill.StatusSat, status)

	for _, tt := range []struct {
		name string
		term *krill.Term
		want uint64
	}{
		{"Concat", tm.Concat(x, x), 0x9a9a},
		{"Extract", tm.Extract(x, 4, 4), 0x9},
		{"ZeroExt", tm.ZeroExt(x, 16), 0x009a},
		{"SignExt", tm.SignExt(x, 16), 0xff9a},
		{"Ite", tm.Ite(tm.Ult(x, tm.BVValue(s8, 0x10)), tm.BVValue(s16, 1), tm.BVValue(s16, 2)), 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			v, err := sess.Value(tt.term)
			require.NoError(t, err)
			require.Equal(t, tt.want, v.Uint64())
		})
	}
}

func TestEngineArrays(t *testing.T) {
	for _, newEngine := range []func() krill.Engine{
		func() krill.Engine { return sat.NewGini() },
		func() krill.Engine { return sat.NewGopher() },
	} {
		tm := krill.NewTermManager()
		s8, s32 := tm.BitVecSort(8), tm.BitVecSort(32)
		as := tm.ArraySort(s8, s32)
		a := tm.Const(as, "a")
		i, j := tm.Const(s8, "i"), tm.Const(s8, "j")

		sess := krill.NewSession(tm, nil, newEngine())

		// Reads of one array at equal indices must agree, so asserting
		// different elements forces the indices apart.
		require.NoError(t, sess.AssertFormula(tm.Eq(tm.Select(a, i), tm.BVValue(s32, 1))))
		require.NoError(t, sess.AssertFormula(tm.Eq(tm.Select(a, j), tm.BVValue(s32, 2))))

		status, err := sess.CheckSat()
		require.NoError(t, err)
		require.Equal(t, krill.StatusSat, status)

		status, err = sess.CheckSat(tm.Eq(i, j))
		require.NoError(t, err)
		require.Equal(t, krill.StatusUnsat, status)
	}
}

func TestEngineStoreChain(t *testing.T) {
	tm := krill.NewTermManager()
	s8, s32 := tm.BitVecSort(8), tm.BitVecSort(32)
	as := tm.ArraySort(s8, s32)
	i := tm.Const(s8, "i")

	// Writing over a constant array and reading back at a symbolic
	// index yields either the written element or the default.
	arr := tm.Store(tm.ConstArray(as, 5), tm.BVValue(s8, 3), tm.BVValue(s32, 9))
	read := tm.Select(arr, i)

	sess := krill.NewSession(tm, nil, sat.NewGini())
	require.NoError(t, sess.AssertFormula(tm.Distinct(read, tm.BVValue(s32, 5))))
	require.NoError(t, sess.AssertFormula(tm.Distinct(read, tm.BVValue(s32, 9))))

	status, err := sess.CheckSat()
	require.NoError(t, err)
	require.Equal(t, krill.StatusUnsat, status)
}

func TestEngineStopBeforeSolve(t *testing.T) {
	for _, newEngine := range []func() krill.Engine{
		func() krill.Engine { return sat.NewGini() },
		func() krill.Engine { return sat.NewGopher() },
	} {
		tm := krill.NewTermManager()
		s8 := tm.BitVecSort(8)
		x := tm.Const(s8, "x")

		sess := krill.NewSession(tm, nil, newEngine())
		sess.ConfigureTerminator(krill.TerminatorFunc(func() bool { return true }))
		require.NoError(t, sess.AssertFormula(tm.Eq(x, tm.BVValue(s8, 1))))

		status, err := sess.CheckSat()
		require.NoError(t, err)
		require.Equal(t, krill.StatusUnknown, status)
	}
}
