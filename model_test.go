package krill_test

import (
	"testing"

	"github.com/go-krill/krill"
)

func TestModelEval(t *testing.T) {
	tm := krill.NewTermManager()
	s8 := tm.BitVecSort(8)
	x, y := tm.Const(s8, "x"), tm.Const(s8, "y")

	m := krill.NewModel()
	m.SetConst(x, 12)
	m.SetConst(y, 5)

	for _, tt := range []struct {
		name string
		term *krill.Term
		want uint64
	}{
		{"Const", x, 12},
		{"Add", tm.Add(x, y), 17},
		{"Nested", tm.Mul(tm.Sub(x, y), y), 35},
		{"Compare", tm.Ult(y, x), 1},
		{"Ite", tm.Ite(tm.Ult(x, y), x, y), 5},
		{"Unconstrained", tm.Const(s8, "w"), 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if v := m.Eval(tt.term); v != tt.want {
				t.Fatalf("unexpected value: %d, want %d", v, tt.want)
			}
		})
	}
}

func TestModelArrays(t *testing.T) {
	tm := krill.NewTermManager()
	s8, s32 := tm.BitVecSort(8), tm.BitVecSort(32)
	a := tm.Const(tm.ArraySort(s8, s32), "a")
	i := tm.Const(s8, "i")

	m := krill.NewModel()
	m.SetConst(i, 3)
	m.SetArrayElem(a, 3, 77)

	if v := m.Eval(tm.Select(a, i)); v != 77 {
		t.Fatalf("unexpected element: %d", v)
	}
	if v := m.Eval(tm.Select(a, tm.BVValue(s8, 9))); v != 0 {
		t.Fatalf("unexpected element: %d", v)
	}
	if v := m.Eval(tm.Select(tm.Store(a, tm.BVValue(s8, 9), tm.BVValue(s32, 5)), i)); v != 77 {
		t.Fatalf("unexpected element: %d", v)
	}
}
