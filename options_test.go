package krill_test

import (
	"errors"
	"testing"
	"time"

	"github.com/go-krill/krill"
)

func TestOptionSet(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		opts := krill.NewOptionSet()
		if v, err := opts.Get(krill.ProduceModels); err != nil || v != false {
			t.Fatalf("unexpected default: %v, %v", v, err)
		}
		if v, err := opts.Get(krill.Preprocess); err != nil || v != true {
			t.Fatalf("unexpected default: %v, %v", v, err)
		}
		if v, err := opts.Get(krill.Verbosity); err != nil || v != uint(0) {
			t.Fatalf("unexpected default: %v, %v", v, err)
		}
	})

	t.Run("SetGet", func(t *testing.T) {
		opts := krill.NewOptionSet()
		if err := opts.Set(krill.ProduceModels, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !opts.Bool(krill.ProduceModels) {
			t.Fatalf("expected option to hold")
		}
		if err := opts.Set(krill.Verbosity, uint(2)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v := opts.Uint(krill.Verbosity); v != 2 {
			t.Fatalf("unexpected verbosity: %d", v)
		}
	})

	t.Run("ErrInvalidOption", func(t *testing.T) {
		opts := krill.NewOptionSet()
		if err := opts.Set("no-such-option", true); !errors.Is(err, krill.ErrInvalidOption) {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := opts.Get("no-such-option"); !errors.Is(err, krill.ErrInvalidOption) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("ErrTypeMismatch", func(t *testing.T) {
		opts := krill.NewOptionSet()
		if err := opts.Set(krill.ProduceModels, 1); !errors.Is(err, krill.ErrTypeMismatch) {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := opts.Set(krill.Verbosity, true); !errors.Is(err, krill.ErrTypeMismatch) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestTerminator(t *testing.T) {
	t.Run("Func", func(t *testing.T) {
		fired := false
		gate := krill.TerminatorFunc(func() bool { return fired })
		if gate.Terminated() {
			t.Fatalf("expected gate to be quiet")
		}
		fired = true
		if !gate.Terminated() {
			t.Fatalf("expected gate to fire")
		}
	})

	t.Run("TimeLimit", func(t *testing.T) {
		gate := krill.TimeLimit(50 * time.Millisecond)
		if gate.Terminated() {
			t.Fatalf("expected gate to be quiet before the deadline")
		}
		time.Sleep(60 * time.Millisecond)
		if !gate.Terminated() {
			t.Fatalf("expected gate to fire after the deadline")
		}
	})
}
