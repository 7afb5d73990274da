package language

import (
	"errors"
	"testing"
)

func TestCounterIncrementAndCount(t *testing.T) {
	c := NewCounter()
	c.Increment("b", 1)
	c.Increment("a", 2)
	c.Increment("b", 3)

	if got := c.Count("b"); got != 4 {
		t.Errorf("Count(b) = %f, want 4", got)
	}
	if got := c.Count("missing"); got != 0 {
		t.Errorf("Count(missing) = %f, want 0", got)
	}
	if got := c.Total(); got != 6 {
		t.Errorf("Total = %f, want 6", got)
	}
	keys := c.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("Keys = %v, want insertion order [b a]", keys)
	}
}

func TestCounterNormalize(t *testing.T) {
	c := NewCounter()
	c.Increment("x", 1)
	c.Increment("y", 3)
	if err := c.Normalize(); err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if !c.Normalized() {
		t.Error("Normalized = false after Normalize")
	}
	assertClose(t, "Count(x)", c.Count("x"), 0.25, 1e-12)
	assertClose(t, "Count(y)", c.Count("y"), 0.75, 1e-12)
	assertClose(t, "Total", c.Total(), 1, 1e-12)

	if err := c.Normalize(); !errors.Is(err, ErrNormalized) {
		t.Errorf("second Normalize error = %v, want ErrNormalized", err)
	}
	assertClose(t, "Count(x) after second Normalize", c.Count("x"), 0.25, 1e-12)
}

func TestCounterNormalizeZeroTotal(t *testing.T) {
	c := NewCounter()
	if err := c.Normalize(); err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if got := c.Sample(0.5); got != Unknown {
		t.Errorf("Sample on empty distribution = %q, want %q", got, Unknown)
	}
}

func TestCounterIncrementAfterNormalizePanics(t *testing.T) {
	c := NewCounter()
	c.Increment("x", 1)
	_ = c.Normalize()
	defer func() {
		if recover() == nil {
			t.Error("Increment on normalized counter did not panic")
		}
	}()
	c.Increment("x", 1)
}

func TestCounterSample(t *testing.T) {
	c := NewCounter()
	c.Increment("a", 1)
	c.Increment("b", 1)
	c.Increment("c", 2)
	_ = c.Normalize()

	tests := []struct {
		u    float64
		want string
	}{
		{0, "a"},
		{0.2, "a"},
		{0.25, "b"},
		{0.49, "b"},
		{0.5, "c"},
		{0.99, "c"},
		{1, Unknown},
	}
	for _, tt := range tests {
		if got := c.Sample(tt.u); got != tt.want {
			t.Errorf("Sample(%v) = %q, want %q", tt.u, got, tt.want)
		}
	}
}

func TestCounterMap(t *testing.T) {
	m := NewCounterMap[Pair]()
	m.Increment(Pair{Start, Start}, "the", 2)
	m.Increment(Pair{Start, "the"}, "cat", 1)
	m.Increment(Pair{Start, Start}, "a", 2)

	if got := m.Count(Pair{Start, Start}, "the"); got != 2 {
		t.Errorf("Count = %f, want 2", got)
	}
	if got := m.Count(Pair{"no", "such"}, "the"); got != 0 {
		t.Errorf("Count for unseen context = %f, want 0", got)
	}
	if ctx := m.Contexts(); len(ctx) != 2 || ctx[0] != (Pair{Start, Start}) {
		t.Errorf("Contexts = %v", ctx)
	}
	if err := m.Normalize(); err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	c, ok := m.Counter(Pair{Start, Start})
	if !ok {
		t.Fatal("missing context after Normalize")
	}
	assertClose(t, "P(the|<S> <S>)", c.Count("the"), 0.5, 1e-12)
}
