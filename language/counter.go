package language

import (
	"errors"

	"github.com/gonum/floats"
)

// ErrNormalized is returned when a distribution that was already normalized
// is asked to normalize again.
var ErrNormalized = errors.New("language: distribution already normalized")

// Counter maps tokens to accumulated weights. Keys keep their insertion
// order, which fixes both summation order and sampling order.
//
// A Counter has two phases. While accumulating, Increment adds raw counts.
// Normalize divides every weight by the total and freezes the counter.
type Counter struct {
	index      map[string]int
	keys       []string
	weights    []float64
	cumulative []float64
	normalized bool
}

// NewCounter creates an empty accumulating counter.
func NewCounter() *Counter {
	return &Counter{index: make(map[string]int)}
}

// Increment adds amount to key. It panics on a normalized counter.
func (c *Counter) Increment(key string, amount float64) {
	if c.normalized {
		panic("language: Increment on normalized counter")
	}
	i, ok := c.index[key]
	if !ok {
		i = len(c.keys)
		c.index[key] = i
		c.keys = append(c.keys, key)
		c.weights = append(c.weights, 0)
	}
	c.weights[i] += amount
}

// Count returns the weight of key, or 0 if key was never seen.
func (c *Counter) Count(key string) float64 {
	if i, ok := c.index[key]; ok {
		return c.weights[i]
	}
	return 0
}

// Contains reports whether key has an entry.
func (c *Counter) Contains(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Total returns the sum of all weights.
func (c *Counter) Total() float64 {
	return floats.Sum(c.weights)
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int { return len(c.keys) }

// Keys returns the keys in insertion order. The slice must not be modified.
func (c *Counter) Keys() []string { return c.keys }

// Normalized reports whether Normalize has been called.
func (c *Counter) Normalized() bool { return c.normalized }

// Normalize turns the counts into a probability distribution. A zero total
// leaves every weight at zero. Calling it twice returns ErrNormalized.
func (c *Counter) Normalize() error {
	if c.normalized {
		return ErrNormalized
	}
	c.normalized = true
	total := c.Total()
	if total != 0 {
		floats.Scale(1/total, c.weights)
	}
	c.cumulative = make([]float64, len(c.weights))
	if len(c.weights) > 0 {
		floats.CumSum(c.cumulative, c.weights)
	}
	return nil
}

// Sample returns the first key whose cumulative weight exceeds u, walking
// keys in insertion order. If none does (u >= 1 or rounding shortfall) it
// returns Unknown. Sample requires a normalized counter.
func (c *Counter) Sample(u float64) string {
	if !c.normalized {
		panic("language: Sample on accumulating counter")
	}
	for i, cum := range c.cumulative {
		if cum > u {
			return c.keys[i]
		}
	}
	return Unknown
}

// CounterMap maps a context key to a Counter of next tokens.
type CounterMap[K comparable] struct {
	index    map[K]*Counter
	contexts []K
}

// NewCounterMap creates an empty CounterMap.
func NewCounterMap[K comparable]() *CounterMap[K] {
	return &CounterMap[K]{index: make(map[K]*Counter)}
}

// Increment adds amount to the count of key under ctx.
func (m *CounterMap[K]) Increment(ctx K, key string, amount float64) {
	c, ok := m.index[ctx]
	if !ok {
		c = NewCounter()
		m.index[ctx] = c
		m.contexts = append(m.contexts, ctx)
	}
	c.Increment(key, amount)
}

// Counter returns the distribution for ctx.
func (m *CounterMap[K]) Counter(ctx K) (*Counter, bool) {
	c, ok := m.index[ctx]
	return c, ok
}

// Count returns the weight of key under ctx, 0 if either is absent.
func (m *CounterMap[K]) Count(ctx K, key string) float64 {
	if c, ok := m.index[ctx]; ok {
		return c.Count(key)
	}
	return 0
}

// Contexts returns the contexts in insertion order.
func (m *CounterMap[K]) Contexts() []K { return m.contexts }

// Normalize normalizes every per-context distribution.
func (m *CounterMap[K]) Normalize() error {
	for _, ctx := range m.contexts {
		if err := m.index[ctx].Normalize(); err != nil {
			return err
		}
	}
	return nil
}
