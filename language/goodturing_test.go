package language

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func TestGoodTuringValues(t *testing.T) {
	m, err := NewGoodTuringBigram(pets, DefaultConfig())
	if err != nil {
		t.Fatalf("NewGoodTuringBigram error: %v", err)
	}

	// Bigram buckets n = [0 14 6 3 0 0 0], so A = 0.
	// c=2: c* = 3*3/6, P(a|<S>) = 2/5 * 0.75.
	assertClose(t, "P(a|<S>)", m.BigramProbability(Start, "a"), 0.3, 1e-12)
	// c=1: c* = 2*6/14, P(cat|the) = 1/6 * 6/7.
	assertClose(t, "P(cat|the)", m.BigramProbability("the", "cat"), 1.0/7, 1e-12)
	// c=3 with n[4] = 0 estimates 0 and backs off.
	assertClose(t, "P(the|<S>)", m.BigramProbability(Start, "the"),
		m.WordProbability("the")*m.Backoff(Start), 1e-12)

	// Unigram buckets n = [0 1 3 3 2 1 1], so A = 6.
	// the: 6 > cutoff keeps its frequency.
	assertClose(t, "P(the)", m.WordProbability("the"), 6.0/35, 1e-12)
	// cat: c=3, c* = 4*2/3, factor (8/9 - 6)/(1 - 6) = 46/45.
	assertClose(t, "P(cat)", m.WordProbability("cat"), 3.0/35*46/45, 1e-12)
	// One singleton out of 35 predicted positions.
	assertClose(t, "P(*UNKNOWN*)", m.WordProbability(Unknown), 1.0/35, 1e-12)
	assertClose(t, "P(zebra)", m.WordProbability("zebra"), 1.0/35, 1e-12)
	// log: c=1, c* = 2*3/1 = A, so its estimate is 0 and it scores as unknown.
	assertClose(t, "P(log)", m.WordProbability("log"), 1.0/35, 1e-12)
}

func TestGoodTuringZeroEstimateDiagnostics(t *testing.T) {
	m, err := NewGoodTuringBigram(pets, DefaultConfig())
	if err != nil {
		t.Fatalf("NewGoodTuringBigram error: %v", err)
	}

	got := map[Pair]string{}
	for _, d := range m.Diagnostics().All() {
		if d.Model != NameKatzBigramPP {
			t.Errorf("diagnostic model = %q", d.Model)
		}
		got[Pair{d.Context, d.Word}] = d.Reason
	}
	want := map[Pair]string{
		{"", "log"}:    "zero estimate, scored as unknown",
		{Start, "the"}: "zero estimate, backing off",
		{"the", "dog"}: "zero estimate, backing off",
		{"sat", "on"}:  "zero estimate, backing off",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("diagnostics = %v, want %v", got, want)
	}
}

func TestGoodTuringSumsToOne(t *testing.T) {
	m, err := NewGoodTuringBigram(pets, DefaultConfig())
	if err != nil {
		t.Fatalf("NewGoodTuringBigram error: %v", err)
	}

	contexts := append([]string{Start, "never-seen"}, m.Vocabulary()...)
	for _, u := range contexts {
		if b := m.Backoff(u); b <= 0 {
			t.Errorf("Backoff(%q) = %v, want > 0", u, b)
		}
		sum := 0.0
		for _, v := range m.Vocabulary() {
			sum += m.BigramProbability(u, v)
		}
		assertClose(t, "sum P(v|"+u+")", sum, 1, 1e-9)
	}
}

func TestGoodTuringInvalidProbability(t *testing.T) {
	// Twenty singleton pairs, no doubletons and three pairs in the overflow
	// bucket: A = 6*3/20, so a singleton gets (0 - 0.9)/(1 - 0.9) < 0.
	singletons := make([][]string, 0, 16)
	for i := 0; i < 6; i++ {
		singletons = append(singletons, []string{"a", "b"})
	}
	for _, w := range []string{"w0", "w1", "w2", "w3", "w4", "w5", "w6", "w7", "w8", "w9"} {
		singletons = append(singletons, []string{w})
	}

	tests := []struct {
		name      string
		sentences [][]string
	}{
		{"empty corpus", nil},
		{"negative singleton estimate", singletons},
		// The discount factor exceeds 1 for some counts, so "a" keeps more
		// than all of its mass and its backoff weight turns negative.
		{"negative backoff", farm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewGoodTuringBigram(tt.sentences, DefaultConfig())
			if !errors.Is(err, ErrInvalidProbability) {
				t.Errorf("error = %v, want ErrInvalidProbability", err)
			}
			if m != nil {
				t.Errorf("model = %v, want nil", m)
			}
		})
	}
}

func TestGoodTuringGenerate(t *testing.T) {
	m, err := NewGoodTuringBigram(pets, DefaultConfig())
	if err != nil {
		t.Fatalf("NewGoodTuringBigram error: %v", err)
	}
	a := m.GenerateSentenceN(rand.New(rand.NewSource(3)), 30)
	b := m.GenerateSentenceN(rand.New(rand.NewSource(3)), 30)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced %v and %v", a, b)
	}
	if len(a) > 30 {
		t.Errorf("generated %d tokens, cap 30", len(a))
	}
}
