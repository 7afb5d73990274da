package language

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrInvalidProbability is returned when Good-Turing estimation produces a
// negative or non-finite probability.
var ErrInvalidProbability = errors.New("language: invalid probability")

// GoodTuringBigram is a Katz backoff bigram model whose discounts come from
// Good-Turing frequency-of-frequency statistics.
//
// Counts above the cutoff keep their relative frequency. Smaller counts get
//
//	P = (c/total) · (c*/c − A) / (1 − A)
//
// where c* = (c+1)·n[c+1]/n[c] and A = (cutoff+1)·n[cutoff+1]/n[1]. An
// estimate of exactly 0 is dropped, so the event backs off. Unseen pairs
// back off to the unigram probability scaled by
//
//	backoff(u) = (1 − Σ_v P(v|u)) / (M − Σ_v P(v))
//
// with both sums over the pairs kept for u and M the unigram mass of the
// vocabulary. A context without leftover denominator keeps a weight of 1.
type GoodTuringBigram struct {
	cutoff   int
	vocab    []string
	unigrams map[string]float64
	bigrams  map[Pair]float64
	backoffs map[string]float64
	diag     *Diagnostics
}

// frequencyOfFrequencies holds n[c], the number of distinct events seen
// exactly c times, for c in [0, cutoff+1].
type frequencyOfFrequencies struct {
	cutoff  int
	buckets []float64
}

func newFrequencyOfFrequencies(cutoff int) *frequencyOfFrequencies {
	return &frequencyOfFrequencies{cutoff: cutoff, buckets: make([]float64, cutoff+2)}
}

func (f *frequencyOfFrequencies) add(count float64) {
	if count <= float64(f.cutoff+1) {
		f.buckets[int(count)]++
	}
}

// correction returns A. It is not finite when n[1] is 0.
func (f *frequencyOfFrequencies) correction() float64 {
	return float64(f.cutoff+1) * f.buckets[f.cutoff+1] / f.buckets[1]
}

// estimate returns the probability of an event seen count times out of
// total. The result is not clamped; callers validate it.
func (f *frequencyOfFrequencies) estimate(count, total float64) float64 {
	if count > float64(f.cutoff) {
		return count / total
	}
	a := f.correction()
	c := int(count)
	discounted := (count + 1) * f.buckets[c+1] / f.buckets[c]
	return count / total * (discounted/count - a) / (1 - a)
}

// NewGoodTuringBigram trains the model. It fails with ErrInvalidProbability
// if any estimate or backoff weight is negative or not finite, e.g. on an
// empty corpus or when n[c+1] is too small for the correction A.
func NewGoodTuringBigram(sentences [][]string, cfg Config) (*GoodTuringBigram, error) {
	words := NewCounter()
	pairs := NewCounterMap[string]()
	for _, sentence := range sentences {
		seq := bracket(sentence, 1)
		for i := 1; i < len(seq); i++ {
			words.Increment(seq[i], 1)
			pairs.Increment(seq[i-1], seq[i], 1)
		}
	}

	m := &GoodTuringBigram{
		cutoff:   cfg.GoodTuringCutoff,
		unigrams: make(map[string]float64, words.Len()+1),
		bigrams:  make(map[Pair]float64),
		backoffs: make(map[string]float64, words.Len()+1),
		diag:     newDiagnostics(cfg.logger()),
	}
	if err := m.estimateUnigrams(words); err != nil {
		return nil, err
	}
	if err := m.estimateBigrams(words, pairs); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *GoodTuringBigram) estimateUnigrams(words *Counter) error {
	fof := newFrequencyOfFrequencies(m.cutoff)
	for _, w := range words.Keys() {
		fof.add(words.Count(w))
	}

	total := words.Total()
	for _, w := range words.Keys() {
		p := fof.estimate(words.Count(w), total)
		if err := validProbability(p, "", w); err != nil {
			return err
		}
		if p == 0 {
			m.diag.Report(Diagnostic{Model: NameKatzBigramPP, Word: w, Reason: "zero estimate, scored as unknown"})
			continue
		}
		m.unigrams[w] = p
	}
	// Mass reserved for unseen tokens.
	p := fof.buckets[1] / total
	if err := validProbability(p, "", Unknown); err != nil {
		return err
	}
	m.unigrams[Unknown] = p

	m.vocab = make([]string, 0, words.Len()+1)
	m.vocab = append(m.vocab, words.Keys()...)
	m.vocab = append(m.vocab, Unknown)
	return nil
}

func (m *GoodTuringBigram) estimateBigrams(words *Counter, pairs *CounterMap[string]) error {
	fof := newFrequencyOfFrequencies(m.cutoff)
	for _, u := range pairs.Contexts() {
		next, _ := pairs.Counter(u)
		for _, v := range next.Keys() {
			fof.add(next.Count(v))
		}
	}

	forward := make(map[string]float64)
	backward := make(map[string]float64)
	for _, u := range pairs.Contexts() {
		next, _ := pairs.Counter(u)
		total := next.Total()
		for _, v := range next.Keys() {
			p := fof.estimate(next.Count(v), total)
			if err := validProbability(p, u, v); err != nil {
				return err
			}
			if p == 0 {
				m.diag.Report(Diagnostic{Model: NameKatzBigramPP, Context: u, Word: v, Reason: "zero estimate, backing off"})
				continue
			}
			m.bigrams[Pair{u, v}] = p
			forward[u] += p
			backward[u] += m.WordProbability(v)
		}
	}

	mass := 0.0
	for _, v := range m.vocab {
		mass += m.WordProbability(v)
	}
	contexts := append([]string{Start}, words.Keys()...)
	contexts = append(contexts, Unknown)
	for _, u := range contexts {
		leftover := 1 - forward[u]
		if leftover < 0 && leftover > -roundingSlack {
			leftover = 0
		}
		denominator := mass - backward[u]
		backoff := 1.0
		if denominator > 0 {
			backoff = leftover / denominator
		} else {
			m.diag.Report(Diagnostic{Model: NameKatzBigramPP, Context: u, Value: denominator, Reason: "no leftover unigram mass"})
		}
		if err := validProbability(backoff, u, ""); err != nil {
			return err
		}
		m.backoffs[u] = backoff
	}
	return nil
}

// roundingSlack absorbs summation error when a context keeps all its mass.
const roundingSlack = 1e-9

func validProbability(p float64, context, word string) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return fmt.Errorf("%w: %v for context %q word %q", ErrInvalidProbability, p, context, word)
	}
	return nil
}

// WordProbability returns the discounted unigram probability of w, or the
// Unknown mass for unseen tokens and tokens whose estimate was 0.
func (m *GoodTuringBigram) WordProbability(w string) float64 {
	if p, ok := m.unigrams[w]; ok {
		return p
	}
	return m.unigrams[Unknown]
}

// Backoff returns the backoff weight of context u. Contexts outside the
// vocabulary use the weight of Unknown.
func (m *GoodTuringBigram) Backoff(u string) float64 {
	if b, ok := m.backoffs[u]; ok {
		return b
	}
	return m.backoffs[Unknown]
}

// BigramProbability returns P(word|prev).
func (m *GoodTuringBigram) BigramProbability(prev, word string) float64 {
	if _, ok := m.backoffs[prev]; !ok {
		prev = Unknown
	}
	if p, ok := m.bigrams[Pair{prev, word}]; ok {
		return p
	}
	return m.WordProbability(word) * m.Backoff(prev)
}

// SentenceProbability implements Model.
func (m *GoodTuringBigram) SentenceProbability(sentence []string) float64 {
	seq := bracket(sentence, 1)
	p := 1.0
	for i := 1; i < len(seq); i++ {
		p *= m.BigramProbability(seq[i-1], seq[i])
	}
	return p
}

// GenerateSentence implements Model. Each token is drawn from P(·|previous).
func (m *GoodTuringBigram) GenerateSentence(rng *rand.Rand) []string {
	return m.GenerateSentenceN(rng, 0)
}

// GenerateSentenceN is GenerateSentence with at most max tokens.
func (m *GoodTuringBigram) GenerateSentenceN(rng *rand.Rand, max int) []string {
	return generate(func(prev string) string {
		return sampleConditional(m.vocab, rng.Float64(), func(v string) float64 {
			return m.BigramProbability(prev, v)
		})
	}, max)
}

// Vocabulary returns every predictable token, Unknown included.
func (m *GoodTuringBigram) Vocabulary() []string { return m.vocab }

// Diagnostics implements Diagnoser.
func (m *GoodTuringBigram) Diagnostics() *Diagnostics { return m.diag }
