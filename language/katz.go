package language

import (
	"math"
	"math/rand"
)

// KatzBigram is a Katz backoff bigram model with a fixed absolute discount.
//
// For an observed pair, P(v|u) = (c(u,v) − β) / c(u). The mass freed by
// discounting, alpha(u), is spread over the tokens never seen after u in
// proportion to their unigram counts:
//
//	P(v|u) = alpha(u) · c(v) / z(u),  z(u) = Σ_{v: c(u,v)=0} c(v)
//
// Unigram counts, including Start and Unknown, receive +1 before alpha and z
// are computed.
type KatzBigram struct {
	beta    float64
	words   *Counter
	bigrams *CounterMap[string]
	alpha   map[string]float64
	z       map[string]float64
	diag    *Diagnostics
}

// NewKatzBigram trains a raw-discount Katz bigram model.
func NewKatzBigram(sentences [][]string, cfg Config) *KatzBigram {
	m := &KatzBigram{
		beta:    cfg.KatzDiscount,
		words:   NewCounter(),
		bigrams: NewCounterMap[string](),
		diag:    newDiagnostics(cfg.logger()),
	}
	for _, sentence := range sentences {
		seq := bracket(sentence, 1)
		m.words.Increment(Start, 1)
		for i := 1; i < len(seq); i++ {
			m.words.Increment(seq[i], 1)
			m.bigrams.Increment(seq[i-1], seq[i], 1)
		}
	}
	m.smooth()
	return m
}

func (m *KatzBigram) smooth() {
	m.words.Increment(Unknown, 1)
	for _, w := range m.words.Keys() {
		m.words.Increment(w, 1)
	}

	total := m.words.Total()
	m.alpha = make(map[string]float64, m.words.Len())
	m.z = make(map[string]float64, m.words.Len())
	for _, u := range m.words.Keys() {
		discounted, seenMass := 0.0, 0.0
		if next, ok := m.bigrams.Counter(u); ok {
			for _, v := range next.Keys() {
				discounted += next.Count(v) - m.beta
				seenMass += m.words.Count(v)
			}
		}
		m.alpha[u] = 1 - discounted/m.words.Count(u)
		m.z[u] = total - seenMass
	}
}

// BigramProbability returns P(word|prev). Unseen tokens and contexts are
// scored as Unknown. Out of range results are reported as diagnostics.
func (m *KatzBigram) BigramProbability(prev, word string) float64 {
	if !m.words.Contains(word) {
		word = Unknown
	}
	if !m.words.Contains(prev) {
		prev = Unknown
	}

	var p float64
	if c := m.bigrams.Count(prev, word); c > 0 {
		p = (c - m.beta) / m.words.Count(prev)
	} else {
		z := m.z[prev]
		if z == 0 {
			m.diag.Report(Diagnostic{Model: "katz-bigram", Context: prev, Word: word, Reason: "zero backoff normalizer"})
			return 0
		}
		p = m.alpha[prev] * m.words.Count(word) / z
	}

	if p > 1 || p <= 0 || math.IsNaN(p) {
		m.diag.Report(Diagnostic{Model: "katz-bigram", Context: prev, Word: word, Value: p, Reason: "probability outside (0,1]"})
	}
	return p
}

// SentenceProbability implements Model.
func (m *KatzBigram) SentenceProbability(sentence []string) float64 {
	seq := bracket(sentence, 1)
	p := 1.0
	for i := 1; i < len(seq); i++ {
		p *= m.BigramProbability(seq[i-1], seq[i])
	}
	return p
}

// GenerateSentence implements Model. Each token is drawn from P(·|previous).
func (m *KatzBigram) GenerateSentence(rng *rand.Rand) []string {
	return m.GenerateSentenceN(rng, 0)
}

// GenerateSentenceN is GenerateSentence with at most max tokens.
func (m *KatzBigram) GenerateSentenceN(rng *rand.Rand, max int) []string {
	return generate(func(prev string) string {
		return sampleConditional(m.words.Keys(), rng.Float64(), func(v string) float64 {
			return m.BigramProbability(prev, v)
		})
	}, max)
}

// Vocabulary returns every token the model can score, Start and Unknown included.
func (m *KatzBigram) Vocabulary() []string { return m.words.Keys() }

// Diagnostics implements Diagnoser.
func (m *KatzBigram) Diagnostics() *Diagnostics { return m.diag }

// sampleConditional walks vocab in order accumulating prob(v) and returns
// the first token whose cumulative mass exceeds u, or Unknown.
func sampleConditional(vocab []string, u float64, prob func(string) float64) string {
	sum := 0.0
	for _, v := range vocab {
		sum += prob(v)
		if sum > u {
			return v
		}
	}
	return Unknown
}
