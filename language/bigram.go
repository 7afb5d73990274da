package language

import "math/rand"

// Bigram interpolates bigram and unigram relative frequencies:
//
//	P(w|u) = λ·P_bigram(w|u) + (1−λ)·P_unigram(w)
type Bigram struct {
	lambda  float64
	words   *Counter
	bigrams *CounterMap[string]
}

// NewBigram trains an interpolated bigram model in one pass over sentences.
func NewBigram(sentences [][]string, cfg Config) *Bigram {
	m := &Bigram{
		lambda:  cfg.BigramLambda,
		words:   NewCounter(),
		bigrams: NewCounterMap[string](),
	}
	for _, sentence := range sentences {
		seq := bracket(sentence, 1)
		for i := 1; i < len(seq); i++ {
			m.words.Increment(seq[i], 1)
			m.bigrams.Increment(seq[i-1], seq[i], 1)
		}
	}
	m.words.Increment(Unknown, 1)
	_ = m.bigrams.Normalize()
	_ = m.words.Normalize()
	return m
}

// WordProbability returns the unigram probability of w.
func (m *Bigram) WordProbability(w string) float64 {
	return unigramProbability(m.words, w)
}

// BigramProbability returns the interpolated P(word|prev).
func (m *Bigram) BigramProbability(prev, word string) float64 {
	return m.lambda*m.bigrams.Count(prev, word) + (1-m.lambda)*m.WordProbability(word)
}

// SentenceProbability implements Model.
func (m *Bigram) SentenceProbability(sentence []string) float64 {
	seq := bracket(sentence, 1)
	p := 1.0
	for i := 1; i < len(seq); i++ {
		p *= m.BigramProbability(seq[i-1], seq[i])
	}
	return p
}

// GenerateSentence implements Model. Tokens are drawn from the unigram
// distribution.
func (m *Bigram) GenerateSentence(rng *rand.Rand) []string {
	return m.GenerateSentenceN(rng, 0)
}

// GenerateSentenceN is GenerateSentence with at most max tokens.
func (m *Bigram) GenerateSentenceN(rng *rand.Rand, max int) []string {
	return generate(func(string) string { return m.words.Sample(rng.Float64()) }, max)
}

// Vocabulary returns every token with unigram mass, Unknown included.
func (m *Bigram) Vocabulary() []string { return m.words.Keys() }

// Contexts returns every context observed in training.
func (m *Bigram) Contexts() []string { return m.bigrams.Contexts() }
