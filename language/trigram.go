package language

import "math/rand"

// Trigram interpolates trigram, bigram and unigram relative frequencies:
//
//	P(w|u,v) = λ1·P_trigram(w|u,v) + λ2·P_bigram(w|v) + (1−λ1−λ2)·P_unigram(w)
type Trigram struct {
	lambda1  float64
	lambda2  float64
	words    *Counter
	bigrams  *CounterMap[string]
	trigrams *CounterMap[Pair]
}

// NewTrigram trains an interpolated trigram model in one pass over sentences.
func NewTrigram(sentences [][]string, cfg Config) *Trigram {
	m := &Trigram{
		lambda1:  cfg.TrigramLambda1,
		lambda2:  cfg.TrigramLambda2,
		words:    NewCounter(),
		bigrams:  NewCounterMap[string](),
		trigrams: NewCounterMap[Pair](),
	}
	for _, sentence := range sentences {
		seq := bracket(sentence, 2)
		for i := 2; i < len(seq); i++ {
			w := seq[i]
			m.words.Increment(w, 1)
			m.bigrams.Increment(seq[i-1], w, 1)
			m.trigrams.Increment(Pair{seq[i-2], seq[i-1]}, w, 1)
		}
	}
	m.words.Increment(Unknown, 1)
	_ = m.trigrams.Normalize()
	_ = m.bigrams.Normalize()
	_ = m.words.Normalize()
	return m
}

// WordProbability returns the unigram probability of w.
func (m *Trigram) WordProbability(w string) float64 {
	return unigramProbability(m.words, w)
}

// TrigramProbability returns the interpolated P(word|prev2,prev1).
func (m *Trigram) TrigramProbability(prev2, prev1, word string) float64 {
	return m.lambda1*m.trigrams.Count(Pair{prev2, prev1}, word) +
		m.lambda2*m.bigrams.Count(prev1, word) +
		(1-m.lambda1-m.lambda2)*m.WordProbability(word)
}

// SentenceProbability implements Model.
func (m *Trigram) SentenceProbability(sentence []string) float64 {
	seq := bracket(sentence, 2)
	p := 1.0
	for i := 2; i < len(seq); i++ {
		p *= m.TrigramProbability(seq[i-2], seq[i-1], seq[i])
	}
	return p
}

// GenerateSentence implements Model. Tokens are drawn from the unigram
// distribution.
func (m *Trigram) GenerateSentence(rng *rand.Rand) []string {
	return m.GenerateSentenceN(rng, 0)
}

// GenerateSentenceN is GenerateSentence with at most max tokens.
func (m *Trigram) GenerateSentenceN(rng *rand.Rand, max int) []string {
	return generate(func(string) string { return m.words.Sample(rng.Float64()) }, max)
}

// Vocabulary returns every token with unigram mass, Unknown included.
func (m *Trigram) Vocabulary() []string { return m.words.Keys() }

// Contexts returns every two-token context observed in training.
func (m *Trigram) Contexts() []Pair { return m.trigrams.Contexts() }
