package language

import "math/rand"

// Unigram is the baseline model: P(w) from normalized word counts.
type Unigram struct {
	words *Counter
}

// NewUnigram trains a unigram model in one pass over sentences.
func NewUnigram(sentences [][]string) *Unigram {
	m := &Unigram{words: NewCounter()}
	for _, sentence := range sentences {
		for _, w := range bracket(sentence, 0) {
			m.words.Increment(w, 1)
		}
	}
	m.words.Increment(Unknown, 1)
	_ = m.words.Normalize() // fresh counter, cannot fail
	return m
}

// WordProbability returns P(w), or P(Unknown) for unseen tokens.
func (m *Unigram) WordProbability(w string) float64 {
	return unigramProbability(m.words, w)
}

// SentenceProbability implements Model.
func (m *Unigram) SentenceProbability(sentence []string) float64 {
	p := 1.0
	for _, w := range bracket(sentence, 0) {
		p *= m.WordProbability(w)
	}
	return p
}

// GenerateSentence implements Model.
func (m *Unigram) GenerateSentence(rng *rand.Rand) []string {
	return m.GenerateSentenceN(rng, 0)
}

// GenerateSentenceN is GenerateSentence with at most max tokens (max <= 0: no cap).
func (m *Unigram) GenerateSentenceN(rng *rand.Rand, max int) []string {
	return generate(func(string) string { return m.words.Sample(rng.Float64()) }, max)
}

// Vocabulary returns every token with unigram mass, Unknown included.
func (m *Unigram) Vocabulary() []string { return m.words.Keys() }

func unigramProbability(words *Counter, w string) float64 {
	if words.Contains(w) {
		return words.Count(w)
	}
	return words.Count(Unknown)
}
