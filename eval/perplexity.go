package eval

import (
	"math"

	"github.com/ieee0824/nbest-lm/language"
)

// Perplexity returns 2^(−Σ log2 P(s) / Σ (len(s)+1)) over sentences, where
// the +1 accounts for the stop token each sentence predicts. It is +Inf if
// any sentence has probability zero and NaN for an empty collection.
func Perplexity(m language.Model, sentences [][]string) float64 {
	return PerplexityOf(ModelScore(m), sentences)
}

// PerplexityOf is Perplexity over an arbitrary sentence scorer.
func PerplexityOf(score ScoreFunc, sentences [][]string) float64 {
	logProb, symbols := 0.0, 0.0
	for _, s := range sentences {
		logProb += score(s) / math.Ln2
		symbols += float64(len(s) + 1)
	}
	if symbols == 0 {
		return math.NaN()
	}
	return math.Pow(2, -logProb/symbols)
}
