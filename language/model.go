package language

import (
	"math/rand"

	"go.uber.org/zap"
)

// Sentinel tokens used by the native estimators.
const (
	Start   = "<S>"
	Stop    = "</S>"
	Unknown = "*UNKNOWN*"
)

// Model assigns probabilities to sentences and generates sentences.
// Frozen models are safe for concurrent reads.
type Model interface {
	// SentenceProbability returns P(sentence) in [0,1]. Long sentences may
	// underflow to 0.
	SentenceProbability(sentence []string) float64
	// GenerateSentence samples tokens until the stop token is drawn.
	GenerateSentence(rng *rand.Rand) []string
}

// Pair is a two-token trigram context.
type Pair [2]string

// Config holds estimator hyperparameters.
type Config struct {
	BigramLambda     float64 // weight of P_bigram in the interpolated bigram model
	TrigramLambda1   float64 // weight of P_trigram in the interpolated trigram model
	TrigramLambda2   float64 // weight of P_bigram in the interpolated trigram model
	KatzDiscount     float64 // β subtracted from observed bigram counts
	GoodTuringCutoff int     // counts above the cutoff are not discounted
	Logger           *zap.Logger
}

// DefaultConfig returns the reference hyperparameters.
func DefaultConfig() Config {
	return Config{
		BigramLambda:     0.6,
		TrigramLambda1:   0.5,
		TrigramLambda2:   0.3,
		KatzDiscount:     0.1,
		GoodTuringCutoff: 5,
	}
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// bracket returns a copy of sentence with starts Start tokens prepended and
// Stop appended.
func bracket(sentence []string, starts int) []string {
	seq := make([]string, 0, len(sentence)+starts+1)
	for i := 0; i < starts; i++ {
		seq = append(seq, Start)
	}
	seq = append(seq, sentence...)
	return append(seq, Stop)
}

// generate draws tokens from next until Stop. max <= 0 means no cap.
func generate(next func(prev string) string, max int) []string {
	var sentence []string
	prev := Start
	for max <= 0 || len(sentence) < max {
		w := next(prev)
		if w == Stop {
			break
		}
		sentence = append(sentence, w)
		prev = w
	}
	return sentence
}
