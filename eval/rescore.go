// Package eval measures language models: perplexity, N-best rescoring and
// word error rates.
package eval

import (
	"math"
	"math/rand"

	"github.com/ieee0824/nbest-lm/internal/mathutil"
	"github.com/ieee0824/nbest-lm/language"
	"github.com/ieee0824/nbest-lm/nbest"
)

// DefaultAcousticScale divides acoustic scores before they are added to
// natural-log language scores.
const DefaultAcousticScale = 16.0

// ScoreFunc returns ln P(sentence).
type ScoreFunc func(sentence []string) float64

// logScorer is implemented by models that compute log probabilities
// directly and so do not underflow on long sentences.
type logScorer interface {
	SentenceLogProb(sentence []string) float64
}

// ModelScore returns the natural-log sentence score of m. A sentence of
// probability zero scores -Inf.
func ModelScore(m language.Model) ScoreFunc {
	if ls, ok := m.(logScorer); ok {
		return ls.SentenceLogProb
	}
	return func(sentence []string) float64 {
		return math.Log(m.SentenceProbability(sentence))
	}
}

// ListResult is the outcome of rescoring one N-best list.
type ListResult struct {
	ID string
	// Chosen is the first hypothesis with the highest combined score.
	Chosen nbest.Hypothesis
	// Score is the combined score of Chosen.
	Score float64
	// Distance is the edit distance to gold, averaged over all hypotheses
	// tied at Score.
	Distance float64
	// Ties is the number of hypotheses tied at Score.
	Ties int
	// Posterior is the share of the combined probability mass held by the
	// tied winners.
	Posterior  float64
	GoldLength int
}

// ErrorRate returns Distance over the gold length.
func (r ListResult) ErrorRate() float64 {
	if r.GoldLength == 0 {
		return r.Distance
	}
	return r.Distance / float64(r.GoldLength)
}

// Rescore picks the hypothesis maximizing ln P + acoustic/scale. Exact ties
// average their edit distances to gold. A list without hypotheses scores
// -Inf at a distance of len(gold).
func Rescore(score ScoreFunc, l *nbest.List, scale float64) ListResult {
	res := ListResult{ID: l.ID, Score: math.Inf(-1), GoldLength: len(l.Gold)}
	if len(l.Hypotheses) == 0 {
		res.Distance = float64(len(l.Gold))
		return res
	}

	scores := make([]float64, len(l.Hypotheses))
	sumDistance := 0.0
	for i, h := range l.Hypotheses {
		s := score(h.Words) + h.Acoustic/scale
		scores[i] = s
		d := EditDistance(l.Gold, h.Words)
		switch {
		case res.Ties == 0 || s > res.Score:
			res.Chosen, res.Score = h, s
			res.Ties, sumDistance = 1, d
		case s == res.Score:
			res.Ties++
			sumDistance += d
		}
	}
	res.Distance = sumDistance / float64(res.Ties)

	if !math.IsInf(res.Score, -1) {
		total := mathutil.LogSumExp(scores)
		res.Posterior = float64(res.Ties) * math.Exp(res.Score-total)
	}
	return res
}

// RescoreAll rescores every list with m.
func RescoreAll(m language.Model, lists []*nbest.List, scale float64) []ListResult {
	score := ModelScore(m)
	out := make([]ListResult, len(lists))
	for i, l := range lists {
		out[i] = Rescore(score, l, scale)
	}
	return out
}

// WordErrorRate returns the total distance over the total gold length.
func WordErrorRate(results []ListResult) float64 {
	distance, words := 0.0, 0.0
	for _, r := range results {
		distance += r.Distance
		words += float64(r.GoldLength)
	}
	return distance / words
}

// BestPath returns the oracle error rate: each list contributes its closest
// hypothesis.
func BestPath(lists []*nbest.List) float64 {
	return baseline(lists, func(ds []float64) float64 {
		best := math.Inf(1)
		for _, d := range ds {
			best = math.Min(best, d)
		}
		return best
	})
}

// WorstPath returns the error rate when each list contributes its farthest
// hypothesis.
func WorstPath(lists []*nbest.List) float64 {
	return baseline(lists, func(ds []float64) float64 {
		worst := math.Inf(-1)
		for _, d := range ds {
			worst = math.Max(worst, d)
		}
		return worst
	})
}

// RandomChoice returns the expected error rate of a uniformly random pick,
// i.e. the mean hypothesis distance per list.
func RandomChoice(lists []*nbest.List) float64 {
	return baseline(lists, func(ds []float64) float64 {
		sum := 0.0
		for _, d := range ds {
			sum += d
		}
		return sum / float64(len(ds))
	})
}

// SampleChoice draws one hypothesis per list with rng and returns the
// resulting error rate.
func SampleChoice(lists []*nbest.List, rng *rand.Rand) float64 {
	return baseline(lists, func(ds []float64) float64 {
		return ds[rng.Intn(len(ds))]
	})
}

// baseline aggregates pick over the hypothesis distances of every list.
// Lists without hypotheses are skipped.
func baseline(lists []*nbest.List, pick func(distances []float64) float64) float64 {
	distance, words := 0.0, 0.0
	for _, l := range lists {
		if len(l.Hypotheses) == 0 {
			continue
		}
		ds := make([]float64, len(l.Hypotheses))
		for i, h := range l.Hypotheses {
			ds[i] = EditDistance(l.Gold, h.Words)
		}
		distance += pick(ds)
		words += float64(len(l.Gold))
	}
	return distance / words
}
