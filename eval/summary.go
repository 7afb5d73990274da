package eval

import (
	"github.com/montanaflynn/stats"
)

// Summary describes the spread of per-list error rates.
type Summary struct {
	Lists  int
	Mean   float64
	Median float64
	P90    float64
	Max    float64
	// Perfect counts lists whose chosen hypothesis matches gold exactly.
	Perfect int
}

// Summarize computes error rate statistics over results. An empty input
// yields a zero Summary.
func Summarize(results []ListResult) (Summary, error) {
	s := Summary{Lists: len(results)}
	if len(results) == 0 {
		return s, nil
	}
	rates := make([]float64, len(results))
	for i, r := range results {
		rates[i] = r.ErrorRate()
		if r.Distance == 0 {
			s.Perfect++
		}
	}

	var err error
	if s.Mean, err = stats.Mean(rates); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(rates); err != nil {
		return s, err
	}
	if s.P90, err = stats.Percentile(rates, 90); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(rates); err != nil {
		return s, err
	}
	return s, nil
}
