package language

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
)

// arpaFloor is the log10 value written for zero probabilities and weights.
const arpaFloor = -99.0

// arpaToken maps native sentinels to their ARPA spelling.
func arpaToken(w string) string {
	switch w {
	case Start:
		return ARPAStart
	case Stop:
		return ARPAStop
	case Unknown:
		return ARPAUnknown
	}
	return w
}

func log10OrFloor(p float64) float64 {
	if p <= 0 {
		return arpaFloor
	}
	return math.Log10(p)
}

// WriteARPA writes the model in ARPA format (log10 probabilities) to w.
// Loading the result with LoadARPA reproduces the model's sentence
// probabilities up to the printed precision. Log values carry an explicit
// sign so that every n-gram line starts with one.
func (m *GoodTuringBigram) WriteARPA(w io.Writer) error {
	bw := bufio.NewWriter(w)

	words := make([]string, 0, len(m.vocab)+1)
	words = append(words, Start)
	words = append(words, m.vocab...)
	sort.Slice(words, func(i, j int) bool { return arpaToken(words[i]) < arpaToken(words[j]) })

	pairs := make([]Pair, 0, len(m.bigrams))
	for p := range m.bigrams {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if arpaToken(a[0]) != arpaToken(b[0]) {
			return arpaToken(a[0]) < arpaToken(b[0])
		}
		return arpaToken(a[1]) < arpaToken(b[1])
	})

	fmt.Fprintln(bw, "\\data\\")
	fmt.Fprintf(bw, "ngram 1=%d\n", len(words))
	fmt.Fprintf(bw, "ngram 2=%d\n", len(pairs))
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "\\1-grams:")
	for _, word := range words {
		lp := arpaFloor
		if word != Start {
			lp = log10OrFloor(m.WordProbability(word))
		}
		if bo, ok := m.backoffs[word]; ok {
			fmt.Fprintf(bw, "%+.8f\t%s\t%+.8f\n", lp, arpaToken(word), log10OrFloor(bo))
		} else {
			fmt.Fprintf(bw, "%+.8f\t%s\n", lp, arpaToken(word))
		}
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "\\2-grams:")
	for _, p := range pairs {
		fmt.Fprintf(bw, "%+.8f\t%s %s\n", log10OrFloor(m.bigrams[p]), arpaToken(p[0]), arpaToken(p[1]))
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "\\end\\")
	return bw.Flush()
}
