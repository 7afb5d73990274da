package eval

import (
	"math"

	"github.com/ieee0824/nbest-lm/internal/mathutil"
)

// Unit costs of the three edit operations.
const (
	insertCost     = 1.0
	deleteCost     = 1.0
	substituteCost = 1.0
)

// EditDistance returns the minimum number of token insertions, deletions
// and substitutions turning gold into guess. Subproblems are memoized in a
// (len(gold)+1)×(len(guess)+1) table.
func EditDistance(gold, guess []string) float64 {
	memo := mathutil.NewMatFill(len(gold)+1, len(guess)+1, math.NaN())
	return distanceFrom(gold, guess, 0, 0, memo)
}

// distanceFrom solves the suffixes gold[i:] and guess[j:].
func distanceFrom(gold, guess []string, i, j int, memo mathutil.Mat) float64 {
	if i > len(gold) || j > len(guess) {
		return math.Inf(1)
	}
	if i == len(gold) && j == len(guess) {
		return 0
	}
	if !math.IsNaN(memo[i][j]) {
		return memo[i][j]
	}
	d := math.Min(
		insertCost+distanceFrom(gold, guess, i+1, j, memo),
		deleteCost+distanceFrom(gold, guess, i, j+1, memo),
	)
	d = math.Min(d, substituteCost+distanceFrom(gold, guess, i+1, j+1, memo))
	if i < len(gold) && j < len(guess) && gold[i] == guess[j] {
		d = math.Min(d, distanceFrom(gold, guess, i+1, j+1, memo))
	}
	memo[i][j] = d
	return d
}

// editDistanceDP is the single-row iterative Levenshtein distance. It agrees
// with EditDistance and exists as a reference for it.
func editDistanceDP(a, b []string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur := make([]int, lb+1)
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev = cur
	}
	return prev[lb]
}
