// Package nbest holds N-best hypothesis lists and reads them from disk.
//
// An N-best directory holds one "*.nbest" file per utterance. The file name
// without its extension is the utterance id. Each non-blank line that does
// not start with '#' is either
//
//	gold<TAB>reference sentence
//	<acoustic score><TAB>hypothesis sentence
//
// with exactly one gold line per file. Tokens are lower-cased.
package nbest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Extension is the file extension of N-best files.
const Extension = ".nbest"

const goldTag = "gold"

var (
	// ErrNoGold is returned for a list without a gold line.
	ErrNoGold = errors.New("nbest: missing gold sentence")
	// ErrDuplicateGold is returned for a list with more than one gold line.
	ErrDuplicateGold = errors.New("nbest: more than one gold sentence")
)

// Hypothesis is one candidate sentence with its log-domain acoustic score.
type Hypothesis struct {
	Words    []string
	Acoustic float64
}

// List is the N-best list of one utterance. Hypotheses are distinct and
// keep their input order.
type List struct {
	ID         string
	Gold       []string
	Hypotheses []Hypothesis
}

// NewList builds a list, dropping repeated hypotheses. The first occurrence
// of a sentence supplies its acoustic score.
func NewList(id string, gold []string, hyps []Hypothesis) *List {
	l := &List{ID: id, Gold: gold}
	seen := make(map[string]bool, len(hyps))
	for _, h := range hyps {
		k := Key(h.Words)
		if seen[k] {
			continue
		}
		seen[k] = true
		l.Hypotheses = append(l.Hypotheses, h)
	}
	return l
}

// Key returns a map key identifying a token sequence. Tokens are length
// prefixed so that no two distinct sequences share a key.
func Key(words []string) string {
	var b strings.Builder
	for _, w := range words {
		b.WriteString(strconv.Itoa(len(w)))
		b.WriteByte(':')
		b.WriteString(w)
	}
	return b.String()
}

// Parse reads one N-best file.
func Parse(id string, r io.Reader) (*List, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var gold []string
	var hasGold bool
	var hyps []Hypothesis
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		tag, sentence, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("%s line %d: missing tab separator", id, lineNum)
		}
		words := strings.Fields(strings.ToLower(sentence))
		if strings.TrimSpace(tag) == goldTag {
			if hasGold {
				return nil, fmt.Errorf("%s line %d: %w", id, lineNum, ErrDuplicateGold)
			}
			gold, hasGold = words, true
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(tag), 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: parse acoustic score: %w", id, lineNum, err)
		}
		hyps = append(hyps, Hypothesis{Words: words, Acoustic: score})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	if !hasGold {
		return nil, fmt.Errorf("%s: %w", id, ErrNoGold)
	}
	return NewList(id, gold, hyps), nil
}

// ReadFile reads the N-best file at path; the id is the base name without
// extension.
func ReadFile(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open n-best list: %w", err)
	}
	defer f.Close()
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(id, f)
}

// ReadDir reads every N-best file in dir, ordered by file name.
func ReadDir(dir string) ([]*List, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+Extension))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s files in %s", Extension, dir)
	}
	lists := make([]*List, 0, len(paths))
	for _, path := range paths {
		l, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, nil
}

// Restrict keeps only hypotheses whose tokens are all in vocab, and drops
// lists whose gold sentence has an out-of-vocabulary token or that are left
// without hypotheses.
func Restrict(lists []*List, vocab map[string]bool) []*List {
	inVocab := func(words []string) bool {
		for _, w := range words {
			if !vocab[w] {
				return false
			}
		}
		return true
	}
	var out []*List
	for _, l := range lists {
		if !inVocab(l.Gold) {
			continue
		}
		var hyps []Hypothesis
		for _, h := range l.Hypotheses {
			if inVocab(h.Words) {
				hyps = append(hyps, h)
			}
		}
		if len(hyps) == 0 {
			continue
		}
		out = append(out, &List{ID: l.ID, Gold: l.Gold, Hypotheses: hyps})
	}
	return out
}

// Golds returns the gold sentence of every list.
func Golds(lists []*List) [][]string {
	out := make([][]string, len(lists))
	for i, l := range lists {
		out[i] = l.Gold
	}
	return out
}

// Vocabulary returns the set of tokens in sentences.
func Vocabulary(sentences [][]string) map[string]bool {
	vocab := make(map[string]bool)
	for _, s := range sentences {
		for _, w := range s {
			vocab[w] = true
		}
	}
	return vocab
}
