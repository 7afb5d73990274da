package language

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ieee0824/nbest-lm/internal/mathutil"
)

// Sentinel tokens used by ARPA files.
const (
	ARPAStart   = "<s>"
	ARPAStop    = "</s>"
	ARPAUnknown = "<unk>"
)

// ARPAModel is a read-only trigram backoff model loaded from an ARPA file
// written by an external toolkit such as SRILM.
type ARPAModel struct {
	Order    int
	Unigrams map[string]ngramEntry
	Bigrams  map[[2]string]ngramEntry
	Trigrams map[[3]string]ngramEntry

	sampler *Counter
	diag    *Diagnostics
}

// ngramEntry holds natural-log probability and backoff weights.
type ngramEntry struct {
	LogProb    float64
	LogBackoff float64
}

func newARPAModel(cfg Config) *ARPAModel {
	return &ARPAModel{
		Unigrams: make(map[string]ngramEntry),
		Bigrams:  make(map[[2]string]ngramEntry),
		Trigrams: make(map[[3]string]ngramEntry),
		diag:     newDiagnostics(cfg.logger()),
	}
}

// LoadARPAFile opens path and reads it with LoadARPA.
func LoadARPAFile(path string, cfg Config) (*ARPAModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ARPA model: %w", err)
	}
	defer f.Close()
	return LoadARPA(f, cfg)
}

// LoadARPA reads a language model in ARPA format.
// Only lines starting with a numeric sign carry n-grams; headers, section
// markers and blank lines are skipped. Each n-gram line is
// "logprob<TAB>w1 w2 ...[<TAB>backoff]" with base-10 logs, which are
// converted to natural log.
func LoadARPA(r io.Reader, cfg Config) (*ARPAModel, error) {
	model := newARPAModel(cfg)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" || (line[0] != '-' && line[0] != '+') {
			continue
		}
		if err := model.parseNGramLine(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	model.buildSampler()
	return model, nil
}

func (m *ARPAModel) parseNGramLine(line string) error {
	parts := strings.Split(line, "\t")
	if len(parts) != 2 && len(parts) != 3 {
		return fmt.Errorf("expected 2 or 3 tab-separated fields, got %d: %q", len(parts), line)
	}

	logProb, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return fmt.Errorf("parse log prob: %w", err)
	}
	entry := ngramEntry{LogProb: logProb * math.Ln10}
	if len(parts) == 3 {
		bo, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return fmt.Errorf("parse backoff: %w", err)
		}
		entry.LogBackoff = bo * math.Ln10
	}

	words := strings.Fields(parts[1])
	switch len(words) {
	case 1:
		m.Unigrams[words[0]] = entry
	case 2:
		m.Bigrams[[2]string{words[0], words[1]}] = entry
	case 3:
		m.Trigrams[[3]string{words[0], words[1], words[2]}] = entry
	default:
		return fmt.Errorf("unsupported n-gram order %d: %q", len(words), parts[1])
	}
	if len(words) > m.Order {
		m.Order = len(words)
	}
	return nil
}

// buildSampler materializes the unigram distribution in sorted key order.
func (m *ARPAModel) buildSampler() {
	words := make([]string, 0, len(m.Unigrams))
	for w := range m.Unigrams {
		words = append(words, w)
	}
	sort.Strings(words)
	m.sampler = NewCounter()
	for _, w := range words {
		if w == ARPAStart {
			continue
		}
		m.sampler.Increment(w, math.Exp(m.Unigrams[w].LogProb))
	}
	_ = m.sampler.Normalize()
}

// LogProb returns ln P(word|prev2,prev1), backing off trigram → bigram →
// unigram. The bigram fallback adds the backoff of (prev2, prev1); the
// unigram fallback adds the backoff of prev1.
func (m *ARPAModel) LogProb(prev2, prev1, word string) float64 {
	if e, ok := m.Trigrams[[3]string{prev2, prev1, word}]; ok {
		return e.LogProb
	}
	if e, ok := m.Bigrams[[2]string{prev1, word}]; ok {
		return e.LogProb + m.Bigrams[[2]string{prev2, prev1}].LogBackoff
	}
	return m.logProbUnigram(word) + m.Unigrams[prev1].LogBackoff
}

func (m *ARPAModel) logProbUnigram(word string) float64 {
	if e, ok := m.Unigrams[word]; ok {
		return e.LogProb
	}
	if e, ok := m.Unigrams[ARPAUnknown]; ok {
		return e.LogProb
	}
	return mathutil.LogZero
}

// SentenceLogProb returns ln P(sentence) with two <s> and one </s>.
// Out-of-vocabulary tokens are read as <unk> when the model has one.
func (m *ARPAModel) SentenceLogProb(sentence []string) float64 {
	_, hasUnknown := m.Unigrams[ARPAUnknown]
	total := 0.0
	prev2, prev1 := ARPAStart, ARPAStart
	for _, w := range sentence {
		if _, ok := m.Unigrams[w]; !ok && hasUnknown {
			w = ARPAUnknown
		}
		total += m.LogProb(prev2, prev1, w)
		prev2, prev1 = prev1, w
	}
	return total + m.LogProb(prev2, prev1, ARPAStop)
}

// SentenceProbability implements Model. A result of 0 is reported as an
// underflow diagnostic.
func (m *ARPAModel) SentenceProbability(sentence []string) float64 {
	p := math.Exp(m.SentenceLogProb(sentence))
	if p == 0 {
		m.diag.Report(Diagnostic{Model: "sri", Word: strings.Join(sentence, " "), Reason: "underflow"})
	}
	return p
}

// GenerateSentence implements Model by sampling the unigram table.
func (m *ARPAModel) GenerateSentence(rng *rand.Rand) []string {
	return m.GenerateSentenceN(rng, 0)
}

// GenerateSentenceN is GenerateSentence with at most max tokens.
func (m *ARPAModel) GenerateSentenceN(rng *rand.Rand, max int) []string {
	var sentence []string
	if m.sampler.Len() == 0 {
		return sentence
	}
	for max <= 0 || len(sentence) < max {
		w := m.sampler.Sample(rng.Float64())
		if w == ARPAStop {
			break
		}
		if w == Unknown {
			w = ARPAUnknown
		}
		sentence = append(sentence, w)
	}
	return sentence
}

// Vocab returns all words in the unigram vocabulary.
func (m *ARPAModel) Vocab() []string {
	words := make([]string, 0, len(m.Unigrams))
	for w := range m.Unigrams {
		words = append(words, w)
	}
	return words
}

// Diagnostics implements Diagnoser.
func (m *ARPAModel) Diagnostics() *Diagnostics { return m.diag }
