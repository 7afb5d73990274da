// Package corpus reads training sentences: one sentence per line, tokens
// separated by whitespace.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLine bounds a single sentence line.
const maxLine = 1024 * 1024

// Read returns the lower-cased, whitespace-tokenized sentences in r.
// Blank lines are skipped.
func Read(r io.Reader) ([][]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	var sentences [][]string
	for scanner.Scan() {
		words := Tokenize(scanner.Text())
		if len(words) == 0 {
			continue
		}
		sentences = append(sentences, words)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return sentences, nil
}

// ReadFiles reads every path in order and concatenates their sentences.
func ReadFiles(paths ...string) ([][]string, error) {
	var sentences [][]string
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open corpus: %w", err)
		}
		s, err := Read(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		sentences = append(sentences, s...)
	}
	return sentences, nil
}

// Tokenize lower-cases line and splits it on whitespace.
func Tokenize(line string) []string {
	return strings.Fields(strings.ToLower(line))
}
