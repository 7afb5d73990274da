package language

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownModel is returned for an unrecognized model name.
	ErrUnknownModel = errors.New("language: unknown model")
	// ErrNotImplemented is returned for a recognized model that has no
	// implementation.
	ErrNotImplemented = errors.New("language: model not implemented")
)

// Model names accepted by New and by the command line.
const (
	NameBaseline     = "baseline"
	NameSRI          = "sri"
	NameBigram       = "bigram"
	NameTrigram      = "trigram"
	NameKatzBigram   = "katz-bigram"
	NameKatzBigramPP = "katz-bigram-pp"
	NameKatzTrigram  = "katz-trigram"
)

// Names lists every model name that New or an ARPA load can satisfy.
var Names = []string{NameBaseline, NameSRI, NameBigram, NameTrigram, NameKatzBigram, NameKatzBigramPP}

// CheckName reports whether name selects a buildable model.
func CheckName(name string) error {
	switch n := strings.ToLower(name); n {
	case NameBaseline, NameSRI, NameBigram, NameTrigram, NameKatzBigram, NameKatzBigramPP:
		return nil
	case NameKatzTrigram:
		return fmt.Errorf("%w: %s", ErrNotImplemented, n)
	default:
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownModel, name, strings.Join(Names, ", "))
	}
}

// New trains the model selected by name on sentences. The "sri" model is
// read from a file and cannot be trained; use LoadARPAFile.
func New(name string, sentences [][]string, cfg Config) (Model, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	switch strings.ToLower(name) {
	case NameBaseline:
		return NewUnigram(sentences), nil
	case NameBigram:
		return NewBigram(sentences, cfg), nil
	case NameTrigram:
		return NewTrigram(sentences, cfg), nil
	case NameKatzBigram:
		return NewKatzBigram(sentences, cfg), nil
	case NameKatzBigramPP:
		m, err := NewGoodTuringBigram(sentences, cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s is loaded from an ARPA file", ErrUnknownModel, name)
}
