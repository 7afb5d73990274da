// Package config loads the YAML run configuration shared by the commands.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ieee0824/nbest-lm/language"
)

var (
	// ErrInvalidConfig is returned by Validate for out-of-range settings.
	ErrInvalidConfig = stderrors.New("config: invalid configuration")
	// ErrMissingPath is returned when a required input path is empty.
	ErrMissingPath = stderrors.New("config: missing path")
)

// Config is a complete evaluation run.
type Config struct {
	Model  string   `yaml:"model"`
	Corpus []string `yaml:"corpus"`
	NBest  string   `yaml:"nbest"`
	// ARPA is the model file read when Model is "sri".
	ARPA          string  `yaml:"arpa"`
	AcousticScale float64 `yaml:"acoustic_scale"`
	// Workers bounds parallel list scoring; 0 means one per CPU.
	Workers   int `yaml:"workers"`
	CacheSize int `yaml:"cache_size"`
	// RestrictVocabulary drops hypotheses with tokens unseen in training.
	RestrictVocabulary bool      `yaml:"restrict_vocabulary"`
	Smoothing          Smoothing `yaml:"smoothing"`
	// Store is an optional SQLite file recording each run.
	Store string `yaml:"store"`
}

// Smoothing holds estimator hyperparameters.
type Smoothing struct {
	BigramLambda     float64 `yaml:"bigram_lambda"`
	TrigramLambda1   float64 `yaml:"trigram_lambda1"`
	TrigramLambda2   float64 `yaml:"trigram_lambda2"`
	KatzDiscount     float64 `yaml:"katz_discount"`
	GoodTuringCutoff int     `yaml:"good_turing_cutoff"`
}

// Default returns the reference configuration.
func Default() *Config {
	lc := language.DefaultConfig()
	return &Config{
		Model:         language.NameBaseline,
		AcousticScale: 16,
		CacheSize:     4096,
		Smoothing: Smoothing{
			BigramLambda:     lc.BigramLambda,
			TrigramLambda1:   lc.TrigramLambda1,
			TrigramLambda2:   lc.TrigramLambda2,
			KatzDiscount:     lc.KatzDiscount,
			GoodTuringCutoff: lc.GoodTuringCutoff,
		},
	}
}

// Load reads path on top of Default. It does not validate.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Language converts the smoothing settings for the estimators.
func (c *Config) Language(logger *zap.Logger) language.Config {
	return language.Config{
		BigramLambda:     c.Smoothing.BigramLambda,
		TrigramLambda1:   c.Smoothing.TrigramLambda1,
		TrigramLambda2:   c.Smoothing.TrigramLambda2,
		KatzDiscount:     c.Smoothing.KatzDiscount,
		GoodTuringCutoff: c.Smoothing.GoodTuringCutoff,
		Logger:           logger,
	}
}

// IsARPA reports whether the model is read from an ARPA file.
func (c *Config) IsARPA() bool {
	return strings.EqualFold(c.Model, language.NameSRI)
}

// Validate checks the model name, the paths the model needs and every
// numeric setting.
func (c *Config) Validate() error {
	if err := language.CheckName(c.Model); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.IsARPA() {
		if c.ARPA == "" {
			return fmt.Errorf("%w: model %q needs an ARPA file", ErrMissingPath, c.Model)
		}
	} else if len(c.Corpus) == 0 {
		return fmt.Errorf("%w: model %q needs a training corpus", ErrMissingPath, c.Model)
	}

	s := c.Smoothing
	checks := []struct {
		ok  bool
		msg string
	}{
		{inUnit(s.BigramLambda), "bigram_lambda must be in [0,1]"},
		{inUnit(s.TrigramLambda1) && inUnit(s.TrigramLambda2), "trigram lambdas must be in [0,1]"},
		{s.TrigramLambda1+s.TrigramLambda2 <= 1, "trigram lambdas must sum to at most 1"},
		{s.KatzDiscount >= 0 && s.KatzDiscount < 1, "katz_discount must be in [0,1)"},
		{s.GoodTuringCutoff >= 1, "good_turing_cutoff must be at least 1"},
		{c.AcousticScale > 0, "acoustic_scale must be positive"},
		{c.Workers >= 0, "workers must not be negative"},
		{c.CacheSize >= 0, "cache_size must not be negative"},
	}
	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, check.msg)
		}
	}
	return nil
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }
