package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/nbest-lm/language"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultMatchesEstimators(t *testing.T) {
	cfg := Default()
	lc := cfg.Language(nil)
	want := language.DefaultConfig()
	assert.Equal(t, want.BigramLambda, lc.BigramLambda)
	assert.Equal(t, want.TrigramLambda1, lc.TrigramLambda1)
	assert.Equal(t, want.TrigramLambda2, lc.TrigramLambda2)
	assert.Equal(t, want.KatzDiscount, lc.KatzDiscount)
	assert.Equal(t, want.GoodTuringCutoff, lc.GoodTuringCutoff)
	assert.Equal(t, 16.0, cfg.AcousticScale)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `model: katz-bigram
corpus:
  - data/train.txt
nbest: data/nbest
workers: 4
smoothing:
  katz_discount: 0.25
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "katz-bigram", cfg.Model)
	assert.Equal(t, []string{"data/train.txt"}, cfg.Corpus)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 0.25, cfg.Smoothing.KatzDiscount)
	assert.Equal(t, 0.6, cfg.Smoothing.BigramLambda, "unset keys keep defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "error = %v", err)

	_, err = Load(writeConfig(t, "model: [unclosed\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Corpus = []string{"train.txt"}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"default with corpus", func(*Config) {}, nil},
		{"sri with file", func(c *Config) { c.Model, c.Corpus, c.ARPA = "SRI", nil, "lm.arpa" }, nil},
		{"sri without file", func(c *Config) { c.Model = "sri" }, ErrMissingPath},
		{"no corpus", func(c *Config) { c.Corpus = nil }, ErrMissingPath},
		{"unknown model", func(c *Config) { c.Model = "fivegram" }, language.ErrUnknownModel},
		{"katz trigram", func(c *Config) { c.Model = "katz-trigram" }, language.ErrNotImplemented},
		{"lambda out of range", func(c *Config) { c.Smoothing.BigramLambda = 1.5 }, ErrInvalidConfig},
		{"trigram lambdas too large", func(c *Config) { c.Smoothing.TrigramLambda1 = 0.8 }, ErrInvalidConfig},
		{"discount too large", func(c *Config) { c.Smoothing.KatzDiscount = 1 }, ErrInvalidConfig},
		{"zero cutoff", func(c *Config) { c.Smoothing.GoodTuringCutoff = 0 }, ErrInvalidConfig},
		{"zero scale", func(c *Config) { c.AcousticScale = 0 }, ErrInvalidConfig},
		{"negative workers", func(c *Config) { c.Workers = -1 }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "error = %v, want %v", err, tt.want)
		})
	}
}
