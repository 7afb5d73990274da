// Package nbestlm evaluates n-gram language models by rescoring N-best
// hypothesis lists.
package nbestlm

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/ieee0824/nbest-lm/config"
	"github.com/ieee0824/nbest-lm/eval"
	"github.com/ieee0824/nbest-lm/language"
	"github.com/ieee0824/nbest-lm/nbest"
	"github.com/ieee0824/nbest-lm/store"
)

// ErrNoLists is returned when there is nothing to evaluate.
var ErrNoLists = errors.New("nbestlm: no n-best lists")

// Evaluator rescores N-best lists with a frozen language model.
type Evaluator struct {
	Model         language.Model
	AcousticScale float64
	Workers       int

	cacheSize int
	seed      int64
	logger    *zap.Logger
	cache     *lru.Cache[string, float64]
	score     eval.ScoreFunc
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithAcousticScale sets the divisor applied to acoustic scores.
func WithAcousticScale(scale float64) Option {
	return func(e *Evaluator) {
		e.AcousticScale = scale
	}
}

// WithWorkers sets the number of lists scored in parallel. Values below 1
// use one worker per CPU.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		e.Workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// WithCacheSize bounds the number of memoized sentence scores. Zero
// disables the cache.
func WithCacheSize(n int) Option {
	return func(e *Evaluator) {
		e.cacheSize = n
	}
}

// WithSeed seeds the sampled-path baseline.
func WithSeed(seed int64) Option {
	return func(e *Evaluator) {
		e.seed = seed
	}
}

// NewEvaluator creates an Evaluator for m.
func NewEvaluator(m language.Model, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		Model:         m,
		AcousticScale: eval.DefaultAcousticScale,
		cacheSize:     4096,
		seed:          1,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Workers < 1 {
		e.Workers = runtime.NumCPU()
	}
	if e.AcousticScale <= 0 {
		return nil, fmt.Errorf("acoustic scale must be positive, got %v", e.AcousticScale)
	}

	e.score = eval.ModelScore(m)
	if e.cacheSize > 0 {
		cache, err := lru.New[string, float64](e.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create score cache: %w", err)
		}
		e.cache = cache
	}
	return e, nil
}

// Score returns ln P(sentence), memoized when the cache is enabled.
func (e *Evaluator) Score(sentence []string) float64 {
	if e.cache == nil {
		return e.score(sentence)
	}
	key := nbest.Key(sentence)
	if lp, ok := e.cache.Get(key); ok {
		return lp
	}
	lp := e.score(sentence)
	e.cache.Add(key, lp)
	return lp
}

// Report is the outcome of evaluating one model on a set of lists.
type Report struct {
	Lists int
	// Perplexity is measured on the gold sentences.
	Perplexity    float64
	WER           float64
	BestPath      float64
	WorstPath     float64
	RandomChoice  float64
	SampledChoice float64
	Summary       eval.Summary
	Results       []eval.ListResult
	// Diagnostics counts numerical defects reported by the model so far.
	Diagnostics int
}

// Evaluate rescores every list and computes perplexity, WER and the
// baselines. Lists are scored in parallel; results keep list order.
func (e *Evaluator) Evaluate(lists []*nbest.List) (*Report, error) {
	if len(lists) == 0 {
		return nil, ErrNoLists
	}
	e.logger.Debug("evaluating", zap.Int("lists", len(lists)), zap.Int("workers", e.Workers))

	results := make([]eval.ListResult, len(lists))
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.Workers)
	for i, l := range lists {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, l *nbest.List) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = eval.Rescore(e.Score, l, e.AcousticScale)
		}(i, l)
	}
	wg.Wait()

	summary, err := eval.Summarize(results)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	rep := &Report{
		Lists:        len(lists),
		Perplexity:   eval.PerplexityOf(e.Score, nbest.Golds(lists)),
		WER:          eval.WordErrorRate(results),
		BestPath:     eval.BestPath(lists),
		WorstPath:    eval.WorstPath(lists),
		RandomChoice: eval.RandomChoice(lists),
		Summary:      summary,
		Results:      results,
	}
	rep.SampledChoice = eval.SampleChoice(lists, rand.New(rand.NewSource(e.seed)))
	if d, ok := e.Model.(language.Diagnoser); ok {
		rep.Diagnostics = d.Diagnostics().Len()
	}
	e.logger.Info("evaluated",
		zap.Int("lists", rep.Lists),
		zap.Float64("perplexity", rep.Perplexity),
		zap.Float64("wer", rep.WER),
		zap.Int("diagnostics", rep.Diagnostics),
	)
	return rep, nil
}

// Run converts the report into a stored run.
func (r *Report) Run(model string, params map[string]float64) *store.Run {
	run := &store.Run{
		Model:      model,
		Perplexity: r.Perplexity,
		WER:        r.WER,
		BestPath:   r.BestPath,
		WorstPath:  r.WorstPath,
		Random:     r.RandomChoice,
		Params:     params,
		Lists:      make([]store.ListOutcome, len(r.Results)),
	}
	for i, res := range r.Results {
		run.Lists[i] = store.ListOutcome{
			ListID:   res.ID,
			Chosen:   res.Chosen.Words,
			Distance: res.Distance,
			Ties:     res.Ties,
		}
	}
	return run
}

// LoadModel builds the model cfg selects: read from cfg.ARPA for "sri",
// trained on sentences otherwise. cfg is validated first.
func LoadModel(cfg *config.Config, sentences [][]string, logger *zap.Logger) (language.Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lc := cfg.Language(logger)
	if cfg.IsARPA() {
		m, err := language.LoadARPAFile(cfg.ARPA, lc)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", cfg.ARPA, err)
		}
		return m, nil
	}
	m, err := language.New(strings.ToLower(cfg.Model), sentences, lc)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", cfg.Model, err)
	}
	return m, nil
}

// Params flattens the smoothing settings for storage.
func Params(cfg *config.Config) map[string]float64 {
	s := cfg.Smoothing
	return map[string]float64{
		"bigram_lambda":      s.BigramLambda,
		"trigram_lambda1":    s.TrigramLambda1,
		"trigram_lambda2":    s.TrigramLambda2,
		"katz_discount":      s.KatzDiscount,
		"good_turing_cutoff": float64(s.GoodTuringCutoff),
		"acoustic_scale":     cfg.AcousticScale,
	}
}
