package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	nbestlm "github.com/ieee0824/nbest-lm"
	"github.com/ieee0824/nbest-lm/config"
	"github.com/ieee0824/nbest-lm/corpus"
	"github.com/ieee0824/nbest-lm/language"
	"github.com/ieee0824/nbest-lm/nbest"
	"github.com/ieee0824/nbest-lm/store"
)

// Layout of a --path data directory.
const (
	trainFile = "train.txt"
	nbestDir  = "nbest"
)

type options struct {
	Model    string   `arg:"--model,help:baseline sri bigram trigram katz-bigram katz-bigram-pp"`
	Path     string   `arg:"--path,help:data directory holding train.txt and nbest/"`
	Corpus   []string `arg:"--corpus,help:training sentence files (override --path)"`
	NBest    string   `arg:"--nbest,help:n-best directory (overrides --path)"`
	SRI      string   `arg:"--sri,help:ARPA model file for --model sri"`
	Config   string   `arg:"--config,help:YAML run configuration"`
	Verbose  bool     `arg:"-v,--verbose,help:print every chosen hypothesis"`
	Quiet    bool     `arg:"-q,--quiet,help:suppress per-list output and logs"`
	Generate int      `arg:"--generate,help:number of sentences to sample from the model"`
	Seed     int64    `arg:"--seed,help:seed for sampled sentences and the sampled path"`
	Workers  int      `arg:"--workers,help:parallel list scoring (0 = NumCPU)"`
	Restrict bool     `arg:"--restrict,help:drop hypotheses with out-of-vocabulary tokens"`
	DB       string   `arg:"--db,help:SQLite file recording the run"`
}

func main() {
	opts := options{Seed: 1}
	arg.MustParse(&opts)

	logger := newLogger(opts.Verbose, opts.Quiet)
	defer logger.Sync()

	cfg, err := buildConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := checkConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	verbose := opts.Verbose && !opts.Quiet

	var sentences [][]string
	if !cfg.IsARPA() {
		sentences, err = corpus.ReadFiles(cfg.Corpus...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read corpus: %v\n", err)
			os.Exit(1)
		}
		logger.Info("read corpus", zap.String("sentences", humanize.Comma(int64(len(sentences)))))
	}

	lists, err := nbest.ReadDir(cfg.NBest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read n-best lists: %v\n", err)
		os.Exit(1)
	}
	if cfg.RestrictVocabulary && sentences != nil {
		before := len(lists)
		lists = nbest.Restrict(lists, nbest.Vocabulary(sentences))
		logger.Info("restricted n-best lists", zap.Int("before", before), zap.Int("after", len(lists)))
	}

	model, err := nbestlm.LoadModel(cfg, sentences, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load model: %v\n", err)
		os.Exit(1)
	}

	ev, err := nbestlm.NewEvaluator(model,
		nbestlm.WithAcousticScale(cfg.AcousticScale),
		nbestlm.WithWorkers(cfg.Workers),
		nbestlm.WithCacheSize(cfg.CacheSize),
		nbestlm.WithSeed(opts.Seed),
		nbestlm.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluator: %v\n", err)
		os.Exit(1)
	}
	rep, err := ev.Evaluate(lists)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluate: %v\n", err)
		os.Exit(1)
	}

	if verbose {
		for i, res := range rep.Results {
			fmt.Println()
			printHypothesis("GUESS:", res.Chosen.Words, res.Chosen.Acoustic, ev)
			printHypothesis("GOLD:", lists[i].Gold, goldAcoustic(lists[i]), ev)
		}
		fmt.Println()
	}
	printReport(rep)

	if opts.Generate > 0 {
		printGenerated(model, opts.Generate, opts.Seed)
	}

	if cfg.Store != "" {
		ctx := context.Background()
		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open store: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
		id, err := st.SaveRun(ctx, rep.Run(strings.ToLower(cfg.Model), nbestlm.Params(cfg)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "save run: %v\n", err)
			os.Exit(1)
		}
		logger.Info("saved run", zap.String("id", id), zap.String("store", cfg.Store))
	}
}

func newLogger(verbose, quiet bool) *zap.Logger {
	if quiet {
		return zap.NewNop()
	}
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// buildConfig layers command-line flags over the configuration file.
func buildConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, err
		}
	}
	if opts.Model != "" {
		cfg.Model = opts.Model
	}
	if opts.Path != "" {
		cfg.Corpus = []string{filepath.Join(opts.Path, trainFile)}
		cfg.NBest = filepath.Join(opts.Path, nbestDir)
	}
	if len(opts.Corpus) > 0 {
		cfg.Corpus = opts.Corpus
	}
	if opts.NBest != "" {
		cfg.NBest = opts.NBest
	}
	if opts.SRI != "" {
		cfg.ARPA = opts.SRI
	}
	if opts.Workers != 0 {
		cfg.Workers = opts.Workers
	}
	if opts.Restrict {
		cfg.RestrictVocabulary = true
	}
	if opts.DB != "" {
		cfg.Store = opts.DB
	}
	return cfg, nil
}

// checkConfig validates cfg and requires an n-best directory. Errors carry
// the config package prefix already.
func checkConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.NBest == "" {
		return fmt.Errorf("%w: n-best directory", config.ErrMissingPath)
	}
	return nil
}

// goldAcoustic returns the acoustic score of the gold sentence when it is
// among the hypotheses, NaN otherwise.
func goldAcoustic(l *nbest.List) float64 {
	key := nbest.Key(l.Gold)
	for _, h := range l.Hypotheses {
		if nbest.Key(h.Words) == key {
			return h.Acoustic
		}
	}
	return math.NaN()
}

func printHypothesis(prefix string, words []string, acoustic float64, ev *nbestlm.Evaluator) {
	am := acoustic / ev.AcousticScale
	lm := ev.Score(words)
	fmt.Printf("%s\tAM: %.3f\tLM: %.3f\tTotal: %.3f\t%s\n", prefix, am, lm, am+lm, strings.Join(words, " "))
}

func printReport(rep *nbestlm.Report) {
	fmt.Printf("Lists:            %s\n", humanize.Comma(int64(rep.Lists)))
	fmt.Printf("HUB Perplexity:   %.4f\n", rep.Perplexity)
	fmt.Println("WER Baselines:")
	fmt.Printf("  Best Path:      %.4f\n", rep.BestPath)
	fmt.Printf("  Worst Path:     %.4f\n", rep.WorstPath)
	fmt.Printf("  Avg Path:       %.4f\n", rep.RandomChoice)
	fmt.Printf("  Sampled Path:   %.4f\n", rep.SampledChoice)
	fmt.Printf("HUB Word Error Rate: %.4f\n", rep.WER)
	s := rep.Summary
	fmt.Printf("Per-list WER: mean %.4f  median %.4f  p90 %.4f  max %.4f  exact %d/%d\n",
		s.Mean, s.Median, s.P90, s.Max, s.Perfect, s.Lists)
	if rep.Diagnostics > 0 {
		fmt.Printf("Numerical diagnostics: %s\n", humanize.Comma(int64(rep.Diagnostics)))
	}
}

// maxGenerated caps sampled sentences from models that rarely emit stop.
const maxGenerated = 100

type cappedGenerator interface {
	GenerateSentenceN(rng *rand.Rand, max int) []string
}

func printGenerated(m language.Model, n int, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	fmt.Println("Generated Sentences:")
	for i := 0; i < n; i++ {
		var s []string
		if g, ok := m.(cappedGenerator); ok {
			s = g.GenerateSentenceN(rng, maxGenerated)
		} else {
			s = m.GenerateSentence(rng)
		}
		fmt.Printf("  %s\n", strings.Join(s, " "))
	}
}
