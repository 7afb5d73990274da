package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/ieee0824/nbest-lm/corpus"
	"github.com/ieee0824/nbest-lm/eval"
	"github.com/ieee0824/nbest-lm/language"
	"github.com/ieee0824/nbest-lm/nbest"
)

// paramSet is one grid point. Only the fields the model reads matter.
type paramSet struct {
	Lambda1  float64
	Lambda2  float64
	Discount float64
}

type result struct {
	params     paramSet
	wer        float64
	perplexity float64
}

func main() {
	args := struct {
		Model    string   `arg:"--model,help:bigram trigram or katz-bigram"`
		Corpus   []string `arg:"--corpus,required,help:training sentence files"`
		NBest    string   `arg:"--nbest,required,help:n-best directory"`
		Lambdas  string   `arg:"--lambdas,help:comma-separated interpolation weights"`
		Discount string   `arg:"--discounts,help:comma-separated Katz discounts"`
		Scale    float64  `arg:"--scale,help:acoustic score divisor"`
		Workers  int      `arg:"--workers,help:parallel workers (0 = NumCPU)"`
		Top      int      `arg:"--top,help:rows to print (0 = all)"`
	}{
		Model:    language.NameBigram,
		Lambdas:  "0.1,0.2,0.3,0.4,0.5,0.6,0.7,0.8,0.9",
		Discount: "0.05,0.1,0.2,0.3,0.5,0.7,0.9",
		Scale:    eval.DefaultAcousticScale,
	}
	arg.MustParse(&args)

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if args.Workers <= 0 {
		args.Workers = runtime.NumCPU()
	}
	model := strings.ToLower(args.Model)
	grid, err := buildGrid(model, parseFloats(args.Lambdas), parseFloats(args.Discount))
	if err != nil {
		fmt.Fprintf(os.Stderr, "grid: %v\n", err)
		os.Exit(1)
	}

	sentences, err := corpus.ReadFiles(args.Corpus...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read corpus: %v\n", err)
		os.Exit(1)
	}
	lists, err := nbest.ReadDir(args.NBest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read n-best lists: %v\n", err)
		os.Exit(1)
	}
	golds := nbest.Golds(lists)
	logger.Info("loaded data",
		zap.String("sentences", humanize.Comma(int64(len(sentences)))),
		zap.Int("lists", len(lists)),
		zap.Int("combinations", len(grid)),
		zap.Int("workers", args.Workers),
	)

	// Models are independent, so each grid point trains and scores on its
	// own goroutine.
	results := make([]result, len(grid))
	var wg sync.WaitGroup
	sem := make(chan struct{}, args.Workers)
	for gi, ps := range grid {
		wg.Add(1)
		sem <- struct{}{}
		go func(gi int, ps paramSet) {
			defer wg.Done()
			defer func() { <-sem }()
			m := train(model, sentences, ps)
			results[gi] = result{
				params:     ps,
				wer:        eval.WordErrorRate(eval.RescoreAll(m, lists, args.Scale)),
				perplexity: eval.Perplexity(m, golds),
			}
		}(gi, ps)
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].wer < results[j].wer
	})

	fmt.Printf("%-10s %-10s %-10s %10s %12s\n", "Lambda1", "Lambda2", "Discount", "WER", "Perplexity")
	fmt.Println(strings.Repeat("-", 56))
	for i, r := range results {
		if args.Top > 0 && i >= args.Top {
			break
		}
		fmt.Printf("%-10.2f %-10.2f %-10.2f %10.4f %12.2f\n",
			r.params.Lambda1, r.params.Lambda2, r.params.Discount, r.wer, r.perplexity)
	}
}

// buildGrid enumerates the settings model depends on.
func buildGrid(model string, lambdas, discounts []float64) ([]paramSet, error) {
	var grid []paramSet
	switch model {
	case language.NameBigram:
		for _, l := range lambdas {
			grid = append(grid, paramSet{Lambda1: l})
		}
	case language.NameTrigram:
		for _, l1 := range lambdas {
			for _, l2 := range lambdas {
				if l1+l2 <= 1 {
					grid = append(grid, paramSet{Lambda1: l1, Lambda2: l2})
				}
			}
		}
	case language.NameKatzBigram:
		for _, d := range discounts {
			grid = append(grid, paramSet{Discount: d})
		}
	default:
		return nil, fmt.Errorf("model %q has no tunable weights", model)
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("empty grid for %s", model)
	}
	return grid, nil
}

func train(model string, sentences [][]string, ps paramSet) language.Model {
	cfg := language.DefaultConfig()
	switch model {
	case language.NameBigram:
		cfg.BigramLambda = ps.Lambda1
		return language.NewBigram(sentences, cfg)
	case language.NameTrigram:
		cfg.TrigramLambda1, cfg.TrigramLambda2 = ps.Lambda1, ps.Lambda2
		return language.NewTrigram(sentences, cfg)
	default:
		cfg.KatzDiscount = ps.Discount
		return language.NewKatzBigram(sentences, cfg)
	}
}

func parseFloats(s string) []float64 {
	var vals []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid float %q: %v\n", part, err)
			continue
		}
		vals = append(vals, v)
	}
	return vals
}
