package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/ieee0824/nbest-lm/corpus"
	"github.com/ieee0824/nbest-lm/language"
)

func main() {
	args := struct {
		Inputs []string `arg:"positional,help:training sentence files (stdin when none)"`
		Output string   `arg:"-o,--output,help:ARPA output file (default stdout)"`
		Cutoff int      `arg:"--cutoff,help:Good-Turing count cutoff"`
	}{
		Cutoff: language.DefaultConfig().GoodTuringCutoff,
	}
	arg.MustParse(&args)

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var sentences [][]string
	if len(args.Inputs) == 0 {
		sentences, err = corpus.Read(os.Stdin)
	} else {
		sentences, err = corpus.ReadFiles(args.Inputs...)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "read corpus: %v\n", err)
		os.Exit(1)
	}

	cfg := language.DefaultConfig()
	cfg.GoodTuringCutoff = args.Cutoff
	cfg.Logger = logger
	model, err := language.NewGoodTuringBigram(sentences, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "train: %v\n", err)
		os.Exit(1)
	}

	w := os.Stdout
	if args.Output != "" {
		w, err = os.Create(args.Output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", args.Output, err)
			os.Exit(1)
		}
		defer w.Close()
	}
	if err := model.WriteARPA(w); err != nil {
		fmt.Fprintf(os.Stderr, "write ARPA: %v\n", err)
		os.Exit(1)
	}

	logger.Info("exported model",
		zap.String("sentences", humanize.Comma(int64(len(sentences)))),
		zap.String("vocabulary", humanize.Comma(int64(len(model.Vocabulary())))),
		zap.Int("cutoff", args.Cutoff),
		zap.Int("diagnostics", model.Diagnostics().Len()),
	)
}
