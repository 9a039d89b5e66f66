package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"

	"github.com/pkg/errors"

	"github.com/shivendrra/tokenizers/internal/config"
	"github.com/shivendrra/tokenizers/internal/store"
	"github.com/shivendrra/tokenizers/internal/tokenizer"
	"github.com/shivendrra/tokenizers/internal/tokenizer/core"
)

func runTrain(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	var (
		configPath   = fs.String("config", "", "YAML file listing the models to train")
		variant      = fs.String("variant", string(tokenizer.VariantBasic), "Tokenizer variant: basic, bytes, dna, per-char")
		input        = fs.String("input", "", "Training text file")
		output       = fs.String("output", "", "Output file prefix")
		merges       = fs.Int("merges", -1, "Number of merges to learn")
		vocabSize    = fs.Int("vocab-size", -1, "Target vocabulary size, instead of -merges")
		minFrequency = fs.Int("min-frequency", 0, "Stop once the best pair occurs fewer times")
		logEvery     = fs.Int("log-every", config.DefaultLogEvery, "Log every n-th merge")
	)
	fs.Parse(args)

	var cfg *config.Config
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	} else {
		m := config.Model{
			Name:         *output,
			Variant:      *variant,
			Input:        *input,
			MinFrequency: *minFrequency,
			Output:       *output,
		}
		if *merges >= 0 {
			m.Merges = merges
		}
		if *vocabSize >= 0 {
			m.VocabSize = vocabSize
		}
		if m.Merges == nil && m.VocabSize == nil && m.Variant != string(tokenizer.VariantPerChar) {
			n := config.DefaultMerges
			m.Merges = &n
		}
		cfg = &config.Config{Models: []config.Model{m}, LogEvery: logEvery}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			fs.Usage()
			os.Exit(2)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errs := make([]error, len(cfg.Models))
	var wg sync.WaitGroup
	for i := range cfg.Models {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = trainModel(ctx, &cfg.Models[i], *cfg.LogEvery)
		}(i)
	}
	wg.Wait()

	failed := false
	for i, err := range errs {
		if err != nil {
			log.Printf("%s: %v", cfg.Models[i].Name, err)
			failed = true
		}
	}
	if failed {
		stop()
		os.Exit(1)
	}
}

func trainModel(ctx context.Context, m *config.Model, logEvery int) error {
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", m.Name), log.LstdFlags)

	data, err := os.ReadFile(m.Input)
	if err != nil {
		return errors.Wrap(err, "read input")
	}
	text := string(data)

	variant, err := tokenizer.ParseVariant(m.Variant)
	if err != nil {
		return err
	}

	if variant == tokenizer.VariantPerChar {
		p := tokenizer.NewPerChar()
		p.Train(text)
		if err := store.SavePerChar(m.Output, p); err != nil {
			return err
		}
		logger.Printf("saved %d characters to %s%s", p.VocabSize(), m.Output, store.ModelSuffix)
		return nil
	}

	symbols, ok := tokenizer.FixedSymbols(variant)
	if !ok {
		symbols = core.DiscoverSymbols(text)
	}
	n, err := m.MergeCount(symbols.Len())
	if err != nil {
		return err
	}

	logger.Printf("training %s tokenizer on %s: %d bytes, %d base symbols, %d merges",
		variant, m.Input, len(data), symbols.Len(), n)
	tok, err := tokenizer.TrainWithSymbols(ctx, variant, symbols, text, n,
		tokenizer.WithLogger(logger),
		tokenizer.WithLogEvery(logEvery),
		tokenizer.WithMinFrequency(m.MinFrequency),
	)
	if err != nil {
		return err
	}

	if err := store.SaveFiles(m.Output, tok); err != nil {
		return err
	}
	logger.Printf("saved %s%s and %s%s", m.Output, store.ModelSuffix, m.Output, store.VocabSuffix)
	return nil
}
