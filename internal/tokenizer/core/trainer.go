package core

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// TrainOptions tunes a training run. The zero value trains silently with no frequency cutoff.
type TrainOptions struct {
	// MinFrequency stops training once the most frequent pair occurs fewer times. 0 disables it.
	MinFrequency int
	// Logger receives progress lines; nil disables logging.
	Logger *log.Logger
	// LogEvery logs every n-th merge besides the first few and the last. 0 logs only the summary.
	LogEvery int
}

// TrainResult is the outcome of a training run.
type TrainResult struct {
	Model *Model
	// Sequence is the training text after the last merge was applied.
	Sequence []int
	// Counts[i] is the frequency of the pair chosen for merge i.
	Counts []int
}

// Train learns up to nMerges merges over ids, which must be base ids of symbols. Each round counts
// the adjacent pairs, merges the most frequent one (smallest pair on ties) into id base+i and
// rewrites the sequence. Training stops early, without error, once the sequence has no pairs left.
// ctx is checked between rounds.
func Train(ctx context.Context, symbols *SymbolTable, ids []int, nMerges int, opts TrainOptions) (*TrainResult, error) {
	if nMerges < 0 {
		return nil, errors.Errorf("train: negative merge count %d", nMerges)
	}

	base := symbols.Len()
	for i, id := range ids {
		if id < 0 || id >= base {
			return nil, errors.Wrapf(&UnknownIDError{ID: id}, "train: position %d", i)
		}
	}

	current := slices.Clone(ids)
	inputLen := len(current)

	// every merge shortens the sequence, so it bounds the merge count whatever nMerges asks for
	capacity := min(nMerges, max(len(current)-1, 0))
	merges := make([]Pair, 0, capacity)
	counts := make([]int, 0, capacity)
	// expansions are tracked here only for progress lines; NewModel rebuilds them
	var vocab []string
	if opts.Logger != nil {
		vocab = symbols.Symbols()
	}

	for i := 0; i < nMerges; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "train: stopped at merge %d", i)
		}

		stats := CountPairs(current)
		pair, count, ok := MostFrequent(stats)
		if !ok {
			logf(opts.Logger, "stopped at merge %d: no pairs left", i)
			break
		}
		if count < opts.MinFrequency {
			logf(opts.Logger, "stopped at merge %d: max pair frequency %d below %d", i, count, opts.MinFrequency)
			break
		}

		idx := base + i
		current = MergePair(current, pair, idx)
		merges = append(merges, pair)
		counts = append(counts, count)

		if opts.Logger != nil {
			vocab = append(vocab, vocab[pair.Left]+vocab[pair.Right])
			if i < 5 || i == nMerges-1 || (opts.LogEvery > 0 && (i+1)%opts.LogEvery == 0) {
				opts.Logger.Printf("merge %4d/%d  %s + %s -> %s  freq=%-5d seq_len=%d",
					i+1, nMerges,
					RenderToken(vocab[pair.Left]),
					RenderToken(vocab[pair.Right]),
					RenderToken(vocab[idx]),
					count, len(current))
			}
		}
	}

	model, err := NewModel(symbols, merges)
	if err != nil {
		return nil, errors.Wrap(err, "train: build model")
	}

	if opts.Logger != nil && len(current) > 0 {
		opts.Logger.Printf("training done: vocab=%d merges=%d compression=%.2fx (%d symbols -> %d tokens)",
			model.VocabSize(), model.NumMerges(),
			float64(inputLen)/float64(len(current)), inputLen, len(current))
	}

	return &TrainResult{
		Model:    model,
		Sequence: current,
		Counts:   counts,
	}, nil
}

func logf(l *log.Logger, format string, args ...any) {
	if l != nil {
		l.Printf(format, args...)
	}
}

// RenderToken returns a printable form of a token's text, escaping control characters and
// bytes that are not valid UTF-8.
func RenderToken(s string) string {
	var sb strings.Builder
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&sb, `\x%02x`, s[0])
		case strconv.IsPrint(r):
			sb.WriteRune(r)
		default:
			q := strconv.QuoteRune(r)
			sb.WriteString(q[1 : len(q)-1])
		}
		s = s[size:]
	}
	return sb.String()
}
