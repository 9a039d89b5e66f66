// Package store reads and writes tokenizer models as plain text files.
package store

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/shivendrra/tokenizers/internal/tokenizer/core"
)

// WriteMerges writes one "<left> <right>" line per merge, in learning order.
func WriteMerges(w io.Writer, m *core.Model) error {
	bw := bufio.NewWriter(w)
	for _, p := range m.Merges() {
		if _, err := fmt.Fprintf(bw, "%d %d\n", p.Left, p.Right); err != nil {
			return errors.Wrap(err, "write merges")
		}
	}
	return errors.Wrap(bw.Flush(), "write merges")
}

// ReadMerges rebuilds a model from a merge file over symbols. Line i (ignoring blank lines)
// defines id symbols.Len()+i, so both ids on it must already be defined. Any malformed line
// fails the whole read with core.ErrInvalidFormat.
func ReadMerges(r io.Reader, symbols *core.SymbolTable) (*core.Model, error) {
	var merges []core.Pair
	seen := make(map[core.Pair]int)
	next := symbols.Len()

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		p, err := parsePair(line)
		if err != nil {
			return nil, core.InvalidFormatf("merges line %d: %v", lineNo, err)
		}
		if p.Left >= next || p.Right >= next {
			return nil, core.InvalidFormatf("merges line %d: pair (%d, %d) references an id not defined before %d",
				lineNo, p.Left, p.Right, next)
		}
		if prev, ok := seen[p]; ok {
			return nil, core.InvalidFormatf("merges line %d: pair (%d, %d) already merged on line %d",
				lineNo, p.Left, p.Right, prev)
		}

		seen[p] = lineNo
		merges = append(merges, p)
		next++
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read merges")
	}

	m, err := core.NewModel(symbols, merges)
	if err != nil {
		return nil, errors.Wrap(err, "read merges")
	}
	return m, nil
}

func parsePair(line string) (core.Pair, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return core.Pair{}, errors.Errorf("want 2 ids, got %d fields", len(fields))
	}

	var ids [2]int
	for i, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil {
			return core.Pair{}, errors.Errorf("bad id %q", f)
		}
		if id < 0 {
			return core.Pair{}, errors.Errorf("negative id %d", id)
		}
		ids[i] = id
	}
	return core.Pair{Left: ids[0], Right: ids[1]}, nil
}
