package store

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/shivendrra/tokenizers/internal/tokenizer"
	"github.com/shivendrra/tokenizers/internal/tokenizer/core"
)

// File suffixes appended to a model prefix.
const (
	ModelSuffix    = ".model"
	VocabSuffix    = ".vocab"
	AlphabetSuffix = ".alphabet"
)

// SaveFiles writes tok under prefix: the merge file, the vocabulary listing, and for the basic
// variant the discovered alphabet it needs to be loaded again.
func SaveFiles(prefix string, tok *tokenizer.Tokenizer) error {
	m := tok.Model()

	if tok.Variant() == tokenizer.VariantBasic {
		err := writeFile(prefix+AlphabetSuffix, func(w io.Writer) error {
			return WritePerChar(w, m.Symbols().Symbols())
		})
		if err != nil {
			return err
		}
	}

	if err := writeFile(prefix+ModelSuffix, func(w io.Writer) error { return WriteMerges(w, m) }); err != nil {
		return err
	}
	return writeFile(prefix+VocabSuffix, func(w io.Writer) error { return WriteVocab(w, m) })
}

// LoadFiles reads a tokenizer saved by SaveFiles. Nothing is returned unless every file parses.
func LoadFiles(prefix string, variant tokenizer.Variant) (*tokenizer.Tokenizer, error) {
	var symbols *core.SymbolTable
	switch variant {
	case tokenizer.VariantPerChar:
		return nil, errors.Errorf("load %s: per-char tables are loaded with LoadPerChar", prefix)
	case tokenizer.VariantBasic:
		var alphabet []string
		err := readFile(prefix+AlphabetSuffix, func(r io.Reader) (err error) {
			alphabet, err = ReadPerChar(r)
			return err
		})
		if err != nil {
			return nil, err
		}
		if symbols, err = core.NewSymbolTable(alphabet); err != nil {
			return nil, errors.Wrapf(core.ErrInvalidFormat, "load %s: %v", prefix+AlphabetSuffix, err)
		}
	default:
		var ok bool
		if symbols, ok = tokenizer.FixedSymbols(variant); !ok {
			return nil, errors.Errorf("load %s: unknown variant %q", prefix, variant)
		}
	}

	var m *core.Model
	err := readFile(prefix+ModelSuffix, func(r io.Reader) (err error) {
		m, err = ReadMerges(r, symbols)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tokenizer.New(variant, m), nil
}

// SavePerChar writes the current table of p to prefix.model.
func SavePerChar(prefix string, p *tokenizer.PerChar) error {
	return writeFile(prefix+ModelSuffix, func(w io.Writer) error { return WritePerChar(w, p.Symbols()) })
}

// LoadPerChar reads a per-character tokenizer from prefix.model.
func LoadPerChar(prefix string) (*tokenizer.PerChar, error) {
	var symbols []string
	err := readFile(prefix+ModelSuffix, func(r io.Reader) (err error) {
		symbols, err = ReadPerChar(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	p, err := tokenizer.NewPerCharFromSymbols(symbols)
	if err != nil {
		return nil, errors.Wrapf(core.ErrInvalidFormat, "load %s: %v", prefix+ModelSuffix, err)
	}
	return p, nil
}

// writeFile writes path through a temporary file in the same directory and renames it into
// place, so readers never see a half-written model.
func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory for %s", path)
		}
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer os.Remove(f.Name())

	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return errors.Wrapf(err, "create %s", path)
	}

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	return errors.Wrapf(os.Rename(f.Name(), path), "rename %s", path)
}

func readFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	return errors.Wrapf(read(f), "load %s", path)
}
