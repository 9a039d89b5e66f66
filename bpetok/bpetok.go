// Package bpetok trains, stores and runs byte pair encoding tokenizers.
//
// A tokenizer starts from a base alphabet (characters discovered in the training text, the 256
// byte values, or the DNA bases) and learns merges of the most frequent adjacent pair until it
// has the requested number of merges or no pairs are left. Encoding replays those merges, and
// decoding concatenates the text of each token.
package bpetok

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shivendrra/tokenizers/internal/store"
	"github.com/shivendrra/tokenizers/internal/tokenizer"
	"github.com/shivendrra/tokenizers/internal/tokenizer/core"
)

// Tokenizer is a trained model, safe for concurrent use.
type Tokenizer = tokenizer.Tokenizer

// Encoder encodes a byte stream chunk by chunk.
type Encoder = tokenizer.Encoder

// Decoder decodes token ids chunk by chunk.
type Decoder = tokenizer.Decoder

// PerChar is the merge-free per-character tokenizer.
type PerChar = tokenizer.PerChar

// Variant names a base alphabet.
type Variant = tokenizer.Variant

// Option adjusts training.
type Option = tokenizer.Option

// Error kinds, matched with errors.Is.
var (
	ErrUnknownSymbol = core.ErrUnknownSymbol
	ErrUnknownID     = core.ErrUnknownID
	ErrInvalidFormat = core.ErrInvalidFormat
)

// Variants.
const (
	Basic          = tokenizer.VariantBasic
	Bytes          = tokenizer.VariantBytes
	DNA            = tokenizer.VariantDNA
	PerCharVariant = tokenizer.VariantPerChar
)

// Training options.
var (
	WithLogger       = tokenizer.WithLogger
	WithLogEvery     = tokenizer.WithLogEvery
	WithMinFrequency = tokenizer.WithMinFrequency
)

// Train learns up to nMerges merges of text over the alphabet of variant, which must not be
// the per-character variant.
func Train(ctx context.Context, variant Variant, text string, nMerges int, opts ...Option) (*Tokenizer, error) {
	switch variant {
	case Basic:
		return tokenizer.Train(ctx, text, nMerges, opts...)
	case Bytes:
		return tokenizer.TrainBytes(ctx, text, nMerges, opts...)
	case DNA:
		return tokenizer.TrainDNA(ctx, text, nMerges, opts...)
	}
	return nil, errors.Errorf("train: variant %q does not learn merges", variant)
}

// NewPerChar returns an empty per-character tokenizer.
func NewPerChar() *PerChar { return tokenizer.NewPerChar() }

// Save writes tok to files under prefix.
func Save(prefix string, tok *Tokenizer) error { return store.SaveFiles(prefix, tok) }

// Load reads a tokenizer of the given variant saved under prefix.
func Load(prefix string, variant Variant) (*Tokenizer, error) { return store.LoadFiles(prefix, variant) }

// SavePerChar writes p to prefix.model.
func SavePerChar(prefix string, p *PerChar) error { return store.SavePerChar(prefix, p) }

// LoadPerChar reads a per-character tokenizer from prefix.model.
func LoadPerChar(prefix string) (*PerChar, error) { return store.LoadPerChar(prefix) }
