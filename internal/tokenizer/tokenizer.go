package tokenizer

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"github.com/shivendrra/tokenizers/internal/tokenizer/core"
)

// Variant names the base alphabet a tokenizer starts from.
type Variant string

const (
	// VariantBasic discovers its alphabet from the sorted unique characters of the training text.
	VariantBasic Variant = "basic"
	// VariantBytes starts from the 256 byte values.
	VariantBytes Variant = "bytes"
	// VariantDNA starts from line break plus the four nucleotide bases.
	VariantDNA Variant = "dna"
	// VariantPerChar maps characters to ids with no merges.
	VariantPerChar Variant = "per-char"
)

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case VariantBasic, VariantBytes, VariantDNA, VariantPerChar:
		return v, nil
	}
	return "", errors.Errorf("unknown tokenizer variant %q", s)
}

// FixedSymbols returns the built-in alphabet of a variant. ok is false for variants that
// discover their alphabet from text.
func FixedSymbols(v Variant) (st *core.SymbolTable, ok bool) {
	switch v {
	case VariantBytes:
		return core.ByteSymbols(), true
	case VariantDNA:
		return core.DNASymbols(), true
	}
	return nil, false
}

// Encoder interface
type Encoder interface {
	/*
		Feed consumes the next chunk of raw bytes from the input stream. It may emit zero or more
		completed token IDs.
	*/
	Feed(chunk []byte) ([]int, error)

	/*
		Flush tells the encoder that the stream is complete. It returns any remaining token IDs that were buffered
		because they were being waited on to see if there are more merges to apply on them. After flush, the encoder
		is reset to a clean state and can be reused for a new stream.
	*/
	Flush() ([]int, error)
}

// Decoder interface, no need for flush right now because we won't be maintaining internal buffer
type Decoder interface {
	/*
		Feed consumes token IDs and returns zero or more decoded bytes. The returned slice aliases internal memory
		and is only valid until the next call, so the caller must treat it as read-only and copy it if they want to keep it.
	*/
	Feed(tokens []int) ([]byte, error)
}

// Tokenizer is a trained BPE tokenizer. It wraps an immutable model and is safe for concurrent use.
type Tokenizer struct {
	variant Variant
	model   *core.Model
}

// Option adjusts a training run.
type Option func(*core.TrainOptions)

// WithLogger sends training progress to l.
func WithLogger(l *log.Logger) Option {
	return func(o *core.TrainOptions) { o.Logger = l }
}

// WithLogEvery logs every n-th merge.
func WithLogEvery(n int) Option {
	return func(o *core.TrainOptions) { o.LogEvery = n }
}

// WithMinFrequency stops training once the best pair occurs fewer than n times.
func WithMinFrequency(n int) Option {
	return func(o *core.TrainOptions) { o.MinFrequency = n }
}

// Train learns nMerges merges over an alphabet discovered from text.
func Train(ctx context.Context, text string, nMerges int, opts ...Option) (*Tokenizer, error) {
	return TrainWithSymbols(ctx, VariantBasic, core.DiscoverSymbols(text), text, nMerges, opts...)
}

// TrainDNA learns nMerges merges over the fixed nucleotide alphabet.
func TrainDNA(ctx context.Context, text string, nMerges int, opts ...Option) (*Tokenizer, error) {
	return TrainWithSymbols(ctx, VariantDNA, core.DNASymbols(), text, nMerges, opts...)
}

// TrainBytes learns nMerges merges over the 256 byte values.
func TrainBytes(ctx context.Context, text string, nMerges int, opts ...Option) (*Tokenizer, error) {
	return TrainWithSymbols(ctx, VariantBytes, core.ByteSymbols(), text, nMerges, opts...)
}

// TrainWithSymbols learns nMerges merges of text over the given alphabet.
func TrainWithSymbols(ctx context.Context, variant Variant, symbols *core.SymbolTable, text string, nMerges int, opts ...Option) (*Tokenizer, error) {
	var o core.TrainOptions
	for _, opt := range opts {
		opt(&o)
	}

	ids, err := symbols.Split(text)
	if err != nil {
		return nil, errors.Wrap(err, "train")
	}

	res, err := core.Train(ctx, symbols, ids, nMerges, o)
	if err != nil {
		return nil, err
	}
	return New(variant, res.Model), nil
}

// New wraps an existing model, typically one read back from disk.
func New(variant Variant, model *core.Model) *Tokenizer {
	return &Tokenizer{variant: variant, model: model}
}

// Encode converts text into token ids. Characters outside the alphabet fail with core.ErrUnknownSymbol.
func (t *Tokenizer) Encode(text string) ([]int, error) {
	return t.model.Encode(text)
}

// Decode converts token ids back into text. Ids outside the vocabulary fail with core.ErrUnknownID.
func (t *Tokenizer) Decode(ids []int) (string, error) {
	return t.model.Decode(ids)
}

// Model returns the underlying immutable model.
func (t *Tokenizer) Model() *core.Model { return t.model }

// Variant reports the alphabet the tokenizer was built on.
func (t *Tokenizer) Variant() Variant { return t.variant }

// VocabSize is the number of token ids, atomic plus merged.
func (t *Tokenizer) VocabSize() int { return t.model.VocabSize() }

// NumMerges is the number of learned merges.
func (t *Tokenizer) NumMerges() int { return t.model.NumMerges() }

// NewEncoder returns a streaming encoder over this tokenizer.
func (t *Tokenizer) NewEncoder() Encoder { return NewStreamEncoder(t.model) }

// NewDecoder returns a streaming decoder over this tokenizer.
func (t *Tokenizer) NewDecoder() Decoder { return NewStreamDecoder(t.model) }
