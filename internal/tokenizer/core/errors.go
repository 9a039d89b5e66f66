package core

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownSymbol matches input that contains a symbol the table never registered.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrUnknownID matches a token id with no vocabulary entry.
	ErrUnknownID = errors.New("unknown token id")
	// ErrInvalidFormat matches a persisted model whose header or content is malformed.
	ErrInvalidFormat = errors.New("invalid model format")
)

// UnknownSymbolError reports the first symbol in the input that could not be mapped to an id.
// Offset is the byte offset of the symbol in the input.
type UnknownSymbolError struct {
	Symbol string
	Offset int
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol %q at offset %d", e.Symbol, e.Offset)
}

func (e *UnknownSymbolError) Is(target error) bool { return target == ErrUnknownSymbol }

// UnknownIDError reports a token id outside the vocabulary.
type UnknownIDError struct {
	ID int
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("unknown token id %d", e.ID)
}

func (e *UnknownIDError) Is(target error) bool { return target == ErrUnknownID }

// InvalidFormatf returns an error matching ErrInvalidFormat with the given detail.
func InvalidFormatf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidFormat, format, args...)
}
