package tokenizer

import (
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// PerChar maps each character to an id with no merges. Unlike Tokenizer it is lenient: Encode
// registers characters it has not seen instead of failing, and Decode skips ids it does not know.
type PerChar struct {
	mu      sync.RWMutex
	symbols []string
	index   map[string]int
}

// NewPerChar returns an empty per-character tokenizer.
func NewPerChar() *PerChar {
	return &PerChar{index: make(map[string]int)}
}

// NewPerCharFromSymbols restores a tokenizer whose id i maps to symbols[i].
func NewPerCharFromSymbols(symbols []string) (*PerChar, error) {
	p := NewPerChar()
	for id, s := range symbols {
		if s == "" {
			return nil, errors.Errorf("per-char: empty symbol at id %d", id)
		}
		if prev, ok := p.index[s]; ok {
			return nil, errors.Errorf("per-char: duplicate symbol %q at ids %d and %d", s, prev, id)
		}
		p.index[s] = id
	}
	p.symbols = slices.Clone(symbols)
	return p, nil
}

// nextChar returns the character at the start of text. A byte outside valid UTF-8 is a
// character of its own so it survives the round trip unchanged.
func nextChar(text string) string {
	_, size := utf8.DecodeRuneInString(text)
	return text[:size]
}

// Train replaces the table with the sorted unique characters of text.
func (p *PerChar) Train(text string) {
	seen := make(map[string]struct{})
	for i := 0; i < len(text); {
		c := nextChar(text[i:])
		seen[c] = struct{}{}
		i += len(c)
	}
	chars := make([]string, 0, len(seen))
	for c := range seen {
		chars = append(chars, c)
	}
	slices.Sort(chars)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.symbols = chars
	p.index = make(map[string]int, len(chars))
	for id, c := range chars {
		p.index[c] = id
	}
}

// Encode maps each character of text to its id, registering unseen characters at the next free id.
func (p *PerChar) Encode(text string) []int {
	ids := make([]int, 0, len(text))

	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < len(text); {
		s := nextChar(text[i:])
		i += len(s)
		id, ok := p.index[s]
		if !ok {
			id = len(p.symbols)
			p.symbols = append(p.symbols, s)
			p.index[s] = id
		}
		ids = append(ids, id)
	}
	return ids
}

// Decode joins the characters of ids, skipping ids with no registered character.
func (p *PerChar) Decode(ids []int) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var sb strings.Builder
	for _, id := range ids {
		if id >= 0 && id < len(p.symbols) {
			sb.WriteString(p.symbols[id])
		}
	}
	return sb.String()
}

// Symbols returns a snapshot of the table in id order.
func (p *PerChar) Symbols() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.symbols)
}

// VocabSize is the number of registered characters.
func (p *PerChar) VocabSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.symbols)
}
