package core

import (
	"slices"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// SymbolTable is the bijection between base symbols and the atomic token ids 0..Len()-1.
// It is immutable once built.
type SymbolTable struct {
	symbols []string
	index   map[string]int
	// byteIndex short-circuits the lookup when every symbol is a single byte.
	byteIndex  [256]int
	singleByte bool
	// maxLen is the byte length of the longest symbol, the widest window Split has to try.
	maxLen int
}

// NewSymbolTable assigns ids to symbols in slice order.
func NewSymbolTable(symbols []string) (*SymbolTable, error) {
	st := &SymbolTable{
		symbols:    make([]string, len(symbols)),
		index:      make(map[string]int, len(symbols)),
		singleByte: true,
	}
	for i := range st.byteIndex {
		st.byteIndex[i] = -1
	}

	for id, s := range symbols {
		if s == "" {
			return nil, errors.Errorf("symbol table: empty symbol at id %d", id)
		}
		if prev, ok := st.index[s]; ok {
			return nil, errors.Errorf("symbol table: duplicate symbol %q at ids %d and %d", s, prev, id)
		}
		st.symbols[id] = s
		st.index[s] = id
		if len(s) == 1 {
			st.byteIndex[s[0]] = id
		} else {
			st.singleByte = false
		}
		st.maxLen = max(st.maxLen, len(s))
	}

	return st, nil
}

func mustSymbolTable(symbols []string) *SymbolTable {
	st, err := NewSymbolTable(symbols)
	if err != nil {
		panic(err)
	}
	return st
}

// DiscoverSymbols builds a table from the unique characters of text, sorted by code point so
// the same text always yields the same ids. A byte that is not part of valid UTF-8 becomes a
// symbol of its own, so any text splits cleanly over the table built from it.
func DiscoverSymbols(text string) *SymbolTable {
	seen := make(map[string]struct{})
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		seen[text[i:i+size]] = struct{}{}
		i += size
	}

	// byte order of valid UTF-8 is code point order
	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)

	return mustSymbolTable(symbols)
}

// DNASymbols returns the fixed nucleotide alphabet: line break then A, C, G, T.
func DNASymbols() *SymbolTable {
	return mustSymbolTable([]string{"\n", "A", "C", "G", "T"})
}

// ByteSymbols returns the 256 single-byte symbols, id = byte value.
func ByteSymbols() *SymbolTable {
	symbols := make([]string, 256)
	for b := 0; b < 256; b++ {
		symbols[b] = string([]byte{byte(b)})
	}
	return mustSymbolTable(symbols)
}

// Len is the base vocabulary size.
func (st *SymbolTable) Len() int { return len(st.symbols) }

// MaxSymbolLen is the byte length of the longest symbol.
func (st *SymbolTable) MaxSymbolLen() int { return st.maxLen }

// Symbols returns a copy of the symbols in id order.
func (st *SymbolTable) Symbols() []string { return slices.Clone(st.symbols) }

// ID maps a symbol to its id.
func (st *SymbolTable) ID(symbol string) (int, error) {
	if id, ok := st.index[symbol]; ok {
		return id, nil
	}
	return 0, &UnknownSymbolError{Symbol: symbol}
}

// Symbol maps an id back to its symbol.
func (st *SymbolTable) Symbol(id int) (string, error) {
	if id < 0 || id >= len(st.symbols) {
		return "", &UnknownIDError{ID: id}
	}
	return st.symbols[id], nil
}

// Split segments text into symbol ids, taking the longest registered symbol at each position.
func (st *SymbolTable) Split(text string) ([]int, error) {
	if st.singleByte {
		ids := make([]int, len(text))
		for i := 0; i < len(text); i++ {
			id := st.byteIndex[text[i]]
			if id < 0 {
				return nil, st.unknownAt(text, i)
			}
			ids[i] = id
		}
		return ids, nil
	}

	ids := make([]int, 0, len(text))
	for pos := 0; pos < len(text); {
		id, size, ok := st.Match(text[pos:])
		if !ok {
			return nil, st.unknownAt(text, pos)
		}
		ids = append(ids, id)
		pos += size
	}
	return ids, nil
}

// Match returns the id and byte length of the longest symbol that prefixes s.
func (st *SymbolTable) Match(s string) (id, size int, ok bool) {
	for n := min(st.maxLen, len(s)); n > 1; n-- {
		if id, ok := st.index[s[:n]]; ok {
			return id, n, true
		}
	}
	if len(s) > 0 {
		if id := st.byteIndex[s[0]]; id >= 0 {
			return id, 1, true
		}
	}
	return 0, 0, false
}

// MatchBytes is Match over a byte slice, for callers that buffer raw input.
func (st *SymbolTable) MatchBytes(b []byte) (id, size int, ok bool) {
	for n := min(st.maxLen, len(b)); n > 1; n-- {
		// the conversion in a map index does not allocate
		if id, ok := st.index[string(b[:n])]; ok {
			return id, n, true
		}
	}
	if len(b) > 0 {
		if id := st.byteIndex[b[0]]; id >= 0 {
			return id, 1, true
		}
	}
	return 0, 0, false
}

func (st *SymbolTable) unknownAt(text string, pos int) error {
	_, size := utf8.DecodeRuneInString(text[pos:])
	return &UnknownSymbolError{Symbol: text[pos : pos+size], Offset: pos}
}
