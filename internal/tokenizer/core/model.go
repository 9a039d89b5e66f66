package core

import (
	"slices"
	"sync"
)

// Model holds immutable tokenizer data derived from a symbol table and an ordered merge list,
// and is safe for concurrent use.
// Invariants we maintain:
//   - ids are dense: 0..symbols.Len()-1 are atomic, symbols.Len()+i is produced by merges[i].
//   - vocab[id] is the exact text for token id; for a merged id created from (a,b),
//     vocab[id] == vocab[a] + vocab[b].
//   - every merge component is strictly smaller than the id it produces.
type Model struct {
	symbols *SymbolTable
	// merges[rank] is the pair merged into id base+rank, in learning order.
	merges []Pair
	// for decoding, index = token id, value is the expanded text
	vocab []string

	lookup *PairLookup
	// component[id] reports whether id appears on either side of some merge.
	component   []bool
	maxTokenLen int
	// heapQueue forces the binary heap even for small merge tables.
	heapQueue bool

	scratchPool sync.Pool
}

// NewModel validates merges against symbols and builds the vocabulary expansion by concatenating
// the parents of each merge in order.
func NewModel(symbols *SymbolTable, merges []Pair) (*Model, error) {
	base := symbols.Len()
	size := base + len(merges)

	m := &Model{
		symbols:   symbols,
		merges:    slices.Clone(merges),
		vocab:     make([]string, size),
		component: make([]bool, size),
	}

	for id := 0; id < base; id++ {
		m.vocab[id] = symbols.symbols[id]
		m.maxTokenLen = max(m.maxTokenLen, len(m.vocab[id]))
	}

	seen := make(map[Pair]int, len(merges))
	for rank, p := range merges {
		idx := base + rank
		if p.Left < 0 || p.Left >= idx || p.Right < 0 || p.Right >= idx {
			return nil, InvalidFormatf("merge %d (%d, %d) references an id not defined before %d", rank, p.Left, p.Right, idx)
		}
		if prev, ok := seen[p]; ok {
			return nil, InvalidFormatf("merge %d (%d, %d) duplicates merge %d", rank, p.Left, p.Right, prev)
		}
		seen[p] = rank

		m.vocab[idx] = m.vocab[p.Left] + m.vocab[p.Right]
		m.component[p.Left] = true
		m.component[p.Right] = true
		m.maxTokenLen = max(m.maxTokenLen, len(m.vocab[idx]))
	}

	m.lookup = NewPairLookup(m.merges, base)
	return m, nil
}

// Symbols returns the base symbol table.
func (m *Model) Symbols() *SymbolTable { return m.symbols }

// BaseSize is the number of atomic symbols.
func (m *Model) BaseSize() int { return m.symbols.Len() }

// VocabSize is the number of ids, atomic plus merged.
func (m *Model) VocabSize() int { return len(m.vocab) }

// NumMerges is the number of learned merges.
func (m *Model) NumMerges() int { return len(m.merges) }

// Merges returns a copy of the merge list in learning order.
func (m *Model) Merges() []Pair { return slices.Clone(m.merges) }

// MergeID returns the id created by merging p, if p was ever merged.
func (m *Model) MergeID(p Pair) (int, bool) {
	_, id, ok := m.lookup.Lookup(p.Left, p.Right)
	return id, ok
}

// Parents returns the pair that produced a merged id. ok is false for atomic or unknown ids.
func (m *Model) Parents(id int) (Pair, bool) {
	rank := id - m.BaseSize()
	if rank < 0 || rank >= len(m.merges) {
		return Pair{}, false
	}
	return m.merges[rank], true
}

// MaxTokenLen is the byte length of the longest expansion.
func (m *Model) MaxTokenLen() int { return m.maxTokenLen }

// IsMergeComponent reports whether id is on either side of any merge. Atomic ids that are not
// components never merge with a neighbour, so encoding can be split around them.
func (m *Model) IsMergeComponent(id int) bool {
	return id >= 0 && id < len(m.component) && m.component[id]
}

// TokenLen returns the byte length of the expansion of id, or 0 for unknown ids.
func (m *Model) TokenLen(id int) int {
	if id < 0 || id >= len(m.vocab) {
		return 0
	}
	return len(m.vocab[id])
}
