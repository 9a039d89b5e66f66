package core

const maxFastLookupSize = 256

// PairLookup provides fast lookup of merge info (rank and merged id) using a hybrid approach:
// - 2D array for pairs where both ids are < fastLookupSize (O(1) lookup)
// - Map fallback for larger pairs
type PairLookup struct {
	fastLookup     [][]uint64
	fastLookupSize int
	fallback       map[Pair]uint64
}

// NewPairLookup builds the lookup from the ordered merge list; merges[rank] produces id base+rank.
func NewPairLookup(merges []Pair, base int) *PairLookup {
	fastLookupSize := min(base+len(merges), maxFastLookupSize)

	fastLookup := make([][]uint64, fastLookupSize)
	for i := range fastLookup {
		fastLookup[i] = make([]uint64, fastLookupSize)
		for j := range fastLookup[i] {
			fastLookup[i][j] = ^uint64(0)
		}
	}

	fallback := make(map[Pair]uint64)
	for rank, p := range merges {
		value := packMergeInfo(rank, base+rank)
		if p.Left < fastLookupSize && p.Right < fastLookupSize {
			fastLookup[p.Left][p.Right] = value
		} else {
			fallback[p] = value
		}
	}

	return &PairLookup{
		fastLookup:     fastLookup,
		fastLookupSize: fastLookupSize,
		fallback:       fallback,
	}
}

// Lookup returns the merge rank and merged id for (a, b), if that pair was ever merged.
func (pl *PairLookup) Lookup(a, b int) (rank, id int, ok bool) {
	if a >= 0 && a < pl.fastLookupSize && b >= 0 && b < pl.fastLookupSize {
		value := pl.fastLookup[a][b]
		if value+1 == 0 {
			return 0, 0, false
		}
		rank, id = unpackMergeInfo(value)
		return rank, id, true
	}

	value, ok := pl.fallback[Pair{a, b}]
	if !ok {
		return 0, 0, false
	}
	rank, id = unpackMergeInfo(value)
	return rank, id, true
}

func packMergeInfo(rank, id int) uint64 {
	return uint64(rank)<<32 | uint64(uint32(id))
}

func unpackMergeInfo(v uint64) (rank, id int) {
	return int(v >> 32), int(v & 0xFFFFFFFF)
}
