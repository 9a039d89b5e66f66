package core

// Pair is an ordered pair of adjacent token ids. It is comparable and used directly as a map key.
type Pair struct {
	Left  int
	Right int
}

// Less orders pairs lexicographically by (Left, Right).
func (p Pair) Less(q Pair) bool {
	if p.Left != q.Left {
		return p.Left < q.Left
	}
	return p.Right < q.Right
}

// CountPairs counts every adjacent pair in ids. Sequences shorter than two yield an empty map.
//
//	[1 2 3 1 2] -> {(1,2): 2, (2,3): 1, (3,1): 1}
func CountPairs(ids []int) map[Pair]int {
	counts := make(map[Pair]int)
	for i := 0; i+1 < len(ids); i++ {
		counts[Pair{ids[i], ids[i+1]}]++
	}
	return counts
}

// MostFrequent picks the pair with the highest count. Ties go to the lexicographically smallest
// pair so that training never depends on map iteration order.
func MostFrequent(counts map[Pair]int) (Pair, int, bool) {
	var (
		best      Pair
		bestCount int
		found     bool
	)
	for p, c := range counts {
		if !found || c > bestCount || (c == bestCount && p.Less(best)) {
			best, bestCount, found = p, c, true
		}
	}
	return best, bestCount, found
}

// MergePair replaces every non-overlapping occurrence of pair, scanning left to right, with idx.
// A match at k consumes k and k+1, so [X X X] merged on (X,X) becomes [idx X].
// The result is written into ids' backing array.
func MergePair(ids []int, pair Pair, idx int) []int {
	out := ids[:0]
	i := 0
	for i < len(ids) {
		if i+1 < len(ids) && ids[i] == pair.Left && ids[i+1] == pair.Right {
			out = append(out, idx)
			i += 2
		} else {
			out = append(out, ids[i])
			i++
		}
	}
	return out
}
