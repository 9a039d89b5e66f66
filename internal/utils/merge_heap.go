package utils

// MergeCand is a candidate merge of the slot at Pos with its right neighbour. VerL and VerR are
// the slot versions seen at push time; the encoder drops the candidate if either has moved on.
type MergeCand struct {
	Rank       int
	Pos        int
	LeftToken  int
	RightToken int
	VerL       int
	VerR       int
}

// before orders candidates by rank, then leftmost position.
func (c MergeCand) before(o MergeCand) bool {
	if c.Rank != o.Rank {
		return c.Rank < o.Rank
	}
	return c.Pos < o.Pos
}

// MergeQueue yields candidates lowest rank first, leftmost first within a rank.
type MergeQueue interface {
	Push(c MergeCand)
	Pop() (MergeCand, bool)
	Len() int
	// Reset empties the queue and keeps its storage for the next encode.
	Reset()
}

// MergeHeap is a binary min-heap of candidates. It costs O(log n) per operation whatever the
// number of ranks, so it backs encoders whose merge tables are too big for a BucketQueue.
type MergeHeap struct {
	items []MergeCand
}

func NewMergeHeap() *MergeHeap {
	return &MergeHeap{items: make([]MergeCand, 0, 64)}
}

func (h *MergeHeap) Len() int { return len(h.items) }

func (h *MergeHeap) Push(c MergeCand) {
	h.items = append(h.items, c)

	i := len(h.items) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].before(h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MergeHeap) Pop() (MergeCand, bool) {
	n := len(h.items)
	if n == 0 {
		return MergeCand{}, false
	}

	top := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	h.siftDown()

	return top, true
}

func (h *MergeHeap) siftDown() {
	n := len(h.items)
	for i := 0; ; {
		least := i
		for _, child := range [2]int{2*i + 1, 2*i + 2} {
			if child < n && h.items[child].before(h.items[least]) {
				least = child
			}
		}
		if least == i {
			return
		}
		h.items[i], h.items[least] = h.items[least], h.items[i]
		i = least
	}
}

func (h *MergeHeap) Reset() { h.items = h.items[:0] }
