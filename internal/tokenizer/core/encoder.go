package core

import (
	"github.com/shivendrra/tokenizers/internal/utils"
)

// bucketQueueMaxRank bounds the bucket array; larger merge tables use the binary heap instead.
const bucketQueueMaxRank = 1 << 20

// Encode maps text to base ids and applies the learned merges until none applies.
func (m *Model) Encode(text string) ([]int, error) {
	ids, err := m.symbols.Split(text)
	if err != nil {
		return nil, err
	}
	return m.EncodeIDs(ids), nil
}

// EncodeIDs applies the learned merges to a sequence of base ids. ids is not modified.
//
// Merges run lowest rank first and leftmost first within a rank. Every merge component is
// smaller than the id it produces, so a merge only ever creates pairs of higher rank and the
// popped ranks never decrease. That makes this equivalent to repeatedly applying the earliest
// learned merge present in the sequence to all of its non-overlapping occurrences.
func (m *Model) EncodeIDs(ids []int) []int {
	n := len(ids)
	if n == 0 {
		return nil
	}

	scratch := m.acquireScratch(n)
	defer m.releaseScratch(scratch)

	tokens := scratch.tokens
	copy(tokens, ids)

	// doubly linked-list
	prev := scratch.prev
	next := scratch.next
	for i := 0; i < n; i++ {
		prev[i] = i - 1
		next[i] = i + 1
	}

	// edge elements
	prev[0] = -1
	next[n-1] = -1

	// per-slot versioning to invalidate queue entries
	liveVersion := scratch.live
	for i := 0; i < n; i++ {
		liveVersion[i] = 0
	}

	h := scratch.queue

	pushIfMergeable := func(i int) {
		if i == -1 {
			return
		}
		j := next[i]
		if j == -1 {
			return
		}

		a := tokens[i]
		b := tokens[j]

		if rank, _, ok := m.lookup.Lookup(a, b); ok {
			h.Push(utils.MergeCand{
				Rank:       rank,
				Pos:        i,
				LeftToken:  a,
				RightToken: b,
				VerL:       liveVersion[i],
				VerR:       liveVersion[j],
			})
		}
	}

	// seed the queue with all initial adjacent pairs
	for i := 0; i != -1 && next[i] != -1; i = next[i] {
		pushIfMergeable(i)
	}

	// leftmost index (never dies; we always merge into the left slot)
	head := 0

	for {
		c, ok := h.Pop()
		if !ok {
			break
		}
		i := c.Pos

		j := next[i]
		if j == -1 {
			continue // no right neighbour anymore
		}

		// stale entry since at least one version did not match
		if liveVersion[i] != c.VerL || liveVersion[j] != c.VerR {
			continue
		}

		a := tokens[i]
		b := tokens[j]

		rankNow, cID, ok := m.lookup.Lookup(a, b)
		if !ok || rankNow != c.Rank || a != c.LeftToken || b != c.RightToken {
			continue
		}

		tokens[i] = cID // collapse into slot i

		nj := next[j]
		next[i] = nj
		if nj != -1 {
			prev[nj] = i
		}

		// mark other pointers as dead
		prev[j], next[j] = -1, -1

		liveVersion[i]++
		liveVersion[j]++ // j died; invalidate anything mentioning it

		// the new token may now pair with its left neighbour and with its right neighbour
		if pi := prev[i]; pi != -1 {
			pushIfMergeable(pi)
		}
		pushIfMergeable(i)
	}

	out := make([]int, 0, n)
	for i := head; i != -1; i = next[i] {
		out = append(out, tokens[i])
	}

	return out
}

// EncodeNaive is the direct fixed-point form of encoding: count the pairs of the current
// sequence, pick the present pair that was merged earliest during training, replace all of its
// non-overlapping occurrences, and repeat until no present pair has a merge. It is quadratic
// and kept as the reference that Encode is checked against.
func (m *Model) EncodeNaive(text string) ([]int, error) {
	ids, err := m.symbols.Split(text)
	if err != nil {
		return nil, err
	}

	for len(ids) >= 2 {
		stats := CountPairs(ids)

		var (
			best   Pair
			bestID int
			found  bool
		)
		for p := range stats {
			id, ok := m.MergeID(p)
			if ok && (!found || id < bestID) {
				best, bestID, found = p, id, true
			}
		}
		if !found {
			break
		}

		ids = MergePair(ids, best, bestID)
	}

	return ids, nil
}

func (m *Model) newQueue() utils.MergeQueue {
	if m.heapQueue || len(m.merges) > bucketQueueMaxRank {
		return utils.NewMergeHeap()
	}
	return utils.NewBucketQueue(len(m.merges))
}

type encodeScratch struct {
	tokens []int
	prev   []int
	next   []int
	live   []int
	queue  utils.MergeQueue
}

func (m *Model) acquireScratch(n int) *encodeScratch {
	v := m.scratchPool.Get()
	var sc *encodeScratch
	if v == nil {
		sc = &encodeScratch{}
	} else {
		sc = v.(*encodeScratch)
	}
	sc.prepare(n)
	if sc.queue == nil {
		sc.queue = m.newQueue()
	} else {
		sc.queue.Reset()
	}
	return sc
}

func (m *Model) releaseScratch(sc *encodeScratch) {
	m.scratchPool.Put(sc)
}

func (sc *encodeScratch) prepare(n int) {
	sc.tokens = ensureIntCapacity(sc.tokens, n)
	sc.prev = ensureIntCapacity(sc.prev, n)
	sc.next = ensureIntCapacity(sc.next, n)
	sc.live = ensureIntCapacity(sc.live, n)
}

func ensureIntCapacity(buf []int, n int) []int {
	if cap(buf) < n {
		return make([]int, n)
	}
	return buf[:n]
}
