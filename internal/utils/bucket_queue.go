package utils

import "sort"

// BucketQueue keeps one bucket of candidates per rank. Ranks are small dense integers (the merge
// index), so finding the next candidate is a scan over buckets rather than a heap operation.
// Each bucket is sorted by descending position so the leftmost candidate pops off the end and
// the bucket keeps its capacity across Reset.
type BucketQueue struct {
	buckets [][]MergeCand
	// lowest is a lower bound on the smallest non-empty rank.
	lowest int
	count  int
}

// NewBucketQueue returns a queue sized for ranks 0..maxRank. Higher ranks grow it on demand.
func NewBucketQueue(maxRank int) *BucketQueue {
	return &BucketQueue{buckets: make([][]MergeCand, maxRank+1)}
}

func (bq *BucketQueue) Len() int { return bq.count }

func (bq *BucketQueue) Push(c MergeCand) {
	if c.Rank >= len(bq.buckets) {
		grown := make([][]MergeCand, c.Rank+1)
		copy(grown, bq.buckets)
		bq.buckets = grown
	}

	bucket := bq.buckets[c.Rank]
	i := sort.Search(len(bucket), func(i int) bool { return bucket[i].Pos < c.Pos })
	bucket = append(bucket, MergeCand{})
	copy(bucket[i+1:], bucket[i:])
	bucket[i] = c
	bq.buckets[c.Rank] = bucket

	if bq.count == 0 || c.Rank < bq.lowest {
		bq.lowest = c.Rank
	}
	bq.count++
}

func (bq *BucketQueue) Pop() (MergeCand, bool) {
	if bq.count == 0 {
		return MergeCand{}, false
	}
	for len(bq.buckets[bq.lowest]) == 0 {
		bq.lowest++
	}

	bucket := bq.buckets[bq.lowest]
	last := len(bucket) - 1
	c := bucket[last]
	bq.buckets[bq.lowest] = bucket[:last]
	bq.count--

	return c, true
}

func (bq *BucketQueue) Reset() {
	if bq.count > 0 {
		for r := bq.lowest; r < len(bq.buckets); r++ {
			bq.buckets[r] = bq.buckets[r][:0]
		}
	}
	bq.lowest = 0
	bq.count = 0
}
