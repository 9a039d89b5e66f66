package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountPairs(t *testing.T) {
	cases := []struct {
		name string
		ids  []int
		want map[Pair]int
	}{
		{"empty", nil, map[Pair]int{}},
		{"single", []int{7}, map[Pair]int{}},
		{"example", []int{1, 2, 3, 1, 2}, map[Pair]int{{1, 2}: 2, {2, 3}: 1, {3, 1}: 1}},
		{"overlapping run", []int{0, 0, 0}, map[Pair]int{{0, 0}: 2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CountPairs(tc.ids))
		})
	}
}

func TestMostFrequentTieBreak(t *testing.T) {
	counts := map[Pair]int{
		{4, 0}: 2,
		{0, 1}: 2,
		{1, 3}: 1,
		{0, 2}: 2,
	}
	for i := 0; i < 20; i++ {
		p, c, ok := MostFrequent(counts)
		require.True(t, ok)
		require.Equal(t, Pair{0, 1}, p)
		require.Equal(t, 2, c)
	}

	_, _, ok := MostFrequent(map[Pair]int{})
	require.False(t, ok)
}

func TestMergePair(t *testing.T) {
	cases := []struct {
		name string
		ids  []int
		pair Pair
		want []int
	}{
		{"example", []int{1, 2, 3, 1, 2}, Pair{1, 2}, []int{4, 3, 4}},
		{"no overlap", []int{0, 0, 0}, Pair{0, 0}, []int{9, 0}},
		{"even run", []int{0, 0, 0, 0}, Pair{0, 0}, []int{9, 9}},
		{"absent", []int{1, 2, 3}, Pair{3, 1}, []int{1, 2, 3}},
		{"trailing", []int{5, 1, 2}, Pair{1, 2}, []int{5, 4}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			idx := 4
			if tc.pair == (Pair{0, 0}) {
				idx = 9
			}
			require.Equal(t, tc.want, MergePair(append([]int(nil), tc.ids...), tc.pair, idx))
		})
	}
}

func TestPairLess(t *testing.T) {
	require.True(t, Pair{0, 5}.Less(Pair{1, 0}))
	require.True(t, Pair{1, 0}.Less(Pair{1, 2}))
	require.False(t, Pair{1, 2}.Less(Pair{1, 2}))
}
