package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNewModelRejectsInvalidMerges(t *testing.T) {
	st := DiscoverSymbols("abc") // base 3

	cases := []struct {
		name   string
		merges []Pair
	}{
		{"negative", []Pair{{-1, 0}}},
		{"self reference", []Pair{{0, 3}}},
		{"forward reference", []Pair{{0, 1}, {4, 2}}},
		{"duplicate", []Pair{{0, 1}, {0, 1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewModel(st, tc.merges)
			require.True(t, errors.Is(err, ErrInvalidFormat), "got %v", err)
		})
	}
}

func TestModelAccessors(t *testing.T) {
	st := DiscoverSymbols("abc")
	m, err := NewModel(st, []Pair{{0, 1}, {3, 3}})
	require.NoError(t, err)

	require.Equal(t, 3, m.BaseSize())
	require.Equal(t, 5, m.VocabSize())
	require.Equal(t, 2, m.NumMerges())
	require.Equal(t, 4, m.MaxTokenLen())
	require.Equal(t, 2, m.TokenLen(3))
	require.Equal(t, 0, m.TokenLen(99))

	p, ok := m.Parents(4)
	require.True(t, ok)
	require.Equal(t, Pair{3, 3}, p)
	_, ok = m.Parents(1)
	require.False(t, ok)

	id, ok := m.MergeID(Pair{0, 1})
	require.True(t, ok)
	require.Equal(t, 3, id)
	_, ok = m.MergeID(Pair{1, 0})
	require.False(t, ok)

	require.True(t, m.IsMergeComponent(0))
	require.True(t, m.IsMergeComponent(3))
	require.False(t, m.IsMergeComponent(2))
	require.False(t, m.IsMergeComponent(4))
}

func TestModelMergesIsACopy(t *testing.T) {
	m, err := NewModel(DiscoverSymbols("ab"), []Pair{{0, 1}})
	require.NoError(t, err)

	merges := m.Merges()
	merges[0] = Pair{1, 1}
	require.Equal(t, []Pair{{0, 1}}, m.Merges())
}

func TestDecodeUnknownID(t *testing.T) {
	m, err := NewModel(DNASymbols(), []Pair{{1, 4}})
	require.NoError(t, err)

	out, err := m.Decode([]int{5, 0, 2})
	require.NoError(t, err)
	require.Equal(t, "AT\nC", out)

	_, err = m.Decode([]int{1, 6})
	require.True(t, errors.Is(err, ErrUnknownID))

	var uid *UnknownIDError
	require.True(t, errors.As(err, &uid))
	require.Equal(t, 6, uid.ID)

	_, err = m.Decode([]int{-1})
	require.True(t, errors.Is(err, ErrUnknownID))

	_, err = m.TokenString(6)
	require.True(t, errors.Is(err, ErrUnknownID))
}

func TestAppendDecoded(t *testing.T) {
	m, err := NewModel(DNASymbols(), []Pair{{1, 4}})
	require.NoError(t, err)

	buf, err := m.AppendDecoded([]byte("> "), []int{5, 5})
	require.NoError(t, err)
	require.Equal(t, "> ATAT", string(buf))

	_, err = m.AppendDecoded(nil, []int{7})
	require.True(t, errors.Is(err, ErrUnknownID))
}

func TestPairLookupFallback(t *testing.T) {
	st := ByteSymbols()
	merges := []Pair{{'a', 'b'}, {256, 'c'}, {257, 256}}
	m, err := NewModel(st, merges)
	require.NoError(t, err)

	for rank, p := range merges {
		r, id, ok := m.lookup.Lookup(p.Left, p.Right)
		require.True(t, ok)
		require.Equal(t, rank, r)
		require.Equal(t, 256+rank, id)
	}

	_, _, ok := m.lookup.Lookup(256, 256)
	require.False(t, ok)
	_, _, ok = m.lookup.Lookup('b', 'a')
	require.False(t, ok)

	ids, err := m.Encode("abcab")
	require.NoError(t, err)
	require.Equal(t, []int{258}, ids)
}
