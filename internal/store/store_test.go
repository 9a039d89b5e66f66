package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/shivendrra/tokenizers/internal/tokenizer"
	"github.com/shivendrra/tokenizers/internal/tokenizer/core"
)

func trainAaab(t *testing.T) *tokenizer.Tokenizer {
	t.Helper()
	tok, err := tokenizer.Train(context.Background(), "aaabdaaabac", 3)
	require.NoError(t, err)
	return tok
}

func TestMergesRoundTrip(t *testing.T) {
	tok := trainAaab(t)

	var buf bytes.Buffer
	require.NoError(t, WriteMerges(&buf, tok.Model()))
	require.Equal(t, "0 0\n0 1\n4 5\n", buf.String())

	m, err := ReadMerges(&buf, tok.Model().Symbols())
	require.NoError(t, err)
	require.Equal(t, tok.Model().Merges(), m.Merges())

	ids, err := m.Encode("aaabdaaabac")
	require.NoError(t, err)
	require.Equal(t, []int{6, 3, 6, 0, 2}, ids)

	text, err := m.Decode([]int{6})
	require.NoError(t, err)
	require.Equal(t, "aaab", text)
}

func TestReadMergesSkipsBlankLines(t *testing.T) {
	m, err := ReadMerges(strings.NewReader("\n0 0\n\n  \n0 1\n"), core.DNASymbols())
	require.NoError(t, err)
	require.Equal(t, []core.Pair{{Left: 0, Right: 0}, {Left: 0, Right: 1}}, m.Merges())
}

func TestReadMergesInvalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
		line string
	}{
		{"one field", "0\n", "line 1"},
		{"three fields", "0 1 2\n", "line 1"},
		{"not a number", "0 0\na b\n", "line 2"},
		{"negative", "-1 0\n", "line 1"},
		{"undefined id", "0 0\n1 6\n", "line 2"},
		{"self reference", "5 0\n", "line 1"},
		{"duplicate", "0 0\n\n0 0\n", "line 3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := ReadMerges(strings.NewReader(tc.in), core.DNASymbols())
			require.Nil(t, m)
			require.True(t, errors.Is(err, core.ErrInvalidFormat), "got %v", err)
			require.Contains(t, err.Error(), tc.line)
		})
	}
}

func TestWriteVocab(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVocab(&buf, trainAaab(t).Model()))
	require.Equal(t, "[a] 0\n[b] 1\n[c] 2\n[d] 3\n[aa] 4\n[ab] 5\n[aaab] 6\n", buf.String())

	tok, err := tokenizer.TrainDNA(context.Background(), "AC\nAC\n", 1)
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, WriteVocab(&buf, tok.Model()))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	require.Equal(t, `[\n] 0`, lines[0])
	require.Equal(t, "[AC] 5", lines[5])
}

func TestPerCharRoundTrip(t *testing.T) {
	symbols := []string{"a", " ", "\n", `"`, "é", "\t", "☕", "\u00a0", "\xff"}

	var buf bytes.Buffer
	require.NoError(t, WritePerChar(&buf, symbols))

	lines := strings.Split(buf.String(), "\n")
	require.Equal(t, PerCharHeader, lines[0])
	require.Equal(t, "0 a", lines[1])
	require.Equal(t, `1 " "`, lines[2])
	require.Equal(t, `2 "\n"`, lines[3])
	require.Equal(t, `3 "\""`, lines[4])
	require.Equal(t, "4 é", lines[5])
	require.Equal(t, `8 "\xff"`, lines[9])

	got, err := ReadPerChar(&buf)
	require.NoError(t, err)
	require.Equal(t, symbols, got)
}

func TestReadPerCharOrderFree(t *testing.T) {
	got, err := ReadPerChar(strings.NewReader("per-char v1\n1 b\n0 a\n\n2 c\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, got)
}

func TestReadPerCharInvalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"no header", "0 a\n1 b\n"},
		{"wrong version", "per-char v2\n0 a\n"},
		{"missing char", "per-char v1\n0\n"},
		{"blank char", "per-char v1\n0 \n"},
		{"bad id", "per-char v1\nx a\n"},
		{"negative id", "per-char v1\n-1 a\n"},
		{"duplicate id", "per-char v1\n0 a\n0 b\n"},
		{"gap", "per-char v1\n0 a\n2 b\n"},
		{"bad quote", "per-char v1\n0 \"abc\n"},
		{"empty quote", "per-char v1\n0 \"\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadPerChar(strings.NewReader(tc.in))
			require.Nil(t, got)
			require.True(t, errors.Is(err, core.ErrInvalidFormat), "got %v", err)
		})
	}
}

func TestSaveLoadFiles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	text := "the cat sat on the mat\nACGT\n"

	basic, err := tokenizer.Train(ctx, text, 12)
	require.NoError(t, err)
	byteTok, err := tokenizer.TrainBytes(ctx, text+"\xff\x00", 12)
	require.NoError(t, err)
	dna, err := tokenizer.TrainDNA(ctx, "ACGTACGT\nACGGT\n", 5)
	require.NoError(t, err)

	cases := []struct {
		name   string
		tok    *tokenizer.Tokenizer
		sample string
	}{
		{"basic", basic, "the mat sat\n"},
		{"bytes", byteTok, "héllo\xff"},
		{"dna", dna, "ACGTGGT\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prefix := filepath.Join(dir, "models", tc.name)
			require.NoError(t, SaveFiles(prefix, tc.tok))

			loaded, err := LoadFiles(prefix, tc.tok.Variant())
			require.NoError(t, err)
			require.Equal(t, tc.tok.Model().Merges(), loaded.Model().Merges())
			require.Equal(t, tc.tok.VocabSize(), loaded.VocabSize())

			want, err := tc.tok.Encode(tc.sample)
			require.NoError(t, err)
			got, err := loaded.Encode(tc.sample)
			require.NoError(t, err)
			require.Equal(t, want, got)

			_, err = os.Stat(prefix + VocabSuffix)
			require.NoError(t, err)
		})
	}

	_, err = os.Stat(filepath.Join(dir, "models", "dna"+AlphabetSuffix))
	require.True(t, os.IsNotExist(err))
}

func TestLoadFilesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFiles(filepath.Join(dir, "missing"), tokenizer.VariantDNA)
	require.Error(t, err)

	prefix := filepath.Join(dir, "broken")
	require.NoError(t, os.WriteFile(prefix+ModelSuffix, []byte("0 0\n0 zz\n"), 0o644))
	tok, err := LoadFiles(prefix, tokenizer.VariantDNA)
	require.Nil(t, tok)
	require.True(t, errors.Is(err, core.ErrInvalidFormat))

	// basic models need their alphabet
	require.NoError(t, os.WriteFile(prefix+ModelSuffix, []byte("0 0\n"), 0o644))
	_, err = LoadFiles(prefix, tokenizer.VariantBasic)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(prefix+AlphabetSuffix, []byte("per-char v1\n0 a\n1 a\n"), 0o644))
	_, err = LoadFiles(prefix, tokenizer.VariantBasic)
	require.True(t, errors.Is(err, core.ErrInvalidFormat))

	_, err = LoadFiles(prefix, tokenizer.VariantPerChar)
	require.Error(t, err)
}

func TestSaveLoadPerChar(t *testing.T) {
	p := tokenizer.NewPerChar()
	p.Train("hello world")
	p.Encode("hello, world!")

	prefix := filepath.Join(t.TempDir(), "pc")
	require.NoError(t, SavePerChar(prefix, p))

	loaded, err := LoadPerChar(prefix)
	require.NoError(t, err)
	require.Equal(t, p.Symbols(), loaded.Symbols())
	require.Equal(t, p.Encode("low, world"), loaded.Encode("low, world"))

	require.NoError(t, os.WriteFile(prefix+ModelSuffix, []byte("0 a\n"), 0o644))
	_, err = LoadPerChar(prefix)
	require.True(t, errors.Is(err, core.ErrInvalidFormat))
}
