package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shivendrra/tokenizers/internal/tokenizer"
)

const sample = `
models:
  - name: dna
    variant: dna
    input: data/dna.txt
    vocab_size: 205
    output: out/dna
  - variant: basic
    input: data/book.txt
    merges: 40
    min_frequency: 2
    output: out/book
  - name: chars
    variant: per-char
    input: data/book.txt
    output: out/chars
log_every: 50
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	require.Len(t, cfg.Models, 3)
	require.Equal(t, 50, *cfg.LogEvery)
	require.Equal(t, tokenizer.DefaultCacheSize, cfg.CacheSize)

	dna := cfg.Models[0]
	require.Nil(t, dna.Merges)
	n, err := dna.MergeCount(5)
	require.NoError(t, err)
	require.Equal(t, 200, n)

	book := cfg.Models[1]
	require.Equal(t, "book", book.Name)
	require.Equal(t, 2, book.MinFrequency)
	n, err = book.MergeCount(30)
	require.NoError(t, err)
	require.Equal(t, 40, n)

	chars := cfg.Models[2]
	n, err = chars.MergeCount(10)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("models:\n  - input: a.txt\n    output: out/a\n"))
	require.NoError(t, err)

	m := cfg.Models[0]
	require.Equal(t, "a", m.Name)
	require.Equal(t, string(tokenizer.VariantBasic), m.Variant)
	require.NotNil(t, m.Merges)
	require.Equal(t, DefaultMerges, *m.Merges)
	require.Equal(t, DefaultLogEvery, *cfg.LogEvery)
}

func TestParseLogEveryZero(t *testing.T) {
	cfg, err := Parse([]byte("models:\n  - {name: a, input: a, output: a}\nlog_every: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.LogEvery)
	require.Equal(t, 0, *cfg.LogEvery)

	t.Setenv(LogEveryEnv, "0")
	cfg, err = Parse([]byte(sample))
	require.NoError(t, err)
	require.Equal(t, 0, *cfg.LogEvery)
}

func TestFind(t *testing.T) {
	cfg, err := Parse([]byte(sample + "cache_size: 64\n"))
	require.NoError(t, err)
	require.Equal(t, 64, cfg.CacheSize)

	m, ok := cfg.Find("book")
	require.True(t, ok)
	require.Equal(t, "data/book.txt", m.Input)
	require.Equal(t, "out/book", m.Output)

	_, ok = cfg.Find("missing")
	require.False(t, ok)
}

func TestLogEveryEnvOverride(t *testing.T) {
	t.Setenv(LogEveryEnv, "7")
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Equal(t, 7, *cfg.LogEvery)

	t.Setenv(LogEveryEnv, "often")
	_, err = Parse([]byte(sample))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no models", "log_every: 3\n", "no models"},
		{"negative log_every", "models:\n  - {name: a, input: a, output: a}\nlog_every: -2\n", "negative log_every"},
		{"negative cache_size", "models:\n  - {name: a, input: a, output: a}\ncache_size: -1\n", "negative cache_size"},
		{"unknown variant", "models:\n  - {name: a, variant: regex, input: a, output: a}\n", "unknown tokenizer variant"},
		{"both sizes", "models:\n  - {name: a, input: a, output: a, merges: 3, vocab_size: 300}\n", "not both"},
		{"negative merges", "models:\n  - {name: a, input: a, output: a, merges: -1}\n", "negative merges"},
		{"vocab below base", "models:\n  - {name: a, variant: bytes, input: a, output: a, vocab_size: 100}\n", "below the 256 base symbols"},
		{"missing input", "models:\n  - {name: a, output: a}\n", "missing input"},
		{"missing output", "models:\n  - {name: a, input: a}\n", "missing output"},
		{"per-char merges", "models:\n  - {name: a, variant: per-char, input: a, output: a, merges: 3}\n", "per-char"},
		{"duplicate names", "models:\n  - {name: a, input: a, output: x}\n  - {name: a, input: b, output: y}\n", "both named"},
		{"bad yaml", "models: [\n", "parse config"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestMergeCountBelowBase(t *testing.T) {
	vs := 10
	m := Model{Name: "a", VocabSize: &vs}
	_, err := m.MergeCount(20)
	require.Error(t, err)
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "data", "dna.txt"), cfg.Models[0].Input)
	require.Equal(t, filepath.Join(dir, "out", "dna"), cfg.Models[0].Output)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
