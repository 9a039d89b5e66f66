// Package config loads the YAML file that describes a batch of training runs.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/shivendrra/tokenizers/internal/tokenizer"
)

const (
	// DefaultMerges is used when a model sets neither merges nor vocab_size.
	DefaultMerges = 256
	// DefaultLogEvery is the progress interval when log_every is unset.
	DefaultLogEvery = 100

	// LogEveryEnv overrides log_every for every model when set.
	LogEveryEnv = "BPETOK_LOG_EVERY"
)

// Model describes one tokenizer to train.
type Model struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
	// Input is the training text file.
	Input string `yaml:"input"`
	// Merges and VocabSize are alternatives; at most one may be set.
	Merges       *int `yaml:"merges,omitempty"`
	VocabSize    *int `yaml:"vocab_size,omitempty"`
	MinFrequency int  `yaml:"min_frequency,omitempty"`
	// Output is the file prefix the model is saved under.
	Output string `yaml:"output"`
}

// Config is the top level of a training file.
type Config struct {
	Models []Model `yaml:"models"`
	// LogEvery is the progress interval in merges; 0 turns periodic progress lines off.
	LogEvery *int `yaml:"log_every,omitempty"`
	// CacheSize bounds the encoded-line cache of `bpetok encode -lines`.
	CacheSize int `yaml:"cache_size,omitempty"`
}

// Load reads, defaults and validates the config at path. Relative input and output paths are
// resolved against the directory of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	dir := filepath.Dir(path)
	for i := range cfg.Models {
		m := &cfg.Models[i]
		if !filepath.IsAbs(m.Input) {
			m.Input = filepath.Join(dir, m.Input)
		}
		if !filepath.IsAbs(m.Output) {
			m.Output = filepath.Join(dir, m.Output)
		}
	}
	return cfg, nil
}

// Parse decodes YAML, applies defaults and the environment override, then validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	cfg.setDefaults()
	if v := os.Getenv(LogEveryEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, errors.Errorf("%s: bad value %q", LogEveryEnv, v)
		}
		cfg.LogEvery = &n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.LogEvery == nil {
		n := DefaultLogEvery
		c.LogEvery = &n
	}
	if c.CacheSize == 0 {
		c.CacheSize = tokenizer.DefaultCacheSize
	}
	for i := range c.Models {
		m := &c.Models[i]
		if m.Variant == "" {
			m.Variant = string(tokenizer.VariantBasic)
		}
		if m.Name == "" && m.Output != "" {
			m.Name = filepath.Base(m.Output)
		}
		if m.Merges == nil && m.VocabSize == nil && m.Variant != string(tokenizer.VariantPerChar) {
			n := DefaultMerges
			m.Merges = &n
		}
	}
}

// Validate reports the first problem found in the config.
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return errors.New("config: no models")
	}
	if c.LogEvery != nil && *c.LogEvery < 0 {
		return errors.Errorf("config: negative log_every %d", *c.LogEvery)
	}
	if c.CacheSize < 0 {
		return errors.Errorf("config: negative cache_size %d", c.CacheSize)
	}

	names := make(map[string]int, len(c.Models))
	for i, m := range c.Models {
		if err := m.Validate(); err != nil {
			return errors.Wrapf(err, "config: model %d", i)
		}
		if prev, ok := names[m.Name]; ok {
			return errors.Errorf("config: models %d and %d are both named %q", prev, i, m.Name)
		}
		names[m.Name] = i
	}
	return nil
}

// Find returns the model called name.
func (c *Config) Find(name string) (*Model, bool) {
	for i := range c.Models {
		if c.Models[i].Name == name {
			return &c.Models[i], true
		}
	}
	return nil, false
}

// Validate checks a single model entry.
func (m *Model) Validate() error {
	variant, err := tokenizer.ParseVariant(m.Variant)
	if err != nil {
		return err
	}
	if m.Name == "" {
		return errors.New("missing name")
	}
	if m.Input == "" {
		return errors.Errorf("%s: missing input", m.Name)
	}
	if m.Output == "" {
		return errors.Errorf("%s: missing output", m.Name)
	}
	if m.MinFrequency < 0 {
		return errors.Errorf("%s: negative min_frequency %d", m.Name, m.MinFrequency)
	}

	if variant == tokenizer.VariantPerChar {
		if m.Merges != nil || m.VocabSize != nil {
			return errors.Errorf("%s: per-char models take no merges or vocab_size", m.Name)
		}
		return nil
	}

	switch {
	case m.Merges != nil && m.VocabSize != nil:
		return errors.Errorf("%s: set merges or vocab_size, not both", m.Name)
	case m.Merges != nil && *m.Merges < 0:
		return errors.Errorf("%s: negative merges %d", m.Name, *m.Merges)
	case m.VocabSize != nil:
		if st, ok := tokenizer.FixedSymbols(variant); ok && *m.VocabSize < st.Len() {
			return errors.Errorf("%s: vocab_size %d below the %d base symbols of %s", m.Name, *m.VocabSize, st.Len(), variant)
		}
		if *m.VocabSize < 1 {
			return errors.Errorf("%s: vocab_size %d", m.Name, *m.VocabSize)
		}
	}
	return nil
}

// MergeCount resolves how many merges to learn on top of base atomic symbols.
func (m *Model) MergeCount(base int) (int, error) {
	if m.Merges != nil {
		return *m.Merges, nil
	}
	if m.VocabSize == nil {
		return 0, nil
	}
	if *m.VocabSize < base {
		return 0, errors.Errorf("%s: vocab_size %d below the %d base symbols", m.Name, *m.VocabSize, base)
	}
	return *m.VocabSize - base, nil
}
