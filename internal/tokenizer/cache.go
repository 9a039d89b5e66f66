package tokenizer

import (
	"slices"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// DefaultCacheSize is the number of encoded texts Cached keeps when no size is given.
const DefaultCacheSize = 4096

// Cached puts an LRU cache of encode results in front of a Tokenizer. It pays off when the
// same texts (lines, words, records) are encoded repeatedly.
type Cached struct {
	tok   *Tokenizer
	cache *lru.Cache
}

// NewCached wraps tok with a cache of size entries; size <= 0 selects DefaultCacheSize.
func NewCached(tok *Tokenizer, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "create encode cache")
	}
	return &Cached{tok: tok, cache: cache}, nil
}

// Encode returns the cached ids for text, encoding and caching them on a miss.
// Failed encodes are not cached. The returned slice is owned by the caller.
func (c *Cached) Encode(text string) ([]int, error) {
	if v, ok := c.cache.Get(text); ok {
		return slices.Clone(v.([]int)), nil
	}

	ids, err := c.tok.Encode(text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, slices.Clone(ids))
	return ids, nil
}

// Decode passes through to the wrapped tokenizer.
func (c *Cached) Decode(ids []int) (string, error) {
	return c.tok.Decode(ids)
}

// Len is the number of cached entries.
func (c *Cached) Len() int { return c.cache.Len() }

// Tokenizer returns the wrapped tokenizer.
func (c *Cached) Tokenizer() *Tokenizer { return c.tok }
