package core

import "strings"

// Decode a given sequence of tokens back to text
func (m *Model) Decode(tokens []int) (string, error) {
	if len(tokens) == 0 {
		return "", nil
	}

	total := 0
	for _, id := range tokens {
		if id < 0 || id >= len(m.vocab) {
			return "", &UnknownIDError{ID: id}
		}

		total += len(m.vocab[id])
	}

	var sb strings.Builder
	sb.Grow(total)
	for _, id := range tokens {
		sb.WriteString(m.vocab[id])
	}

	return sb.String(), nil
}

// AppendDecoded appends the expansion of tokens to dst.
func (m *Model) AppendDecoded(dst []byte, tokens []int) ([]byte, error) {
	for _, id := range tokens {
		if id < 0 || id >= len(m.vocab) {
			return dst, &UnknownIDError{ID: id}
		}
		dst = append(dst, m.vocab[id]...)
	}
	return dst, nil
}

// TokenString returns the expansion of a single token id.
func (m *Model) TokenString(id int) (string, error) {
	if id < 0 || id >= len(m.vocab) {
		return "", &UnknownIDError{ID: id}
	}
	return m.vocab[id], nil
}
