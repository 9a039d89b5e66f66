package store

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/shivendrra/tokenizers/internal/tokenizer/core"
)

// WriteVocab writes "[<text>] <id>" for every id of m, with control characters and invalid
// UTF-8 escaped. The file is for people to read; nothing loads it back.
func WriteVocab(w io.Writer, m *core.Model) error {
	bw := bufio.NewWriter(w)
	for id := 0; id < m.VocabSize(); id++ {
		tok, err := m.TokenString(id)
		if err != nil {
			return errors.Wrap(err, "write vocab")
		}
		if _, err := fmt.Fprintf(bw, "[%s] %d\n", core.RenderToken(tok), id); err != nil {
			return errors.Wrap(err, "write vocab")
		}
	}
	return errors.Wrap(bw.Flush(), "write vocab")
}
