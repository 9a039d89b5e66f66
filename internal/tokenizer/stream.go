package tokenizer

import (
	"github.com/pkg/errors"

	"github.com/shivendrra/tokenizers/internal/tokenizer/core"
)

// StreamEncoder encodes a byte stream incrementally by buffering input and emitting every
// prefix that ends in a boundary symbol. A boundary symbol is an atomic id that is not part of
// any merge, so no merge can reach across it and the ids before it are final. Input without
// boundary symbols is held until Flush. The concatenated output equals Model.Encode of the
// whole stream.
type StreamEncoder struct {
	model *core.Model
	// lookahead is how many trailing bytes may still change the symbol that starts before them.
	lookahead int

	buf     []byte // bytes not yet emitted
	pending []int  // base ids segmented from buf[:scanned]
	scanned int
	offset  int // stream offset of buf[0], for error reporting
}

// NewStreamEncoder returns a new instance of the encoder state.
func NewStreamEncoder(m *core.Model) *StreamEncoder {
	return &StreamEncoder{
		model:     m,
		lookahead: max(m.Symbols().MaxSymbolLen()-1, 0),
	}
}

// Feed consumes the next chunk of raw bytes and emits any finalized tokens. After an error
// the encoder must be Reset.
func (se *StreamEncoder) Feed(chunk []byte) ([]int, error) {
	se.buf = append(se.buf, chunk...)

	// a symbol starting before limit sees its whole match window, so more input cannot change it
	limit := len(se.buf) - se.lookahead
	if se.scanned >= limit {
		return nil, nil
	}

	symbols := se.model.Symbols()
	cut, cutBytes := -1, 0
	for se.scanned < limit {
		id, size, ok := symbols.MatchBytes(se.buf[se.scanned:])
		if !ok {
			// Split fails at the same position and builds the error
			_, err := symbols.Split(string(se.buf[se.scanned:]))
			return nil, se.withOffset(err, se.scanned)
		}
		se.pending = append(se.pending, id)
		se.scanned += size
		if !se.model.IsMergeComponent(id) {
			cut, cutBytes = len(se.pending), se.scanned
		}
	}

	if cut < 0 {
		return nil, nil
	}

	out := se.model.EncodeIDs(se.pending[:cut])
	se.pending = append(se.pending[:0], se.pending[cut:]...)
	se.buf = append(se.buf[:0], se.buf[cutBytes:]...)
	se.scanned -= cutBytes
	se.offset += cutBytes

	return out, nil
}

// Flush encodes whatever bytes remain in the internal buffer and resets the encoder.
func (se *StreamEncoder) Flush() ([]int, error) {
	defer se.Reset()

	if len(se.buf) == 0 {
		return nil, nil
	}

	out, err := se.model.Encode(string(se.buf))
	if err != nil {
		return nil, se.withOffset(err, 0)
	}
	return out, nil
}

// Reset discards buffered input and starts a new stream.
func (se *StreamEncoder) Reset() {
	se.buf = se.buf[:0]
	se.pending = se.pending[:0]
	se.scanned = 0
	se.offset = 0
}

// withOffset rebases an unknown-symbol offset relative to buf[base:] onto the stream.
func (se *StreamEncoder) withOffset(err error, base int) error {
	var use *core.UnknownSymbolError
	if errors.As(err, &use) {
		use.Offset += se.offset + base
	}
	return errors.Wrap(err, "stream encode")
}

// StreamDecoder decodes token ids chunk by chunk. Byte-level models may split a multi-byte
// character across two Feed calls; callers writing the output to a stream get the bytes back
// intact.
type StreamDecoder struct {
	model  *core.Model
	outBuf []byte
}

// NewStreamDecoder returns a decoder over m.
func NewStreamDecoder(m *core.Model) *StreamDecoder {
	return &StreamDecoder{model: m}
}

// Feed decodes tokens. The returned slice aliases internal memory and is overwritten by the next call.
func (sd *StreamDecoder) Feed(tokens []int) ([]byte, error) {
	n := 0
	for _, id := range tokens {
		n += sd.model.TokenLen(id)
	}
	if cap(sd.outBuf) < n {
		sd.outBuf = make([]byte, 0, n)
	}

	out, err := sd.model.AppendDecoded(sd.outBuf[:0], tokens)
	if err != nil {
		return nil, errors.Wrap(err, "stream decode")
	}
	sd.outBuf = out
	return out, nil
}
