package store

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/shivendrra/tokenizers/internal/tokenizer/core"
)

// PerCharHeader is the first line of every per-character table file.
const PerCharHeader = "per-char v1"

// WritePerChar writes a header line then "<id> <char>" per symbol. Characters that are spaces,
// non-graphic, or start with a double quote are written Go-quoted so every line survives a
// line-based read.
func WritePerChar(w io.Writer, symbols []string) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, PerCharHeader); err != nil {
		return errors.Wrap(err, "write per-char")
	}
	for id, s := range symbols {
		if _, err := fmt.Fprintf(bw, "%d %s\n", id, encodeChar(s)); err != nil {
			return errors.Wrap(err, "write per-char")
		}
	}
	return errors.Wrap(bw.Flush(), "write per-char")
}

// ReadPerChar reads a table written by WritePerChar. Ids may appear in any order but must cover
// 0..n-1 exactly once.
func ReadPerChar(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "read per-char")
		}
		return nil, core.InvalidFormatf("per-char: missing %q header", PerCharHeader)
	}
	if header := strings.TrimSpace(sc.Text()); header != PerCharHeader {
		return nil, core.InvalidFormatf("per-char: header %q, want %q", header, PerCharHeader)
	}

	byID := make(map[int]string)
	lineNo := 1
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == "" {
			continue
		}

		idStr, raw, ok := strings.Cut(line, " ")
		if !ok || raw == "" {
			return nil, core.InvalidFormatf("per-char line %d: want \"<id> <char>\"", lineNo)
		}
		id, err := strconv.Atoi(idStr)
		if err != nil || id < 0 {
			return nil, core.InvalidFormatf("per-char line %d: bad id %q", lineNo, idStr)
		}
		s, err := decodeChar(raw)
		if err != nil {
			return nil, core.InvalidFormatf("per-char line %d: bad char %s", lineNo, raw)
		}
		if _, dup := byID[id]; dup {
			return nil, core.InvalidFormatf("per-char line %d: id %d defined twice", lineNo, id)
		}
		byID[id] = s
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read per-char")
	}

	symbols := make([]string, len(byID))
	for id, s := range byID {
		if id >= len(symbols) {
			return nil, core.InvalidFormatf("per-char: ids not dense, %d defined but only %d entries", id, len(symbols))
		}
		symbols[id] = s
	}
	return symbols, nil
}

func encodeChar(s string) string {
	if needsQuote(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuote(s string) bool {
	if s == "" || s[0] == '"' || !utf8.ValidString(s) {
		return true
	}
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsGraphic(r) {
			return true
		}
	}
	return false
}

func decodeChar(raw string) (string, error) {
	if raw[0] != '"' {
		return raw, nil
	}
	s, err := strconv.Unquote(raw)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", errors.New("empty char")
	}
	return s, nil
}
