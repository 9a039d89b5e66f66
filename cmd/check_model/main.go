package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/shivendrra/tokenizers/internal/store"
	"github.com/shivendrra/tokenizers/internal/tokenizer"
)

func main() {
	var (
		prefix  = flag.String("model", "", "Model file prefix")
		variant = flag.String("variant", string(tokenizer.VariantBasic), "Tokenizer variant: basic, bytes, dna")
		sample  = flag.String("sample", "", "Text file to round trip (default: every token's own text)")
	)
	flag.Parse()

	if *prefix == "" {
		flag.Usage()
		os.Exit(2)
	}

	v, err := tokenizer.ParseVariant(*variant)
	if err != nil {
		log.Fatalf("%v", err)
	}
	tok, err := store.LoadFiles(*prefix, v)
	if err != nil {
		log.Fatalf("failed to load tokenizer: %v", err)
	}
	m := tok.Model()

	// ids are dense and every merged token is the concatenation of its parents
	var all strings.Builder
	for id := 0; id < m.VocabSize(); id++ {
		text, err := m.TokenString(id)
		if err != nil {
			log.Fatalf("token %d: %v", id, err)
		}
		all.WriteString(text)

		p, ok := m.Parents(id)
		if !ok {
			if id >= m.BaseSize() {
				log.Fatalf("token %d has no parents but is not a base symbol", id)
			}
			continue
		}
		left, _ := m.TokenString(p.Left)
		right, _ := m.TokenString(p.Right)
		if text != left+right {
			log.Fatalf("token %d is %q, want %q + %q", id, text, left, right)
		}
		if m.TokenLen(id) != m.TokenLen(p.Left)+m.TokenLen(p.Right) {
			log.Fatalf("token %d length %d, want %d", id, m.TokenLen(id), m.TokenLen(p.Left)+m.TokenLen(p.Right))
		}
	}
	log.Printf("%d tokens (%d base + %d merges, longest %d bytes), ids are dense and expansions consistent",
		m.VocabSize(), m.BaseSize(), m.NumMerges(), m.MaxTokenLen())

	text := all.String()
	if *sample != "" {
		b, err := os.ReadFile(*sample)
		if err != nil {
			log.Fatalf("read sample: %v", err)
		}
		text = string(b)
	}

	ids, err := tok.Encode(text)
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	round, err := tok.Decode(ids)
	if err != nil {
		log.Fatalf("decode: %v", err)
	}
	if round != text {
		log.Fatalf("round trip mismatch over %d bytes", len(text))
	}
	log.Printf("round trip ok: %d bytes -> %d tokens", len(text), len(ids))
}
