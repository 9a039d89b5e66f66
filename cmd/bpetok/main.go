package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/shivendrra/tokenizers/internal/config"
	"github.com/shivendrra/tokenizers/internal/store"
	"github.com/shivendrra/tokenizers/internal/tokenizer"
)

const usage = `usage: bpetok <command> [flags]

commands:
  train   learn merges from a text file, or every model in -config
  encode  print the token ids of -text or stdin as JSON, with -model or a -config entry
  decode  read JSON token ids from -ids or stdin and print the text
`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "train":
		runTrain(args)
	case "encode":
		runEncode(args)
	case "decode":
		runDecode(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

// model is a loaded tokenizer of either kind.
type model struct {
	tok     *tokenizer.Tokenizer
	perChar *tokenizer.PerChar
}

func loadModel(prefix, variantName string) model {
	variant, err := tokenizer.ParseVariant(variantName)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if variant == tokenizer.VariantPerChar {
		p, err := store.LoadPerChar(prefix)
		if err != nil {
			log.Fatalf("failed to load model: %v", err)
		}
		return model{perChar: p}
	}

	tok, err := store.LoadFiles(prefix, variant)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}
	return model{tok: tok}
}

func readInput(text string) string {
	if text != "" {
		return text
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("read stdin: %v", err)
	}
	return string(b)
}

// encodeSettings are the model and cache the encode command runs with.
type encodeSettings struct {
	prefix    string
	variant   string
	cacheSize int
}

// fromConfig takes the model called name from the training config at path. Settings named in
// set were given on the command line and keep their value. An empty name picks the only model.
func (s encodeSettings) fromConfig(path, name string, set map[string]bool) (encodeSettings, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return s, err
	}

	if name == "" {
		if len(cfg.Models) != 1 {
			return s, errors.Errorf("%s lists %d models, pick one with -name", path, len(cfg.Models))
		}
		name = cfg.Models[0].Name
	}
	m, ok := cfg.Find(name)
	if !ok {
		return s, errors.Errorf("%s: no model named %q", path, name)
	}

	if !set["model"] {
		s.prefix = m.Output
	}
	if !set["variant"] {
		s.variant = m.Variant
	}
	if !set["cache-size"] {
		s.cacheSize = cfg.CacheSize
	}
	return s, nil
}

func runEncode(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "Training config to take -model, -variant and -cache-size from")
		name       = fs.String("name", "", "Model to use from -config")
		prefix     = fs.String("model", "", "Model file prefix")
		variant    = fs.String("variant", string(tokenizer.VariantBasic), "Tokenizer variant: basic, bytes, dna, per-char")
		text       = fs.String("text", "", "Text to encode (default: stdin)")
		lines      = fs.Bool("lines", false, "Encode stdin line by line, one JSON array per line")
		cacheSize  = fs.Int("cache-size", tokenizer.DefaultCacheSize, "Encoded lines to keep in the cache with -lines")
	)
	fs.Parse(args)

	settings := encodeSettings{prefix: *prefix, variant: *variant, cacheSize: *cacheSize}
	if *configPath != "" {
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

		var err error
		if settings, err = settings.fromConfig(*configPath, *name, set); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	if settings.prefix == "" {
		fmt.Fprintln(os.Stderr, "missing required -model or -config")
		fs.Usage()
		os.Exit(2)
	}
	m := loadModel(settings.prefix, settings.variant)

	out := json.NewEncoder(os.Stdout)
	out.SetEscapeHTML(false)

	if *lines && m.tok != nil {
		cached, err := tokenizer.NewCached(m.tok, settings.cacheSize)
		if err != nil {
			log.Fatalf("%v", err)
		}
		sc := bufio.NewScanner(os.Stdin)
		sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
		for sc.Scan() {
			ids, err := cached.Encode(sc.Text())
			if err != nil {
				log.Fatalf("encode: %v", err)
			}
			if err := out.Encode(ids); err != nil {
				log.Fatalf("write tokens: %v", err)
			}
		}
		if err := sc.Err(); err != nil {
			log.Fatalf("read stdin: %v", err)
		}
		return
	}

	input := readInput(*text)
	var ids []int
	if m.perChar != nil {
		ids = m.perChar.Encode(input)
	} else {
		var err error
		if ids, err = m.tok.Encode(input); err != nil {
			log.Fatalf("encode: %v", err)
		}
	}
	if ids == nil {
		ids = []int{}
	}
	if err := out.Encode(ids); err != nil {
		log.Fatalf("write tokens: %v", err)
	}
}

func runDecode(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	var (
		prefix  = fs.String("model", "", "Model file prefix")
		variant = fs.String("variant", string(tokenizer.VariantBasic), "Tokenizer variant: basic, bytes, dna, per-char")
		idsArg  = fs.String("ids", "", "JSON array of token ids (default: stdin)")
	)
	fs.Parse(args)

	if *prefix == "" {
		fmt.Fprintln(os.Stderr, "missing required -model")
		fs.Usage()
		os.Exit(2)
	}
	m := loadModel(*prefix, *variant)

	var src io.Reader = os.Stdin
	if *idsArg != "" {
		src = strings.NewReader(*idsArg)
	}

	// each JSON array on the input is decoded as it arrives
	in := json.NewDecoder(src)
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	var dec tokenizer.Decoder
	if m.tok != nil {
		dec = m.tok.NewDecoder()
	}
	for {
		var ids []int
		if err := in.Decode(&ids); err == io.EOF {
			break
		} else if err != nil {
			log.Fatalf("read token ids: %v", err)
		}

		if m.perChar != nil {
			w.WriteString(m.perChar.Decode(ids))
			continue
		}
		b, err := dec.Feed(ids)
		if err != nil {
			w.Flush()
			log.Fatalf("decode: %v", err)
		}
		w.Write(b)
	}
}
