package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

var corpora = map[string]string{
	"tinyshakespeare.txt": "https://raw.githubusercontent.com/karpathy/char-rnn/master/data/tinyshakespeare/input.txt",
}

var client = &http.Client{Timeout: 5 * time.Minute}

// download saves url to destPath and returns the number of bytes written.
func download(url, destPath string) (int64, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, errors.Wrapf(err, "GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", destPath)
	}

	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
		return 0, errors.Wrapf(err, "write %s", destPath)
	}
	if n == 0 {
		os.Remove(destPath)
		return 0, errors.Errorf("download %s: got 0 bytes", url)
	}
	return n, nil
}

func main() {
	var (
		url  = flag.String("url", "", "Download this URL instead of the default corpora")
		name = flag.String("name", "corpus.txt", "File name for -url")
	)
	flag.Parse()

	files := corpora
	if *url != "" {
		files = map[string]string{*name: *url}
	}

	targetDir := filepath.Join("testdata", "corpus")
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir %s: %v\n", targetDir, err)
		os.Exit(1)
	}

	for name, url := range files {
		destPath := filepath.Join(targetDir, name)
		fmt.Printf("-> downloading %s\n", name)

		n, err := download(url, destPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error downloading %s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("   %d bytes\n", n)
	}

	fmt.Printf("done. files in %s/, point BPETOK_CORPUS at one to run the tests on it\n", targetDir)
}
