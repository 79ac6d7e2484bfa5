// Package stopwords supplies stopword corpora. Corpus files use the one-word-per-line layout of
// the NLTK stopwords collection, named after the language ("english").
package stopwords

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed corpora/*
var embedded embed.FS

// Corpus supplies the stopword list for a language.
type Corpus interface {
	Words(language string) ([]string, error)
}

// EmbeddedCorpus serves the corpora compiled into the binary.
type EmbeddedCorpus struct{}

// Embedded returns the built-in corpus.
func Embedded() EmbeddedCorpus {
	return EmbeddedCorpus{}
}

// Words returns the built-in list for language.
func (EmbeddedCorpus) Words(language string) ([]string, error) {
	f, err := embedded.Open("corpora/" + normalizeLanguage(language))
	if err != nil {
		return nil, fmt.Errorf("no embedded stopword corpus for language %q", language)
	}
	defer f.Close()

	return readWords(f)
}

// Languages lists the embedded corpora.
func (EmbeddedCorpus) Languages() []string {
	entries, err := embedded.ReadDir("corpora")
	if err != nil {
		return nil
	}

	languages := make([]string, 0, len(entries))
	for _, entry := range entries {
		languages = append(languages, entry.Name())
	}
	sort.Strings(languages)
	return languages
}

// FileCorpus reads corpora from a directory on disk, e.g. an nltk_data/corpora/stopwords checkout.
type FileCorpus struct {
	dir string
}

// NewFileCorpus creates a corpus rooted at dir.
func NewFileCorpus(dir string) *FileCorpus {
	return &FileCorpus{dir: dir}
}

// Words reads <dir>/<language>.
func (c *FileCorpus) Words(language string) ([]string, error) {
	path := filepath.Join(c.dir, normalizeLanguage(language))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stopword corpus %s: %w", path, err)
	}
	defer f.Close()

	return readWords(f)
}

// readWords parses one word per line. Words are lowercased, blank lines and duplicates skipped.
func readWords(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	seen := make(map[string]struct{})
	var words []string

	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stopword corpus: %w", err)
	}

	return words, nil
}

func normalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}
