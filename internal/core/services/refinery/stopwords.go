package refinery

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
	"github.com/ruhan-islam/text-summarizer/internal/pkg/stopwords"
)

// DefaultExclusions are removed from every corpus-derived stopword set. Negations carry meaning
// for summaries.
var DefaultExclusions = []string{"no", "not"}

// StopwordSet is an immutable set of lowercase stopwords.
type StopwordSet struct {
	words map[string]struct{}
}

// NewStopwordSet builds a set from words and removes each exclusion. An exclusion missing from
// words is a precondition violation.
func NewStopwordSet(words []string, exclusions ...string) (*StopwordSet, error) {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}

	for _, ex := range exclusions {
		ex = strings.ToLower(ex)
		if _, ok := set[ex]; !ok {
			return nil, apperrors.PreconditionViolation(
				fmt.Sprintf("stopword corpus does not contain required exclusion %q", ex),
			)
		}
		delete(set, ex)
	}

	return &StopwordSet{words: set}, nil
}

// LoadStopwordSet reads language from corpus and applies DefaultExclusions.
func LoadStopwordSet(corpus stopwords.Corpus, language string) (*StopwordSet, error) {
	words, err := corpus.Words(language)
	if err != nil {
		return nil, apperrors.PreconditionViolation(err.Error())
	}
	return NewStopwordSet(words, DefaultExclusions...)
}

// Contains reports whether word is a stopword. Matching is exact.
func (s *StopwordSet) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

func (s *StopwordSet) Len() int {
	return len(s.words)
}

// Words returns the set sorted.
func (s *StopwordSet) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// With returns a copy that also contains extra.
func (s *StopwordSet) With(extra ...string) *StopwordSet {
	out := s.clone()
	for _, w := range extra {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out.words[w] = struct{}{}
		}
	}
	return out
}

// Without returns a copy without keep. Absent words are ignored.
func (s *StopwordSet) Without(keep ...string) *StopwordSet {
	out := s.clone()
	for _, w := range keep {
		delete(out.words, strings.ToLower(strings.TrimSpace(w)))
	}
	return out
}

func (s *StopwordSet) clone() *StopwordSet {
	words := make(map[string]struct{}, len(s.words))
	for w := range s.words {
		words[w] = struct{}{}
	}
	return &StopwordSet{words: words}
}

// StopwordFilter drops stopword tokens from whitespace-separated text.
type StopwordFilter struct {
	set *StopwordSet
}

func NewStopwordFilter(set *StopwordSet) *StopwordFilter {
	return &StopwordFilter{set: set}
}

// Filter splits on whitespace, drops stopwords and joins the rest with single spaces.
func (f *StopwordFilter) Filter(text string) string {
	tokens := strings.FieldsFunc(text, isSpace)

	kept := tokens[:0]
	for _, tok := range tokens {
		if !f.set.Contains(tok) {
			kept = append(kept, tok)
		}
	}

	return strings.Join(kept, " ")
}

// Set returns the filter's stopword set.
func (f *StopwordFilter) Set() *StopwordSet {
	return f.set
}
