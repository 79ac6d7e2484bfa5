package refinery

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
	"github.com/ruhan-islam/text-summarizer/internal/pkg/stopwords"
)

// RefineryV1English prepares English news text for summarization training.
//
// Pipeline:
//   - normalize: lowercase, ASCII folding, URL removal, contraction expansion, symbol spelling
//   - sanitize: emoji removal, elongation collapsing, punctuation and whitespace cleanup
//   - filter_stopwords: NLTK English stopwords, keeping "no" and "not"
//   - trim
type RefineryV1English struct {
	config   *RefineryConfig
	nodes    *ProcessingNodes
	filter   *StopwordFilter
	pipeline []ProcessingStep
}

// NewRefineryV1English creates a V1 refinery. It fails when the stopword corpus cannot be read
// or lacks one of DefaultExclusions.
func NewRefineryV1English(customConfig map[string]interface{}) (*RefineryV1English, error) {
	config := defaultEnglishConfig()
	if customConfig != nil {
		if err := applyCustomConfig(config, customConfig); err != nil {
			return nil, err
		}
	}

	var filter *StopwordFilter
	if config.RemoveStopwords {
		set, err := buildStopwordSet(config)
		if err != nil {
			return nil, err
		}
		filter = NewStopwordFilter(set)
	}

	nodes := NewProcessingNodes(config, filter)

	pipeline := []ProcessingStep{
		nodes.Normalize,
		nodes.Sanitize,
		nodes.FilterStopwords,
		nodes.Trim,
	}

	return &RefineryV1English{
		config:   config,
		nodes:    nodes,
		filter:   filter,
		pipeline: pipeline,
	}, nil
}

func defaultEnglishConfig() *RefineryConfig {
	return &RefineryConfig{
		Language:        "english",
		Corpus:          stopwords.Embedded(),
		Normalize:       true,
		Sanitize:        true,
		RemoveStopwords: true,
		TrimWhitespace:  true,
	}
}

func buildStopwordSet(config *RefineryConfig) (*StopwordSet, error) {
	var (
		set *StopwordSet
		err error
	)
	if len(config.Stopwords) > 0 {
		set, err = NewStopwordSet(config.Stopwords, DefaultExclusions...)
	} else {
		set, err = LoadStopwordSet(config.Corpus, config.Language)
	}
	if err != nil {
		return nil, err
	}

	return set.With(config.ExtraStopwords...).Without(config.KeepWords...), nil
}

// Process processes text through the configured pipeline
func (r *RefineryV1English) Process(text string) string {
	for _, step := range r.pipeline {
		text = step(text)
	}
	return text
}

// Stage accessors for callers that need a single stage (CLI --stage).

func (r *RefineryV1English) Normalize(text string) string { return r.nodes.normalizer.Normalize(text) }

func (r *RefineryV1English) Sanitize(text string) string { return r.nodes.sanitizer.Sanitize(text) }

// FilterStopwords applies the stopword filter, or returns text unchanged when removal is off.
func (r *RefineryV1English) FilterStopwords(text string) string {
	if r.filter == nil {
		return text
	}
	return r.filter.Filter(text)
}

// Stopwords returns the active stopword set, nil when removal is off.
func (r *RefineryV1English) Stopwords() *StopwordSet {
	if r.filter == nil {
		return nil
	}
	return r.filter.Set()
}

// Fingerprint identifies everything that changes Process output besides the version: the stage
// flags and the active stopword set.
func (r *RefineryV1English) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "normalize=%t sanitize=%t remove_stopwords=%t trim=%t\n",
		r.config.Normalize, r.config.Sanitize, r.config.RemoveStopwords, r.config.TrimWhitespace)
	if set := r.Stopwords(); set != nil {
		h.Write([]byte(strings.Join(set.Words(), "\n")))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (r *RefineryV1English) GetVersion() string {
	return "v1"
}

func (r *RefineryV1English) GetName() string {
	return "English Summarization Cleaning"
}

func (r *RefineryV1English) GetDescription() string {
	return "English text cleaning for summarization datasets: contraction expansion, symbol spelling, emoji and punctuation removal, NLTK stopwords without negations"
}

// GetDefaultConfig returns the default configuration
func (r *RefineryV1English) GetDefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"language":         "english",
		"stopwords":        []string{},
		"extra_stopwords":  []string{},
		"keep_words":       []string{},
		"normalize":        true,
		"sanitize":         true,
		"remove_stopwords": true,
		"trim_whitespace":  true,
	}
}

// GetPipelineSteps returns the list of processing steps
func (r *RefineryV1English) GetPipelineSteps() []string {
	return []string{
		"normalize",
		"sanitize",
		"filter_stopwords",
		"trim",
	}
}

// applyCustomConfig overlays recognised keys. List values may be []string or []interface{}
// (as decoded from JSON task payloads).
func applyCustomConfig(config *RefineryConfig, custom map[string]interface{}) error {
	if v, ok := custom["language"].(string); ok && v != "" {
		config.Language = v
	}
	if v, ok := custom["corpus"].(stopwords.Corpus); ok && v != nil {
		config.Corpus = v
	}

	lists := map[string]*[]string{
		"stopwords":       &config.Stopwords,
		"extra_stopwords": &config.ExtraStopwords,
		"keep_words":      &config.KeepWords,
	}
	for key, dst := range lists {
		raw, present := custom[key]
		if !present || raw == nil {
			continue
		}
		words, err := toStringSlice(raw)
		if err != nil {
			return apperrors.InvalidInput(fmt.Sprintf("invalid %s: %v", key, err))
		}
		*dst = words
	}

	if v, ok := custom["normalize"].(bool); ok {
		config.Normalize = v
	}
	if v, ok := custom["sanitize"].(bool); ok {
		config.Sanitize = v
	}
	if v, ok := custom["remove_stopwords"].(bool); ok {
		config.RemoveStopwords = v
	}
	if v, ok := custom["trim_whitespace"].(bool); ok {
		config.TrimWhitespace = v
	}

	return nil
}

func toStringSlice(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", raw)
	}
}
