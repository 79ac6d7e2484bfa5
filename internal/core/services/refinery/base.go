package refinery

import "github.com/ruhan-islam/text-summarizer/internal/pkg/stopwords"

// BaseRefinery defines the interface that all refinery implementations must follow.
// Implementations must be safe for concurrent use once constructed.
type BaseRefinery interface {
	// Process cleans a single text string through the refinery pipeline
	Process(text string) string

	// GetVersion returns the version identifier (e.g., "v1")
	GetVersion() string

	GetName() string
	GetDescription() string
	GetDefaultConfig() map[string]interface{}

	// GetPipelineSteps returns the list of processing steps in order
	GetPipelineSteps() []string
}

// ProcessingStep represents a single text transformation function
type ProcessingStep func(string) string

// RefineryConfig holds configuration for a refinery
type RefineryConfig struct {
	// Stopword source
	Language       string           `json:"language"`
	Stopwords      []string         `json:"stopwords,omitempty"`
	ExtraStopwords []string         `json:"extra_stopwords,omitempty"`
	KeepWords      []string         `json:"keep_words,omitempty"`
	Corpus         stopwords.Corpus `json:"-"`

	// Stage flags
	Normalize       bool `json:"normalize"`
	Sanitize        bool `json:"sanitize"`
	RemoveStopwords bool `json:"remove_stopwords"`
	TrimWhitespace  bool `json:"trim_whitespace"`
}
