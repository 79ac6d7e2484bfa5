package refinery

// ProcessingNodes exposes the stages as ProcessingSteps. Each node is a no-op when its flag is
// off, so a refinery can switch stages without rebuilding its pipeline slice.
type ProcessingNodes struct {
	config     *RefineryConfig
	normalizer *Normalizer
	sanitizer  *Sanitizer
	filter     *StopwordFilter
}

// NewProcessingNodes creates nodes for config. filter may be nil when stopword removal is off.
func NewProcessingNodes(config *RefineryConfig, filter *StopwordFilter) *ProcessingNodes {
	return &ProcessingNodes{
		config:     config,
		normalizer: NewNormalizer(),
		sanitizer:  NewSanitizer(),
		filter:     filter,
	}
}

// Normalize runs the Normalizer
func (p *ProcessingNodes) Normalize(text string) string {
	if !p.config.Normalize {
		return text
	}
	return p.normalizer.Normalize(text)
}

// Sanitize runs the Sanitizer
func (p *ProcessingNodes) Sanitize(text string) string {
	if !p.config.Sanitize {
		return text
	}
	return p.sanitizer.Sanitize(text)
}

// FilterStopwords drops stopword tokens
func (p *ProcessingNodes) FilterStopwords(text string) string {
	if !p.config.RemoveStopwords || p.filter == nil {
		return text
	}
	return p.filter.Filter(text)
}

// Trim strips leading and trailing whitespace
func (p *ProcessingNodes) Trim(text string) string {
	if !p.config.TrimWhitespace {
		return text
	}
	return trimSpace(text)
}
