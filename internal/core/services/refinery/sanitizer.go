package refinery

// Sanitizer removes non-linguistic noise: emoji, elongated runs, separators, superscripts,
// email artifacts and stray punctuation. Whitespace is collapsed and trimmed last.
type Sanitizer struct {
	rules RuleTable
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{rules: SanitizerRules}
}

func (s *Sanitizer) Sanitize(text string) string {
	return s.rules.Apply(text)
}

func (s *Sanitizer) Rules() RuleTable {
	return s.rules
}
