package refinery

// Normalizer reduces text to lowercase ASCII, expands contractions, spells out symbols and strips
// URLs and HTML entity remnants. It never fails.
type Normalizer struct {
	rules RuleTable
}

// NewNormalizer creates a normalizer over NormalizerRules.
func NewNormalizer() *Normalizer {
	return &Normalizer{rules: NormalizerRules}
}

// Normalize runs the normalization rules in order.
func (n *Normalizer) Normalize(text string) string {
	return n.rules.Apply(text)
}

// Rules returns the rule table.
func (n *Normalizer) Rules() RuleTable {
	return n.rules
}
