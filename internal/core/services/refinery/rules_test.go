package refinery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_Individual(t *testing.T) {
	tests := []struct {
		name     string
		rule     Rule
		input    string
		expected string
	}{
		{"urls", RuleStripURLs, "see http://a.b/c?d=1 here", "see  here"},
		{"there is", RuleThereIs, "there's", "there is"},
		{"contraction rules are case insensitive", RuleIAm, "I'M", "i am"},
		{"will not", RuleWillNot, "won't", "will not"},
		{"generic not", RuleNot, "isn't", "is not"},
		{"dollar", RuleDollar, "$5", " usd 5"},
		{"taka", RuleTaka, "৳5", " usd 5"},
		{"rupee", RuleRupee, "₹5", " inr 5"},
		{"percent", RulePercent, "5%", "5 percent"},
		{"ampersand needs surrounding spaces", RuleAmpersand, "a & b&c", "a and b&c"},
		{"bare amp entity becomes escaped ampersand", RuleAmpEntity, "a&ampb", `a\&b`},
		{"lone s is a plain substring match", RuleLoneS, "it s a s b", "itab"},
		{"entity remnant", RuleEntityApostrophe, "&#39;x", ";x"},
		{"escaped newline", RuleEscapedNewline, `a\nb`, "ab"},
		{"replacement is literal", MustRule("dollar_ref", "x", "$1"), "axb", "a$1b"},
		{"emoji", RuleStripEmoji, "a🚀🎉b✅c", "abc"},
		{"separators", RuleSeparators, "a-b_c;d:e", "a b c d e"},
		{"superscripts", RuleSuperscripts, "x⁽ⁿ⁾²", "x"},
		{"email headers", RuleEmailHeaders, "From: a@b.com Subject: hi", ": : hi"},
		{"stray punctuation", RuleStrayPunct, "a.b", "a b"},
		{"stray punctuation keeps lone symbols", RuleStrayPunct, "a = b", "a = b"},
		{"whitespace includes unicode spaces", RuleCollapseSpace, "a \u00a0\t\u2003 b", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rule.Apply(tt.input))
		})
	}
}

func TestCollapseRepeats(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"aaa", "a"},
		{"aa", "aa"},
		{"soooo", "so"},
		{"!!!??", "!??"},
		{"a\n\n\nb", "a\n\n\nb"},
		{"ééé", "é"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, collapseRepeats(tt.input), "input %q", tt.input)
	}
}

func TestFoldASCII(t *testing.T) {
	assert.Equal(t, "cafe", foldASCII("café"))
	assert.Equal(t, "fi", foldASCII("ﬁ"))
	assert.Equal(t, "", foldASCII("😊₹"))
}

func TestRuleTable_OrderMatters(t *testing.T) {
	// Apostrophes must survive until the contraction rules have run.
	ordered := RuleTable{RuleIAm, RuleStripApostrophe}
	reversed := RuleTable{RuleStripApostrophe, RuleIAm}

	assert.Equal(t, "i am", ordered.Apply("i'm"))
	assert.Equal(t, "im", reversed.Apply("i'm"))
}

func TestRuleTable_Names(t *testing.T) {
	names := NormalizerRules.Names()
	require.NotEmpty(t, names)

	assert.Equal(t, "lowercase", names[0])
	assert.Equal(t, "trim", names[len(names)-1])

	seen := make(map[string]bool)
	for _, n := range append(names, SanitizerRules.Names()...) {
		if n == "lowercase" || n == "trim" {
			continue
		}
		assert.False(t, seen[n], "duplicate rule name %s", n)
		seen[n] = true
	}

	rule, ok := SanitizerRules.Find("collapse_repeats")
	require.True(t, ok)
	assert.Equal(t, "a", rule.Apply("aaaa"))

	_, ok = SanitizerRules.Find("missing")
	assert.False(t, ok)
}

func TestContractionRules_SpecificBeforeGeneric(t *testing.T) {
	names := ContractionRules.Names()
	index := func(name string) int {
		for i, n := range names {
			if n == name {
				return i
			}
		}
		t.Fatalf("rule %s not found", name)
		return -1
	}

	assert.Less(t, index("will_not"), index("suffix_not"))
	assert.Less(t, index("can_not"), index("suffix_not"))
	assert.Less(t, index("suffix_not"), index("dropped_g"))
}
