package refinery

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Character classes shared by the rules. They follow Unicode semantics rather than RE2's ASCII
// \w and \s so the stages behave the same on text that never went through ASCII folding.
const (
	spaceClass = `\t\n\v\f\r \x{1c}-\x{1f}\x{85}\p{Z}`
	wordClass  = `\p{L}\p{N}_`
)

// Rule is one entry of a RuleTable: a matcher and its replacement. Replacements are literal,
// "$" in a replacement is not expanded. Rules that RE2 cannot express carry a rewrite func
// instead of a pattern.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string

	rewrite func(string) string
}

// MustRule compiles a regular-expression rule. It panics on a bad pattern, so it is only used
// for package-level tables.
func MustRule(name, pattern, replacement string) Rule {
	return Rule{
		Name:        name,
		Pattern:     regexp.MustCompile(pattern),
		Replacement: replacement,
	}
}

// LiteralRule matches text exactly.
func LiteralRule(name, literal, replacement string) Rule {
	return MustRule(name, regexp.QuoteMeta(literal), replacement)
}

// FuncRule wraps a rewrite that is not a single regular expression.
func FuncRule(name string, rewrite func(string) string) Rule {
	return Rule{Name: name, rewrite: rewrite}
}

// Apply runs the rule over text.
func (r Rule) Apply(text string) string {
	if r.rewrite != nil {
		return r.rewrite(text)
	}
	return r.Pattern.ReplaceAllLiteralString(text, r.Replacement)
}

// RuleTable is an ordered list of rules. Order is part of the contract: later rules see the
// output of earlier ones.
type RuleTable []Rule

// Apply runs every rule in declared order.
func (t RuleTable) Apply(text string) string {
	for _, rule := range t {
		text = rule.Apply(text)
	}
	return text
}

// Names returns the rule names in order.
func (t RuleTable) Names() []string {
	names := make([]string, len(t))
	for i, rule := range t {
		names[i] = rule.Name
	}
	return names
}

// Find returns the rule called name.
func (t RuleTable) Find(name string) (Rule, bool) {
	for _, rule := range t {
		if rule.Name == name {
			return rule, true
		}
	}
	return Rule{}, false
}

// Concat joins tables into a new one.
func Concat(tables ...RuleTable) RuleTable {
	var out RuleTable
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}

// Generic rewrites
var (
	RuleLowercase = FuncRule("lowercase", strings.ToLower)
	RuleFoldASCII = FuncRule("fold_ascii", foldASCII)
	RuleTrim      = FuncRule("trim", trimSpace)
)

// Normalizer rules
var (
	RuleStripURLs = MustRule("strip_urls", `http[^`+spaceClass+`]+`, "")

	// Specific contractions come before the generic suffix rules, which would otherwise consume
	// the apostrophe first.
	RuleThereIs = MustRule("there_is", `(?i)there's`, "there is")
	RuleIAm     = MustRule("i_am", `(?i)i'm`, "i am")
	RuleHeIs    = MustRule("he_is", `(?i)he's`, "he is")
	RuleSheIs   = MustRule("she_is", `(?i)she's`, "she is")
	RuleItIs    = MustRule("it_is", `(?i)it's`, "it is")
	RuleThatIs  = MustRule("that_is", `(?i)that's`, "that is")
	RuleWhatIs  = MustRule("what_is", `(?i)what's`, "that is")
	RuleWhereIs = MustRule("where_is", `(?i)where's`, "where is")
	RuleHowIs   = MustRule("how_is", `(?i)how's`, "how is")
	RuleWill    = MustRule("suffix_will", `(?i)'ll`, " will")
	RuleHave    = MustRule("suffix_have", `(?i)'ve`, " have")
	RuleAre     = MustRule("suffix_are", `(?i)'re`, " are")
	RuleWould   = MustRule("suffix_would", `(?i)'d`, " would")
	RuleWillNot = MustRule("will_not", `(?i)won't`, "will not")
	RuleCanNot  = MustRule("can_not", `(?i)can't`, "can not")
	RuleNot     = MustRule("suffix_not", `(?i)n't`, " not")

	RuleDroppedG = MustRule("dropped_g", `(?i)n'`, "ng")
	RuleAbout    = MustRule("about", `(?i)'bout`, "about")
	RuleUntil    = MustRule("until", `(?i)'til`, "until")

	RuleDollar       = LiteralRule("dollar", "$", " usd ")
	RuleTaka         = LiteralRule("taka", "৳", " usd ")
	RuleRupee        = LiteralRule("rupee", "₹", " inr ")
	RulePercent      = LiteralRule("percent", "%", " percent")
	RuleAmpersand    = LiteralRule("ampersand", " & ", " and ")
	RuleAmpEntityAnd = LiteralRule("amp_entity_and", " &amp ", " and ")
	RuleAmpEntity    = LiteralRule("amp_entity", "&amp", `\&`)

	RuleStripCommas     = LiteralRule("strip_commas", ",", "")
	RuleStripQuotes     = LiteralRule("strip_double_quotes", `"`, "")
	RuleStripApostrophe = LiteralRule("strip_apostrophes", "'", "")
	RuleLoneS           = LiteralRule("lone_s", " s ", "")

	RuleEntityApostrophe     = LiteralRule("entity_apostrophe", "&#39", "")
	RuleEntityApostropheBare = LiteralRule("entity_apostrophe_bare", "&39", "")
	RuleEntityQuote          = LiteralRule("entity_quote", "&#34", "")
	RuleEntityQuoteBare      = LiteralRule("entity_quote_bare", "&34", "")
	RuleEscapedNewline       = LiteralRule("escaped_newline", `\n`, "")
)

// Sanitizer rules
var (
	RuleStripEmoji = MustRule("strip_emoji", `[`+
		`\x{1F600}-\x{1F64F}`+ // emoticons
		`\x{1F300}-\x{1F5FF}`+ // symbols & pictographs
		`\x{1F680}-\x{1F6FF}`+ // transport & map
		`\x{1F1E0}-\x{1F1FF}`+ // flags
		`\x{2500}-\x{2BEF}`+
		`\x{2702}-\x{27B0}`+
		`\x{24C2}-\x{1F251}`+
		`\x{1F926}-\x{1F937}`+
		`\x{10000}-\x{10FFFF}`+
		`\x{2640}-\x{2642}`+
		`\x{2600}-\x{2B55}`+
		`\x{200D}\x{23CF}\x{23E9}\x{231A}\x{FE0F}\x{3030}`+
		`]+`, "")
	RuleCollapseRepeats = FuncRule("collapse_repeats", collapseRepeats)
	RuleSeparators      = MustRule("separators", `[\-_;:]`, " ")
	RuleSuperscripts    = MustRule("superscripts", `[\x{B9}\x{B2}\x{B3}\x{2070}\x{2071}\x{2074}-\x{207F}]`, "")
	RuleEmailHeaders    = MustRule("email_headers", `From|[^`+spaceClass+`]*@[^`+spaceClass+`]*[`+spaceClass+`]?|Subject`, "")
	RuleStrayPunct      = MustRule("stray_punctuation", `[^`+wordClass+spaceClass+`]*[_.!?#&;:><+,\-./)('"]`, " ")
	RuleCollapseSpace   = MustRule("collapse_whitespace", `[`+spaceClass+`]+`, " ")
)

// ContractionRules expands contractions. Declared order matters.
var ContractionRules = RuleTable{
	RuleThereIs, RuleIAm, RuleHeIs, RuleSheIs, RuleItIs, RuleThatIs, RuleWhatIs, RuleWhereIs,
	RuleHowIs, RuleWill, RuleHave, RuleAre, RuleWould, RuleWillNot, RuleCanNot, RuleNot,
	RuleDroppedG, RuleAbout, RuleUntil,
}

// SymbolRules spells out currency, percent and ampersand symbols.
var SymbolRules = RuleTable{
	RuleDollar, RuleTaka, RuleRupee, RulePercent,
	RuleAmpersand, RuleAmpEntityAnd, RuleAmpEntity,
}

// QuoteRules removes commas, quotes and the possessive residue left after them.
var QuoteRules = RuleTable{
	RuleStripCommas, RuleStripQuotes, RuleStripApostrophe, RuleLoneS,
}

// EntityRules removes HTML numeric-entity remnants and escaped newlines.
var EntityRules = RuleTable{
	RuleEntityApostrophe, RuleEntityApostropheBare, RuleEntityQuote, RuleEntityQuoteBare,
	RuleEscapedNewline,
}

// NormalizerRules is the full normalization sequence.
var NormalizerRules = Concat(
	RuleTable{RuleLowercase, RuleFoldASCII, RuleStripURLs},
	ContractionRules,
	SymbolRules,
	QuoteRules,
	EntityRules,
	RuleTable{RuleTrim},
)

// SanitizerRules is the full sanitization sequence.
var SanitizerRules = RuleTable{
	RuleLowercase,
	RuleStripEmoji,
	RuleCollapseRepeats,
	RuleSeparators,
	RuleSuperscripts,
	RuleEmailHeaders,
	RuleStrayPunct,
	RuleCollapseSpace,
	RuleTrim,
}

// foldASCII decomposes text (NFKD) and drops every non-ASCII rune, so accented letters keep
// their base letter and anything without an ASCII form disappears.
func foldASCII(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))

	result, _, err := transform.String(t, text)
	if err != nil {
		// Best effort: keep the ASCII runes of the undecomposed text
		var b strings.Builder
		for _, r := range text {
			if r <= unicode.MaxASCII {
				b.WriteRune(r)
			}
		}
		return b.String()
	}
	return result
}

// collapseRepeats reduces every run of three or more identical runes to a single rune.
// Newlines are never collapsed.
func collapseRepeats(text string) string {
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(rs); {
		j := i + 1
		for j < len(rs) && rs[j] == rs[i] {
			j++
		}

		if rs[i] != '\n' && j-i >= 3 {
			b.WriteRune(rs[i])
		} else {
			for k := i; k < j; k++ {
				b.WriteRune(rs[k])
			}
		}
		i = j
	}

	return b.String()
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func trimSpace(text string) string {
	return strings.TrimFunc(text, isSpace)
}
