package refinery

import (
	"strings"
	"testing"
	"unicode"
)

func newTestRefinery(t *testing.T, config map[string]interface{}) *RefineryV1English {
	t.Helper()
	r, err := NewRefineryV1English(config)
	if err != nil {
		t.Fatalf("NewRefineryV1English() error = %v", err)
	}
	return r
}

// TestRefineryV1English_Normalize covers the normalization stage on its own
func TestRefineryV1English_Normalize(t *testing.T) {
	refinery := newTestRefinery(t, nil)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "negative contractions",
			input:    "won't can't didn't",
			expected: "will not can not did not",
		},
		{
			name:     "contractions match uppercase produced by ascii folding",
			input:    "℃an't",
			expected: "can not",
		},
		{
			name:     "suffix contractions",
			input:    "They'll we've you're she'd",
			expected: "they will we have you are she would",
		},
		{
			name:     "what's becomes that is",
			input:    "What's up",
			expected: "that is up",
		},
		{
			name:     "dropped g and clipped words",
			input:    "goin' 'bout 'til",
			expected: "going about until",
		},
		{
			name:     "possessive apostrophe stripped",
			input:    "It's John's book",
			expected: "it is johns book",
		},
		{
			name:     "currency percent and ampersand",
			input:    "Price: $5 & 10%",
			expected: "price:  usd 5 and 10 percent",
		},
		{
			name:     "accents folded to ascii",
			input:    "Café résumé",
			expected: "cafe resume",
		},
		{
			name:     "urls stripped",
			input:    "Visit https://example.com/page now",
			expected: "visit  now",
		},
		{
			name:     "html entities",
			input:    "&#39;quoted&#39; &amp; more",
			expected: `;quoted; \&; more`,
		},
		{
			name:     "escaped newlines",
			input:    `line one\nline two`,
			expected: "line oneline two",
		},
		{
			name:     "commas and double quotes",
			input:    `He said "yes", ok`,
			expected: "he said yes ok",
		},
		{
			name:     "lone s collapses across words",
			input:    "the cat s toy",
			expected: "the cattoy",
		},
		{
			name:     "non-ascii currency glyphs are folded away first",
			input:    "৳100 ₹50",
			expected: "100 50",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := refinery.Normalize(tt.input)
			if result != tt.expected {
				t.Errorf("Normalize(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestRefineryV1English_Sanitize covers the sanitization stage on its own
func TestRefineryV1English_Sanitize(t *testing.T) {
	refinery := newTestRefinery(t, nil)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normalized scenario",
			input:    "i am so sooo happy!!  it is  usd 5 and 10 percent off",
			expected: "i am so so happy it is usd 5 and 10 percent off",
		},
		{
			name:     "emoji removed",
			input:    "Hello 😊 World",
			expected: "hello world",
		},
		{
			name:     "separators become spaces",
			input:    "well-known_term;here:now",
			expected: "well known term here now",
		},
		{
			name:     "superscripts stripped",
			input:    "x² + y³",
			expected: "x y",
		},
		{
			name:     "email addresses stripped",
			input:    "contact me@example.com today",
			expected: "contact today",
		},
		{
			name:     "punctuation runs",
			input:    "wait... what?!",
			expected: "wait what",
		},
		{
			name:     "elongation collapses to one character",
			input:    "soooo goooood!!!",
			expected: "so god",
		},
		{
			name:     "comma",
			input:    "hello, world!!",
			expected: "hello world",
		},
		{
			name:     "newlines collapse as whitespace",
			input:    "line1\n\n\nline2",
			expected: "line1 line2",
		},
		{
			name:     "whitespace only",
			input:    "   \t\n  ",
			expected: "",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := refinery.Sanitize(tt.input)
			if result != tt.expected {
				t.Errorf("Sanitize(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestRefineryV1English_Process runs the full pipeline
func TestRefineryV1English_Process(t *testing.T) {
	refinery := newTestRefinery(t, nil)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "informal review",
			input:    "I'm so sooo happy!! 😊 It's $5 & 10% off",
			expected: "happy usd 5 10 percent",
		},
		{
			name:     "entities",
			input:    "&#39;quoted&#39; &amp; more",
			expected: "quoted",
		},
		{
			name:     "negations survive",
			input:    "The cat is not here",
			expected: "cat not",
		},
		{
			name:     "no survives",
			input:    "No way",
			expected: "no way",
		},
		{
			name:     "news headline",
			input:    "The Prime Minister's office said on Monday that 5% of funds were released.",
			expected: "prime ministers office said monday 5 percent funds released",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "punctuation only",
			input:    "?!... ---",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := refinery.Process(tt.input)
			if result != tt.expected {
				t.Errorf("Process(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

var representativeCorpus = []string{
	"The Prime Minister's office said on Monday that 5% of funds were released.",
	"Shares of Tata Motors rose 3.5% to ₹450 after the announcement!!",
	"I'm sooo excited 😊 for the new iPhone... it's $999",
	"Visit https://example.com for details & updates",
	"&#39;quoted&#39; &amp; more",
	"Hello, World!!",
	"x² + y³ = z",
	"contact me@example.com today",
	"won't can't didn't",
	"Café owners weren't told about the new rules; they'll protest",
	"   ",
	"",
}

func TestSanitize_Idempotent(t *testing.T) {
	s := NewSanitizer()
	for _, input := range representativeCorpus {
		once := s.Sanitize(input)
		twice := s.Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

// Repeats are collapsed before superscripts are stripped, so a superscript splitting a run
// leaves a new run behind. Standalone Sanitize is not idempotent there; Process is, because
// ascii folding turns the superscript into a digit first.
func TestSanitize_SuperscriptSplitsRun(t *testing.T) {
	s := NewSanitizer()

	if once := s.Sanitize("aa²a"); once != "aaa" {
		t.Fatalf("Sanitize(%q) = %q, expected %q", "aa²a", once, "aaa")
	}
	if twice := s.Sanitize("aaa"); twice != "a" {
		t.Errorf("Sanitize(%q) = %q, expected %q", "aaa", twice, "a")
	}

	refinery := newTestRefinery(t, nil)
	once := refinery.Process("aa²a")
	if twice := refinery.Process(once); once != twice {
		t.Errorf("Process does not converge for %q: %q then %q", "aa²a", once, twice)
	}
}

func TestProcess_Converges(t *testing.T) {
	refinery := newTestRefinery(t, nil)
	for _, input := range representativeCorpus {
		once := refinery.Process(input)
		twice := refinery.Process(once)
		if once != twice {
			t.Errorf("Process does not converge for %q: %q then %q", input, once, twice)
		}
	}
}

func TestProcess_OutputProperties(t *testing.T) {
	refinery := newTestRefinery(t, nil)

	inputs := append([]string{
		"ℌELLO THERE 🚀🚀🚀 $$$ %%% &amp;&amp; &#34;x&#34;",
		"MIXED Case With Ünïcödé and ☀️ weather",
		"tabs\tand\nnewlines\r\neverywhere",
	}, representativeCorpus...)

	forbidden := []string{"$", "%", "&#39", "&#34", "&39", "&34", "&amp", "  "}

	for _, input := range inputs {
		out := refinery.Process(input)
		for _, r := range out {
			if r >= 'A' && r <= 'Z' {
				t.Errorf("Process(%q) = %q contains uppercase %q", input, out, r)
			}
			if r > unicode.MaxASCII {
				t.Errorf("Process(%q) = %q contains non-ascii %q", input, out, r)
			}
		}
		for _, f := range forbidden {
			if strings.Contains(out, f) {
				t.Errorf("Process(%q) = %q contains %q", input, out, f)
			}
		}
		if out != strings.TrimSpace(out) {
			t.Errorf("Process(%q) = %q is not trimmed", input, out)
		}
	}
}

func TestRefineryV1English_Metadata(t *testing.T) {
	refinery := newTestRefinery(t, nil)

	if refinery.GetVersion() != "v1" {
		t.Errorf("GetVersion() = %q", refinery.GetVersion())
	}

	steps := refinery.GetPipelineSteps()
	expected := []string{"normalize", "sanitize", "filter_stopwords", "trim"}
	if strings.Join(steps, ",") != strings.Join(expected, ",") {
		t.Errorf("GetPipelineSteps() = %v, expected %v", steps, expected)
	}
}

func BenchmarkProcess(b *testing.B) {
	refinery, err := NewRefineryV1English(nil)
	if err != nil {
		b.Fatal(err)
	}
	text := strings.Repeat("The Prime Minister's office said on Monday that 5% of funds were released! ", 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		refinery.Process(text)
	}
}
