package sanitize

import "regexp"

// Rule rewrites one class of malformed link the model tends to emit.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

// DefaultRules covers the link defects observed in generated answers.
// Order matters: scheme fixes run before path fixes.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "doubled_scheme",
			Pattern: regexp.MustCompile(`https?://(https?://)`),
			Replace: "$1",
		},
		{
			Name:    "bare_www",
			Pattern: regexp.MustCompile(`(^|[\s(])www\.`),
			Replace: "${1}https://www.",
		},
		{
			Name:    "markdown_bare_www",
			Pattern: regexp.MustCompile(`\]\(www\.`),
			Replace: "](https://www.",
		},
		{
			Name:    "doubled_slash_path",
			Pattern: regexp.MustCompile(`([^:/\s])/{2,}`),
			Replace: "$1/",
		},
		{
			Name:    "trailing_link_punct",
			Pattern: regexp.MustCompile(`(https://\S+?)[.,;]+(\s|$)`),
			Replace: "$1$2",
		},
	}
}

// Sanitizer applies an ordered rule table to generated text.
type Sanitizer struct {
	rules []Rule
}

func NewSanitizer(rules []Rule) *Sanitizer {
	return &Sanitizer{rules: rules}
}

func (s *Sanitizer) Apply(text string) string {
	for _, r := range s.rules {
		text = r.Pattern.ReplaceAllString(text, r.Replace)
	}
	return text
}
