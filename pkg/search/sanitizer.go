package search

import (
	"regexp"
	"unicode"
)

// Verdict classifies a raw search string. Category names the first rule
// that matched; it is for logging only and never shown to users.
type Verdict struct {
	Suspicious bool
	Category   string
}

// suspicionRule pairs a pattern with its category. Rules are evaluated
// in declaration order; the first match decides.
type suspicionRule struct {
	category string
	pattern  string
}

// The rule table. All patterns are case-insensitive.
var suspicionRules = []suspicionRule{
	// URL shapes
	{"url", `(?i)https?://[^\s]+`},
	{"url", `(?i)www\.[^\s]+`},
	{"url", `(?i)[^\s]+\.(?:com|org|net|edu|gov|mil|int|co|uk|de|fr|jp|cn|au|ca|ru|br|in|it|es)[^\s]*`},

	// Markup tag openers for dangerous tags
	{"markup", `(?i)<\s*(?:script|iframe|object|embed|link|style|meta|form)\b`},

	// SQL mutation phrases
	{"sql", `(?i)\b(?:union\s+select|insert\s+into|update\s+\w+\s+set|delete\s+from|drop\s+table|create\s+table|alter\s+table)\b`},

	// Dangerous script functions
	{"script", `(?i)\b(?:eval|document\.cookie|window\.location|location\.href)\s*\(`},

	// CSS expression injection
	{"css", `(?i)expression\s*\(`},

	// Embedded script-tag openers
	{"php", `(?i)<\?php`},
	{"php", `<\?`},

	// Shell command shapes
	{"shell", `(?i)\b(?:rm\s+-rf|chmod\s+\d{3,4}|wget\s+http|curl\s+http)\b`},

	// Absolute Unix or drive-letter Windows paths with at least one
	// more path segment
	{"path", `(?:^|\s)(?:[A-Za-z]:[/\\]|/)[\w.-]+(?:[/\\][\w.-]+)+`},
}

type compiledRule struct {
	category string
	re       *regexp.Regexp
}

// compileRules builds the matcher set. A pattern that fails to compile
// is skipped so a bad rule can never take classification down.
func compileRules(rules []suspicionRule) []compiledRule {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.pattern)
		if err != nil {
			continue
		}
		compiled = append(compiled, compiledRule{category: r.category, re: re})
	}
	return compiled
}

var activeRules = compileRules(suspicionRules)

// Density heuristic bounds: text longer than densityMinLength with more
// than densityThreshold non-alphanumeric, non-whitespace runes is
// treated as obfuscated. Short strings are exempt so terms like "C++"
// pass.
const (
	densityMinLength = 20
	densityThreshold = 0.3
)

// Classify reports whether text looks like a URL, injected code, or
// obfuscation rather than a legitimate search. A single rule match is
// sufficient; there is no cross-signal scoring.
func Classify(text string) Verdict {
	for _, rule := range activeRules {
		if rule.re.MatchString(text) {
			return Verdict{Suspicious: true, Category: rule.category}
		}
	}

	if runes := []rune(text); len(runes) > densityMinLength {
		special := 0
		for _, r := range runes {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) && r != '_' {
				special++
			}
		}
		if float64(special)/float64(len(runes)) > densityThreshold {
			return Verdict{Suspicious: true, Category: "density"}
		}
	}

	return Verdict{}
}
