// Package policy holds data-handling rules applied to customer text before it
// leaves the turn: redaction runs ahead of knowledge persistence and logging.
package policy

import "regexp"

// redactionRule masks one class of PII. Rules run in declaration order; card
// numbers must run before phone numbers or long digit runs get misclassified.
type redactionRule struct {
	pattern *regexp.Regexp
	mask    string
}

var redactionRules = []redactionRule{
	{regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`), "[REDACTED_CARD]"},
	{regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`), "[REDACTED_PHONE]"},
}

// RedactPII masks common high-risk PII patterns in customer text. changed
// reports whether any rule fired.
func RedactPII(input string) (redacted string, changed bool) {
	out := input
	for _, rule := range redactionRules {
		next := rule.pattern.ReplaceAllString(out, rule.mask)
		changed = changed || next != out
		out = next
	}
	return out, changed
}
