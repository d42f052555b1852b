// internal/domain/payment/matcher.go
package payment

import "regexp"

// CodeMatcher extracts candidate order codes from free-form bank
// statement text. It is a strategy so provider-specific matching can
// be swapped in without touching the reconciliation transaction.
type CodeMatcher interface {
	Match(text string) []string
}

// RegexMatcher matches order codes with a regular expression.
type RegexMatcher struct {
	re *regexp.Regexp
}

// NewRegexMatcher creates a matcher from a pattern
func NewRegexMatcher(pattern string) (*RegexMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{re: re}, nil
}

// DefaultMatcher matches the ORD<digits> order code format.
func DefaultMatcher() *RegexMatcher {
	return &RegexMatcher{re: regexp.MustCompile(`ORD\d+`)}
}

// Match returns every distinct candidate code in order of appearance.
func (m *RegexMatcher) Match(text string) []string {
	found := m.re.FindAllString(text, -1)
	if len(found) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(found))
	codes := make([]string, 0, len(found))
	for _, code := range found {
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}
