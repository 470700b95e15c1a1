package patterns

import (
	"log"
	"regexp"
	"strings"
)

// Rule is a regular expression entry with an optional description.
type Rule struct {
	Pattern     string
	Description string
}

// compiledRule holds a compiled regex and its original rule.
type compiledRule struct {
	regex *regexp.Regexp
	rule  Rule
}

// RegexSet matches text against case-insensitive regular expressions.
// Rules are checked in order and the first match wins.
type RegexSet struct {
	rules []compiledRule
}

// NewRegexSet compiles rules. Invalid patterns are logged and skipped, not fatal.
func NewRegexSet(rules []Rule) *RegexSet {
	s := &RegexSet{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		if r.Pattern == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			log.Printf("[WARN] [Patterns] invalid pattern %q: %v (skipped)", r.Pattern, err)
			continue
		}
		s.rules = append(s.rules, compiledRule{regex: re, rule: r})
	}
	return s
}

// Match returns the first rule whose expression matches text.
func (s *RegexSet) Match(text string) (MatchResult, bool) {
	if s == nil || text == "" {
		return MatchResult{}, false
	}
	for _, cr := range s.rules {
		if cr.regex.MatchString(text) {
			desc := cr.rule.Description
			if desc == "" {
				desc = cr.rule.Pattern
			}
			return MatchResult{Pattern: cr.rule.Pattern, Description: desc}, true
		}
	}
	return MatchResult{}, false
}

// Len returns the number of compiled rules.
func (s *RegexSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// WordSet matches whole words case-insensitively, e.g. "rm" in "rm -f x" but not in "format".
type WordSet struct {
	re    *regexp.Regexp
	words []string
}

// NewWordSet builds a WordSet; the words are quoted, so metacharacters are literal.
func NewWordSet(words []string) *WordSet {
	return newWordSet(words, "")
}

// NewNounSet is a WordSet that also accepts plurals ending in s or es, so
// "window" matches "windows" but "tab" still does not match "table".
func NewNounSet(nouns []string) *WordSet {
	return newWordSet(nouns, `(?:e?s)?`)
}

func newWordSet(words []string, suffix string) *WordSet {
	var quoted []string
	var kept []string
	for _, w := range words {
		if w == "" {
			continue
		}
		kept = append(kept, w)
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) == 0 {
		return &WordSet{}
	}
	expr := `(?i)(?:^|[^\w])(` + strings.Join(quoted, "|") + `)` + suffix + `(?:[^\w]|$)`
	return &WordSet{re: regexp.MustCompile(expr), words: kept}
}

// Match returns the first whole word of the set found in text.
func (s *WordSet) Match(text string) (MatchResult, bool) {
	if s == nil || s.re == nil || text == "" {
		return MatchResult{}, false
	}
	m := s.re.FindStringSubmatch(text)
	if m == nil {
		return MatchResult{}, false
	}
	return MatchResult{Pattern: m[1]}, true
}

var (
	_ Matcher = (*PhraseSet)(nil)
	_ Matcher = (*RegexSet)(nil)
	_ Matcher = (*WordSet)(nil)
)
