// Package patterns classifies text against fixed phrase and regex sets.
// All matching is case-insensitive and never fails on arbitrary input.
package patterns

import "strings"

// Matcher defines the interface for text membership checks.
type Matcher interface {
	// Match reports the first entry that matches text.
	Match(text string) (MatchResult, bool)
}

// MatchResult describes which entry matched.
type MatchResult struct {
	Pattern     string // The phrase or expression that matched
	Description string // Human-readable meaning of the entry, if any
}

// PhraseSet matches literal phrases as case-insensitive substrings.
// Regex metacharacters in phrases carry no special meaning.
type PhraseSet struct {
	phrases []string
	lowered []string
}

// NewPhraseSet builds a PhraseSet. Empty phrases are dropped since they would match everything.
func NewPhraseSet(phrases []string) *PhraseSet {
	s := &PhraseSet{}
	for _, p := range phrases {
		if strings.TrimSpace(p) == "" {
			continue
		}
		s.phrases = append(s.phrases, p)
		s.lowered = append(s.lowered, strings.ToLower(p))
	}
	return s
}

// Match checks phrases in order and returns the first one contained in text.
func (s *PhraseSet) Match(text string) (MatchResult, bool) {
	if s == nil || text == "" {
		return MatchResult{}, false
	}
	lower := strings.ToLower(text)
	for i, p := range s.lowered {
		if strings.Contains(lower, p) {
			return MatchResult{Pattern: s.phrases[i]}, true
		}
	}
	return MatchResult{}, false
}

// Len returns the number of usable phrases.
func (s *PhraseSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.phrases)
}

// ContainsAny reports whether text contains any phrase, case-insensitively.
func ContainsAny(text string, phrases []string) bool {
	_, ok := NewPhraseSet(phrases).Match(text)
	return ok
}
