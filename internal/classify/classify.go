// Package classify decides whether a normalized command runs as AppleScript or shell.
package classify

import (
	"sort"
	"strings"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/patterns"
	"github.com/rafabd1/ceres/internal/types"
)

// appVerbs combine with every configured application name into request indicators,
// so "open chrome" or "quit mail" point at GUI automation.
var appVerbs = []string{"open", "launch", "quit", "activate", "switch to"}

// Classifier holds the indicator sets. It is immutable and safe for concurrent use.
type Classifier struct {
	scriptIndicators  *patterns.PhraseSet
	requestIndicators *patterns.PhraseSet
	guiKeywords       *patterns.WordSet
	shellTokens       *patterns.WordSet
}

// NewClassifier builds a Classifier from the detection section of cfg.
func NewClassifier(cfg *config.Config) *Classifier {
	requests := append([]string(nil), cfg.Detection.RequestIndicators...)
	requests = append(requests, appPhrases(cfg.Apps)...)

	return &Classifier{
		scriptIndicators:  patterns.NewPhraseSet(cfg.Detection.AppleScriptIndicators),
		requestIndicators: patterns.NewPhraseSet(requests),
		guiKeywords:       patterns.NewNounSet(cfg.Detection.GUIKeywords),
		shellTokens:       patterns.NewWordSet(cfg.Detection.ShellTokens),
	}
}

func appPhrases(apps map[string]string) []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)

	phrases := make([]string, 0, len(names)*len(appVerbs))
	for _, verb := range appVerbs {
		for _, name := range names {
			phrases = append(phrases, verb+" "+name)
		}
	}
	return phrases
}

// Classify applies the first rule that fires:
//  1. an AppleScript indicator in the command
//  2. a GUI request indicator in the request
//  3. a GUI keyword in the request
//  4. a shell token in the command
//
// Anything else is shell.
func (c *Classifier) Classify(command, request string) types.CommandType {
	kind, _ := c.Explain(command, request)
	return kind
}

// Explain is Classify plus a short reason naming the rule and entry that fired.
func (c *Classifier) Explain(command, request string) (types.CommandType, string) {
	if m, ok := c.scriptIndicators.Match(command); ok {
		return types.AppleScript, "command contains " + quote(m.Pattern)
	}
	if m, ok := c.requestIndicators.Match(request); ok {
		return types.AppleScript, "request contains " + quote(m.Pattern)
	}
	if m, ok := c.guiKeywords.Match(request); ok {
		return types.AppleScript, "request mentions " + quote(m.Pattern)
	}
	if m, ok := c.shellTokens.Match(command); ok {
		return types.Shell, "command uses " + quote(m.Pattern)
	}
	return types.Shell, "default"
}

func quote(s string) string { return `"` + strings.ToLower(s) + `"` }
