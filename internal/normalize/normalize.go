// Package normalize turns raw model output into a directly executable command.
package normalize

import (
	"regexp"
	"strings"

	"github.com/rafabd1/ceres/internal/patterns"
)

var (
	fencedBlock = regexp.MustCompile("(?s)```(?:[\\w+-]*\\n)?(.*?)```")
	inlineOsa   = regexp.MustCompile(`^\s*osascript\s+-e\s+['"](.+)['"]\s*$`)

	languageTags = map[string]bool{
		"bash": true, "sh": true, "zsh": true, "applescript": true,
		"python": true, "shell": true, "javascript": true, "js": true,
	}

	// AppleScript comments mentioning these survive sanitizing.
	structuralKeywords = patterns.NewWordSet([]string{"tell", "end", "set", "on", "try", "error"})
)

// Sanitize cleans raw model output. It returns "" when nothing executable is
// left, which callers must treat as "no command produced".
func Sanitize(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	if strings.Contains(text, "```") {
		if m := fencedBlock.FindStringSubmatch(text); m != nil {
			text = strings.TrimSpace(m[1])
		}
	}

	if m := inlineOsa.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	if first, rest, found := strings.Cut(text, "\n"); languageTags[strings.ToLower(strings.TrimSpace(first))] {
		if found {
			text = rest
		} else {
			text = ""
		}
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if strings.HasPrefix(stripped, "#") {
			continue
		}
		if strings.HasPrefix(stripped, "--") {
			if _, ok := structuralKeywords.Match(stripped); !ok {
				continue
			}
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
