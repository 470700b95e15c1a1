package security

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

var unsafePathPrefixes = []string{"/system", "/usr/bin", "/etc", "/boot", "/dev"}

// EscapeAppleScriptString quotes text as an AppleScript string literal.
func EscapeAppleScriptString(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `"`, `\"`)
	return `"` + text + `"`
}

// EscapeShellArgument quotes arg so a POSIX shell reads it as one word.
func EscapeShellArgument(arg string) string {
	if arg == "" {
		return "''"
	}
	return shellquote.Join(arg)
}

// IsSafePath reports whether path stays clear of system locations.
func IsSafePath(path string) bool {
	normalized := strings.ToLower(strings.TrimSpace(path))
	for _, p := range unsafePathPrefixes {
		if strings.Contains(normalized, p) {
			return false
		}
	}
	return true
}
