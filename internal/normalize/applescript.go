package normalize

import (
	"strings"

	"github.com/rafabd1/ceres/internal/patterns"
)

var (
	errorHandling = patterns.NewWordSet([]string{"try", "on error", "error"})
	needsWrapper  = patterns.NewWordSet([]string{"tell application", "set", "make"})
	endWord       = patterns.NewWordSet([]string{"end"})
	toWord        = patterns.NewWordSet([]string{"to"})
)

const errorDialog = `display dialog "Error " & errNum & ": " & errMsg buttons {"OK"} default button "OK"`

// EnhanceForGUI wraps AppleScript that spans several lines or drives an
// application in a try/on error block that surfaces failures in a dialog.
// Scripts that already handle errors are returned unchanged, so applying it
// twice yields the same script.
func EnhanceForGUI(command, request string) string {
	if _, ok := errorHandling.Match(command); ok {
		return command
	}

	_, structural := needsWrapper.Match(command)
	if !strings.Contains(command, "\n") && !structural {
		return command
	}

	var b strings.Builder
	b.WriteString("try\n")
	for _, line := range strings.Split(command, "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("on error errMsg number errNum\n")
	b.WriteString("    " + errorDialog + "\n")
	b.WriteString("end try")
	return b.String()
}

// LooksPlausible is a cheap sanity check run before spawning the interpreter.
// Malformed scripts may pass; the interpreter has the final word.
func LooksPlausible(script string) bool {
	if strings.TrimSpace(script) == "" {
		return false
	}
	if opensTellBlock(script) {
		if _, ok := endWord.Match(script); !ok {
			return false
		}
	}
	return strings.Count(script, `"`)%2 == 0
}

// opensTellBlock reports whether any line opens a multi-line tell block.
// The one-line form `tell application "X" to activate` closes itself.
func opensTellBlock(script string) bool {
	for _, line := range strings.Split(script, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		if line != "tell" && !strings.HasPrefix(line, "tell ") {
			continue
		}
		if _, oneLiner := toWord.Match(line); !oneLiner {
			return true
		}
	}
	return false
}
