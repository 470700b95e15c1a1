package utils

import (
	"strings"
	"unicode/utf8"
)

// Package utils contains general utility functions.

// Truncate shortens s to at most maxLen bytes, cutting on a rune boundary and
// appending "...(truncated)" when anything was removed.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...(truncated)"
}

// SanitizeUTF8 replaces invalid UTF-8 sequences with the replacement character.
func SanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}

// NonBlankLines splits text into lines and drops the blank ones.
func NonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}
	return lines
}
