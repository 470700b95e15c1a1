package utils

import (
	"io"
	"strings"

	"github.com/hashicorp/logutils"
)

// LogLevels are the tags log lines start with, lowest first. Untagged lines
// always pass.
var LogLevels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"}

// ValidLogLevel reports whether level names one of LogLevels, in any case.
func ValidLogLevel(level string) bool {
	for _, l := range LogLevels {
		if string(l) == strings.ToUpper(level) {
			return true
		}
	}
	return false
}

// NewLogFilter drops lines tagged below level, e.g. "[DEBUG] ..." at "info".
func NewLogFilter(level string, w io.Writer) *logutils.LevelFilter {
	return &logutils.LevelFilter{
		Levels:   LogLevels,
		MinLevel: logutils.LogLevel(strings.ToUpper(level)),
		Writer:   w,
	}
}
