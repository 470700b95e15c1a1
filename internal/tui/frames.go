package tui

import (
	"strings"

	"github.com/rafabd1/ceres/internal/server"
)

type frameKind int

const (
	frameReply frameKind = iota
	frameStatus
	frameFailure
)

var statusFrames = map[string]bool{
	server.FrameReceived:  true,
	server.FrameExecuting: true,
	server.FrameFinished:  true,
}

var failurePrefixes = []string{
	"Security:",
	"Command failed",
	"Command timed out",
	"Command not found",
	"Execution failed",
	"Execution Failed",
	"AppleScript Error",
	"AppleScript timed out",
	"AppleScript execution failed",
	"Script failed",
	"Invalid",
	"AI service error",
	"Configuration error",
	"No Command Generated",
	"Unexpected Error",
	"Target application is not running",
	"Sorry",
}

func classifyFrame(text string) frameKind {
	if statusFrames[text] {
		return frameStatus
	}
	for _, p := range failurePrefixes {
		if strings.HasPrefix(text, p) {
			return frameFailure
		}
	}
	return frameReply
}

// IsFailure reports whether a reply line describes a failure.
func IsFailure(text string) bool {
	return classifyFrame(text) == frameFailure
}
