package classify

import (
	"testing"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/types"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(config.Default())

	tests := []struct {
		name    string
		command string
		request string
		want    types.CommandType
	}{
		{"tell in command", `tell application "Finder" to activate`, "open finder", types.AppleScript},
		{"git is shell", "git status", "show git status", types.Shell},
		{"listing is shell", "ls -la ~/Desktop", "list my desktop", types.Shell},
		{"request indicator", "something", "please take screenshot now", types.AppleScript},
		{"derived app phrase", "open -a 'Google Chrome'", "open chrome and search for test", types.AppleScript},
		{"gui keyword", "echo", "close that window", types.AppleScript},
		{"plural gui keyword", `quit app "Safari"`, "close all the windows", types.AppleScript},
		{"plural email", "echo", "read my new emails", types.AppleScript},
		{"plural notification", "echo", "clear my notifications", types.AppleScript},
		{"plural tab", "echo", "close the other tabs", types.AppleScript},
		{"apply is not app", "echo", "apply the patch", types.Shell},
		{"gui keyword is whole word", "echo hi", "print a stable table", types.Shell},
		{"keystroke indicator", `tell app "System Events" to keystroke "a"`, "", types.AppleScript},
		{"default shell", "uptime", "how long has this been up", types.Shell},
		{"empty", "", "", types.Shell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.command, tt.request); got != tt.want {
				t.Errorf("Classify(%q, %q) = %s, want %s", tt.command, tt.request, got, tt.want)
			}
		})
	}
}

func TestExplainNamesRule(t *testing.T) {
	c := NewClassifier(config.Default())

	_, why := c.Explain("git status", "show git status")
	if why != `command uses "git"` {
		t.Errorf("Explain reason = %q", why)
	}
	_, why = c.Explain("uptime", "")
	if why != "default" {
		t.Errorf("Explain reason = %q, want default", why)
	}
}

func TestAppPhrasesCoverConfiguredApps(t *testing.T) {
	cfg := config.Default()
	cfg.Apps = map[string]string{"Slack": "com.tinyspeck.slackmacgap"}
	c := NewClassifier(cfg)

	if got := c.Classify("x", "launch slack please"); got != types.AppleScript {
		t.Errorf("Classify = %s, want applescript", got)
	}
}
