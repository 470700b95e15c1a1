package config

import "time"

const (
	defaultModelName   = "gemini-2.0-flash"
	defaultAddr        = "127.0.0.1:8000"
	defaultTimeout     = 30 * time.Second
	defaultShell       = "/bin/sh"
	defaultInterpreter = "osascript"
	defaultSampleRate  = 16000
	defaultContextLog  = "ceres_context.log"

	VoiceGemini  = "gemini"
	VoiceWhisper = "whisper"
)

// DefaultDangerousPatterns is the reference deny-list.
func DefaultDangerousPatterns() []Pattern {
	return []Pattern{
		{`sudo\s+rm\s+-rf\s*/`, "recursive delete of root with sudo"},
		{`rm\s+-rf\s*/`, "recursive delete of root"},
		{`format\s+`, "disk format"},
		{`del\s+/[qfs]`, "forced bulk delete"},
		{`diskutil\s+eraseVolume`, "volume erase"},
		{`dd\s+if=.*of=/dev/`, "raw disk write"},
		{`chmod\s+777`, "world-writable permissions"},
		{`curl.*\|\s*bash`, "network download piped into bash"},
		{`wget.*\|\s*sh`, "network download piped into sh"},
		{`eval\s*\$\(`, "dynamic evaluation of command output"},
		{`exec\s*\(`, "dynamic code execution"},
		{`system\s*\(`, "dynamic system call"},
		{`__import__\s*\(`, "dynamic python import"},
	}
}

// DefaultApps is the bundle identifier table for commonly requested applications.
func DefaultApps() map[string]string {
	return map[string]string{
		"chrome":   "com.google.Chrome",
		"safari":   "com.apple.Safari",
		"firefox":  "org.mozilla.firefox",
		"mail":     "com.apple.mail",
		"messages": "com.apple.iChat",
		"finder":   "com.apple.finder",
		"terminal": "com.apple.Terminal",
		"notes":    "com.apple.Notes",
		"calendar": "com.apple.iCal",
		"music":    "com.apple.Music",
		"photos":   "com.apple.Photos",
	}
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.ModelName == "" {
		cfg.LLM.ModelName = defaultModelName
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	if cfg.Execution.Timeout == 0 {
		cfg.Execution.Timeout = defaultTimeout
	}
	if cfg.Execution.Shell == "" {
		cfg.Execution.Shell = defaultShell
	}
	if cfg.Execution.AppleScriptInterpreter == "" {
		cfg.Execution.AppleScriptInterpreter = defaultInterpreter
	}

	if cfg.Security.DangerousPatterns == nil {
		cfg.Security.DangerousPatterns = DefaultDangerousPatterns()
	}
	if cfg.Security.SystemPaths == nil {
		cfg.Security.SystemPaths = []string{"/system/", "/usr/bin/", "/etc/"}
	}
	if cfg.Security.DestructiveVerbs == nil {
		cfg.Security.DestructiveVerbs = []string{"rm", "del", "delete", "format"}
	}

	if cfg.Detection.AppleScriptIndicators == nil {
		cfg.Detection.AppleScriptIndicators = []string{
			"tell application", "tell app", "activate application",
			"click", "type text", "key code", "keystroke",
			"display dialog", "display notification", "choose file",
			"open location", "set volume", "get clipboard",
		}
	}
	if cfg.Detection.RequestIndicators == nil {
		cfg.Detection.RequestIndicators = []string{
			"open app", "launch app", "send email", "create email",
			"take screenshot", "set volume", "mute", "unmute",
			"open url", "browse to", "search in", "type in",
			"click on", "press key", "show notification",
		}
	}
	if cfg.Detection.GUIKeywords == nil {
		cfg.Detection.GUIKeywords = []string{
			"click", "button", "window", "dialog", "notification",
			"screenshot", "volume", "mute", "browser", "tab",
			"email", "message", "application",
		}
	}
	if cfg.Detection.ShellTokens == nil {
		cfg.Detection.ShellTokens = []string{
			"ls", "cd", "mkdir", "rm", "cp", "mv", "cat", "grep",
			"find", "ps", "kill", "git", "npm", "pip", "brew",
		}
	}
	if cfg.Apps == nil {
		cfg.Apps = DefaultApps()
	}

	if cfg.Voice.Backend == "" {
		cfg.Voice.Backend = VoiceGemini
	}
	if cfg.Voice.SampleRate == 0 {
		cfg.Voice.SampleRate = defaultSampleRate
	}
	if cfg.Voice.WhisperPath == "" {
		cfg.Voice.WhisperPath = "whisper"
	}
	if cfg.Voice.WhisperModel == "" {
		cfg.Voice.WhisperModel = "base.en"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.ContextFile == "" {
		cfg.Log.ContextFile = defaultContextLog
	}
}
