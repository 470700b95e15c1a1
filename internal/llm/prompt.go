package llm

import (
	"fmt"
	"sort"
	"strings"
)

const connectionPrompt = "Respond with 'Connection successful' if you receive this message."

const commandPromptBody = `You are an expert macOS automation assistant. Convert this natural language request into executable commands.

USER REQUEST: %[1]s

CRITICAL REQUIREMENTS:
1. OUTPUT ONLY the raw command - no explanations, markdown, or JSON
2. Choose between AppleScript (GUI) or Shell (CLI) based on the task
3. Handle ALL edge cases properly

FOR APPLESCRIPT (GUI tasks):
- Use proper syntax: tell application "Name"...end tell
- Handle spaces in file paths: POSIX file "/path/with spaces/file.txt"
- Escape quotes in strings: "He said \"Hello\""
- Use delay statements for timing: delay 0.5
- Handle URLs: open location "https://example.com"
- Email automation: proper recipient/subject/content structure
- Window/tab management: tell front window, make new tab
- Bundle IDs: use proper app bundle IDs when needed

FOR SHELL COMMANDS (CLI tasks):
- Properly quote paths with spaces: "file with spaces.txt"
- Chain commands safely: command1 && command2
- Handle special characters with proper escaping
- Use full paths when needed: /usr/bin/command
- File operations: check existence before acting
- Network commands: timeout and error handling

COMMON EDGE CASES TO HANDLE:
- File/folder names with spaces, special chars, unicode
- Application not running/installed
- Permission issues
- Clipboard operations
- Background/foreground app states
- URL encoding for web searches
- Email addresses with + or . characters

EXAMPLES:
Request: "Send email to john@test.com with subject Test"
AppleScript:
tell application "Mail"
    set newMessage to make new outgoing message with properties {subject:"Test", visible:true}
    tell newMessage
        make new to recipient at end of to recipients with properties {address:"john@test.com"}
        send
    end tell
end tell

Request: "Create folder named 'My Files' on desktop"
Shell: mkdir -p "$HOME/Desktop/My Files"

Request: "Open Chrome and search for python tutorials"
AppleScript:
tell application "Google Chrome"
    activate
    open location "https://www.google.com/search?q=python%%20tutorials"
end tell
%[2]s
TASK: Generate the command for: %[1]s
`

const selfTestPrompt = `Generate a simple test command that will work on macOS.
Choose either:
1. A simple shell command like 'echo "test successful"'
2. A simple AppleScript like 'display dialog "test successful" buttons {"OK"}'

Output only the command, no explanations.
`

// CommandPrompt builds the generation prompt for request. apps maps spoken
// application names to bundle identifiers and is listed when non-empty.
func CommandPrompt(request string, apps map[string]string) string {
	return fmt.Sprintf(commandPromptBody, strings.TrimSpace(request), bundleTable(apps))
}

// SelfTestPrompt asks for a trivial harmless command.
func SelfTestPrompt() string {
	return selfTestPrompt
}

func bundleTable(apps map[string]string) string {
	if len(apps) == 0 {
		return ""
	}
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("\nKNOWN BUNDLE IDS:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, apps[name])
	}
	return b.String()
}
