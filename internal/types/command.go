package types

// CommandType selects which executor runs a normalized command.
type CommandType int

const (
	// Shell is the zero value on purpose: it is the default when nothing points at GUI automation.
	Shell CommandType = iota
	AppleScript
)

func (t CommandType) String() string {
	switch t {
	case Shell:
		return "shell"
	case AppleScript:
		return "applescript"
	default:
		return "unknown"
	}
}
