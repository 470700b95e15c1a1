package types

import "strings"

// MessageTypeBot tags every message produced by the assistant.
const MessageTypeBot = "bot"

// Message is a single line of output for the caller to render or speak.
type Message struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Envelope is the only response shape that leaves the dispatch pipeline.
// Callers iterate Messages in order.
type Envelope struct {
	Messages []Message `json:"messages"`
}

// Success wraps a single bot message.
func Success(text string) Envelope {
	return Envelope{Messages: []Message{{Text: text, Type: MessageTypeBot}}}
}

// Error wraps a single failure message, appending err's text when given.
func Error(text string, err error) Envelope {
	if err != nil {
		text += ": " + err.Error()
	}
	return Success(text)
}

// Lines builds an envelope with one message per non-blank line.
func Lines(lines ...string) Envelope {
	env := Envelope{Messages: make([]Message, 0, len(lines))}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		env.Messages = append(env.Messages, Message{Text: line, Type: MessageTypeBot})
	}
	return env
}

// First returns the text of the first message, or "" for an empty envelope.
func (e Envelope) First() string {
	if len(e.Messages) == 0 {
		return ""
	}
	return e.Messages[0].Text
}

// Texts returns the message texts in order.
func (e Envelope) Texts() []string {
	texts := make([]string, len(e.Messages))
	for i, m := range e.Messages {
		texts[i] = m.Text
	}
	return texts
}
