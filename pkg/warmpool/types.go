package warmpool

import "encoding/json"

// CLIEvent is one NDJSON line emitted by the claude binary in stream-json
// output mode. Not every field is populated on every event; Type determines
// which ones are meaningful.
type CLIEvent struct {
	Type    string          `json:"type"`
	Subtype string          `json:"subtype,omitempty"`
	Message *CLIMessage     `json:"message,omitempty"`
	Result  string          `json:"result,omitempty"`
	IsError bool            `json:"is_error,omitempty"`
	Usage   *CLIUsage       `json:"usage,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// CLIMessage mirrors the content-block shape of an assistant turn.
type CLIMessage struct {
	Role    string            `json:"role"`
	Content []CLIContentBlock `json:"content"`
}

// CLIContentBlock is a single block within a message (text or tool use).
type CLIContentBlock struct {
	Type  string                 `json:"type"`
	Text  string                 `json:"text,omitempty"`
	Name  string                 `json:"name,omitempty"`
	Input map[string]interface{} `json:"input,omitempty"`
}

// CLIUsage carries token accounting from the "result" event.
type CLIUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Text concatenates the text blocks of a message.
func (m *CLIMessage) Text() string {
	var out string
	for _, block := range m.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}

// IsResult reports whether this event terminates a turn.
func (e *CLIEvent) IsResult() bool {
	return e.Type == "result"
}
