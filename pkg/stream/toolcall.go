package stream

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/relayhub/gateway/pkg/providers"
)

const (
	toolCallOpenTag  = "<tool_call>"
	toolCallCloseTag = "</tool_call>"
)

// ToolCallDetector scans a stream of text deltas for the subprocess
// provider's <tool_call>{...}</tool_call> convention, holding back any
// sequence that might be a partial tag across chunk boundaries. Feed is
// called once per delta, in order; a single detector instance is not safe
// for concurrent use.
type ToolCallDetector struct {
	inTag   bool
	buf     strings.Builder
	pending string
	seq     int
}

// NewToolCallDetector returns a detector ready to scan the start of a
// stream.
func NewToolCallDetector() *ToolCallDetector {
	return &ToolCallDetector{}
}

// Feed processes the next text delta, returning the text that should reach
// the client (with any tool-call XML stripped) and any tool calls that
// completed within this delta.
func (d *ToolCallDetector) Feed(delta string) (string, []providers.ToolCall) {
	combined := d.pending + delta
	d.pending = ""

	var passthrough strings.Builder
	var calls []providers.ToolCall

	for len(combined) > 0 {
		if !d.inTag {
			idx := strings.Index(combined, toolCallOpenTag)
			if idx == -1 {
				holdLen := partialSuffixMatch(combined, toolCallOpenTag)
				passthrough.WriteString(combined[:len(combined)-holdLen])
				d.pending = combined[len(combined)-holdLen:]
				break
			}
			passthrough.WriteString(combined[:idx])
			combined = combined[idx+len(toolCallOpenTag):]
			d.inTag = true
			continue
		}

		idx := strings.Index(combined, toolCallCloseTag)
		if idx == -1 {
			d.buf.WriteString(combined)
			break
		}
		d.buf.WriteString(combined[:idx])
		combined = combined[idx+len(toolCallCloseTag):]
		d.inTag = false

		if call, ok := d.parseCall(d.buf.String()); ok {
			calls = append(calls, call)
		}
		d.buf.Reset()
	}

	return passthrough.String(), calls
}

// Flush is called once the stream ends. An unclosed open tag is given a
// best-effort parse; any held-back partial-tag text that never resolved
// into a real tag is returned as ordinary text.
func (d *ToolCallDetector) Flush() (string, []providers.ToolCall) {
	if d.inTag {
		var calls []providers.ToolCall
		if call, ok := d.parseCall(d.buf.String()); ok {
			calls = append(calls, call)
		}
		d.buf.Reset()
		d.inTag = false
		return "", calls
	}

	tail := d.pending
	d.pending = ""
	return tail, nil
}

func (d *ToolCallDetector) parseCall(body string) (providers.ToolCall, bool) {
	var payload struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &payload); err != nil {
		return providers.ToolCall{}, false
	}

	args, err := json.Marshal(payload.Arguments)
	if err != nil {
		args = []byte("{}")
	}

	d.seq++
	return providers.ToolCall{
		ID:   fmt.Sprintf("call_%d", d.seq),
		Type: providers.ToolTypeFunction,
		Function: providers.FunctionCall{
			Name:      payload.Name,
			Arguments: string(args),
		},
	}, true
}

// partialSuffixMatch returns the length of the longest suffix of s that is
// also a proper prefix of tag, so that suffix can be held back in case the
// next delta completes the tag.
func partialSuffixMatch(s, tag string) int {
	maxLen := len(tag) - 1
	if maxLen > len(s) {
		maxLen = len(s)
	}
	for n := maxLen; n > 0; n-- {
		if strings.HasSuffix(s, tag[:n]) {
			return n
		}
	}
	return 0
}
