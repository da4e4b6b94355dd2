package compressor

import (
	"regexp"

	"github.com/relayhub/gateway/pkg/providers"
)

// trimTokenThreshold is the estimated-token point past which the context
// trimmer engages (spec's "approximately 150k").
const trimTokenThreshold = 150_000

const keepTurns = 10
const summarizeMaxLen = 500

var anyFencedBlock = regexp.MustCompile("(?s)```.*?```")

// contextTrim only does anything once the conversation is estimated to
// exceed trimTokenThreshold. System messages are always kept verbatim. The
// last keepTurns user/assistant turns are kept verbatim; in every older
// turn, assistant messages are dropped entirely and user messages are
// summarized (code blocks replaced with a placeholder, then truncated).
func contextTrim(messages []providers.Message) []providers.Message {
	if estimateTokens(messages) <= trimTokenThreshold {
		return messages
	}

	turnOf := assignTurns(messages)
	totalTurns := 0
	for _, t := range turnOf {
		if t+1 > totalTurns {
			totalTurns = t + 1
		}
	}
	keepFrom := totalTurns - keepTurns
	if keepFrom < 0 {
		keepFrom = 0
	}

	out := make([]providers.Message, 0, len(messages))
	for i, m := range messages {
		if m.Role == providers.RoleSystem || turnOf[i] >= keepFrom {
			out = append(out, m)
			continue
		}
		if m.Role == providers.RoleAssistant {
			continue
		}
		m.Content = summarizeUserMessage(m.Content)
		out = append(out, m)
	}

	return out
}

// assignTurns maps each message index to the index of the user-initiated
// turn it belongs to. Messages before the first user message belong to
// turn 0.
func assignTurns(messages []providers.Message) []int {
	turnOf := make([]int, len(messages))
	turn := -1
	for i, m := range messages {
		if m.Role == providers.RoleUser {
			turn++
		}
		if turn < 0 {
			turn = 0
		}
		turnOf[i] = turn
	}
	return turnOf
}

func summarizeUserMessage(content string) string {
	content = anyFencedBlock.ReplaceAllString(content, "[code omitted]")
	if len(content) > summarizeMaxLen {
		content = content[:summarizeMaxLen] + "..."
	}
	return content
}
