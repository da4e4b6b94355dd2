package claudecli

import (
	"strings"

	"github.com/relayhub/gateway/pkg/providers"
	"github.com/relayhub/gateway/pkg/warmpool"
)

// buildArgs assembles the claude CLI flags selecting the streaming NDJSON
// wire protocol on both sides, plus whatever extra flags the provider
// config carries (e.g. --permission-mode, --allowedTools).
func buildArgs(model string, extraArgs []string) []string {
	args := []string{
		"--model", model,
		"--output-format", "stream-json",
		"--input-format", "stream-json",
		"--print",
	}
	return append(args, extraArgs...)
}

// resultText extracts the final response text. Prefer the "result" event's
// own result field if present; otherwise fall back to whatever assistant
// text was accumulated along the way.
func resultText(result *warmpool.CLIEvent, accumulated string) string {
	if result != nil && result.Result != "" {
		return result.Result
	}
	return accumulated
}

// normalizeFinishReason maps a CLI result outcome to a provider-agnostic
// finish reason.
func normalizeFinishReason(result *warmpool.CLIEvent) string {
	if result == nil {
		return providers.FinishReasonStop
	}
	if result.IsError {
		return providers.FinishReasonContentFilter
	}
	return providers.FinishReasonStop
}

// flattenMessages renders the full conversation into the single prompt
// string sent to the CLI when no per-turn context tracking applies
// (pinned and ephemeral modes send the whole transcript as one turn).
func flattenMessages(messages []providers.Message) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Role {
		case providers.RoleSystem:
			b.WriteString("System: ")
		case providers.RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(msg.Content)
	}
	return b.String()
}
