package compressor

import (
	"log/slog"

	"github.com/relayhub/gateway/pkg/providers"
)

// Forbidden transformations (enforced by construction, not checked at
// runtime): no stage renames identifiers, reorders imports or messages,
// removes the latest user message, or removes system instructions.

var stages = []stage{
	{name: "normalize", fn: normalize},
	{name: "structural_dedup", fn: structuralDedup},
	{name: "symbol_table", fn: symbolTable},
	{name: "code_compress", fn: codeCompress},
	{name: "context_trim", fn: contextTrim},
}

// Compress runs the five-stage pipeline over messages. Each stage is
// independently recovered: a panic inside one stage only skips that stage,
// it never aborts the pipeline or loses the messages accumulated so far.
func Compress(messages []providers.Message) Result {
	before := estimateTokens(messages)
	current := messages

	result := Result{}
	for _, s := range stages {
		current = runStage(s, current, &result)
	}

	result.Messages = current
	result.TokensBefore = before
	result.TokensAfter = estimateTokens(current)
	return result
}

func runStage(s stage, messages []providers.Message, result *Result) (out []providers.Message) {
	out = messages
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("compressor stage panicked, skipping", "stage", s.name, "recover", r)
			out = messages
		}
	}()

	out = s.fn(messages)
	result.StagesApplied = append(result.StagesApplied, s.name)
	return out
}
