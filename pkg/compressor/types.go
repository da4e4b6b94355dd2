package compressor

import "github.com/relayhub/gateway/pkg/providers"

// Result is the outcome of running the compression pipeline.
type Result struct {
	Messages      []providers.Message
	TokensBefore  int
	TokensAfter   int
	StagesApplied []string
}

// estimateTokens is the same chars/4 rough estimate the proxy's request
// metadata uses elsewhere in this module.
func estimateTokens(messages []providers.Message) int {
	chars := 0
	for _, m := range messages {
		chars += len(m.Content)
	}
	return chars / 4
}

// stage is one independently catch-all step of the pipeline: a panic or
// error inside a stage must never abort the others.
type stage struct {
	name string
	fn   func([]providers.Message) []providers.Message
}
