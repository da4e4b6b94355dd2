package stream

import (
	"strings"

	"github.com/relayhub/gateway/pkg/providers"
)

// Transform wraps a provider's raw chunk channel, returning a pass-through
// channel for the HTTP layer plus a MetadataPromise that resolves once the
// stream terminates. Every chunk is teed to recorder before being forwarded.
// When detectToolCalls is set (the subprocess provider's <tool_call> XML
// convention), text deltas are run through a ToolCallDetector first so the
// client never sees the raw tags.
func Transform(requestID, model string, in <-chan *providers.StreamChunk, recorder ActivityRecorder, estimator CostEstimator, detectToolCalls bool) (<-chan *providers.StreamChunk, *MetadataPromise) {
	if recorder == nil {
		recorder = noopRecorder{}
	}

	out := make(chan *providers.StreamChunk, 100)
	promise := newMetadataPromise()

	go func() {
		defer close(out)

		var text strings.Builder
		var toolCalls []providers.ToolCall
		var usage providers.TokenUsage
		var finishReason string
		var detector *ToolCallDetector
		if detectToolCalls {
			detector = NewToolCallDetector()
		}

		for chunk := range in {
			recorder.OnChunk(requestID, chunk)

			if chunk.Error != nil {
				out <- chunk
				continue
			}

			forwarded := chunk
			if detector != nil && chunk.Delta != "" {
				passthrough, calls := detector.Feed(chunk.Delta)
				if len(calls) > 0 {
					toolCalls = append(toolCalls, calls...)
				}
				forwarded = cloneChunkWithDelta(chunk, passthrough)
			}
			text.WriteString(forwarded.Delta)

			if chunk.Usage != nil {
				usage = *chunk.Usage
			}
			if chunk.FinishReason != "" {
				finishReason = chunk.FinishReason
				if detector != nil {
					if tail, calls := detector.Flush(); tail != "" || len(calls) > 0 {
						if tail != "" {
							forwarded = cloneChunkWithDelta(forwarded, forwarded.Delta+tail)
							text.WriteString(tail)
						}
						toolCalls = append(toolCalls, calls...)
					}
				}
				if len(toolCalls) > 0 {
					forwarded.ToolCalls = toolCalls
				}
			}

			out <- forwarded
		}

		cost := 0.0
		if estimator != nil {
			cost = estimator.EstimateCost(model, usage.PromptTokens, usage.CompletionTokens)
		}

		promise.resolve(Metadata{
			Content:      text.String(),
			FinishReason: finishReason,
			Usage:        usage,
			ToolCalls:    toolCalls,
			CostUSD:      cost,
		})
	}()

	return out, promise
}

func cloneChunkWithDelta(chunk *providers.StreamChunk, delta string) *providers.StreamChunk {
	clone := *chunk
	clone.Delta = delta
	return &clone
}
