package stream

import (
	"testing"

	"github.com/relayhub/gateway/pkg/providers"
)

type fakeEstimator struct{ cost float64 }

func (f fakeEstimator) EstimateCost(model string, prompt, completion int) float64 { return f.cost }

type fakeRecorder struct{ chunks []*providers.StreamChunk }

func (f *fakeRecorder) OnChunk(requestID string, chunk *providers.StreamChunk) {
	f.chunks = append(f.chunks, chunk)
}

func TestTransform_AccumulatesTextAndResolvesMetadata(t *testing.T) {
	in := make(chan *providers.StreamChunk, 4)
	in <- &providers.StreamChunk{Delta: "hello "}
	in <- &providers.StreamChunk{Delta: "world"}
	in <- &providers.StreamChunk{
		FinishReason: providers.FinishReasonStop,
		Usage:        &providers.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
	close(in)

	rec := &fakeRecorder{}
	out, promise := Transform("req-1", "claude-3-opus", in, rec, fakeEstimator{cost: 0.02}, false)

	var got string
	for chunk := range out {
		got += chunk.Delta
	}
	if got != "hello world" {
		t.Errorf("expected accumulated text %q, got %q", "hello world", got)
	}

	meta, ok := promise.Wait(nil)
	if !ok {
		t.Fatal("expected metadata promise to resolve")
	}
	if meta.Content != "hello world" {
		t.Errorf("expected metadata content %q, got %q", "hello world", meta.Content)
	}
	if meta.CostUSD != 0.02 {
		t.Errorf("expected cost 0.02, got %v", meta.CostUSD)
	}
	if meta.Usage.TotalTokens != 15 {
		t.Errorf("expected 15 total tokens, got %d", meta.Usage.TotalTokens)
	}
	if len(rec.chunks) != 3 {
		t.Errorf("expected every chunk teed to the recorder, got %d", len(rec.chunks))
	}
}

func TestTransform_DetectsToolCallsWhenEnabled(t *testing.T) {
	in := make(chan *providers.StreamChunk, 3)
	in <- &providers.StreamChunk{Delta: `before <tool_call>{"name":"lookup","arguments":{}}</tool_call> after`}
	in <- &providers.StreamChunk{FinishReason: providers.FinishReasonStop}
	close(in)

	out, promise := Transform("req-2", "claude-cli", in, nil, nil, true)

	var got string
	for chunk := range out {
		got += chunk.Delta
	}
	if got != "before  after" {
		t.Errorf("expected tool-call XML stripped from text, got %q", got)
	}

	meta, ok := promise.Wait(nil)
	if !ok {
		t.Fatal("expected metadata promise to resolve")
	}
	if len(meta.ToolCalls) != 1 || meta.ToolCalls[0].Function.Name != "lookup" {
		t.Errorf("expected 1 tool call named lookup, got %+v", meta.ToolCalls)
	}
}

func TestTransform_ForwardsStreamErrors(t *testing.T) {
	in := make(chan *providers.StreamChunk, 1)
	in <- &providers.StreamChunk{Error: &providers.TimeoutError{Provider: "claude", Timeout: 0}}
	close(in)

	out, _ := Transform("req-3", "claude-3-opus", in, nil, nil, false)

	chunk, ok := <-out
	if !ok {
		t.Fatal("expected a chunk to be forwarded")
	}
	if chunk.Error == nil {
		t.Error("expected the error to be forwarded unchanged")
	}
}
