package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/relayhub/gateway/pkg/providers"
)

type fakeProvider struct {
	providers.Provider
	resp *providers.CompletionResponse
	err  error
}

func (f *fakeProvider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	return f.resp, f.err
}

func TestLLM_Classify_ParsesVerdict(t *testing.T) {
	fp := &fakeProvider{resp: &providers.CompletionResponse{
		Content: `{"category": "debug", "complexity": 42}`,
		Usage:   providers.TokenUsage{PromptTokens: 20, CompletionTokens: 8, TotalTokens: 28},
	}}
	llm := NewLLM(fp, "claude-3-haiku")

	result, err := llm.Classify(context.Background(), []providers.Message{
		{Role: providers.RoleUser, Content: "why does my server crash on startup"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Category != CategoryDebug {
		t.Errorf("expected category debug, got %s", result.Category)
	}
	if result.Complexity != 42 {
		t.Errorf("expected complexity 42, got %d", result.Complexity)
	}
	if result.LLMUsage == nil || result.LLMUsage.TotalTokens != 28 {
		t.Errorf("expected LLM usage to be recorded, got %+v", result.LLMUsage)
	}
}

func TestLLM_Classify_FallsBackOnProviderError(t *testing.T) {
	fp := &fakeProvider{err: errors.New("provider unavailable")}
	llm := NewLLM(fp, "claude-3-haiku")

	result, err := llm.Classify(context.Background(), []providers.Message{
		{Role: providers.RoleUser, Content: "write a function to reverse a string"},
	})
	if err != nil {
		t.Fatalf("expected fallback to heuristic, not an error: %v", err)
	}
	if result.Category != CategoryCodeGen {
		t.Errorf("expected heuristic fallback to classify code_gen, got %s", result.Category)
	}
	if result.LLMUsage != nil {
		t.Errorf("expected no LLM usage on fallback, got %+v", result.LLMUsage)
	}
}

func TestLLM_Classify_FallsBackOnUnparseableResponse(t *testing.T) {
	fp := &fakeProvider{resp: &providers.CompletionResponse{Content: "I refuse to answer in JSON."}}
	llm := NewLLM(fp, "claude-3-haiku")

	result, err := llm.Classify(context.Background(), []providers.Message{
		{Role: providers.RoleUser, Content: "explain how garbage collection works"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Category != CategoryExplain {
		t.Errorf("expected heuristic fallback to classify explain, got %s", result.Category)
	}
}

func TestService_SetLLMMode(t *testing.T) {
	fp := &fakeProvider{resp: &providers.CompletionResponse{
		Content: `{"category": "refactor", "complexity": 55}`,
	}}
	svc := New(fp, "claude-3-haiku")

	result, err := svc.Classify(context.Background(), []providers.Message{{Role: providers.RoleUser, Content: "tidy this up"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Category == CategoryRefactor {
		t.Error("expected heuristic mode (default off) to not see the LLM's refactor verdict for this short unmatched prompt")
	}

	svc.SetLLMMode(true)
	if !svc.LLMMode() {
		t.Fatal("expected LLMMode to report true after SetLLMMode(true)")
	}
	result, err = svc.Classify(context.Background(), []providers.Message{{Role: providers.RoleUser, Content: "tidy this up"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Category != CategoryRefactor {
		t.Errorf("expected LLM mode to return refactor, got %s", result.Category)
	}
}

func TestService_NoProviderConfiguredStaysHeuristic(t *testing.T) {
	svc := New(nil, "")
	svc.SetLLMMode(true)

	result, err := svc.Classify(context.Background(), []providers.Message{{Role: providers.RoleUser, Content: "write a function to sort a list"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Category != CategoryCodeGen {
		t.Errorf("expected heuristic classification when no LLM provider is configured, got %s", result.Category)
	}
}
