package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	testhelpers "github.com/relayhub/gateway/internal/providers"
	"github.com/relayhub/gateway/pkg/providers"
)

func mockOllamaResponse(content, model string) map[string]interface{} {
	return map[string]interface{}{
		"model":      model,
		"created_at": "2024-01-01T00:00:00Z",
		"message": map[string]interface{}{
			"role":    "assistant",
			"content": content,
		},
		"done":              true,
		"done_reason":       "stop",
		"prompt_eval_count": 10,
		"eval_count":        20,
	}
}

func TestOllamaProvider_SendCompletion(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/api/chat", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       mockOllamaResponse("Hello, world!", "llama3"),
	})

	config := testhelpers.TestConfigWithURL("ollama", "ollama", mock.URL())
	provider, err := NewProvider(config)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer provider.Close()

	req := &providers.CompletionRequest{
		Model: "llama3",
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: "Hello"},
		},
	}

	ctx := context.Background()
	resp, err := provider.SendCompletion(ctx, req)
	if err != nil {
		t.Fatalf("SendCompletion failed: %v", err)
	}

	if resp.Content != "Hello, world!" {
		t.Errorf("expected content %q, got %q", "Hello, world!", resp.Content)
	}

	if resp.Usage.TotalTokens != 30 {
		t.Errorf("expected total tokens 30, got %d", resp.Usage.TotalTokens)
	}

	if resp.FinishReason != providers.FinishReasonStop {
		t.Errorf("expected finish reason stop, got %s", resp.FinishReason)
	}
}

func TestOllamaProvider_ValidationError(t *testing.T) {
	config := testhelpers.TestConfig("ollama", "ollama")
	provider, err := NewProvider(config)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer provider.Close()

	ctx := context.Background()
	_, err = provider.SendCompletion(ctx, nil)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	if _, ok := err.(*providers.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestOllamaProvider_AuthError(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/api/chat", testhelpers.MockErrorResponse(http.StatusUnauthorized, "invalid credentials"))

	config := testhelpers.TestConfigWithURL("ollama", "ollama", mock.URL())
	provider, err := NewProvider(config)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer provider.Close()

	req := testhelpers.TestCompletionRequest("llama3",
		testhelpers.TestMessage(providers.RoleUser, "Hello"))

	ctx := context.Background()
	_, err = provider.SendCompletion(ctx, req)
	if err == nil {
		t.Fatal("expected auth error, got nil")
	}

	if _, ok := err.(*providers.AuthError); !ok {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
}

// TestOllamaProvider_StreamCompletion uses a dedicated NDJSON server rather
// than the shared SSE-shaped mock server, since Ollama's wire format has no
// "data: " framing and no [DONE] sentinel.
func TestOllamaProvider_StreamCompletion(t *testing.T) {
	lines := []string{
		`{"model":"llama3","message":{"role":"assistant","content":"Hello"},"done":false}`,
		`{"model":"llama3","message":{"role":"assistant","content":", world!"},"done":false}`,
		`{"model":"llama3","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop","prompt_eval_count":10,"eval_count":20}`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprintln(w, line)
			flusher.Flush()
		}
	}))
	defer server.Close()

	config := testhelpers.TestConfigWithURL("ollama", "ollama", server.URL)
	provider, err := NewProvider(config)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer provider.Close()

	req := &providers.CompletionRequest{
		Model: "llama3",
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: "Hello"},
		},
		Stream: true,
	}

	ctx := context.Background()
	chunksChan, err := provider.StreamCompletion(ctx, req)
	if err != nil {
		t.Fatalf("StreamCompletion failed: %v", err)
	}

	received, err := testhelpers.CollectStreamChunks(t, chunksChan)
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}

	content := testhelpers.ConcatenateChunks(received)
	if content != "Hello, world!" {
		t.Errorf("expected content %q, got %q", "Hello, world!", content)
	}

	last := received[len(received)-1]
	if last.FinishReason != providers.FinishReasonStop {
		t.Errorf("expected finish reason stop, got %s", last.FinishReason)
	}
	if last.Usage == nil || last.Usage.TotalTokens != 30 {
		t.Errorf("expected usage with 30 total tokens, got %+v", last.Usage)
	}
}
