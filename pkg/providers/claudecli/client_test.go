package claudecli

import (
	"context"
	"os/exec"
	"testing"

	"github.com/relayhub/gateway/pkg/providers"
	"github.com/relayhub/gateway/pkg/warmpool"
)

// fakeSpawn returns a Spawner that, for every stdin line it receives, emits
// two assistant text deltas and a terminal result event, simulating one
// claude CLI turn without needing the real binary.
func fakeSpawn() warmpool.Spawner {
	return func(ctx context.Context, model string) (*exec.Cmd, error) {
		script := `while IFS= read -r line; do
printf '%s\n' '{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Hello, "}]}}'
printf '%s\n' '{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"world!"}]}}'
printf '%s\n' '{"type":"result","result":"Hello, world!","usage":{"input_tokens":10,"output_tokens":5}}'
done`
		return exec.CommandContext(ctx, "sh", "-c", script), nil
	}
}

func testProvider(mode string) *Provider {
	p := &Provider{
		config: providers.ProviderConfig{Name: "claudecli", DispatchMode: mode},
		spawn:  fakeSpawn(),
	}
	switch mode {
	case DispatchWarm:
		p.pool = warmpool.NewPool(p.spawn, 0)
	case DispatchPinned:
		p.pinned = warmpool.NewPinned(p.spawn)
	}
	return p
}

func TestProvider_SendCompletion_Ephemeral(t *testing.T) {
	p := testProvider(DispatchEphemeral)
	defer p.Close()

	req := &providers.CompletionRequest{
		Model: "claude-3-opus",
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: "Hello"},
		},
	}

	resp, err := p.SendCompletion(context.Background(), req)
	if err != nil {
		t.Fatalf("SendCompletion failed: %v", err)
	}

	if resp.Content != "Hello, world!" {
		t.Errorf("expected content %q, got %q", "Hello, world!", resp.Content)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("expected 15 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if resp.FinishReason != providers.FinishReasonStop {
		t.Errorf("expected finish reason stop, got %s", resp.FinishReason)
	}
	if !p.IsHealthy() {
		t.Error("expected provider to be healthy after a successful dispatch")
	}
}

func TestProvider_StreamCompletion_Ephemeral(t *testing.T) {
	p := testProvider(DispatchEphemeral)
	defer p.Close()

	req := &providers.CompletionRequest{
		Model: "claude-3-opus",
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: "Hello"},
		},
		Stream: true,
	}

	chunksChan, err := p.StreamCompletion(context.Background(), req)
	if err != nil {
		t.Fatalf("StreamCompletion failed: %v", err)
	}

	var content string
	var sawFinish bool
	for chunk := range chunksChan {
		if chunk.Error != nil {
			t.Fatalf("stream error: %v", chunk.Error)
		}
		content += chunk.Delta
		if chunk.FinishReason != "" {
			sawFinish = true
			if chunk.Usage == nil || chunk.Usage.TotalTokens != 15 {
				t.Errorf("expected final chunk usage of 15 tokens, got %+v", chunk.Usage)
			}
		}
	}

	if content != "Hello, world!" {
		t.Errorf("expected streamed content %q, got %q", "Hello, world!", content)
	}
	if !sawFinish {
		t.Error("expected a terminal chunk carrying a finish reason")
	}
}

func TestProvider_DispatchMode_Warm(t *testing.T) {
	p := testProvider(DispatchWarm)
	defer p.Close()

	req := &providers.CompletionRequest{
		Model: "claude-3-opus",
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: "Hello"},
		},
	}

	resp, err := p.SendCompletion(context.Background(), req)
	if err != nil {
		t.Fatalf("SendCompletion via warm pool failed: %v", err)
	}
	if resp.Content != "Hello, world!" {
		t.Errorf("expected content %q, got %q", "Hello, world!", resp.Content)
	}
}

func TestProvider_DispatchMode_Pinned(t *testing.T) {
	p := testProvider(DispatchPinned)
	defer p.Close()

	req := &providers.CompletionRequest{
		Model: "claude-3-opus",
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: "Be nice."},
			{Role: providers.RoleUser, Content: "Hello"},
		},
	}

	resp, err := p.SendCompletion(context.Background(), req)
	if err != nil {
		t.Fatalf("SendCompletion via pinned process failed: %v", err)
	}
	if resp.Content != "Hello, world!" {
		t.Errorf("expected content %q, got %q", "Hello, world!", resp.Content)
	}
}

func TestProvider_ValidationError(t *testing.T) {
	p := testProvider(DispatchEphemeral)
	defer p.Close()

	_, err := p.SendCompletion(context.Background(), nil)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if _, ok := err.(*providers.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestProvider_GetTypeAndName(t *testing.T) {
	p := testProvider(DispatchEphemeral)
	defer p.Close()

	if p.GetType() != "claudecli" {
		t.Errorf("expected type claudecli, got %s", p.GetType())
	}
	if p.GetName() != "claudecli" {
		t.Errorf("expected name claudecli, got %s", p.GetName())
	}
}
