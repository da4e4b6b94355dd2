package claudecli

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/relayhub/gateway/pkg/providers"
	"github.com/relayhub/gateway/pkg/warmpool"
)

// Dispatch modes, selected via ProviderConfig.DispatchMode.
const (
	DispatchWarm      = "warm"
	DispatchPinned    = "pinned"
	DispatchEphemeral = "ephemeral"
)

// Provider is the Claude CLI subprocess adapter. Unlike the HTTP adapters
// it has no network transport to share; health is tracked locally from
// dispatch outcomes instead of response status codes.
type Provider struct {
	config providers.ProviderConfig
	spawn  warmpool.Spawner

	pool   *warmpool.Pool
	pinned *warmpool.Pinned

	healthMu sync.RWMutex
	health   providers.ProviderHealth
}

// NewProvider creates a new Claude CLI provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "claudecli",
			Field:    "name",
			Message:  "provider name is required",
		}
	}

	if config.BinaryPath == "" {
		config.BinaryPath = "claude"
	}

	if config.DispatchMode == "" {
		config.DispatchMode = DispatchEphemeral
	}

	p := &Provider{
		config: config,
	}
	p.spawn = func(ctx context.Context, model string) (*exec.Cmd, error) {
		args := buildArgs(model, config.ExtraArgs)
		return exec.CommandContext(ctx, config.BinaryPath, args...), nil
	}

	switch config.DispatchMode {
	case DispatchWarm:
		p.pool = warmpool.NewPool(p.spawn, config.WarmPoolIdleTimeout)
		if err := p.pool.Start(); err != nil {
			return nil, fmt.Errorf("start warm pool: %w", err)
		}
	case DispatchPinned:
		p.pinned = warmpool.NewPinned(p.spawn)
	case DispatchEphemeral:
		// nothing to pre-initialize; each request spawns its own process.
	default:
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "dispatch_mode",
			Message:  fmt.Sprintf("unknown dispatch mode %q", config.DispatchMode),
		}
	}

	slog.Info("Claude CLI provider initialized",
		"provider", config.Name,
		"binary", config.BinaryPath,
		"dispatch_mode", config.DispatchMode,
	)

	return p, nil
}

// SendCompletion sends a non-streaming completion request via the subprocess.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var accumulated string
	onLine := func(e warmpool.CLIEvent) {
		if e.Type == "assistant" && e.Message != nil {
			accumulated += e.Message.Text()
		}
	}

	result, err := p.dispatch(ctx, req.Model, req.Messages, onLine)
	if err != nil {
		p.recordOutcome(false)
		return nil, &providers.ProviderError{
			Provider: p.config.Name,
			Message:  err.Error(),
			Cause:    err,
		}
	}
	p.recordOutcome(!result.IsError)

	resp := &providers.CompletionResponse{
		Model:        req.Model,
		Content:      resultText(result, accumulated),
		FinishReason: normalizeFinishReason(result),
		Created:      time.Now().Unix(),
		Metadata:     map[string]string{"dispatch_mode": p.config.DispatchMode},
	}

	if result.Usage != nil {
		resp.Usage = providers.TokenUsage{
			PromptTokens:     result.Usage.InputTokens,
			CompletionTokens: result.Usage.OutputTokens,
			TotalTokens:      result.Usage.InputTokens + result.Usage.OutputTokens,
		}
	}

	return resp, nil
}

// StreamCompletion sends a streaming completion request via the subprocess,
// emitting one chunk per assistant text delta observed on stdout.
func (p *Provider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.StreamChunk, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	chunks := make(chan *providers.StreamChunk, 100)

	go func() {
		defer close(chunks)

		onLine := func(e warmpool.CLIEvent) {
			if e.Type != "assistant" || e.Message == nil {
				return
			}
			text := e.Message.Text()
			if text == "" {
				return
			}
			select {
			case chunks <- &providers.StreamChunk{Model: req.Model, Delta: text}:
			case <-ctx.Done():
			}
		}

		result, err := p.dispatch(ctx, req.Model, req.Messages, onLine)
		if err != nil {
			p.recordOutcome(false)
			chunks <- &providers.StreamChunk{Error: err}
			return
		}
		p.recordOutcome(!result.IsError)

		final := &providers.StreamChunk{
			Model:        req.Model,
			FinishReason: normalizeFinishReason(result),
		}
		if result.Usage != nil {
			final.Usage = &providers.TokenUsage{
				PromptTokens:     result.Usage.InputTokens,
				CompletionTokens: result.Usage.OutputTokens,
				TotalTokens:      result.Usage.InputTokens + result.Usage.OutputTokens,
			}
		}
		chunks <- final
	}()

	return chunks, nil
}

// dispatch routes a request through the configured dispatch mode.
func (p *Provider) dispatch(ctx context.Context, model string, messages []providers.Message, onLine func(warmpool.CLIEvent)) (*warmpool.CLIEvent, error) {
	switch p.config.DispatchMode {
	case DispatchWarm:
		return p.pool.Dispatch(ctx, model, messages, onLine)
	case DispatchPinned:
		turn := []providers.Message{{Role: providers.RoleUser, Content: flattenMessages(messages)}}
		return p.pinned.Dispatch(ctx, model, turn, onLine)
	default: // DispatchEphemeral
		return p.dispatchEphemeral(ctx, model, messages, onLine)
	}
}

// dispatchEphemeral spawns a fresh process, sends the whole flattened
// conversation as one turn, and kills the process once the result arrives.
func (p *Provider) dispatchEphemeral(ctx context.Context, model string, messages []providers.Message, onLine func(warmpool.CLIEvent)) (*warmpool.CLIEvent, error) {
	proc, err := warmpool.NewProcess(ctx, model, p.spawn)
	if err != nil {
		return nil, err
	}
	defer func() { _ = proc.Kill() }()

	release, err := proc.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return proc.Send(ctx, flattenMessages(messages), onLine)
}

// HealthCheck reports healthy as long as the dispatch mode's backing
// process can be reached; subprocess providers have no lightweight probe
// request, so this reflects the most recent dispatch outcome instead.
func (p *Provider) HealthCheck(ctx context.Context) error {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	if !p.health.IsHealthy && p.health.LastError != nil {
		return p.health.LastError
	}
	return nil
}

func (p *Provider) recordOutcome(success bool) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.LastCheck = time.Now()
	p.health.TotalRequests++

	if success {
		p.health.IsHealthy = true
		p.health.ConsecutiveFailures = 0
		p.health.LastError = nil
		p.health.LastSuccessfulRequest = time.Now()
		return
	}

	p.health.FailedRequests++
	p.health.ConsecutiveFailures++
	if p.health.ConsecutiveFailures >= 3 {
		p.health.IsHealthy = false
	}
}

// GetName returns the provider's configured name.
func (p *Provider) GetName() string {
	return p.config.Name
}

// GetType returns "claudecli" as the provider type.
func (p *Provider) GetType() string {
	return "claudecli"
}

// GetConfig returns the provider's configuration.
func (p *Provider) GetConfig() providers.ProviderConfig {
	return p.config
}

// IsHealthy returns the current health status.
func (p *Provider) IsHealthy() bool {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health.IsHealthy
}

// GetHealth returns detailed health information.
func (p *Provider) GetHealth() providers.ProviderHealth {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health
}

// Close tears down any warm or pinned subprocess owned by this provider.
func (p *Provider) Close() error {
	if p.pool != nil {
		p.pool.Stop()
	}
	if p.pinned != nil {
		p.pinned.Stop()
	}
	return nil
}

func validateRequest(req *providers.CompletionRequest) error {
	if req == nil {
		return &providers.ValidationError{
			Field:   "request",
			Message: "request cannot be nil",
		}
	}
	if req.Model == "" {
		return &providers.ValidationError{
			Field:   "model",
			Message: "model is required",
		}
	}
	if len(req.Messages) == 0 {
		return &providers.ValidationError{
			Field:   "messages",
			Message: "at least one message is required",
		}
	}
	return nil
}
