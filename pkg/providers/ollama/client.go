package ollama

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/relayhub/gateway/pkg/providers"
)

// Provider is the Ollama provider adapter.
// It implements the providers.Provider interface for Ollama's native
// /api/chat endpoint (NDJSON, not the OpenAI-compatible /v1 route some
// Ollama builds also expose — that route is better served by the generic
// adapter).
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new Ollama provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "ollama",
			Field:    "name",
			Message:  "provider name is required",
		}
	}

	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}

	// Ollama runs unauthenticated by default; no API key required.
	if config.MaxRetries == 0 {
		config.MaxRetries = 1
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 10
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 5
	}

	httpProvider := providers.NewHTTPProvider(config)

	p := &Provider{
		HTTPProvider: httpProvider,
	}

	slog.Info("Ollama provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
	)

	return p, nil
}

// SendCompletion sends a completion request to Ollama.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	ollamaReq := transformRequest(req)
	ollamaReq.Stream = false

	url := fmt.Sprintf("%s/api/chat", p.GetConfig().BaseURL)
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	var ollamaResp OllamaChatResponse
	if err := p.DoJSONRequest(ctx, "POST", url, ollamaReq, &ollamaResp, headers); err != nil {
		return nil, err
	}

	resp, err := transformResponse(&ollamaResp)
	if err != nil {
		return nil, &providers.ParseError{
			Provider: p.GetName(),
			Cause:    err,
		}
	}

	slog.Debug("completion request succeeded",
		"provider", p.GetName(),
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
	)

	return resp, nil
}

// StreamCompletion sends a streaming completion request to Ollama.
func (p *Provider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.StreamChunk, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	ollamaReq := transformRequest(req)
	ollamaReq.Stream = true

	url := fmt.Sprintf("%s/api/chat", p.GetConfig().BaseURL)
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	stream, err := newStreamReader(ctx, p.HTTPProvider, url, ollamaReq, headers)
	if err != nil {
		return nil, err
	}

	chunks := make(chan *providers.StreamChunk, 100)

	go func() {
		defer close(chunks)
		defer stream.Close()

		for {
			chunk, err := stream.Read(ctx)
			if err != nil {
				chunks <- &providers.StreamChunk{Error: err}
				return
			}

			if chunk == nil {
				return
			}

			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return
			}

			if chunk.FinishReason != "" {
				return
			}
		}
	}()

	return chunks, nil
}

// GetType returns "ollama" as the provider type.
func (p *Provider) GetType() string {
	return "ollama"
}

// validateRequest validates the completion request.
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
