package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/relayhub/gateway/pkg/providers"
)

// Provider is the Gemini provider adapter.
// It implements the providers.Provider interface for Google's
// generateContent / streamGenerateContent API.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new Gemini provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "gemini",
			Field:    "name",
			Message:  "provider name is required",
		}
	}

	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com"
	}

	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for Gemini",
		}
	}

	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	httpProvider := providers.NewHTTPProvider(config)

	p := &Provider{
		HTTPProvider: httpProvider,
	}

	slog.Info("Gemini provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
	)

	return p, nil
}

// SendCompletion sends a completion request to Gemini.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	geminiReq := transformRequest(req)

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.GetConfig().BaseURL, req.Model)
	headers := map[string]string{
		"x-goog-api-key": p.GetConfig().APIKey,
		"Content-Type":   "application/json",
	}

	var geminiResp GeminiResponse
	if err := p.DoJSONRequest(ctx, "POST", url, geminiReq, &geminiResp, headers); err != nil {
		return nil, err
	}

	resp, err := transformResponse(&geminiResp, req.Model)
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

// StreamCompletion sends a streaming completion request to Gemini.
func (p *Provider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.StreamChunk, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	geminiReq := transformRequest(req)

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", p.GetConfig().BaseURL, req.Model)
	headers := map[string]string{
		"x-goog-api-key": p.GetConfig().APIKey,
		"Content-Type":   "application/json",
		"Accept":         "text/event-stream",
	}

	stream, err := newStreamReader(ctx, p.HTTPProvider, url, geminiReq, headers, req.Model)
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

// GetType returns "gemini" as the provider type.
func (p *Provider) GetType() string {
	return "gemini"
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
