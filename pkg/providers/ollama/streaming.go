package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/relayhub/gateway/pkg/providers"
)

// streamReader reads newline-delimited JSON from Ollama's /api/chat stream.
// Unlike the SSE providers, every line (not just "data: "-prefixed ones) is
// a complete JSON object; the stream ends on the line carrying "done": true.
type streamReader struct {
	provider *providers.HTTPProvider
	resp     io.ReadCloser
	scanner  *bufio.Scanner
	done     bool
	closed   bool
}

func newStreamReader(ctx context.Context, provider *providers.HTTPProvider, url string, req *OllamaRequest, headers map[string]string) (*streamReader, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := provider.DoRequest(ctx, "POST", url, bodyBytes, headers)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &streamReader{
		provider: provider,
		resp:     resp.Body,
		scanner:  scanner,
	}, nil
}

// Read returns the next chunk, or io.EOF after the done:true line.
func (s *streamReader) Read(ctx context.Context) (*providers.StreamChunk, error) {
	if s.closed || s.done {
		return nil, io.EOF
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, &providers.StreamError{
					Provider: s.provider.GetName(),
					Message:  "failed to read stream",
					Cause:    err,
				}
			}
			return nil, io.EOF
		}

		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ollamaResp OllamaChatResponse
		if err := json.Unmarshal(line, &ollamaResp); err != nil {
			return nil, &providers.ParseError{
				Provider:    s.provider.GetName(),
				RawResponse: string(line),
				Cause:       fmt.Errorf("failed to parse stream line: %w", err),
			}
		}

		chunk, err := transformStreamChunk(&ollamaResp)
		if err != nil {
			return nil, &providers.ParseError{
				Provider: s.provider.GetName(),
				Cause:    err,
			}
		}

		if ollamaResp.Done {
			s.done = true
		}

		return chunk, nil
	}
}

// Close closes the stream and releases resources.
func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.resp.Close()
}
