package ollama

import (
	"encoding/json"
	"fmt"

	"github.com/relayhub/gateway/pkg/providers"
)

// Ollama API request/response types.
//
// Ollama's /api/chat speaks newline-delimited JSON rather than SSE: each
// line, streaming or not, is a complete JSON object; the last one (or the
// only one, for non-streaming requests) carries "done": true plus the
// eval counts.

// OllamaRequest represents a /api/chat request.
type OllamaRequest struct {
	Model    string          `json:"model"`
	Messages []OllamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  OllamaOptions   `json:"options,omitempty"`
	Tools    []OllamaTool    `json:"tools,omitempty"`
}

// OllamaMessage represents a single chat turn.
type OllamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []OllamaToolCall `json:"tool_calls,omitempty"`
}

// OllamaToolCall represents a model-emitted tool call.
type OllamaToolCall struct {
	Function OllamaFunctionCall `json:"function"`
}

// OllamaFunctionCall carries the called function's name and arguments.
type OllamaFunctionCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// OllamaTool represents a tool definition.
type OllamaTool struct {
	Type     string                    `json:"type"`
	Function OllamaFunctionDeclaration `json:"function"`
}

// OllamaFunctionDeclaration describes a callable function.
type OllamaFunctionDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// OllamaOptions carries sampling parameters.
type OllamaOptions struct {
	Temperature float64  `json:"temperature,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// OllamaChatResponse represents one NDJSON line of a /api/chat response.
type OllamaChatResponse struct {
	Model           string        `json:"model"`
	CreatedAt       string        `json:"created_at"`
	Message         OllamaMessage `json:"message"`
	Done            bool          `json:"done"`
	DoneReason      string        `json:"done_reason,omitempty"`
	PromptEvalCount int           `json:"prompt_eval_count,omitempty"`
	EvalCount       int           `json:"eval_count,omitempty"`
}

// transformRequest transforms a provider-agnostic request into Ollama format.
func transformRequest(req *providers.CompletionRequest) *OllamaRequest {
	ollamaReq := &OllamaRequest{
		Model:    req.Model,
		Messages: make([]OllamaMessage, len(req.Messages)),
		Stream:   req.Stream,
		Options: OllamaOptions{
			Temperature: req.Temperature,
			TopP:        req.TopP,
			NumPredict:  req.MaxTokens,
			Stop:        req.Stop,
		},
	}

	for i, msg := range req.Messages {
		ollamaReq.Messages[i] = OllamaMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	if len(req.Tools) > 0 {
		ollamaReq.Tools = make([]OllamaTool, len(req.Tools))
		for i, tool := range req.Tools {
			ollamaReq.Tools[i] = OllamaTool{
				Type: tool.Type,
				Function: OllamaFunctionDeclaration{
					Name:        tool.Function.Name,
					Description: tool.Function.Description,
					Parameters:  tool.Function.Parameters,
				},
			}
		}
	}

	return ollamaReq
}

// transformResponse transforms a terminal Ollama chat response to provider-agnostic format.
func transformResponse(resp *OllamaChatResponse) (*providers.CompletionResponse, error) {
	result := &providers.CompletionResponse{
		Model:        resp.Model,
		Content:      resp.Message.Content,
		FinishReason: normalizeFinishReason(resp),
		Usage: providers.TokenUsage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
		Metadata: make(map[string]string),
	}

	if calls := extractToolCalls(resp.Message.ToolCalls); len(calls) > 0 {
		result.ToolCalls = calls
		result.FinishReason = providers.FinishReasonToolCalls
	}

	return result, nil
}

// transformStreamChunk transforms one NDJSON line into a canonical chunk.
func transformStreamChunk(resp *OllamaChatResponse) (*providers.StreamChunk, error) {
	chunk := &providers.StreamChunk{
		Model:        resp.Model,
		Delta:        resp.Message.Content,
		FinishReason: normalizeFinishReason(resp),
	}

	if calls := extractToolCalls(resp.Message.ToolCalls); len(calls) > 0 {
		chunk.ToolCalls = calls
		chunk.FinishReason = providers.FinishReasonToolCalls
	}

	if resp.Done {
		chunk.Usage = &providers.TokenUsage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		}
	}

	return chunk, nil
}

func extractToolCalls(calls []OllamaToolCall) []providers.ToolCall {
	if len(calls) == 0 {
		return nil
	}

	result := make([]providers.ToolCall, len(calls))
	for i, tc := range calls {
		args, err := marshalArgs(tc.Function.Arguments)
		if err != nil {
			continue
		}
		result[i] = providers.ToolCall{
			ID:   fmt.Sprintf("call_%d", i),
			Type: providers.ToolTypeFunction,
			Function: providers.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: args,
			},
		}
	}
	return result
}

func marshalArgs(args map[string]interface{}) (string, error) {
	if args == nil {
		return "{}", nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// normalizeFinishReason normalizes Ollama's done/done_reason pair to a
// provider-agnostic finish reason. Non-terminal chunks return "".
func normalizeFinishReason(resp *OllamaChatResponse) string {
	if !resp.Done {
		return ""
	}
	switch resp.DoneReason {
	case "stop", "":
		return providers.FinishReasonStop
	case "length":
		return providers.FinishReasonLength
	default:
		return resp.DoneReason
	}
}
