package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/relayhub/gateway/pkg/providers"
)

// Gemini API request/response types.
//
// Gemini has no top-level "system" message; a system prompt is carried in
// a dedicated systemInstruction field, and roles are "user"/"model" rather
// than "user"/"assistant".

// GeminiRequest represents a generateContent / streamGenerateContent request.
type GeminiRequest struct {
	Contents          []GeminiContent        `json:"contents"`
	SystemInstruction *GeminiContent         `json:"systemInstruction,omitempty"`
	Tools             []GeminiTool           `json:"tools,omitempty"`
	GenerationConfig  GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

// GeminiContent represents one turn of conversation.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart is a single content part within a turn.
type GeminiPart struct {
	Text             string                `json:"text,omitempty"`
	FunctionCall     *GeminiFunctionCall   `json:"functionCall,omitempty"`
	FunctionResponse *GeminiFunctionResult `json:"functionResponse,omitempty"`
}

// GeminiFunctionCall represents a model-emitted function call.
type GeminiFunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// GeminiFunctionResult represents a tool result fed back to the model.
type GeminiFunctionResult struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

// GeminiTool represents a tool definition in Gemini format.
type GeminiTool struct {
	FunctionDeclarations []GeminiFunctionDeclaration `json:"functionDeclarations"`
}

// GeminiFunctionDeclaration describes a single callable function.
type GeminiFunctionDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// GeminiGenerationConfig carries sampling parameters.
type GeminiGenerationConfig struct {
	Temperature     float64  `json:"temperature,omitempty"`
	TopP            float64  `json:"topP,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

// GeminiResponse represents a generateContent response.
type GeminiResponse struct {
	Candidates    []GeminiCandidate    `json:"candidates"`
	UsageMetadata *GeminiUsageMetadata `json:"usageMetadata,omitempty"`
}

// GeminiCandidate is a single generated candidate.
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
	Index        int           `json:"index"`
}

// GeminiUsageMetadata carries token accounting.
type GeminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// transformRequest transforms a provider-agnostic request into Gemini format.
func transformRequest(req *providers.CompletionRequest) *GeminiRequest {
	geminiReq := &GeminiRequest{
		GenerationConfig: GeminiGenerationConfig{
			Temperature:     req.Temperature,
			TopP:            req.TopP,
			MaxOutputTokens: req.MaxTokens,
			StopSequences:   req.Stop,
		},
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case providers.RoleSystem:
			geminiReq.SystemInstruction = &GeminiContent{
				Parts: []GeminiPart{{Text: msg.Content}},
			}
		case providers.RoleTool:
			geminiReq.Contents = append(geminiReq.Contents, GeminiContent{
				Role: "user",
				Parts: []GeminiPart{{
					FunctionResponse: &GeminiFunctionResult{
						Name:     msg.Name,
						Response: map[string]interface{}{"result": msg.Content},
					},
				}},
			})
		default:
			geminiReq.Contents = append(geminiReq.Contents, GeminiContent{
				Role:  normalizeRole(msg.Role),
				Parts: []GeminiPart{{Text: msg.Content}},
			})
		}
	}

	if len(req.Tools) > 0 {
		decls := make([]GeminiFunctionDeclaration, len(req.Tools))
		for i, tool := range req.Tools {
			decls[i] = GeminiFunctionDeclaration{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			}
		}
		geminiReq.Tools = []GeminiTool{{FunctionDeclarations: decls}}
	}

	return geminiReq
}

// normalizeRole maps canonical roles onto Gemini's user/model pair.
func normalizeRole(role string) string {
	if role == providers.RoleAssistant {
		return "model"
	}
	return "user"
}

// transformResponse transforms a Gemini response to provider-agnostic format.
func transformResponse(resp *GeminiResponse, model string) (*providers.CompletionResponse, error) {
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]

	result := &providers.CompletionResponse{
		Model:        model,
		Content:      extractText(candidate.Content.Parts),
		FinishReason: normalizeFinishReason(candidate.FinishReason),
		Metadata:     make(map[string]string),
	}

	if resp.UsageMetadata != nil {
		result.Usage = providers.TokenUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	if calls := extractToolCalls(candidate.Content.Parts); len(calls) > 0 {
		result.ToolCalls = calls
		result.FinishReason = providers.FinishReasonToolCalls
	}

	return result, nil
}

// transformStreamChunk transforms one Gemini SSE payload into a canonical chunk.
func transformStreamChunk(resp *GeminiResponse, model string) (*providers.StreamChunk, error) {
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in stream chunk")
	}

	candidate := resp.Candidates[0]

	chunk := &providers.StreamChunk{
		Model:        model,
		Delta:        extractText(candidate.Content.Parts),
		FinishReason: normalizeFinishReason(candidate.FinishReason),
	}

	if calls := extractToolCalls(candidate.Content.Parts); len(calls) > 0 {
		chunk.ToolCalls = calls
		chunk.FinishReason = providers.FinishReasonToolCalls
	}

	if resp.UsageMetadata != nil {
		chunk.Usage = &providers.TokenUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	return chunk, nil
}

func extractText(parts []GeminiPart) string {
	var out string
	for _, part := range parts {
		out += part.Text
	}
	return out
}

func extractToolCalls(parts []GeminiPart) []providers.ToolCall {
	var calls []providers.ToolCall
	for i, part := range parts {
		if part.FunctionCall == nil {
			continue
		}
		args, err := marshalArgs(part.FunctionCall.Args)
		if err != nil {
			continue
		}
		calls = append(calls, providers.ToolCall{
			ID:   fmt.Sprintf("call_%d", i),
			Type: providers.ToolTypeFunction,
			Function: providers.FunctionCall{
				Name:      part.FunctionCall.Name,
				Arguments: args,
			},
		})
	}
	return calls
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

// normalizeFinishReason normalizes Gemini finish reasons to provider-agnostic values.
func normalizeFinishReason(reason string) string {
	switch reason {
	case "STOP":
		return providers.FinishReasonStop
	case "MAX_TOKENS":
		return providers.FinishReasonLength
	case "SAFETY", "RECITATION":
		return providers.FinishReasonContentFilter
	case "":
		return ""
	default:
		return reason
	}
}
