package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/relayhub/gateway/pkg/pipeline"
	"github.com/relayhub/gateway/pkg/providers"
	"github.com/relayhub/gateway/pkg/proxy"
	"github.com/relayhub/gateway/pkg/proxy/middleware"
	"github.com/relayhub/gateway/pkg/proxy/types"
)

// convertMessageContent converts message content from interface{} to string.
// Handles both simple string content and multimodal content arrays.
func convertMessageContent(content interface{}) string {
	if content == nil {
		return ""
	}

	if str, ok := content.(string); ok {
		return str
	}

	if arr, ok := content.([]interface{}); ok {
		return convertMultimodalContent(arr)
	}

	return fmt.Sprintf("%v", content)
}

// convertMultimodalContent extracts text from multimodal content array.
// Image parts are skipped; the pipeline classifies and routes on text alone.
func convertMultimodalContent(parts []interface{}) string {
	var textParts []string

	for _, part := range parts {
		partMap, ok := part.(map[string]interface{})
		if !ok {
			continue
		}

		partType, ok := partMap["type"].(string)
		if !ok {
			continue
		}

		switch partType {
		case "text":
			if text, ok := partMap["text"].(string); ok {
				textParts = append(textParts, text)
			}
		default:
			continue
		}
	}

	if len(textParts) == 0 {
		return ""
	}

	var result string
	for i, part := range textParts {
		if i > 0 {
			result += " "
		}
		result += part
	}
	return result
}

// convertMessages converts the wire message list to the pipeline's
// provider-agnostic representation.
func convertMessages(messages []types.Message) []providers.Message {
	out := make([]providers.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, providers.Message{
			Role:       msg.Role,
			Content:    convertMessageContent(msg.Content),
			Name:       msg.Name,
			ToolCalls:  convertToolCalls(msg.ToolCalls),
			ToolCallID: msg.ToolCallID,
		})
	}
	return out
}

// convertToolCalls converts tool calls from wire format to provider format.
func convertToolCalls(toolCalls []types.ToolCall) []providers.ToolCall {
	if len(toolCalls) == 0 {
		return nil
	}

	providerCalls := make([]providers.ToolCall, len(toolCalls))
	for i, tc := range toolCalls {
		providerCalls[i] = providers.ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: providers.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		}
	}

	return providerCalls
}

// convertTools converts tool definitions from wire format to provider format.
func convertTools(tools []types.Tool) []providers.Tool {
	if len(tools) == 0 {
		return nil
	}

	providerTools := make([]providers.Tool, len(tools))
	for i, tool := range tools {
		providerTools[i] = providers.Tool{
			Type: tool.Type,
			Function: providers.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		}
	}

	return providerTools
}

// convertToPipelineRequest builds the pipeline's Request DTO from the
// decoded wire request. requestID comes from the request-id middleware;
// clientID is the declared client (user agent) consulted by the
// agentic-client upgrade.
func convertToPipelineRequest(requestID, clientID string, req *types.ChatCompletionRequest) pipeline.Request {
	model := req.Model
	if model == "" {
		model = "auto"
	}

	preq := pipeline.Request{
		RequestID:      requestID,
		ClientID:       clientID,
		RequestedModel: model,
		Messages:       convertMessages(req.Messages),
		Stream:         req.Stream,
		Tools:          convertTools(req.Tools),
		ToolChoice:     req.ToolChoice,
		Stop:           req.Stop,
	}
	if req.Temperature != nil {
		preq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		preq.MaxTokens = *req.MaxTokens
	}
	return preq
}

// pipelineErrorResponse maps a pipeline error to an OpenAI-compatible
// error envelope, preserving its HTTP status.
func pipelineErrorResponse(err *pipeline.Error) *types.ErrorResponse {
	errType := types.ErrorTypeServerError
	switch err.Status {
	case 400:
		errType = types.ErrorTypeInvalidRequest
	case 404:
		errType = types.ErrorTypeNotFound
	case 429:
		errType = types.ErrorTypeRateLimitExceeded
	case 500:
		errType = types.ErrorTypeServerError
	}
	return types.NewErrorResponse(err.Message, errType, "", err.Code)
}

// writeOutcomeHeaders copies the pipeline's extra response headers onto w.
func writeOutcomeHeaders(w http.ResponseWriter, headers map[string]string) {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
}

// ChatHandler dispatches OpenAI-compatible chat completion requests
// through the pipeline orchestrator.
type ChatHandler struct {
	Pipeline *pipeline.Pipeline
}

// NewChatHandler creates a new chat handler backed by p.
func NewChatHandler(p *pipeline.Pipeline) *ChatHandler {
	return &ChatHandler{Pipeline: p}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		errResp := types.NewInvalidRequestError(
			fmt.Sprintf("method %s not allowed, use POST instead", r.Method),
			"method",
			"method_not_allowed",
		)
		if err := proxy.WriteErrorResponse(w, errResp); err != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	chatReq, err := proxy.ParseChatCompletionRequest(r)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse chat completion request", "request_id", requestID, "error", err)
		errResp := proxy.HandleError(err)
		if err := proxy.WriteErrorResponse(w, errResp); err != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	preq := convertToPipelineRequest(requestID, r.Header.Get("User-Agent"), chatReq)

	outcome, err := h.Pipeline.Run(ctx, preq)
	if err != nil {
		pipeErr, ok := err.(*pipeline.Error)
		if !ok {
			pipeErr = &pipeline.Error{Status: 500, Code: "internal_error", Message: err.Error()}
		}
		slog.ErrorContext(ctx, "pipeline run failed",
			"request_id", requestID,
			"status", pipeErr.Status,
			"code", pipeErr.Code,
		)
		if werr := proxy.WriteJSONResponse(w, pipeErr.Status, pipelineErrorResponse(pipeErr)); werr != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}

	switch {
	case outcome.Synthetic != "":
		h.writeSynthetic(ctx, w, requestID, chatReq.Model, outcome)
	case outcome.StreamChunks != nil:
		h.writeStream(ctx, w, requestID, chatReq.Model, outcome)
	default:
		h.writeNonStreaming(ctx, w, requestID, chatReq.Model, outcome)
	}
}

func (h *ChatHandler) writeSynthetic(ctx context.Context, w http.ResponseWriter, requestID, model string, outcome *pipeline.Outcome) {
	resp := &providers.CompletionResponse{
		ID:           requestID,
		Content:      outcome.Synthetic,
		FinishReason: providers.FinishReasonStop,
	}
	writeOutcomeHeaders(w, outcome.Headers)
	openaiResp := proxy.FormatChatCompletionResponse(resp, model)
	if err := proxy.WriteJSONResponse(w, http.StatusOK, openaiResp); err != nil {
		slog.ErrorContext(ctx, "failed to write synthetic response", "request_id", requestID, "error", err)
	}
}

func (h *ChatHandler) writeNonStreaming(ctx context.Context, w http.ResponseWriter, requestID, model string, outcome *pipeline.Outcome) {
	writeOutcomeHeaders(w, outcome.Headers)
	openaiResp := proxy.FormatChatCompletionResponse(outcome.Response, model)
	if err := proxy.WriteJSONResponse(w, http.StatusOK, openaiResp); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "request_id", requestID, "error", err)
	}
}

func (h *ChatHandler) writeStream(ctx context.Context, w http.ResponseWriter, requestID, model string, outcome *pipeline.Outcome) {
	writeOutcomeHeaders(w, outcome.Headers)
	proxy.SetSSEHeaders(w)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	responseID := fmt.Sprintf("chatcmpl-%s", requestID)
	chunkCount := 0

	for chunk := range outcome.StreamChunks {
		if chunk.Error != nil {
			slog.ErrorContext(ctx, "error in stream chunk", "request_id", requestID, "chunk_count", chunkCount, "error", chunk.Error)
			errResp := proxy.HandleError(chunk.Error)
			if err := proxy.WriteSSEError(w, errResp); err != nil {
				slog.ErrorContext(ctx, "failed to write SSE error", "error", err)
			}
			break
		}

		openaiChunk := proxy.FormatStreamChunk(chunk, model, responseID)
		if err := proxy.WriteSSEChunk(w, openaiChunk); err != nil {
			slog.ErrorContext(ctx, "failed to write SSE chunk", "request_id", requestID, "chunk_count", chunkCount, "error", err)
			break
		}
		chunkCount++

		select {
		case <-ctx.Done():
			slog.WarnContext(ctx, "client disconnected during streaming", "request_id", requestID, "chunks_sent", chunkCount)
			return
		default:
		}
	}

	if err := proxy.WriteSSEDone(w); err != nil {
		slog.ErrorContext(ctx, "failed to write SSE done marker", "request_id", requestID, "error", err)
	}
}
