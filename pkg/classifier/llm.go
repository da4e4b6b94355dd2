package classifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/relayhub/gateway/pkg/providers"
)

const abstractMaxLen = 400

const classificationSystemPrompt = `You classify a coding-assistant request. Reply with ONLY a single JSON ` +
	`object: {"category": one of code_gen|code_review|debug|refactor|explain|simple_qa|other, ` +
	`"complexity": integer 0-100}. No other text.`

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// LLM classifies by sending a compact abstract of the conversation to a
// (cheap) model and parsing its JSON verdict. It falls back to the
// heuristic classifier whenever the call fails or the response doesn't
// parse, so callers can always treat LLM.Classify as infallible in
// practice.
type LLM struct {
	provider providers.Provider
	model    string
	fallback *Heuristic
}

// NewLLM returns an LLM classifier that dispatches through provider using
// model (expected to be the cheapest/economy model available).
func NewLLM(provider providers.Provider, model string) *LLM {
	return &LLM{provider: provider, model: model, fallback: NewHeuristic()}
}

// Classify sends a truncated abstract of the conversation to the model and
// parses its category/complexity verdict.
func (l *LLM) Classify(ctx context.Context, messages []providers.Message) (Result, error) {
	abstract := buildAbstract(messages)

	req := &providers.CompletionRequest{
		Model: l.model,
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: classificationSystemPrompt},
			{Role: providers.RoleUser, Content: abstract},
		},
		Temperature: 0,
		MaxTokens:   60,
	}

	resp, err := l.provider.SendCompletion(ctx, req)
	if err != nil {
		slog.Warn("llm classifier call failed, falling back to heuristic", "error", err)
		return l.fallback.Classify(ctx, messages)
	}

	result, ok := parseVerdict(resp.Content)
	if !ok {
		slog.Warn("llm classifier returned unparseable verdict, falling back to heuristic",
			"content", resp.Content)
		return l.fallback.Classify(ctx, messages)
	}

	result.LLMUsage = &resp.Usage
	return result, nil
}

// buildAbstract renders a compact, truncated summary of the conversation:
// the last user message (truncated), a note on conversation size, and
// whether tools are in play — enough for the model to judge category and
// complexity without re-sending the full transcript.
func buildAbstract(messages []providers.Message) string {
	last := lastUserMessage(messages)
	if len(last) > abstractMaxLen {
		last = last[:abstractMaxLen] + "..."
	}

	hasTools := false
	for _, m := range messages {
		if len(m.ToolCalls) > 0 || m.Role == providers.RoleTool {
			hasTools = true
			break
		}
	}

	var b strings.Builder
	b.WriteString("Last user message: ")
	b.WriteString(last)
	b.WriteString("\nConversation turns: ")
	b.WriteString(strconv.Itoa(len(messages)))
	if hasTools {
		b.WriteString("\nConversation involves tool calls.")
	}
	return b.String()
}

func parseVerdict(content string) (Result, bool) {
	match := jsonObjectPattern.FindString(content)
	if match == "" {
		return Result{}, false
	}

	var payload struct {
		Category   string `json:"category"`
		Complexity int    `json:"complexity"`
	}
	if err := json.Unmarshal([]byte(match), &payload); err != nil {
		return Result{}, false
	}
	if payload.Category == "" {
		return Result{}, false
	}

	complexity := payload.Complexity
	if complexity < 0 {
		complexity = 0
	}
	if complexity > 100 {
		complexity = 100
	}

	return Result{Category: Category(payload.Category), Complexity: complexity}, true
}
