package classifier

import (
	"context"
	"regexp"
	"strings"

	"github.com/relayhub/gateway/pkg/providers"
)

// categoryRule pairs a compiled pattern with the category it assigns.
// Rules are tried in order; the first match wins.
type categoryRule struct {
	pattern  *regexp.Regexp
	category Category
}

var categoryRules = []categoryRule{
	{regexp.MustCompile(`(?i)\b(fix|debug|why (is|does|isn'?t|doesn'?t)|error|exception|stack trace|traceback|not working|broken|crash(es|ed|ing)?)\b`), CategoryDebug},
	{regexp.MustCompile(`(?i)\b(review|code review|critique|feedback on this code|any issues with)\b`), CategoryCodeReview},
	{regexp.MustCompile(`(?i)\b(refactor|clean up|simplify|restructure|rewrite this|improve this code)\b`), CategoryRefactor},
	{regexp.MustCompile(`(?i)\b(write|implement|create|add|build|generate).{0,40}\b(function|class|method|script|program|endpoint|feature|component|test)\b`), CategoryCodeGen},
	{regexp.MustCompile(`(?i)\b(explain|what does|how does|walk me through|describe how)\b`), CategoryExplain},
}

var complexKeywords = regexp.MustCompile(`(?i)\b(architect(ure)?|distributed|concurren(t|cy)|optimi[sz]e|scal(e|able|ability)|algorithm|complexity|multi-?thread|race condition|deadlock|migration|design pattern|trade-?off)\b`)

var simpleKeywords = regexp.MustCompile(`(?i)\b(what is|what'?s|define|meaning of|how do i spell|translate|convert \w+ to \w+)\b`)

var refusalPhrases = regexp.MustCompile(`(?i)\b(i can'?t|i'?m unable|i cannot|as an ai|i'?m not able to)\b`)

var codeFencePattern = regexp.MustCompile("```")

const simplePromptMaxLen = 200

// Heuristic implements Classifier with no upstream LLM call: ordered regex
// category rules plus a weighted complexity formula over the message list.
type Heuristic struct{}

// NewHeuristic returns a ready-to-use heuristic classifier.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Classify never fails; it is the fallback every other classification path
// degrades to. It does no I/O, so ctx is accepted only to satisfy Classifier.
func (h *Heuristic) Classify(_ context.Context, messages []providers.Message) (Result, error) {
	lastUser := lastUserMessage(messages)
	fullText := allText(messages)

	category := detectCategory(lastUser)
	if category == CategoryOther && len(lastUser) < simplePromptMaxLen && !codeFencePattern.MatchString(lastUser) {
		category = CategorySimpleQA
	}

	complexity := scoreComplexity(messages, lastUser, fullText)

	return Result{Category: category, Complexity: complexity}, nil
}

func detectCategory(lastUser string) Category {
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(lastUser) {
			return rule.category
		}
	}
	return CategoryOther
}

func scoreComplexity(messages []providers.Message, lastUser, fullText string) int {
	score := 10.0

	score += clampf(float64(len(lastUser))/4/200, 0, 15)

	codeBlocks := strings.Count(fullText, "```") / 2
	score += clampf(float64(codeBlocks)*3, 0, 15)

	score += float64(len(complexKeywords.FindAllString(fullText, -1))) * 8
	score -= float64(len(simpleKeywords.FindAllString(lastUser, -1))) * 8

	switch {
	case len(lastUser) < 50:
		score -= 15
	case len(lastUser) < 150:
		score -= 5
	}

	score += clampf(float64(countUserTurns(messages)), 0, 5)

	if sys := systemPrompt(messages); len(sys) > 200 && !looksToolDefinitionHeavy(sys) {
		score += 5
	}

	return int(clampf(score, 0, 100))
}

func lastUserMessage(messages []providers.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == providers.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func allText(messages []providers.Message) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func countUserTurns(messages []providers.Message) int {
	n := 0
	for _, m := range messages {
		if m.Role == providers.RoleUser {
			n++
		}
	}
	return n
}

func systemPrompt(messages []providers.Message) string {
	for _, m := range messages {
		if m.Role == providers.RoleSystem {
			return m.Content
		}
	}
	return ""
}

// looksToolDefinitionHeavy is a rough signal that a long system prompt is
// mostly tool/function schema boilerplate rather than task-specific
// instruction, which shouldn't count toward complexity.
func looksToolDefinitionHeavy(sys string) bool {
	lower := strings.ToLower(sys)
	hits := strings.Count(lower, "\"parameters\"") + strings.Count(lower, "\"type\": \"object\"") + strings.Count(lower, "\"function\"")
	return hits >= 3
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
