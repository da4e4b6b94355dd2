package classifier

import (
	"context"

	"github.com/relayhub/gateway/pkg/providers"
)

// Category is the request's inferred task type, used by the router to pick
// a tier and by the success evaluator to judge response quality.
type Category string

const (
	CategoryCodeGen    Category = "code_gen"
	CategoryCodeReview Category = "code_review"
	CategoryDebug      Category = "debug"
	CategoryRefactor   Category = "refactor"
	CategoryExplain    Category = "explain"
	CategorySimpleQA   Category = "simple_qa"
	CategoryOther      Category = "other"
)

// Result is the outcome of classifying a request.
type Result struct {
	Category   Category
	Complexity int // 0-100

	// LLMUsage and LLMCost are populated only when the LLM classifier ran
	// (as opposed to falling back to the heuristic), so the pipeline can
	// record the classifier's own spend separately from the completion.
	LLMUsage *providers.TokenUsage
	LLMCost  float64
}

// Classifier assigns a category and complexity score to a request.
type Classifier interface {
	Classify(ctx context.Context, messages []providers.Message) (Result, error)
}

// isCodeCategory reports whether category warrants the evaluator's
// fenced-code-block bonus (spec §4.10).
func (c Category) isCodeCategory() bool {
	switch c {
	case CategoryCodeGen, CategoryCodeReview, CategoryDebug, CategoryRefactor:
		return true
	default:
		return false
	}
}

// IsCodeCategory reports whether category warrants the evaluator's
// fenced-code-block bonus (spec §4.10).
func IsCodeCategory(c Category) bool {
	return c.isCodeCategory()
}

// ContainsRefusal reports whether text contains a refusal phrase, for the
// evaluator's heuristic-score penalty.
func ContainsRefusal(text string) bool {
	return refusalPhrases.MatchString(text)
}

// ContainsFencedCode reports whether text contains a Markdown code fence,
// for the evaluator's heuristic-score bonus.
func ContainsFencedCode(text string) bool {
	return codeFencePattern.MatchString(text)
}
