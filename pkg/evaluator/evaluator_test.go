package evaluator

import (
	"testing"

	"github.com/relayhub/gateway/pkg/classifier"
)

func TestEvaluate_CLIFailure_ShortCircuitsToZero(t *testing.T) {
	r := Evaluate(Input{Text: "a perfectly good answer", CLISuccess: false, Complexity: 50})
	if r.IsSuccess || r.HeuristicScore != 0 {
		t.Errorf("got %+v, want score 0 and not success", r)
	}
}

func TestEvaluate_EmptyText_Penalized(t *testing.T) {
	r := Evaluate(Input{Text: "", CLISuccess: true, Complexity: 10})
	if r.HeuristicScore != 40 {
		t.Errorf("got score %d, want 40 (70 - 30)", r.HeuristicScore)
	}
}

func TestEvaluate_ShortAndComplex_Penalized(t *testing.T) {
	r := Evaluate(Input{Text: "nope", CLISuccess: true, Complexity: 30})
	// 70 - 20 (short+complex) = 50; len(4) is not > complexity*5 so no bonus.
	if r.HeuristicScore != 50 {
		t.Errorf("got score %d, want 50", r.HeuristicScore)
	}
}

func TestEvaluate_CodeCategoryWithFence_Bonus(t *testing.T) {
	text := "Here:\n```go\nfunc main() {}\n```\n"
	r := Evaluate(Input{Text: text, CLISuccess: true, Category: classifier.CategoryCodeGen, Complexity: 5})
	if r.HeuristicScore < 70 {
		t.Errorf("expected the code-fence bonus to push the score above base, got %d", r.HeuristicScore)
	}
}

func TestEvaluate_LongRelativeToComplexity_Bonus(t *testing.T) {
	longText := ""
	for i := 0; i < 100; i++ {
		longText += "word "
	}
	r := Evaluate(Input{Text: longText, CLISuccess: true, Complexity: 5})
	if r.HeuristicScore != 80 {
		t.Errorf("got score %d, want 80 (70 + 10 length bonus)", r.HeuristicScore)
	}
}

func TestEvaluate_RefusalPhrase_Penalized(t *testing.T) {
	r := Evaluate(Input{Text: "I can't help with that request.", CLISuccess: true, Complexity: 5})
	if r.HeuristicScore != 55 {
		t.Errorf("got score %d, want 55 (70 - 15)", r.HeuristicScore)
	}
}

func TestEvaluate_ScoreClampedToZeroAndHundred(t *testing.T) {
	r := Evaluate(Input{Text: "", CLISuccess: true, Complexity: 90})
	// 70 - 30 (empty) - 20 (short+complex) = 20, never below zero in this case
	// but verifies clamp doesn't panic or go negative.
	if r.HeuristicScore < 0 {
		t.Errorf("score must never be negative, got %d", r.HeuristicScore)
	}
}

func TestEvaluate_IsSuccess_RequiresScoreAtLeastForty(t *testing.T) {
	r := Evaluate(Input{Text: "", CLISuccess: true, Complexity: 90})
	if r.IsSuccess {
		t.Errorf("expected low score to fail the isSuccess threshold, got %+v", r)
	}
}

func TestEvaluate_IsSuccess_LowUserRatingOverridesGoodScore(t *testing.T) {
	r := Evaluate(Input{Text: "a fine, complete answer with plenty of detail", CLISuccess: true, Complexity: 5, UserRating: 2})
	if r.IsSuccess {
		t.Error("expected a user rating below 3 to veto success even with a good heuristic score")
	}
}

func TestEvaluate_IsSuccess_NoUserRatingDoesNotVeto(t *testing.T) {
	r := Evaluate(Input{Text: "a fine, complete answer with plenty of detail", CLISuccess: true, Complexity: 5})
	if !r.IsSuccess {
		t.Errorf("expected success with no user rating present, got %+v", r)
	}
}

func TestEvaluate_IsSuccess_HighUserRatingConfirms(t *testing.T) {
	r := Evaluate(Input{Text: "a fine, complete answer with plenty of detail", CLISuccess: true, Complexity: 5, UserRating: 5})
	if !r.IsSuccess {
		t.Errorf("expected success with a high user rating, got %+v", r)
	}
}
