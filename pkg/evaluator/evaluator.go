package evaluator

import "github.com/relayhub/gateway/pkg/classifier"

// Input carries everything the heuristic score needs from a completed
// request.
type Input struct {
	// Text is the full response text.
	Text string

	// CLISuccess is the provider's own exit/completion success signal.
	CLISuccess bool

	// Category is the classified request category.
	Category classifier.Category

	// Complexity is the classified complexity, 0-100.
	Complexity int

	// UserRating is the rating from /feedback, 0 when none was given.
	UserRating int
}

// Result is the evaluator's verdict.
type Result struct {
	// HeuristicScore is in [0, 100].
	HeuristicScore int

	// IsSuccess is the combined signal the router's historical stats use.
	IsSuccess bool
}

// Evaluate scores in.Text and combines it with the CLI success flag and
// any user rating into a single success verdict (spec §4.10).
func Evaluate(in Input) Result {
	if !in.CLISuccess {
		return Result{HeuristicScore: 0, IsSuccess: false}
	}

	score := 70

	if in.Text == "" {
		score -= 30
	}
	if len(in.Text) < 20 && in.Complexity > 20 {
		score -= 20
	}
	if classifier.IsCodeCategory(in.Category) && classifier.ContainsFencedCode(in.Text) {
		score += 15
	}
	if len(in.Text) > in.Complexity*5 {
		score += 10
	}
	if classifier.ContainsRefusal(in.Text) {
		score -= 15
	}
	score = clamp(score, 0, 100)

	isSuccess := in.CLISuccess && score >= 40 && (in.UserRating == 0 || in.UserRating >= 3)

	return Result{HeuristicScore: score, IsSuccess: isSuccess}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
