package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/relayhub/gateway/pkg/store"
)

var feedbackPattern = regexp.MustCompile(`(?i)^/feedback\s+(good|bad|[1-5])(?:\s+(\S+))?\s*$`)

var feedbackWords = map[string]int{"good": 5, "bad": 1}

// parseFeedback matches "/feedback (good|bad|1-5) [task-id-prefix]" against
// the last user message. ok is false if the message isn't a feedback
// command at all, in which case the pipeline falls through to normal
// processing (spec §4.1 stage 2).
func parseFeedback(lastUser string) (rating int, idPrefix string, ok bool) {
	m := feedbackPattern.FindStringSubmatch(strings.TrimSpace(lastUser))
	if m == nil {
		return 0, "", false
	}
	if r, isWord := feedbackWords[strings.ToLower(m[1])]; isWord {
		return r, m[2], true
	}
	r, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return r, m[2], true
}

// handleFeedback resolves the target task (by id prefix or most recent),
// records the rating, and returns the synthetic confirmation text. It
// never calls out to a provider.
func (p *Pipeline) handleFeedback(ctx context.Context, rating int, idPrefix string) (string, error) {
	var task *store.Task
	var err error
	if idPrefix != "" {
		task, err = p.Store.FindTaskByIDPrefix(ctx, idPrefix)
	} else {
		task, err = p.Store.MostRecentTask(ctx)
	}
	if err != nil {
		return "", errStatus(404, "task_not_found", "no matching task found for feedback")
	}

	if err := p.Store.UpdateTaskRating(ctx, task.ID, rating); err != nil {
		return "", fmt.Errorf("recording feedback: %w", err)
	}

	sentiment := "negative"
	if rating >= 3 {
		sentiment = "positive"
	}
	return fmt.Sprintf("Feedback recorded: %s (%d/5) for Task %s", sentiment, rating, task.ID), nil
}
