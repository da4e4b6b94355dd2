package compressor

import (
	"regexp"
	"strings"

	"github.com/relayhub/gateway/pkg/providers"
)

var multiBlankLines = regexp.MustCompile(`\n{3,}`)
var repeatedSpaces = regexp.MustCompile(`[ \t]{2,}`)
var bulletMarkers = regexp.MustCompile(`(?m)^[ \t]*[*•‣◦][ \t]+`)

// normalize collapses repeated whitespace and blank lines and unifies
// bullet markers to "-". It never changes wording or message order.
func normalize(messages []providers.Message) []providers.Message {
	out := make([]providers.Message, len(messages))
	for i, m := range messages {
		out[i] = m
		out[i].Content = normalizeText(m.Content)
	}
	return out
}

// normalizeText collapses whitespace line by line, skipping the interior of
// fenced code blocks so code indentation/alignment survives untouched.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.HasPrefix(strings.TrimSpace(trimmed), "```") {
			inFence = !inFence
			lines[i] = trimmed
			continue
		}
		if inFence {
			lines[i] = trimmed
			continue
		}
		lines[i] = repeatedSpaces.ReplaceAllString(trimmed, " ")
	}
	text = strings.Join(lines, "\n")

	text = bulletMarkers.ReplaceAllString(text, "- ")
	text = multiBlankLines.ReplaceAllString(text, "\n\n")

	return text
}
