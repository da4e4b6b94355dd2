package compressor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/relayhub/gateway/pkg/providers"
	"github.com/relayhub/gateway/pkg/store"
)

var langFencedBlockPattern = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n(.*?)```")
var blankLineRun = regexp.MustCompile(`\n{4,}`)

// codeCompress cleans up whitespace inside each fenced code block (trailing
// spaces stripped, runs of 3+ blank lines collapsed to 2) and, across the
// whole conversation, replaces a block whose cleaned content exactly
// matches an earlier one with a short back-reference. This runs after
// structuralDedup, so it mainly catches near-duplicates that differ only
// in the whitespace this stage itself normalizes away.
func codeCompress(messages []providers.Message) []providers.Message {
	out := make([]providers.Message, len(messages))
	copy(out, messages)

	seen := make(map[string]int)
	blockNum := 0

	for i, m := range out {
		out[i].Content = langFencedBlockPattern.ReplaceAllStringFunc(m.Content, func(match string) string {
			groups := langFencedBlockPattern.FindStringSubmatch(match)
			if groups == nil {
				return match
			}
			lang, body := groups[1], groups[2]
			cleaned := cleanCodeBody(body)
			blockNum++

			key := store.HashString(cleaned)
			if priorBlock, ok := seen[key]; ok {
				return fmt.Sprintf("[identical to code block #%d above]", priorBlock)
			}
			seen[key] = blockNum
			return "```" + lang + "\n" + cleaned + "```"
		})
	}

	return out
}

func cleanCodeBody(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	body = strings.Join(lines, "\n")
	return blankLineRun.ReplaceAllString(body, "\n\n\n")
}
