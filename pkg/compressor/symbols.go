package compressor

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/relayhub/gateway/pkg/providers"
)

const (
	minSymbolPhraseLen = 20
	minSymbolOccurs    = 3
	maxSymbols         = 10
)

var sentenceSplitter = regexp.MustCompile(`[.!?\n]+`)

// slidingWindowSizes samples a handful of word-window widths between 5 and
// 15 words rather than every width in that range, keeping the scan linear
// in practice for long conversations.
var slidingWindowSizes = []int{5, 8, 12, 15}

// symbolTable finds phrases that repeat at least minSymbolOccurs times
// across the whole conversation, assigns each one a §N symbol (up to
// maxSymbols), leaves the first occurrence of each phrase intact, and
// substitutes the symbol everywhere else. A definitions block listing each
// symbol's phrase is prepended to the first message.
func symbolTable(messages []providers.Message) []providers.Message {
	if len(messages) == 0 {
		return messages
	}

	fullText := joinContents(messages)
	candidates := extractCandidates(fullText)

	type defn struct {
		symbol string
		phrase string
	}
	var defs []defn

	for _, phrase := range candidates {
		if len(defs) >= maxSymbols {
			break
		}
		if strings.Count(fullText, phrase) >= minSymbolOccurs {
			defs = append(defs, defn{symbol: fmt.Sprintf("§%d", len(defs)+1), phrase: phrase})
		}
	}

	if len(defs) == 0 {
		return messages
	}

	out := make([]providers.Message, len(messages))
	copy(out, messages)

	// Substitute longest phrases first so a shorter selected phrase nested
	// inside a longer one doesn't get partially substituted before the
	// longer one is found.
	bySize := make([]defn, len(defs))
	copy(bySize, defs)
	sort.Slice(bySize, func(i, j int) bool { return len(bySize[i].phrase) > len(bySize[j].phrase) })
	for _, d := range bySize {
		substituteAfterFirstOccurrence(out, d.phrase, d.symbol)
	}

	var block strings.Builder
	block.WriteString("[symbol definitions: ")
	for i, d := range defs {
		if i > 0 {
			block.WriteString("; ")
		}
		block.WriteString(d.symbol)
		block.WriteString("=")
		block.WriteString(d.phrase)
	}
	block.WriteString("]\n")

	out[0].Content = block.String() + out[0].Content
	return out
}

func joinContents(messages []providers.Message) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// extractCandidates gathers unique phrases >= minSymbolPhraseLen chars from
// sentence-level segments and from sliding windows of 5-15 words, in
// first-seen order.
func extractCandidates(text string) []string {
	var candidates []string
	seen := make(map[string]bool)

	add := func(phrase string) {
		phrase = strings.TrimSpace(phrase)
		if len(phrase) >= minSymbolPhraseLen && !seen[phrase] {
			seen[phrase] = true
			candidates = append(candidates, phrase)
		}
	}

	for _, seg := range sentenceSplitter.Split(text, -1) {
		add(seg)
	}

	words := strings.Fields(text)
	for _, size := range slidingWindowSizes {
		for i := 0; i+size <= len(words); i++ {
			add(strings.Join(words[i:i+size], " "))
		}
	}

	return candidates
}

// substituteAfterFirstOccurrence keeps the first occurrence of phrase (in
// message order) intact and replaces every later occurrence, including
// later occurrences within the same message, with symbol.
func substituteAfterFirstOccurrence(messages []providers.Message, phrase, symbol string) {
	foundFirst := false
	for i := range messages {
		content := messages[i].Content
		if !foundFirst {
			idx := strings.Index(content, phrase)
			if idx == -1 {
				continue
			}
			head := content[:idx+len(phrase)]
			tail := strings.ReplaceAll(content[idx+len(phrase):], phrase, symbol)
			messages[i].Content = head + tail
			foundFirst = true
			continue
		}
		messages[i].Content = strings.ReplaceAll(content, phrase, symbol)
	}
}
