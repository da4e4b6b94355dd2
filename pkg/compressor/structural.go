package compressor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/relayhub/gateway/pkg/providers"
	"github.com/relayhub/gateway/pkg/store"
)

var fencedBlockPattern = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\n(.*?)```")

const hashPrefixLen = 8

// structuralDedup hashes fenced-code and paired-XML-ish blocks by
// (kind, content) across the whole message list. The first occurrence of a
// block is left in place; later duplicates are replaced with
// "[ref:block:<hash-prefix>]" and the message that lost blocks gets a
// one-line note prepended.
func structuralDedup(messages []providers.Message) []providers.Message {
	out := make([]providers.Message, len(messages))
	copy(out, messages)

	seen := make(map[string]bool)

	for i, m := range out {
		newContent, replaced := dedupBlocksInText(m.Content, seen)
		if replaced > 0 {
			note := fmt.Sprintf("[%d duplicate block(s) replaced with references]\n", replaced)
			newContent = note + newContent
		}
		out[i].Content = newContent
	}

	return out
}

// dedupBlocksInText scans text for fenced code blocks and simple paired
// XML-ish tags, replacing every occurrence after the first global sighting
// of identical (kind, content) with a reference marker.
func dedupBlocksInText(text string, seen map[string]bool) (string, int) {
	replaced := 0

	text = replaceBlocks(text, fencedBlockPattern, "code", seen, &replaced, func(m []string) string {
		return "```\n" + m[1] + "```"
	})
	text = replaceTagBlocks(text, seen, &replaced)

	return text, replaced
}

func replaceBlocks(text string, pattern *regexp.Regexp, kind string, seen map[string]bool, replaced *int, rebuild func([]string) string) string {
	return pattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := pattern.FindStringSubmatch(match)
		if groups == nil {
			return match
		}
		content := groups[1]
		key := kind + ":" + store.HashString(content)
		if seen[key] {
			*replaced++
			return fmt.Sprintf("[ref:block:%s]", key[len(key)-hashPrefixLen:])
		}
		seen[key] = true
		return match
	})
}

// replaceTagBlocks handles paired tags like <thinking>...</thinking> or
// <context>...</context>, matched non-greedily and non-nested (the same
// simplifying assumption the subprocess tool-call detector makes for
// <tool_call> tags).
func replaceTagBlocks(text string, seen map[string]bool, replaced *int) string {
	var out strings.Builder
	rest := text

	for {
		loc := findPairedTag(rest)
		if loc == nil {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:loc.start])

		key := "tag:" + loc.tag + ":" + store.HashString(loc.content)
		if seen[key] {
			*replaced++
			out.WriteString(fmt.Sprintf("[ref:block:%s]", key[len(key)-hashPrefixLen:]))
		} else {
			seen[key] = true
			out.WriteString(rest[loc.start:loc.end])
		}

		rest = rest[loc.end:]
	}

	return out.String()
}

type tagMatch struct {
	tag        string
	content    string
	start, end int
}

var openTagPattern = regexp.MustCompile(`<([a-zA-Z][\w-]*)>`)

// findPairedTag finds the first <tag>...</tag> pair in text using an
// explicit open/close search rather than a backreference (Go's regexp
// package doesn't support them).
func findPairedTag(text string) *tagMatch {
	loc := openTagPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}
	tag := text[loc[2]:loc[3]]
	closeTag := "</" + tag + ">"
	closeIdx := strings.Index(text[loc[1]:], closeTag)
	if closeIdx == -1 {
		return nil
	}
	contentStart := loc[1]
	contentEnd := contentStart + closeIdx
	end := contentEnd + len(closeTag)

	return &tagMatch{
		tag:     tag,
		content: text[contentStart:contentEnd],
		start:   loc[0],
		end:     end,
	}
}
