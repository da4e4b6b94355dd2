package compressor

import (
	"strings"
	"testing"

	"github.com/relayhub/gateway/pkg/providers"
)

func TestSymbolTable_RepeatedLongPhraseGetsSymbol(t *testing.T) {
	messages := []providers.Message{
		{Role: providers.RoleUser, Content: "Intro: the quick brown fox jumps over the lazy dog today is nice."},
		{Role: providers.RoleUser, Content: "Again: the quick brown fox jumps over the lazy dog today appears."},
		{Role: providers.RoleUser, Content: "Finally: the quick brown fox jumps over the lazy dog today ends."},
	}

	out := symbolTable(messages)

	if !strings.Contains(out[0].Content, "[symbol definitions:") {
		t.Fatalf("expected a definitions block prepended to the first message, got %q", out[0].Content)
	}
	if !strings.Contains(out[0].Content, "quick brown fox") {
		t.Errorf("expected the first occurrence kept intact, got %q", out[0].Content)
	}
	if !strings.Contains(out[1].Content, "§") && !strings.Contains(out[2].Content, "§") {
		t.Errorf("expected later occurrences substituted with a symbol, got %q / %q", out[1].Content, out[2].Content)
	}
}

func TestSymbolTable_NoRepeatsLeavesMessagesUnchanged(t *testing.T) {
	messages := []providers.Message{
		{Role: providers.RoleUser, Content: "hi there"},
		{Role: providers.RoleAssistant, Content: "hello, how can I help?"},
	}

	out := symbolTable(messages)

	for i := range messages {
		if out[i].Content != messages[i].Content {
			t.Errorf("message %d changed with no repeated phrases present: %q -> %q", i, messages[i].Content, out[i].Content)
		}
	}
}

func TestSymbolTable_RespectsMaxSymbolsCap(t *testing.T) {
	var messages []providers.Message
	for i := 0; i < minSymbolOccurs; i++ {
		var b strings.Builder
		for s := 0; s < maxSymbols+5; s++ {
			b.WriteString("this is a distinctly long repeated phrase number ")
			b.WriteString(strings.Repeat("x", s+1))
			b.WriteString(". ")
		}
		messages = append(messages, providers.Message{Role: providers.RoleUser, Content: b.String()})
	}

	out := symbolTable(messages)

	count := strings.Count(out[0].Content[:strings.Index(out[0].Content, "]\n")+1], "§")
	if count > maxSymbols {
		t.Errorf("expected at most %d symbols defined, got %d", maxSymbols, count)
	}
}
