package compressor

import (
	"strings"
	"testing"

	"github.com/relayhub/gateway/pkg/providers"
)

func TestCodeCompress_StripsTrailingWhitespaceAndCollapsesBlankRuns(t *testing.T) {
	messages := []providers.Message{
		{Role: providers.RoleAssistant, Content: "```go\nfunc f() {   \n\n\n\n\n\treturn\n}\n```"},
	}

	out := codeCompress(messages)

	if strings.Contains(out[0].Content, "   \n") {
		t.Errorf("expected trailing whitespace stripped, got %q", out[0].Content)
	}
	if strings.Contains(out[0].Content, "\n\n\n\n") {
		t.Errorf("expected long blank-line runs collapsed, got %q", out[0].Content)
	}
}

func TestCodeCompress_ReplacesIdenticalLaterBlock(t *testing.T) {
	block := "```go\nfunc add(a, b int) int {\n\treturn a + b\n}\n```"
	messages := []providers.Message{
		{Role: providers.RoleAssistant, Content: block},
		{Role: providers.RoleUser, Content: "thanks"},
		{Role: providers.RoleAssistant, Content: block},
	}

	out := codeCompress(messages)

	if !strings.Contains(out[0].Content, "func add") {
		t.Errorf("expected first block kept, got %q", out[0].Content)
	}
	if strings.Contains(out[2].Content, "func add") {
		t.Errorf("expected second identical block replaced, got %q", out[2].Content)
	}
	if !strings.Contains(out[2].Content, "identical to code block #1 above") {
		t.Errorf("expected a back-reference note, got %q", out[2].Content)
	}
}

func TestCodeCompress_DifferentBlocksBothKept(t *testing.T) {
	messages := []providers.Message{
		{Role: providers.RoleAssistant, Content: "```go\nfunc a() {}\n```"},
		{Role: providers.RoleAssistant, Content: "```go\nfunc b() {}\n```"},
	}

	out := codeCompress(messages)

	if !strings.Contains(out[0].Content, "func a") || !strings.Contains(out[1].Content, "func b") {
		t.Errorf("expected both distinct blocks kept, got %q / %q", out[0].Content, out[1].Content)
	}
}
