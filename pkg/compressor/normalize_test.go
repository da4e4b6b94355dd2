package compressor

import (
	"testing"

	"github.com/relayhub/gateway/pkg/providers"
)

func TestNormalize_CollapsesWhitespaceAndBullets(t *testing.T) {
	messages := []providers.Message{
		{Role: providers.RoleUser, Content: "first line   \n\n\n\n\nsecond line   \n* bullet one\n• bullet two"},
	}

	out := normalize(messages)

	want := "first line\n\nsecond line\n- bullet one\n- bullet two"
	if out[0].Content != want {
		t.Errorf("normalize() = %q, want %q", out[0].Content, want)
	}
}

func TestNormalize_PreservesCodeBlockIndentation(t *testing.T) {
	messages := []providers.Message{
		{Role: providers.RoleUser, Content: "```go\nfunc f() {\n    x :=   1\n}\n```"},
	}

	out := normalize(messages)

	if out[0].Content != messages[0].Content {
		t.Errorf("expected code block content untouched, got %q", out[0].Content)
	}
}

func TestNormalize_NeverChangesMessageCountOrOrder(t *testing.T) {
	messages := []providers.Message{
		{Role: providers.RoleSystem, Content: "be helpful"},
		{Role: providers.RoleUser, Content: "hi"},
		{Role: providers.RoleAssistant, Content: "hello"},
	}

	out := normalize(messages)

	if len(out) != len(messages) {
		t.Fatalf("expected %d messages, got %d", len(messages), len(out))
	}
	for i := range messages {
		if out[i].Role != messages[i].Role {
			t.Errorf("message %d role changed: %s -> %s", i, messages[i].Role, out[i].Role)
		}
	}
}
