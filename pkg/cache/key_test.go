package cache

import (
	"testing"

	"github.com/relayhub/gateway/pkg/providers"
)

func TestResponseKey_DeterministicAndSensitiveToEachComponent(t *testing.T) {
	messages := []providers.Message{{Role: providers.RoleUser, Content: "hi"}}

	base := ResponseKey("openai", "gpt-4o", "be helpful", messages)
	again := ResponseKey("openai", "gpt-4o", "be helpful", messages)
	if base != again {
		t.Error("expected the same inputs to produce the same key")
	}

	if ResponseKey("anthropic", "gpt-4o", "be helpful", messages) == base {
		t.Error("expected a different provider to change the key")
	}
	if ResponseKey("openai", "gpt-4o-mini", "be helpful", messages) == base {
		t.Error("expected a different model to change the key")
	}
	if ResponseKey("openai", "gpt-4o", "be terse", messages) == base {
		t.Error("expected a different system prompt to change the key")
	}
	other := []providers.Message{{Role: providers.RoleUser, Content: "bye"}}
	if ResponseKey("openai", "gpt-4o", "be helpful", other) == base {
		t.Error("expected different messages to change the key")
	}
}

func TestDedupKey_DeterministicAndSensitiveToText(t *testing.T) {
	a := DedupKey("fix this bug")
	b := DedupKey("fix this bug")
	if a != b {
		t.Error("expected the same text to produce the same key")
	}
	if DedupKey("fix that bug") == a {
		t.Error("expected different text to produce a different key")
	}
}
