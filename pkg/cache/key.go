package cache

import (
	"encoding/json"

	"github.com/relayhub/gateway/pkg/providers"
	"github.com/relayhub/gateway/pkg/store"
)

// ResponseKey computes the response-cache key: the SHA-256 of
// "provider:model || system-prompt || JSON(messages)".
func ResponseKey(providerID, modelID, systemPrompt string, messages []providers.Message) string {
	encoded, _ := json.Marshal(messages)
	return store.HashString(providerID + ":" + modelID + "||" + systemPrompt + "||" + string(encoded))
}

// DedupKey computes the dedup fingerprint: the hash of the last user
// message text alone.
func DedupKey(lastUserMessage string) string {
	return store.HashString(lastUserMessage)
}
