package router

import (
	"strings"

	"github.com/relayhub/gateway/pkg/store"
)

// claudeAliases maps a short Claude alias to the model id it resolves to.
// "Explicit Claude alias" in the router's resolution priority covers both
// these short names and the full model id itself (isClaudeModelID below).
var claudeAliases = map[string]string{
	"opus":   "claude-3-opus-20240229",
	"sonnet": "claude-3-5-sonnet-20241022",
	"haiku":  "claude-3-5-haiku-20241022",
}

// resolveClaudeAlias returns the model id a requested name resolves to if
// it is a Claude alias or a full Claude model id, and whether it matched.
func resolveClaudeAlias(requested string) (string, bool) {
	if modelID, ok := claudeAliases[strings.ToLower(requested)]; ok {
		return modelID, true
	}
	if isClaudeModelID(requested) {
		return requested, true
	}
	return "", false
}

func isClaudeModelID(modelID string) bool {
	return strings.HasPrefix(modelID, "claude-")
}

// IsHaikuModel reports whether modelID is the haiku alias's model id, for
// the pipeline's agentic-client upgrade check.
func IsHaikuModel(modelID string) bool {
	return modelID == claudeAliases["haiku"]
}

// SonnetModelID returns the model id the sonnet alias resolves to.
func SonnetModelID() string {
	return claudeAliases["sonnet"]
}

// DowngradeClaudeModelID maps a Claude model id to the next cheaper tier's
// model id (opus->sonnet, sonnet->haiku), for the pipeline's budget-driven
// downgrade. Anything else, including haiku itself, passes through
// unchanged: haiku has nowhere cheaper to go, and non-Claude models aren't
// covered by this hard-coded mapping.
func DowngradeClaudeModelID(modelID string) string {
	switch modelID {
	case claudeAliases["opus"]:
		return claudeAliases["sonnet"]
	case claudeAliases["sonnet"]:
		return claudeAliases["haiku"]
	default:
		return modelID
	}
}

// legacyModelTiers maps older, pre-tier model names straight to the tier
// they should route into, per the router's "known legacy name" step.
var legacyModelTiers = map[string]store.ModelTier{
	"gpt-3.5-turbo": store.TierEconomy,
	"gpt-4o-mini":   store.TierEconomy,
	"gpt-4":         store.TierStandard,
	"gpt-4-turbo":   store.TierStandard,
	"gpt-4o":        store.TierStandard,
	"gpt-4.1":       store.TierPremium,
	"claude-2":      store.TierStandard,
	"claude-2.1":    store.TierStandard,
}

func resolveLegacyTier(requested string) (store.ModelTier, bool) {
	tier, ok := legacyModelTiers[strings.ToLower(requested)]
	return tier, ok
}

func isTierName(name string) (store.ModelTier, bool) {
	switch store.ModelTier(strings.ToLower(name)) {
	case store.TierEconomy:
		return store.TierEconomy, true
	case store.TierStandard:
		return store.TierStandard, true
	case store.TierPremium:
		return store.TierPremium, true
	default:
		return "", false
	}
}

// tierForComplexity derives a tier from a classifier complexity score, per
// the router's "auto or unknown" step.
func tierForComplexity(complexity int) store.ModelTier {
	switch {
	case complexity <= 25:
		return store.TierEconomy
	case complexity <= 60:
		return store.TierStandard
	default:
		return store.TierPremium
	}
}
