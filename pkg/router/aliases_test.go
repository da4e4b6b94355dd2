package router

import (
	"testing"

	"github.com/relayhub/gateway/pkg/store"
)

func TestResolveClaudeAlias(t *testing.T) {
	cases := []struct {
		in        string
		wantModel string
		wantOK    bool
	}{
		{"opus", "claude-3-opus-20240229", true},
		{"SONNET", "claude-3-5-sonnet-20241022", true},
		{"claude-3-5-haiku-20241022", "claude-3-5-haiku-20241022", true},
		{"gpt-4o", "", false},
	}
	for _, c := range cases {
		got, ok := resolveClaudeAlias(c.in)
		if ok != c.wantOK || got != c.wantModel {
			t.Errorf("resolveClaudeAlias(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.wantModel, c.wantOK)
		}
	}
}

func TestResolveLegacyTier(t *testing.T) {
	tier, ok := resolveLegacyTier("gpt-4")
	if !ok || tier != store.TierStandard {
		t.Errorf("resolveLegacyTier(gpt-4) = (%v, %v), want (standard, true)", tier, ok)
	}
	if _, ok := resolveLegacyTier("not-a-legacy-name"); ok {
		t.Errorf("expected no match for an unknown legacy name")
	}
}

func TestIsTierName(t *testing.T) {
	if tier, ok := isTierName("Premium"); !ok || tier != store.TierPremium {
		t.Errorf("isTierName(Premium) = (%v, %v)", tier, ok)
	}
	if _, ok := isTierName("gpt-4"); ok {
		t.Errorf("expected gpt-4 not to be treated as a tier name")
	}
}

func TestIsHaikuModel(t *testing.T) {
	if !IsHaikuModel("claude-3-5-haiku-20241022") {
		t.Error("expected the haiku alias's model id to match")
	}
	if IsHaikuModel("claude-3-5-sonnet-20241022") {
		t.Error("expected the sonnet model id not to match")
	}
}

func TestDowngradeClaudeModelID(t *testing.T) {
	cases := map[string]string{
		"claude-3-opus-20240229":    "claude-3-5-sonnet-20241022",
		"claude-3-5-sonnet-20241022": "claude-3-5-haiku-20241022",
		"claude-3-5-haiku-20241022":  "claude-3-5-haiku-20241022",
		"gpt-4o":                     "gpt-4o",
	}
	for in, want := range cases {
		if got := DowngradeClaudeModelID(in); got != want {
			t.Errorf("DowngradeClaudeModelID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTierForComplexity(t *testing.T) {
	cases := []struct {
		complexity int
		want       store.ModelTier
	}{
		{0, store.TierEconomy},
		{25, store.TierEconomy},
		{26, store.TierStandard},
		{60, store.TierStandard},
		{61, store.TierPremium},
		{100, store.TierPremium},
	}
	for _, c := range cases {
		if got := tierForComplexity(c.complexity); got != c.want {
			t.Errorf("tierForComplexity(%d) = %v, want %v", c.complexity, got, c.want)
		}
	}
}
