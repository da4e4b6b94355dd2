package router

import (
	"context"
	"testing"
	"time"

	"github.com/relayhub/gateway/pkg/store"
	"github.com/relayhub/gateway/pkg/store/storage"
)

func seedCatalog(t *testing.T, s store.Store, providers []*store.ProviderConfig, models []*store.ModelConfig) {
	t.Helper()
	ctx := context.Background()
	for _, p := range providers {
		if err := s.UpsertProvider(ctx, p); err != nil {
			t.Fatalf("UpsertProvider: %v", err)
		}
	}
	for _, m := range models {
		if err := s.UpsertModel(ctx, m); err != nil {
			t.Fatalf("UpsertModel: %v", err)
		}
	}
}

func TestResolve_ExplicitPin(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedCatalog(t, s,
		[]*store.ProviderConfig{{ID: "openai", Enabled: true}},
		[]*store.ModelConfig{{ProviderID: "openai", ModelID: "gpt-4o", Tier: store.TierStandard, Enabled: true, DisplayName: "GPT-4o"}},
	)
	r := New(s, Config{})

	d, err := r.Resolve(context.Background(), Request{RequestedModel: "openai:gpt-4o"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.ProviderID != "openai" || d.ModelID != "gpt-4o" {
		t.Errorf("got %+v", d)
	}
	if d.Reason != "explicit provider:model pin" {
		t.Errorf("unexpected reason %q", d.Reason)
	}
}

func TestResolve_ExplicitPin_NotAvailable(t *testing.T) {
	s := storage.NewMemoryStorage()
	r := New(s, Config{})

	_, err := r.Resolve(context.Background(), Request{RequestedModel: "openai:gpt-4o"})
	if err == nil {
		t.Fatal("expected an error for an unavailable pin")
	}
}

func TestResolve_ClaudeAlias_PrefersAPIProvider(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedCatalog(t, s,
		[]*store.ProviderConfig{{ID: "claude-api", Enabled: true}, {ID: "claude-cli", Enabled: true}},
		[]*store.ModelConfig{
			{ProviderID: "claude-api", ModelID: "claude-3-5-sonnet-20241022", Tier: store.TierStandard, Enabled: true},
			{ProviderID: "claude-cli", ModelID: "claude-3-5-sonnet-20241022", Tier: store.TierStandard, Enabled: true},
		},
	)
	r := New(s, Config{})

	d, err := r.Resolve(context.Background(), Request{RequestedModel: "sonnet"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.ProviderID != "claude-api" {
		t.Errorf("expected claude-api preferred, got %q", d.ProviderID)
	}
	if d.ModelID != "claude-3-5-sonnet-20241022" {
		t.Errorf("unexpected model id %q", d.ModelID)
	}
}

func TestResolve_ClaudeAlias_FallsBackToCLI(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedCatalog(t, s,
		[]*store.ProviderConfig{{ID: "claude-cli", Enabled: true}},
		nil,
	)
	r := New(s, Config{})

	d, err := r.Resolve(context.Background(), Request{RequestedModel: "opus"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.ProviderID != "claude-cli" {
		t.Errorf("expected fallback to claude-cli, got %q", d.ProviderID)
	}
}

func TestResolve_DirectCatalogMatch(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedCatalog(t, s,
		[]*store.ProviderConfig{{ID: "gemini", Enabled: true}},
		[]*store.ModelConfig{{ProviderID: "gemini", ModelID: "gemini-1.5-pro", Tier: store.TierPremium, Enabled: true}},
	)
	r := New(s, Config{})

	d, err := r.Resolve(context.Background(), Request{RequestedModel: "gemini-1.5-pro"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.ProviderID != "gemini" || d.Reason != "direct catalog match" {
		t.Errorf("got %+v", d)
	}
}

func TestResolve_TierNameAndLegacyNameBothReachTierSelection(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedCatalog(t, s,
		[]*store.ProviderConfig{{ID: "openai", Enabled: true}},
		[]*store.ModelConfig{{ProviderID: "openai", ModelID: "gpt-4o-mini", Tier: store.TierEconomy, Enabled: true, InputCostPerM: 0.15}},
	)
	r := New(s, Config{})

	for _, requested := range []string{"economy", "gpt-3.5-turbo"} {
		d, err := r.Resolve(context.Background(), Request{RequestedModel: requested})
		if err != nil {
			t.Fatalf("Resolve(%q): %v", requested, err)
		}
		if d.ModelID != "gpt-4o-mini" {
			t.Errorf("Resolve(%q) = %+v, want gpt-4o-mini", requested, d)
		}
	}
}

func TestResolve_AutoUsesComplexityDerivedTier(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedCatalog(t, s,
		[]*store.ProviderConfig{{ID: "openai", Enabled: true}},
		[]*store.ModelConfig{{ProviderID: "openai", ModelID: "gpt-4.1", Tier: store.TierPremium, Enabled: true}},
	)
	r := New(s, Config{})

	d, err := r.Resolve(context.Background(), Request{RequestedModel: "auto", Complexity: 90})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.ModelID != "gpt-4.1" {
		t.Errorf("expected premium-tier model selected for complexity 90, got %+v", d)
	}
}

func TestResolve_TierEscalationWhenTierEmpty(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedCatalog(t, s,
		[]*store.ProviderConfig{{ID: "openai", Enabled: true}},
		[]*store.ModelConfig{{ProviderID: "openai", ModelID: "gpt-4o", Tier: store.TierStandard, Enabled: true}},
	)
	r := New(s, Config{})

	// Nothing enabled in economy, should escalate to standard.
	d, err := r.Resolve(context.Background(), Request{RequestedModel: "economy"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.ModelID != "gpt-4o" {
		t.Errorf("expected escalation to standard tier, got %+v", d)
	}
}

func TestResolve_HardDefaultWhenNoModelsAnywhere(t *testing.T) {
	s := storage.NewMemoryStorage()
	r := New(s, Config{})

	d, err := r.Resolve(context.Background(), Request{RequestedModel: "auto", Complexity: 10})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.ProviderID != "claude-cli" {
		t.Errorf("expected hard default to claude-cli, got %+v", d)
	}
}

func TestSelectInTier_SkipsLowSuccessRateAndRecentFailures(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedCatalog(t, s,
		[]*store.ProviderConfig{{ID: "p1", Enabled: true}, {ID: "p2", Enabled: true}},
		[]*store.ModelConfig{
			{ProviderID: "p1", ModelID: "cheap-bad", Tier: store.TierEconomy, Enabled: true, InputCostPerM: 0.1},
			{ProviderID: "p2", ModelID: "pricier-good", Tier: store.TierEconomy, Enabled: true, InputCostPerM: 0.5},
		},
	)
	ctx := context.Background()
	now := time.Now()
	// cheap-bad: confident, low success rate.
	for i := 0; i < 5; i++ {
		ok := i < 2 // 2/5 = 0.4 success
		insertTask(t, s, "p1", "cheap-bad", "debug", ok, now)
	}
	// pricier-good: confident, high success rate.
	for i := 0; i < 5; i++ {
		insertTask(t, s, "p2", "pricier-good", "debug", true, now)
	}

	r := New(s, Config{})
	r.cfg.ExplorationProbability = 0 // force exploitation path deterministically
	d, err := r.Resolve(ctx, Request{RequestedModel: "economy", Category: "debug"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.ProviderID != "p2" {
		t.Errorf("expected the cheap-but-unreliable model skipped in favor of p2, got %+v", d)
	}
}

func TestSelectInTier_FallsBackToCheapestWhenNoneConfident(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedCatalog(t, s,
		[]*store.ProviderConfig{{ID: "p1", Enabled: true}, {ID: "p2", Enabled: true}},
		[]*store.ModelConfig{
			{ProviderID: "p1", ModelID: "a", Tier: store.TierEconomy, Enabled: true, InputCostPerM: 0.2},
			{ProviderID: "p2", ModelID: "b", Tier: store.TierEconomy, Enabled: true, InputCostPerM: 0.1},
		},
	)
	r := New(s, Config{})
	r.cfg.ExplorationProbability = 0 // force exploitation/fallback path deterministically

	d, err := r.Resolve(context.Background(), Request{RequestedModel: "economy", Category: "debug"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.ModelID != "b" || d.ProviderID != "p2" {
		t.Errorf("expected cheapest model b/p2 as fallback, got %+v", d)
	}
}

func TestSelectInTier_ExplorationPicksCheapestUnconfident(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedCatalog(t, s,
		[]*store.ProviderConfig{{ID: "p1", Enabled: true}},
		[]*store.ModelConfig{{ProviderID: "p1", ModelID: "a", Tier: store.TierEconomy, Enabled: true, InputCostPerM: 0.2}},
	)
	r := New(s, Config{ExplorationProbability: 1})

	d, err := r.Resolve(context.Background(), Request{RequestedModel: "economy", Category: "debug"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Reason == "" || d.ModelID != "a" {
		t.Errorf("expected the exploration branch to pick the only model, got %+v", d)
	}
}

func insertTask(t *testing.T, s store.Store, providerID, modelID, category string, success bool, when time.Time) {
	t.Helper()
	task := &store.Task{
		ID:              providerID + "-" + modelID + "-" + time.Now().String(),
		CreatedAt:       when,
		Category:        category,
		ProviderID:      providerID,
		SelectedModelID: modelID,
		CLISuccess:      success,
	}
	if err := s.InsertTask(context.Background(), task); err != nil {
		t.Fatalf("InsertTask: %v", err)
	}
}
