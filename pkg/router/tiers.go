package router

import (
	"context"
	"fmt"
	"time"

	"github.com/relayhub/gateway/pkg/store"
)

// statKey identifies one (provider, model) pair's historical stats.
type statKey struct {
	providerID string
	modelID    string
}

func statsIndex(stats []store.ModelStat) map[statKey]store.ModelStat {
	idx := make(map[statKey]store.ModelStat, len(stats))
	for _, s := range stats {
		idx[statKey{providerID: s.ProviderID, modelID: s.ModelID}] = s
	}
	return idx
}

func confident(stat store.ModelStat, minSampleCount int) bool {
	return stat.SampleCount >= minSampleCount
}

func successRate(stat store.ModelStat) float64 {
	if stat.SampleCount == 0 {
		return 0
	}
	return float64(stat.SuccessCount) / float64(stat.SampleCount)
}

// recentAllFailures reports whether the most recent 3 recorded outcomes
// (newest first) were all failures. Fewer than 3 samples never trips it.
func recentAllFailures(stat store.ModelStat) bool {
	if len(stat.RecentOutcomes) < 3 {
		return false
	}
	for _, ok := range stat.RecentOutcomes[:3] {
		if ok {
			return false
		}
	}
	return true
}

// nextTier returns the next tier to escalate to, and false once premium
// has been exhausted.
func nextTier(tier store.ModelTier) (store.ModelTier, bool) {
	switch tier {
	case store.TierEconomy:
		return store.TierStandard, true
	case store.TierStandard:
		return store.TierPremium, true
	default:
		return "", false
	}
}

// selectInTier runs the tier-based selection algorithm for (tier,
// category, complexity): escalating through empty tiers, weighing an
// exploration branch against exploitation of historical success stats,
// and falling back to the cheapest model in the tier.
func (r *Router) selectInTier(ctx context.Context, tier store.ModelTier, category string, complexity int, cat *catalog) (*Decision, error) {
	models := cat.modelsInTier(tier)
	if len(models) == 0 {
		next, ok := nextTier(tier)
		if !ok {
			return r.hardDefault(category, complexity), nil
		}
		return r.selectInTier(ctx, next, category, complexity, cat)
	}

	since := time.Now().Add(-r.cfg.StatsWindow)
	stats, err := r.store.ModelStatsSince(ctx, since, category)
	if err != nil {
		return nil, fmt.Errorf("loading model stats: %w", err)
	}
	idx := statsIndex(stats)

	anyUnconfident := false
	var cheapestUnconfident *store.ModelConfig
	for _, m := range models {
		stat, ok := idx[statKey{providerID: m.ProviderID, modelID: m.ModelID}]
		if !ok || !confident(stat, r.cfg.MinSampleCount) {
			anyUnconfident = true
			if cheapestUnconfident == nil {
				cheapestUnconfident = m
			}
		}
	}

	if anyUnconfident && r.explore() < r.cfg.ExplorationProbability {
		return &Decision{
			ProviderID:   cheapestUnconfident.ProviderID,
			ModelID:      cheapestUnconfident.ModelID,
			DisplayAlias: cheapestUnconfident.DisplayName,
			Reason:       fmt.Sprintf("Explore: %s/%s in tier %s lacks confident history", cheapestUnconfident.ProviderID, cheapestUnconfident.ModelID, tier),
			Category:     category,
			Complexity:   complexity,
		}, nil
	}

	for _, m := range models {
		stat, ok := idx[statKey{providerID: m.ProviderID, modelID: m.ModelID}]
		if !ok || !confident(stat, r.cfg.MinSampleCount) {
			continue
		}
		if successRate(stat) < r.cfg.MinSuccessRate {
			continue
		}
		if recentAllFailures(stat) {
			continue
		}
		return &Decision{
			ProviderID:   m.ProviderID,
			ModelID:      m.ModelID,
			DisplayAlias: m.DisplayName,
			Reason:       fmt.Sprintf("selected by historical success rate in tier %s", tier),
			Category:     category,
			Complexity:   complexity,
		}, nil
	}

	fallback := r.cheapestPreferringDefault(models)
	return &Decision{
		ProviderID:   fallback.ProviderID,
		ModelID:      fallback.ModelID,
		DisplayAlias: fallback.DisplayName,
		Reason:       fmt.Sprintf("fallback: cheapest model in tier %s", tier),
		Category:     category,
		Complexity:   complexity,
	}, nil
}

// cheapestPreferringDefault returns the cheapest model in models (already
// cost-sorted), preferring r.cfg.DefaultProviderID among models tied on
// cost with the cheapest entry.
func (r *Router) cheapestPreferringDefault(models []*store.ModelConfig) *store.ModelConfig {
	cheapest := models[0]
	for _, m := range models {
		if m.InputCostPerM != cheapest.InputCostPerM {
			break
		}
		if m.ProviderID == r.cfg.DefaultProviderID {
			return m
		}
	}
	return cheapest
}

// hardDefault is reached when every tier, escalating upward, has zero
// enabled models: route to claude-cli's sonnet alias regardless of
// catalog state, per the router's final fallback step.
func (r *Router) hardDefault(category string, complexity int) *Decision {
	modelID := claudeAliases["sonnet"]
	return &Decision{
		ProviderID:   "claude-cli",
		ModelID:      modelID,
		DisplayAlias: modelID,
		Reason:       "hard default: no tier has any enabled model",
		Category:     category,
		Complexity:   complexity,
	}
}
