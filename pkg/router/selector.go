package router

import (
	"context"
	"sort"

	"github.com/relayhub/gateway/pkg/store"
)

// catalog is a point-in-time snapshot of the enabled-provider and
// enabled-model catalog, pulled fresh from the store for each routing
// decision so CRUD changes to providers/models take effect immediately.
type catalog struct {
	providers map[string]*store.ProviderConfig // id -> config, enabled only
	models    []*store.ModelConfig             // enabled only
}

func loadCatalog(ctx context.Context, s store.Store) (*catalog, error) {
	providerList, err := s.ListProviders(ctx)
	if err != nil {
		return nil, err
	}
	modelList, err := s.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	c := &catalog{providers: make(map[string]*store.ProviderConfig)}
	for _, p := range providerList {
		if p.Enabled {
			c.providers[p.ID] = p
		}
	}
	for _, m := range modelList {
		if m.Enabled {
			if _, ok := c.providers[m.ProviderID]; ok {
				c.models = append(c.models, m)
			}
		}
	}
	return c, nil
}

func (c *catalog) providerEnabled(providerID string) bool {
	_, ok := c.providers[providerID]
	return ok
}

func (c *catalog) model(providerID, modelID string) *store.ModelConfig {
	for _, m := range c.models {
		if m.ProviderID == providerID && m.ModelID == modelID {
			return m
		}
	}
	return nil
}

// modelsMatching returns every enabled (provider, model) pair anywhere in
// the catalog whose model id matches, ordered by input cost ascending and
// tie-broken by provider priority then provider id for determinism.
func (c *catalog) modelsMatching(modelID string) []*store.ModelConfig {
	var out []*store.ModelConfig
	for _, m := range c.models {
		if m.ModelID == modelID {
			out = append(out, m)
		}
	}
	c.sortByPreference(out)
	return out
}

// modelsInTier returns the enabled models of a tier, ordered by input cost
// ascending (tie-broken by provider priority then provider id).
func (c *catalog) modelsInTier(tier store.ModelTier) []*store.ModelConfig {
	var out []*store.ModelConfig
	for _, m := range c.models {
		if m.Tier == tier {
			out = append(out, m)
		}
	}
	c.sortByPreference(out)
	return out
}

func (c *catalog) sortByPreference(models []*store.ModelConfig) {
	sort.SliceStable(models, func(i, j int) bool {
		if models[i].InputCostPerM != models[j].InputCostPerM {
			return models[i].InputCostPerM < models[j].InputCostPerM
		}
		pi, pj := c.providers[models[i].ProviderID], c.providers[models[j].ProviderID]
		if pi != nil && pj != nil && pi.Priority != pj.Priority {
			return pi.Priority < pj.Priority
		}
		return models[i].ProviderID < models[j].ProviderID
	})
}
