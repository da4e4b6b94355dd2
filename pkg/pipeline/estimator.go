package pipeline

import (
	"context"
	"strings"

	"github.com/relayhub/gateway/pkg/store"
)

// CatalogEstimator implements stream.CostEstimator by looking the model up
// in the store's catalog at completion time. model is expected in
// "provider:model" form; when the provider prefix is absent every catalog
// entry for that model id is considered and the cheapest is used, matching
// the router's own "direct catalog match" tie-break.
type CatalogEstimator struct {
	store store.Store
}

// NewCatalogEstimator creates a CatalogEstimator backed by s.
func NewCatalogEstimator(s store.Store) *CatalogEstimator {
	return &CatalogEstimator{store: s}
}

// EstimateCost implements stream.CostEstimator.
func (e *CatalogEstimator) EstimateCost(model string, promptTokens, completionTokens int) float64 {
	providerID, modelID, hasProvider := strings.Cut(model, ":")
	if !hasProvider {
		modelID = model
	}

	models, err := e.store.ListModels(context.Background())
	if err != nil {
		return 0
	}

	var best *store.ModelConfig
	for _, m := range models {
		if m.ModelID != modelID {
			continue
		}
		if hasProvider && m.ProviderID != providerID {
			continue
		}
		if best == nil || m.InputCostPerM < best.InputCostPerM {
			best = m
		}
	}
	if best == nil {
		return 0
	}

	return float64(promptTokens)*best.InputCostPerM/1_000_000 + float64(completionTokens)*best.OutputCostPerM/1_000_000
}
