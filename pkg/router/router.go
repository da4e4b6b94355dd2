package router

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/relayhub/gateway/pkg/store"
)

// Router resolves a Request into a Decision following the fixed
// precedence chain documented on Resolve. It is safe for concurrent use.
type Router struct {
	store store.Store
	cfg   Config

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Router backed by s. Zero-valued Config fields take their
// documented defaults.
func New(s store.Store, cfg Config) *Router {
	return &Router{
		store: s,
		cfg:   cfg.withDefaults(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// explore returns the next draw from the router's exploration coin flip.
// Guarded by mu since rand.Rand is not safe for concurrent use.
func (r *Router) explore() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Resolve selects a (provider, model) pair for req. Precedence:
//
//  1. Explicit "provider:model" pin, if both exist and are enabled.
//  2. Explicit Claude alias (opus/sonnet/haiku or a full claude- model
//     id) → claude-api if enabled, else claude-cli.
//  3. A model id that matches some enabled provider's catalog directly.
//  4. A tier name (economy/standard/premium) → tier-based selection.
//  5. A known legacy model name → its mapped tier → tier-based selection.
//  6. "auto" or anything unrecognized → tier derived from req.Complexity
//     → tier-based selection.
func (r *Router) Resolve(ctx context.Context, req Request) (*Decision, error) {
	cat, err := loadCatalog(ctx, r.store)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	if providerID, modelID, ok := strings.Cut(req.RequestedModel, ":"); ok {
		if d := r.resolvePin(cat, providerID, modelID, req); d != nil {
			return d, nil
		}
		return nil, &PinNotAvailableError{ProviderID: providerID, ModelID: modelID}
	}

	if modelID, ok := resolveClaudeAlias(req.RequestedModel); ok {
		return r.resolveClaudeRoute(cat, modelID, req), nil
	}

	if matches := cat.modelsMatching(req.RequestedModel); len(matches) > 0 {
		m := matches[0]
		return &Decision{
			ProviderID:   m.ProviderID,
			ModelID:      m.ModelID,
			DisplayAlias: m.DisplayName,
			Reason:       "direct catalog match",
			Category:     req.Category,
			Complexity:   req.Complexity,
		}, nil
	}

	if tier, ok := isTierName(req.RequestedModel); ok {
		return r.selectInTier(ctx, tier, req.Category, req.Complexity, cat)
	}

	if tier, ok := resolveLegacyTier(req.RequestedModel); ok {
		return r.selectInTier(ctx, tier, req.Category, req.Complexity, cat)
	}

	tier := tierForComplexity(req.Complexity)
	return r.selectInTier(ctx, tier, req.Category, req.Complexity, cat)
}

func (r *Router) resolvePin(cat *catalog, providerID, modelID string, req Request) *Decision {
	if !cat.providerEnabled(providerID) {
		return nil
	}
	m := cat.model(providerID, modelID)
	if m == nil {
		return nil
	}
	return &Decision{
		ProviderID:   providerID,
		ModelID:      modelID,
		DisplayAlias: m.DisplayName,
		Reason:       "explicit provider:model pin",
		Category:     req.Category,
		Complexity:   req.Complexity,
	}
}

func (r *Router) resolveClaudeRoute(cat *catalog, modelID string, req Request) *Decision {
	if m := cat.model("claude-api", modelID); m != nil {
		return &Decision{
			ProviderID:   "claude-api",
			ModelID:      modelID,
			DisplayAlias: m.DisplayName,
			Reason:       "explicit Claude alias, routed to the API provider",
			Category:     req.Category,
			Complexity:   req.Complexity,
		}
	}
	return &Decision{
		ProviderID:   "claude-cli",
		ModelID:      modelID,
		DisplayAlias: modelID,
		Reason:       "explicit Claude alias, falling back to the CLI provider",
		Category:     req.Category,
		Complexity:   req.Complexity,
	}
}
