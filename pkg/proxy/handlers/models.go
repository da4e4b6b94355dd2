package handlers

import (
	"net/http"

	"github.com/relayhub/gateway/pkg/proxy"
	"github.com/relayhub/gateway/pkg/proxy/types"
	"github.com/relayhub/gateway/pkg/store"
)

// modelEntry is one row of the GET /v1/models listing.
type modelEntry struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

var tierAliases = []string{"auto", "economy", "standard", "premium", "opus", "sonnet", "haiku"}

// ModelsHandler serves GET /v1/models: the routing tier aliases plus every
// enabled catalog model, listed both bare and as "provider:model".
type ModelsHandler struct {
	Store store.Store
}

// NewModelsHandler creates a models handler backed by s.
func NewModelsHandler(s store.Store) *ModelsHandler {
	return &ModelsHandler{Store: s}
}

func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errResp := types.NewInvalidRequestError("only GET is supported", "method", "method_not_allowed")
		_ = proxy.WriteErrorResponse(w, errResp)
		return
	}

	seen := make(map[string]bool)
	var data []modelEntry

	for _, alias := range tierAliases {
		if seen[alias] {
			continue
		}
		seen[alias] = true
		data = append(data, modelEntry{ID: alias, Object: "model", OwnedBy: "relayhub"})
	}

	models, err := h.Store.ListModels(r.Context())
	if err != nil {
		errResp := types.NewServerError("failed to load model catalog")
		_ = proxy.WriteJSONResponse(w, http.StatusInternalServerError, errResp)
		return
	}

	for _, m := range models {
		if !m.Enabled {
			continue
		}
		qualified := m.ProviderID + ":" + m.ModelID
		if !seen[qualified] {
			seen[qualified] = true
			data = append(data, modelEntry{ID: qualified, Object: "model", OwnedBy: m.ProviderID})
		}
		if !seen[m.ModelID] {
			seen[m.ModelID] = true
			data = append(data, modelEntry{ID: m.ModelID, Object: "model", OwnedBy: m.ProviderID})
		}
	}

	resp := map[string]interface{}{
		"object": "list",
		"data":   data,
	}
	_ = proxy.WriteJSONResponse(w, http.StatusOK, resp)
}
