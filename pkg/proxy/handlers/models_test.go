package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/relayhub/gateway/pkg/store"
	"github.com/relayhub/gateway/pkg/store/storage"
)

func TestModelsHandler_ListsAliasesAndCatalog(t *testing.T) {
	s := storage.NewMemoryStorage()
	ctx := context.Background()
	if err := s.UpsertProvider(ctx, &store.ProviderConfig{ID: "openai", Enabled: true}); err != nil {
		t.Fatalf("UpsertProvider: %v", err)
	}
	if err := s.UpsertModel(ctx, &store.ModelConfig{ProviderID: "openai", ModelID: "gpt-4o", Tier: store.TierStandard, Enabled: true}); err != nil {
		t.Fatalf("UpsertModel: %v", err)
	}

	h := NewModelsHandler(s)
	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200. Body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Object string `json:"object"`
		Data   []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Object != "list" {
		t.Errorf("object = %q, want list", resp.Object)
	}

	ids := make(map[string]bool)
	for _, m := range resp.Data {
		ids[m.ID] = true
	}
	for _, want := range []string{"auto", "openai:gpt-4o", "gpt-4o"} {
		if !ids[want] {
			t.Errorf("expected model %q in listing, got %v", want, ids)
		}
	}
}
