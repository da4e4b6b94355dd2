package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/relayhub/gateway/pkg/analytics"
	"github.com/relayhub/gateway/pkg/proxy"
	"github.com/relayhub/gateway/pkg/proxy/types"
)

// StatsHandler serves GET /api/stats?metric=<name>&days=<n>, the dashboard's
// analytics query endpoint.
type StatsHandler struct {
	Aggregator *analytics.Aggregator
}

// NewStatsHandler creates a stats handler backed by a.
func NewStatsHandler(a *analytics.Aggregator) *StatsHandler {
	return &StatsHandler{Aggregator: a}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errResp := types.NewInvalidRequestError("only GET is supported", "method", "method_not_allowed")
		_ = proxy.WriteErrorResponse(w, errResp)
		return
	}

	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "all"
	}

	days := analytics.DefaultWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			errResp := types.NewInvalidRequestError("days must be a positive integer", "days", "invalid_value")
			_ = proxy.WriteErrorResponse(w, errResp)
			return
		}
		days = parsed
	}

	result, err := h.Aggregator.Query(r.Context(), metric, days)
	if err != nil {
		var unknown *analytics.ErrUnknownMetric
		if errors.As(err, &unknown) {
			errResp := types.NewInvalidRequestError(err.Error(), "metric", "unknown_metric")
			_ = proxy.WriteErrorResponse(w, errResp)
			return
		}
		errResp := types.NewServerError("failed to compute analytics")
		_ = proxy.WriteJSONResponse(w, http.StatusInternalServerError, errResp)
		return
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, result)
}
