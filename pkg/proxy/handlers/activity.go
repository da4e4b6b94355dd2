package handlers

import (
	"log/slog"
	"net/http"

	"github.com/relayhub/gateway/pkg/activity"
)

// ActivityStreamHandler serves GET /api/activity/stream, an SSE feed of the
// live request/task snapshot.
type ActivityStreamHandler struct {
	Registry *activity.Registry
}

// NewActivityStreamHandler creates an activity stream handler backed by reg.
func NewActivityStreamHandler(reg *activity.Registry) *ActivityStreamHandler {
	return &ActivityStreamHandler{Registry: reg}
}

func (h *ActivityStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.ServeSSE(r.Context(), w); err != nil {
		slog.ErrorContext(r.Context(), "activity stream ended with error", "error", err)
	}
}
