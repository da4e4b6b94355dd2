package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/relayhub/gateway/pkg/proxy"
	"github.com/relayhub/gateway/pkg/proxy/types"
	"github.com/relayhub/gateway/pkg/store"
)

// feedbackRequest is the POST /api/feedback body.
type feedbackRequest struct {
	TaskID string `json:"taskId"`
	Rating int    `json:"rating"`
}

// FeedbackHandler serves POST /api/feedback, the REST counterpart to the
// in-conversation "/feedback" command: it updates the user rating on an
// already-completed task.
type FeedbackHandler struct {
	Store store.Store
}

// NewFeedbackHandler creates a feedback handler backed by s.
func NewFeedbackHandler(s store.Store) *FeedbackHandler {
	return &FeedbackHandler{Store: s}
}

func (h *FeedbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errResp := types.NewInvalidRequestError("only POST is supported", "method", "method_not_allowed")
		_ = proxy.WriteErrorResponse(w, errResp)
		return
	}

	var body feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errResp := types.NewInvalidRequestError("request body is not valid JSON", "body", "invalid_json")
		_ = proxy.WriteErrorResponse(w, errResp)
		return
	}

	if body.TaskID == "" {
		errResp := types.NewInvalidRequestError("taskId is required", "taskId", "missing_field")
		_ = proxy.WriteErrorResponse(w, errResp)
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		errResp := types.NewInvalidRequestError("rating must be between 1 and 5", "rating", "out_of_range")
		_ = proxy.WriteErrorResponse(w, errResp)
		return
	}

	task, err := h.Store.FindTaskByIDPrefix(r.Context(), body.TaskID)
	if err != nil || task == nil {
		errResp := types.NewErrorResponse("task not found", types.ErrorTypeNotFound, "taskId", "task_not_found")
		_ = proxy.WriteJSONResponse(w, http.StatusNotFound, errResp)
		return
	}

	if err := h.Store.UpdateTaskRating(r.Context(), task.ID, body.Rating); err != nil {
		errResp := types.NewServerError("failed to record feedback")
		_ = proxy.WriteJSONResponse(w, http.StatusInternalServerError, errResp)
		return
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"taskId": task.ID,
		"rating": body.Rating,
	})
}
