package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/service"
	"github.com/wonderless/Test-autoestima-sub000/internal/transport/rest/middleware"
)

// ResultsHandler serves the results page and its progression actions
type ResultsHandler struct {
	resultsSvc *service.ResultsService
	logger     *zap.Logger
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(resultsSvc *service.ResultsService, logger *zap.Logger) *ResultsHandler {
	return &ResultsHandler{resultsSvc: resultsSvc, logger: logger}
}

// CompleteActivityRequest is the body of the activity endpoint; -1 resets the recommendation
type CompleteActivityRequest struct {
	CurrentIndex *int `json:"currentIndex"`
}

// FeedbackRequest is the body of the feedback endpoint
type FeedbackRequest struct {
	Answers map[string]bool `json:"answers"`
}

func (h *ResultsHandler) respond(w http.ResponseWriter, r *http.Request, view *service.ResultsView, err error) {
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Get handles GET /v1/me/results
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.resultsSvc.Load(r.Context(), middleware.GetUserID(r.Context()))
	h.respond(w, r, view, err)
}

// Toggle handles POST /v1/me/categories/{category}/toggle
func (h *ResultsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	cat, ok := categoryParam(w, mux.Vars(r)["category"])
	if !ok {
		return
	}
	view, err := h.resultsSvc.ToggleCategory(r.Context(), middleware.GetUserID(r.Context()), cat)
	h.respond(w, r, view, err)
}

// Advance handles POST /v1/me/categories/{category}/advance
func (h *ResultsHandler) Advance(w http.ResponseWriter, r *http.Request) {
	cat, ok := categoryParam(w, mux.Vars(r)["category"])
	if !ok {
		return
	}
	view, err := h.resultsSvc.AdvanceQuestion(r.Context(), middleware.GetUserID(r.Context()), cat)
	h.respond(w, r, view, err)
}

// CompleteActivity handles POST /v1/me/categories/{category}/recommendations/{recId}/activities
func (h *ResultsHandler) CompleteActivity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cat, ok := categoryParam(w, vars["category"])
	if !ok {
		return
	}
	var req CompleteActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CurrentIndex == nil {
		writeError(w, http.StatusBadRequest, "currentIndex is required")
		return
	}
	view, err := h.resultsSvc.CompleteActivity(r.Context(), middleware.GetUserID(r.Context()), cat, vars["recId"], *req.CurrentIndex)
	h.respond(w, r, view, err)
}

// ResetRecommendation handles POST /v1/me/categories/{category}/recommendations/{recId}/reset
func (h *ResultsHandler) ResetRecommendation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cat, ok := categoryParam(w, vars["category"])
	if !ok {
		return
	}
	view, err := h.resultsSvc.ResetRecommendation(r.Context(), middleware.GetUserID(r.Context()), cat, vars["recId"])
	h.respond(w, r, view, err)
}

// OpenFeedback handles POST /v1/me/recommendations/{recId}/feedback/open
func (h *ResultsHandler) OpenFeedback(w http.ResponseWriter, r *http.Request) {
	view, err := h.resultsSvc.RequestFeedback(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["recId"])
	h.respond(w, r, view, err)
}

// SubmitFeedback handles POST /v1/me/recommendations/{recId}/feedback
func (h *ResultsHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := h.resultsSvc.SubmitFeedback(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["recId"], req.Answers)
	h.respond(w, r, view, err)
}

// DismissFeedback handles POST /v1/me/feedback/dismiss
func (h *ResultsHandler) DismissFeedback(w http.ResponseWriter, r *http.Request) {
	view, err := h.resultsSvc.DismissFeedback(r.Context(), middleware.GetUserID(r.Context()))
	h.respond(w, r, view, err)
}
