package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
	"github.com/wonderless/Test-autoestima-sub000/internal/service"
	"github.com/wonderless/Test-autoestima-sub000/internal/transport/rest/middleware"
)

// TestHandler handles the questionnaire endpoints
type TestHandler struct {
	catalog *catalog.Catalog
	testSvc *service.TestService
	logger  *zap.Logger
}

// NewTestHandler creates a new test handler
func NewTestHandler(cat *catalog.Catalog, testSvc *service.TestService, logger *zap.Logger) *TestHandler {
	return &TestHandler{catalog: cat, testSvc: testSvc, logger: logger}
}

// SubmitAnswersRequest is the body of POST /v1/me/test/answers; keys are question ids
type SubmitAnswersRequest struct {
	Answers map[string]bool `json:"answers"`
}

// Questions handles GET /v1/questions
func (h *TestHandler) Questions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": h.catalog.Questions()})
}

// Start handles POST /v1/me/test/start
func (h *TestHandler) Start(w http.ResponseWriter, r *http.Request) {
	started, err := h.testSvc.Start(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, started)
}

// Submit handles POST /v1/me/test/answers
func (h *TestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answers := make(model.Answers, len(req.Answers))
	for k, v := range req.Answers {
		id, err := strconv.Atoi(k)
		if err != nil {
			writeError(w, http.StatusBadRequest, "question ids must be integers")
			return
		}
		answers[id] = v
	}

	ctx := r.Context()
	res, err := h.testSvc.Submit(ctx, middleware.GetUserID(ctx), middleware.GetEmail(ctx), answers)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Reset handles POST /v1/me/test/reset
func (h *TestHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.testSvc.Reset(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
