package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/model"
	"github.com/wonderless/Test-autoestima-sub000/internal/progress"
	"github.com/wonderless/Test-autoestima-sub000/internal/scoring"
	"github.com/wonderless/Test-autoestima-sub000/internal/service"
	"github.com/wonderless/Test-autoestima-sub000/internal/transport/rest/middleware"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service and engine errors to HTTP responses
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var inc *scoring.IncompleteAnswers
	var vf *progress.ValidationFailure
	switch {
	case errors.As(err, &inc):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   err.Error(),
			"missing": inc.Missing,
		})
	case errors.As(err, &vf):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   err.Error(),
			"missing": vf.Missing,
		})
	case errors.Is(err, service.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error":    err.Error(),
			"fallback": true,
		})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, progress.ErrInvalidIndex):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoResults),
		errors.Is(err, progress.ErrUnknownCategory),
		errors.Is(err, progress.ErrUnknownRecommendation):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, progress.ErrFeedbackUnavailable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func categoryParam(w http.ResponseWriter, raw string) (model.Category, bool) {
	cat, err := model.ParseCategory(raw)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return cat, true
}
