package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/service"
)

// AdminHandler serves the admin and superadmin dashboards
type AdminHandler struct {
	adminSvc *service.AdminService
	logger   *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminSvc *service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, logger: logger}
}

// Dashboard handles GET /v1/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.adminSvc.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Export handles GET /v1/admin/export.csv
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	// buffered so a failed export still gets a JSON error
	var buf bytes.Buffer
	if err := h.adminSvc.ExportCSV(r.Context(), &buf); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "resultados.csv"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Feedback handles GET /v1/superadmin/feedback
func (h *AdminHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	summary, err := h.adminSvc.FeedbackSummary(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recommendations": summary})
}
