package handlers

import (
	"fmt"
	"net/http"

	"crm-backend/internal/services"
	"crm-backend/internal/timeutil"
	"crm-backend/pkg/utils"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// Summary returns the dashboard report for ?range=7d|30d|90d|1y
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context(), r.URL.Query().Get("range"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

// ExportPDF streams the report as a downloadable PDF
func (h *ReportHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.Service.ExportPDF(r.Context(), r.URL.Query().Get("range"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("reporte-%s.pdf", timeutil.Now().Format(timeutil.DateLayout))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
