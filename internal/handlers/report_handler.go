package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"solar-backend/internal/services"
	"solar-backend/internal/timeutil"
	"solar-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// LeadsCSV handles GET /api/reports/leads/csv
func (h *ReportHandler) LeadsCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	data, err := h.Service.GenerateLeadsCSV(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("leads_%s.csv", timeutil.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// LeadsPDFZip handles GET /api/reports/leads/pdf-zip. PDF generation
// for every lead takes a while, hence the longer timeout.
func (h *ReportHandler) LeadsPDFZip(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	pdfs, err := h.Service.GenerateBulkLeadPDFs(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(pdfs) == 0 {
		utils.Error(w, http.StatusNotFound, "No leads to export")
		return
	}

	zipData, err := h.Service.CreateBulkPDFZip(pdfs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("lead_reports_%s.zip", timeutil.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(zipData)))
	w.WriteHeader(http.StatusOK)
	w.Write(zipData)
}

// LeadPDF handles GET /api/reports/leads/{id}/pdf
func (h *ReportHandler) LeadPDF(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	data, err := h.Service.GetLeadReportData(ctx, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pdfData, err := h.Service.GenerateLeadPDF(data)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("lead_%d.pdf", id)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfData)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfData)
}
