package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"solar-backend/internal/auth"
	"solar-backend/internal/middleware"
	"solar-backend/internal/services"
	"solar-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// maxCompiledFileSize caps the consolidated PDF upload.
const maxCompiledFileSize = 5 << 20 // 5 MB

// CompiledFileHandler manages the single consolidated PDF a
// back-office user attaches to a lead. Uploading again replaces the
// previous file.
type CompiledFileHandler struct {
	Service *services.LeadService
}

func NewCompiledFileHandler(s *services.LeadService) *CompiledFileHandler {
	return &CompiledFileHandler{Service: s}
}

// Upload handles POST /api/leads/{id}/compiled-file (multipart "file")
func (h *CompiledFileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := r.ParseMultipartForm(maxCompiledFileSize); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxCompiledFileSize {
		utils.Error(w, http.StatusBadRequest, "compiled file exceeds 5MB limit")
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		utils.Error(w, http.StatusBadRequest, "compiled file must be a PDF")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxCompiledFileSize+1))
	if err != nil || len(data) > maxCompiledFileSize {
		utils.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}

	lead, err := h.Service.SetCompiledFile(r.Context(), id, services.UploadFile{
		Name:        header.Filename,
		ContentType: "application/pdf",
		Data:        data,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lead)
}

// Get handles GET /api/leads/{id}/compiled-file. Same visibility rule
// as reading the lead itself: view-all roles or the owner.
func (h *CompiledFileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	lead, err := h.Service.GetLead(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	role, _ := middleware.GetRoleFromContext(r.Context())
	subjectID, _ := middleware.GetSubjectIDFromContext(r.Context())
	if !role.Can(auth.CapViewAllLeads) && lead.SalesmanID != subjectID {
		utils.Error(w, http.StatusForbidden, "Forbidden: Insufficient permissions")
		return
	}
	if lead.CompiledFileURL == "" {
		utils.Error(w, http.StatusNotFound, "lead has no compiled file")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"compiled_file_url": lead.CompiledFileURL})
}

// Delete handles DELETE /api/leads/{id}/compiled-file
func (h *CompiledFileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.DeleteCompiledFile(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Compiled file deleted"})
}
