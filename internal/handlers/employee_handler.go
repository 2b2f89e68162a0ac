package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"solar-backend/internal/middleware"
	"solar-backend/internal/models"
	"solar-backend/internal/services"
	"solar-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// maxAadhaarFileSize caps the KYC document upload.
const maxAadhaarFileSize = 5 << 20 // 5 MB

type EmployeeHandler struct {
	Service *services.EmployeeService
}

func NewEmployeeHandler(s *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{Service: s}
}

// Register handles POST /api/admin/employees
func (h *EmployeeHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	emp, err := h.Service.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, emp)
}

// List handles GET /api/admin/employees?kyc_status=submitted
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	if status := r.URL.Query().Get("kyc_status"); status != "" {
		employees, err := h.Service.ListByKYCStatus(r.Context(), status)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, employees)
		return
	}

	employees, err := h.Service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, employees)
}

// Get handles GET /api/admin/employees/{id}
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	emp, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, emp)
}

// Update handles PATCH /api/admin/employees/{id}
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	emp, err := h.Service.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, emp)
}

// Delete handles DELETE /api/admin/employees/{id}
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Employee deleted"})
}

// Me handles GET /api/employee/me
func (h *EmployeeHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetSubjectIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	emp, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, emp)
}

// SubmitKYC handles POST /api/employee/kyc (multipart: aadhaar_number + aadhaar file)
func (h *EmployeeHandler) SubmitKYC(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetSubjectIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	if err := r.ParseMultipartForm(maxAadhaarFileSize); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	number := r.FormValue("aadhaar_number")

	file, header, err := r.FormFile("aadhaar")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "aadhaar file is required")
		return
	}
	defer file.Close()

	if header.Size > maxAadhaarFileSize {
		utils.Error(w, http.StatusBadRequest, "aadhaar file exceeds 5MB limit")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxAadhaarFileSize+1))
	if err != nil || len(data) > maxAadhaarFileSize {
		utils.Error(w, http.StatusBadRequest, "failed to read aadhaar file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	emp, err := h.Service.SubmitKYC(r.Context(), id, number, header.Filename, contentType, data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, emp)
}

// ReviewKYC handles POST /api/admin/employees/{id}/kyc-review
func (h *EmployeeHandler) ReviewKYC(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.ReviewKYCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	emp, err := h.Service.ReviewKYC(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, emp)
}
