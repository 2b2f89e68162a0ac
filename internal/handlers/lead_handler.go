package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"solar-backend/internal/auth"
	"solar-backend/internal/middleware"
	"solar-backend/internal/models"
	"solar-backend/internal/services"
	"solar-backend/pkg/utils"

	"github.com/gorilla/mux"
)

const (
	maxLeadDocuments   = 10
	maxLeadDocSize     = 2 << 20 // 2 MB per document
	maxLeadFormMemory  = 32 << 20
)

type LeadHandler struct {
	Service   *services.LeadService
	Employees *services.EmployeeService
}

func NewLeadHandler(s *services.LeadService, employees *services.EmployeeService) *LeadHandler {
	return &LeadHandler{Service: s, Employees: employees}
}

// AddLead handles POST /api/leads/addlead (multipart, employee only).
// Form fields carry the lead data; up to 10 files ride under the
// "documents" key, 2MB each.
func (h *LeadHandler) AddLead(w http.ResponseWriter, r *http.Request) {
	salesmanID, ok := middleware.GetSubjectIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	salesman, err := h.Employees.Get(r.Context(), salesmanID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxLeadFormMemory); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	capacityKW, _ := strconv.ParseFloat(r.FormValue("capacity_kw"), 64)
	quotedAmount, _ := strconv.ParseFloat(r.FormValue("quoted_amount"), 64)

	req := &models.CreateLeadRequest{
		CustomerName:    r.FormValue("customer_name"),
		CustomerContact: r.FormValue("customer_contact"),
		CustomerAddress: r.FormValue("customer_address"),
		GPSLocation:     r.FormValue("gps_location"),
		CapacityKW:      capacityKW,
		QuotedAmount:    quotedAmount,
		BankName:        r.FormValue("bank_name"),
		BankBranch:      r.FormValue("bank_branch"),
	}

	var files []services.UploadFile
	if r.MultipartForm != nil {
		headers := r.MultipartForm.File["documents"]
		if len(headers) > maxLeadDocuments {
			utils.Error(w, http.StatusBadRequest, fmt.Sprintf("at most %d documents per lead", maxLeadDocuments))
			return
		}
		for _, header := range headers {
			if header.Size > maxLeadDocSize {
				utils.Error(w, http.StatusBadRequest, fmt.Sprintf("document %s exceeds 2MB limit", header.Filename))
				return
			}
			f, err := header.Open()
			if err != nil {
				utils.Error(w, http.StatusBadRequest, "failed to read document")
				return
			}
			data, err := io.ReadAll(io.LimitReader(f, maxLeadDocSize+1))
			f.Close()
			if err != nil || len(data) > maxLeadDocSize {
				utils.Error(w, http.StatusBadRequest, "failed to read document")
				return
			}
			files = append(files, services.UploadFile{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	lead, err := h.Service.CreateLead(r.Context(), salesman, req, files)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, lead)
}

// GetAll handles GET /api/leads/getAll (back-office roles)
func (h *LeadHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Service.ListLeads(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, leads)
}

// GetBySalesman handles GET /api/leads/getAllBysalesId/{salesId}.
// Employees can only read their own list; roles with the view-all
// capability can read anyone's.
func (h *LeadHandler) GetBySalesman(w http.ResponseWriter, r *http.Request) {
	salesID, _ := strconv.Atoi(mux.Vars(r)["salesId"])

	role, _ := middleware.GetRoleFromContext(r.Context())
	subjectID, _ := middleware.GetSubjectIDFromContext(r.Context())
	if !role.Can(auth.CapViewAllLeads) && subjectID != salesID {
		utils.Error(w, http.StatusForbidden, "Forbidden: Insufficient permissions")
		return
	}

	leads, err := h.Service.ListLeadsBySalesman(r.Context(), salesID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, leads)
}

// Get handles GET /api/leads/{id}
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	utils.JSON(w, http.StatusOK, lead)
}

// UpdateStatus handles PATCH /api/leads/updatestatus/{id}/status
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateLeadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	subjectID, _ := middleware.GetSubjectIDFromContext(r.Context())
	role, _ := middleware.GetRoleFromContext(r.Context())

	lead, err := h.Service.UpdateStatus(r.Context(), id, &req, subjectID, role.String())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lead)
}

// Update handles PATCH /api/leads/{id}
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lead, err := h.Service.UpdateLead(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lead)
}

// Delete handles DELETE /api/leads/{id} (admin only)
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.DeleteLead(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Lead deleted"})
}

// StatusEvents handles GET /api/leads/{id}/events. Same visibility
// rule as reading the lead itself: view-all roles or the owner.
func (h *LeadHandler) StatusEvents(w http.ResponseWriter, r *http.Request) {
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

	events, err := h.Service.ListStatusEvents(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, events)
}
