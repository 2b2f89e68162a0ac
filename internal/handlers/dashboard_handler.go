package handlers

import (
	"net/http"
	"strconv"

	"solar-backend/internal/auth"
	"solar-backend/internal/middleware"
	"solar-backend/internal/services"
	"solar-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type DashboardHandler struct {
	Service *services.DashboardService
}

func NewDashboardHandler(s *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Service: s}
}

// Summary handles GET /api/dashboard (back-office roles)
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

// LeadsByStatus handles GET /api/dashboard/leads-by-status, the
// pipeline breakdown on its own for the status board view.
func (h *DashboardHandler) LeadsByStatus(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary.LeadsByStatus)
}

// EmployeeSummary handles GET /api/dashboard/employee/{id}. Employees
// see their own numbers only.
func (h *DashboardHandler) EmployeeSummary(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	role, _ := middleware.GetRoleFromContext(r.Context())
	subjectID, _ := middleware.GetSubjectIDFromContext(r.Context())
	if !role.Can(auth.CapViewDashboard) && subjectID != id {
		utils.Error(w, http.StatusForbidden, "Forbidden: Insufficient permissions")
		return
	}

	summary, err := h.Service.EmployeeSummary(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}
