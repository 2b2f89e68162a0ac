package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"solar-backend/internal/auth"
	"solar-backend/internal/models"
	"solar-backend/internal/services"
	"solar-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// AccountHandler serves admin-only staff account management. The
// {role} path segment picks which staff role is being managed.
type AccountHandler struct {
	Service *services.AccountService
}

func NewAccountHandler(s *services.AccountService) *AccountHandler {
	return &AccountHandler{Service: s}
}

// Create handles POST /api/admin/staff/{role}
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	role, err := auth.ParseRole(mux.Vars(r)["role"])
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Unknown role")
		return
	}

	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	acc, err := h.Service.CreateStaff(r.Context(), role, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, acc)
}

// List handles GET /api/admin/staff/{role}
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	role, err := auth.ParseRole(mux.Vars(r)["role"])
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Unknown role")
		return
	}

	accounts, err := h.Service.ListStaff(r.Context(), role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, accounts)
}

// Get handles GET /api/admin/staff/{role}/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	acc, err := h.Service.GetStaff(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, acc)
}

// Update handles PATCH /api/admin/staff/{role}/{id}
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	acc, err := h.Service.UpdateStaff(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, acc)
}

// Delete handles DELETE /api/admin/staff/{role}/{id}
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.DeleteStaff(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}
