package handlers

import (
	"encoding/json"
	"net/http"

	"solar-backend/internal/auth"
	"solar-backend/internal/middleware"
	"solar-backend/internal/models"
	"solar-backend/internal/services"
	"solar-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// AuthHandler serves the per-role login, refresh and logout endpoints.
// The role comes from the URL path, so /api/admin/auth/login and
// /api/employee/auth/login are disjoint credential namespaces.
type AuthHandler struct {
	Service *services.AccountService
}

func NewAuthHandler(s *services.AccountService) *AuthHandler {
	return &AuthHandler{Service: s}
}

func pathRole(r *http.Request) (auth.Role, bool) {
	role, err := auth.ParseRole(mux.Vars(r)["role"])
	return role, err == nil
}

// Login handles POST /api/{role}/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	role, ok := pathRole(r)
	if !ok {
		utils.Error(w, http.StatusNotFound, "Unknown role")
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, pending, err := h.Service.Login(r.Context(), role, &req, getIPAddress(r), r.UserAgent())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if pending != nil {
		utils.JSON(w, http.StatusOK, pending)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// RegisterAdmin handles POST /api/admin/auth/register. Only works
// while no admin account exists yet.
func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	acc, err := h.Service.RegisterAdmin(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, acc)
}

// Refresh handles POST /api/{role}/auth/refresh-token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	role, ok := pathRole(r)
	if !ok {
		utils.Error(w, http.StatusNotFound, "Unknown role")
		return
	}

	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RefreshToken == "" {
		utils.Error(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	resp, err := h.Service.Refresh(r.Context(), role, req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Logout handles POST /api/{role}/auth/logout (authenticated)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	role, ok := middleware.GetRoleFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	subjectID, _ := middleware.GetSubjectIDFromContext(r.Context())

	if err := h.Service.Logout(r.Context(), role, subjectID); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
