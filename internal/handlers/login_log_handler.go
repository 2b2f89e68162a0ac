package handlers

import (
	"net/http"
	"strconv"

	"solar-backend/internal/repositories"
	"solar-backend/pkg/utils"
)

type LoginLogHandler struct {
	Repo *repositories.LoginLogRepository
}

func NewLoginLogHandler(repo *repositories.LoginLogRepository) *LoginLogHandler {
	return &LoginLogHandler{Repo: repo}
}

// List handles GET /api/admin/login-logs?limit=200
func (h *LoginLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to fetch login logs")
		return
	}
	utils.JSON(w, http.StatusOK, logs)
}
