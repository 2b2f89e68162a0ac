package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"solar-backend/internal/auth"
	"solar-backend/internal/middleware"
	"solar-backend/internal/models"
	"solar-backend/internal/services"
	"solar-backend/pkg/utils"
)

// TOTPHandler serves the admin two-factor endpoints plus the second
// step of a 2FA login.
type TOTPHandler struct {
	TOTPService    *services.TOTPService
	AccountService *services.AccountService
	Tokens         *auth.TokenManager
}

func NewTOTPHandler(totpService *services.TOTPService, accountService *services.AccountService, tokens *auth.TokenManager) *TOTPHandler {
	return &TOTPHandler{
		TOTPService:    totpService,
		AccountService: accountService,
		Tokens:         tokens,
	}
}

// Setup handles POST /api/admin/2fa/setup
func (h *TOTPHandler) Setup(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetSubjectIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	account, err := h.AccountService.GetStaff(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	setup, err := h.TOTPService.GenerateSetup(r.Context(), account)
	if err != nil {
		writeTOTPError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, setup)
}

// Enable handles POST /api/admin/2fa/enable
func (h *TOTPHandler) Enable(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetSubjectIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req models.TOTPEnableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" {
		utils.Error(w, http.StatusBadRequest, "code is required")
		return
	}

	codes, err := h.TOTPService.VerifyAndEnable(r.Context(), accountID, req.Code, getIPAddress(r))
	if err != nil {
		writeTOTPError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, codes)
}

// Disable handles POST /api/admin/2fa/disable
func (h *TOTPHandler) Disable(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetSubjectIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req models.TOTPDisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Password == "" || req.Code == "" {
		utils.Error(w, http.StatusBadRequest, "password and code are required")
		return
	}

	if err := h.TOTPService.Disable(r.Context(), accountID, req.Password, req.Code); err != nil {
		writeTOTPError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "2FA disabled"})
}

// Status handles GET /api/admin/2fa/status
func (h *TOTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetSubjectIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	status, err := h.TOTPService.GetStatus(r.Context(), accountID)
	if err != nil {
		writeTOTPError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, status)
}

// RegenerateBackupCodes handles POST /api/admin/2fa/backup-codes
func (h *TOTPHandler) RegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetSubjectIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req models.RegenerateBackupCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Password == "" {
		utils.Error(w, http.StatusBadRequest, "password is required")
		return
	}

	codes, err := h.TOTPService.RegenerateBackupCodes(r.Context(), accountID, req.Password)
	if err != nil {
		writeTOTPError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, codes)
}

// Verify handles POST /api/admin/auth/2fa/verify. It is the second
// step of an admin login: the temp token from step 1 plus a TOTP or
// backup code buys a full token pair.
func (h *TOTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TempToken == "" || req.Code == "" {
		utils.Error(w, http.StatusBadRequest, "temp_token and code are required")
		return
	}

	claims, err := h.Tokens.ValidateTempToken(req.TempToken)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "Invalid or expired temporary token")
		return
	}

	valid, err := h.TOTPService.Verify(r.Context(), claims.SubjectID, req.Code, getIPAddress(r))
	if err != nil {
		writeTOTPError(w, err)
		return
	}
	if !valid {
		utils.Error(w, http.StatusUnauthorized, "Invalid verification code")
		return
	}

	resp, err := h.AccountService.CompleteTwoFactorLogin(r.Context(), claims.SubjectID, getIPAddress(r), r.UserAgent())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// writeTOTPError maps TOTP domain errors to 400s; anything else falls
// through to the generic mapping.
func writeTOTPError(w http.ResponseWriter, err error) {
	var totpErr *services.TOTPError
	if errors.As(err, &totpErr) {
		utils.Error(w, http.StatusBadRequest, totpErr.Message)
		return
	}
	writeServiceError(w, err)
}
