package models

import "time"

// TOTPSetupResponse is returned when an admin starts 2FA enrollment.
type TOTPSetupResponse struct {
	Secret      string `json:"secret"`
	QRCode      string `json:"qr_code"` // data:image/png;base64,...
	Issuer      string `json:"issuer"`
	AccountName string `json:"account_name"`
}

// BackupCodesResponse carries freshly generated one-time backup codes.
// Shown exactly once; only bcrypt hashes are stored.
type BackupCodesResponse struct {
	Codes []string `json:"codes"`
}

// TwoFAStatus reports an account's 2FA state.
type TwoFAStatus struct {
	Enabled        bool       `json:"enabled"`
	EnabledAt      *time.Time `json:"enabled_at,omitempty"`
	HasBackupCodes bool       `json:"has_backup_codes"`
}

// TOTPVerifyRequest carries a 2FA code plus the temp token from login step 1.
type TOTPVerifyRequest struct {
	TempToken string `json:"temp_token"`
	Code      string `json:"code"`
}

// TOTPEnableRequest confirms enrollment with a code from the authenticator app.
type TOTPEnableRequest struct {
	Code string `json:"code"`
}

// TOTPDisableRequest requires the password and a valid code to turn 2FA off.
type TOTPDisableRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// RegenerateBackupCodesRequest requires the password to mint a new code set.
type RegenerateBackupCodesRequest struct {
	Password string `json:"password"`
}
