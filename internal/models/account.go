package models

import "time"

// Account is an email-identified staff account: admin, manager, chief
// or godown incharge. Field employees live in their own table (see
// Employee) because they are identified by code and carry KYC state.
type Account struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	PasswordHash     string    `json:"-"` // Never expose in JSON
	Role             string    `json:"role"`
	RefreshTokenHash string    `json:"-"` // single slot, rotation overwrites
	TOTPSecret       string    `json:"-"`
	TOTPEnabled      bool      `json:"totp_enabled"`
	TOTPVerifiedAt   *time.Time `json:"-"`
	BackupCodes      string    `json:"-"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email        string `json:"email"`
	EmployeeCode string `json:"employee_code"`
	Password     string `json:"password"`
}

// RefreshRequest represents the request body for refresh-token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Account      *Account  `json:"account,omitempty"`
	Employee     *Employee `json:"employee,omitempty"`
}

// TwoFactorPendingResponse is returned when an admin with 2FA enabled
// passes the password step; the temp token must be exchanged at the
// 2FA endpoint within 5 minutes.
type TwoFactorPendingResponse struct {
	TwoFactorRequired bool   `json:"two_factor_required"`
	TempToken         string `json:"temp_token"`
}

// CreateAccountRequest represents the request body for creating a staff account
type CreateAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// UpdateAccountRequest is the allow-listed patch for staff accounts.
// Role is fixed at creation; there is no field for it here.
type UpdateAccountRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
