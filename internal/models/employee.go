package models

import "time"

// KYC verification states for an employee's Aadhaar submission.
const (
	KYCPending   = "pending"   // account created, nothing submitted
	KYCSubmitted = "submitted" // employee uploaded number + document
	KYCApproved  = "approved"
	KYCRejected  = "rejected"
)

// Employee is a field salesman, identified by employee code rather
// than email. Carries Aadhaar KYC state mutated by the employee
// (submit) and by admin (approve/reject).
type Employee struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	EmployeeCode     string    `json:"employee_code"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone"`
	PasswordHash     string    `json:"-"`
	RefreshTokenHash string    `json:"-"`
	AadhaarNumber    string    `json:"aadhaar_number,omitempty"`
	AadhaarURL       string    `json:"aadhaar_url,omitempty"`
	AadhaarKey       string    `json:"-"`
	KYCStatus        string    `json:"kyc_status"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreateEmployeeRequest represents the request body for registering an employee
type CreateEmployeeRequest struct {
	Name         string `json:"name"`
	EmployeeCode string `json:"employee_code"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
}

// UpdateEmployeeRequest is the allow-listed patch for employees.
type UpdateEmployeeRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ReviewKYCRequest represents the admin approve/reject decision.
type ReviewKYCRequest struct {
	Decision string `json:"decision"` // "approved" or "rejected"
	Remarks  string `json:"remarks,omitempty"`
}
