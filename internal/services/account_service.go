package services

import (
	"context"
	"fmt"
	"log"

	"solar-backend/internal/auth"
	"solar-backend/internal/models"
)

// AccountStore is what AccountService needs from the accounts table.
// *repositories.AccountRepository satisfies it; tests use a fake.
type AccountStore interface {
	Create(ctx context.Context, a *models.Account) error
	Get(ctx context.Context, id int) (*models.Account, error)
	GetByEmailAndRole(ctx context.Context, email, role string) (*models.Account, error)
	ListByRole(ctx context.Context, role string) ([]*models.Account, error)
	Update(ctx context.Context, a *models.Account) error
	Delete(ctx context.Context, id int) error
	SetRefreshTokenHash(ctx context.Context, id int, hash string) error
	ClearRefreshTokenHash(ctx context.Context, id int) error
}

// EmployeeAuthStore is the slice of the employees table the auth flows
// need. *repositories.EmployeeRepository satisfies it.
type EmployeeAuthStore interface {
	Get(ctx context.Context, id int) (*models.Employee, error)
	GetByCode(ctx context.Context, code string) (*models.Employee, error)
	SetRefreshTokenHash(ctx context.Context, id int, hash string) error
	ClearRefreshTokenHash(ctx context.Context, id int) error
}

// LoginLogStore records successful authentications.
type LoginLogStore interface {
	Create(ctx context.Context, l *models.LoginLog) error
}

// AccountService owns login, token rotation, logout and admin staff
// management across both identity tables.
type AccountService struct {
	Accounts  AccountStore
	Employees EmployeeAuthStore
	Tokens    *auth.TokenManager
	LoginLogs LoginLogStore
}

func NewAccountService(accounts AccountStore, employees EmployeeAuthStore, tokens *auth.TokenManager, loginLogs LoginLogStore) *AccountService {
	return &AccountService{
		Accounts:  accounts,
		Employees: employees,
		Tokens:    tokens,
		LoginLogs: loginLogs,
	}
}

// Login authenticates against the per-role identity table. Employees
// log in by employee code, everyone else by email. When an admin has
// 2FA enabled the returned pending response replaces the tokens; the
// client finishes at the 2FA verification endpoint.
func (s *AccountService) Login(ctx context.Context, role auth.Role, req *models.LoginRequest, ip, userAgent string) (*models.AuthResponse, *models.TwoFactorPendingResponse, error) {
	if req.Password == "" {
		return nil, nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	if role == auth.RoleEmployee {
		if req.EmployeeCode == "" {
			return nil, nil, fmt.Errorf("%w: employee_code is required", ErrValidation)
		}
		emp, err := s.Employees.GetByCode(ctx, req.EmployeeCode)
		if err != nil || !auth.VerifyPassword(emp.PasswordHash, req.Password) {
			return nil, nil, ErrInvalidCredentials
		}
		if !emp.IsActive {
			return nil, nil, ErrForbidden
		}

		resp, err := s.issueEmployeeTokens(ctx, emp)
		if err != nil {
			return nil, nil, err
		}
		s.logLogin(ctx, emp.ID, role, emp.EmployeeCode, ip, userAgent)
		return resp, nil, nil
	}

	if req.Email == "" {
		return nil, nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	acc, err := s.Accounts.GetByEmailAndRole(ctx, req.Email, role.String())
	if err != nil || !auth.VerifyPassword(acc.PasswordHash, req.Password) {
		return nil, nil, ErrInvalidCredentials
	}
	if !acc.IsActive {
		return nil, nil, ErrForbidden
	}

	if acc.TOTPEnabled {
		tempToken, err := s.Tokens.GenerateTempToken(acc.ID, acc.Email)
		if err != nil {
			return nil, nil, err
		}
		return nil, &models.TwoFactorPendingResponse{
			TwoFactorRequired: true,
			TempToken:         tempToken,
		}, nil
	}

	resp, err := s.issueAccountTokens(ctx, acc)
	if err != nil {
		return nil, nil, err
	}
	s.logLogin(ctx, acc.ID, role, acc.Email, ip, userAgent)
	return resp, nil, nil
}

// CompleteTwoFactorLogin issues tokens after the TOTP step succeeded.
func (s *AccountService) CompleteTwoFactorLogin(ctx context.Context, accountID int, ip, userAgent string) (*models.AuthResponse, error) {
	acc, err := s.Accounts.Get(ctx, accountID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !acc.IsActive {
		return nil, ErrForbidden
	}

	resp, err := s.issueAccountTokens(ctx, acc)
	if err != nil {
		return nil, err
	}
	s.logLogin(ctx, acc.ID, auth.Role(acc.Role), acc.Email, ip, userAgent)
	return resp, nil
}

// Refresh validates a refresh token against the subject's stored slot
// and rotates it. The old token stops working the moment the new pair
// is issued.
func (s *AccountService) Refresh(ctx context.Context, role auth.Role, refreshToken string) (*models.AuthResponse, error) {
	claims, err := s.Tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	// A refresh token only works on the login path that issued it.
	if claims.Role != role {
		return nil, ErrInvalidRefresh
	}

	hash := auth.HashRefreshToken(refreshToken)

	if role == auth.RoleEmployee {
		emp, err := s.Employees.Get(ctx, claims.SubjectID)
		if err != nil {
			return nil, ErrInvalidRefresh
		}
		if emp.RefreshTokenHash == "" || emp.RefreshTokenHash != hash {
			return nil, ErrInvalidRefresh
		}
		if !emp.IsActive {
			return nil, ErrForbidden
		}
		return s.issueEmployeeTokens(ctx, emp)
	}

	acc, err := s.Accounts.Get(ctx, claims.SubjectID)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	if acc.RefreshTokenHash == "" || acc.RefreshTokenHash != hash {
		return nil, ErrInvalidRefresh
	}
	if !acc.IsActive {
		return nil, ErrForbidden
	}
	if acc.Role != role.String() {
		return nil, ErrInvalidRefresh
	}
	return s.issueAccountTokens(ctx, acc)
}

// Logout revokes the subject's refresh token. The access token keeps
// working until it expires; only the refresh slot is cleared.
func (s *AccountService) Logout(ctx context.Context, role auth.Role, subjectID int) error {
	if role == auth.RoleEmployee {
		return s.Employees.ClearRefreshTokenHash(ctx, subjectID)
	}
	return s.Accounts.ClearRefreshTokenHash(ctx, subjectID)
}

func (s *AccountService) issueAccountTokens(ctx context.Context, acc *models.Account) (*models.AuthResponse, error) {
	role := auth.Role(acc.Role)
	access, err := s.Tokens.GenerateAccessToken(acc.ID, acc.Email, acc.Name, role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.GenerateRefreshToken(acc.ID, role)
	if err != nil {
		return nil, err
	}
	if err := s.Accounts.SetRefreshTokenHash(ctx, acc.ID, auth.HashRefreshToken(refresh)); err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Account:      acc,
	}, nil
}

func (s *AccountService) issueEmployeeTokens(ctx context.Context, emp *models.Employee) (*models.AuthResponse, error) {
	access, err := s.Tokens.GenerateAccessToken(emp.ID, emp.EmployeeCode, emp.Name, auth.RoleEmployee)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.GenerateRefreshToken(emp.ID, auth.RoleEmployee)
	if err != nil {
		return nil, err
	}
	if err := s.Employees.SetRefreshTokenHash(ctx, emp.ID, auth.HashRefreshToken(refresh)); err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Employee:     emp,
	}, nil
}

func (s *AccountService) logLogin(ctx context.Context, subjectID int, role auth.Role, identity, ip, userAgent string) {
	if s.LoginLogs == nil {
		return
	}
	err := s.LoginLogs.Create(ctx, &models.LoginLog{
		SubjectID: subjectID,
		Role:      role.String(),
		Identity:  identity,
		IPAddress: ip,
		UserAgent: userAgent,
	})
	if err != nil {
		log.Printf("[Auth] failed to record login log: %v", err)
	}
}

// CreateStaff creates a back-office account of the given role.
// RegisterAdmin bootstraps the first admin account. Once any admin
// exists the endpoint is closed and further admins are created through
// staff management.
func (s *AccountService) RegisterAdmin(ctx context.Context, req *models.CreateAccountRequest) (*models.Account, error) {
	existing, err := s.Accounts.ListByRole(ctx, auth.RoleAdmin.String())
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: admin already registered", ErrForbidden)
	}
	return s.CreateStaff(ctx, auth.RoleAdmin, req)
}

func (s *AccountService) CreateStaff(ctx context.Context, role auth.Role, req *models.CreateAccountRequest) (*models.Account, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", ErrValidation)
	}
	if role == auth.RoleEmployee {
		return nil, fmt.Errorf("%w: employees are registered through the employee endpoint", ErrValidation)
	}

	if existing, _ := s.Accounts.GetByEmailAndRole(ctx, req.Email, role.String()); existing != nil && existing.ID != 0 {
		return nil, fmt.Errorf("%w: account with this email already exists", ErrValidation)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	acc := &models.Account{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hashed,
		Role:         role.String(),
		IsActive:     true,
	}
	if err := s.Accounts.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// GetStaff returns one staff account
func (s *AccountService) GetStaff(ctx context.Context, id int) (*models.Account, error) {
	acc, err := s.Accounts.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return acc, nil
}

// ListStaff returns all accounts of one role
func (s *AccountService) ListStaff(ctx context.Context, role auth.Role) ([]*models.Account, error) {
	return s.Accounts.ListByRole(ctx, role.String())
}

// UpdateStaff applies the allow-listed patch fields. Role is never
// changed through this path.
func (s *AccountService) UpdateStaff(ctx context.Context, id int, req *models.UpdateAccountRequest) (*models.Account, error) {
	acc, err := s.Accounts.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.Name != nil {
		acc.Name = *req.Name
	}
	if req.Email != nil {
		acc.Email = *req.Email
	}
	if req.Phone != nil {
		acc.Phone = *req.Phone
	}
	if req.IsActive != nil {
		acc.IsActive = *req.IsActive
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", ErrValidation)
		}
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		acc.PasswordHash = hashed
	}

	if err := s.Accounts.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// DeleteStaff removes a staff account
func (s *AccountService) DeleteStaff(ctx context.Context, id int) error {
	if _, err := s.Accounts.Get(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.Accounts.Delete(ctx, id)
}
