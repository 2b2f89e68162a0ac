package services

import (
	"context"
	"fmt"
	"log"
	"regexp"

	"solar-backend/internal/auth"
	"solar-backend/internal/models"
	"solar-backend/internal/storage"
)

// EmployeeStore is what EmployeeService needs from the employees table.
// *repositories.EmployeeRepository satisfies it.
type EmployeeStore interface {
	Create(ctx context.Context, e *models.Employee) error
	Get(ctx context.Context, id int) (*models.Employee, error)
	GetByCode(ctx context.Context, code string) (*models.Employee, error)
	List(ctx context.Context) ([]*models.Employee, error)
	ListByKYCStatus(ctx context.Context, status string) ([]*models.Employee, error)
	Update(ctx context.Context, e *models.Employee) error
	Delete(ctx context.Context, id int) error
	SubmitKYC(ctx context.Context, id int, number, url, key string) error
	SetKYCStatus(ctx context.Context, id int, status string) error
}

var aadhaarPattern = regexp.MustCompile(`^\d{12}$`)

// EmployeeService owns employee registration and the Aadhaar KYC flow.
type EmployeeService struct {
	Repo  EmployeeStore
	Store storage.ObjectStore
}

func NewEmployeeService(repo EmployeeStore, store storage.ObjectStore) *EmployeeService {
	return &EmployeeService{Repo: repo, Store: store}
}

// Register creates a new field employee
func (s *EmployeeService) Register(ctx context.Context, req *models.CreateEmployeeRequest) (*models.Employee, error) {
	if req.Name == "" || req.EmployeeCode == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, employee_code, and password are required", ErrValidation)
	}

	if existing, err := s.Repo.GetByCode(ctx, req.EmployeeCode); err == nil && existing.ID != 0 {
		return nil, fmt.Errorf("%w: employee code already in use", ErrValidation)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	emp := &models.Employee{
		Name:         req.Name,
		EmployeeCode: req.EmployeeCode,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hashed,
		KYCStatus:    models.KYCPending,
		IsActive:     true,
	}
	if err := s.Repo.Create(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

func (s *EmployeeService) Get(ctx context.Context, id int) (*models.Employee, error) {
	emp, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return emp, nil
}

func (s *EmployeeService) List(ctx context.Context) ([]*models.Employee, error) {
	return s.Repo.List(ctx)
}

// ListByKYCStatus returns employees in one KYC state, for the admin
// review queue.
func (s *EmployeeService) ListByKYCStatus(ctx context.Context, status string) ([]*models.Employee, error) {
	switch status {
	case models.KYCPending, models.KYCSubmitted, models.KYCApproved, models.KYCRejected:
	default:
		return nil, fmt.Errorf("%w: unknown kyc status %q", ErrValidation, status)
	}
	return s.Repo.ListByKYCStatus(ctx, status)
}

// Update applies the allow-listed patch fields. The employee code is
// fixed at registration.
func (s *EmployeeService) Update(ctx context.Context, id int, req *models.UpdateEmployeeRequest) (*models.Employee, error) {
	emp, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.Name != nil {
		emp.Name = *req.Name
	}
	if req.Email != nil {
		emp.Email = *req.Email
	}
	if req.Phone != nil {
		emp.Phone = *req.Phone
	}
	if req.IsActive != nil {
		emp.IsActive = *req.IsActive
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", ErrValidation)
		}
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		emp.PasswordHash = hashed
	}

	if err := s.Repo.Update(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// Delete removes the employee record. Their leads stay behind with the
// denormalized name and code still attached.
func (s *EmployeeService) Delete(ctx context.Context, id int) error {
	emp, err := s.Repo.Get(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if emp.AadhaarKey != "" {
		if err := s.Store.Delete(ctx, emp.AadhaarKey); err != nil {
			log.Printf("[Employee] aadhaar object cleanup failed for employee %d: %v", id, err)
		}
	}
	return nil
}

// SubmitKYC uploads the Aadhaar document and records the number,
// moving the employee into the review queue.
func (s *EmployeeService) SubmitKYC(ctx context.Context, id int, number, fileName, contentType string, fileData []byte) (*models.Employee, error) {
	if !aadhaarPattern.MatchString(number) {
		return nil, fmt.Errorf("%w: aadhaar number must be 12 digits", ErrValidation)
	}
	if len(fileData) == 0 {
		return nil, fmt.Errorf("%w: aadhaar document is required", ErrValidation)
	}

	emp, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	key := storage.BuildKey("aadhaar", fileName)
	url, err := s.Store.Upload(ctx, key, contentType, fileData)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.SubmitKYC(ctx, id, number, url, key); err != nil {
		return nil, err
	}

	// Replacing a previous submission leaves the old object behind;
	// clean it up after the new reference is durable.
	if emp.AadhaarKey != "" && emp.AadhaarKey != key {
		if err := s.Store.Delete(ctx, emp.AadhaarKey); err != nil {
			log.Printf("[Employee] stale aadhaar object cleanup failed for employee %d: %v", id, err)
		}
	}

	return s.Repo.Get(ctx, id)
}

// ReviewKYC applies the admin approve/reject decision to a submitted
// KYC record.
func (s *EmployeeService) ReviewKYC(ctx context.Context, id int, req *models.ReviewKYCRequest) (*models.Employee, error) {
	if req.Decision != models.KYCApproved && req.Decision != models.KYCRejected {
		return nil, fmt.Errorf("%w: decision must be approved or rejected", ErrValidation)
	}

	emp, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if emp.KYCStatus != models.KYCSubmitted {
		return nil, fmt.Errorf("%w: kyc is not awaiting review", ErrValidation)
	}

	if err := s.Repo.SetKYCStatus(ctx, id, req.Decision); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}
