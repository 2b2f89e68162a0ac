package repositories

import (
	"context"

	"solar-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EmployeeRepository struct {
	DB *pgxpool.Pool
}

func NewEmployeeRepository(db *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *models.Employee) error {
	if e.KYCStatus == "" {
		e.KYCStatus = models.KYCPending
	}
	if !e.IsActive {
		e.IsActive = true // Default to active
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO employees(name, employee_code, email, phone, password_hash, kyc_status, is_active)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at, updated_at`,
		e.Name, e.EmployeeCode, e.Email, e.Phone, e.PasswordHash, e.KYCStatus, e.IsActive,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *EmployeeRepository) Get(ctx context.Context, id int) (*models.Employee, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, employee_code, COALESCE(email, ''), COALESCE(phone, ''), password_hash,
		 COALESCE(refresh_token_hash, ''), COALESCE(aadhaar_number, ''), COALESCE(aadhaar_url, ''), COALESCE(aadhaar_key, ''),
		 kyc_status, is_active, created_at, updated_at
         FROM employees WHERE id=$1`, id)

	var e models.Employee
	err := row.Scan(&e.ID, &e.Name, &e.EmployeeCode, &e.Email, &e.Phone, &e.PasswordHash,
		&e.RefreshTokenHash, &e.AadhaarNumber, &e.AadhaarURL, &e.AadhaarKey,
		&e.KYCStatus, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	return &e, err
}

// GetByCode resolves the login identity for the employee role.
func (r *EmployeeRepository) GetByCode(ctx context.Context, code string) (*models.Employee, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, employee_code, COALESCE(email, ''), COALESCE(phone, ''), password_hash,
		 COALESCE(refresh_token_hash, ''), COALESCE(aadhaar_number, ''), COALESCE(aadhaar_url, ''), COALESCE(aadhaar_key, ''),
		 kyc_status, is_active, created_at, updated_at
         FROM employees WHERE employee_code=$1`, code)

	var e models.Employee
	err := row.Scan(&e.ID, &e.Name, &e.EmployeeCode, &e.Email, &e.Phone, &e.PasswordHash,
		&e.RefreshTokenHash, &e.AadhaarNumber, &e.AadhaarURL, &e.AadhaarKey,
		&e.KYCStatus, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	return &e, err
}

// List returns all employees
func (r *EmployeeRepository) List(ctx context.Context) ([]*models.Employee, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, employee_code, COALESCE(email, ''), COALESCE(phone, ''),
		 COALESCE(aadhaar_number, ''), COALESCE(aadhaar_url, ''), kyc_status, is_active, created_at, updated_at
         FROM employees ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		var e models.Employee
		err := rows.Scan(&e.ID, &e.Name, &e.EmployeeCode, &e.Email, &e.Phone,
			&e.AadhaarNumber, &e.AadhaarURL, &e.KYCStatus, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, err
		}
		employees = append(employees, &e)
	}
	return employees, nil
}

// ListByKYCStatus returns employees filtered by KYC state
func (r *EmployeeRepository) ListByKYCStatus(ctx context.Context, status string) ([]*models.Employee, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, employee_code, COALESCE(email, ''), COALESCE(phone, ''),
		 COALESCE(aadhaar_number, ''), COALESCE(aadhaar_url, ''), kyc_status, is_active, created_at, updated_at
         FROM employees WHERE kyc_status=$1 ORDER BY updated_at DESC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		var e models.Employee
		err := rows.Scan(&e.ID, &e.Name, &e.EmployeeCode, &e.Email, &e.Phone,
			&e.AadhaarNumber, &e.AadhaarURL, &e.KYCStatus, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, err
		}
		employees = append(employees, &e)
	}
	return employees, nil
}

// Update updates an existing employee. Employee code never changes here.
func (r *EmployeeRepository) Update(ctx context.Context, e *models.Employee) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE employees SET name=$1, email=$2, phone=$3, password_hash=$4, is_active=$5, updated_at=CURRENT_TIMESTAMP
         WHERE id=$6`,
		e.Name, e.Email, e.Phone, e.PasswordHash, e.IsActive, e.ID)
	return err
}

// Delete deletes an employee. Leads keep their salesman_id on purpose,
// so past work stays attributed after the person leaves.
func (r *EmployeeRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	return err
}

// SetRefreshTokenHash stores the hash of the current refresh token
func (r *EmployeeRepository) SetRefreshTokenHash(ctx context.Context, id int, hash string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE employees SET refresh_token_hash=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		hash, id)
	return err
}

// ClearRefreshTokenHash revokes the current refresh token (logout)
func (r *EmployeeRepository) ClearRefreshTokenHash(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE employees SET refresh_token_hash=NULL, updated_at=CURRENT_TIMESTAMP WHERE id=$1`, id)
	return err
}

// SubmitKYC stores the Aadhaar number and uploaded document reference
// and moves KYC state to submitted.
func (r *EmployeeRepository) SubmitKYC(ctx context.Context, id int, number, url, key string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE employees SET aadhaar_number=$1, aadhaar_url=$2, aadhaar_key=$3, kyc_status=$4, updated_at=CURRENT_TIMESTAMP
         WHERE id=$5`,
		number, url, key, models.KYCSubmitted, id)
	return err
}

// SetKYCStatus records the admin review decision
func (r *EmployeeRepository) SetKYCStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE employees SET kyc_status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		status, id)
	return err
}

// Count returns the total number of employees
func (r *EmployeeRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n)
	return n, err
}

// CountByKYCStatus returns how many employees are in one KYC state
func (r *EmployeeRepository) CountByKYCStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE kyc_status=$1`, status).Scan(&n)
	return n, err
}
