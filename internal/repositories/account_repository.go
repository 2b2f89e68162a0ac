package repositories

import (
	"context"

	"solar-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository struct {
	DB *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{DB: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	if !a.IsActive {
		a.IsActive = true // Default to active
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO accounts(name, email, phone, password_hash, role, is_active)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at, updated_at`,
		a.Name, a.Email, a.Phone, a.PasswordHash, a.Role, a.IsActive,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepository) Get(ctx context.Context, id int) (*models.Account, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, email, COALESCE(phone, ''), password_hash, role, COALESCE(refresh_token_hash, ''), is_active, created_at, updated_at,
		 COALESCE(totp_secret, ''), COALESCE(totp_enabled, false), totp_verified_at, COALESCE(backup_codes, '')
         FROM accounts WHERE id=$1`, id)

	var a models.Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash,
		&a.Role, &a.RefreshTokenHash, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
		&a.TOTPSecret, &a.TOTPEnabled, &a.TOTPVerifiedAt, &a.BackupCodes)
	return &a, err
}

// GetByEmailAndRole resolves the login identity for a staff role.
// Role is part of the lookup so the per-role login paths stay disjoint.
func (r *AccountRepository) GetByEmailAndRole(ctx context.Context, email, role string) (*models.Account, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, email, COALESCE(phone, ''), password_hash, role, COALESCE(refresh_token_hash, ''), is_active, created_at, updated_at,
		 COALESCE(totp_secret, ''), COALESCE(totp_enabled, false), totp_verified_at, COALESCE(backup_codes, '')
         FROM accounts WHERE email=$1 AND role=$2`, email, role)

	var a models.Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash,
		&a.Role, &a.RefreshTokenHash, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
		&a.TOTPSecret, &a.TOTPEnabled, &a.TOTPVerifiedAt, &a.BackupCodes)
	return &a, err
}

// ListByRole returns all staff accounts of one role
func (r *AccountRepository) ListByRole(ctx context.Context, role string) ([]*models.Account, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, email, COALESCE(phone, ''), role, is_active, COALESCE(totp_enabled, false), created_at, updated_at
         FROM accounts WHERE role=$1 ORDER BY created_at DESC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var a models.Account
		err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Role,
			&a.IsActive, &a.TOTPEnabled, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, &a)
	}
	return accounts, nil
}

// Update updates an existing account. Role never changes here.
func (r *AccountRepository) Update(ctx context.Context, a *models.Account) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE accounts SET name=$1, email=$2, phone=$3, password_hash=$4, is_active=$5, updated_at=CURRENT_TIMESTAMP
         WHERE id=$6`,
		a.Name, a.Email, a.Phone, a.PasswordHash, a.IsActive, a.ID)
	return err
}

// Delete deletes a staff account
func (r *AccountRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	return err
}

// SetRefreshTokenHash stores the hash of the current refresh token.
// One slot per account, so rotation invalidates the previous token.
func (r *AccountRepository) SetRefreshTokenHash(ctx context.Context, id int, hash string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE accounts SET refresh_token_hash=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		hash, id)
	return err
}

// ClearRefreshTokenHash revokes the current refresh token (logout)
func (r *AccountRepository) ClearRefreshTokenHash(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE accounts SET refresh_token_hash=NULL, updated_at=CURRENT_TIMESTAMP WHERE id=$1`, id)
	return err
}

// SetTOTPSecret stores the TOTP secret during setup, before verification
func (r *AccountRepository) SetTOTPSecret(ctx context.Context, id int, secret string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE accounts SET totp_secret=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		secret, id)
	return err
}

// EnableTOTP marks 2FA as enabled after verification
func (r *AccountRepository) EnableTOTP(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE accounts SET totp_enabled=true, totp_verified_at=CURRENT_TIMESTAMP, updated_at=CURRENT_TIMESTAMP WHERE id=$1`,
		id)
	return err
}

// DisableTOTP disables 2FA and clears the secret and backup codes
func (r *AccountRepository) DisableTOTP(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE accounts SET totp_enabled=false, totp_secret=NULL, totp_verified_at=NULL, backup_codes=NULL, updated_at=CURRENT_TIMESTAMP WHERE id=$1`,
		id)
	return err
}

// SetBackupCodes stores hashed backup codes for an account
func (r *AccountRepository) SetBackupCodes(ctx context.Context, id int, hashedCodes string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE accounts SET backup_codes=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		hashedCodes, id)
	return err
}
