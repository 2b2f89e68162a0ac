package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"time"

	"solar-backend/internal/models"
	"solar-backend/internal/repositories"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

const (
	totpIssuer        = "SolarCRM"
	backupCodeCount   = 10
	backupCodeLength  = 8
	maxFailedAttempts = 5
	rateLimitWindow   = 15 * time.Minute
)

// TOTPService owns 2FA enrollment and verification for admin accounts.
type TOTPService struct {
	accountRepo *repositories.AccountRepository
	totpRepo    *repositories.TOTPRepository
}

func NewTOTPService(accountRepo *repositories.AccountRepository, totpRepo *repositories.TOTPRepository) *TOTPService {
	return &TOTPService{
		accountRepo: accountRepo,
		totpRepo:    totpRepo,
	}
}

// GenerateSetup creates a new TOTP secret and QR code for an account
func (s *TOTPService) GenerateSetup(ctx context.Context, account *models.Account) (*models.TOTPSetupResponse, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: account.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	// Store the secret (not yet enabled)
	if err := s.accountRepo.SetTOTPSecret(ctx, account.ID, key.Secret()); err != nil {
		return nil, err
	}

	qrImage, err := key.Image(200, 200)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrImage); err != nil {
		return nil, err
	}
	qrBase64 := base64.StdEncoding.EncodeToString(buf.Bytes())

	return &models.TOTPSetupResponse{
		Secret:      key.Secret(),
		QRCode:      "data:image/png;base64," + qrBase64,
		Issuer:      totpIssuer,
		AccountName: account.Email,
	}, nil
}

// VerifyAndEnable verifies a TOTP code and enables 2FA for the account
func (s *TOTPService) VerifyAndEnable(ctx context.Context, accountID int, code string, ipAddress string) (*models.BackupCodesResponse, error) {
	if exceeded, err := s.isRateLimited(ctx, accountID, ipAddress); err != nil {
		return nil, err
	} else if exceeded {
		return nil, ErrTooManyAttempts
	}

	account, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.TOTPSecret == "" {
		return nil, ErrNoTOTPSecret
	}

	if !totp.Validate(code, account.TOTPSecret) {
		s.totpRepo.LogVerificationAttempt(ctx, accountID, ipAddress, false)
		return nil, ErrInvalidTOTPCode
	}

	s.totpRepo.LogVerificationAttempt(ctx, accountID, ipAddress, true)

	if err := s.accountRepo.EnableTOTP(ctx, accountID); err != nil {
		return nil, err
	}

	codes, err := s.generateBackupCodes(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &models.BackupCodesResponse{Codes: codes}, nil
}

// Verify validates a TOTP code or backup code during login
func (s *TOTPService) Verify(ctx context.Context, accountID int, code string, ipAddress string) (bool, error) {
	if exceeded, err := s.isRateLimited(ctx, accountID, ipAddress); err != nil {
		return false, err
	} else if exceeded {
		return false, ErrTooManyAttempts
	}

	account, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return false, err
	}

	if !account.TOTPEnabled || account.TOTPSecret == "" {
		return false, ErrTOTPNotEnabled
	}

	// Try TOTP code first
	if totp.Validate(code, account.TOTPSecret) {
		s.totpRepo.LogVerificationAttempt(ctx, accountID, ipAddress, true)
		return true, nil
	}

	// Try backup code
	if s.verifyAndConsumeBackupCode(ctx, accountID, code, account.BackupCodes) {
		s.totpRepo.LogVerificationAttempt(ctx, accountID, ipAddress, true)
		return true, nil
	}

	s.totpRepo.LogVerificationAttempt(ctx, accountID, ipAddress, false)
	return false, ErrInvalidTOTPCode
}

// Disable disables 2FA after verifying password and current TOTP code
func (s *TOTPService) Disable(ctx context.Context, accountID int, password, code string) error {
	account, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}

	if !totp.Validate(code, account.TOTPSecret) {
		return ErrInvalidTOTPCode
	}

	return s.accountRepo.DisableTOTP(ctx, accountID)
}

// RegenerateBackupCodes creates new backup codes (invalidates old ones)
func (s *TOTPService) RegenerateBackupCodes(ctx context.Context, accountID int, password string) (*models.BackupCodesResponse, error) {
	account, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}

	if !account.TOTPEnabled {
		return nil, ErrTOTPNotEnabled
	}

	codes, err := s.generateBackupCodes(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &models.BackupCodesResponse{Codes: codes}, nil
}

// GetStatus returns the 2FA status for an account
func (s *TOTPService) GetStatus(ctx context.Context, accountID int) (*models.TwoFAStatus, error) {
	account, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &models.TwoFAStatus{
		Enabled:        account.TOTPEnabled,
		EnabledAt:      account.TOTPVerifiedAt,
		HasBackupCodes: account.BackupCodes != "" && account.BackupCodes != "[]",
	}, nil
}

// generateBackupCodes creates 10 random backup codes
func (s *TOTPService) generateBackupCodes(ctx context.Context, accountID int) ([]string, error) {
	codes := make([]string, backupCodeCount)
	hashedCodes := make([]string, backupCodeCount)

	for i := 0; i < backupCodeCount; i++ {
		code := generateRandomCode(backupCodeLength)
		codes[i] = code

		hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashedCodes[i] = string(hash)
	}

	// Store hashed codes as JSON
	hashedJSON, err := json.Marshal(hashedCodes)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SetBackupCodes(ctx, accountID, string(hashedJSON)); err != nil {
		return nil, err
	}

	return codes, nil
}

// verifyAndConsumeBackupCode checks if code matches any backup code and removes it
func (s *TOTPService) verifyAndConsumeBackupCode(ctx context.Context, accountID int, code, storedCodes string) bool {
	if storedCodes == "" {
		return false
	}

	var hashedCodes []string
	if err := json.Unmarshal([]byte(storedCodes), &hashedCodes); err != nil {
		return false
	}

	for i, hash := range hashedCodes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil {
			// Remove the used code
			hashedCodes = append(hashedCodes[:i], hashedCodes[i+1:]...)
			updatedJSON, _ := json.Marshal(hashedCodes)
			s.accountRepo.SetBackupCodes(ctx, accountID, string(updatedJSON))
			return true
		}
	}

	return false
}

// isRateLimited checks if account/IP has exceeded failed attempt limit
func (s *TOTPService) isRateLimited(ctx context.Context, accountID int, ipAddress string) (bool, error) {
	accountAttempts, err := s.totpRepo.GetRecentFailedAttempts(ctx, accountID, rateLimitWindow)
	if err != nil {
		return false, err
	}
	if accountAttempts >= maxFailedAttempts {
		return true, nil
	}

	ipAttempts, err := s.totpRepo.GetRecentFailedAttemptsByIP(ctx, ipAddress, rateLimitWindow)
	if err != nil {
		return false, err
	}
	if ipAttempts >= maxFailedAttempts*2 { // Allow more for shared IPs
		return true, nil
	}

	return false, nil
}

// generateRandomCode creates a random alphanumeric code
func generateRandomCode(length int) string {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // Excludes similar chars: I, O, 0, 1
	code := make([]byte, length)
	randomBytes := make([]byte, length)
	rand.Read(randomBytes)
	for i := range code {
		code[i] = charset[int(randomBytes[i])%len(charset)]
	}
	return string(code)
}

// Custom errors
var (
	ErrTooManyAttempts = &TOTPError{Message: "too many failed attempts, please try again later"}
	ErrNoTOTPSecret    = &TOTPError{Message: "2FA setup not initiated"}
	ErrInvalidTOTPCode = &TOTPError{Message: "invalid verification code"}
	ErrTOTPNotEnabled  = &TOTPError{Message: "2FA is not enabled"}
	ErrInvalidPassword = &TOTPError{Message: "invalid password"}
)

type TOTPError struct {
	Message string
}

func (e *TOTPError) Error() string {
	return e.Message
}
