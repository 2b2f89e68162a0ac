package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"solar-backend/internal/config"
	"solar-backend/internal/timeutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by the short-lived access token.
type Claims struct {
	SubjectID int    `json:"subject_id"`
	Identity  string `json:"identity"` // email for staff, employee code for employees
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims carried by the long-lived refresh token. Signed with
// a separate secret so the two token kinds can never be swapped.
type RefreshClaims struct {
	SubjectID int    `json:"subject_id"`
	Role      Role   `json:"role"`
	Type      string `json:"type"` // always "refresh"
	jwt.RegisteredClaims
}

type TokenManager struct {
	cfg *config.Config
}

func NewTokenManager(cfg *config.Config) *TokenManager {
	return &TokenManager{cfg: cfg}
}

// GenerateAccessToken creates a new access token (15 minutes by default)
func (t *TokenManager) GenerateAccessToken(subjectID int, identity, name string, role Role) (string, error) {
	now := timeutil.Now()
	expirationTime := now.Add(time.Duration(t.cfg.JWT.AccessMinutes) * time.Minute)

	claims := &Claims{
		SubjectID: subjectID,
		Identity:  identity,
		Name:      name,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    t.cfg.JWT.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.cfg.JWT.AccessSecret))
}

// GenerateRefreshToken creates a new refresh token (7 days by default)
func (t *TokenManager) GenerateRefreshToken(subjectID int, role Role) (string, error) {
	now := timeutil.Now()
	expirationTime := now.Add(time.Duration(t.cfg.JWT.RefreshDays) * 24 * time.Hour)

	claims := &RefreshClaims{
		SubjectID: subjectID,
		Role:      role,
		Type:      "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			// JWT timestamps have second resolution, so an ID claim is
			// what keeps two tokens minted back to back distinct. The
			// rotation slot stores a hash of the whole token; identical
			// tokens would make rotation a no-op.
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    t.cfg.JWT.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.cfg.JWT.RefreshSecret))
}

// ValidateAccessToken verifies an access token and returns the claims
func (t *TokenManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(t.cfg.JWT.AccessSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if !claims.Role.Valid() {
		return nil, errors.New("invalid role claim")
	}

	return claims, nil
}

// ValidateRefreshToken verifies a refresh token and returns the claims
func (t *TokenManager) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(t.cfg.JWT.RefreshSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Type != "refresh" {
		return nil, errors.New("invalid token type")
	}

	return claims, nil
}

// HashRefreshToken returns the fingerprint stored in the account's
// single refresh-token slot. Only the hash touches the database.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TempClaims for short-lived 2FA tokens (used between login step 1 and step 2)
type TempClaims struct {
	SubjectID int    `json:"subject_id"`
	Identity  string `json:"identity"`
	Type      string `json:"type"` // "2fa_pending"
	jwt.RegisteredClaims
}

// GenerateTempToken creates a short-lived token for 2FA verification (5 minutes)
func (t *TokenManager) GenerateTempToken(subjectID int, identity string) (string, error) {
	now := timeutil.Now()
	expirationTime := now.Add(5 * time.Minute)

	claims := &TempClaims{
		SubjectID: subjectID,
		Identity:  identity,
		Type:      "2fa_pending",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    t.cfg.JWT.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.cfg.JWT.AccessSecret))
}

// ValidateTempToken verifies a temporary 2FA token and returns the claims
func (t *TokenManager) ValidateTempToken(tokenString string) (*TempClaims, error) {
	claims := &TempClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(t.cfg.JWT.AccessSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Type != "2fa_pending" {
		return nil, errors.New("invalid token type")
	}

	return claims, nil
}
