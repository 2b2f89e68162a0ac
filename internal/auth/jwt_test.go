package auth

import (
	"testing"

	"solar-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenManager() *TokenManager {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "test-access-secret"
	cfg.JWT.RefreshSecret = "test-refresh-secret"
	cfg.JWT.AccessMinutes = 15
	cfg.JWT.RefreshDays = 7
	cfg.JWT.Issuer = "solar-backend-test"
	return NewTokenManager(cfg)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := testTokenManager()

	token, err := tm.GenerateAccessToken(42, "admin@example.com", "Admin", RoleAdmin)
	require.NoError(t, err)

	claims, err := tm.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.SubjectID)
	assert.Equal(t, "admin@example.com", claims.Identity)
	assert.Equal(t, "Admin", claims.Name)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tm := testTokenManager()

	token, err := tm.GenerateRefreshToken(7, RoleEmployee)
	require.NoError(t, err)

	claims, err := tm.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.SubjectID)
	assert.Equal(t, RoleEmployee, claims.Role)
	assert.Equal(t, "refresh", claims.Type)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	tm := testTokenManager()

	access, err := tm.GenerateAccessToken(1, "a@b.c", "A", RoleAdmin)
	require.NoError(t, err)
	refresh, err := tm.GenerateRefreshToken(1, RoleAdmin)
	require.NoError(t, err)

	// Separate signing secrets, so cross-validation must fail
	_, err = tm.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = tm.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestRefreshTokensAreUniquePerMint(t *testing.T) {
	tm := testTokenManager()

	// Same subject, same second: the ID claim must still make the
	// tokens (and therefore their stored hashes) distinct, or refresh
	// rotation would silently keep the old token alive.
	first, err := tm.GenerateRefreshToken(7, RoleEmployee)
	require.NoError(t, err)
	second, err := tm.GenerateRefreshToken(7, RoleEmployee)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, HashRefreshToken(first), HashRefreshToken(second))

	claims, err := tm.ValidateRefreshToken(second)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateAccessTokenRejectsWrongSecret(t *testing.T) {
	tm := testTokenManager()
	token, err := tm.GenerateAccessToken(1, "a@b.c", "A", RoleAdmin)
	require.NoError(t, err)

	other := testTokenManager()
	other.cfg.JWT.AccessSecret = "different-secret"
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestTempTokenRoundTrip(t *testing.T) {
	tm := testTokenManager()

	token, err := tm.GenerateTempToken(9, "admin@example.com")
	require.NoError(t, err)

	claims, err := tm.ValidateTempToken(token)
	require.NoError(t, err)
	assert.Equal(t, 9, claims.SubjectID)
	assert.Equal(t, "2fa_pending", claims.Type)

	// A temp token must never pass as a full access token: the access
	// path requires a valid role claim.
	_, err = tm.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestHashRefreshToken(t *testing.T) {
	h1 := HashRefreshToken("token-one")
	h2 := HashRefreshToken("token-one")
	h3 := HashRefreshToken("token-two")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64) // sha256 hex
}
