package services

import (
	"context"
	"errors"
	"testing"

	"solar-backend/internal/auth"
	"solar-backend/internal/config"
	"solar-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountStore struct {
	accounts map[int]*models.Account
	nextID   int
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[int]*models.Account), nextID: 1}
}

func (f *fakeAccountStore) Create(_ context.Context, a *models.Account) error {
	a.ID = f.nextID
	f.nextID++
	copied := *a
	f.accounts[a.ID] = &copied
	return nil
}

func (f *fakeAccountStore) Get(_ context.Context, id int) (*models.Account, error) {
	if a, ok := f.accounts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return &models.Account{}, errors.New("no rows")
}

func (f *fakeAccountStore) GetByEmailAndRole(_ context.Context, email, role string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email && a.Role == role {
			copied := *a
			return &copied, nil
		}
	}
	return &models.Account{}, errors.New("no rows")
}

func (f *fakeAccountStore) ListByRole(_ context.Context, role string) ([]*models.Account, error) {
	var out []*models.Account
	for _, a := range f.accounts {
		if a.Role == role {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeAccountStore) Update(_ context.Context, a *models.Account) error {
	if _, ok := f.accounts[a.ID]; !ok {
		return errors.New("no rows")
	}
	copied := *a
	f.accounts[a.ID] = &copied
	return nil
}

func (f *fakeAccountStore) Delete(_ context.Context, id int) error {
	delete(f.accounts, id)
	return nil
}

func (f *fakeAccountStore) SetRefreshTokenHash(_ context.Context, id int, hash string) error {
	if a, ok := f.accounts[id]; ok {
		a.RefreshTokenHash = hash
		return nil
	}
	return errors.New("no rows")
}

func (f *fakeAccountStore) ClearRefreshTokenHash(_ context.Context, id int) error {
	if a, ok := f.accounts[id]; ok {
		a.RefreshTokenHash = ""
	}
	return nil
}

type fakeEmployeeAuthStore struct {
	employees map[int]*models.Employee
}

func newFakeEmployeeAuthStore() *fakeEmployeeAuthStore {
	return &fakeEmployeeAuthStore{employees: make(map[int]*models.Employee)}
}

func (f *fakeEmployeeAuthStore) Get(_ context.Context, id int) (*models.Employee, error) {
	if e, ok := f.employees[id]; ok {
		copied := *e
		return &copied, nil
	}
	return &models.Employee{}, errors.New("no rows")
}

func (f *fakeEmployeeAuthStore) GetByCode(_ context.Context, code string) (*models.Employee, error) {
	for _, e := range f.employees {
		if e.EmployeeCode == code {
			copied := *e
			return &copied, nil
		}
	}
	return &models.Employee{}, errors.New("no rows")
}

func (f *fakeEmployeeAuthStore) SetRefreshTokenHash(_ context.Context, id int, hash string) error {
	if e, ok := f.employees[id]; ok {
		e.RefreshTokenHash = hash
		return nil
	}
	return errors.New("no rows")
}

func (f *fakeEmployeeAuthStore) ClearRefreshTokenHash(_ context.Context, id int) error {
	if e, ok := f.employees[id]; ok {
		e.RefreshTokenHash = ""
	}
	return nil
}

type fakeLoginLogStore struct {
	logs []*models.LoginLog
}

func (f *fakeLoginLogStore) Create(_ context.Context, l *models.LoginLog) error {
	f.logs = append(f.logs, l)
	return nil
}

func testAccountService(t *testing.T) (*AccountService, *fakeAccountStore, *fakeEmployeeAuthStore, *fakeLoginLogStore) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessMinutes = 15
	cfg.JWT.RefreshDays = 7
	cfg.JWT.Issuer = "test"

	accounts := newFakeAccountStore()
	employees := newFakeEmployeeAuthStore()
	logs := &fakeLoginLogStore{}
	svc := NewAccountService(accounts, employees, auth.NewTokenManager(cfg), logs)
	return svc, accounts, employees, logs
}

func seedAccount(t *testing.T, store *fakeAccountStore, email, password, role string) *models.Account {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	acc := &models.Account{Name: "Test", Email: email, PasswordHash: hash, Role: role, IsActive: true}
	require.NoError(t, store.Create(context.Background(), acc))
	return acc
}

func seedEmployee(t *testing.T, store *fakeEmployeeAuthStore, code, password string) *models.Employee {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	emp := &models.Employee{ID: len(store.employees) + 1, Name: "Sales", EmployeeCode: code, PasswordHash: hash, IsActive: true, KYCStatus: models.KYCPending}
	store.employees[emp.ID] = emp
	return emp
}

func TestLoginStaffSuccess(t *testing.T) {
	svc, accounts, _, logs := testAccountService(t)
	seedAccount(t, accounts, "admin@example.com", "pass123", "admin")

	resp, pending, err := svc.Login(context.Background(), auth.RoleAdmin,
		&models.LoginRequest{Email: "admin@example.com", Password: "pass123"}, "1.2.3.4", "test-agent")
	require.NoError(t, err)
	require.Nil(t, pending)
	require.NotNil(t, resp)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotNil(t, resp.Account)
	assert.Nil(t, resp.Employee)

	// Stored slot holds the hash of the freshly issued refresh token
	stored, _ := accounts.Get(context.Background(), resp.Account.ID)
	assert.Equal(t, auth.HashRefreshToken(resp.RefreshToken), stored.RefreshTokenHash)

	require.Len(t, logs.logs, 1)
	assert.Equal(t, "admin@example.com", logs.logs[0].Identity)
	assert.Equal(t, "1.2.3.4", logs.logs[0].IPAddress)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, accounts, _, logs := testAccountService(t)
	seedAccount(t, accounts, "admin@example.com", "pass123", "admin")

	_, _, err := svc.Login(context.Background(), auth.RoleAdmin,
		&models.LoginRequest{Email: "admin@example.com", Password: "wrong"}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, logs.logs)
}

func TestLoginRoleNamespacesAreDisjoint(t *testing.T) {
	svc, accounts, _, _ := testAccountService(t)
	seedAccount(t, accounts, "m@example.com", "pass123", "manager")

	// Same email, wrong role path
	_, _, err := svc.Login(context.Background(), auth.RoleChief,
		&models.LoginRequest{Email: "m@example.com", Password: "pass123"}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, accounts, _, _ := testAccountService(t)
	acc := seedAccount(t, accounts, "admin@example.com", "pass123", "admin")
	accounts.accounts[acc.ID].IsActive = false

	_, _, err := svc.Login(context.Background(), auth.RoleAdmin,
		&models.LoginRequest{Email: "admin@example.com", Password: "pass123"}, "", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLoginEmployeeByCode(t *testing.T) {
	svc, _, employees, _ := testAccountService(t)
	seedEmployee(t, employees, "EMP001", "fieldpass")

	resp, pending, err := svc.Login(context.Background(), auth.RoleEmployee,
		&models.LoginRequest{EmployeeCode: "EMP001", Password: "fieldpass"}, "", "")
	require.NoError(t, err)
	require.Nil(t, pending)
	assert.NotNil(t, resp.Employee)
	assert.Nil(t, resp.Account)
}

func TestLoginAdminWith2FAPending(t *testing.T) {
	svc, accounts, _, logs := testAccountService(t)
	acc := seedAccount(t, accounts, "admin@example.com", "pass123", "admin")
	accounts.accounts[acc.ID].TOTPEnabled = true

	resp, pending, err := svc.Login(context.Background(), auth.RoleAdmin,
		&models.LoginRequest{Email: "admin@example.com", Password: "pass123"}, "", "")
	require.NoError(t, err)
	assert.Nil(t, resp)
	require.NotNil(t, pending)
	assert.True(t, pending.TwoFactorRequired)
	assert.NotEmpty(t, pending.TempToken)

	// No tokens and no login log until the second factor passes
	assert.Empty(t, logs.logs)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, accounts, _, _ := testAccountService(t)
	seedAccount(t, accounts, "admin@example.com", "pass123", "admin")

	first, _, err := svc.Login(context.Background(), auth.RoleAdmin,
		&models.LoginRequest{Email: "admin@example.com", Password: "pass123"}, "", "")
	require.NoError(t, err)

	second, err := svc.Refresh(context.Background(), auth.RoleAdmin, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The first refresh token was rotated out and must now be rejected
	_, err = svc.Refresh(context.Background(), auth.RoleAdmin, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	// The rotated token still works
	_, err = svc.Refresh(context.Background(), auth.RoleAdmin, second.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshWrongRolePath(t *testing.T) {
	svc, accounts, _, _ := testAccountService(t)
	seedAccount(t, accounts, "admin@example.com", "pass123", "admin")

	resp, _, err := svc.Login(context.Background(), auth.RoleAdmin,
		&models.LoginRequest{Email: "admin@example.com", Password: "pass123"}, "", "")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), auth.RoleManager, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestLogoutClearsRefreshSlot(t *testing.T) {
	svc, accounts, _, _ := testAccountService(t)
	seedAccount(t, accounts, "admin@example.com", "pass123", "admin")

	resp, _, err := svc.Login(context.Background(), auth.RoleAdmin,
		&models.LoginRequest{Email: "admin@example.com", Password: "pass123"}, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), auth.RoleAdmin, resp.Account.ID))

	_, err = svc.Refresh(context.Background(), auth.RoleAdmin, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestCreateStaff(t *testing.T) {
	svc, _, _, _ := testAccountService(t)

	acc, err := svc.CreateStaff(context.Background(), auth.RoleManager, &models.CreateAccountRequest{
		Name: "Manager", Email: "mgr@example.com", Password: "pass123",
	})
	require.NoError(t, err)
	assert.Equal(t, "manager", acc.Role)
	assert.True(t, acc.IsActive)
	assert.NotEqual(t, "pass123", acc.PasswordHash)

	// Duplicate email within the same role is rejected
	_, err = svc.CreateStaff(context.Background(), auth.RoleManager, &models.CreateAccountRequest{
		Name: "Other", Email: "mgr@example.com", Password: "pass456",
	})
	assert.ErrorIs(t, err, ErrValidation)

	// Employees are not created through the staff path
	_, err = svc.CreateStaff(context.Background(), auth.RoleEmployee, &models.CreateAccountRequest{
		Name: "E", Email: "e@example.com", Password: "pass123",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateStaffPatchesFields(t *testing.T) {
	svc, accounts, _, _ := testAccountService(t)
	acc := seedAccount(t, accounts, "chief@example.com", "pass123", "chief")

	name := "New Name"
	inactive := false
	updated, err := svc.UpdateStaff(context.Background(), acc.ID, &models.UpdateAccountRequest{
		Name: &name, IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "chief@example.com", updated.Email)
	assert.Equal(t, "chief", updated.Role)
}

func TestRegisterAdminBootstrapOnly(t *testing.T) {
	svc, accounts, _, _ := testAccountService(t)

	acc, err := svc.RegisterAdmin(context.Background(), &models.CreateAccountRequest{
		Name: "First Admin", Email: "admin@example.com", Password: "pass123",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", acc.Role)

	// Once an admin exists the endpoint is closed
	_, err = svc.RegisterAdmin(context.Background(), &models.CreateAccountRequest{
		Name: "Second Admin", Email: "admin2@example.com", Password: "pass123",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	// A seeded admin through any path also closes it
	assert.Len(t, accounts.accounts, 1)
}
