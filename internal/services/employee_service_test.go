package services

import (
	"context"
	"errors"
	"testing"

	"solar-backend/internal/auth"
	"solar-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployeeStore struct {
	employees map[int]*models.Employee
	nextID    int
}

func newFakeEmployeeStore() *fakeEmployeeStore {
	return &fakeEmployeeStore{employees: map[int]*models.Employee{}, nextID: 1}
}

func (f *fakeEmployeeStore) Create(ctx context.Context, e *models.Employee) error {
	e.ID = f.nextID
	f.nextID++
	cp := *e
	f.employees[e.ID] = &cp
	return nil
}

func (f *fakeEmployeeStore) Get(ctx context.Context, id int) (*models.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEmployeeStore) GetByCode(ctx context.Context, code string) (*models.Employee, error) {
	for _, e := range f.employees {
		if e.EmployeeCode == code {
			cp := *e
			return &cp, nil
		}
	}
	return nil, errors.New("no rows")
}

func (f *fakeEmployeeStore) List(ctx context.Context) ([]*models.Employee, error) {
	var out []*models.Employee
	for _, e := range f.employees {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeEmployeeStore) ListByKYCStatus(ctx context.Context, status string) ([]*models.Employee, error) {
	var out []*models.Employee
	for _, e := range f.employees {
		if e.KYCStatus == status {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeEmployeeStore) Update(ctx context.Context, e *models.Employee) error {
	if _, ok := f.employees[e.ID]; !ok {
		return errors.New("no rows")
	}
	cp := *e
	f.employees[e.ID] = &cp
	return nil
}

func (f *fakeEmployeeStore) Delete(ctx context.Context, id int) error {
	if _, ok := f.employees[id]; !ok {
		return errors.New("no rows")
	}
	delete(f.employees, id)
	return nil
}

func (f *fakeEmployeeStore) SubmitKYC(ctx context.Context, id int, number, url, key string) error {
	e, ok := f.employees[id]
	if !ok {
		return errors.New("no rows")
	}
	e.AadhaarNumber = number
	e.AadhaarURL = url
	e.AadhaarKey = key
	e.KYCStatus = models.KYCSubmitted
	return nil
}

func (f *fakeEmployeeStore) SetKYCStatus(ctx context.Context, id int, status string) error {
	e, ok := f.employees[id]
	if !ok {
		return errors.New("no rows")
	}
	e.KYCStatus = status
	return nil
}

func newEmployeeFixture() (*EmployeeService, *fakeEmployeeStore, *fakeObjectStore) {
	repo := newFakeEmployeeStore()
	store := newFakeObjectStore()
	return NewEmployeeService(repo, store), repo, store
}

func TestRegisterEmployee(t *testing.T) {
	svc, _, _ := newEmployeeFixture()
	ctx := context.Background()

	emp, err := svc.Register(ctx, &models.CreateEmployeeRequest{
		Name:         "Ravi Kumar",
		EmployeeCode: "EMP001",
		Email:        "ravi@example.com",
		Password:     "field-pass",
	})
	require.NoError(t, err)

	assert.NotZero(t, emp.ID)
	assert.Equal(t, models.KYCPending, emp.KYCStatus)
	assert.True(t, emp.IsActive)
	assert.NotEqual(t, "field-pass", emp.PasswordHash)
	assert.True(t, auth.VerifyPassword(emp.PasswordHash, "field-pass"))

	// Duplicate code is rejected
	_, err = svc.Register(ctx, &models.CreateEmployeeRequest{
		Name: "Other", EmployeeCode: "EMP001", Password: "x",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterEmployeeRequiredFields(t *testing.T) {
	svc, _, _ := newEmployeeFixture()

	_, err := svc.Register(context.Background(), &models.CreateEmployeeRequest{Name: "No Code", Password: "p"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitKYC(t *testing.T) {
	svc, repo, store := newEmployeeFixture()
	ctx := context.Background()

	emp, err := svc.Register(ctx, &models.CreateEmployeeRequest{
		Name: "Ravi", EmployeeCode: "EMP001", Password: "p",
	})
	require.NoError(t, err)

	updated, err := svc.SubmitKYC(ctx, emp.ID, "123456789012", "aadhaar.jpg", "image/jpeg", []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, models.KYCSubmitted, updated.KYCStatus)
	assert.Equal(t, "123456789012", updated.AadhaarNumber)
	assert.NotEmpty(t, updated.AadhaarKey)
	assert.True(t, store.objects[updated.AadhaarKey])

	// Resubmission replaces the stored object
	again, err := svc.SubmitKYC(ctx, emp.ID, "123456789012", "aadhaar-v2.jpg", "image/jpeg", []byte("img2"))
	require.NoError(t, err)
	assert.NotEqual(t, updated.AadhaarKey, again.AadhaarKey)
	assert.Contains(t, store.deleted, updated.AadhaarKey)

	stored, err := repo.Get(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, again.AadhaarKey, stored.AadhaarKey)
}

func TestSubmitKYCValidation(t *testing.T) {
	svc, _, _ := newEmployeeFixture()
	ctx := context.Background()

	emp, err := svc.Register(ctx, &models.CreateEmployeeRequest{
		Name: "Ravi", EmployeeCode: "EMP001", Password: "p",
	})
	require.NoError(t, err)

	_, err = svc.SubmitKYC(ctx, emp.ID, "12345", "a.jpg", "image/jpeg", []byte("img"))
	assert.ErrorIs(t, err, ErrValidation, "aadhaar number must be 12 digits")

	_, err = svc.SubmitKYC(ctx, emp.ID, "123456789012", "a.jpg", "image/jpeg", nil)
	assert.ErrorIs(t, err, ErrValidation, "document is required")
}

func TestReviewKYC(t *testing.T) {
	svc, _, _ := newEmployeeFixture()
	ctx := context.Background()

	emp, err := svc.Register(ctx, &models.CreateEmployeeRequest{
		Name: "Ravi", EmployeeCode: "EMP001", Password: "p",
	})
	require.NoError(t, err)

	// Not reviewable before submission
	_, err = svc.ReviewKYC(ctx, emp.ID, &models.ReviewKYCRequest{Decision: models.KYCApproved})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SubmitKYC(ctx, emp.ID, "123456789012", "a.jpg", "image/jpeg", []byte("img"))
	require.NoError(t, err)

	_, err = svc.ReviewKYC(ctx, emp.ID, &models.ReviewKYCRequest{Decision: "maybe"})
	assert.ErrorIs(t, err, ErrValidation)

	approved, err := svc.ReviewKYC(ctx, emp.ID, &models.ReviewKYCRequest{Decision: models.KYCApproved})
	require.NoError(t, err)
	assert.Equal(t, models.KYCApproved, approved.KYCStatus)

	// Already decided, no second review
	_, err = svc.ReviewKYC(ctx, emp.ID, &models.ReviewKYCRequest{Decision: models.KYCRejected})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListByKYCStatusRejectsUnknown(t *testing.T) {
	svc, _, _ := newEmployeeFixture()

	_, err := svc.ListByKYCStatus(context.Background(), "waiting")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteEmployeeRemovesAadhaarObject(t *testing.T) {
	svc, repo, store := newEmployeeFixture()
	ctx := context.Background()

	emp, err := svc.Register(ctx, &models.CreateEmployeeRequest{
		Name: "Ravi", EmployeeCode: "EMP001", Password: "p",
	})
	require.NoError(t, err)
	submitted, err := svc.SubmitKYC(ctx, emp.ID, "123456789012", "a.jpg", "image/jpeg", []byte("img"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, emp.ID))
	assert.Contains(t, store.deleted, submitted.AadhaarKey)
	assert.Empty(t, repo.employees)
}

func TestDeleteEmployeeLeavesLeadsInPlace(t *testing.T) {
	empSvc, _, _ := newEmployeeFixture()
	leadSvc, leadRepo, _, _ := newLeadFixture()
	ctx := context.Background()

	emp, err := empSvc.Register(ctx, &models.CreateEmployeeRequest{
		Name: "Ravi Kumar", EmployeeCode: "EMP007", Password: "p",
	})
	require.NoError(t, err)

	lead, err := leadSvc.CreateLead(ctx, emp, validLeadRequest(), nil)
	require.NoError(t, err)

	require.NoError(t, empSvc.Delete(ctx, emp.ID))

	// No cascade: the lead survives with the denormalized owner fields
	// still attached, even though the salesman row is gone.
	survivor, err := leadRepo.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, survivor.SalesmanID)
	assert.Equal(t, "Ravi Kumar", survivor.SalesmanName)
	assert.Equal(t, "EMP007", survivor.SalesmanCode)
}
