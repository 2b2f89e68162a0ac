package services

import (
	"context"
	"errors"
	"testing"

	"solar-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeadStore struct {
	leads  map[int]*models.Lead
	nextID int
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{leads: map[int]*models.Lead{}, nextID: 1}
}

func (f *fakeLeadStore) Create(ctx context.Context, l *models.Lead) error {
	l.ID = f.nextID
	f.nextID++
	cp := *l
	f.leads[l.ID] = &cp
	return nil
}

func (f *fakeLeadStore) Get(ctx context.Context, id int) (*models.Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLeadStore) List(ctx context.Context) ([]*models.Lead, error) {
	var out []*models.Lead
	for _, l := range f.leads {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeLeadStore) ListBySalesman(ctx context.Context, salesmanID int) ([]*models.Lead, error) {
	var out []*models.Lead
	for _, l := range f.leads {
		if l.SalesmanID == salesmanID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLeadStore) UpdateStatus(ctx context.Context, id int, status models.LeadStatus) error {
	l, ok := f.leads[id]
	if !ok {
		return errors.New("no rows")
	}
	l.Status = status
	return nil
}

func (f *fakeLeadStore) Update(ctx context.Context, l *models.Lead) error {
	if _, ok := f.leads[l.ID]; !ok {
		return errors.New("no rows")
	}
	cp := *l
	f.leads[l.ID] = &cp
	return nil
}

func (f *fakeLeadStore) Delete(ctx context.Context, id int) error {
	if _, ok := f.leads[id]; !ok {
		return errors.New("no rows")
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeLeadStore) SetCompiledFile(ctx context.Context, id int, url, key string) error {
	l, ok := f.leads[id]
	if !ok {
		return errors.New("no rows")
	}
	l.CompiledFileURL = url
	l.CompiledFileKey = key
	return nil
}

func (f *fakeLeadStore) ClearCompiledFile(ctx context.Context, id int) error {
	l, ok := f.leads[id]
	if !ok {
		return errors.New("no rows")
	}
	l.CompiledFileURL = ""
	l.CompiledFileKey = ""
	return nil
}

type fakeLeadEventStore struct {
	events []*models.LeadStatusEvent
}

func (f *fakeLeadEventStore) Create(ctx context.Context, e *models.LeadStatusEvent) error {
	cp := *e
	f.events = append(f.events, &cp)
	return nil
}

func (f *fakeLeadEventStore) ListByLead(ctx context.Context, leadID int) ([]*models.LeadStatusEvent, error) {
	var out []*models.LeadStatusEvent
	for _, e := range f.events {
		if e.LeadID == leadID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeObjectStore records uploads and deletes, and can be told to fail
// uploads after the first n succeed.
type fakeObjectStore struct {
	objects   map[string]bool
	deleted   []string
	failAfter int
	uploads   int
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string]bool{}, failAfter: -1}
}

func (f *fakeObjectStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if f.failAfter >= 0 && f.uploads >= f.failAfter {
		return "", errors.New("bucket unavailable")
	}
	f.uploads++
	f.objects[key] = true
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func newLeadFixture() (*LeadService, *fakeLeadStore, *fakeLeadEventStore, *fakeObjectStore) {
	repo := newFakeLeadStore()
	events := &fakeLeadEventStore{}
	store := newFakeObjectStore()
	return NewLeadService(repo, events, store), repo, events, store
}

func testSalesman() *models.Employee {
	return &models.Employee{ID: 3, Name: "Ravi Kumar", EmployeeCode: "EMP003"}
}

func validLeadRequest() *models.CreateLeadRequest {
	return &models.CreateLeadRequest{
		CustomerName:    "Ramesh Kumar",
		CustomerContact: "9876543210",
		CustomerAddress: "12 MG Road",
	}
}

func TestCreateLead(t *testing.T) {
	svc, repo, _, store := newLeadFixture()
	ctx := context.Background()

	files := []UploadFile{
		{Name: "aadhaar.pdf", ContentType: "application/pdf", Data: []byte("a")},
		{Name: "electricity-bill.pdf", ContentType: "application/pdf", Data: []byte("b")},
	}
	lead, err := svc.CreateLead(ctx, testSalesman(), &models.CreateLeadRequest{
		CustomerName:    "Sunita Sharma",
		CustomerContact: "9876543210",
		CustomerAddress: "4 Station Road",
		CapacityKW:      5,
	}, files)
	require.NoError(t, err)

	assert.Equal(t, models.InitialLeadStatus, lead.Status)
	assert.Equal(t, 3, lead.SalesmanID)
	assert.Equal(t, "Ravi Kumar", lead.SalesmanName)
	assert.Equal(t, "EMP003", lead.SalesmanCode)

	require.Len(t, lead.Documents, 2)
	assert.Equal(t, 0, lead.Documents[0].Position)
	assert.Equal(t, 1, lead.Documents[1].Position)
	assert.Equal(t, "aadhaar.pdf", lead.Documents[0].FileName)
	assert.NotEmpty(t, lead.Documents[0].ObjectKey)

	stored, err := repo.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sunita Sharma", stored.CustomerName)
	assert.Len(t, store.objects, 2)
}

func TestCreateLeadRequiredFields(t *testing.T) {
	svc, repo, _, _ := newLeadFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		req  *models.CreateLeadRequest
	}{
		{"missing name", &models.CreateLeadRequest{CustomerContact: "9876543210", CustomerAddress: "12 MG Road"}},
		{"missing contact", &models.CreateLeadRequest{CustomerName: "Ramesh Kumar", CustomerAddress: "12 MG Road"}},
		{"missing address", &models.CreateLeadRequest{CustomerName: "Ramesh Kumar", CustomerContact: "9876543210"}},
		{"all missing", &models.CreateLeadRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateLead(ctx, testSalesman(), tt.req, nil)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, repo.leads)
}

func TestCreateLeadUploadFailureCleansUp(t *testing.T) {
	svc, repo, _, store := newLeadFixture()
	store.failAfter = 1 // second upload fails

	files := []UploadFile{
		{Name: "one.pdf", Data: []byte("1")},
		{Name: "two.pdf", Data: []byte("2")},
	}
	_, err := svc.CreateLead(context.Background(), testSalesman(), validLeadRequest(), files)
	require.Error(t, err)

	// The first object went up and must have been deleted again
	assert.Len(t, store.deleted, 1)
	assert.Empty(t, store.objects)
	assert.Empty(t, repo.leads)
}

func TestUpdateStatus(t *testing.T) {
	svc, _, events, _ := newLeadFixture()
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, testSalesman(), validLeadRequest(), nil)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, lead.ID, &models.UpdateLeadStatusRequest{
		Status: string(models.StatusVisitScheduled),
		Notes:  "site visit on Friday",
	}, 1, "manager")
	require.NoError(t, err)
	assert.Equal(t, models.StatusVisitScheduled, updated.Status)

	require.Len(t, events.events, 1)
	e := events.events[0]
	assert.Equal(t, lead.ID, e.LeadID)
	assert.Equal(t, models.StatusUnderDiscussion, e.FromStatus)
	assert.Equal(t, models.StatusVisitScheduled, e.ToStatus)
	assert.Equal(t, 1, e.ChangedByID)
	assert.Equal(t, "manager", e.ChangedByRole)
	assert.Equal(t, "site visit on Friday", e.Notes)
}

func TestUpdateStatusRejectsUnknownStage(t *testing.T) {
	svc, _, _, _ := newLeadFixture()
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, testSalesman(), validLeadRequest(), nil)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, lead.ID, &models.UpdateLeadStatusRequest{Status: "SHIPPED"}, 1, "admin")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateStatusSameStageIsNoOp(t *testing.T) {
	svc, _, events, _ := newLeadFixture()
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, testSalesman(), validLeadRequest(), nil)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, lead.ID, &models.UpdateLeadStatusRequest{
		Status: string(models.InitialLeadStatus),
	}, 1, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.InitialLeadStatus, updated.Status)
	assert.Empty(t, events.events, "no audit event for a no-op change")
}

func TestUpdateStatusLeadNotFound(t *testing.T) {
	svc, _, _, _ := newLeadFixture()

	_, err := svc.UpdateStatus(context.Background(), 99, &models.UpdateLeadStatusRequest{
		Status: string(models.StatusQuotationSent),
	}, 1, "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateLeadPatchesOnlyGivenFields(t *testing.T) {
	svc, _, _, _ := newLeadFixture()
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, testSalesman(), &models.CreateLeadRequest{
		CustomerName:    "Sunita Sharma",
		CustomerContact: "9876543210",
		CustomerAddress: "4 Station Road",
		QuotedAmount:    250000,
	}, nil)
	require.NoError(t, err)

	amount := 275000.0
	updated, err := svc.UpdateLead(ctx, lead.ID, &models.UpdateLeadRequest{QuotedAmount: &amount})
	require.NoError(t, err)

	assert.Equal(t, 275000.0, updated.QuotedAmount)
	assert.Equal(t, "Sunita Sharma", updated.CustomerName)
	assert.Equal(t, "9876543210", updated.CustomerContact)
}

func TestSetCompiledFileReplacesOldObject(t *testing.T) {
	svc, repo, _, store := newLeadFixture()
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, testSalesman(), validLeadRequest(), nil)
	require.NoError(t, err)

	first, err := svc.SetCompiledFile(ctx, lead.ID, UploadFile{Name: "compiled.pdf", Data: []byte("v1")})
	require.NoError(t, err)
	require.NotEmpty(t, first.CompiledFileKey)

	second, err := svc.SetCompiledFile(ctx, lead.ID, UploadFile{Name: "compiled.pdf", Data: []byte("v2")})
	require.NoError(t, err)
	assert.NotEqual(t, first.CompiledFileKey, second.CompiledFileKey)

	// The first object was deleted once the new reference was stored
	assert.Contains(t, store.deleted, first.CompiledFileKey)
	assert.True(t, store.objects[second.CompiledFileKey])

	stored, err := repo.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, second.CompiledFileKey, stored.CompiledFileKey)
}

func TestDeleteCompiledFile(t *testing.T) {
	svc, repo, _, store := newLeadFixture()
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, testSalesman(), validLeadRequest(), nil)
	require.NoError(t, err)

	// Nothing to delete yet
	err = svc.DeleteCompiledFile(ctx, lead.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	set, err := svc.SetCompiledFile(ctx, lead.ID, UploadFile{Name: "compiled.pdf", Data: []byte("v1")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCompiledFile(ctx, lead.ID))
	assert.Contains(t, store.deleted, set.CompiledFileKey)

	stored, err := repo.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.CompiledFileKey)
	assert.Empty(t, stored.CompiledFileURL)
}

func TestDeleteLeadCleansUpObjects(t *testing.T) {
	svc, repo, _, store := newLeadFixture()
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, testSalesman(), validLeadRequest(),
		[]UploadFile{{Name: "doc.pdf", Data: []byte("d")}})
	require.NoError(t, err)
	set, err := svc.SetCompiledFile(ctx, lead.ID, UploadFile{Name: "compiled.pdf", Data: []byte("v1")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLead(ctx, lead.ID))

	_, err = svc.GetLead(ctx, lead.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.objects)
	assert.Contains(t, store.deleted, set.CompiledFileKey)
	assert.Empty(t, repo.leads)
}

func TestListStatusEventsUnknownLead(t *testing.T) {
	svc, _, _, _ := newLeadFixture()

	_, err := svc.ListStatusEvents(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
