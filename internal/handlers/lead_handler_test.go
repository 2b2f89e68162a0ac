package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"solar-backend/internal/auth"
	"solar-backend/internal/middleware"
	"solar-backend/internal/models"
	"solar-backend/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLeadStore struct {
	leads map[int]*models.Lead
}

func (s *stubLeadStore) Create(ctx context.Context, l *models.Lead) error {
	s.leads[l.ID] = l
	return nil
}

func (s *stubLeadStore) Get(ctx context.Context, id int) (*models.Lead, error) {
	l, ok := s.leads[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return l, nil
}

func (s *stubLeadStore) List(ctx context.Context) ([]*models.Lead, error) { return nil, nil }
func (s *stubLeadStore) ListBySalesman(ctx context.Context, salesmanID int) ([]*models.Lead, error) {
	return nil, nil
}
func (s *stubLeadStore) UpdateStatus(ctx context.Context, id int, status models.LeadStatus) error {
	return nil
}
func (s *stubLeadStore) Update(ctx context.Context, l *models.Lead) error { return nil }
func (s *stubLeadStore) Delete(ctx context.Context, id int) error         { return nil }
func (s *stubLeadStore) SetCompiledFile(ctx context.Context, id int, url, key string) error {
	return nil
}
func (s *stubLeadStore) ClearCompiledFile(ctx context.Context, id int) error { return nil }

type stubLeadEventStore struct{}

func (stubLeadEventStore) Create(ctx context.Context, e *models.LeadStatusEvent) error { return nil }
func (stubLeadEventStore) ListByLead(ctx context.Context, leadID int) ([]*models.LeadStatusEvent, error) {
	return nil, nil
}

type stubObjectStore struct{}

func (stubObjectStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	return "https://cdn.example.com/" + key, nil
}
func (stubObjectStore) Delete(ctx context.Context, key string) error { return nil }

func leadRequestAs(t *testing.T, method, target string, leadID string, subjectID int, role auth.Role) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(r.Context(), middleware.SubjectIDKey, subjectID)
	ctx = context.WithValue(ctx, middleware.RoleKey, role)
	r = r.WithContext(ctx)
	return mux.SetURLVars(r, map[string]string{"id": leadID})
}

func TestLeadReadEndpointsEnforceOwnership(t *testing.T) {
	store := &stubLeadStore{leads: map[int]*models.Lead{
		7: {ID: 7, SalesmanID: 3, CustomerName: "Ramesh Kumar", CompiledFileURL: "https://cdn.example.com/compiled/x.pdf"},
	}}
	svc := services.NewLeadService(store, stubLeadEventStore{}, stubObjectStore{})
	leadHandler := NewLeadHandler(svc, nil)
	compiledHandler := NewCompiledFileHandler(svc)

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		target    string
		subjectID int
		role      auth.Role
		want      int
	}{
		{"events as owner", leadHandler.StatusEvents, "/api/leads/7/events", 3, auth.RoleEmployee, http.StatusOK},
		{"events as other employee", leadHandler.StatusEvents, "/api/leads/7/events", 9, auth.RoleEmployee, http.StatusForbidden},
		{"events as manager", leadHandler.StatusEvents, "/api/leads/7/events", 1, auth.RoleManager, http.StatusOK},
		{"compiled file as owner", compiledHandler.Get, "/api/leads/7/compiled-file", 3, auth.RoleEmployee, http.StatusOK},
		{"compiled file as other employee", compiledHandler.Get, "/api/leads/7/compiled-file", 9, auth.RoleEmployee, http.StatusForbidden},
		{"compiled file as chief", compiledHandler.Get, "/api/leads/7/compiled-file", 1, auth.RoleChief, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, leadRequestAs(t, http.MethodGet, tt.target, "7", tt.subjectID, tt.role))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestLeadGetEnforcesOwnership(t *testing.T) {
	store := &stubLeadStore{leads: map[int]*models.Lead{
		7: {ID: 7, SalesmanID: 3, CustomerName: "Ramesh Kumar"},
	}}
	svc := services.NewLeadService(store, stubLeadEventStore{}, stubObjectStore{})
	h := NewLeadHandler(svc, nil)

	w := httptest.NewRecorder()
	h.Get(w, leadRequestAs(t, http.MethodGet, "/api/leads/7", "7", 9, auth.RoleEmployee))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	h.Get(w, leadRequestAs(t, http.MethodGet, "/api/leads/7", "7", 3, auth.RoleEmployee))
	assert.Equal(t, http.StatusOK, w.Code)
}
