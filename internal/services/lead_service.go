package services

import (
	"context"
	"fmt"
	"log"

	"solar-backend/internal/cache"
	"solar-backend/internal/metrics"
	"solar-backend/internal/models"
	"solar-backend/internal/storage"
)

// LeadStore is what LeadService needs from the leads tables.
// *repositories.LeadRepository satisfies it.
type LeadStore interface {
	Create(ctx context.Context, l *models.Lead) error
	Get(ctx context.Context, id int) (*models.Lead, error)
	List(ctx context.Context) ([]*models.Lead, error)
	ListBySalesman(ctx context.Context, salesmanID int) ([]*models.Lead, error)
	UpdateStatus(ctx context.Context, id int, status models.LeadStatus) error
	Update(ctx context.Context, l *models.Lead) error
	Delete(ctx context.Context, id int) error
	SetCompiledFile(ctx context.Context, id int, url, key string) error
	ClearCompiledFile(ctx context.Context, id int) error
}

// LeadEventStore is the status audit trail.
// *repositories.LeadEventRepository satisfies it.
type LeadEventStore interface {
	Create(ctx context.Context, e *models.LeadStatusEvent) error
	ListByLead(ctx context.Context, leadID int) ([]*models.LeadStatusEvent, error)
}

// UploadFile is one multipart file carried from handler to service.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// LeadService owns the lead lifecycle: creation with document uploads,
// status pipeline changes, patches, deletion and the compiled file.
type LeadService struct {
	Repo   LeadStore
	Events LeadEventStore
	Store  storage.ObjectStore
}

func NewLeadService(repo LeadStore, events LeadEventStore, store storage.ObjectStore) *LeadService {
	return &LeadService{Repo: repo, Events: events, Store: store}
}

// CreateLead uploads the attached documents one by one, then inserts
// the lead with its document rows in a single transaction. Any upload
// failure aborts the whole creation; objects already uploaded are
// deleted best-effort and logged if that fails.
func (s *LeadService) CreateLead(ctx context.Context, salesman *models.Employee, req *models.CreateLeadRequest, files []UploadFile) (*models.Lead, error) {
	if req.CustomerName == "" {
		return nil, fmt.Errorf("%w: customer_name is required", ErrValidation)
	}
	if req.CustomerContact == "" {
		return nil, fmt.Errorf("%w: customer_contact is required", ErrValidation)
	}
	if req.CustomerAddress == "" {
		return nil, fmt.Errorf("%w: customer_address is required", ErrValidation)
	}

	lead := &models.Lead{
		SalesmanID:      salesman.ID,
		SalesmanName:    salesman.Name,
		SalesmanCode:    salesman.EmployeeCode,
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		CustomerAddress: req.CustomerAddress,
		GPSLocation:     req.GPSLocation,
		CapacityKW:      req.CapacityKW,
		QuotedAmount:    req.QuotedAmount,
		BankName:        req.BankName,
		BankBranch:      req.BankBranch,
		Status:          models.InitialLeadStatus,
	}

	var uploaded []string
	for i, f := range files {
		key := storage.BuildKey("leads", f.Name)
		url, err := s.Store.Upload(ctx, key, f.ContentType, f.Data)
		if err != nil {
			metrics.StorageUploadsTotal.WithLabelValues("leads", "error").Inc()
			s.cleanupObjects(ctx, uploaded)
			return nil, fmt.Errorf("document upload failed at position %d: %w", i, err)
		}
		metrics.StorageUploadsTotal.WithLabelValues("leads", "ok").Inc()
		uploaded = append(uploaded, key)
		lead.Documents = append(lead.Documents, models.LeadDocument{
			FileName:  f.Name,
			FileURL:   url,
			ObjectKey: key,
			Position:  i,
		})
	}

	if err := s.Repo.Create(ctx, lead); err != nil {
		s.cleanupObjects(ctx, uploaded)
		return nil, err
	}

	metrics.LeadsCreatedTotal.Inc()
	cache.InvalidateLeadCaches(ctx)
	return lead, nil
}

func (s *LeadService) cleanupObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.Store.Delete(ctx, key); err != nil {
			log.Printf("[Lead] orphaned object %s left in storage: %v", key, err)
		}
	}
}

func (s *LeadService) GetLead(ctx context.Context, id int) (*models.Lead, error) {
	lead, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return lead, nil
}

// ListLeads returns every lead, for back-office roles
func (s *LeadService) ListLeads(ctx context.Context) ([]*models.Lead, error) {
	return s.Repo.List(ctx)
}

// ListLeadsBySalesman returns one employee's leads
func (s *LeadService) ListLeadsBySalesman(ctx context.Context, salesmanID int) ([]*models.Lead, error) {
	return s.Repo.ListBySalesman(ctx, salesmanID)
}

// UpdateStatus moves a lead to another pipeline stage. The target must
// be one of the known stages, but any jump between stages is allowed;
// the audit trail records who moved what where.
func (s *LeadService) UpdateStatus(ctx context.Context, id int, req *models.UpdateLeadStatusRequest, actorID int, actorRole string) (*models.Lead, error) {
	if !models.ValidLeadStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown lead status %q", ErrValidation, req.Status)
	}
	target := models.LeadStatus(req.Status)

	lead, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if lead.Status == target {
		return lead, nil
	}

	if err := s.Repo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}

	event := &models.LeadStatusEvent{
		LeadID:        id,
		FromStatus:    lead.Status,
		ToStatus:      target,
		ChangedByID:   actorID,
		ChangedByRole: actorRole,
		Notes:         req.Notes,
	}
	if err := s.Events.Create(ctx, event); err != nil {
		log.Printf("[Lead] failed to record status event for lead %d: %v", id, err)
	}

	metrics.LeadStatusUpdatesTotal.WithLabelValues(string(target)).Inc()
	cache.InvalidateLeadCaches(ctx)

	lead.Status = target
	return lead, nil
}

// UpdateLead applies the allow-listed patch fields. Owner and status
// never change through this path.
func (s *LeadService) UpdateLead(ctx context.Context, id int, req *models.UpdateLeadRequest) (*models.Lead, error) {
	lead, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.CustomerName != nil {
		lead.CustomerName = *req.CustomerName
	}
	if req.CustomerContact != nil {
		lead.CustomerContact = *req.CustomerContact
	}
	if req.CustomerAddress != nil {
		lead.CustomerAddress = *req.CustomerAddress
	}
	if req.GPSLocation != nil {
		lead.GPSLocation = *req.GPSLocation
	}
	if req.CapacityKW != nil {
		lead.CapacityKW = *req.CapacityKW
	}
	if req.QuotedAmount != nil {
		lead.QuotedAmount = *req.QuotedAmount
	}
	if req.BankName != nil {
		lead.BankName = *req.BankName
	}
	if req.BankBranch != nil {
		lead.BankBranch = *req.BankBranch
	}

	if err := s.Repo.Update(ctx, lead); err != nil {
		return nil, err
	}
	cache.InvalidateLeadCaches(ctx)
	return lead, nil
}

// DeleteLead removes the lead row, then its storage objects. Object
// deletion failures are logged and never roll the delete back.
func (s *LeadService) DeleteLead(ctx context.Context, id int) error {
	lead, err := s.Repo.Get(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	var keys []string
	for _, d := range lead.Documents {
		keys = append(keys, d.ObjectKey)
	}
	if lead.CompiledFileKey != "" {
		keys = append(keys, lead.CompiledFileKey)
	}
	s.cleanupObjects(ctx, keys)

	cache.InvalidateLeadCaches(ctx)
	return nil
}

// SetCompiledFile uploads the consolidated PDF and swaps the lead's
// reference. The previous object, if any, is deleted after the new
// reference is durable so the lead never points at nothing.
func (s *LeadService) SetCompiledFile(ctx context.Context, id int, file UploadFile) (*models.Lead, error) {
	lead, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	key := storage.BuildKey("compiled", file.Name)
	url, err := s.Store.Upload(ctx, key, file.ContentType, file.Data)
	if err != nil {
		metrics.StorageUploadsTotal.WithLabelValues("compiled", "error").Inc()
		return nil, err
	}
	metrics.StorageUploadsTotal.WithLabelValues("compiled", "ok").Inc()

	if err := s.Repo.SetCompiledFile(ctx, id, url, key); err != nil {
		s.cleanupObjects(ctx, []string{key})
		return nil, err
	}

	if lead.CompiledFileKey != "" {
		s.cleanupObjects(ctx, []string{lead.CompiledFileKey})
	}

	lead.CompiledFileURL = url
	lead.CompiledFileKey = key
	cache.InvalidateLeadCaches(ctx)
	return lead, nil
}

// DeleteCompiledFile clears the compiled PDF reference and removes the
// object by its stored key.
func (s *LeadService) DeleteCompiledFile(ctx context.Context, id int) error {
	lead, err := s.Repo.Get(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if lead.CompiledFileKey == "" {
		return fmt.Errorf("%w: lead has no compiled file", ErrNotFound)
	}

	if err := s.Repo.ClearCompiledFile(ctx, id); err != nil {
		return err
	}
	s.cleanupObjects(ctx, []string{lead.CompiledFileKey})
	cache.InvalidateLeadCaches(ctx)
	return nil
}

// ListStatusEvents returns a lead's status audit trail
func (s *LeadService) ListStatusEvents(ctx context.Context, leadID int) ([]*models.LeadStatusEvent, error) {
	if _, err := s.Repo.Get(ctx, leadID); err != nil {
		return nil, ErrNotFound
	}
	return s.Events.ListByLead(ctx, leadID)
}
