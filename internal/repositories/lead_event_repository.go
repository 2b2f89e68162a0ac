package repositories

import (
	"context"

	"solar-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadEventRepository struct {
	DB *pgxpool.Pool
}

func NewLeadEventRepository(db *pgxpool.Pool) *LeadEventRepository {
	return &LeadEventRepository{DB: db}
}

// Create appends one status change to the lead's audit trail
func (r *LeadEventRepository) Create(ctx context.Context, e *models.LeadStatusEvent) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO lead_status_events(lead_id, from_status, to_status, changed_by_id, changed_by_role, notes)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at`,
		e.LeadID, e.FromStatus, e.ToStatus, e.ChangedByID, e.ChangedByRole, e.Notes,
	).Scan(&e.ID, &e.CreatedAt)
}

// ListByLead returns a lead's status history, oldest first
func (r *LeadEventRepository) ListByLead(ctx context.Context, leadID int) ([]*models.LeadStatusEvent, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, lead_id, from_status, to_status, changed_by_id, changed_by_role, COALESCE(notes, ''), created_at
         FROM lead_status_events WHERE lead_id=$1 ORDER BY created_at ASC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.LeadStatusEvent
	for rows.Next() {
		var e models.LeadStatusEvent
		err := rows.Scan(&e.ID, &e.LeadID, &e.FromStatus, &e.ToStatus,
			&e.ChangedByID, &e.ChangedByRole, &e.Notes, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
