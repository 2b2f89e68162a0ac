package repositories

import (
	"context"

	"solar-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LoginLogRepository struct {
	DB *pgxpool.Pool
}

func NewLoginLogRepository(db *pgxpool.Pool) *LoginLogRepository {
	return &LoginLogRepository{DB: db}
}

// Create records a successful authentication
func (r *LoginLogRepository) Create(ctx context.Context, l *models.LoginLog) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO login_logs(subject_id, role, identity, ip_address, user_agent)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at`,
		l.SubjectID, l.Role, l.Identity, l.IPAddress, l.UserAgent,
	).Scan(&l.ID, &l.CreatedAt)
}

// List returns recent login events, newest first
func (r *LoginLogRepository) List(ctx context.Context, limit int) ([]*models.LoginLog, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, subject_id, role, identity, COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
         FROM login_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.LoginLog
	for rows.Next() {
		var l models.LoginLog
		err := rows.Scan(&l.ID, &l.SubjectID, &l.Role, &l.Identity, &l.IPAddress, &l.UserAgent, &l.CreatedAt)
		if err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
