package repositories

import (
	"context"

	"solar-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepository struct {
	DB *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, salesman_id, salesman_name, salesman_code,
	customer_name, COALESCE(customer_contact, ''), COALESCE(customer_address, ''), COALESCE(gps_location, ''),
	COALESCE(capacity_kw, 0), COALESCE(quoted_amount, 0), COALESCE(bank_name, ''), COALESCE(bank_branch, ''),
	status, COALESCE(compiled_file_url, ''), COALESCE(compiled_file_key, ''), created_at, updated_at`

func scanLead(row interface{ Scan(dest ...any) error }) (*models.Lead, error) {
	var l models.Lead
	err := row.Scan(&l.ID, &l.SalesmanID, &l.SalesmanName, &l.SalesmanCode,
		&l.CustomerName, &l.CustomerContact, &l.CustomerAddress, &l.GPSLocation,
		&l.CapacityKW, &l.QuotedAmount, &l.BankName, &l.BankBranch,
		&l.Status, &l.CompiledFileURL, &l.CompiledFileKey, &l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

// Create inserts the lead and its document rows in one transaction, so
// a half-written lead never becomes visible.
func (r *LeadRepository) Create(ctx context.Context, l *models.Lead) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if l.Status == "" {
		l.Status = models.InitialLeadStatus
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO leads(salesman_id, salesman_name, salesman_code,
		 customer_name, customer_contact, customer_address, gps_location,
		 capacity_kw, quoted_amount, bank_name, bank_branch, status)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
         RETURNING id, created_at, updated_at`,
		l.SalesmanID, l.SalesmanName, l.SalesmanCode,
		l.CustomerName, l.CustomerContact, l.CustomerAddress, l.GPSLocation,
		l.CapacityKW, l.QuotedAmount, l.BankName, l.BankBranch, l.Status,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range l.Documents {
		d := &l.Documents[i]
		d.LeadID = l.ID
		d.Position = i
		err = tx.QueryRow(ctx,
			`INSERT INTO lead_documents(lead_id, file_name, file_url, object_key, position)
             VALUES($1, $2, $3, $4, $5)
             RETURNING id, created_at`,
			d.LeadID, d.FileName, d.FileURL, d.ObjectKey, d.Position,
		).Scan(&d.ID, &d.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *LeadRepository) Get(ctx context.Context, id int) (*models.Lead, error) {
	l, err := scanLead(r.DB.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachDocuments(ctx, []*models.Lead{l}); err != nil {
		return nil, err
	}
	return l, nil
}

// List returns every lead with its documents, newest first
func (r *LeadRepository) List(ctx context.Context) ([]*models.Lead, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	if err := r.attachDocuments(ctx, leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// ListBySalesman returns one employee's leads with documents, newest first
func (r *LeadRepository) ListBySalesman(ctx context.Context, salesmanID int) ([]*models.Lead, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE salesman_id=$1 ORDER BY created_at DESC`, salesmanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	if err := r.attachDocuments(ctx, leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// attachDocuments loads document rows for a batch of leads in one query
func (r *LeadRepository) attachDocuments(ctx context.Context, leads []*models.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	byID := make(map[int]*models.Lead, len(leads))
	ids := make([]int, 0, len(leads))
	for _, l := range leads {
		l.Documents = []models.LeadDocument{}
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, lead_id, file_name, file_url, object_key, position, created_at
         FROM lead_documents WHERE lead_id = ANY($1) ORDER BY lead_id, position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d models.LeadDocument
		if err := rows.Scan(&d.ID, &d.LeadID, &d.FileName, &d.FileURL, &d.ObjectKey, &d.Position, &d.CreatedAt); err != nil {
			return err
		}
		if l, ok := byID[d.LeadID]; ok {
			l.Documents = append(l.Documents, d)
		}
	}
	return rows.Err()
}

// UpdateStatus sets the lead's pipeline stage
func (r *LeadRepository) UpdateStatus(ctx context.Context, id int, status models.LeadStatus) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE leads SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		status, id)
	return err
}

// Update rewrites the patchable lead fields. Owner and status are
// untouched here on purpose.
func (r *LeadRepository) Update(ctx context.Context, l *models.Lead) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE leads SET customer_name=$1, customer_contact=$2, customer_address=$3, gps_location=$4,
		 capacity_kw=$5, quoted_amount=$6, bank_name=$7, bank_branch=$8, updated_at=CURRENT_TIMESTAMP
         WHERE id=$9`,
		l.CustomerName, l.CustomerContact, l.CustomerAddress, l.GPSLocation,
		l.CapacityKW, l.QuotedAmount, l.BankName, l.BankBranch, l.ID)
	return err
}

// Delete removes the lead; document rows go with it via ON DELETE CASCADE
func (r *LeadRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM leads WHERE id=$1`, id)
	return err
}

// SetCompiledFile stores the consolidated PDF reference, replacing any
// previous one.
func (r *LeadRepository) SetCompiledFile(ctx context.Context, id int, url, key string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE leads SET compiled_file_url=$1, compiled_file_key=$2, updated_at=CURRENT_TIMESTAMP WHERE id=$3`,
		url, key, id)
	return err
}

// ClearCompiledFile removes the consolidated PDF reference
func (r *LeadRepository) ClearCompiledFile(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE leads SET compiled_file_url=NULL, compiled_file_key=NULL, updated_at=CURRENT_TIMESTAMP WHERE id=$1`, id)
	return err
}

// Count returns the total number of leads
func (r *LeadRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n)
	return n, err
}

// CountByStatus returns lead counts per pipeline stage
func (r *LeadRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.StatusCount
	for rows.Next() {
		var c models.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountByStatusForSalesman returns one employee's lead counts per stage
func (r *LeadRepository) CountByStatusForSalesman(ctx context.Context, salesmanID int) ([]models.StatusCount, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT status, COUNT(*) FROM leads WHERE salesman_id=$1 GROUP BY status`, salesmanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.StatusCount
	for rows.Next() {
		var c models.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountBySalesman returns lead counts grouped by owning employee, using
// the denormalized name and code so departed employees still show up.
func (r *LeadRepository) CountBySalesman(ctx context.Context) ([]models.EmployeeLeadCount, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT salesman_id, MAX(salesman_name), MAX(salesman_code), COUNT(*)
         FROM leads GROUP BY salesman_id ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.EmployeeLeadCount
	for rows.Next() {
		var c models.EmployeeLeadCount
		if err := rows.Scan(&c.SalesmanID, &c.SalesmanName, &c.SalesmanCode, &c.LeadCount); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
