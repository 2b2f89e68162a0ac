package repositories

import (
	"context"
	"fmt"

	"solar-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OnlineTransactionRepository struct {
	DB *pgxpool.Pool
}

func NewOnlineTransactionRepository(db *pgxpool.Pool) *OnlineTransactionRepository {
	return &OnlineTransactionRepository{DB: db}
}

// Create records a freshly created Razorpay order for a lead advance
func (r *OnlineTransactionRepository) Create(ctx context.Context, tx *models.OnlineTransaction) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO online_transactions(razorpay_order_id, lead_id, customer_name, customer_contact,
		 amount, fee_amount, total_amount, status)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at, updated_at`,
		tx.RazorpayOrderID, tx.LeadID, tx.CustomerName, tx.CustomerContact,
		tx.Amount, tx.FeeAmount, tx.TotalAmount, models.OnlineTxStatusCreated,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create online transaction: %w", err)
	}

	tx.Status = models.OnlineTxStatusCreated
	return nil
}

// GetByOrderID retrieves a transaction by Razorpay order ID
func (r *OnlineTransactionRepository) GetByOrderID(ctx context.Context, orderID string) (*models.OnlineTransaction, error) {
	tx := &models.OnlineTransaction{}
	err := r.DB.QueryRow(ctx,
		`SELECT id, razorpay_order_id, COALESCE(razorpay_payment_id, ''), lead_id,
		 customer_name, COALESCE(customer_contact, ''),
		 amount, fee_amount, total_amount, status, COALESCE(failure_reason, ''),
		 COALESCE(payment_method, ''), COALESCE(utr_number, ''), created_at, updated_at
         FROM online_transactions WHERE razorpay_order_id=$1`, orderID).Scan(
		&tx.ID, &tx.RazorpayOrderID, &tx.RazorpayPaymentID, &tx.LeadID,
		&tx.CustomerName, &tx.CustomerContact,
		&tx.Amount, &tx.FeeAmount, &tx.TotalAmount, &tx.Status, &tx.FailureReason,
		&tx.Method, &tx.UTRNumber, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ListByLead returns a lead's advance payment attempts, newest first
func (r *OnlineTransactionRepository) ListByLead(ctx context.Context, leadID int) ([]*models.OnlineTransaction, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, razorpay_order_id, COALESCE(razorpay_payment_id, ''), lead_id,
		 customer_name, COALESCE(customer_contact, ''),
		 amount, fee_amount, total_amount, status, COALESCE(failure_reason, ''),
		 COALESCE(payment_method, ''), COALESCE(utr_number, ''), created_at, updated_at
         FROM online_transactions WHERE lead_id=$1 ORDER BY created_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.OnlineTransaction
	for rows.Next() {
		tx := &models.OnlineTransaction{}
		err := rows.Scan(
			&tx.ID, &tx.RazorpayOrderID, &tx.RazorpayPaymentID, &tx.LeadID,
			&tx.CustomerName, &tx.CustomerContact,
			&tx.Amount, &tx.FeeAmount, &tx.TotalAmount, &tx.Status, &tx.FailureReason,
			&tx.Method, &tx.UTRNumber, &tx.CreatedAt, &tx.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// UpdatePaymentSuccess marks the transaction captured with payment details
func (r *OnlineTransactionRepository) UpdatePaymentSuccess(ctx context.Context, orderID, paymentID, method, utr string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE online_transactions
         SET razorpay_payment_id=$2, payment_method=$3, utr_number=$4, status=$5, updated_at=CURRENT_TIMESTAMP
         WHERE razorpay_order_id=$1`,
		orderID, paymentID, method, utr, models.OnlineTxStatusSuccess)
	return err
}

// UpdatePaymentFailed marks the transaction as failed
func (r *OnlineTransactionRepository) UpdatePaymentFailed(ctx context.Context, orderID, reason string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE online_transactions
         SET status=$2, failure_reason=$3, updated_at=CURRENT_TIMESTAMP
         WHERE razorpay_order_id=$1`,
		orderID, models.OnlineTxStatusFailed, reason)
	return err
}

// IsPaymentProcessed reports whether an order has already been captured,
// used to keep the webhook and checkout-callback paths idempotent.
func (r *OnlineTransactionRepository) IsPaymentProcessed(ctx context.Context, orderID string) (bool, error) {
	var status string
	err := r.DB.QueryRow(ctx,
		`SELECT status FROM online_transactions WHERE razorpay_order_id=$1`, orderID).Scan(&status)
	if err != nil {
		return false, err
	}
	return status == models.OnlineTxStatusSuccess, nil
}

// SumSuccessful returns the total advance amount collected online
func (r *OnlineTransactionRepository) SumSuccessful(ctx context.Context) (float64, error) {
	var total float64
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM online_transactions WHERE status=$1`,
		models.OnlineTxStatusSuccess).Scan(&total)
	return total, err
}
