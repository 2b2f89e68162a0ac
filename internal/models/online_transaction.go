package models

import "time"

// Online transaction statuses
const (
	OnlineTxStatusCreated = "created"
	OnlineTxStatusSuccess = "success"
	OnlineTxStatusFailed  = "failed"
)

// OnlineTransaction records a Razorpay booking-advance payment
// against a lead.
type OnlineTransaction struct {
	ID                int       `json:"id"`
	RazorpayOrderID   string    `json:"razorpay_order_id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id,omitempty"`
	LeadID            int       `json:"lead_id"`
	CustomerName      string    `json:"customer_name"`
	CustomerContact   string    `json:"customer_contact"`
	Amount            float64   `json:"amount"`
	FeeAmount         float64   `json:"fee_amount"`
	TotalAmount       float64   `json:"total_amount"`
	Status            string    `json:"status"`
	FailureReason     string    `json:"failure_reason,omitempty"`
	Method            string    `json:"method,omitempty"`
	UTRNumber         string    `json:"utr_number,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateAdvanceOrderRequest starts an online advance payment for a lead.
type CreateAdvanceOrderRequest struct {
	LeadID int     `json:"lead_id"`
	Amount float64 `json:"amount"`
}

// CreateOrderResponse carries what the client checkout needs.
type CreateOrderResponse struct {
	OrderID     string  `json:"order_id"`
	Amount      int     `json:"amount"`       // paise
	FeeAmount   int     `json:"fee_amount"`   // paise
	TotalAmount int     `json:"total_amount"` // paise
	Currency    string  `json:"currency"`
	KeyID       string  `json:"key_id"`
	FeePercent  float64 `json:"fee_percent"`
}

// VerifyPaymentRequest carries the checkout callback fields.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// PaymentStatusResponse tells the client whether online payment is on.
type PaymentStatusResponse struct {
	Enabled    bool    `json:"enabled"`
	FeePercent float64 `json:"fee_percent"`
	KeyID      string  `json:"key_id"`
}
