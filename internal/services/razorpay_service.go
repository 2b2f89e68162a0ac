package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"time"

	"solar-backend/internal/cache"
	"solar-backend/internal/models"
	"solar-backend/internal/repositories"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayService collects booking advances against leads through
// Razorpay checkout. Captured payments move the lead to the
// ADVANCE_RECEIVED stage.
type RazorpayService struct {
	transactionRepo   *repositories.OnlineTransactionRepository
	systemSettingRepo *repositories.SystemSettingRepository
	leads             *LeadService
	// Fallback credentials from environment (used if DB credentials not set)
	envKeyID         string
	envKeySecret     string
	envWebhookSecret string
}

func NewRazorpayService(
	keyID, keySecret, webhookSecret string,
	transactionRepo *repositories.OnlineTransactionRepository,
	systemSettingRepo *repositories.SystemSettingRepository,
	leads *LeadService,
) *RazorpayService {
	return &RazorpayService{
		transactionRepo:   transactionRepo,
		systemSettingRepo: systemSettingRepo,
		leads:             leads,
		envKeyID:          keyID,
		envKeySecret:      keySecret,
		envWebhookSecret:  webhookSecret,
	}
}

// getCredentials returns the Razorpay credentials (from DB first, then env fallback)
func (s *RazorpayService) getCredentials(ctx context.Context) (keyID, keySecret, webhookSecret string) {
	if setting, err := s.systemSettingRepo.Get(ctx, "razorpay_key_id"); err == nil && setting.SettingValue != "" {
		keyID = setting.SettingValue
	}
	if setting, err := s.systemSettingRepo.Get(ctx, "razorpay_key_secret"); err == nil && setting.SettingValue != "" {
		keySecret = setting.SettingValue
	}
	if setting, err := s.systemSettingRepo.Get(ctx, "razorpay_webhook_secret"); err == nil && setting.SettingValue != "" {
		webhookSecret = setting.SettingValue
	}

	if keyID == "" {
		keyID = s.envKeyID
	}
	if keySecret == "" {
		keySecret = s.envKeySecret
	}
	if webhookSecret == "" {
		webhookSecret = s.envWebhookSecret
	}

	return keyID, keySecret, webhookSecret
}

func (s *RazorpayService) getClient(ctx context.Context) *razorpay.Client {
	keyID, keySecret, _ := s.getCredentials(ctx)
	if keyID == "" || keySecret == "" {
		return nil
	}
	return razorpay.NewClient(keyID, keySecret)
}

func (s *RazorpayService) getKeyID(ctx context.Context) string {
	keyID, _, _ := s.getCredentials(ctx)
	return keyID
}

func (s *RazorpayService) getKeySecret(ctx context.Context) string {
	_, keySecret, _ := s.getCredentials(ctx)
	return keySecret
}

func (s *RazorpayService) getWebhookSecret(ctx context.Context) string {
	_, _, webhookSecret := s.getCredentials(ctx)
	return webhookSecret
}

// IsEnabled checks if online payments are enabled in system settings
func (s *RazorpayService) IsEnabled(ctx context.Context) bool {
	setting, err := s.systemSettingRepo.Get(ctx, "online_payment_enabled")
	if err != nil {
		return false
	}
	return setting.SettingValue == "true"
}

// GetFeePercent returns the configured fee percentage
func (s *RazorpayService) GetFeePercent(ctx context.Context) float64 {
	setting, err := s.systemSettingRepo.Get(ctx, "online_payment_fee_percent")
	if err != nil {
		return 2.5 // Default 2.5%
	}

	fee, err := strconv.ParseFloat(setting.SettingValue, 64)
	if err != nil {
		return 2.5
	}
	return fee
}

// CalculateFee calculates the transaction fee for a given amount
func (s *RazorpayService) CalculateFee(amount float64, feePercent float64) float64 {
	return float64(int((amount*feePercent/100)*100+0.5)) / 100 // Round to 2 decimal places
}

// GetPaymentStatus returns payment status info for the client checkout
func (s *RazorpayService) GetPaymentStatus(ctx context.Context) *models.PaymentStatusResponse {
	return &models.PaymentStatusResponse{
		Enabled:    s.IsEnabled(ctx),
		FeePercent: s.GetFeePercent(ctx),
		KeyID:      s.getKeyID(ctx),
	}
}

// CreateOrder opens a Razorpay order for a lead's booking advance.
func (s *RazorpayService) CreateOrder(ctx context.Context, req *models.CreateAdvanceOrderRequest) (*models.CreateOrderResponse, error) {
	if !s.IsEnabled(ctx) {
		return nil, fmt.Errorf("online payments are currently disabled")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	lead, err := s.leads.GetLead(ctx, req.LeadID)
	if err != nil {
		return nil, err
	}

	client := s.getClient(ctx)
	if client == nil {
		return nil, fmt.Errorf("razorpay client not configured")
	}

	feePercent := s.GetFeePercent(ctx)
	feeAmount := s.CalculateFee(req.Amount, feePercent)
	totalAmount := req.Amount + feeAmount

	// Razorpay amounts are in paise
	amountPaise := int(totalAmount * 100)

	orderData := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  fmt.Sprintf("lead_%d_%d", lead.ID, time.Now().Unix()),
		"notes": map[string]interface{}{
			"lead_id":          lead.ID,
			"customer_name":    lead.CustomerName,
			"customer_contact": lead.CustomerContact,
		},
	}

	order, err := client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}

	orderID := order["id"].(string)

	tx := &models.OnlineTransaction{
		RazorpayOrderID: orderID,
		LeadID:          lead.ID,
		CustomerName:    lead.CustomerName,
		CustomerContact: lead.CustomerContact,
		Amount:          req.Amount,
		FeeAmount:       feeAmount,
		TotalAmount:     totalAmount,
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	return &models.CreateOrderResponse{
		OrderID:     orderID,
		Amount:      int(req.Amount * 100),
		FeeAmount:   int(feeAmount * 100),
		TotalAmount: amountPaise,
		Currency:    "INR",
		KeyID:       s.getKeyID(ctx),
		FeePercent:  feePercent,
	}, nil
}

// VerifyPayment verifies the checkout callback signature and marks the
// transaction captured.
func (s *RazorpayService) VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.OnlineTransaction, error) {
	if !s.verifySignature(ctx, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		_ = s.transactionRepo.UpdatePaymentFailed(ctx, req.RazorpayOrderID, "Invalid signature")
		return nil, fmt.Errorf("invalid payment signature")
	}

	tx, err := s.transactionRepo.GetByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, fmt.Errorf("transaction not found: %w", err)
	}

	if tx.Status == models.OnlineTxStatusSuccess {
		return tx, nil // Already processed
	}

	// Fetch payment details from Razorpay for UTR and method
	utr := ""
	method := ""
	if client := s.getClient(ctx); client != nil {
		payment, err := client.Payment.Fetch(req.RazorpayPaymentID, nil, nil)
		if err != nil {
			log.Printf("[Razorpay] Failed to fetch payment details: %v", err)
		}
		if payment != nil {
			if v, ok := payment["acquirer_data"].(map[string]interface{}); ok {
				if u, ok := v["upi_transaction_id"].(string); ok {
					utr = u
				}
				if u, ok := v["bank_transaction_id"].(string); ok && utr == "" {
					utr = u
				}
				if u, ok := v["rrn"].(string); ok && utr == "" {
					utr = u
				}
			}
			if m, ok := payment["method"].(string); ok {
				method = m
			}
		}
	}

	if err := s.transactionRepo.UpdatePaymentSuccess(ctx, req.RazorpayOrderID, req.RazorpayPaymentID, method, utr); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.advanceLead(ctx, tx.LeadID)
	cache.InvalidatePaymentCaches(ctx)

	return s.transactionRepo.GetByOrderID(ctx, req.RazorpayOrderID)
}

// advanceLead moves the lead to ADVANCE_RECEIVED after a captured
// payment. Failure is logged, never surfaced; the money is already in.
func (s *RazorpayService) advanceLead(ctx context.Context, leadID int) {
	_, err := s.leads.UpdateStatus(ctx, leadID, &models.UpdateLeadStatusRequest{
		Status: string(models.StatusAdvanceReceived),
		Notes:  "booking advance captured online",
	}, 0, "system")
	if err != nil {
		log.Printf("[Razorpay] Failed to advance lead %d: %v", leadID, err)
	}
}

// verifySignature verifies the Razorpay payment signature
func (s *RazorpayService) verifySignature(ctx context.Context, orderID, paymentID, signature string) bool {
	keySecret := s.getKeySecret(ctx)
	if keySecret == "" {
		return false
	}
	data := orderID + "|" + paymentID
	h := hmac.New(sha256.New, []byte(keySecret))
	h.Write([]byte(data))
	expectedSignature := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expectedSignature), []byte(signature))
}

// VerifyWebhookSignature verifies the webhook signature
func (s *RazorpayService) VerifyWebhookSignature(ctx context.Context, body []byte, signature string) bool {
	webhookSecret := s.getWebhookSecret(ctx)
	if webhookSecret == "" {
		return true // Skip verification if not configured
	}

	h := hmac.New(sha256.New, []byte(webhookSecret))
	h.Write(body)
	expectedSignature := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expectedSignature), []byte(signature))
}

// ProcessWebhook dispatches a verified webhook event
func (s *RazorpayService) ProcessWebhook(ctx context.Context, event string, paymentData map[string]interface{}) error {
	switch event {
	case "payment.captured":
		return s.handlePaymentCaptured(ctx, paymentData)
	case "payment.failed":
		return s.handlePaymentFailed(ctx, paymentData)
	default:
		log.Printf("[Razorpay] Unhandled webhook event: %s", event)
		return nil
	}
}

func (s *RazorpayService) handlePaymentCaptured(ctx context.Context, paymentData map[string]interface{}) error {
	entity := webhookEntity(paymentData)

	orderID, _ := entity["order_id"].(string)
	paymentID, _ := entity["id"].(string)
	if orderID == "" {
		return fmt.Errorf("missing order_id in webhook")
	}

	// The checkout callback may already have captured this order
	processed, _ := s.transactionRepo.IsPaymentProcessed(ctx, orderID)
	if processed {
		log.Printf("[Razorpay] Payment already processed: %s", orderID)
		return nil
	}

	tx, err := s.transactionRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("transaction not found: %w", err)
	}

	utr := ""
	method := ""
	if acquirerData, ok := entity["acquirer_data"].(map[string]interface{}); ok {
		if u, ok := acquirerData["upi_transaction_id"].(string); ok {
			utr = u
		}
		if u, ok := acquirerData["bank_transaction_id"].(string); ok && utr == "" {
			utr = u
		}
	}
	if m, ok := entity["method"].(string); ok {
		method = m
	}

	if err := s.transactionRepo.UpdatePaymentSuccess(ctx, orderID, paymentID, method, utr); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	s.advanceLead(ctx, tx.LeadID)
	cache.InvalidatePaymentCaches(ctx)
	return nil
}

func (s *RazorpayService) handlePaymentFailed(ctx context.Context, paymentData map[string]interface{}) error {
	entity := webhookEntity(paymentData)

	orderID, _ := entity["order_id"].(string)
	reason := "Payment failed"
	if errorData, ok := entity["error_description"].(string); ok {
		reason = errorData
	}

	if orderID != "" {
		return s.transactionRepo.UpdatePaymentFailed(ctx, orderID, reason)
	}
	return nil
}

// webhookEntity unwraps the nested payment entity from a webhook payload
func webhookEntity(paymentData map[string]interface{}) map[string]interface{} {
	paymentEntity, ok := paymentData["payment"].(map[string]interface{})
	if !ok {
		paymentEntity = paymentData
	}
	entity, ok := paymentEntity["entity"].(map[string]interface{})
	if !ok {
		entity = paymentEntity
	}
	return entity
}

// ListLeadTransactions returns a lead's advance payment attempts
func (s *RazorpayService) ListLeadTransactions(ctx context.Context, leadID int) ([]*models.OnlineTransaction, error) {
	return s.transactionRepo.ListByLead(ctx, leadID)
}
