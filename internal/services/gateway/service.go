// Package gateway reconciles asynchronous payment-gateway webhooks into
// wallet deposits. Delivery is at-least-once and unordered; idempotence
// comes from the ledger's reference constraint, not from this package.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"sevapoint/internal/apperrors"
	"sevapoint/internal/models"
)

// WalletService is the slice of the wallet surface the reconciler needs.
type WalletService interface {
	Deposit(ctx context.Context, userID uint, amount float64, reference string, metadata models.JSON) (*models.Transaction, bool, error)
	RecordFailedDeposit(ctx context.Context, userID uint, amount float64, reference string, metadata models.JSON) (*models.Transaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
}

// Notifier announces a reconciled deposit to its wallet owner. Best-effort.
type Notifier interface {
	DepositReceived(userID uint, amount float64)
}

type Service struct {
	secret   string
	wallets  WalletService
	notifier Notifier
}

// NewService builds the reconciler. The notifier may be nil.
func NewService(webhookSecret string, wallets WalletService, notifier Notifier) *Service {
	if webhookSecret == "" {
		panic("webhook secret is required")
	}
	if wallets == nil {
		panic("wallet service is required")
	}
	return &Service{secret: webhookSecret, wallets: wallets, notifier: notifier}
}

// VerifySignature checks the gateway's HMAC-SHA256 signature over the raw
// request body.
func (s *Service) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandleEvent verifies and dispatches one webhook delivery. A nil return
// means the event is acknowledged; the gateway retries anything else.
func (s *Service) HandleEvent(ctx context.Context, body []byte, signature string) error {
	if signature == "" || !s.VerifySignature(body, signature) {
		return apperrors.ErrInvalidSignature
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("malformed webhook payload: %w", err)
	}

	switch event.Name {
	case EventPaymentCaptured:
		return s.handlePaymentCaptured(ctx, event.Payload.Payment.Entity)
	case EventPaymentFailed:
		return s.handlePaymentFailed(ctx, event.Payload.Payment.Entity)
	case EventOrderPaid:
		return s.handleOrderPaid(ctx, event.Payload.Payment.Entity)
	default:
		log.Printf("unhandled gateway event: %s", event.Name)
		return nil
	}
}

func (s *Service) handlePaymentCaptured(ctx context.Context, payment PaymentEntity) error {
	userID, ok := userIDFromNotes(payment.Notes)
	if !ok {
		// A payment the upstream order creation never tagged with a user is
		// a data problem with the order, not something a retry can fix.
		log.Printf("no user id in notes for payment %s", payment.ID)
		return nil
	}

	amount := paiseToRupees(payment.Amount)
	metadata := models.JSON{
		"razorpay_payment_id": payment.ID,
		"razorpay_order_id":   payment.OrderID,
		"method":              payment.Method,
		"captured_at":         payment.CreatedAt,
	}
	_, created, err := s.wallets.Deposit(ctx, userID, amount, payment.ID, metadata)
	if err != nil {
		return fmt.Errorf("failed to credit deposit for payment %s: %w", payment.ID, err)
	}
	// Redeliveries return the already-settled transaction; only a fresh
	// credit is worth announcing.
	if s.notifier != nil && created {
		s.notifier.DepositReceived(userID, amount)
	}
	return nil
}

func (s *Service) handlePaymentFailed(ctx context.Context, payment PaymentEntity) error {
	userID, ok := userIDFromNotes(payment.Notes)
	if !ok {
		log.Printf("no user id in notes for failed payment %s", payment.ID)
		return nil
	}

	metadata := models.JSON{
		"razorpay_payment_id": payment.ID,
		"razorpay_order_id":   payment.OrderID,
		"error_code":          payment.ErrorCode,
		"error_description":   payment.ErrorDescription,
		"failed_at":           payment.CreatedAt,
	}
	_, err := s.wallets.RecordFailedDeposit(ctx, userID, paiseToRupees(payment.Amount), payment.ID, metadata)
	if err != nil {
		return fmt.Errorf("failed to record failed payment %s: %w", payment.ID, err)
	}
	return nil
}

// handleOrderPaid is the backup path for a missed payment.captured delivery.
func (s *Service) handleOrderPaid(ctx context.Context, payment PaymentEntity) error {
	existing, err := s.wallets.GetTransactionByReference(ctx, payment.ID)
	if err == nil && existing.Status == models.TransactionStatusCompleted {
		return nil
	}
	return s.handlePaymentCaptured(ctx, payment)
}

func userIDFromNotes(notes map[string]string) (uint, bool) {
	raw, ok := notes["user_id"]
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// paiseToRupees converts the gateway's integer minor units.
func paiseToRupees(paise int64) float64 {
	return float64(paise) / 100
}
