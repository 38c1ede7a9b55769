package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"
	"github.com/RLP0AI/roleplay-ai-app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// CreditsPerRupee is the fixed conversion rate: 1 currency unit buys
	// 15 credits.
	CreditsPerRupee int64 = 15

	minOrderAmount float64 = 1
	maxOrderAmount float64 = 100000
)

var (
	ErrInvalidAmount    = errors.New("amount out of range")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrPaymentNotFound  = errors.New("payment record not found")
)

// DuplicatePaymentError marks a verify replay; Credits is what the original
// verification already credited.
type DuplicatePaymentError struct {
	Credits int64
}

func (e *DuplicatePaymentError) Error() string {
	return "payment already processed"
}

// GatewayOrder is the payment intent created gateway-side.
type GatewayOrder struct {
	ID       string
	Amount   int64 // smallest currency unit (paise)
	Currency string
}

// PaymentGateway creates orders with the external payment provider.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount float64) (*GatewayOrder, error)
}

// OrderResult is returned to the client to drive the gateway checkout.
type OrderResult struct {
	OrderID        string
	Amount         int64
	Currency       string
	Credits        int64
	ConversionRate int64
}

// VerifyResult reports a successful payment reconciliation.
type VerifyResult struct {
	CreditsAdded int64
	TotalCredits int64
	Amount       float64
}

type PaymentService interface {
	CreateOrder(ctx context.Context, userID string, amount float64) (*OrderResult, error)
	// VerifyPayment validates the gateway signature and credits the user
	// exactly once per order.
	VerifyPayment(ctx context.Context, userID, orderID, paymentID, signature string) (*VerifyResult, error)
	GetHistory(ctx context.Context, userID string) ([]model.Payment, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	gateway     PaymentGateway
	keySecret   string
	logger      zerolog.Logger
}

func NewPaymentService(paymentRepo repository.PaymentRepository, gateway PaymentGateway, keySecret string, logger zerolog.Logger) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		gateway:     gateway,
		keySecret:   keySecret,
		logger:      logger.With().Str("service", "PaymentService").Logger(),
	}
}

// CalculateCredits converts a currency amount into credits, flooring
// fractional results.
func CalculateCredits(amount float64) int64 {
	return int64(math.Floor(amount * float64(CreditsPerRupee)))
}

func (s *paymentService) CreateOrder(ctx context.Context, userID string, amount float64) (*OrderResult, error) {
	if amount < minOrderAmount || amount > maxOrderAmount {
		return nil, ErrInvalidAmount
	}

	credits := CalculateCredits(amount)

	order, err := s.gateway.CreateOrder(ctx, amount)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create gateway order")
		return nil, fmt.Errorf("creating payment order: %w", err)
	}

	payment := &model.Payment{
		ID:      uuid.NewString(),
		UserID:  userID,
		OrderID: order.ID,
		Amount:  amount,
		Credits: credits,
	}
	if err := s.paymentRepo.CreatePending(ctx, payment); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to store pending payment")
		return nil, fmt.Errorf("storing pending payment: %w", err)
	}

	return &OrderResult{
		OrderID:        order.ID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Credits:        credits,
		ConversionRate: CreditsPerRupee,
	}, nil
}

// verifySignature recomputes the HMAC-SHA256 over "orderId|paymentId" and
// compares in constant time.
func (s *paymentService) verifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *paymentService) VerifyPayment(ctx context.Context, userID, orderID, paymentID, signature string) (*VerifyResult, error) {
	if !s.verifySignature(orderID, paymentID, signature) {
		return nil, ErrInvalidSignature
	}

	payment, err := s.paymentRepo.GetByOrderAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("loading payment: %w", err)
	}

	if payment.Status == model.PaymentCompleted {
		return nil, &DuplicatePaymentError{Credits: payment.Credits}
	}

	total, err := s.paymentRepo.CompleteAndCredit(ctx, payment, paymentID, signature)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyProcessed) {
			// Lost the race against a concurrent verify of the same order.
			return nil, &DuplicatePaymentError{Credits: payment.Credits}
		}
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("Failed to credit payment")
		return nil, fmt.Errorf("crediting payment: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("order_id", orderID).
		Int64("credits", payment.Credits).Msg("Payment verified and credited")

	return &VerifyResult{
		CreditsAdded: payment.Credits,
		TotalCredits: total,
		Amount:       payment.Amount,
	}, nil
}

func (s *paymentService) GetHistory(ctx context.Context, userID string) ([]model.Payment, error) {
	payments, err := s.paymentRepo.ListByUser(ctx, userID, 50)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list payments")
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	return payments, nil
}
