package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"
	"github.com/RLP0AI/roleplay-ai-app/internal/repository"

	"github.com/rs/zerolog"
)

const testKeySecret = "test-key-secret"

func signOrder(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testKeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestPaymentService(paymentRepo *mockPaymentRepo, gateway *mockGateway) PaymentService {
	return NewPaymentService(paymentRepo, gateway, testKeySecret, zerolog.Nop())
}

func TestCalculateCredits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{100, 1500},
		{1, 15},
		{0.5, 7}, // fractional credits floor
		{99999.99, 1499999},
	}
	for _, tc := range cases {
		if got := CalculateCredits(tc.amount); got != tc.want {
			t.Errorf("CalculateCredits(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestCreateOrderAmountBounds(t *testing.T) {
	gateway := &mockGateway{}
	svc := newTestPaymentService(&mockPaymentRepo{}, gateway)

	for _, amount := range []float64{0, 0.99, -5, 100000.01} {
		if _, err := svc.CreateOrder(context.Background(), testUserID, amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("CreateOrder(%v) = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if gateway.CreateCalls != 0 {
		t.Error("gateway called for out-of-range amounts")
	}

	for _, amount := range []float64{1, 100000} {
		if _, err := svc.CreateOrder(context.Background(), testUserID, amount); err != nil {
			t.Errorf("CreateOrder(%v) = %v, want nil", amount, err)
		}
	}
}

func TestCreateOrderStoresPendingPayment(t *testing.T) {
	var stored *model.Payment
	paymentRepo := &mockPaymentRepo{
		CreatePendingFunc: func(_ context.Context, p *model.Payment) error {
			stored = p
			return nil
		},
	}
	svc := newTestPaymentService(paymentRepo, &mockGateway{})

	result, err := svc.CreateOrder(context.Background(), testUserID, 100)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if stored == nil {
		t.Fatal("no pending payment stored")
	}
	if stored.Credits != 1500 || stored.Amount != 100 {
		t.Errorf("stored credits=%d amount=%v", stored.Credits, stored.Amount)
	}
	if stored.OrderID != result.OrderID {
		t.Errorf("stored order %q, returned %q", stored.OrderID, result.OrderID)
	}
	if result.ConversionRate != CreditsPerRupee {
		t.Errorf("ConversionRate = %d", result.ConversionRate)
	}
}

func TestVerifyPaymentInvalidSignature(t *testing.T) {
	paymentRepo := &mockPaymentRepo{}
	svc := newTestPaymentService(paymentRepo, &mockGateway{})

	_, err := svc.VerifyPayment(context.Background(), testUserID, "order_1", "pay_1", "deadbeef")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
	if paymentRepo.CompleteCalls != 0 {
		t.Error("payment completed despite bad signature")
	}
}

func TestVerifyPaymentSuccess(t *testing.T) {
	pending := &model.Payment{
		ID: "p1", UserID: testUserID, OrderID: "order_1",
		Amount: 100, Credits: 1500, Status: model.PaymentPending,
	}
	paymentRepo := &mockPaymentRepo{
		GetByOrderAndUserFunc: func(_ context.Context, orderID, userID string) (*model.Payment, error) {
			if orderID != "order_1" || userID != testUserID {
				t.Errorf("lookup got (%s, %s)", orderID, userID)
			}
			return pending, nil
		},
		CompleteAndCreditFunc: func(_ context.Context, p *model.Payment, gatewayPaymentID, signature string) (int64, error) {
			if gatewayPaymentID != "pay_1" {
				t.Errorf("gateway payment id = %q", gatewayPaymentID)
			}
			return 1500, nil
		},
	}
	svc := newTestPaymentService(paymentRepo, &mockGateway{})

	result, err := svc.VerifyPayment(context.Background(), testUserID, "order_1", "pay_1", signOrder("order_1", "pay_1"))
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if result.CreditsAdded != 1500 || result.TotalCredits != 1500 {
		t.Errorf("got added=%d total=%d", result.CreditsAdded, result.TotalCredits)
	}
	if result.Amount != 100 {
		t.Errorf("Amount = %v", result.Amount)
	}
}

func TestVerifyPaymentReplay(t *testing.T) {
	paymentRepo := &mockPaymentRepo{
		GetByOrderAndUserFunc: func(_ context.Context, _, _ string) (*model.Payment, error) {
			return &model.Payment{
				ID: "p1", UserID: testUserID, OrderID: "order_1",
				Credits: 1500, Status: model.PaymentCompleted,
			}, nil
		},
	}
	svc := newTestPaymentService(paymentRepo, &mockGateway{})

	_, err := svc.VerifyPayment(context.Background(), testUserID, "order_1", "pay_1", signOrder("order_1", "pay_1"))
	var dup *DuplicatePaymentError
	if !errors.As(err, &dup) {
		t.Fatalf("got %v, want DuplicatePaymentError", err)
	}
	if dup.Credits != 1500 {
		t.Errorf("Credits = %d, want 1500", dup.Credits)
	}
	if paymentRepo.CompleteCalls != 0 {
		t.Error("replay reached the credit path")
	}
}

// A concurrent verify can pass the status read and still lose the
// conditional flip; that race must surface as a duplicate, not a credit.
func TestVerifyPaymentRace(t *testing.T) {
	paymentRepo := &mockPaymentRepo{
		GetByOrderAndUserFunc: func(_ context.Context, _, _ string) (*model.Payment, error) {
			return &model.Payment{
				ID: "p1", UserID: testUserID, OrderID: "order_1",
				Credits: 1500, Status: model.PaymentPending,
			}, nil
		},
		CompleteAndCreditFunc: func(_ context.Context, _ *model.Payment, _, _ string) (int64, error) {
			return 0, repository.ErrAlreadyProcessed
		},
	}
	svc := newTestPaymentService(paymentRepo, &mockGateway{})

	_, err := svc.VerifyPayment(context.Background(), testUserID, "order_1", "pay_1", signOrder("order_1", "pay_1"))
	var dup *DuplicatePaymentError
	if !errors.As(err, &dup) {
		t.Fatalf("got %v, want DuplicatePaymentError", err)
	}
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	svc := newTestPaymentService(&mockPaymentRepo{}, &mockGateway{})

	_, err := svc.VerifyPayment(context.Background(), testUserID, "order_x", "pay_1", signOrder("order_x", "pay_1"))
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("got %v, want ErrPaymentNotFound", err)
	}
}
