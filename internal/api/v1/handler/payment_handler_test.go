package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"
	"github.com/RLP0AI/roleplay-ai-app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type mockPaymentService struct {
	CreateOrderFunc   func(ctx context.Context, userID string, amount float64) (*service.OrderResult, error)
	VerifyPaymentFunc func(ctx context.Context, userID, orderID, paymentID, signature string) (*service.VerifyResult, error)
	GetHistoryFunc    func(ctx context.Context, userID string) ([]model.Payment, error)
}

func (m *mockPaymentService) CreateOrder(ctx context.Context, userID string, amount float64) (*service.OrderResult, error) {
	return m.CreateOrderFunc(ctx, userID, amount)
}

func (m *mockPaymentService) VerifyPayment(ctx context.Context, userID, orderID, paymentID, signature string) (*service.VerifyResult, error) {
	return m.VerifyPaymentFunc(ctx, userID, orderID, paymentID, signature)
}

func (m *mockPaymentService) GetHistory(ctx context.Context, userID string) ([]model.Payment, error) {
	return m.GetHistoryFunc(ctx, userID)
}

func newTestPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return NewPaymentHandler(svc, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestCreateOrderHandler(t *testing.T) {
	svc := &mockPaymentService{
		CreateOrderFunc: func(_ context.Context, userID string, amount float64) (*service.OrderResult, error) {
			if userID != "user-1" || amount != 100 {
				t.Errorf("service got (%s, %v)", userID, amount)
			}
			return &service.OrderResult{
				OrderID:        "order_1",
				Amount:         10000,
				Currency:       "INR",
				Credits:        1500,
				ConversionRate: 15,
			}, nil
		},
	}
	h := newTestPaymentHandler(svc)

	rec := httptest.NewRecorder()
	h.CreateOrder(rec, authedRequest(http.MethodPost, "/api/payment/create-order", `{"amount":100}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["credits"].(float64) != 1500 {
		t.Errorf("credits = %v", body["credits"])
	}
	if body["conversionRate"].(float64) != 15 {
		t.Errorf("conversionRate = %v", body["conversionRate"])
	}
}

func TestCreateOrderHandlerInvalidAmount(t *testing.T) {
	svc := &mockPaymentService{
		CreateOrderFunc: func(_ context.Context, _ string, _ float64) (*service.OrderResult, error) {
			return nil, service.ErrInvalidAmount
		},
	}
	h := newTestPaymentHandler(svc)

	rec := httptest.NewRecorder()
	h.CreateOrder(rec, authedRequest(http.MethodPost, "/api/payment/create-order", `{"amount":200000}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestVerifyPaymentHandlerMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"bad signature", service.ErrInvalidSignature, http.StatusBadRequest},
		{"unknown order", service.ErrPaymentNotFound, http.StatusNotFound},
		{"replay", &service.DuplicatePaymentError{Credits: 1500}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockPaymentService{
				VerifyPaymentFunc: func(_ context.Context, _, _, _, _ string) (*service.VerifyResult, error) {
					return nil, tc.err
				},
			}
			h := newTestPaymentHandler(svc)

			rec := httptest.NewRecorder()
			h.VerifyPayment(rec, authedRequest(http.MethodPost, "/api/payment/verify",
				`{"orderId":"order_1","paymentId":"pay_1","signature":"sig"}`))

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestVerifyPaymentHandlerReplayBody(t *testing.T) {
	svc := &mockPaymentService{
		VerifyPaymentFunc: func(_ context.Context, _, _, _, _ string) (*service.VerifyResult, error) {
			return nil, &service.DuplicatePaymentError{Credits: 1500}
		},
	}
	h := newTestPaymentHandler(svc)

	rec := httptest.NewRecorder()
	h.VerifyPayment(rec, authedRequest(http.MethodPost, "/api/payment/verify",
		`{"orderId":"order_1","paymentId":"pay_1","signature":"sig"}`))

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	// The replay response reports what the original verification credited.
	if body["credits"].(float64) != 1500 {
		t.Errorf("credits = %v", body["credits"])
	}
}

func TestVerifyPaymentHandlerSuccess(t *testing.T) {
	svc := &mockPaymentService{
		VerifyPaymentFunc: func(_ context.Context, userID, orderID, paymentID, signature string) (*service.VerifyResult, error) {
			if orderID != "order_1" || paymentID != "pay_1" || signature != "sig" {
				t.Errorf("service got (%s, %s, %s)", orderID, paymentID, signature)
			}
			return &service.VerifyResult{CreditsAdded: 1500, TotalCredits: 1520, Amount: 100}, nil
		},
	}
	h := newTestPaymentHandler(svc)

	rec := httptest.NewRecorder()
	h.VerifyPayment(rec, authedRequest(http.MethodPost, "/api/payment/verify",
		`{"orderId":"order_1","paymentId":"pay_1","signature":"sig"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["totalCredits"].(float64) != 1520 {
		t.Errorf("totalCredits = %v", body["totalCredits"])
	}
}
