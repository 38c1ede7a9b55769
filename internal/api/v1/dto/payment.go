package dto

import "github.com/RLP0AI/roleplay-ai-app/internal/model"

type CreateOrderRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type CreateOrderResponse struct {
	OrderID        string `json:"orderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Credits        int64  `json:"credits"`
	ConversionRate int64  `json:"conversionRate"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type VerifyPaymentResponse struct {
	Message      string  `json:"message"`
	CreditsAdded int64   `json:"creditsAdded"`
	TotalCredits int64   `json:"totalCredits"`
	Amount       float64 `json:"amount"`
}

type PaymentHistoryResponse struct {
	Payments []model.Payment `json:"payments"`
}
