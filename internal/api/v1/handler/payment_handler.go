package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/RLP0AI/roleplay-ai-app/internal/api/v1/dto"
	"github.com/RLP0AI/roleplay-ai-app/internal/middleware"
	"github.com/RLP0AI/roleplay-ai-app/internal/model"
	"github.com/RLP0AI/roleplay-ai-app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	validate       *validator.Validate
	logger         zerolog.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, validate *validator.Validate, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validate:       validate,
		logger:         logger,
	}
}

// CreateOrder godoc
// @Summary Create a payment order for a credit purchase
// @Description Creates a gateway order and a pending payment record. Credits are only granted after verification.
// @Tags payments
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderRequest true "Order request"
// @Success 200 {object} dto.CreateOrderResponse
// @Failure 400 {object} map[string]string "Amount out of range"
// @Router /payment/create-order [post]
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload", "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Amount is required", "")
		return
	}

	order, err := h.paymentService.CreateOrder(r.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			respondError(w, http.StatusBadRequest, "Invalid amount. Must be between 1 and 100000", "")
			return
		}
		h.logger.Error().Err(err).Msg("order creation failed")
		respondError(w, http.StatusInternalServerError, "Failed to create payment order", "")
		return
	}

	respondJSON(w, http.StatusOK, dto.CreateOrderResponse{
		OrderID:        order.OrderID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Credits:        order.Credits,
		ConversionRate: order.ConversionRate,
	})
}

// VerifyPayment godoc
// @Summary Verify a completed checkout and credit the purchase
// @Description Validates the gateway signature and credits the user exactly once per order. Replays return 400 without crediting again.
// @Tags payments
// @Accept json
// @Produce json
// @Param payment body dto.VerifyPaymentRequest true "Verification request"
// @Success 200 {object} dto.VerifyPaymentResponse
// @Failure 400 {object} map[string]string "Invalid signature or already processed"
// @Failure 404 {object} map[string]string "No matching order"
// @Router /payment/verify [post]
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req dto.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload", "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Order ID, payment ID and signature are required", "")
		return
	}

	result, err := h.paymentService.VerifyPayment(r.Context(), userID, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		var dup *service.DuplicatePaymentError
		switch {
		case errors.As(err, &dup):
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   "Payment already processed",
				"credits": dup.Credits,
			})
		case errors.Is(err, service.ErrInvalidSignature):
			respondError(w, http.StatusBadRequest, "Invalid payment signature", "")
		case errors.Is(err, service.ErrPaymentNotFound):
			respondError(w, http.StatusNotFound, "Payment record not found", "")
		default:
			h.logger.Error().Err(err).Msg("payment verification failed")
			respondError(w, http.StatusInternalServerError, "Failed to verify payment", "")
		}
		return
	}

	respondJSON(w, http.StatusOK, dto.VerifyPaymentResponse{
		Message:      fmt.Sprintf("Payment verified. %d credits added.", result.CreditsAdded),
		CreditsAdded: result.CreditsAdded,
		TotalCredits: result.TotalCredits,
		Amount:       result.Amount,
	})
}

// History godoc
// @Summary List the caller's payments, newest first
// @Tags payments
// @Produce json
// @Success 200 {object} dto.PaymentHistoryResponse
// @Router /payment/history [get]
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	payments, err := h.paymentService.GetHistory(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("payment history failed")
		respondError(w, http.StatusInternalServerError, "Failed to list payments", "")
		return
	}
	if payments == nil {
		payments = []model.Payment{}
	}

	respondJSON(w, http.StatusOK, dto.PaymentHistoryResponse{Payments: payments})
}
