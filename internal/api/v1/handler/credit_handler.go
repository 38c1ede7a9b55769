package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/RLP0AI/roleplay-ai-app/internal/api/v1/dto"
	"github.com/RLP0AI/roleplay-ai-app/internal/middleware"
	"github.com/RLP0AI/roleplay-ai-app/internal/model"
	"github.com/RLP0AI/roleplay-ai-app/internal/service"

	"github.com/rs/zerolog"
)

type CreditHandler struct {
	creditService service.CreditService
	logger        zerolog.Logger
}

func NewCreditHandler(creditService service.CreditService, logger zerolog.Logger) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
		logger:        logger,
	}
}

// GetBalance godoc
// @Summary Get the caller's current credit balance
// @Tags credits
// @Produce json
// @Success 200 {object} dto.CreditsResponse
// @Failure 404 {object} map[string]string "User not found"
// @Router /credits [get]
func (h *CreditHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	balance, err := h.creditService.GetBalance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found", "")
			return
		}
		h.logger.Error().Err(err).Msg("balance lookup failed")
		respondError(w, http.StatusInternalServerError, "Failed to get credits", "")
		return
	}

	respondJSON(w, http.StatusOK, dto.CreditsResponse{
		Credits: balance.Credits,
		Email:   balance.Email,
	})
}

// GetTransactions godoc
// @Summary List the caller's credit ledger, newest first
// @Tags credits
// @Produce json
// @Param limit query int false "Maximum rows to return (default 50)"
// @Success 200 {object} dto.TransactionListResponse
// @Router /credits/transactions [get]
func (h *CreditHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	txs, err := h.creditService.GetTransactions(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("transaction listing failed")
		respondError(w, http.StatusInternalServerError, "Failed to list transactions", "")
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}

	respondJSON(w, http.StatusOK, dto.TransactionListResponse{Transactions: txs})
}
