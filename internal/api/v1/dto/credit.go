package dto

import "github.com/RLP0AI/roleplay-ai-app/internal/model"

type CreditsResponse struct {
	Credits int64  `json:"credits"`
	Email   string `json:"email"`
}

type TransactionListResponse struct {
	Transactions []model.Transaction `json:"transactions"`
}
