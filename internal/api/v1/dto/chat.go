package dto

import "github.com/RLP0AI/roleplay-ai-app/internal/model"

type ChatCreateRequest struct {
	CharacterID string `json:"characterId" validate:"required"`
}

type ChatCreateResponse struct {
	Message string      `json:"message"`
	ChatID  string      `json:"chatId"`
	Chat    *model.Chat `json:"chat"`
}

type SendMessageRequest struct {
	CharacterID string `json:"characterId" validate:"required"`
	Message     string `json:"message" validate:"required"`
	ChatID      string `json:"chatId,omitempty"`
}

type SendMessageResponse struct {
	Message          string        `json:"message"`
	UserMessage      model.Message `json:"userMessage"`
	AIMessage        model.Message `json:"aiMessage"`
	CreditsRemaining int64         `json:"creditsRemaining"`
	CreditsDeducted  int64         `json:"creditsDeducted"`
	ChatID           string        `json:"chatId"`
}

type ChatHistoryResponse struct {
	Chats []model.Chat `json:"chats"`
}
