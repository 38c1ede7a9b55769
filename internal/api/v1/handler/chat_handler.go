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

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type ChatHandler struct {
	chatService service.ChatService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewChatHandler(chatService service.ChatService, validate *validator.Validate, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		validate:    validate,
		logger:      logger,
	}
}

// Create godoc
// @Summary Create a chat session
// @Tags chat
// @Accept json
// @Produce json
// @Param chat body dto.ChatCreateRequest true "Chat creation request"
// @Success 201 {object} dto.ChatCreateResponse
// @Failure 404 {object} map[string]string "Character not found"
// @Failure 403 {object} map[string]string "Not the character's owner"
// @Router /chat/create [post]
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req dto.ChatCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload", "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Character ID is required", "")
		return
	}

	chat, err := h.chatService.CreateChat(r.Context(), userID, req.CharacterID)
	if err != nil {
		h.writeChatError(w, err, "Failed to create chat")
		return
	}

	respondJSON(w, http.StatusCreated, dto.ChatCreateResponse{
		Message: "Chat created successfully",
		ChatID:  chat.ID,
		Chat:    chat,
	})
}

// SendMessage godoc
// @Summary Send a message and get the character's reply
// @Description Runs the credit-metered chat transaction. One credit is deducted per successful exchange; a failed generation costs nothing.
// @Tags chat
// @Accept json
// @Produce json
// @Param message body dto.SendMessageRequest true "Message request"
// @Success 200 {object} dto.SendMessageResponse
// @Failure 400 {object} map[string]string "Missing fields or message too long"
// @Failure 402 {object} map[string]interface{} "Insufficient credits"
// @Failure 500 {object} map[string]string "Generation failure"
// @Router /chat/message [post]
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	req, ok := h.decodeMessageRequest(w, r)
	if !ok {
		return
	}

	result, err := h.chatService.SendMessage(r.Context(), userID, req.CharacterID, req.ChatID, req.Message)
	if err != nil {
		h.writeChatError(w, err, "Failed to send message")
		return
	}

	respondJSON(w, http.StatusOK, dto.SendMessageResponse{
		Message:          "Message sent successfully",
		UserMessage:      result.UserMessage,
		AIMessage:        result.AIMessage,
		CreditsRemaining: result.CreditsRemaining,
		CreditsDeducted:  result.CreditsDeducted,
		ChatID:           result.ChatID,
	})
}

// StreamMessage is SendMessage with the reply delivered as SSE text deltas.
// The final event carries the persisted exchange and the remaining balance;
// nothing is persisted or debited unless the stream completes.
func (h *ChatHandler) StreamMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	req, ok := h.decodeMessageRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming not supported", "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	writeEvent := func(v interface{}) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	result, err := h.chatService.StreamMessage(r.Context(), userID, req.CharacterID, req.ChatID, req.Message,
		func(delta string) error {
			return writeEvent(map[string]string{"type": "delta", "content": delta})
		})
	if err != nil {
		// Headers are already out; surface the failure as a terminal event.
		_ = writeEvent(map[string]string{"type": "error", "error": chatErrorText(err)})
		return
	}

	_ = writeEvent(map[string]interface{}{
		"type":             "done",
		"userMessage":      result.UserMessage,
		"aiMessage":        result.AIMessage,
		"creditsRemaining": result.CreditsRemaining,
		"chatId":           result.ChatID,
	})
}

// History godoc
// @Summary List the 10 most recent chats with a character
// @Tags chat
// @Produce json
// @Param characterId path string true "Character ID"
// @Success 200 {object} dto.ChatHistoryResponse
// @Router /chat/{characterId} [get]
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	characterID := chi.URLParam(r, "characterId")

	chats, err := h.chatService.ListChats(r.Context(), userID, characterID)
	if err != nil {
		h.logger.Error().Err(err).Msg("chat history failed")
		respondError(w, http.StatusInternalServerError, "Failed to load chat history", "")
		return
	}
	if chats == nil {
		chats = []model.Chat{}
	}

	respondJSON(w, http.StatusOK, dto.ChatHistoryResponse{Chats: chats})
}

func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	chatID := chi.URLParam(r, "chatId")

	if err := h.chatService.DeleteChat(r.Context(), chatID, userID); err != nil {
		h.writeChatError(w, err, "Failed to delete chat")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Chat deleted successfully"})
}

func (h *ChatHandler) decodeMessageRequest(w http.ResponseWriter, r *http.Request) (*dto.SendMessageRequest, bool) {
	var req dto.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload", "")
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Character ID and message are required", "")
		return nil, false
	}
	return &req, true
}

func (h *ChatHandler) writeChatError(w http.ResponseWriter, err error, fallback string) {
	var insufficient *service.InsufficientCreditsError
	switch {
	case errors.As(err, &insufficient):
		respondJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"error":           "Insufficient credits",
			"message":         "Please purchase more credits to continue chatting",
			"creditsRequired": insufficient.Required,
			"currentCredits":  insufficient.Current,
		})
	case errors.Is(err, service.ErrMessageTooLong):
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("Message too long. Maximum %d characters allowed.", service.MaxMessageLength), "")
	case errors.Is(err, service.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found", "")
	case errors.Is(err, service.ErrCharacterNotFound):
		respondError(w, http.StatusNotFound, "Character not found", "")
	case errors.Is(err, service.ErrChatNotFound):
		respondError(w, http.StatusNotFound, "Chat not found", "")
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, "Access denied", "")
	case errors.Is(err, service.ErrGenerationFailed):
		respondError(w, http.StatusInternalServerError, "Failed to generate response", "Please try again later")
	default:
		h.logger.Error().Err(err).Msg(fallback)
		respondError(w, http.StatusInternalServerError, fallback, "")
	}
}

func chatErrorText(err error) string {
	var insufficient *service.InsufficientCreditsError
	switch {
	case errors.As(err, &insufficient):
		return "Insufficient credits"
	case errors.Is(err, service.ErrGenerationFailed):
		return "Failed to generate response"
	default:
		return "Failed to send message"
	}
}
