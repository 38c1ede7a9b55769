package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RLP0AI/roleplay-ai-app/internal/api/v1/dto"
	"github.com/RLP0AI/roleplay-ai-app/internal/middleware"
	"github.com/RLP0AI/roleplay-ai-app/internal/model"
	"github.com/RLP0AI/roleplay-ai-app/internal/repository"
	"github.com/RLP0AI/roleplay-ai-app/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type CharacterHandler struct {
	characterService service.CharacterService
	validate         *validator.Validate
	logger           zerolog.Logger
}

func NewCharacterHandler(characterService service.CharacterService, validate *validator.Validate, logger zerolog.Logger) *CharacterHandler {
	return &CharacterHandler{
		characterService: characterService,
		validate:         validate,
		logger:           logger,
	}
}

// Create godoc
// @Summary Create a character
// @Description Creates a new persona for the authenticated user. All five profile fields are required and pass a content check.
// @Tags characters
// @Accept json
// @Produce json
// @Param character body dto.CharacterCreateRequest true "Character profile"
// @Success 201 {object} dto.CharacterResponse
// @Failure 400 {object} map[string]string "Missing fields or inappropriate content"
// @Router /characters [post]
func (h *CharacterHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req dto.CharacterCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload", "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "All character fields are required", "")
		return
	}

	character, err := h.characterService.CreateCharacter(r.Context(), userID, service.CharacterProfile{
		Name:        req.Name,
		Role:        req.Role,
		Personality: req.Personality,
		Style:       req.Style,
		Backstory:   req.Backstory,
		NSFW:        req.NSFW,
	})
	if err != nil {
		if errors.Is(err, service.ErrInappropriateContent) {
			respondError(w, http.StatusBadRequest, "Character contains inappropriate content", "")
			return
		}
		h.logger.Error().Err(err).Msg("character creation failed")
		respondError(w, http.StatusInternalServerError, "Failed to create character", "")
		return
	}

	respondJSON(w, http.StatusCreated, dto.CharacterResponse{
		Message:   "Character created successfully",
		ID:        character.ID,
		Character: character,
	})
}

// List godoc
// @Summary List the caller's characters, newest first
// @Tags characters
// @Produce json
// @Success 200 {object} dto.CharacterListResponse
// @Router /characters [get]
func (h *CharacterHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	characters, err := h.characterService.ListCharacters(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("character listing failed")
		respondError(w, http.StatusInternalServerError, "Failed to list characters", "")
		return
	}
	if characters == nil {
		characters = []model.Character{}
	}

	respondJSON(w, http.StatusOK, dto.CharacterListResponse{Characters: characters})
}

func (h *CharacterHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	id := chi.URLParam(r, "id")

	character, err := h.characterService.GetCharacter(r.Context(), id, userID)
	if err != nil {
		h.writeCharacterError(w, err, "Failed to get character")
		return
	}

	respondJSON(w, http.StatusOK, character)
}

func (h *CharacterHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	id := chi.URLParam(r, "id")

	var req dto.CharacterUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload", "")
		return
	}

	character, err := h.characterService.UpdateCharacter(r.Context(), id, userID, repository.CharacterUpdate{
		Name:        req.Name,
		Role:        req.Role,
		Personality: req.Personality,
		Style:       req.Style,
		Backstory:   req.Backstory,
		NSFW:        req.NSFW,
	})
	if err != nil {
		h.writeCharacterError(w, err, "Failed to update character")
		return
	}

	respondJSON(w, http.StatusOK, dto.CharacterResponse{
		Message:   "Character updated successfully",
		ID:        character.ID,
		Character: character,
	})
}

func (h *CharacterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.characterService.DeleteCharacter(r.Context(), id, userID); err != nil {
		h.writeCharacterError(w, err, "Failed to delete character")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Character deleted successfully"})
}

func (h *CharacterHandler) writeCharacterError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrCharacterNotFound):
		respondError(w, http.StatusNotFound, "Character not found", "")
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, "Access denied", "")
	default:
		h.logger.Error().Err(err).Msg(fallback)
		respondError(w, http.StatusInternalServerError, fallback, "")
	}
}
