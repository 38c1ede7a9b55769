package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RLP0AI/roleplay-ai-app/internal/api/v1/dto"
	"github.com/RLP0AI/roleplay-ai-app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	authService service.AuthService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewAuthHandler(authService service.AuthService, validate *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validate,
		logger:      logger,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Creates the user record for an identity provisioned client-side. New users start with zero credits.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} map[string]string "Missing required fields"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload", "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Email, password and user ID are required", "")
		return
	}

	user, err := h.authService.Register(r.Context(), req.UID, req.Email, req.DisplayName)
	if err != nil {
		h.logger.Error().Err(err).Msg("registration failed")
		respondError(w, http.StatusInternalServerError, "Failed to register user", "")
		return
	}

	respondJSON(w, http.StatusCreated, dto.RegisterResponse{
		Message: "User registered successfully",
		UID:     user.UserID,
	})
}

// Login godoc
// @Summary Load the user record for a signed-in identity
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.LoginResponse
// @Failure 404 {object} map[string]string "User not found"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload", "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "User ID is required", "")
		return
	}

	user, err := h.authService.Login(r.Context(), req.UID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found", "")
			return
		}
		h.logger.Error().Err(err).Msg("login failed")
		respondError(w, http.StatusInternalServerError, "Failed to load user", "")
		return
	}

	respondJSON(w, http.StatusOK, dto.LoginResponse{
		Message: "Login successful",
		User:    user,
	})
}

// Verify godoc
// @Summary Verify a bearer credential
// @Tags auth
// @Accept json
// @Produce json
// @Param token body dto.VerifyTokenRequest true "Token to verify"
// @Success 200 {object} dto.VerifyTokenResponse
// @Failure 401 {object} dto.VerifyTokenResponse "Invalid token"
// @Router /auth/verify [post]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload", "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Token is required", "")
		return
	}

	uid, email, err := h.authService.VerifyToken(req.Token)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, dto.VerifyTokenResponse{Valid: false})
		return
	}

	respondJSON(w, http.StatusOK, dto.VerifyTokenResponse{
		Valid: true,
		UID:   uid,
		Email: email,
	})
}
