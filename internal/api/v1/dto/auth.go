package dto

import "github.com/RLP0AI/roleplay-ai-app/internal/model"

// RegisterRequest creates the server-side user record. The password is
// handled entirely by the identity provider on the client and never reaches
// this API's storage.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	UID         string `json:"uid" validate:"required"`
	DisplayName string `json:"displayName"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UID     string `json:"uid"`
}

type LoginRequest struct {
	UID string `json:"uid" validate:"required"`
}

type LoginResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type VerifyTokenResponse struct {
	Valid bool   `json:"valid"`
	UID   string `json:"uid,omitempty"`
	Email string `json:"email,omitempty"`
}
