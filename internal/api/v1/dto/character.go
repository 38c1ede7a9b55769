package dto

import "github.com/RLP0AI/roleplay-ai-app/internal/model"

type CharacterCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Role        string `json:"role" validate:"required"`
	Personality string `json:"personality" validate:"required"`
	Style       string `json:"style" validate:"required"`
	Backstory   string `json:"backstory" validate:"required"`
	NSFW        bool   `json:"nsfw"`
}

// CharacterUpdateRequest carries a partial profile; absent fields are left
// unchanged.
type CharacterUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Role        *string `json:"role,omitempty"`
	Personality *string `json:"personality,omitempty"`
	Style       *string `json:"style,omitempty"`
	Backstory   *string `json:"backstory,omitempty"`
	NSFW        *bool   `json:"nsfw,omitempty"`
}

type CharacterResponse struct {
	Message   string           `json:"message,omitempty"`
	ID        string           `json:"id"`
	Character *model.Character `json:"character"`
}

type CharacterListResponse struct {
	Characters []model.Character `json:"characters"`
}
