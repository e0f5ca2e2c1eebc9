package response

import (
	"github.com/google/uuid"

	"merch-api/internal/usecase/commands"
)

type AuthResponse struct {
	UserID       uuid.UUID `json:"userId"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func FromAuthResult(result *commands.AuthResult) *AuthResponse {
	return &AuthResponse{
		UserID:       result.UserID,
		AccessToken:  result.TokenPair.AccessToken,
		RefreshToken: result.TokenPair.RefreshToken,
	}
}

func FromTokenPair(pair *commands.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}
