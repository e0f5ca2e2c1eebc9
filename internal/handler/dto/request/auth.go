package request

import (
	"merch-api/internal/domain/user"
)

type SignupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

func (r *SignupRequest) ToDomain() (user.Credentials, error) {
	return toCredentials(r.Email, r.Password)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (r *LoginRequest) ToDomain() (user.Credentials, error) {
	return toCredentials(r.Email, r.Password)
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func toCredentials(rawEmail, rawPassword string) (user.Credentials, error) {
	email, err := user.NewEmail(rawEmail)
	if err != nil {
		return user.Credentials{}, err
	}
	password, err := user.NewPassword(rawPassword)
	if err != nil {
		return user.Credentials{}, err
	}
	return user.NewCredentials(email, password), nil
}
