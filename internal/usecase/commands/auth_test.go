//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merch-api/internal/domain/user"
	reqdto "merch-api/internal/handler/dto/request"
	"merch-api/internal/infra"
	"merch-api/internal/pkg/errs"
	"merch-api/internal/pkg/jwt"
	"merch-api/internal/pkg/password"
	"merch-api/internal/usecase/commands"
)

func newAuthFixture(users *fakeUserRepo) (commands.AuthCommands, *jwt.Service) {
	jwtService := jwt.NewService("test-secret", 15*time.Minute, 168*time.Hour)
	return commands.NewAuthCommands(users, &fakeDB{}, jwtService), jwtService
}

func activeUserRepo(t *testing.T, email, plainPassword string) *fakeUserRepo {
	t.Helper()
	hash, err := password.HashPassword(plainPassword)
	require.NoError(t, err)
	return &fakeUserRepo{
		snapshot: &commands.UserSnapshot{
			ID:       uuid.New(),
			Email:    email,
			Role:     "member",
			Credits:  user.DefaultSignupCredits,
			IsActive: true,
		},
		passwordHash: hash,
	}
}

func TestSignup_Success(t *testing.T) {
	users := &fakeUserRepo{}
	uc, jwtService := newAuthFixture(users)

	result, err := uc.Signup(context.Background(), reqdto.SignupRequest{
		Email:     "new@example.com",
		Password:  "password123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	require.Len(t, users.created, 1)

	created := users.created[0]
	assert.Equal(t, created.ID(), result.UserID)
	assert.Equal(t, "new@example.com", created.Email().Value())
	assert.Equal(t, user.RoleMember, created.Role())
	assert.Equal(t, user.DefaultSignupCredits, created.Credits())

	// The password is stored hashed, never verbatim.
	assert.NotEqual(t, "password123", created.PasswordHash())
	require.NoError(t, password.ComparePassword(created.PasswordHash(), "password123"))

	claims, err := jwtService.ValidateToken(result.TokenPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.UserID, claims.UserID)
	assert.Equal(t, jwt.TokenTypeAccess, claims.TokenType)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	users := &fakeUserRepo{
		createErr: infra.WrapRepoErr("duplicate email", nil, infra.KindDuplicateKey),
	}
	uc, _ := newAuthFixture(users)

	_, err := uc.Signup(context.Background(), reqdto.SignupRequest{
		Email:     "taken@example.com",
		Password:  "password123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.ErrorIs(t, err, commands.ErrEmailAlreadyExists)
}

func TestSignup_InvalidEmail(t *testing.T) {
	uc, _ := newAuthFixture(&fakeUserRepo{})

	_, err := uc.Signup(context.Background(), reqdto.SignupRequest{
		Email:     "not-an-email",
		Password:  "password123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.True(t, errs.Is(err, commands.ErrAuthenticationFailed), "got %v", err)
}

func TestLogin_Success(t *testing.T) {
	users := activeUserRepo(t, "member@example.com", "password123")
	uc, jwtService := newAuthFixture(users)

	result, err := uc.Login(context.Background(), reqdto.LoginRequest{
		Email:    "member@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, users.snapshot.ID, result.UserID)
	assert.Equal(t, 1, users.lastLogin)

	claims, err := jwtService.ValidateToken(result.TokenPair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, jwt.TokenTypeRefresh, claims.TokenType)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := activeUserRepo(t, "member@example.com", "password123")
	uc, _ := newAuthFixture(users)

	_, err := uc.Login(context.Background(), reqdto.LoginRequest{
		Email:    "member@example.com",
		Password: "wrong-password",
	})
	require.ErrorIs(t, err, commands.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := activeUserRepo(t, "member@example.com", "password123")
	uc, _ := newAuthFixture(users)

	// Unknown email and wrong password must be indistinguishable.
	_, err := uc.Login(context.Background(), reqdto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	require.ErrorIs(t, err, commands.ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	users := activeUserRepo(t, "member@example.com", "password123")
	users.snapshot.IsActive = false
	uc, _ := newAuthFixture(users)

	_, err := uc.Login(context.Background(), reqdto.LoginRequest{
		Email:    "member@example.com",
		Password: "password123",
	})
	require.ErrorIs(t, err, commands.ErrUserInactive)
}

func TestRefreshToken_Success(t *testing.T) {
	users := activeUserRepo(t, "member@example.com", "password123")
	uc, jwtService := newAuthFixture(users)

	refreshToken, err := jwtService.GenerateRefreshToken(users.snapshot.ID, user.RoleMember)
	require.NoError(t, err)

	pair, err := uc.RefreshToken(context.Background(), refreshToken)
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, users.snapshot.ID, claims.UserID)
	assert.Equal(t, jwt.TokenTypeAccess, claims.TokenType)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	users := activeUserRepo(t, "member@example.com", "password123")
	uc, jwtService := newAuthFixture(users)

	accessToken, err := jwtService.GenerateAccessToken(users.snapshot.ID, user.RoleMember)
	require.NoError(t, err)

	_, err = uc.RefreshToken(context.Background(), accessToken)
	require.True(t, errs.Is(err, commands.ErrTokenValidation), "got %v", err)
}

func TestRefreshToken_InactiveUser(t *testing.T) {
	users := activeUserRepo(t, "member@example.com", "password123")
	users.snapshot.IsActive = false
	uc, jwtService := newAuthFixture(users)

	refreshToken, err := jwtService.GenerateRefreshToken(users.snapshot.ID, user.RoleMember)
	require.NoError(t, err)

	_, err = uc.RefreshToken(context.Background(), refreshToken)
	require.ErrorIs(t, err, commands.ErrUserInactive)
}

func TestRefreshToken_Garbage(t *testing.T) {
	uc, _ := newAuthFixture(&fakeUserRepo{})

	_, err := uc.RefreshToken(context.Background(), "not.a.token")
	require.True(t, errs.Is(err, commands.ErrTokenValidation), "got %v", err)
}
