package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"merch-api/internal/domain/user"
	reqdto "merch-api/internal/handler/dto/request"
	"merch-api/internal/infra"
	"merch-api/internal/infra/db"
	"merch-api/internal/pkg/errs"
	"merch-api/internal/pkg/jwt"
	"merch-api/internal/pkg/password"
)

var (
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrUserInactive         = errs.New("user inactive")
	ErrEmailAlreadyExists   = errs.New("email already registered")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
	ErrTokenValidation      = errs.New("token validation failed")
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthResult struct {
	UserID    uuid.UUID
	TokenPair *TokenPair
}

type AuthCommands interface {
	Signup(ctx context.Context, req reqdto.SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, req reqdto.LoginRequest) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authCommandsImpl struct {
	userRepo   UserRepository
	db         db.DBTX
	jwtService *jwt.Service
}

func NewAuthCommands(userRepo UserRepository, db db.DBTX, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{
		userRepo:   userRepo,
		db:         db,
		jwtService: jwtService,
	}
}

func (a *authCommandsImpl) Signup(ctx context.Context, req reqdto.SignupRequest) (*AuthResult, error) {
	credentials, err := req.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	hash, err := password.HashPassword(credentials.Password().Value())
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	newUser := user.NewUser(credentials.Email(), hash, user.RoleMember, req.FirstName, req.LastName)

	userID, err := a.userRepo.Create(ctx, a.db, newUser)
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, errs.Wrap(err, "failed to create user")
	}

	tokenPair, err := a.generateTokenPair(userID, user.RoleMember)
	if err != nil {
		return nil, err
	}

	return &AuthResult{UserID: userID, TokenPair: tokenPair}, nil
}

func (a *authCommandsImpl) Login(ctx context.Context, req reqdto.LoginRequest) (*AuthResult, error) {
	credentials, err := req.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	snapshot, err := a.validateUser(ctx, credentials)
	if err != nil {
		return nil, err
	}

	role, err := user.NewRole(snapshot.Role)
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	tokenPair, err := a.generateTokenPair(snapshot.ID, role)
	if err != nil {
		return nil, err
	}

	if err := a.userRepo.UpdateLastLogin(ctx, a.db, snapshot.ID); err != nil {
		// Not critical, the login itself succeeded.
		slog.Warn("failed to update last login", "user_id", snapshot.ID, "error", err.Error())
	}

	return &AuthResult{UserID: snapshot.ID, TokenPair: tokenPair}, nil
}

func (a *authCommandsImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}

	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrTokenValidation
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}

	snapshot, err := a.userRepo.FindSnapshotByID(ctx, claims.UserID)
	if err != nil || snapshot == nil {
		return nil, ErrUserNotFound
	}
	if !snapshot.IsActive {
		return nil, ErrUserInactive
	}

	return a.generateTokenPair(claims.UserID, role)
}

func (a *authCommandsImpl) validateUser(ctx context.Context, credentials user.Credentials) (*UserSnapshot, error) {
	// Same error for unknown email and wrong password to prevent enumeration.
	snapshot, hashedPassword, err := a.userRepo.FindSnapshotByEmail(ctx, credentials.Email().Value())
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if snapshot == nil {
		return nil, ErrInvalidCredentials
	}
	if !snapshot.IsActive {
		return nil, ErrUserInactive
	}

	if err := password.ComparePassword(hashedPassword, credentials.Password().Value()); err != nil {
		return nil, ErrInvalidCredentials
	}

	return snapshot, nil
}

func (a *authCommandsImpl) generateTokenPair(userID uuid.UUID, role user.Role) (*TokenPair, error) {
	accessToken, err := a.jwtService.GenerateAccessToken(userID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	refreshToken, err := a.jwtService.GenerateRefreshToken(userID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
