package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/roh2cool/project4/internal/audit"
	"github.com/roh2cool/project4/internal/domain"
	"github.com/roh2cool/project4/internal/repository"
	"github.com/roh2cool/project4/pkg/jwt"
	"github.com/roh2cool/project4/pkg/log"
)

// userServiceImpl implements UserService.
type userServiceImpl struct {
	repo   repository.UserRepository
	tokens *jwt.Manager
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, tokens *jwt.Manager) UserService {
	return &userServiceImpl{
		repo:   repo,
		tokens: tokens,
	}
}

// Register creates a new account and starts a session for it.
func (s *userServiceImpl) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	// Confirmation is checked before anything touches the database, so a
	// mismatch can never leave a user row behind.
	if req.Password != req.Confirmation {
		return nil, ErrPasswordMismatch
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate tokens after register")
		return nil, err
	}

	audit.Log(ctx, audit.ActionRegister, user.ID, "user registered")
	return resp, nil
}

// Login authenticates a username/password pair and starts a session.
func (s *userServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionLoginFailed, "", req.Username, "login failed: user not found")
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by username")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, user.ID, req.Username, "login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate tokens after login")
		return nil, err
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")
	return resp, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (s *userServiceImpl) RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	claims, err := s.tokens.ValidateToken(req.RefreshToken)
	if err != nil || claims.Type != "refresh" {
		l.Warn().Err(err).Msg("failed to refresh token")
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Str(log.FieldUserID, claims.UserID).Msg("failed to get user after token refresh")
		return nil, err
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionRefresh, user.ID, "token refreshed")
	return resp, nil
}

// Logout ends the caller's session by revoking their tokens.
func (s *userServiceImpl) Logout(ctx context.Context, userID string) error {
	s.tokens.RevokeUserTokens(userID)
	audit.Log(ctx, audit.ActionLogout, userID, "user logged out")
	return nil
}

func (s *userServiceImpl) issueTokens(user *domain.User) (*domain.AuthResponse, error) {
	accessToken, refreshToken, accessExp, _, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, err
	}

	return &domain.AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
	}, nil
}
