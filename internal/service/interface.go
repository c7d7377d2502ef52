package service

import (
	"context"
	"errors"

	"github.com/roh2cool/project4/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("passwords must match")
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrNotAuthor          = errors.New("caller is not the post author")
)

// feedPageSize is how many posts every feed page holds.
const feedPageSize = 10

// UserService defines the interface for account and session logic.
type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
}

// PostService defines the interface for post and feed logic.
type PostService interface {
	Feed(ctx context.Context, viewerID string, pageNumber int) (*domain.FeedResponse, error)
	FollowingFeed(ctx context.Context, userID string, pageNumber int) (*domain.FeedResponse, error)
	Create(ctx context.Context, authorID, content string) (*domain.Post, error)
	Edit(ctx context.Context, postID, editorID, content string) error
	ToggleLike(ctx context.Context, postID, userID string) (*domain.LikeResponse, error)
}

// SocialService defines the interface for the follow graph and profiles.
type SocialService interface {
	Follow(ctx context.Context, followerID, targetID string) error
	Unfollow(ctx context.Context, followerID, targetID string) error
	Profile(ctx context.Context, targetID, viewerID string, pageNumber int) (*domain.ProfileResponse, error)
}
