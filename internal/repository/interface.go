package repository

import (
	"context"
	"errors"

	"github.com/roh2cool/project4/internal/domain"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
	ErrPostNotFound   = errors.New("post not found")
)

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// PostRepository defines persistence operations for posts and their like sets.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	UpdateContent(ctx context.Context, id, content string) error

	// Feed queries; all listings are newest-first.
	CountAll(ctx context.Context) (int64, error)
	ListPage(ctx context.Context, offset, limit int) ([]domain.Post, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
	ListByAuthorPage(ctx context.Context, authorID string, offset, limit int) ([]domain.Post, error)
	CountByAuthors(ctx context.Context, authorIDs []string) (int64, error)
	ListByAuthorsPage(ctx context.Context, authorIDs []string, offset, limit int) ([]domain.Post, error)

	// Like-set operations. Add and Remove are idempotent.
	HasLiked(ctx context.Context, postID, userID string) (bool, error)
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
	CountLikes(ctx context.Context, postID string) (int64, error)
	CountLikesByPost(ctx context.Context, postIDs []string) (map[string]int64, error)
	LikedByUser(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
}

// FollowRepository defines persistence operations for follow edges.
// Follow and Unfollow are idempotent: set semantics absorb duplicates.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowingIDs(ctx context.Context, followerID string) ([]string, error)
	GetFollowersCount(ctx context.Context, userID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
}
