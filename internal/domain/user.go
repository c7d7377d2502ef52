package domain

import (
	"time"
)

// User represents a user entity.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Username     string `json:"username" form:"username" binding:"required,min=3,max=50"`
	Email        string `json:"email" form:"email" binding:"required,email"`
	Password     string `json:"password" form:"password" binding:"required,min=6"`
	Confirmation string `json:"confirmation" form:"confirmation" binding:"required"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// RefreshTokenRequest represents a refresh token request.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse represents authentication response with tokens.
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    int64        `json:"expires_at"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// ProfileResponse is the payload rendered on a profile page: the target user,
// the relationship from the viewer's perspective, both edge counts, and a page
// of the target's posts.
type ProfileResponse struct {
	User           UserResponse   `json:"user"`
	Following      bool           `json:"following"`
	FollowingCount int64          `json:"following_count"`
	FollowersCount int64          `json:"followers_count"`
	Posts          []PostResponse `json:"posts"`
	Page           int            `json:"page"`
	TotalPages     int            `json:"total_pages"`
	PreviousURL    string         `json:"previous_url"`
	NextURL        string         `json:"next_url"`
}
