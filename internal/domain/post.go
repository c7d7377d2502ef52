package domain

import (
	"time"
)

// Post represents a post entity.
type Post struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreatePostRequest represents a new-post submission. The submission bound is
// 1000 characters; the column itself allows 10000.
type CreatePostRequest struct {
	Content string `json:"content" form:"content" binding:"required,max=1000"`
}

// EditPostRequest represents an edit to an existing post's content.
type EditPostRequest struct {
	Content string `json:"content" binding:"required,max=10000"`
}

// EditPostResponse echoes the new content back so a client script can update
// the page in place.
type EditPostResponse struct {
	Message string `json:"message"`
	Content string `json:"content"`
}

// LikeResponse reports the resulting like-set membership and total.
type LikeResponse struct {
	LikesPost  bool  `json:"likesPost"`
	LikesCount int64 `json:"likesCount"`
}

// PostAuthor identifies a post's author in feed payloads.
type PostAuthor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// PostResponse represents a post in feed and profile payloads.
type PostResponse struct {
	ID         string     `json:"id"`
	Author     PostAuthor `json:"author"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	LikesCount int64      `json:"likes_count"`
	LikesPost  bool       `json:"likes_post"`
}

// FeedResponse is one page of a feed plus its navigation fragments.
type FeedResponse struct {
	Posts       []PostResponse `json:"posts"`
	Page        int            `json:"page"`
	TotalPages  int            `json:"total_pages"`
	PreviousURL string         `json:"previous_url"`
	NextURL     string         `json:"next_url"`
}

// ToResponse converts a Post to its feed representation.
func (p *Post) ToResponse(likesCount int64, likesPost bool) PostResponse {
	return PostResponse{
		ID: p.ID,
		Author: PostAuthor{
			ID:       p.AuthorID,
			Username: p.AuthorUsername,
		},
		Content:    p.Content,
		CreatedAt:  p.CreatedAt,
		LikesCount: likesCount,
		LikesPost:  likesPost,
	}
}
