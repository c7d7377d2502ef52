package domain

import (
	"time"

	"gorm.io/gorm"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           string         `gorm:"type:varchar(36);primaryKey"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (UserModel) TableName() string { return "users" }

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// PostModel is the GORM model for the posts table. The author is immutable
// after creation and posts are never deleted by the application.
type PostModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	AuthorID  string    `gorm:"type:varchar(36);not null;index"`
	Author    UserModel `gorm:"foreignKey:AuthorID"`
	Content   string    `gorm:"type:varchar(10000);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_posts_created_at,sort:desc"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (PostModel) TableName() string { return "posts" }

// ToDomain converts PostModel to domain Post.
func (m *PostModel) ToDomain() *Post {
	p := &Post{
		ID:        m.ID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Author.ID != "" {
		p.AuthorUsername = m.Author.Username
	}
	return p
}

// LikeModel is the GORM model for the likes table: one row per (post, user)
// membership, set semantics enforced by the composite unique index.
type LikeModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	PostID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_likes_post_user"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_likes_post_user;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (LikeModel) TableName() string { return "likes" }

// FollowModel is the GORM model for the follows table: a directed edge from
// follower to followee, set semantics enforced by the composite unique index.
type FollowModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	FollowerID  string    `gorm:"column:follower_id;type:varchar(36);not null;uniqueIndex:idx_follows_edge"`
	FollowingID string    `gorm:"column:following_id;type:varchar(36);not null;uniqueIndex:idx_follows_edge;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (FollowModel) TableName() string { return "follows" }
