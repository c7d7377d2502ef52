package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roh2cool/project4/internal/domain"
)

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-based post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// Create persists a new post with a generated ID.
func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	post.ID = uuid.New().String()

	model := &domain.PostModel{
		ID:       post.ID,
		AuthorID: post.AuthorID,
		Content:  post.Content,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	post.CreatedAt = model.CreatedAt
	post.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a post by ID with its author preloaded.
func (r *GormPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var model domain.PostModel
	result := r.db.WithContext(ctx).Preload("Author").First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// UpdateContent replaces a post's content. The author and creation timestamp
// are never touched.
func (r *GormPostRepository) UpdateContent(ctx context.Context, id, content string) error {
	result := r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("id = ?", id).
		Update("content", content)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// CountAll returns the total number of posts.
func (r *GormPostRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PostModel{}).Count(&count).Error
	return count, err
}

// ListPage returns one page of all posts, newest-first.
func (r *GormPostRepository) ListPage(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	var models []domain.PostModel
	err := r.db.WithContext(ctx).Preload("Author").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toPosts(models), nil
}

// CountByAuthor returns the number of posts by one author.
func (r *GormPostRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// ListByAuthorPage returns one page of a single author's posts, newest-first.
func (r *GormPostRepository) ListByAuthorPage(ctx context.Context, authorID string, offset, limit int) ([]domain.Post, error) {
	var models []domain.PostModel
	err := r.db.WithContext(ctx).Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toPosts(models), nil
}

// CountByAuthors returns the number of posts by any of the given authors.
func (r *GormPostRepository) CountByAuthors(ctx context.Context, authorIDs []string) (int64, error) {
	if len(authorIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("author_id IN ?", authorIDs).
		Count(&count).Error
	return count, err
}

// ListByAuthorsPage returns one page of posts by any of the given authors,
// newest-first.
func (r *GormPostRepository) ListByAuthorsPage(ctx context.Context, authorIDs []string, offset, limit int) ([]domain.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var models []domain.PostModel
	err := r.db.WithContext(ctx).Preload("Author").
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toPosts(models), nil
}

// HasLiked reports whether userID is in postID's like set.
func (r *GormPostRepository) HasLiked(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.LikeModel{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddLike adds userID to postID's like set. Inserting an existing membership
// is a no-op.
func (r *GormPostRepository) AddLike(ctx context.Context, postID, userID string) error {
	model := domain.LikeModel{PostID: postID, UserID: userID}
	err := r.db.WithContext(ctx).Create(&model).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// RemoveLike removes userID from postID's like set. Removing an absent
// membership is a no-op.
func (r *GormPostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&domain.LikeModel{}).Error
}

// CountLikes returns the total number of likes on a post.
func (r *GormPostRepository) CountLikes(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.LikeModel{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// CountLikesByPost returns like totals for each of the given posts. Posts
// with no likes are present in the result with a zero count.
func (r *GormPostRepository) CountLikesByPost(ctx context.Context, postIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(postIDs))
	for _, id := range postIDs {
		result[id] = 0
	}
	if len(postIDs) == 0 {
		return result, nil
	}

	type row struct {
		PostID string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.LikeModel{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, rw := range rows {
		result[rw.PostID] = rw.Total
	}
	return result, nil
}

// LikedByUser reports, for each of the given posts, whether userID likes it.
func (r *GormPostRepository) LikedByUser(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		result[id] = false
	}
	if len(postIDs) == 0 || userID == "" {
		return result, nil
	}

	var models []domain.LikeModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	for _, m := range models {
		result[m.PostID] = true
	}
	return result, nil
}

func toPosts(models []domain.PostModel) []domain.Post {
	posts := make([]domain.Post, 0, len(models))
	for i := range models {
		posts = append(posts, *models[i].ToDomain())
	}
	return posts
}

// Ensure interface is satisfied at compile time.
var _ PostRepository = (*GormPostRepository)(nil)
