package service

import (
	"context"
	"errors"

	"github.com/roh2cool/project4/internal/audit"
	"github.com/roh2cool/project4/internal/domain"
	"github.com/roh2cool/project4/internal/monitoring"
	"github.com/roh2cool/project4/internal/repository"
	"github.com/roh2cool/project4/internal/store"
	"github.com/roh2cool/project4/pkg/log"
	"github.com/roh2cool/project4/pkg/pagination"
	"github.com/roh2cool/project4/pkg/pubsub"
)

// postServiceImpl implements PostService.
type postServiceImpl struct {
	posts     repository.PostRepository
	follows   repository.FollowRepository
	counts    store.CountStore // nil disables caching
	publisher pubsub.Publisher // nil disables events
}

// NewPostService creates a new post service.
func NewPostService(posts repository.PostRepository, follows repository.FollowRepository, counts store.CountStore, publisher pubsub.Publisher) PostService {
	return &postServiceImpl{
		posts:     posts,
		follows:   follows,
		counts:    counts,
		publisher: publisher,
	}
}

// Feed returns one page of the global feed, newest-first.
func (s *postServiceImpl) Feed(ctx context.Context, viewerID string, pageNumber int) (*domain.FeedResponse, error) {
	total, err := s.posts.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	page := pagination.New(total, pageNumber, feedPageSize)
	posts, err := s.posts.ListPage(ctx, page.Offset(), page.PerPage)
	if err != nil {
		return nil, err
	}

	return s.buildFeed(ctx, posts, page, viewerID)
}

// FollowingFeed returns one page of posts authored by users the caller
// follows. An empty following set yields an empty feed.
func (s *postServiceImpl) FollowingFeed(ctx context.Context, userID string, pageNumber int) (*domain.FeedResponse, error) {
	followingIDs, err := s.follows.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, err := s.posts.CountByAuthors(ctx, followingIDs)
	if err != nil {
		return nil, err
	}

	page := pagination.New(total, pageNumber, feedPageSize)
	posts, err := s.posts.ListByAuthorsPage(ctx, followingIDs, page.Offset(), page.PerPage)
	if err != nil {
		return nil, err
	}

	return s.buildFeed(ctx, posts, page, userID)
}

// Create validates nothing beyond what binding already enforced and persists
// the post with the caller as its immutable author.
func (s *postServiceImpl) Create(ctx context.Context, authorID, content string) (*domain.Post, error) {
	l := log.Ctx(ctx)

	post := &domain.Post{
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, authorID).Msg("failed to create post")
		return nil, err
	}

	s.publish(ctx, pubsub.EventPostCreated, pubsub.PostCreatedPayload{
		PostID:   post.ID,
		AuthorID: authorID,
	})

	monitoring.PostsCreated.Inc()
	audit.LogWithTarget(ctx, audit.ActionNewPost, authorID, post.ID, "post created")
	return post, nil
}

// Edit replaces a post's content. Only the author may edit.
func (s *postServiceImpl) Edit(ctx context.Context, postID, editorID, content string) error {
	l := log.Ctx(ctx)

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		l.Error().Err(err).Str(log.FieldPostID, postID).Msg("failed to get post for edit")
		return err
	}

	if post.AuthorID != editorID {
		return ErrNotAuthor
	}

	if err := s.posts.UpdateContent(ctx, postID, content); err != nil {
		l.Error().Err(err).Str(log.FieldPostID, postID).Msg("failed to update post content")
		return err
	}

	audit.LogWithTarget(ctx, audit.ActionEditPost, editorID, postID, "post edited")
	return nil
}

// ToggleLike flips the caller's membership in the post's like set and returns
// the resulting state with the new total.
func (s *postServiceImpl) ToggleLike(ctx context.Context, postID, userID string) (*domain.LikeResponse, error) {
	l := log.Ctx(ctx)

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	liked, err := s.posts.HasLiked(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if liked {
		err = s.posts.RemoveLike(ctx, postID, userID)
	} else {
		err = s.posts.AddLike(ctx, postID, userID)
	}
	if err != nil {
		l.Error().Err(err).Str(log.FieldPostID, postID).Msg("failed to toggle like")
		return nil, err
	}
	likesPost := !liked

	// Nudge the cached count if it exists; a miss stays a miss until the
	// read below repopulates it.
	if s.counts != nil {
		var cacheErr error
		if likesPost {
			cacheErr = s.counts.CondIncrLikesCount(ctx, postID)
		} else {
			cacheErr = s.counts.CondDecrLikesCount(ctx, postID)
		}
		if cacheErr != nil {
			l.Warn().Err(cacheErr).Str(log.FieldPostID, postID).Msg("failed to adjust cached likes count")
		}
	}

	count, err := s.likesCount(ctx, postID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pubsub.EventPostLiked, pubsub.PostLikedPayload{
		PostID: postID,
		UserID: userID,
		Liked:  likesPost,
	})

	monitoring.LikesToggled.Inc()
	audit.LogWithTarget(ctx, audit.ActionLikeToggle, userID, postID, "like toggled")

	return &domain.LikeResponse{
		LikesPost:  likesPost,
		LikesCount: count,
	}, nil
}

// likesCount reads the cached like count first and falls back to the database
// on miss, repopulating the cache best effort.
func (s *postServiceImpl) likesCount(ctx context.Context, postID string) (int64, error) {
	l := log.Ctx(ctx)

	if s.counts != nil {
		count, found, err := s.counts.GetLikesCount(ctx, postID)
		if err != nil {
			l.Warn().Err(err).Str(log.FieldPostID, postID).Msg("redis get likes count failed, falling back to db")
		}
		if found {
			return count, nil
		}
	}

	count, err := s.posts.CountLikes(ctx, postID)
	if err != nil {
		return 0, err
	}

	if s.counts != nil {
		if err := s.counts.SetLikesCount(ctx, postID, count); err != nil {
			l.Warn().Err(err).Str(log.FieldPostID, postID).Msg("failed to cache likes count")
		}
	}

	return count, nil
}

// buildFeed annotates a page of posts with like totals and, for an
// authenticated viewer, their own like membership.
func (s *postServiceImpl) buildFeed(ctx context.Context, posts []domain.Post, page pagination.Page, viewerID string) (*domain.FeedResponse, error) {
	postIDs := make([]string, 0, len(posts))
	for i := range posts {
		postIDs = append(postIDs, posts[i].ID)
	}

	likeCounts, err := s.posts.CountLikesByPost(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	likedByViewer, err := s.posts.LikedByUser(ctx, viewerID, postIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]domain.PostResponse, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		responses = append(responses, p.ToResponse(likeCounts[p.ID], likedByViewer[p.ID]))
	}

	return &domain.FeedResponse{
		Posts:       responses,
		Page:        page.Number,
		TotalPages:  page.TotalPages,
		PreviousURL: pagination.PreviousURL(page),
		NextURL:     pagination.NextURL(page),
	}, nil
}

func (s *postServiceImpl) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}

	event, err := pubsub.NewEvent(eventType, payload)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("event_type", eventType).Msg("failed to build event")
		return
	}
	if err := s.publisher.Publish(ctx, pubsub.ChannelActivity, event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}

// Ensure interface is satisfied at compile time.
var _ PostService = (*postServiceImpl)(nil)
