package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/roh2cool/project4/internal/audit"
	"github.com/roh2cool/project4/internal/domain"
	"github.com/roh2cool/project4/internal/repository"
	"github.com/roh2cool/project4/internal/store"
	"github.com/roh2cool/project4/pkg/log"
	"github.com/roh2cool/project4/pkg/pagination"
	"github.com/roh2cool/project4/pkg/pubsub"
)

// socialServiceImpl implements SocialService.
type socialServiceImpl struct {
	users     repository.UserRepository
	posts     repository.PostRepository
	follows   repository.FollowRepository
	counts    store.CountStore // nil disables caching
	publisher pubsub.Publisher // nil disables events
}

// NewSocialService creates a new social graph service.
func NewSocialService(users repository.UserRepository, posts repository.PostRepository, follows repository.FollowRepository, counts store.CountStore, publisher pubsub.Publisher) SocialService {
	return &socialServiceImpl{
		users:     users,
		posts:     posts,
		follows:   follows,
		counts:    counts,
		publisher: publisher,
	}
}

// Follow adds the directed edge follower→target. Following an already
// followed user is a no-op. There is no self-follow guard; the original
// system never had one.
func (s *socialServiceImpl) Follow(ctx context.Context, followerID, targetID string) error {
	l := log.Ctx(ctx)

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.follows.Follow(ctx, followerID, targetID); err != nil {
		l.Error().Err(err).
			Str(log.FieldUserID, followerID).
			Str(log.FieldTargetID, targetID).
			Msg("failed to follow user")
		return err
	}

	s.invalidateFollowersCount(ctx, targetID)
	s.publish(ctx, pubsub.EventUserFollowed, pubsub.FollowPayload{
		FollowerID:  followerID,
		FollowingID: targetID,
	})

	audit.LogWithTarget(ctx, audit.ActionFollow, followerID, targetID, "user followed")
	return nil
}

// Unfollow removes the directed edge follower→target. Unfollowing a user who
// is not followed is a no-op.
func (s *socialServiceImpl) Unfollow(ctx context.Context, followerID, targetID string) error {
	l := log.Ctx(ctx)

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.follows.Unfollow(ctx, followerID, targetID); err != nil {
		l.Error().Err(err).
			Str(log.FieldUserID, followerID).
			Str(log.FieldTargetID, targetID).
			Msg("failed to unfollow user")
		return err
	}

	s.invalidateFollowersCount(ctx, targetID)
	s.publish(ctx, pubsub.EventUserUnfollowed, pubsub.FollowPayload{
		FollowerID:  followerID,
		FollowingID: targetID,
	})

	audit.LogWithTarget(ctx, audit.ActionUnfollow, followerID, targetID, "user unfollowed")
	return nil
}

// Profile assembles a profile page: the target user, whether the viewer
// follows them, both edge counts, and one page of the target's posts.
// viewerID is empty for anonymous viewers.
func (s *socialServiceImpl) Profile(ctx context.Context, targetID, viewerID string, pageNumber int) (*domain.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var (
		following      bool
		followingCount int64
		followersCount int64
		totalPosts     int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if viewerID == "" {
			return nil
		}
		var err error
		following, err = s.follows.IsFollowing(gctx, viewerID, targetID)
		return err
	})
	g.Go(func() error {
		var err error
		followingCount, err = s.follows.GetFollowingCount(gctx, targetID)
		return err
	})
	g.Go(func() error {
		var err error
		followersCount, err = s.followersCount(gctx, targetID)
		return err
	})
	g.Go(func() error {
		var err error
		totalPosts, err = s.posts.CountByAuthor(gctx, targetID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page := pagination.New(totalPosts, pageNumber, feedPageSize)
	posts, err := s.posts.ListByAuthorPage(ctx, targetID, page.Offset(), page.PerPage)
	if err != nil {
		return nil, err
	}

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

	resp := user.ToResponse()
	resp.Email = "" // profile pages never expose the address

	return &domain.ProfileResponse{
		User:           resp,
		Following:      following,
		FollowingCount: followingCount,
		FollowersCount: followersCount,
		Posts:          responses,
		Page:           page.Number,
		TotalPages:     page.TotalPages,
		PreviousURL:    pagination.PreviousURL(page),
		NextURL:        pagination.NextURL(page),
	}, nil
}

// followersCount reads the cached count first and falls back to the database
// on miss, repopulating the cache best effort.
func (s *socialServiceImpl) followersCount(ctx context.Context, userID string) (int64, error) {
	l := log.Ctx(ctx)

	if s.counts != nil {
		count, found, err := s.counts.GetFollowersCount(ctx, userID)
		if err != nil {
			l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("redis get followers count failed, falling back to db")
		}
		if found {
			return count, nil
		}
	}

	count, err := s.follows.GetFollowersCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.counts != nil {
		if err := s.counts.SetFollowersCount(ctx, userID, count); err != nil {
			l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to set followers count in redis")
		}
	}

	return count, nil
}

func (s *socialServiceImpl) invalidateFollowersCount(ctx context.Context, userID string) {
	if s.counts == nil {
		return
	}
	if err := s.counts.InvalidateFollowersCount(ctx, userID); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to invalidate followers count")
	}
}

func (s *socialServiceImpl) publish(ctx context.Context, eventType string, payload interface{}) {
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
var _ SocialService = (*socialServiceImpl)(nil)
