package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/roh2cool/project4/internal/domain"
	"github.com/roh2cool/project4/internal/repository"
	"github.com/roh2cool/project4/internal/service"
	"github.com/roh2cool/project4/pkg/log"
	"github.com/roh2cool/project4/pkg/middleware"
	"github.com/roh2cool/project4/pkg/pagination"
	"github.com/roh2cool/project4/pkg/response"
)

// Handler handles HTTP requests for the network service.
type Handler struct {
	userService    service.UserService
	postService    service.PostService
	socialService  service.SocialService
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(userService service.UserService, postService service.PostService, socialService service.SocialService, authMiddleware *middleware.AuthMiddleware) *Handler {
	return &Handler{
		userService:    userService,
		postService:    postService,
		socialService:  socialService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/refresh", h.RefreshToken)
			auth.POST("/logout", h.authMiddleware.RequireAuth(), h.Logout)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", h.authMiddleware.OptionalAuth(), h.Feed)
			posts.GET("/following", h.authMiddleware.RequireAuth(), h.FollowingFeed)
			posts.POST("", h.authMiddleware.RequireAuth(), h.CreatePost)
			posts.POST("/:post_id", h.authMiddleware.RequireAuth(), h.EditPost)
			posts.POST("/:post_id/like", h.authMiddleware.RequireAuth(), h.ToggleLike)
		}

		users := api.Group("/users")
		{
			users.GET("/:user_id", h.authMiddleware.OptionalAuth(), h.Profile)
			users.POST("/:user_id/follow", h.authMiddleware.RequireAuth(), h.Follow)
			users.POST("/:user_id/unfollow", h.authMiddleware.RequireAuth(), h.Unfollow)
		}
	}
}

// Register handles user registration.
func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		l.Warn().Err(err).Msg("invalid register request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.Register(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			response.BadRequest(c, "passwords must match")
		case errors.Is(err, repository.ErrUsernameExists):
			response.Conflict(c, "username already taken")
		case errors.Is(err, repository.ErrEmailExists):
			response.Conflict(c, "email already taken")
		default:
			l.Error().Err(err).Msg("register failed")
			response.InternalError(c, "failed to register user")
		}
		return
	}

	response.Created(c, result)
}

// Login handles user login.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		l.Warn().Err(err).Msg("invalid login request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid username and/or password")
			return
		}
		l.Error().Err(err).Msg("login failed")
		response.InternalError(c, "failed to login")
		return
	}

	response.Success(c, result)
}

// RefreshToken handles token refresh.
func (h *Handler) RefreshToken(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid refresh token request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.RefreshToken(ctx, &req)
	if err != nil {
		l.Warn().Err(err).Msg("refresh token failed")
		response.Unauthorized(c, "invalid or expired refresh token")
		return
	}

	response.Success(c, result)
}

// Logout ends the caller's session and sends them back to the feed.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.userService.Logout(ctx, userID); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, userID).Msg("logout failed")
		response.InternalError(c, "failed to logout")
		return
	}

	response.Redirect(c, "/api/v1/posts")
}

// Feed returns one page of the global feed. Anyone can read it.
func (h *Handler) Feed(c *gin.Context) {
	ctx := c.Request.Context()
	viewerID := middleware.GetUserID(c)
	pageNumber := pagination.ParsePageNumber(c.Query("page"))

	result, err := h.postService.Feed(ctx, viewerID, pageNumber)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("feed failed")
		response.InternalError(c, "failed to load feed")
		return
	}

	response.Success(c, result)
}

// FollowingFeed returns one page of posts from users the caller follows.
func (h *Handler) FollowingFeed(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}
	pageNumber := pagination.ParsePageNumber(c.Query("page"))

	result, err := h.postService.FollowingFeed(ctx, userID, pageNumber)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, userID).Msg("following feed failed")
		response.InternalError(c, "failed to load feed")
		return
	}

	response.Success(c, result)
}

// CreatePost persists a new post for the caller and redirects to the feed.
func (h *Handler) CreatePost(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		l.Warn().Err(err).Msg("invalid new post submission")
		response.BadRequest(c, err.Error())
		return
	}

	if _, err := h.postService.Create(ctx, userID, req.Content); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("create post failed")
		response.InternalError(c, "failed to create post")
		return
	}

	response.Redirect(c, "/api/v1/posts")
}

// EditPost replaces a post's content and echoes the new content back so the
// client can update the page in place.
func (h *Handler) EditPost(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	postID := c.Param("post_id")
	var req domain.EditPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid edit post request")
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.postService.Edit(ctx, postID, userID, req.Content); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, "post not found")
		case errors.Is(err, service.ErrNotAuthor):
			response.Forbidden(c, "you do not have permission to do this")
		default:
			l.Error().Err(err).Str(log.FieldPostID, postID).Msg("edit post failed")
			response.InternalError(c, "failed to edit post")
		}
		return
	}

	response.Success(c, domain.EditPostResponse{
		Message: "Post updated successfully.",
		Content: req.Content,
	})
}

// ToggleLike flips the caller's like on a post.
func (h *Handler) ToggleLike(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	postID := c.Param("post_id")
	result, err := h.postService.ToggleLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		l.Error().Err(err).Str(log.FieldPostID, postID).Msg("toggle like failed")
		response.InternalError(c, "failed to toggle like")
		return
	}

	response.Success(c, result)
}

// Profile returns a user's profile page data. Anyone can view it.
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	targetID := c.Param("user_id")
	viewerID := middleware.GetUserID(c)
	pageNumber := pagination.ParsePageNumber(c.Query("page"))

	result, err := h.socialService.Profile(ctx, targetID, viewerID, pageNumber)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldTargetID, targetID).Msg("profile failed")
		response.InternalError(c, "failed to load profile")
		return
	}

	response.Success(c, result)
}

// Follow makes the caller follow the target user and reloads their profile.
func (h *Handler) Follow(c *gin.Context) {
	h.updateFollow(c, h.socialService.Follow, "follow failed")
}

// Unfollow makes the caller unfollow the target user and reloads their profile.
func (h *Handler) Unfollow(c *gin.Context) {
	h.updateFollow(c, h.socialService.Unfollow, "unfollow failed")
}

func (h *Handler) updateFollow(c *gin.Context, op func(ctx context.Context, followerID, targetID string) error, failMsg string) {
	ctx := c.Request.Context()
	followerID := middleware.GetUserID(c)
	if followerID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	targetID := c.Param("user_id")
	if err := op(ctx, followerID, targetID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).
			Str(log.FieldUserID, followerID).
			Str(log.FieldTargetID, targetID).
			Msg(failMsg)
		response.InternalError(c, "failed to update follow state")
		return
	}

	response.Redirect(c, "/api/v1/users/"+targetID)
}
