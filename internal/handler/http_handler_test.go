package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/roh2cool/project4/internal/domain"
	"github.com/roh2cool/project4/internal/repository"
	"github.com/roh2cool/project4/internal/service"
	"github.com/roh2cool/project4/pkg/jwt"
	"github.com/roh2cool/project4/pkg/middleware"
)

func newTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.UserModel{},
		&domain.PostModel{},
		&domain.LikeModel{},
		&domain.FollowModel{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	tokens, err := jwt.NewManager(15*time.Minute, time.Hour, "network-test")
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}

	userRepo := repository.NewGormUserRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	followRepo := repository.NewGormFollowRepository(db)

	userService := service.NewUserService(userRepo, tokens)
	postService := service.NewPostService(postRepo, followRepo, nil, nil)
	socialService := service.NewSocialService(userRepo, postRepo, followRepo, nil, nil)

	h := NewHandler(userService, postService, socialService, middleware.NewAuthMiddleware(tokens))

	r := gin.New()
	r.HandleMethodNotAllowed = true
	h.RegisterRoutes(r)
	return r
}

func doForm(r *gin.Engine, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// registerUser registers an account and returns its access token and user id.
func registerUser(t *testing.T, r *gin.Engine, username string) (token, userID string) {
	t.Helper()
	w := doForm(r, http.MethodPost, "/api/v1/auth/register", "", url.Values{
		"username":     {username},
		"email":        {username + "@example.com"},
		"password":     {"secret123"},
		"confirmation": {"secret123"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", username, w.Code, w.Body.String())
	}
	var resp domain.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.AccessToken, resp.User.ID
}

func createPost(t *testing.T, r *gin.Engine, token, content string) {
	t.Helper()
	w := doForm(r, http.MethodPost, "/api/v1/posts", token, url.Values{"content": {content}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create post: status %d, body %s", w.Code, w.Body.String())
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body["error"]
}

func TestMutatingEndpointsArePostOnly(t *testing.T) {
	r := newTestApp(t)

	w := doJSON(r, http.MethodGet, "/api/v1/auth/register", "", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET register: status %d, want 405", w.Code)
	}
	w = doJSON(r, http.MethodDelete, "/api/v1/posts", "", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE posts: status %d, want 405", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	r := newTestApp(t)

	registerUser(t, r, "alice")

	// Same username, different email.
	w := doForm(r, http.MethodPost, "/api/v1/auth/register", "", url.Values{
		"username":     {"alice"},
		"email":        {"other@example.com"},
		"password":     {"secret123"},
		"confirmation": {"secret123"},
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate username: status %d, want 409", w.Code)
	}
	if msg := errorMessage(t, w); msg != "username already taken" {
		t.Errorf("error = %q, want %q", msg, "username already taken")
	}

	// Mismatched confirmation never creates the account.
	w = doForm(r, http.MethodPost, "/api/v1/auth/register", "", url.Values{
		"username":     {"bob"},
		"email":        {"bob@example.com"},
		"password":     {"secret123"},
		"confirmation": {"different"},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("mismatch: status %d, want 400", w.Code)
	}
	if msg := errorMessage(t, w); msg != "passwords must match" {
		t.Errorf("error = %q, want %q", msg, "passwords must match")
	}

	// The username stayed free after the failed attempt.
	w = doForm(r, http.MethodPost, "/api/v1/auth/login", "", url.Values{
		"username": {"bob"},
		"password": {"secret123"},
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("login as never-created user: status %d, want 401", w.Code)
	}
}

func TestLogin(t *testing.T) {
	r := newTestApp(t)
	registerUser(t, r, "alice")

	w := doForm(r, http.MethodPost, "/api/v1/auth/login", "", url.Values{
		"username": {"alice"},
		"password": {"secret123"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", w.Code, w.Body.String())
	}
	var resp domain.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessToken == "" || resp.User.Username != "alice" {
		t.Errorf("unexpected login response: %+v", resp)
	}

	w = doForm(r, http.MethodPost, "/api/v1/auth/login", "", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d, want 401", w.Code)
	}
	if msg := errorMessage(t, w); msg != "invalid username and/or password" {
		t.Errorf("error = %q, want %q", msg, "invalid username and/or password")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	r := newTestApp(t)
	token, _ := registerUser(t, r, "alice")

	w := doForm(r, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("logout: status %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/api/v1/posts" {
		t.Errorf("Location = %q, want /api/v1/posts", loc)
	}

	// The old token no longer opens authenticated doors.
	w = doForm(r, http.MethodPost, "/api/v1/posts", token, url.Values{"content": {"hi"}})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("post after logout: status %d, want 401", w.Code)
	}
}

func TestCreatePost(t *testing.T) {
	r := newTestApp(t)
	token, _ := registerUser(t, r, "alice")

	// Anonymous callers cannot post.
	w := doForm(r, http.MethodPost, "/api/v1/posts", "", url.Values{"content": {"hi"}})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous post: status %d, want 401", w.Code)
	}

	// Empty content is rejected.
	w = doForm(r, http.MethodPost, "/api/v1/posts", token, url.Values{"content": {""}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty post: status %d, want 400", w.Code)
	}

	// Content over the 1000-character submission bound is rejected; content
	// exactly at the bound is accepted.
	w = doForm(r, http.MethodPost, "/api/v1/posts", token, url.Values{"content": {strings.Repeat("a", 1001)}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("over-length post: status %d, want 400", w.Code)
	}
	w = doForm(r, http.MethodPost, "/api/v1/posts", token, url.Values{"content": {strings.Repeat("a", 1000)}})
	if w.Code != http.StatusSeeOther {
		t.Errorf("max-length post: status %d, want 303", w.Code)
	}

	w = doForm(r, http.MethodPost, "/api/v1/posts", token, url.Values{"content": {"hello world"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create post: status %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/api/v1/posts" {
		t.Errorf("Location = %q, want /api/v1/posts", loc)
	}
}

func TestFeedOrderAndAnnotations(t *testing.T) {
	r := newTestApp(t)
	token, userID := registerUser(t, r, "alice")

	createPost(t, r, token, "first")
	createPost(t, r, token, "second")
	createPost(t, r, token, "third")

	// The feed is readable without credentials.
	w := doJSON(r, http.MethodGet, "/api/v1/posts", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("feed: status %d", w.Code)
	}
	var feed domain.FeedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(feed.Posts) != 3 {
		t.Fatalf("len(posts) = %d, want 3", len(feed.Posts))
	}
	if feed.Posts[0].Content != "third" {
		t.Errorf("first post = %q, want newest first", feed.Posts[0].Content)
	}
	if feed.Posts[0].Author.ID != userID || feed.Posts[0].Author.Username != "alice" {
		t.Errorf("author = %+v", feed.Posts[0].Author)
	}
	if feed.Page != 1 || feed.TotalPages != 1 {
		t.Errorf("page = %d/%d, want 1/1", feed.Page, feed.TotalPages)
	}
	if feed.PreviousURL != "" || feed.NextURL != "" {
		t.Errorf("nav = %q / %q, want empty", feed.PreviousURL, feed.NextURL)
	}
}

func TestFeedPagination(t *testing.T) {
	r := newTestApp(t)
	token, _ := registerUser(t, r, "alice")

	for i := 0; i < 25; i++ {
		createPost(t, r, token, fmt.Sprintf("post %d", i))
	}

	fetch := func(path string) domain.FeedResponse {
		t.Helper()
		w := doJSON(r, http.MethodGet, path, "", "")
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d", path, w.Code)
		}
		var feed domain.FeedResponse
		if err := json.Unmarshal(w.Body.Bytes(), &feed); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return feed
	}

	page1 := fetch("/api/v1/posts")
	if len(page1.Posts) != 10 || page1.TotalPages != 3 {
		t.Errorf("page 1: %d posts, %d pages, want 10 and 3", len(page1.Posts), page1.TotalPages)
	}
	if page1.PreviousURL != "" || page1.NextURL != "?page=2" {
		t.Errorf("page 1 nav = %q / %q", page1.PreviousURL, page1.NextURL)
	}

	page2 := fetch("/api/v1/posts?page=2")
	if len(page2.Posts) != 10 || page2.PreviousURL != "?page=1" || page2.NextURL != "?page=3" {
		t.Errorf("page 2: %d posts, nav %q / %q", len(page2.Posts), page2.PreviousURL, page2.NextURL)
	}

	page3 := fetch("/api/v1/posts?page=3")
	if len(page3.Posts) != 5 || page3.NextURL != "" {
		t.Errorf("page 3: %d posts, next %q", len(page3.Posts), page3.NextURL)
	}

	// Out-of-range and junk page numbers clamp instead of failing.
	clamped := fetch("/api/v1/posts?page=99")
	if clamped.Page != 3 || len(clamped.Posts) != 5 {
		t.Errorf("page 99 clamp: page %d with %d posts", clamped.Page, len(clamped.Posts))
	}
	junk := fetch("/api/v1/posts?page=banana")
	if junk.Page != 1 {
		t.Errorf("junk page = %d, want 1", junk.Page)
	}
}

func TestEditPost(t *testing.T) {
	r := newTestApp(t)
	aliceToken, _ := registerUser(t, r, "alice")
	bobToken, _ := registerUser(t, r, "bob")

	createPost(t, r, aliceToken, "original")

	w := doJSON(r, http.MethodGet, "/api/v1/posts", "", "")
	var feed domain.FeedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	postID := feed.Posts[0].ID

	// Someone else's edit is forbidden and changes nothing.
	w = doJSON(r, http.MethodPost, "/api/v1/posts/"+postID, bobToken, `{"content":"hijacked"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-author edit: status %d, want 403", w.Code)
	}
	if msg := errorMessage(t, w); msg != "you do not have permission to do this" {
		t.Errorf("error = %q", msg)
	}

	// The author's edit succeeds and echoes the content.
	w = doJSON(r, http.MethodPost, "/api/v1/posts/"+postID, aliceToken, `{"content":"updated"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("author edit: status %d, body %s", w.Code, w.Body.String())
	}
	var edit domain.EditPostResponse
	if err := json.Unmarshal(w.Body.Bytes(), &edit); err != nil {
		t.Fatalf("decode edit response: %v", err)
	}
	if edit.Message != "Post updated successfully." || edit.Content != "updated" {
		t.Errorf("edit response = %+v", edit)
	}

	w = doJSON(r, http.MethodGet, "/api/v1/posts", "", "")
	if err := json.Unmarshal(w.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if feed.Posts[0].Content != "updated" {
		t.Errorf("content = %q, want %q", feed.Posts[0].Content, "updated")
	}

	// Editing a missing post is a 404.
	w = doJSON(r, http.MethodPost, "/api/v1/posts/does-not-exist", aliceToken, `{"content":"x"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing post edit: status %d, want 404", w.Code)
	}
}

func TestToggleLike(t *testing.T) {
	r := newTestApp(t)
	aliceToken, _ := registerUser(t, r, "alice")
	bobToken, _ := registerUser(t, r, "bob")

	createPost(t, r, aliceToken, "likeable")

	w := doJSON(r, http.MethodGet, "/api/v1/posts", "", "")
	var feed domain.FeedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	postID := feed.Posts[0].ID

	toggle := func(token string) domain.LikeResponse {
		t.Helper()
		w := doJSON(r, http.MethodPost, "/api/v1/posts/"+postID+"/like", token, "")
		if w.Code != http.StatusOK {
			t.Fatalf("toggle like: status %d, body %s", w.Code, w.Body.String())
		}
		var resp domain.LikeResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode like response: %v", err)
		}
		return resp
	}

	got := toggle(bobToken)
	if !got.LikesPost || got.LikesCount != 1 {
		t.Errorf("first toggle = %+v, want likesPost=true count=1", got)
	}

	got = toggle(aliceToken)
	if !got.LikesPost || got.LikesCount != 2 {
		t.Errorf("second liker = %+v, want likesPost=true count=2", got)
	}

	// Toggling again restores the previous state.
	got = toggle(bobToken)
	if got.LikesPost || got.LikesCount != 1 {
		t.Errorf("un-like = %+v, want likesPost=false count=1", got)
	}

	// The feed reflects per-viewer membership.
	w = doJSON(r, http.MethodGet, "/api/v1/posts", aliceToken, "")
	if err := json.Unmarshal(w.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if !feed.Posts[0].LikesPost || feed.Posts[0].LikesCount != 1 {
		t.Errorf("feed annotation = %+v", feed.Posts[0])
	}

	w = doJSON(r, http.MethodPost, "/api/v1/posts/nope/like", bobToken, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("like missing post: status %d, want 404", w.Code)
	}
}

func TestProfileAndFollow(t *testing.T) {
	r := newTestApp(t)
	aliceToken, _ := registerUser(t, r, "alice")
	_, bobID := registerUser(t, r, "bob")

	// Missing users are a 404, not an empty profile.
	w := doJSON(r, http.MethodGet, "/api/v1/users/ghost", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing profile: status %d, want 404", w.Code)
	}
	if msg := errorMessage(t, w); msg != "user not found" {
		t.Errorf("error = %q", msg)
	}

	fetchProfile := func(token string) domain.ProfileResponse {
		t.Helper()
		w := doJSON(r, http.MethodGet, "/api/v1/users/"+bobID, token, "")
		if w.Code != http.StatusOK {
			t.Fatalf("profile: status %d, body %s", w.Code, w.Body.String())
		}
		var resp domain.ProfileResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode profile: %v", err)
		}
		return resp
	}

	profile := fetchProfile(aliceToken)
	if profile.Following || profile.FollowersCount != 0 {
		t.Errorf("pre-follow profile = %+v", profile)
	}
	if profile.User.Email != "" {
		t.Errorf("profile leaks email %q", profile.User.Email)
	}

	// Follow redirects back to the profile.
	w = doForm(r, http.MethodPost, "/api/v1/users/"+bobID+"/follow", aliceToken, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("follow: status %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/api/v1/users/"+bobID {
		t.Errorf("Location = %q", loc)
	}

	profile = fetchProfile(aliceToken)
	if !profile.Following || profile.FollowersCount != 1 {
		t.Errorf("post-follow profile = %+v", profile)
	}

	// Following twice changes nothing.
	doForm(r, http.MethodPost, "/api/v1/users/"+bobID+"/follow", aliceToken, nil)
	profile = fetchProfile(aliceToken)
	if profile.FollowersCount != 1 {
		t.Errorf("double follow count = %d, want 1", profile.FollowersCount)
	}

	// Anonymous viewers see the counts but no relationship.
	profile = fetchProfile("")
	if profile.Following {
		t.Error("anonymous viewer should not be following")
	}
	if profile.FollowersCount != 1 {
		t.Errorf("anonymous count = %d, want 1", profile.FollowersCount)
	}

	w = doForm(r, http.MethodPost, "/api/v1/users/"+bobID+"/unfollow", aliceToken, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("unfollow: status %d", w.Code)
	}
	profile = fetchProfile(aliceToken)
	if profile.Following || profile.FollowersCount != 0 {
		t.Errorf("post-unfollow profile = %+v", profile)
	}

	// Unfollowing again stays at zero.
	doForm(r, http.MethodPost, "/api/v1/users/"+bobID+"/unfollow", aliceToken, nil)
	profile = fetchProfile(aliceToken)
	if profile.FollowersCount != 0 {
		t.Errorf("double unfollow count = %d, want 0", profile.FollowersCount)
	}

	// Follow targets must exist.
	w = doForm(r, http.MethodPost, "/api/v1/users/ghost/follow", aliceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("follow missing user: status %d, want 404", w.Code)
	}
}

func TestFollowingFeed(t *testing.T) {
	r := newTestApp(t)
	aliceToken, _ := registerUser(t, r, "alice")
	bobToken, bobID := registerUser(t, r, "bob")
	carolToken, _ := registerUser(t, r, "carol")

	createPost(t, r, bobToken, "from bob")
	createPost(t, r, carolToken, "from carol")

	// The following feed needs credentials.
	w := doJSON(r, http.MethodGet, "/api/v1/posts/following", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous following feed: status %d, want 401", w.Code)
	}

	fetch := func() domain.FeedResponse {
		t.Helper()
		w := doJSON(r, http.MethodGet, "/api/v1/posts/following", aliceToken, "")
		if w.Code != http.StatusOK {
			t.Fatalf("following feed: status %d", w.Code)
		}
		var feed domain.FeedResponse
		if err := json.Unmarshal(w.Body.Bytes(), &feed); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return feed
	}

	// Following nobody yields an empty page, not an error.
	feed := fetch()
	if len(feed.Posts) != 0 || feed.TotalPages != 1 {
		t.Errorf("empty following feed = %+v", feed)
	}

	doForm(r, http.MethodPost, "/api/v1/users/"+bobID+"/follow", aliceToken, nil)

	feed = fetch()
	if len(feed.Posts) != 1 || feed.Posts[0].Content != "from bob" {
		t.Errorf("following feed = %+v, want only bob's post", feed.Posts)
	}
}

func TestProfilePaginatesPosts(t *testing.T) {
	r := newTestApp(t)
	token, userID := registerUser(t, r, "alice")

	for i := 0; i < 12; i++ {
		createPost(t, r, token, fmt.Sprintf("post %d", i))
	}

	w := doJSON(r, http.MethodGet, "/api/v1/users/"+userID, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("profile: status %d", w.Code)
	}
	var profile domain.ProfileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(profile.Posts) != 10 || profile.TotalPages != 2 || profile.NextURL != "?page=2" {
		t.Errorf("profile page 1: %d posts, %d pages, next %q", len(profile.Posts), profile.TotalPages, profile.NextURL)
	}

	w = doJSON(r, http.MethodGet, "/api/v1/users/"+userID+"?page=2", "", "")
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(profile.Posts) != 2 || profile.PreviousURL != "?page=1" || profile.NextURL != "" {
		t.Errorf("profile page 2: %d posts, nav %q / %q", len(profile.Posts), profile.PreviousURL, profile.NextURL)
	}
}
