package pubsub

// ChannelActivity carries all activity events produced by the application.
// Consumers (notification workers, digest builders) filter on Event.Type.
const ChannelActivity = "activity"

// Event types published on ChannelActivity.
const (
	EventPostCreated    = "post.created"
	EventPostLiked      = "post.liked"
	EventUserFollowed   = "user.followed"
	EventUserUnfollowed = "user.unfollowed"
)

// PostCreatedPayload is published when a user creates a post.
type PostCreatedPayload struct {
	PostID   string `json:"post_id"`
	AuthorID string `json:"author_id"`
}

// PostLikedPayload is published when a like toggle lands in the "liked" state.
type PostLikedPayload struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
	Liked  bool   `json:"liked"`
}

// FollowPayload is published when a follow edge is added or removed.
type FollowPayload struct {
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
}
