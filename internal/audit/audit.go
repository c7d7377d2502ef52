package audit

import (
	"context"

	"github.com/roh2cool/project4/pkg/log"
)

// Audit actions.
const (
	ActionRegister    = "user.register"
	ActionLogin       = "user.login"
	ActionLoginFailed = "user.login_failed"
	ActionLogout      = "user.logout"
	ActionRefresh     = "user.refresh_token"
	ActionNewPost     = "post.create"
	ActionEditPost    = "post.edit"
	ActionLikeToggle  = "post.like_toggle"
	ActionFollow      = "user.follow"
	ActionUnfollow    = "user.unfollow"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithTarget emits an audit log entry that references another entity (the
// edited post, the followed user).
func LogWithTarget(ctx context.Context, action string, userID string, targetID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Msg(msg)
}

// LogWithDetail emits an audit log with an extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
