// Package plugins holds the built-in dispatch plugins shipped with the
// gateway. Each constructor returns a configured *dispatch.Plugin ready to be
// registered with the engine.
package plugins

import (
	"context"

	"github.com/mattjoyce/tgwire/internal/dispatch"
	"github.com/mattjoyce/tgwire/internal/log"
	"github.com/mattjoyce/tgwire/internal/update"
)

// Replier sends a plain text message to a chat. *telegram.Client satisfies
// this.
type Replier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Ping replies "pong" to "/ping" messages and stops further dispatch for
// that update. Non-ping messages pass through untouched.
func Ping(r Replier) *dispatch.Plugin {
	logger := log.WithPlugin("ping")

	return dispatch.NewPlugin("ping").KillOnStop().On(update.TypeMessage,
		func(ctx context.Context, u *update.Update, emit dispatch.Sink) (dispatch.Result, error) {
			text, chatID, ok := messageText(u)
			if !ok || text != "/ping" {
				return dispatch.Result{}, nil
			}

			if err := r.SendMessage(ctx, chatID, "pong"); err != nil {
				return dispatch.Result{}, err
			}
			logger.Debug("answered ping", "chat_id", chatID)
			return dispatch.Result{StopDispatch: true}, nil
		})
}

// AuditLog logs every update's type and id at debug level. It never stops
// dispatch, so it is safe to register first.
func AuditLog() *dispatch.Plugin {
	logger := log.WithPlugin("auditlog")

	return dispatch.NewPlugin("auditlog").OnAny(
		func(ctx context.Context, u *update.Update, emit dispatch.Sink) (dispatch.Result, error) {
			logger.Debug("update received", "update_id", u.ID(), "type", string(u.Type()))
			return dispatch.Result{}, nil
		})
}

// messageText extracts the text and chat id from a message update. ok is
// false when either field is missing.
func messageText(u *update.Update) (text string, chatID int64, ok bool) {
	msg, ok := u.Raw()["message"].(map[string]any)
	if !ok {
		return "", 0, false
	}
	text, ok = msg["text"].(string)
	if !ok {
		return "", 0, false
	}
	chat, ok := msg["chat"].(map[string]any)
	if !ok {
		return "", 0, false
	}
	id, ok := chat["id"].(float64)
	if !ok {
		return "", 0, false
	}
	return text, int64(id), true
}
