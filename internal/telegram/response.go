package telegram

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-telegram/bot"
)

// Response is the envelope contract for all remote API calls: success flag,
// remote error code, and human-readable description.
type Response struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// responseFor folds a client-library result into the Response envelope.
func responseFor(ok bool, err error) Response {
	if err != nil {
		return Response{OK: false, ErrorCode: codeFor(err), Description: err.Error()}
	}
	if !ok {
		return Response{OK: false, Description: "remote API returned ok=false"}
	}
	return Response{OK: true}
}

// codeFor maps the client library's sentinel errors back to HTTP-shaped
// remote error codes.
func codeFor(err error) int {
	switch {
	case errors.Is(err, bot.ErrorBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, bot.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, bot.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, bot.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, bot.ErrorConflict):
		return http.StatusConflict
	case errors.Is(err, bot.ErrorTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return 0
	}
}

// WebhookConfigError reports a remote rejection of a webhook set/delete.
type WebhookConfigError struct {
	Op          string
	Code        int
	Description string
}

func (e *WebhookConfigError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s rejected (code %d): %s", e.Op, e.Code, e.Description)
	}
	return fmt.Sprintf("%s rejected: %s", e.Op, e.Description)
}
