package webhook

import (
	"context"

	"github.com/mattjoyce/tgwire/internal/dispatch"
)

// Dispatcher processes one raw update body through ingress and plugin
// resolution. *Engine is the production implementation.
type Dispatcher interface {
	Dispatch(ctx context.Context, body string) (dispatch.Outcome, error)
}

// Config holds webhook server configuration.
type Config struct {
	// Listen is the local address to bind (e.g. "127.0.0.1:8081").
	Listen string

	// Path is the URL path updates are POSTed to.
	Path string

	// SecretToken, when non-empty, must match the
	// X-Telegram-Bot-Api-Secret-Token header on every request.
	SecretToken string

	// MaxBodySize is the maximum allowed request body size in bytes
	// (default: 1MB).
	MaxBodySize int64
}

// OKResponse is the JSON response for accepted updates.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the JSON response for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Default values
const (
	DefaultMaxBodySize = 1048576 // 1 MB

	secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
)
