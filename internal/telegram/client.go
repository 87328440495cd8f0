package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mattjoyce/tgwire/internal/log"
)

// Client wraps the third-party Telegram API client behind the narrow surface
// the dispatcher needs: identity lookup, webhook management, and message
// delivery for crash reports and plugin replies.
type Client struct {
	b      *bot.Bot
	logger *slog.Logger
}

// NewClient builds a client for the given bot token. The remote getMe probe
// is skipped at construction; call GetMe explicitly to verify credentials.
func NewClient(botToken string, opts ...bot.Option) (*Client, error) {
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(botToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	return &Client{
		b:      b,
		logger: log.WithComponent("telegram"),
	}, nil
}

// GetMe returns the authenticated bot account.
func (c *Client) GetMe(ctx context.Context) (*models.User, error) {
	user, err := c.b.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("getMe: %w", err)
	}
	return user, nil
}

// WebhookParams configures a remote webhook registration.
type WebhookParams struct {
	URL                string
	SecretToken        string
	AllowedUpdates     []string
	DropPendingUpdates bool
}

// SetWebhook registers the webhook URL with the remote API. A rejection is
// surfaced as *WebhookConfigError carrying the remote code and description.
func (c *Client) SetWebhook(ctx context.Context, params WebhookParams) error {
	ok, err := c.b.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:                params.URL,
		SecretToken:        params.SecretToken,
		AllowedUpdates:     params.AllowedUpdates,
		DropPendingUpdates: params.DropPendingUpdates,
	})
	if resp := responseFor(ok, err); !resp.OK {
		return &WebhookConfigError{Op: "setWebhook", Code: resp.ErrorCode, Description: resp.Description}
	}
	c.logger.Info("webhook registered", "url", params.URL)
	return nil
}

// DeleteWebhook removes the webhook registration from the remote API.
func (c *Client) DeleteWebhook(ctx context.Context, dropPendingUpdates bool) error {
	ok, err := c.b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{
		DropPendingUpdates: dropPendingUpdates,
	})
	if resp := responseFor(ok, err); !resp.OK {
		return &WebhookConfigError{Op: "deleteWebhook", Code: resp.ErrorCode, Description: resp.Description}
	}
	c.logger.Info("webhook deleted")
	return nil
}

// GetWebhookInfo returns the current remote webhook registration.
func (c *Client) GetWebhookInfo(ctx context.Context) (*models.WebhookInfo, error) {
	info, err := c.b.GetWebhookInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("getWebhookInfo: %w", err)
	}
	return info, nil
}

// SendMessage delivers a plain-text message to a chat. Satisfies
// crashpad.Sender.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := c.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("sendMessage to chat %d: %w", chatID, err)
	}
	return nil
}
