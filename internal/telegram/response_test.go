package telegram

import (
	"fmt"
	"testing"

	"github.com/go-telegram/bot"
)

func TestResponseFor(t *testing.T) {
	tests := []struct {
		name     string
		ok       bool
		err      error
		wantOK   bool
		wantCode int
	}{
		{name: "success", ok: true, err: nil, wantOK: true},
		{name: "remote ok=false", ok: false, err: nil, wantOK: false},
		{name: "unauthorized", ok: false, err: fmt.Errorf("call: %w", bot.ErrorUnauthorized), wantOK: false, wantCode: 401},
		{name: "forbidden", ok: false, err: fmt.Errorf("call: %w", bot.ErrorForbidden), wantOK: false, wantCode: 403},
		{name: "bad request", ok: false, err: fmt.Errorf("call: %w", bot.ErrorBadRequest), wantOK: false, wantCode: 400},
		{name: "too many requests", ok: false, err: fmt.Errorf("call: %w", bot.ErrorTooManyRequests), wantOK: false, wantCode: 429},
		{name: "unclassified", ok: false, err: fmt.Errorf("connection reset"), wantOK: false, wantCode: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := responseFor(tt.ok, tt.err)
			if resp.OK != tt.wantOK {
				t.Errorf("OK = %v, want %v", resp.OK, tt.wantOK)
			}
			if resp.ErrorCode != tt.wantCode {
				t.Errorf("ErrorCode = %d, want %d", resp.ErrorCode, tt.wantCode)
			}
			if !tt.wantOK && resp.Description == "" {
				t.Error("failure response should carry a description")
			}
		})
	}
}

func TestWebhookConfigErrorString(t *testing.T) {
	e := &WebhookConfigError{Op: "setWebhook", Code: 400, Description: "bad webhook: HTTPS url must be provided"}
	want := "setWebhook rejected (code 400): bad webhook: HTTPS url must be provided"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}

	noCode := &WebhookConfigError{Op: "deleteWebhook", Description: "remote API returned ok=false"}
	if noCode.Error() != "deleteWebhook rejected: remote API returned ok=false" {
		t.Errorf("Error() = %q", noCode.Error())
	}
}
