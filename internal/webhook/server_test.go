package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mattjoyce/tgwire/internal/dispatch"
	"github.com/mattjoyce/tgwire/internal/update"
)

// mockDispatcher is a mock implementation of Dispatcher for testing.
type mockDispatcher struct {
	dispatchFn func(ctx context.Context, body string) (dispatch.Outcome, error)
}

func (m *mockDispatcher) Dispatch(ctx context.Context, body string) (dispatch.Outcome, error) {
	if m.dispatchFn != nil {
		return m.dispatchFn(ctx, body)
	}
	return dispatch.Outcome{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
}

func testServer(cfg Config, d Dispatcher) *Server {
	if cfg.Listen == "" {
		cfg.Listen = "127.0.0.1:0"
	}
	if cfg.Path == "" {
		cfg.Path = "/webhook/telegram"
	}
	return New(cfg, d, testLogger())
}

func TestHandleUpdateSuccess(t *testing.T) {
	body := `{"update_id":1,"message":{"text":"hi"}}`

	var dispatched string
	s := testServer(Config{}, &mockDispatcher{
		dispatchFn: func(ctx context.Context, b string) (dispatch.Outcome, error) {
			dispatched = b
			return dispatch.Outcome{PluginsRun: 2}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if dispatched != body {
		t.Errorf("dispatched body = %q, want %q", dispatched, body)
	}

	var resp OKResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || !resp.OK {
		t.Errorf("response = %s, want {\"ok\":true}", rec.Body.String())
	}
}

func TestHandleUpdateSecretToken(t *testing.T) {
	s := testServer(Config{SecretToken: "hook-secret"}, &mockDispatcher{})
	router := s.setupRoutes()

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "matching secret", header: "hook-secret", wantStatus: http.StatusOK},
		{name: "missing secret", header: "", wantStatus: http.StatusForbidden},
		{name: "wrong secret", header: "guess", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(`{}`))
			if tt.header != "" {
				req.Header.Set("X-Telegram-Bot-Api-Secret-Token", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			// Rejections carry no auth details.
			if tt.wantStatus == http.StatusForbidden && !strings.Contains(rec.Body.String(), "forbidden") {
				t.Errorf("body = %s, want generic forbidden", rec.Body.String())
			}
		})
	}
}

func TestHandleUpdateBodyTooLarge(t *testing.T) {
	s := testServer(Config{MaxBodySize: 64}, &mockDispatcher{})

	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(strings.Repeat("x", 65)))
	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestHandleUpdateIngressErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "empty input", err: update.ErrEmptyInput, wantStatus: http.StatusBadRequest},
		{name: "malformed json", err: update.ErrMalformedJSON, wantStatus: http.StatusBadRequest},
		{name: "invalid token", err: update.ErrInvalidToken, wantStatus: http.StatusUnauthorized},
		{name: "unclassified", err: context.DeadlineExceeded, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer(Config{}, &mockDispatcher{
				dispatchFn: func(ctx context.Context, b string) (dispatch.Outcome, error) {
					return dispatch.Outcome{}, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader("x"))
			rec := httptest.NewRecorder()
			s.setupRoutes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestUnknownPathNotRouted(t *testing.T) {
	s := testServer(Config{}, &mockDispatcher{})

	req := httptest.NewRequest(http.MethodPost, "/other", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
