// Package crashpad is the administrative error-reporting side channel.
//
// A Pad holds the administrator's destination chat id and delivers structured
// crash reports through the outbound messaging collaborator. The admin id is
// the only intentionally global, cross-request mutable state in the process;
// it is guarded for hosts that run concurrent dispatch sessions.
//
// Delivery failures are logged and swallowed, never re-raised: a crash
// reporter that crashes recursively is worse than a lost report.
package crashpad

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mattjoyce/tgwire/internal/log"
)

//go:generate mockgen -destination=mocks/mock_sender.go -package=mocks github.com/mattjoyce/tgwire/internal/crashpad Sender

// Sender delivers a report to a chat. *telegram.Client satisfies this.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// ErrAdminUnset is returned by Report when no destination is available:
// reporting before SetAdminChatID is an explicit error, not a silent no-op.
var ErrAdminUnset = errors.New("crashpad: admin chat id is not set")

// Pad is an administrative reporter bound to one Sender.
type Pad struct {
	mu          sync.RWMutex
	adminChatID int64

	sender Sender
	logger *slog.Logger
}

// New creates a Pad. The admin chat id starts unset.
func New(sender Sender) *Pad {
	return &Pad{
		sender: sender,
		logger: log.WithComponent("crashpad"),
	}
}

// SetAdminChatID sets the administrator destination for the process lifetime.
func (p *Pad) SetAdminChatID(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.adminChatID = id
}

// AdminChatID returns the configured administrator destination (0 = unset).
func (p *Pad) AdminChatID() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.adminChatID
}

// Report formats and delivers a crash report. chatID 0 means the configured
// admin destination. reportCtx is a free-form context block, typically the
// pretty-printed raw update JSON.
//
// A missing destination returns ErrAdminUnset. A delivery failure from the
// Sender is logged and swallowed.
func (p *Pad) Report(ctx context.Context, chatID int64, reported error, reportCtx string) error {
	dest := chatID
	if dest == 0 {
		dest = p.AdminChatID()
	}
	if dest == 0 {
		return ErrAdminUnset
	}

	id := uuid.NewString()
	text := formatReport(id, reported, reportCtx)

	if err := p.sender.SendMessage(ctx, dest, text); err != nil {
		p.logger.Error("crash report delivery failed",
			"report_id", id,
			"chat_id", dest,
			"error", err,
		)
		return nil
	}

	p.logger.Info("crash report delivered", "report_id", id, "chat_id", dest)
	return nil
}

// formatReport renders the structured report body: id, error kind, message,
// and the free-form context block.
func formatReport(id string, reported error, reportCtx string) string {
	kind := "<nil>"
	msg := "<nil>"
	if reported != nil {
		kind = fmt.Sprintf("%T", reported)
		msg = reported.Error()
	}
	return fmt.Sprintf("crash report %s\nkind: %s\nerror: %s\ncontext:\n%s", id, kind, msg, reportCtx)
}
