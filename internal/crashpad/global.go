package crashpad

import (
	"context"
	"errors"
	"sync"
)

// ErrNotConfigured is returned by package-level calls before Configure.
var ErrNotConfigured = errors.New("crashpad: not configured")

var (
	defaultMu  sync.RWMutex
	defaultPad *Pad
)

// Configure installs the process-wide default Pad and returns it. The host
// application calls this once at startup; components that prefer explicit
// wiring can ignore the default and carry a *Pad themselves.
func Configure(sender Sender) *Pad {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultPad = New(sender)
	return defaultPad
}

// Default returns the process-wide Pad, or nil before Configure.
func Default() *Pad {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultPad
}

// SetAdminChatID sets the admin destination on the default Pad. No-op before
// Configure.
func SetAdminChatID(id int64) {
	if p := Default(); p != nil {
		p.SetAdminChatID(id)
	}
}

// AdminChatID reads the admin destination from the default Pad (0 when
// unset or unconfigured).
func AdminChatID() int64 {
	if p := Default(); p != nil {
		return p.AdminChatID()
	}
	return 0
}

// Report delivers a crash report via the default Pad.
func Report(ctx context.Context, chatID int64, reported error, reportCtx string) error {
	p := Default()
	if p == nil {
		return ErrNotConfigured
	}
	return p.Report(ctx, chatID, reported, reportCtx)
}
