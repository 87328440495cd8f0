package webhook

import (
	"context"
	"log/slog"
	"time"

	"github.com/mattjoyce/tgwire/internal/crashpad"
	"github.com/mattjoyce/tgwire/internal/dispatch"
	"github.com/mattjoyce/tgwire/internal/journal"
	"github.com/mattjoyce/tgwire/internal/log"
	"github.com/mattjoyce/tgwire/internal/update"
)

// Engine wires ingress, plugin dispatch, and the journal into the
// per-request processing path. The plugin list is fixed at construction; a
// fresh dispatch session is created for every update so concurrent requests
// never share session state.
type Engine struct {
	botToken string
	plugins  []*dispatch.Plugin
	pad      *crashpad.Pad
	journal  *journal.Journal
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCrashPad routes plugin failures to the given pad.
func WithCrashPad(p *crashpad.Pad) EngineOption {
	return func(e *Engine) { e.pad = p }
}

// WithJournal records every dispatch cycle to the journal.
func WithJournal(j *journal.Journal) EngineOption {
	return func(e *Engine) { e.journal = j }
}

// NewEngine creates an Engine for one bot token and plugin list.
func NewEngine(botToken string, plugins []*dispatch.Plugin, opts ...EngineOption) *Engine {
	e := &Engine{
		botToken: botToken,
		plugins:  plugins,
		logger:   log.WithComponent("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dispatch processes one raw update body: ingress (auth + classify + parse),
// plugin resolution, and journaling. Ingress errors are returned to the
// caller; plugin failures are already isolated inside the session.
func (e *Engine) Dispatch(ctx context.Context, body string) (dispatch.Outcome, error) {
	started := time.Now()

	u, err := update.Process(body, e.botToken)
	if err != nil {
		return dispatch.Outcome{}, err
	}

	session := dispatch.New(dispatch.WithCrashPad(e.pad)).AddPlugins(e.plugins...)
	out := session.Resolve(ctx, u)

	e.record(ctx, u, out, time.Since(started))
	return out, nil
}

// record journals the finished cycle. Journal failures are logged, never
// surfaced: the update has already been dispatched.
func (e *Engine) record(ctx context.Context, u *update.Update, out dispatch.Outcome, took time.Duration) {
	if e.journal == nil {
		return
	}

	entry := journal.Entry{
		UpdateID:   u.ID(),
		Type:       string(u.Type()),
		ReceivedAt: time.Now().UTC().Add(-took),
		DurationMS: took.Milliseconds(),
		PluginsRun: out.PluginsRun,
		Killed:     out.Killed,
	}
	if len(out.Failures) > 0 {
		joined := out.Failures[0]
		for _, f := range out.Failures[1:] {
			joined += "; " + f
		}
		entry.Error = &joined
	}

	if _, err := e.journal.Record(ctx, entry); err != nil {
		e.logger.Error("failed to journal dispatch", "update_id", u.ID(), "error", err)
	}
}
