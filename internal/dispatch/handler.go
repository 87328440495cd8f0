package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mattjoyce/tgwire/internal/crashpad"
	"github.com/mattjoyce/tgwire/internal/log"
	"github.com/mattjoyce/tgwire/internal/update"
)

// Outcome summarizes one resolve cycle for logging and journaling.
type Outcome struct {
	PluginsRun int
	Killed     bool
	Failures   []string
}

// Handler owns the ordered plugin list for one dispatch session. It is
// created per incoming update, resolved exactly once, then discarded; it
// must not be shared between concurrent sessions.
type Handler struct {
	plugins []*Plugin
	killed  bool

	pad    *crashpad.Pad
	emit   Sink
	logger *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithCrashPad routes plugin failures to the given pad.
func WithCrashPad(p *crashpad.Pad) Option {
	return func(h *Handler) { h.pad = p }
}

// WithSink sets the progress sink passed to every plugin handler.
func WithSink(s Sink) Option {
	return func(h *Handler) { h.emit = s }
}

// New creates a dispatch session.
func New(opts ...Option) *Handler {
	h := &Handler{
		logger: log.WithComponent("dispatch"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddPlugins appends plugins to the ordered registry and returns the handler
// for chaining.
func (h *Handler) AddPlugins(plugins ...*Plugin) *Handler {
	h.plugins = append(h.plugins, plugins...)
	return h
}

// Kill sets the termination flag so no further plugin runs for the current
// update. Idempotent.
func (h *Handler) Kill() {
	h.killed = true
}

// Killed reports whether the session has been killed.
func (h *Handler) Killed() bool {
	return h.killed
}

// Resolve runs each registered plugin in order against the update. The
// killed flag is checked before every invocation, so the first plugin to
// request termination prevents all later plugins from starting.
//
// Plugin failures are isolated: an error or panic from one plugin is logged,
// reported to the crash pad when one is configured, and does not abort
// sibling plugins.
func (h *Handler) Resolve(ctx context.Context, u *update.Update) Outcome {
	logger := h.logger.With("update_id", u.ID(), "type", string(u.Type()))
	out := Outcome{}

	for _, p := range h.plugins {
		if h.killed {
			break
		}

		res, err := h.runPlugin(ctx, p, u)
		out.PluginsRun++

		if err != nil {
			failure := fmt.Sprintf("%s: %v", p.Name(), err)
			out.Failures = append(out.Failures, failure)
			logger.Error("plugin failed", "plugin", p.Name(), "error", err)
			h.report(ctx, p, u, err)
			continue
		}

		if res.StopDispatch && p.killOnStop {
			logger.Debug("plugin killed dispatch", "plugin", p.Name())
			h.Kill()
		}
	}

	out.Killed = h.killed
	logger.Debug("dispatch resolved", "plugins_run", out.PluginsRun, "killed", out.Killed)
	return out
}

// runPlugin executes one plugin, converting panics into errors.
func (h *Handler) runPlugin(ctx context.Context, p *Plugin, u *update.Update) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin panic: %v", r)
		}
	}()
	return p.Execute(ctx, u, h.emit)
}

// report forwards a plugin failure to the crash pad with the raw update as
// context. Reporting problems are logged, never propagated.
func (h *Handler) report(ctx context.Context, p *Plugin, u *update.Update, cause error) {
	if h.pad == nil {
		return
	}
	reported := fmt.Errorf("plugin %s: %w", p.Name(), cause)
	if err := h.pad.Report(ctx, 0, reported, u.JSON()); err != nil {
		h.logger.Warn("crash report not sent", "plugin", p.Name(), "error", err)
	}
}
