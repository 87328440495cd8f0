package dispatch

import (
	"context"

	"github.com/mattjoyce/tgwire/internal/update"
)

// Result is the final decision of one plugin handler invocation.
type Result struct {
	// StopDispatch asks the session to stop after this plugin, honored only
	// for plugins registered with KillOnStop.
	StopDispatch bool
}

// Sink receives intermediate progress values emitted by a handler. Sinks
// must not block on I/O.
type Sink func(v any)

// HandlerFunc handles one update of a specific type.
type HandlerFunc func(ctx context.Context, u *update.Update, emit Sink) (Result, error)

// Plugin is a unit of dispatch logic: a named set of type-specific handlers
// with an optional generic fallback and a cooperative kill flag.
//
// Plugins are registered once into a Handler's ordered list and executed at
// most once per update.
type Plugin struct {
	name       string
	killOnStop bool
	handlers   map[update.Type]HandlerFunc
	fallback   HandlerFunc
}

// NewPlugin creates an empty plugin. Register handlers with On and OnAny.
func NewPlugin(name string) *Plugin {
	return &Plugin{
		name:     name,
		handlers: make(map[update.Type]HandlerFunc),
	}
}

// Name returns the plugin's registered name.
func (p *Plugin) Name() string {
	return p.name
}

// On registers the handler for one update type. Returns the plugin for
// chaining.
func (p *Plugin) On(t update.Type, fn HandlerFunc) *Plugin {
	p.handlers[t] = fn
	return p
}

// OnAny registers the generic fallback, invoked when no type-specific
// handler matches.
func (p *Plugin) OnAny(fn HandlerFunc) *Plugin {
	p.fallback = fn
	return p
}

// KillOnStop marks the plugin so a truthy StopDispatch result kills the
// dispatch session.
func (p *Plugin) KillOnStop() *Plugin {
	p.killOnStop = true
	return p
}

// Execute routes the update to the matching type-specific handler, falling
// back to the generic one. With neither registered it is a no-op.
func (p *Plugin) Execute(ctx context.Context, u *update.Update, emit Sink) (Result, error) {
	fn, ok := p.handlers[u.Type()]
	if !ok {
		fn = p.fallback
	}
	if fn == nil {
		return Result{}, nil
	}
	if emit == nil {
		emit = func(any) {}
	}
	return fn(ctx, u, emit)
}
