// Package dispatch runs registered plugins against one classified update.
//
// A Handler is a per-update dispatch session: plugins execute strictly
// sequentially in registration order, never concurrently within one Resolve
// call. The kill switch is cooperative: a plugin whose handler returns
// Result{StopDispatch: true} and which was registered with KillOnStop stops
// every plugin after it (in registration order) from starting; it cannot
// interrupt a plugin already in progress. The killed flag is checked before
// each invocation, and Kill is idempotent.
//
// Plugins route by update type: each plugin carries a registration map from
// type tag to handler function plus an optional generic fallback, populated
// at construction. A plugin with no handler for the update's type is a no-op.
//
// Progress values are emitted through an explicit Sink rather than returned;
// the handler's Result carries only the stop/continue decision. Sinks must
// not block on I/O.
//
// Failure isolation: each plugin invocation is wrapped, so an error return or
// panic from one plugin is reported to the crash pad (with the pretty-printed
// update as context) and does not prevent sibling plugins from running.
package dispatch
