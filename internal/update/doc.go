// Package update turns raw inbound payloads into classified, read-only
// Update values.
//
// An Update is an immutable snapshot of one inbound event: the parsed JSON
// backing map plus a type tag derived once at construction from the set of
// present top-level keys. Exactly one of the nine recognized keys is expected
// on well-formed input; classification is first-match-wins over the fixed
// priority order, and anything else is TypeUnknown.
//
// Process is the single ingress path. It authenticates the optional bot
// token, rewrites signed web-app payloads into {"web_data": ...} objects
// (a signed web-app payload is not itself a platform update, so it is
// wrapped before being treated as one), and parses the result. Failures are
// reported through the error channel only; a returned Update is always valid.
package update
