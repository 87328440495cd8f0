// Package token validates bot token syntax and verifies signed web-app payloads.
//
// # Token format
//
// A bot token is {digits}:{alphanumeric, hyphen or underscore}. Validation
// scans the whole string unanchored and requires exactly one occurrence of
// the pattern, which rejects values that embed a token inside extraneous
// text alongside a second token.
//
// # Web-app payload verification
//
// A web-app payload is signed by the platform with a two-step HMAC chain:
//
//	secret    = HMAC-SHA256(key="WebAppData", message=<bot token>)
//	signature = HMAC-SHA256(key=secret, message=<check string>)
//
// The check string is newline-joined with a fixed field order:
//
//	auth_date={v}\nquery_id={v}\nuser={v}
//
// Fields absent from the input render as empty values; input values are
// preserved verbatim. The hex signature is compared against the payload's
// "hash" field using hmac.Equal (constant-time).
//
// No freshness window is enforced on auth_date; callers that need replay
// protection must layer it on top.
package token
