// Package webhook implements the inbound HTTP surface for platform updates.
//
// One POST endpoint receives update payloads, authenticates them, and hands
// them to the dispatch engine. Each request is one complete dispatch session:
// ingress, classification, plugin resolution, and journaling run to
// completion before the response is written.
//
// # Security Model
//
// - Optional X-Telegram-Bot-Api-Secret-Token check (constant-time comparison)
// - Body size limits enforced to prevent DoS
// - No auth details leaked in error responses (always generic 403)
// - Request logging excludes payload bodies
// - The bot token is read from configuration, never from the request
//
// # Request Flow
//
//  1. HTTP POST arrives at the configured path
//  2. Secret token header compared when configured (reject with 403)
//  3. Body size checked (reject with 413 if too large)
//  4. Body processed into a classified Update (400/401 on ingress errors)
//  5. Plugins resolved in registration order, honoring the kill switch
//  6. Outcome journaled
//  7. 200 OK returned
//
// # Error Responses
//
// - 400 Bad Request: empty body or malformed JSON
// - 401 Unauthorized: bot token failed validation
// - 403 Forbidden: secret token mismatch (no details)
// - 413 Payload Too Large: body exceeds max_body_size
package webhook
