package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

// webAppSecretKey is the fixed HMAC key used to derive the per-bot secret.
const webAppSecretKey = "WebAppData"

var tokenPattern = regexp.MustCompile(`[0-9]+:[A-Za-z0-9_-]+`)

// Validate reports whether token contains exactly one occurrence of the
// bot-token pattern. Zero matches or more than one separate match both fail.
func Validate(token string) bool {
	return len(tokenPattern.FindAllString(token, -1)) == 1
}

// ValidateWebAppData verifies a signed web-app payload against the bot token.
//
// The body is parsed as JSON when it is valid JSON, otherwise as URL-encoded
// form data (an optional leading "_auth=" prefix is stripped first). The
// payload must carry a "user" field; verification fails closed without it.
func ValidateWebAppData(token, body string) bool {
	fields, fromJSON := parsePayload(body)
	if fields == nil {
		return false
	}
	if _, ok := fields["user"]; !ok {
		return false
	}

	check := "auth_date=" + renderField(fields, "auth_date") +
		"\nquery_id=" + renderField(fields, "query_id") +
		"\nuser=" + renderUser(fields["user"], fromJSON)

	secret := hmacSHA256([]byte(webAppSecretKey), []byte(token))
	sig := hex.EncodeToString(hmacSHA256(secret, []byte(check)))

	supplied, _ := fields["hash"].(string)
	return hmac.Equal([]byte(sig), []byte(supplied))
}

// DecodePayload decodes a web-app payload body into a structured map, trying
// JSON first and URL-encoded form data second. Returns nil when the body
// decodes to neither, or decodes to an empty map.
func DecodePayload(body string) map[string]any {
	m, _ := parsePayload(body)
	if len(m) == 0 {
		return nil
	}
	return m
}

// parsePayload returns the payload fields and whether they came from JSON.
func parsePayload(body string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err == nil {
		return m, true
	}

	vals, err := url.ParseQuery(strings.TrimPrefix(body, "_auth="))
	if err != nil || len(vals) == 0 {
		return nil, false
	}
	m = make(map[string]any, len(vals))
	for k, v := range vals {
		if k == "" {
			continue
		}
		if len(v) > 0 {
			m[k] = v[0]
		} else {
			m[k] = ""
		}
	}
	if len(m) == 0 {
		return nil, false
	}
	return m, false
}

// renderField renders a check-string field value. Absent fields render empty;
// present values are preserved as supplied.
func renderField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	return renderScalar(v)
}

// renderUser re-serializes the user field: compact JSON when the payload was
// JSON, the percent-decoded scalar when it was form-encoded.
func renderUser(v any, fromJSON bool) string {
	if !fromJSON {
		return renderScalar(v)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func renderScalar(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func hmacSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}
