package update

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattjoyce/tgwire/internal/token"
)

// Ingress error taxonomy. All three are fatal to the current request and
// surfaced synchronously to the caller; none is retried.
var (
	ErrEmptyInput    = errors.New("update input is empty")
	ErrInvalidToken  = errors.New("bot token failed validation")
	ErrMalformedJSON = errors.New("update input is not valid JSON")
)

// Process turns raw input plus an optional bot token (empty string = absent)
// into a validated, classified Update.
//
// When the token authenticates a signed web-app payload, the input is
// replaced with {"web_data": <decoded payload>} before parsing: the payload
// is not itself a platform update and must not be classified as one.
func Process(input, apiKey string) (*Update, error) {
	if input == "" {
		return nil, ErrEmptyInput
	}

	if apiKey != "" {
		if !token.Validate(apiKey) {
			return nil, ErrInvalidToken
		}
		if token.ValidateWebAppData(apiKey, input) {
			if decoded := token.DecodePayload(input); len(decoded) > 0 {
				wrapped, err := json.Marshal(map[string]any{"web_data": decoded})
				if err != nil {
					return nil, fmt.Errorf("wrap web-app payload: %w", err)
				}
				input = string(wrapped)
			}
		}
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(input), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	return New(raw), nil
}
