package update

import (
	"encoding/json"
)

// Type tags one inbound update with its platform event kind.
type Type string

// Recognized update types, in classification priority order.
const (
	TypeMessage           Type = "message"
	TypeEditedMessage     Type = "edited_message"
	TypeChannelPost       Type = "channel_post"
	TypeEditedChannelPost Type = "edited_channel_post"
	TypeInlineQuery       Type = "inline_query"
	TypeChosenInlineResult Type = "chosen_inline_result"
	TypeCallbackQuery     Type = "callback_query"
	TypeShippingQuery     Type = "shipping_query"
	TypePreCheckoutQuery  Type = "pre_checkout_query"
	TypeUnknown           Type = "unknown"
)

// classificationOrder fixes first-match-wins priority for Classify.
var classificationOrder = []Type{
	TypeMessage,
	TypeEditedMessage,
	TypeChannelPost,
	TypeEditedChannelPost,
	TypeInlineQuery,
	TypeChosenInlineResult,
	TypeCallbackQuery,
	TypeShippingQuery,
	TypePreCheckoutQuery,
}

// KnownTypes returns the recognized type names in classification priority
// order, e.g. for a webhook registration's allowed_updates list.
func KnownTypes() []string {
	out := make([]string, len(classificationOrder))
	for i, t := range classificationOrder {
		out[i] = string(t)
	}
	return out
}

// Classify returns the tag for the first recognized top-level key present in
// raw, or TypeUnknown when none matches.
func Classify(raw map[string]any) Type {
	for _, t := range classificationOrder {
		if _, ok := raw[string(t)]; ok {
			return t
		}
	}
	return TypeUnknown
}

// Update is an immutable snapshot of one inbound event. It is owned by the
// dispatch call stack for the duration of one resolve cycle and never
// persisted.
type Update struct {
	raw map[string]any
	typ Type
}

// New constructs an Update from a parsed backing map, classifying it once.
func New(raw map[string]any) *Update {
	return &Update{raw: raw, typ: Classify(raw)}
}

// Type returns the update's classified type tag.
func (u *Update) Type() Type {
	return u.typ
}

// Raw returns the backing map. Callers must treat it as read-only.
func (u *Update) Raw() map[string]any {
	return u.raw
}

// ID returns the update_id field, or 0 when absent.
func (u *Update) ID() int64 {
	if v, ok := u.raw["update_id"].(float64); ok {
		return int64(v)
	}
	return 0
}

// JSON returns the pretty-printed backing map, suitable for crash-report
// context blocks.
func (u *Update) JSON() string {
	b, err := json.MarshalIndent(u.raw, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Decode re-marshals the backing map into a typed view, e.g. a
// *models.Update from the outbound client's model package.
func (u *Update) Decode(v any) error {
	b, err := json.Marshal(u.raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
