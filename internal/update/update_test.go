package update

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want Type
	}{
		{name: "message", raw: map[string]any{"update_id": 1.0, "message": map[string]any{}}, want: TypeMessage},
		{name: "edited message", raw: map[string]any{"edited_message": map[string]any{}}, want: TypeEditedMessage},
		{name: "channel post", raw: map[string]any{"channel_post": map[string]any{}}, want: TypeChannelPost},
		{name: "edited channel post", raw: map[string]any{"edited_channel_post": map[string]any{}}, want: TypeEditedChannelPost},
		{name: "inline query", raw: map[string]any{"inline_query": map[string]any{}}, want: TypeInlineQuery},
		{name: "chosen inline result", raw: map[string]any{"chosen_inline_result": map[string]any{}}, want: TypeChosenInlineResult},
		{name: "callback query only", raw: map[string]any{"callback_query": map[string]any{}}, want: TypeCallbackQuery},
		{name: "shipping query", raw: map[string]any{"shipping_query": map[string]any{}}, want: TypeShippingQuery},
		{name: "pre checkout query", raw: map[string]any{"pre_checkout_query": map[string]any{}}, want: TypePreCheckoutQuery},
		{name: "no recognized key", raw: map[string]any{"update_id": 1.0, "web_data": map[string]any{}}, want: TypeUnknown},
		{name: "empty map", raw: map[string]any{}, want: TypeUnknown},
		{name: "priority order wins", raw: map[string]any{"callback_query": map[string]any{}, "message": map[string]any{}}, want: TypeMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.raw); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpdateID(t *testing.T) {
	u := New(map[string]any{"update_id": 42.0, "message": map[string]any{}})
	if u.ID() != 42 {
		t.Errorf("ID() = %d, want 42", u.ID())
	}

	noID := New(map[string]any{"message": map[string]any{}})
	if noID.ID() != 0 {
		t.Errorf("ID() = %d, want 0 when update_id absent", noID.ID())
	}
}

func TestUpdateDecode(t *testing.T) {
	u := New(map[string]any{
		"update_id": 7.0,
		"message":   map[string]any{"text": "hello", "message_id": 3.0},
	})

	var view struct {
		UpdateID int64 `json:"update_id"`
		Message  *struct {
			Text      string `json:"text"`
			MessageID int    `json:"message_id"`
		} `json:"message"`
	}
	if err := u.Decode(&view); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if view.UpdateID != 7 || view.Message == nil || view.Message.Text != "hello" {
		t.Errorf("unexpected decoded view: %+v", view)
	}
}
