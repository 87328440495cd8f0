package update

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"testing"
)

const testToken = "123456789:ABC-DEF1234ghIkl-zyx57W2v1u123ew11"

func TestProcessErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		apiKey  string
		wantErr error
	}{
		{name: "empty input", input: "", apiKey: "", wantErr: ErrEmptyInput},
		{name: "empty input with token", input: "", apiKey: testToken, wantErr: ErrEmptyInput},
		{name: "invalid token", input: `{"update_id":1}`, apiKey: "not-a-token", wantErr: ErrInvalidToken},
		{name: "two tokens", input: `{"update_id":1}`, apiKey: "1:a 2:b", wantErr: ErrInvalidToken},
		{name: "malformed json without token", input: "not json", apiKey: "", wantErr: ErrMalformedJSON},
		{name: "unsigned non-json with valid token", input: "still not json", apiKey: testToken, wantErr: ErrMalformedJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Process(tt.input, tt.apiKey)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Process() error = %v, want %v", err, tt.wantErr)
			}
			if u != nil {
				t.Errorf("Process() returned update alongside error")
			}
		})
	}
}

func TestProcessRoundTrip(t *testing.T) {
	input := `{"update_id":1,"message":{"message_id":10,"text":"hi"}}`

	u, err := Process(input, "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if u.Type() != TypeMessage {
		t.Errorf("Type() = %v, want %v", u.Type(), TypeMessage)
	}
	if u.ID() != 1 {
		t.Errorf("ID() = %d, want 1", u.ID())
	}

	var want map[string]any
	if err := json.Unmarshal([]byte(input), &want); err != nil {
		t.Fatalf("unmarshal reference: %v", err)
	}
	if !reflect.DeepEqual(u.Raw(), want) {
		t.Errorf("Raw() = %v, want %v", u.Raw(), want)
	}
}

func TestProcessValidTokenPlainUpdate(t *testing.T) {
	u, err := Process(`{"update_id":2,"callback_query":{"id":"cb"}}`, testToken)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if u.Type() != TypeCallbackQuery {
		t.Errorf("Type() = %v, want %v", u.Type(), TypeCallbackQuery)
	}
}

func TestProcessWebAppRewrite(t *testing.T) {
	user := `{"id":99}`
	check := "auth_date=1\nquery_id=Q\nuser=" + user

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(testToken))
	sigMac := hmac.New(sha256.New, secretMac.Sum(nil))
	sigMac.Write([]byte(check))
	hash := hex.EncodeToString(sigMac.Sum(nil))

	body := fmt.Sprintf("auth_date=1&query_id=Q&user=%s&hash=%s", url.QueryEscape(user), hash)

	u, err := Process(body, testToken)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if u.Type() != TypeUnknown {
		t.Errorf("Type() = %v, want %v (web_data is not a platform update)", u.Type(), TypeUnknown)
	}

	wd, ok := u.Raw()["web_data"].(map[string]any)
	if !ok {
		t.Fatalf("expected web_data wrapper, got %v", u.Raw())
	}
	if wd["query_id"] != "Q" || wd["auth_date"] != "1" {
		t.Errorf("unexpected web_data contents: %v", wd)
	}
	if wd["user"] != user {
		t.Errorf("web_data user = %v, want %v", wd["user"], user)
	}
}
