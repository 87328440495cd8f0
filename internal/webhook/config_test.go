package webhook

import (
	"testing"

	"github.com/mattjoyce/tgwire/internal/config"
)

func TestParseMaxBodySize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "", want: DefaultMaxBodySize},
		{input: "1048576", want: 1048576},
		{input: "512KB", want: 512 * 1024},
		{input: "1MB", want: 1024 * 1024},
		{input: "2GB", want: 2 * 1024 * 1024 * 1024},
		{input: "1mb", want: 1024 * 1024},
		{input: "abc", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseMaxBodySize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseMaxBodySize(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseMaxBodySize(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseMaxBodySize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromGlobalConfig(t *testing.T) {
	wc := &config.WebhookConfig{
		Listen:      "127.0.0.1:9000",
		Path:        "/hooks/tg",
		SecretToken: "s",
		MaxBodySize: "2MB",
	}

	cfg, err := FromGlobalConfig(wc)
	if err != nil {
		t.Fatalf("FromGlobalConfig: %v", err)
	}
	if cfg.Listen != wc.Listen || cfg.Path != wc.Path || cfg.SecretToken != wc.SecretToken {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.MaxBodySize != 2*1024*1024 {
		t.Errorf("MaxBodySize = %d, want 2MB", cfg.MaxBodySize)
	}

	if _, err := FromGlobalConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
