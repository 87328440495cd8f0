package config

// Config is the root tgwire configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Bot     BotConfig     `yaml:"bot"`
	Webhook WebhookConfig `yaml:"webhook"`
	Journal JournalConfig `yaml:"journal"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR (default: INFO).
	Level string `yaml:"level"`
}

// BotConfig identifies the bot and the administrative crash-report
// destination.
type BotConfig struct {
	// Token is the bot API token. Supports ${ENV_VAR} expansion so the
	// secret never lives in the file itself.
	Token string `yaml:"token"`

	// AdminChatID is the chat that receives crash reports. 0 leaves the
	// crash pad destination unset.
	AdminChatID int64 `yaml:"admin_chat_id"`
}

// WebhookConfig configures the inbound HTTP surface.
type WebhookConfig struct {
	// Listen is the local address to bind (default: 127.0.0.1:8081).
	Listen string `yaml:"listen"`

	// Path is the URL path updates are POSTed to (default: /webhook/telegram).
	Path string `yaml:"path"`

	// PublicURL is the externally reachable URL registered with the remote
	// API by `tgwire webhook set`.
	PublicURL string `yaml:"public_url"`

	// SecretToken, when set, must match the X-Telegram-Bot-Api-Secret-Token
	// header on every inbound request.
	SecretToken string `yaml:"secret_token,omitempty"`

	// MaxBodySize is the maximum request body size (e.g. "1MB", "524288";
	// default: 1MB).
	MaxBodySize string `yaml:"max_body_size,omitempty"`
}

// JournalConfig configures the dispatch journal.
type JournalConfig struct {
	// Path is the SQLite database file (default: tgwire.db).
	Path string `yaml:"path"`
}

// Default values
const (
	DefaultListen      = "127.0.0.1:8081"
	DefaultPath        = "/webhook/telegram"
	DefaultJournalPath = "tgwire.db"
	DefaultLogLevel    = "INFO"
)
