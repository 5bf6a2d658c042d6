package core

// Config represents the complete rosebot configuration structure
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	AI         AIConfig         `yaml:"ai"`
	Security   SecurityConfig   `yaml:"security"`
	Moderation ModerationConfig `yaml:"moderation"`
	Polling    PollingConfig    `yaml:"polling"`
	Health     HealthConfig     `yaml:"health"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// TelegramConfig represents the chat platform credentials
type TelegramConfig struct {
	Token string `yaml:"token"`
}

// AIConfig represents the AI passthrough configuration.
// An empty APIKey disables the /ai and /image commands with a
// "not configured" reply rather than an error.
type AIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"` // per-request bound, e.g. "30s"
}

// SecurityConfig represents the AI allow-list.
// AuthorizedUsers is a comma-separated list of numeric user ids so it can be
// supplied directly from an environment variable. It is parsed into a set at
// load time and immutable afterwards.
type SecurityConfig struct {
	AuthorizedUsers string `yaml:"authorized_users"`

	authorizedSet map[string]struct{}
}

// ModerationConfig represents moderation policy knobs.
// With Enforce false (the default) ban, kick and del are acknowledgement-only
// dry runs and no platform call is made. AutoBan additionally bans a user
// when their warning count reaches the threshold, and only acts when Enforce
// is also set.
type ModerationConfig struct {
	WarnThreshold int  `yaml:"warn_threshold"`
	AutoBan       bool `yaml:"auto_ban"`
	Enforce       bool `yaml:"enforce"`
}

// PollingConfig represents the supervised update-fetch loop configuration
type PollingConfig struct {
	Timeout     string `yaml:"timeout"`      // long-poll wait per fetch, e.g. "30s"
	BatchLimit  int    `yaml:"batch_limit"`  // max updates per fetch
	MaxAttempts int    `yaml:"max_attempts"` // consecutive fetch failures before giving up
	RetryDelay  string `yaml:"retry_delay"`  // base delay between restart attempts
	Backoff     string `yaml:"backoff"`      // "linear" (delay x attempt) or "fixed"
}

// HealthConfig represents the sibling web service configuration
type HealthConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	File         string `yaml:"file"`          // Log file path
	MaxSize      int    `yaml:"max_size"`      // Single file max size in MB (default: 100)
	MaxBackups   int    `yaml:"max_backups"`   // Number of backups to keep (default: 5)
	MaxAge       int    `yaml:"max_age"`       // Maximum days to retain (default: 30)
	Compress     bool   `yaml:"compress"`      // Whether to compress old logs
	EnableStdout bool   `yaml:"enable_stdout"` // Also output to stdout
}
