// Package core implements the command engine of rosebot: configuration,
// authorization gates, the command router and its handlers, the warning
// store, the mute duration parser and the keyword responder.
//
// Configuration is loaded from a YAML file with ${ENV} expansion. Main
// sections:
//
//   - telegram: bot credential token (required to start the bot)
//   - ai: OpenAI passthrough key and model (optional)
//   - security: comma-separated allow-list of user ids for AI commands
//   - moderation: warn threshold, auto-ban and enforcement switches
//   - polling: long-poll timeouts and restart backoff policy
//   - health: sibling web service port
//   - logging: log configuration
package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/keepmind9/rosebot/pkg/constants"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel        = "info"
	DefaultLogMaxBackups   = 5
	DefaultLogEnableStdout = true

	DefaultAIModel   = "gpt-3.5-turbo"
	DefaultAITimeout = "30s"

	DefaultPollTimeout = "30s"
	DefaultRetryDelay  = "10s"

	BackoffLinear = "linear"
	BackoffFixed  = "fixed"
)

// LoadConfig loads configuration from file and expands environment variables.
//
// A missing telegram token is not an error here: the health web service must
// be able to start from the same file without credentials. The start command
// checks the token itself.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expandedData, err := expandEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// expandEnv replaces ${VAR_NAME} patterns with environment variable values
func expandEnv(input string) (string, error) {
	var missingVars []string

	result := os.Expand(input, func(key string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		missingVars = append(missingVars, key)
		return "" // Return empty string to let config parsing fail
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing required environment variables: %s",
			strings.Join(missingVars, ", "))
	}

	return result, nil
}

// validateConfig performs basic validation and applies defaults
func validateConfig(config *Config) error {
	if config.AI.Model == "" {
		config.AI.Model = DefaultAIModel
	}
	if config.AI.Timeout == "" {
		config.AI.Timeout = DefaultAITimeout
	}
	if _, err := time.ParseDuration(config.AI.Timeout); err != nil {
		return fmt.Errorf("invalid ai.timeout: %w", err)
	}

	// Parse the allow-list once; it is immutable for the process lifetime
	config.Security.authorizedSet = make(map[string]struct{})
	if config.Security.AuthorizedUsers != "" {
		for _, id := range strings.Split(config.Security.AuthorizedUsers, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, err := strconv.ParseInt(id, 10, 64); err != nil {
				return fmt.Errorf("invalid user id in security.authorized_users: %q", id)
			}
			config.Security.authorizedSet[id] = struct{}{}
		}
	}

	if config.Moderation.WarnThreshold == 0 {
		config.Moderation.WarnThreshold = constants.DefaultWarnThreshold
	}
	if config.Moderation.WarnThreshold < 1 {
		return fmt.Errorf("moderation.warn_threshold must be positive (got %d)", config.Moderation.WarnThreshold)
	}

	if config.Polling.Timeout == "" {
		config.Polling.Timeout = DefaultPollTimeout
	}
	timeout, err := time.ParseDuration(config.Polling.Timeout)
	if err != nil {
		return fmt.Errorf("invalid polling.timeout: %w", err)
	}
	if timeout < time.Second || timeout > 5*time.Minute {
		return fmt.Errorf("polling.timeout must be between 1s and 5m (got %v)", timeout)
	}

	if config.Polling.BatchLimit == 0 {
		config.Polling.BatchLimit = constants.DefaultUpdateBatchLimit
	}
	if config.Polling.BatchLimit < 1 || config.Polling.BatchLimit > 100 {
		return fmt.Errorf("polling.batch_limit must be between 1 and 100 (got %d)", config.Polling.BatchLimit)
	}

	if config.Polling.MaxAttempts == 0 {
		config.Polling.MaxAttempts = constants.DefaultMaxRestartAttempts
	}
	if config.Polling.RetryDelay == "" {
		config.Polling.RetryDelay = DefaultRetryDelay
	}
	if _, err := time.ParseDuration(config.Polling.RetryDelay); err != nil {
		return fmt.Errorf("invalid polling.retry_delay: %w", err)
	}
	if config.Polling.Backoff == "" {
		config.Polling.Backoff = BackoffLinear
	}
	if config.Polling.Backoff != BackoffLinear && config.Polling.Backoff != BackoffFixed {
		return fmt.Errorf("polling.backoff must be %q or %q (got %q)", BackoffLinear, BackoffFixed, config.Polling.Backoff)
	}

	if config.Health.Port == 0 {
		config.Health.Port = constants.DefaultHealthPort
	}

	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = constants.DefaultLogMaxSize
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = constants.DefaultLogMaxAge
	}

	return nil
}

// IsAIAuthorized reports whether AI commands are available for the caller.
// AI is unconditionally disabled outside private chats; inside a private
// chat the caller's id must be on the allow-list. The decision is a pure
// function of (chat kind, caller id, allow-list).
func (c *Config) IsAIAuthorized(chatType string, userID int64) bool {
	if chatType != "private" {
		return false
	}
	_, ok := c.Security.authorizedSet[strconv.FormatInt(userID, 10)]
	return ok
}

// AIConfigured reports whether an AI credential is present
func (c *Config) AIConfigured() bool {
	return c.AI.APIKey != ""
}

// AuthorizedUserCount returns the size of the AI allow-list
func (c *Config) AuthorizedUserCount() int {
	return len(c.Security.authorizedSet)
}

// AITimeout returns the parsed per-request AI timeout
func (c *Config) AITimeout() time.Duration {
	d, err := time.ParseDuration(c.AI.Timeout)
	if err != nil {
		return constants.DefaultAskTimeout
	}
	return d
}

// PollTimeout returns the parsed long-poll wait per fetch
func (c *Config) PollTimeout() time.Duration {
	d, err := time.ParseDuration(c.Polling.Timeout)
	if err != nil {
		return constants.DefaultPollTimeout
	}
	return d
}

// RetryDelay returns the parsed base delay between restart attempts
func (c *Config) RetryDelay() time.Duration {
	d, err := time.ParseDuration(c.Polling.RetryDelay)
	if err != nil {
		return constants.DefaultRetryDelay
	}
	return d
}
