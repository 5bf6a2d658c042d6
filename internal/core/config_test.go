package core

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "rosebot-config-*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())

	return tmpFile.Name()
}

func TestLoadConfig_ValidConfig_ReturnsConfigStruct(t *testing.T) {
	configContent := `
telegram:
  token: "${TEST_BOT_TOKEN}"
ai:
  api_key: "sk-test"
security:
  authorized_users: "123456, 789012"
moderation:
  warn_threshold: 5
polling:
  timeout: "45s"
`
	os.Setenv("TEST_BOT_TOKEN", "token-12345")
	defer os.Unsetenv("TEST_BOT_TOKEN")

	config, err := LoadConfig(writeTempConfig(t, configContent))

	require.NoError(t, err)
	assert.Equal(t, "token-12345", config.Telegram.Token)
	assert.Equal(t, 5, config.Moderation.WarnThreshold)
	assert.Equal(t, 45*time.Second, config.PollTimeout())
	assert.Equal(t, 2, config.AuthorizedUserCount())
}

func TestLoadConfig_MissingEnvVariable_ReturnsError(t *testing.T) {
	configContent := `
telegram:
  token: "${DEFINITELY_NOT_SET_ANYWHERE}"
`
	_, err := LoadConfig(writeTempConfig(t, configContent))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFINITELY_NOT_SET_ANYWHERE")
}

func TestLoadConfig_MissingFile_ReturnsError(t *testing.T) {
	_, err := LoadConfig("/nonexistent/rosebot.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	config, err := LoadConfig(writeTempConfig(t, `
telegram:
  token: "abc"
`))

	require.NoError(t, err)
	assert.Equal(t, 3, config.Moderation.WarnThreshold)
	assert.False(t, config.Moderation.AutoBan)
	assert.False(t, config.Moderation.Enforce)
	assert.Equal(t, 30*time.Second, config.PollTimeout())
	assert.Equal(t, 100, config.Polling.BatchLimit)
	assert.Equal(t, 10, config.Polling.MaxAttempts)
	assert.Equal(t, 10*time.Second, config.RetryDelay())
	assert.Equal(t, BackoffLinear, config.Polling.Backoff)
	assert.Equal(t, 8000, config.Health.Port)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "gpt-3.5-turbo", config.AI.Model)
	assert.Equal(t, 30*time.Second, config.AITimeout())
}

func TestLoadConfig_InvalidAuthorizedUsers_ReturnsError(t *testing.T) {
	_, err := LoadConfig(writeTempConfig(t, `
security:
  authorized_users: "123,not-a-number"
`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "authorized_users")
}

func TestLoadConfig_InvalidBackoff_ReturnsError(t *testing.T) {
	_, err := LoadConfig(writeTempConfig(t, `
polling:
  backoff: "exponential"
`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "backoff")
}

func TestLoadConfig_PollTimeoutOutOfRange_ReturnsError(t *testing.T) {
	_, err := LoadConfig(writeTempConfig(t, `
polling:
  timeout: "10m"
`))

	assert.Error(t, err)
}

func TestConfig_IsAIAuthorized(t *testing.T) {
	config, err := LoadConfig(writeTempConfig(t, `
security:
  authorized_users: "111,222"
`))
	require.NoError(t, err)

	tests := []struct {
		name     string
		chatType string
		userID   int64
		expected bool
	}{
		{"private chat with listed id", "private", 111, true},
		{"private chat with other listed id", "private", 222, true},
		{"private chat with unlisted id", "private", 333, false},
		{"group chat with listed id", "group", 111, false},
		{"supergroup with listed id", "supergroup", 222, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, config.IsAIAuthorized(tt.chatType, tt.userID))
		})
	}
}

func TestConfig_IsAIAuthorized_EmptyAllowList(t *testing.T) {
	config, err := LoadConfig(writeTempConfig(t, `
telegram:
  token: "abc"
`))
	require.NoError(t, err)

	// Empty allow-list means AI is authorized for no one
	assert.False(t, config.IsAIAuthorized("private", 1))
}

func TestConfig_AIConfigured(t *testing.T) {
	withKey, err := LoadConfig(writeTempConfig(t, `
ai:
  api_key: "sk-test"
`))
	require.NoError(t, err)
	assert.True(t, withKey.AIConfigured())

	withoutKey, err := LoadConfig(writeTempConfig(t, `
telegram:
  token: "abc"
`))
	require.NoError(t, err)
	assert.False(t, withoutKey.AIConfigured())
}
