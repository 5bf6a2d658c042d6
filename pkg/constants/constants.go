package constants

import "time"

// Message length limits
const (
	// MaxTelegramMessageLength is Telegram's message character limit
	MaxTelegramMessageLength = 4096
)

// Mute duration handling
const (
	// DefaultMuteSeconds is applied when a mute command carries no usable duration
	DefaultMuteSeconds = 3600
	// SecondsPerMinute is the multiplier for the "m" duration suffix
	SecondsPerMinute = 60
	// SecondsPerHour is the multiplier for the "h" duration suffix
	SecondsPerHour = 3600
	// SecondsPerDay is the multiplier for the "d" duration suffix
	SecondsPerDay = 86400
)

// Moderation defaults
const (
	// DefaultWarnThreshold is the warning count at which the escalation notice fires
	DefaultWarnThreshold = 3
)

// Update polling defaults
const (
	// DefaultPollTimeout is the long-poll wait for a batch of updates
	DefaultPollTimeout = 30 * time.Second
	// DefaultUpdateBatchLimit bounds how many updates a single fetch may return
	DefaultUpdateBatchLimit = 100
	// DefaultRetryDelay is the base delay between fetch-loop restart attempts
	DefaultRetryDelay = 10 * time.Second
	// DefaultMaxRestartAttempts bounds consecutive fetch failures before giving up
	DefaultMaxRestartAttempts = 10
)

// AI passthrough
const (
	// DefaultAskTimeout bounds a single AI completion or image call
	DefaultAskTimeout = 30 * time.Second
)

// Health surface
const (
	// DefaultHealthPort is the port for the sibling web service
	DefaultHealthPort = 8000
)

// Token masking
const (
	// MinSecretLengthForMasking is the minimum token length to apply masking
	MinSecretLengthForMasking = 10
	// SecretMaskPrefixLength is the length of prefix to show before masking
	SecretMaskPrefixLength = 7
	// SecretMaskSuffixLength is the length of suffix to show after masking
	SecretMaskSuffixLength = 4
)

// Logging defaults
const (
	// DefaultLogMaxSize is the default maximum log file size in MB
	DefaultLogMaxSize = 100
	// DefaultLogMaxAge is the default maximum number of days to retain old logs
	DefaultLogMaxAge = 30
)
