// Package watchdog supervises the long-poll update loop.
//
// The supervisor fetches update batches, dispatches each update to a
// handler, and restarts the loop with backoff when fetching fails. A
// handler panic is confined to the single update that caused it.
package watchdog

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/keepmind9/rosebot/internal/logger"
	"github.com/sirupsen/logrus"
)

// Sentinel errors for the supervised loop
var (
	ErrCancelled = errors.New("polling cancelled")
	ErrGaveUp    = errors.New("polling gave up after repeated failures")
)

// Backoff strategies for restart delays
const (
	BackoffLinear = "linear"
	BackoffFixed  = "fixed"
)

// UpdateFetcher is the transport the supervisor polls. FetchUpdates blocks
// up to timeoutSeconds waiting for new updates at or after offset.
type UpdateFetcher interface {
	FetchUpdates(offset, limit, timeoutSeconds int) ([]tgbotapi.Update, error)
}

// UpdateHandler consumes a single update
type UpdateHandler interface {
	HandleUpdate(update tgbotapi.Update)
}

// Policy defines the restart behavior of the supervised loop
type Policy struct {
	Timeout     time.Duration // long-poll wait per fetch (default: 30s)
	BatchLimit  int           // max updates per fetch (default: 100)
	MaxAttempts int           // consecutive fetch failures before giving up (default: 10)
	RetryDelay  time.Duration // base delay between restart attempts (default: 10s)
	Backoff     string        // "linear" (delay x attempt) or "fixed" (default: linear)
}

// DefaultPolicy returns the default supervision policy
func DefaultPolicy() Policy {
	return Policy{
		Timeout:     30 * time.Second,
		BatchLimit:  100,
		MaxAttempts: 10,
		RetryDelay:  10 * time.Second,
		Backoff:     BackoffLinear,
	}
}

// DelayFor returns the pause before restart attempt number attempt (1-based)
func (p Policy) DelayFor(attempt int) time.Duration {
	if p.Backoff == BackoffFixed {
		return p.RetryDelay
	}
	return p.RetryDelay * time.Duration(attempt)
}

// Supervisor runs the polling loop until the context is cancelled or the
// failure budget is exhausted.
type Supervisor struct {
	fetcher UpdateFetcher
	handler UpdateHandler
	policy  Policy

	// sleep is a clock hook for tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSupervisor creates a supervisor; zero policy fields take defaults
func NewSupervisor(fetcher UpdateFetcher, handler UpdateHandler, policy Policy) *Supervisor {
	if policy.Timeout == 0 {
		policy.Timeout = DefaultPolicy().Timeout
	}
	if policy.BatchLimit == 0 {
		policy.BatchLimit = DefaultPolicy().BatchLimit
	}
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = DefaultPolicy().MaxAttempts
	}
	if policy.RetryDelay == 0 {
		policy.RetryDelay = DefaultPolicy().RetryDelay
	}
	if policy.Backoff == "" {
		policy.Backoff = DefaultPolicy().Backoff
	}

	return &Supervisor{
		fetcher: fetcher,
		handler: handler,
		policy:  policy,
		sleep:   sleepCtx,
	}
}

// Run polls for updates until ctx is cancelled. The offset advances past
// every update that was handed to the handler, so a restart never redelivers
// a processed update. Consecutive fetch failures are counted against
// MaxAttempts; any successful fetch resets the counter. Returns ErrCancelled
// on context cancellation and ErrGaveUp when the failure budget runs out.
func (s *Supervisor) Run(ctx context.Context) error {
	logger.WithFields(logrus.Fields{
		"timeout":      s.policy.Timeout,
		"batch_limit":  s.policy.BatchLimit,
		"max_attempts": s.policy.MaxAttempts,
		"retry_delay":  s.policy.RetryDelay,
		"backoff":      s.policy.Backoff,
	}).Info("polling-supervisor-started")

	offset := 0
	attempts := 0
	timeoutSeconds := int(s.policy.Timeout / time.Second)

	for {
		select {
		case <-ctx.Done():
			logger.Info("polling-cancelled-by-context")
			return ErrCancelled
		default:
		}

		updates, err := s.fetcher.FetchUpdates(offset, s.policy.BatchLimit, timeoutSeconds)
		if err != nil {
			attempts++
			if attempts >= s.policy.MaxAttempts {
				logger.WithFields(logrus.Fields{
					"attempts": attempts,
					"error":    err,
				}).Error("polling-failure-budget-exhausted")
				return fmt.Errorf("%w: %d consecutive failures, last: %v", ErrGaveUp, attempts, err)
			}

			delay := s.policy.DelayFor(attempts)
			logger.WithFields(logrus.Fields{
				"attempt": attempts,
				"delay":   delay,
				"error":   err,
			}).Warn("polling-fetch-failed-retrying")

			if err := s.sleep(ctx, delay); err != nil {
				return ErrCancelled
			}
			continue
		}

		if attempts > 0 {
			logger.WithField("attempts", attempts).Info("polling-recovered")
			attempts = 0
		}

		for _, update := range updates {
			s.dispatch(update)
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
		}
	}
}

// dispatch hands one update to the handler, containing any panic so a bad
// update cannot take down the loop
func (s *Supervisor) dispatch(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{
				"update_id": update.UpdateID,
				"panic":     r,
			}).Error("update-handler-panicked")
		}
	}()

	s.handler.HandleUpdate(update)
}

// sleepCtx pauses for d but wakes early on context cancellation
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
