package watchdog

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetcher returns one scripted result per call, then blocks on ctx
type scriptedFetcher struct {
	script []fetchResult
	calls  []int // offsets observed
	cancel context.CancelFunc
}

type fetchResult struct {
	updates []tgbotapi.Update
	err     error
}

func (f *scriptedFetcher) FetchUpdates(offset, limit, timeoutSeconds int) ([]tgbotapi.Update, error) {
	f.calls = append(f.calls, offset)
	if len(f.script) == 0 {
		// Script exhausted: stop the supervisor
		if f.cancel != nil {
			f.cancel()
		}
		return nil, nil
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next.updates, next.err
}

type recordingHandler struct {
	seen   []int
	panics int
}

func (h *recordingHandler) HandleUpdate(update tgbotapi.Update) {
	if h.panics > 0 {
		h.panics--
		panic("boom")
	}
	h.seen = append(h.seen, update.UpdateID)
}

// newFastSupervisor stubs the sleep hook so retry tests run instantly
func newFastSupervisor(fetcher UpdateFetcher, handler UpdateHandler, policy Policy) *Supervisor {
	s := NewSupervisor(fetcher, handler, policy)
	s.sleep = func(ctx context.Context, d time.Duration) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	return s
}

func update(id int) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: id}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 30*time.Second, p.Timeout)
	assert.Equal(t, 100, p.BatchLimit)
	assert.Equal(t, 10, p.MaxAttempts)
	assert.Equal(t, 10*time.Second, p.RetryDelay)
	assert.Equal(t, BackoffLinear, p.Backoff)
}

func TestPolicy_DelayFor(t *testing.T) {
	linear := Policy{RetryDelay: 10 * time.Second, Backoff: BackoffLinear}
	assert.Equal(t, 10*time.Second, linear.DelayFor(1))
	assert.Equal(t, 30*time.Second, linear.DelayFor(3))

	fixed := Policy{RetryDelay: 10 * time.Second, Backoff: BackoffFixed}
	assert.Equal(t, 10*time.Second, fixed.DelayFor(1))
	assert.Equal(t, 10*time.Second, fixed.DelayFor(5))
}

func TestRun_DispatchesInOrderAndAdvancesOffset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &scriptedFetcher{
		cancel: cancel,
		script: []fetchResult{
			{updates: []tgbotapi.Update{update(7), update(8)}},
			{updates: []tgbotapi.Update{update(9)}},
		},
	}
	handler := &recordingHandler{}

	err := newFastSupervisor(fetcher, handler, Policy{}).Run(ctx)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, []int{7, 8, 9}, handler.seen)
	// Each fetch asks for the id after the last processed update
	require.GreaterOrEqual(t, len(fetcher.calls), 3)
	assert.Equal(t, 0, fetcher.calls[0])
	assert.Equal(t, 9, fetcher.calls[1])
	assert.Equal(t, 10, fetcher.calls[2])
}

func TestRun_GivesUpAfterMaxAttempts(t *testing.T) {
	fetchErr := errors.New("telegram unreachable")
	fetcher := &scriptedFetcher{
		script: []fetchResult{
			{err: fetchErr},
			{err: fetchErr},
			{err: fetchErr},
		},
	}
	handler := &recordingHandler{}

	err := newFastSupervisor(fetcher, handler, Policy{MaxAttempts: 3}).Run(context.Background())

	assert.ErrorIs(t, err, ErrGaveUp)
	assert.Len(t, fetcher.calls, 3)
}

func TestRun_SuccessResetsFailureCounter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetchErr := errors.New("telegram unreachable")
	fetcher := &scriptedFetcher{
		cancel: cancel,
		script: []fetchResult{
			{err: fetchErr},
			{err: fetchErr},
			{updates: []tgbotapi.Update{update(1)}}, // resets the counter
			{err: fetchErr},
			{err: fetchErr},
			{updates: []tgbotapi.Update{update(2)}},
		},
	}
	handler := &recordingHandler{}

	err := newFastSupervisor(fetcher, handler, Policy{MaxAttempts: 3}).Run(ctx)

	// Never hits three consecutive failures, so it runs the whole script
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, []int{1, 2}, handler.seen)
}

func TestRun_HandlerPanicConfinedToOneUpdate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &scriptedFetcher{
		cancel: cancel,
		script: []fetchResult{
			{updates: []tgbotapi.Update{update(1), update(2), update(3)}},
		},
	}
	handler := &recordingHandler{panics: 1} // first update panics

	err := newFastSupervisor(fetcher, handler, Policy{}).Run(ctx)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, []int{2, 3}, handler.seen)
	// The panicked update still advances the offset
	require.GreaterOrEqual(t, len(fetcher.calls), 2)
	assert.Equal(t, 4, fetcher.calls[1])
}

func TestRun_CancelledContextStopsPromptly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &scriptedFetcher{}
	handler := &recordingHandler{}

	err := NewSupervisor(fetcher, handler, Policy{}).Run(ctx)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, fetcher.calls)
}

func TestRun_CancelDuringRetryDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &scriptedFetcher{
		script: []fetchResult{
			{err: errors.New("telegram unreachable")},
		},
	}
	handler := &recordingHandler{}

	s := NewSupervisor(fetcher, handler, Policy{MaxAttempts: 5, RetryDelay: time.Hour})
	s.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := s.Run(ctx)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.Len(t, fetcher.calls, 1)
}
