// Package lockout tracks consecutive failed unlock attempts and enforces a
// timed lockout once the threshold is reached.
package lockout

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/phrasevault/phrasevault/store"
)

// Storage keys for the persisted lockout state. The state is vault-wide,
// deliberately not keyed by wallet id: failures against any wallet count
// against the same window.
const (
	keyAttempts = "lockout_attempts"
	keyUntil    = "lockout_until"
)

const (
	// DefaultMaxAttempts is the failure threshold that arms the lockout.
	DefaultMaxAttempts = 5

	// DefaultDuration is how long the lockout holds once armed.
	DefaultDuration = 5 * time.Minute
)

// Config parameterizes a Guard. Zero values take the package defaults; a
// negative MaxAttempts disables lockout entirely. Now is the time source and
// defaults to time.Now.
type Config struct {
	MaxAttempts int
	Duration    time.Duration
	Now         func() time.Time
	Logger      *slog.Logger
}

// Guard owns the lockout state. Every check and mutation runs under one
// mutex so parallel unlock attempts cannot race past the threshold. State is
// persisted write-through as string-encoded values under the two lockout
// keys; persistence failures degrade to in-memory protection and are logged,
// never fatal.
type Guard struct {
	mu          sync.Mutex
	st          store.Store
	maxAttempts int
	duration    time.Duration
	now         func() time.Time
	logger      *slog.Logger

	attempts int
	until    time.Time // zero when no window is armed
}

// New restores any persisted lockout state from the store and returns a
// ready guard. Absent keys mean a clean slate.
func New(st store.Store, cfg Config) (*Guard, error) {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Duration == 0 {
		cfg.Duration = DefaultDuration
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	g := &Guard{
		st:          st,
		maxAttempts: cfg.MaxAttempts,
		duration:    cfg.Duration,
		now:         cfg.Now,
		logger:      cfg.Logger,
	}

	if err := g.load(); err != nil {
		return nil, err
	}
	return g, nil
}

// IsLockedOut reports whether a lockout window is currently active.
func (g *Guard) IsLockedOut() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lockedLocked()
}

// Remaining returns the time left in the active lockout window, or zero.
func (g *Guard) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.lockedLocked() {
		return 0
	}
	return g.until.Sub(g.now())
}

// RecordFailure increments the consecutive-failure counter and returns the
// attempts remaining before the threshold, or zero once it is reached.
// Reaching the threshold arms the window; further failures during an active
// window re-arm it and never reset the counter.
func (g *Guard) RecordFailure() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.attempts++
	if g.maxAttempts > 0 && g.attempts >= g.maxAttempts {
		g.until = g.now().Add(g.duration)
	}
	g.persistLocked()

	remaining := g.maxAttempts - g.attempts
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Reset clears the counter and the window. It is invoked only after a fully
// successful unlock, and by delete-all.
func (g *Guard) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.attempts = 0
	g.until = time.Time{}

	if err := g.st.Delete(keyAttempts); err != nil {
		return fmt.Errorf("clear lockout attempts: %w", err)
	}
	if err := g.st.Delete(keyUntil); err != nil {
		return fmt.Errorf("clear lockout until: %w", err)
	}
	return nil
}

func (g *Guard) lockedLocked() bool {
	if g.maxAttempts <= 0 {
		return false // lockout disabled
	}
	return !g.until.IsZero() && g.now().Before(g.until)
}

func (g *Guard) persistLocked() {
	if err := g.st.Set(keyAttempts, []byte(strconv.Itoa(g.attempts))); err != nil {
		g.logger.Warn("failed to persist lockout attempts", "error", err)
	}

	if g.until.IsZero() {
		if err := g.st.Delete(keyUntil); err != nil {
			g.logger.Warn("failed to clear lockout until", "error", err)
		}
		return
	}
	if err := g.st.Set(keyUntil, []byte(strconv.FormatInt(g.until.UnixMilli(), 10))); err != nil {
		g.logger.Warn("failed to persist lockout until", "error", err)
	}
}

// load restores persisted state. Values that fail to parse are dropped with
// a warning rather than poisoning the guard.
func (g *Guard) load() error {
	raw, err := g.st.Get(keyAttempts)
	switch {
	case errors.Is(err, store.ErrKeyNotFound):
	case err != nil:
		return fmt.Errorf("load lockout attempts: %w", err)
	default:
		n, convErr := strconv.Atoi(string(raw))
		if convErr != nil {
			g.logger.Warn("ignoring unparsable lockout attempts", "value", string(raw))
		} else {
			g.attempts = n
		}
	}

	raw, err = g.st.Get(keyUntil)
	switch {
	case errors.Is(err, store.ErrKeyNotFound):
	case err != nil:
		return fmt.Errorf("load lockout until: %w", err)
	default:
		ms, convErr := strconv.ParseInt(string(raw), 10, 64)
		if convErr != nil {
			g.logger.Warn("ignoring unparsable lockout until", "value", string(raw))
		} else {
			g.until = time.UnixMilli(ms)
		}
	}
	return nil
}
