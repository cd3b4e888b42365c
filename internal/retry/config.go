package retry

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidMaxAttempts  = errors.New("retry: max attempts must be at least 1")
	ErrNegativeDelay       = errors.New("retry: delays must be non-negative")
	ErrMaxBelowInitial     = errors.New("retry: max delay below initial delay")
	ErrInvalidMultiplier   = errors.New("retry: multiplier must be at least 1.0")
	ErrInvalidJitterFactor = errors.New("retry: jitter factor must be within [0, 1]")
)

// Config defines retry bounds and backoff shape. Treat values as
// read-only after construction; configs may be shared across sessions.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64
}

// DefaultConfig returns the connection-retry defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxAttempts, c.MaxAttempts)
	}
	if c.InitialDelay < 0 || c.MaxDelay < 0 {
		return ErrNegativeDelay
	}
	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("%w: max=%v initial=%v", ErrMaxBelowInitial, c.MaxDelay, c.InitialDelay)
	}
	if c.Multiplier < 1.0 {
		return fmt.Errorf("%w: got %g", ErrInvalidMultiplier, c.Multiplier)
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidJitterFactor, c.JitterFactor)
	}
	return nil
}

// WithDefaults fills zero or out-of-range fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.MaxAttempts < 1 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = def.InitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.MaxDelay < c.InitialDelay {
		c.MaxDelay = c.InitialDelay
	}
	if c.Multiplier < 1.0 {
		c.Multiplier = def.Multiplier
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1 {
		c.JitterFactor = def.JitterFactor
	}
	return c
}
