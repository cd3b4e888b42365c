package retry

import (
	"math/rand"
	"time"
)

// Policy computes the wait inserted after a failed attempt. Attempt
// numbering is zero-based: DelayFor(0) is the wait after the first
// failure. Policies must be safe for sequential reuse across calls;
// they are not required to be safe for concurrent use.
type Policy interface {
	DelayFor(attempt int) time.Duration
	MaxAttempts() int
}

// FixedPolicy waits the same delay after every failed attempt.
type FixedPolicy struct {
	Delay    time.Duration
	Attempts int
}

func NewFixedPolicy(delay time.Duration, attempts int) *FixedPolicy {
	return &FixedPolicy{Delay: delay, Attempts: attempts}
}

func (p *FixedPolicy) DelayFor(int) time.Duration { return p.Delay }

func (p *FixedPolicy) MaxAttempts() int { return p.Attempts }

// LinearPolicy grows the delay by a constant increment per attempt,
// capped at MaxDelay.
type LinearPolicy struct {
	Initial   time.Duration
	Increment time.Duration
	MaxDelay  time.Duration
	Attempts  int
}

func NewLinearPolicy(initial, increment, maxDelay time.Duration, attempts int) *LinearPolicy {
	return &LinearPolicy{
		Initial:   initial,
		Increment: increment,
		MaxDelay:  maxDelay,
		Attempts:  attempts,
	}
}

func (p *LinearPolicy) DelayFor(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := p.Initial + p.Increment*time.Duration(attempt)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

func (p *LinearPolicy) MaxAttempts() int { return p.Attempts }

// ExponentialPolicy doubles (or multiplies) the delay per attempt and
// randomizes each result so simultaneously reconnecting clients spread
// out instead of hammering the peer in lockstep.
type ExponentialPolicy struct {
	cfg Config
	rng *rand.Rand
}

// NewExponentialPolicy builds a policy from cfg, normalizing
// out-of-range fields.
func NewExponentialPolicy(cfg Config) *ExponentialPolicy {
	return newExponentialPolicy(cfg, rand.NewSource(time.Now().UnixNano()))
}

// NewExponentialPolicyWithSource is NewExponentialPolicy with a caller
// supplied random source, for deterministic tests.
func NewExponentialPolicyWithSource(cfg Config, src rand.Source) *ExponentialPolicy {
	return newExponentialPolicy(cfg, src)
}

func newExponentialPolicy(cfg Config, src rand.Source) *ExponentialPolicy {
	return &ExponentialPolicy{
		cfg: cfg.WithDefaults(),
		rng: rand.New(src),
	}
}

// DelayFor returns min(initial * multiplier^attempt, max) scaled by a
// uniform draw from [1-jitter, 1+jitter], clamped back to [0, max].
// The base is clamped as soon as the running product exceeds the cap,
// so large attempt numbers cannot overflow.
func (p *ExponentialPolicy) DelayFor(attempt int) time.Duration {
	base := float64(p.cfg.InitialDelay)
	limit := float64(p.cfg.MaxDelay)
	for i := 0; i < attempt; i++ {
		base *= p.cfg.Multiplier
		if base >= limit {
			base = limit
			break
		}
	}

	if p.cfg.JitterFactor > 0 {
		lo := 1.0 - p.cfg.JitterFactor
		hi := 1.0 + p.cfg.JitterFactor
		base *= lo + p.rng.Float64()*(hi-lo)
	}

	if base < 0 {
		base = 0
	}
	if base > limit {
		base = limit
	}
	return time.Duration(base)
}

func (p *ExponentialPolicy) MaxAttempts() int { return p.cfg.MaxAttempts }

// Config returns the normalized configuration backing this policy.
func (p *ExponentialPolicy) Config() Config { return p.cfg }
