package retry

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/wirebound/wirebound/internal/testutil/testlog"
)

func TestFixedPolicyConstantDelay(t *testing.T) {
	testlog.Start(t)
	p := NewFixedPolicy(250*time.Millisecond, 4)
	for attempt := 0; attempt < 10; attempt++ {
		if got := p.DelayFor(attempt); got != 250*time.Millisecond {
			t.Fatalf("attempt=%d got=%v", attempt, got)
		}
	}
	if p.MaxAttempts() != 4 {
		t.Fatalf("unexpected max attempts=%d", p.MaxAttempts())
	}
}

func TestLinearPolicyGrowsAndCaps(t *testing.T) {
	testlog.Start(t)
	p := NewLinearPolicy(100*time.Millisecond, 100*time.Millisecond, time.Second, 8)
	if got := p.DelayFor(0); got != 100*time.Millisecond {
		t.Fatalf("attempt0 got=%v", got)
	}
	if got := p.DelayFor(3); got != 400*time.Millisecond {
		t.Fatalf("attempt3 got=%v", got)
	}
	if got := p.DelayFor(100); got != time.Second {
		t.Fatalf("attempt100 got=%v, want cap", got)
	}

	prev := time.Duration(-1)
	for attempt := 0; attempt < 30; attempt++ {
		got := p.DelayFor(attempt)
		if got < prev {
			t.Fatalf("delay decreased at attempt=%d: %v < %v", attempt, got, prev)
		}
		prev = got
	}
}

func TestExponentialPolicyDeterministicWithoutJitter(t *testing.T) {
	testlog.Start(t)
	p := NewExponentialPolicy(Config{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0,
	})

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
	}
	for attempt, expect := range want {
		if got := p.DelayFor(attempt); got != expect {
			t.Fatalf("attempt=%d got=%v want=%v", attempt, got, expect)
		}
	}

	prev := time.Duration(-1)
	for attempt := 0; attempt < 40; attempt++ {
		got := p.DelayFor(attempt)
		if got < prev {
			t.Fatalf("delay decreased at attempt=%d: %v < %v", attempt, got, prev)
		}
		prev = got
	}
}

func TestExponentialPolicyAttemptZeroIsInitialDelay(t *testing.T) {
	testlog.Start(t)
	p := NewExponentialPolicy(Config{
		MaxAttempts:  3,
		InitialDelay: 75 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   3.0,
		JitterFactor: 0,
	})
	if got := p.DelayFor(0); got != 75*time.Millisecond {
		t.Fatalf("attempt0 got=%v want initial", got)
	}
}

func TestExponentialPolicyCapsBeforeJitter(t *testing.T) {
	testlog.Start(t)
	// Attempt numbers large enough to overflow a naive multiplier^n must
	// still land within [0, MaxDelay].
	p := NewExponentialPolicyWithSource(Config{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   10.0,
		JitterFactor: 0.5,
	}, rand.NewSource(11))

	for attempt := 0; attempt < 512; attempt += 17 {
		got := p.DelayFor(attempt)
		if got < 0 || got > 2*time.Second {
			t.Fatalf("attempt=%d delay out of range: %v", attempt, got)
		}
	}
}

func TestExponentialPolicyJitterRange(t *testing.T) {
	testlog.Start(t)
	const jitter = 0.1
	cfg := Config{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: jitter,
	}
	p := NewExponentialPolicyWithSource(cfg, rand.NewSource(7))

	for attempt := 0; attempt < 4; attempt++ {
		base := float64(cfg.InitialDelay)
		for i := 0; i < attempt; i++ {
			base *= cfg.Multiplier
		}
		lo := time.Duration(base * (1 - jitter))
		hi := time.Duration(base * (1 + jitter))
		for draw := 0; draw < 1000; draw++ {
			got := p.DelayFor(attempt)
			if got < lo || got > hi {
				t.Fatalf("attempt=%d draw=%d delay=%v outside [%v, %v]", attempt, draw, got, lo, hi)
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"valid", DefaultConfig(), nil},
		{"zero attempts", Config{MaxAttempts: 0, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 2, JitterFactor: 0}, ErrInvalidMaxAttempts},
		{"negative delay", Config{MaxAttempts: 1, InitialDelay: -time.Second, MaxDelay: time.Second, Multiplier: 2, JitterFactor: 0}, ErrNegativeDelay},
		{"max below initial", Config{MaxAttempts: 1, InitialDelay: 2 * time.Second, MaxDelay: time.Second, Multiplier: 2, JitterFactor: 0}, ErrMaxBelowInitial},
		{"multiplier below one", Config{MaxAttempts: 1, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 0.5, JitterFactor: 0}, ErrInvalidMultiplier},
		{"jitter above one", Config{MaxAttempts: 1, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 2, JitterFactor: 1.5}, ErrInvalidJitterFactor},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.want == nil {
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tc.name, err)
			}
			continue
		}
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
}

func TestConfigWithDefaultsFillsZeroValues(t *testing.T) {
	testlog.Start(t)
	got := Config{}.WithDefaults()
	if got != DefaultConfig() {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}
