package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy controls how often and how long Do waits between attempts.
type Policy struct {
	// Retries is the number of attempts after the first one.
	Retries      int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Jitter spreads delays by +/- this fraction (0.0 to 1.0).
	Jitter float64

	// Transient decides whether an error is worth another attempt.
	// IsTransient is used when nil.
	Transient func(error) bool

	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)

	random func() float64
}

// DefaultPolicy retries three times, starting at 500ms.
func DefaultPolicy() Policy {
	return Policy{
		Retries:      3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Delay returns the wait before retry number attempt, counted from 0.
func (p Policy) Delay(attempt int) time.Duration {
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	d := float64(p.InitialDelay) * math.Pow(multiplier, float64(attempt))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter > 0 {
		random := p.random
		if random == nil {
			random = rand.Float64
		}
		d *= 1.0 + p.Jitter*(random()-0.5)*2.0
	}
	return time.Duration(d)
}

// Do runs op until it succeeds, fails with a non-transient error, the
// retries are used up or ctx is done. It returns the last error.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	transient := p.Transient
	if transient == nil {
		transient = IsTransient
	}
	err := op(ctx)
	for attempt := 0; err != nil && attempt < p.Retries; attempt++ {
		if !transient(err) {
			return err
		}
		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err, delay)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = op(ctx)
	}
	return err
}
