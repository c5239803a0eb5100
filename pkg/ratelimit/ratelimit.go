package ratelimit

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer decides how long to pause between two consecutive upstream requests.
type Pacer interface {
	// Wait blocks for the pacing delay or until the context is canceled.
	Wait(ctx context.Context) error
}

// Jittered pauses for a uniformly random duration in [Min, Max] on every call.
// It is a politeness delay, not a backoff: the delay never grows.
type Jittered struct {
	Min time.Duration
	Max time.Duration

	// rnd returns a value in [0, 1). Tests replace it for determinism.
	rnd func() float64
}

// NewJittered creates a jittered pacer. If max is lower than min the two are swapped.
func NewJittered(min, max time.Duration) *Jittered {
	if max < min {
		min, max = max, min
	}
	return &Jittered{Min: min, Max: max, rnd: rand.Float64}
}

// Delay returns the next pause duration without sleeping.
func (j *Jittered) Delay() time.Duration {
	span := j.Max - j.Min
	if span <= 0 {
		return j.Min
	}
	rnd := j.rnd
	if rnd == nil {
		rnd = rand.Float64
	}
	return j.Min + time.Duration(rnd()*float64(span+1))
}

// Wait sleeps for Delay() or returns early with the context error.
func (j *Jittered) Wait(ctx context.Context) error {
	d := j.Delay()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type noDelay struct{}

// NoDelay returns a pacer that never blocks. It still reports context cancellation.
func NoDelay() Pacer {
	return noDelay{}
}

func (noDelay) Wait(ctx context.Context) error {
	return ctx.Err()
}
