package overlay

import "time"

// backoff tracks one peer's independent exponential retry timer.
type backoff struct {
	initial time.Duration
	factor  float64
	max     time.Duration

	current time.Duration
}

func newBackoff(initial time.Duration, factor float64, max time.Duration) *backoff {
	b := &backoff{initial: initial, factor: factor, max: max}
	b.reset()
	return b
}

// next returns the delay to wait before the upcoming attempt and advances
// the internal state for the following one.
func (b *backoff) next() time.Duration {
	delay := b.current
	scaled := time.Duration(float64(b.current) * b.factor)
	if scaled > b.max {
		scaled = b.max
	}
	b.current = scaled
	return delay
}

// reset restores the timer to its first-attempt delay (initial*factor, with
// a seeded failureCount of 0), called after a successful connection so the
// next disconnection starts retrying from the beginning of the schedule
// again.
func (b *backoff) reset() {
	seeded := time.Duration(float64(b.initial) * b.factor)
	if seeded > b.max {
		seeded = b.max
	}
	b.current = seeded
}
