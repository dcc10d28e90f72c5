package client

import (
	"time"
)

// BackoffFunc returns the duration to wait before retry attempt n.
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff returns a capped exponential backoff.
// Wait time is: min(cap, base * multiplier^attempt)
func ExponentialBackoff(base time.Duration, multiplier float64, cap time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		factor := 1.0
		for i := 0; i < attempt; i++ {
			factor *= multiplier
			if time.Duration(float64(base)*factor) >= cap {
				return cap
			}
		}
		backoff := time.Duration(float64(base) * factor)
		if backoff > cap {
			backoff = cap
		}
		return backoff
	}
}

// ConstantBackoff waits d between every attempt.
func ConstantBackoff(d time.Duration) BackoffFunc {
	return func(int) time.Duration { return d }
}

// DefaultWaitBackoff is [ExponentialBackoff] with 50ms base, 2x multiplier, 1s cap.
var DefaultWaitBackoff = ExponentialBackoff(50*time.Millisecond, 2.0, time.Second)
