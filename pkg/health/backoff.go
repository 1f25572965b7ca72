package health

import (
	"math"
	"math/rand"
	"time"
)

// Jitter adds random jitter to a duration to prevent thundering herd
// jitterFraction: 0.0 to 1.0, e.g., 0.1 for ±10%
func Jitter(duration time.Duration, jitterFraction float64) time.Duration {
	if jitterFraction <= 0 {
		return duration
	}
	if jitterFraction > 1.0 {
		jitterFraction = 1.0
	}

	jitter := rand.Float64() * jitterFraction

	// duration * (1 ± jitterFraction)
	multiplier := 1.0 + (jitter * 2.0) - jitterFraction
	return time.Duration(float64(duration) * multiplier)
}

// ExponentialBackoff returns baseDelay * 2^attempt capped at maxDelay, with ±25% jitter.
// attempt is the number of failed checks so far (0-indexed).
func ExponentialBackoff(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	multiplier := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(baseDelay) * multiplier)

	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}

	return Jitter(delay, 0.25)
}
