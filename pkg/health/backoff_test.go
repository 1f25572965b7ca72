package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitter(t *testing.T) {
	baseDelay := 1 * time.Second

	assert.Equal(t, baseDelay, Jitter(baseDelay, 0.0))

	// 50% jitter - between 0.5s and 1.5s
	for i := 0; i < 100; i++ {
		result := Jitter(baseDelay, 0.5)
		assert.GreaterOrEqual(t, result, 500*time.Millisecond)
		assert.LessOrEqual(t, result, 1500*time.Millisecond)
	}

	// fractions above 1 are clamped
	for i := 0; i < 100; i++ {
		result := Jitter(baseDelay, 3.0)
		assert.GreaterOrEqual(t, result, time.Duration(0))
		assert.LessOrEqual(t, result, 2*time.Second)
	}
}

func TestExponentialBackoff(t *testing.T) {
	baseDelay := 100 * time.Millisecond
	maxDelay := 2 * time.Second

	tests := []struct {
		attempt     int
		minExpected time.Duration
		maxExpected time.Duration
	}{
		{0, 75 * time.Millisecond, 125 * time.Millisecond},    // 100ms ± 25%
		{1, 150 * time.Millisecond, 250 * time.Millisecond},   // 200ms ± 25%
		{3, 600 * time.Millisecond, 1000 * time.Millisecond},  // 800ms ± 25%
		{5, 1500 * time.Millisecond, 2500 * time.Millisecond}, // 3.2s capped at 2s ± 25%
		{200, 1500 * time.Millisecond, 2500 * time.Millisecond},
		{-5, 75 * time.Millisecond, 125 * time.Millisecond},
	}

	for _, tt := range tests {
		result := ExponentialBackoff(tt.attempt, baseDelay, maxDelay)
		assert.GreaterOrEqual(t, result, tt.minExpected,
			"Attempt %d should be >= %v, got %v", tt.attempt, tt.minExpected, result)
		assert.LessOrEqual(t, result, tt.maxExpected,
			"Attempt %d should be <= %v, got %v", tt.attempt, tt.maxExpected, result)
	}
}
