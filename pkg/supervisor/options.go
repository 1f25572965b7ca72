package supervisor

import (
	"io"
	"log/slog"
	"time"

	"github.com/hyperion/hypershell/pkg/metrics"
)

// DefaultGracePeriod is how long Stop waits after the termination signal before force killing
const DefaultGracePeriod = 10 * time.Second

// StartupFlag selects the backend's HTTP serving mode
const StartupFlag = "--mode=http"

// Option configures a Supervisor
type Option func(*Supervisor)

// WithSpawner sets the Spawner implementation
func WithSpawner(spawner Spawner) Option {
	return func(s *Supervisor) {
		s.spawner = spawner
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector
func WithMetrics(mc metrics.Collector) Option {
	return func(s *Supervisor) {
		s.metrics = mc
	}
}

// WithOutput sets the writers that receive the backend's stdout and stderr
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Supervisor) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// WithGracePeriod sets how long Stop waits before force killing
func WithGracePeriod(d time.Duration) Option {
	return func(s *Supervisor) {
		s.gracePeriod = d
	}
}
