// Package supervisor launches the backend server binary and guarantees it is terminated.
//
// A Supervisor owns a single cell holding at most one backend process. Start fills the cell,
// Stop atomically empties it and then blocks until the process has exited, so Stop may run
// from any shutdown path without racing another Stop. Once Stop has been called, no Start
// can leave a process behind: a spawn still in flight is terminated before Stop returns.
package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/hyperion/hypershell/pkg/metrics"
	"github.com/hyperion/hypershell/pkg/paths"
	"github.com/hyperion/hypershell/pkg/shellerr"
)

// Supervisor manages the lifecycle of one backend process
type Supervisor struct {
	mu            sync.Mutex
	current       *SupervisedProcess
	state         State
	stopRequested bool
	inflight      sync.WaitGroup

	spawner     Spawner
	logger      *slog.Logger
	metrics     metrics.Collector
	stdout      io.Writer
	stderr      io.Writer
	gracePeriod time.Duration
}

// New creates a Supervisor in the NotStarted state
func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		state:       StateNotStarted,
		spawner:     ExecSpawner{},
		logger:      slog.Default(),
		metrics:     metrics.NewNoopCollector(),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		gracePeriod: DefaultGracePeriod,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("component", "supervisor")
	return s
}

// Start verifies the backend binary exists and launches it in HTTP mode.
// The config file is never passed to the backend; a missing one is only logged.
func (s *Supervisor) Start(ctx context.Context, p paths.ResolvedPaths) (SupervisedProcess, error) {
	s.mu.Lock()
	if s.stopRequested || s.state == StateStopped {
		s.mu.Unlock()
		err := shellerr.ErrSupervisorStopped()
		s.metrics.SupervisorStartFailed(string(err.Code))
		return SupervisedProcess{}, err
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	logger := s.logger.With("binary", p.BinaryPath, "mode", p.Mode.String())

	if _, err := os.Stat(p.BinaryPath); err != nil {
		logger.Error("backend binary not found", "error", err)
		shErr := shellerr.ErrBinaryNotFound(p.BinaryPath)
		if !errors.Is(err, os.ErrNotExist) {
			shErr = shErr.WithCause(err)
		}
		s.metrics.SupervisorStartFailed(string(shErr.Code))
		return SupervisedProcess{}, shErr
	}

	if _, err := os.Stat(p.ConfigPath); err == nil {
		logger.Info("backend config found", "config", p.ConfigPath)
	} else {
		logger.Warn("backend config not found, backend will use defaults", "config", p.ConfigPath)
	}

	handle, err := s.spawner.Spawn(ctx, p.BinaryPath, []string{StartupFlag}, s.stdout, s.stderr)
	if err != nil {
		logger.Error("failed to spawn backend", "error", err)
		shErr := shellerr.ErrSpawnFailed(p.BinaryPath, err)
		s.metrics.SupervisorStartFailed(string(shErr.Code))
		return SupervisedProcess{}, shErr
	}

	proc := SupervisedProcess{PID: handle.Pid(), handle: handle}

	s.mu.Lock()
	if s.stopRequested || s.state == StateStopped {
		s.mu.Unlock()
		logger = logger.With("pid", proc.PID)
		logger.Warn("stop requested while spawning, terminating backend")
		if err := s.terminate(ctx, logger, proc); err != nil {
			logger.Error("failed to terminate backend", "error", err)
		}
		shErr := shellerr.ErrSupervisorStopped()
		s.metrics.SupervisorStartFailed(string(shErr.Code))
		return SupervisedProcess{}, shErr
	}
	if s.current != nil {
		logger.Warn("replacing stored backend process", "previous_pid", s.current.PID)
	}
	s.current = &proc
	prev := s.state
	s.state = StateRunning
	s.mu.Unlock()

	if prev != StateRunning {
		s.metrics.SupervisorStateTransition(prev.String(), StateRunning.String())
	}
	logger.Info("backend started", "pid", proc.PID)

	return proc, nil
}

// Stop terminates the stored backend, if any, and waits for it to exit.
// It is idempotent: with an empty cell it terminates nothing and the state is unchanged.
// Every later Start fails, and Stop waits for any Start already spawning to clean up.
// Cancelling ctx skips the rest of the grace period and force kills.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopRequested = true
	proc := s.current
	s.current = nil
	if proc == nil {
		s.mu.Unlock()
		s.inflight.Wait()
		return nil
	}
	prev := s.state
	s.state = StateStopped
	s.mu.Unlock()

	defer s.inflight.Wait()

	s.metrics.SupervisorStateTransition(prev.String(), StateStopped.String())

	start := time.Now()
	defer func() {
		s.metrics.SupervisorStopDuration(time.Since(start))
	}()

	logger := s.logger.With("pid", proc.PID)
	logger.Info("stopping backend", "grace_period", s.gracePeriod)

	return s.terminate(ctx, logger, *proc)
}

// terminate sends the termination signal, force kills after the grace period or on
// ctx cancellation, and waits for the process to exit.
func (s *Supervisor) terminate(ctx context.Context, logger *slog.Logger, proc SupervisedProcess) error {
	if err := proc.handle.Terminate(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logger.Warn("failed to send termination signal", "error", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- proc.handle.Wait()
	}()

	timer := time.NewTimer(s.gracePeriod)
	defer timer.Stop()

	select {
	case err := <-done:
		logExit(logger, err)
		return nil
	case <-timer.C:
		logger.Warn("backend did not exit within grace period, force killing")
	case <-ctx.Done():
		logger.Warn("stop cancelled, force killing", "error", ctx.Err())
	}

	if err := proc.handle.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return shellerr.ErrTerminationFailed(proc.PID, err)
	}

	logExit(logger, <-done)
	return nil
}

// PID returns the stored process ID, if a backend is running
func (s *Supervisor) PID() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return 0, false
	}
	return s.current.PID, true
}

// State returns the current lifecycle state
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Running reports whether a backend process is stored
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// logExit records how the backend ended. A non-zero exit after a termination signal is expected.
func logExit(logger *slog.Logger, err error) {
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		logger.Info("backend exited")
	case errors.As(err, &exitErr):
		logger.Info("backend exited", "status", exitErr.String())
	default:
		logger.Warn("error waiting for backend", "error", err)
	}
}
