//go:build !windows

package supervisor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperion/hypershell/pkg/paths"
)

func TestExecSpawner_RealProcess(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	bin := filepath.Join(dir, "hyper")
	script := "#!/bin/sh\nexec sleep 30\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	s := New(WithLogger(quietLogger()), WithOutput(io.Discard, io.Discard), WithGracePeriod(5*time.Second))

	proc, err := s.Start(context.Background(), paths.ResolvedPaths{
		BinaryPath: bin,
		ConfigPath: filepath.Join(dir, paths.ConfigFileName),
	})
	require.NoError(t, err)
	assert.Greater(t, proc.PID, 0)
	require.NoError(t, syscall.Kill(proc.PID, 0), "backend should be alive after start")

	start := time.Now()
	require.NoError(t, s.Stop(context.Background()))
	assert.Less(t, time.Since(start), 5*time.Second, "SIGTERM should end the backend before the grace period")
	assert.Equal(t, StateStopped, s.State())
	assert.ErrorIs(t, syscall.Kill(proc.PID, 0), syscall.ESRCH, "backend must be reaped after stop")
}
