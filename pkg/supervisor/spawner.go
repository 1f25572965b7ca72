package supervisor

import (
	"context"
	"io"
	"os/exec"
	"sync"
)

// Process is a handle to a launched backend
type Process interface {
	// Pid returns the OS process ID
	Pid() int

	// Terminate asks the process to exit (SIGTERM, or a hard kill where signals are unsupported)
	Terminate() error

	// Kill forcibly stops the process
	Kill() error

	// Wait blocks until the process exits and releases its resources.
	// Safe to call more than once; later calls return the first result.
	Wait() error
}

// Spawner launches backend processes
type Spawner interface {
	Spawn(ctx context.Context, binary string, args []string, stdout, stderr io.Writer) (Process, error)
}

// ExecSpawner launches processes with os/exec
type ExecSpawner struct{}

// Spawn starts binary with args. The process is not bound to ctx: it runs until Stop.
func (ExecSpawner) Spawn(ctx context.Context, binary string, args []string, stdout, stderr io.Writer) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(binary, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

// execProcess wraps an exec.Cmd so Wait can be shared between callers
type execProcess struct {
	cmd *exec.Cmd

	waitOnce sync.Once
	waitErr  error
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Terminate() error {
	return terminate(p.cmd.Process)
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}

func (p *execProcess) Wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.cmd.Wait()
	})
	return p.waitErr
}
