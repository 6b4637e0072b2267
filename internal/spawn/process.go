// Package spawn launches an agent as a child process — either directly
// (native) or via a container adapter — and wires its stdio into a line
// channel (internal/wire).
package spawn

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/h3nnn4n/colosseum/internal/wire"
)

// Process is the handle to a spawned agent. This is the seam tests swap
// out to avoid spawning real OS processes.
type Process interface {
	// Wait blocks until the process exits and returns its exit error.
	Wait() error
	// PID returns the OS process id, or 0 if not applicable.
	PID() int
	// Channel returns the line channel wired to the process's stdio.
	Channel() *wire.Channel
}

// Starter spawns an agent entry point and returns its handle.
type Starter func(ctx context.Context, path string, id string) (Process, error)

// execProcess wraps *exec.Cmd to implement Process.
type execProcess struct {
	cmd *exec.Cmd
	ch  *wire.Channel
}

func (p *execProcess) Wait() error            { return p.cmd.Wait() }
func (p *execProcess) PID() int               { return p.cmd.Process.Pid }
func (p *execProcess) Channel() *wire.Channel { return p.ch }

// NativeStarter execs path directly as a native agent entry point, wiring
// its stdin/stdout into a wire.Channel. The child is placed in its own
// process group (Setpgid) so the engine can signal the whole group on
// teardown without depending on the child forwarding signals to any
// grandchildren it spawns.
func NativeStarter(ctx context.Context, path string, id string) (Process, error) {
	cmd := exec.CommandContext(ctx, path)
	cmd.Env = append(os.Environ(), "COLOSSEUM_AGENT_ID="+id)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("spawn: opening stdin for %s: %w", path, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("spawn: opening stdout for %s: %w", path, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn: starting %s: %w", path, err)
	}

	return &execProcess{cmd: cmd, ch: wire.NewChannel(stdin, stdout)}, nil
}

// ErrContainerAdapterNotImplemented is returned by ContainerStarter. Building
// and running the container, and bridging its stdio to an HTTP endpoint
// inside it, is an external collaborator per the process manifest's
// HTTP agent_channel mode — not implemented here.
var ErrContainerAdapterNotImplemented = errors.New("spawn: containerized agent_channel requires an external container adapter")

// ContainerStarter is the documented stub for the containerized spawn
// mode. Wiring a real container runtime is out of scope.
func ContainerStarter(ctx context.Context, path string, id string) (Process, error) {
	return nil, ErrContainerAdapterNotImplemented
}

// syscallKill is a package var so tests can intercept signal delivery.
var syscallKill = syscall.Kill

// Kill delivers sig to p's entire process group. ESRCH (already exited) is
// not an error — killing an agent that died on its own is the expected
// common case during teardown.
func Kill(p Process, sig syscall.Signal) error {
	if p == nil {
		return nil
	}
	pid := p.PID()
	if pid <= 0 {
		return nil
	}
	if err := syscallKill(-pid, sig); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("spawn: signaling pid %d: %w", pid, err)
	}
	return nil
}
