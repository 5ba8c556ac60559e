package watcher

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ticker-alerts/internal/errors"
)

// killGrace bounds how long Restart waits for a terminated process to exit
// before killing it outright.
const killGrace = 5 * time.Second

// ProcessRunner supervises a child process. Restart fully terminates the old
// process before launching the replacement, so two monitors never hold feed
// subscriptions at the same time.
type ProcessRunner struct {
	path   string
	args   []string
	logger zerolog.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewProcessRunner creates a runner for the given command line.
func NewProcessRunner(path string, args []string, logger zerolog.Logger) *ProcessRunner {
	return &ProcessRunner{path: path, args: args, logger: logger}
}

// Start launches the child process.
func (r *ProcessRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startLocked(ctx)
}

func (r *ProcessRunner) startLocked(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.path, r.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "starting %s", r.path)
	}
	r.cmd = cmd
	r.logger.Info().Int("pid", cmd.Process.Pid).Msg("monitor process started")
	return nil
}

// Restart terminates the running process, awaits its exit, and starts a new
// one.
func (r *ProcessRunner) Restart(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.stopLocked(); err != nil {
		return err
	}
	return r.startLocked(ctx)
}

// Stop terminates the running process and awaits its exit.
func (r *ProcessRunner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopLocked()
}

func (r *ProcessRunner) stopLocked() error {
	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}
	pid := r.cmd.Process.Pid

	if err := r.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Already gone is fine; anything else escalates to SIGKILL.
		r.logger.Warn().Err(err).Int("pid", pid).Msg("terminate signal failed")
	}

	waited := make(chan error, 1)
	go func() { waited <- r.cmd.Wait() }()

	select {
	case <-waited:
	case <-time.After(killGrace):
		r.logger.Warn().Int("pid", pid).Msg("process did not exit, killing")
		_ = r.cmd.Process.Kill()
		<-waited
	}

	r.logger.Info().Int("pid", pid).Msg("monitor process stopped")
	r.cmd = nil
	return nil
}
