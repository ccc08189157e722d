package task

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const defaultKillGrace = 3 * time.Second

type commandExecutor struct {
	killGrace time.Duration
}

func (e commandExecutor) Execute(ctx context.Context, req Request) Result {
	runCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, req.Argv[0], req.Argv[1:]...) //nolint:gosec
	cmd.Env = append(os.Environ(), req.Env...)
	if len(req.Stdin) > 0 {
		cmd.Stdin = bytes.NewReader(req.Stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = e.killGrace

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	switch {
	case err == nil:
		return result
	case errors.Is(err, exec.ErrWaitDelay):
		// Exited zero; a daemonized child kept the output pipes open.
		return result
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		result.ExitCode = -1
		result.TimedOut = true
		result.Err = ErrTimeout
	case ctx.Err() != nil:
		result.ExitCode = -1
		result.Err = ctx.Err()
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result
		}
		result.ExitCode = -1
		result.Err = fmt.Errorf("start %s: %w", req.Argv[0], err)
	}
	return result
}

func (commandExecutor) StartDetached(argv []string, env []string) error {
	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec
	cmd.Env = append(os.Environ(), env...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached %s: %w", argv[0], err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
