package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/shlex"

	"sirikali/internal/logging"
)

// ErrTimeout is reported when a command outlives its timeout.
var ErrTimeout = errors.New("command timed out")

// Request describes one external command.
type Request struct {
	Argv    []string
	Env     []string
	Stdin   []byte
	Timeout time.Duration
	Elevate bool
	// OnCancel runs after the process was stopped by a timeout or a
	// cancelled context.
	OnCancel func()
}

// Result is the outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Err      error
}

// Success reports whether the command ran and exited zero.
func (r Result) Success() bool {
	return r.Err == nil && !r.TimedOut && r.ExitCode == 0
}

// Message returns stderr when present, otherwise stdout.
func (r Result) Message() string {
	if msg := strings.TrimSpace(r.Stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(r.Stdout); msg != "" {
		return msg
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return ""
}

// Executor runs processes. The default implementation uses os/exec.
type Executor interface {
	Execute(ctx context.Context, req Request) Result
	StartDetached(argv []string, env []string) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithElevator sets the privilege-escalation helper.
func WithElevator(e *Elevator) Option {
	return func(r *Runner) {
		if e != nil {
			r.elevator = e
		}
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "task")
	}
}

// Runner starts external commands asynchronously.
type Runner struct {
	exec     Executor
	elevator *Elevator
	logger   *slog.Logger
}

// NewRunner constructs a Runner backed by os/exec unless overridden.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		exec:     commandExecutor{killGrace: defaultKillGrace},
		elevator: &Elevator{},
		logger:   logging.NewComponentLogger(nil, "task"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.elevator.exec == nil {
		r.elevator.exec = r.exec
	}
	return r
}

// Elevator returns the runner's privilege-escalation helper.
func (r *Runner) Elevator() *Elevator { return r.elevator }

// Task is a handle on a running command.
type Task struct {
	done   chan struct{}
	result Result
}

// Done is closed when the command has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the command finishes or ctx is done. A cancelled wait
// does not stop the process.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Result blocks until the command finishes.
func (t *Task) Result() Result {
	<-t.done
	return t.result
}

// Start launches req on its own goroutine and returns immediately.
func (r *Runner) Start(ctx context.Context, req Request) *Task {
	t := &Task{done: make(chan struct{})}
	req.Argv = r.elevator.Wrap(req.Argv, req.Elevate)
	go func() {
		defer close(t.done)
		if len(req.Argv) == 0 {
			t.result = Result{ExitCode: -1, Err: errors.New("empty command")}
			return
		}
		started := time.Now()
		r.logger.Debug("command started", logging.String(logging.FieldCommand, displayArgv(req.Argv)))
		t.result = r.exec.Execute(ctx, req)
		if (t.result.TimedOut || errors.Is(t.result.Err, context.Canceled)) && req.OnCancel != nil {
			req.OnCancel()
		}
		r.logger.Debug("command finished",
			logging.String(logging.FieldCommand, displayArgv(req.Argv)),
			logging.Int(logging.FieldExitCode, t.result.ExitCode),
			logging.Bool("timed_out", t.result.TimedOut),
			logging.Duration("elapsed", time.Since(started)),
		)
	}()
	return t
}

// Run starts req and waits for it.
func (r *Runner) Run(ctx context.Context, req Request) Result {
	return r.Start(ctx, req).Result()
}

// RunShell runs a user supplied command line, split with shell rules.
func (r *Runner) RunShell(ctx context.Context, line string, timeout time.Duration) Result {
	argv, err := splitLine(line)
	if err != nil {
		return Result{ExitCode: -1, Err: err}
	}
	return r.Run(ctx, Request{Argv: argv, Timeout: timeout})
}

// StartDetached launches a command line without waiting for it or checking
// its outcome beyond the start itself.
func (r *Runner) StartDetached(line string, env ...string) error {
	argv, err := splitLine(line)
	if err != nil {
		return err
	}
	r.logger.Debug("detached command", logging.String(logging.FieldCommand, displayArgv(argv)))
	return r.exec.StartDetached(argv, env)
}

func splitLine(line string) ([]string, error) {
	argv, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("split command %q: %w", line, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	return argv, nil
}

func displayArgv(argv []string) string {
	return strings.Join(argv, " ")
}
