package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/shlex"
)

const defaultEnableTimeout = 30 * time.Second

// Elevator wraps commands with a privilege-escalation helper and can start
// the elevation service on demand.
type Elevator struct {
	Enabled       bool
	Helper        string
	EnableCommand string
	EnableTimeout time.Duration

	exec Executor
}

// Wrap prefixes argv with the helper when elevation is enabled and the
// request asks for it.
func (e *Elevator) Wrap(argv []string, elevate bool) []string {
	if e == nil || !e.Enabled || !elevate || len(argv) == 0 {
		return argv
	}
	helper, err := shlex.Split(strings.TrimSpace(e.Helper))
	if err != nil || len(helper) == 0 {
		return argv
	}
	return append(helper, argv...)
}

// Enable runs the enable command on a background goroutine, waits for it and
// reports whether it succeeded. Each call runs the command once.
func (e *Elevator) Enable(ctx context.Context) bool {
	if e == nil || e.exec == nil {
		return false
	}
	argv, err := shlex.Split(strings.TrimSpace(e.EnableCommand))
	if err != nil || len(argv) == 0 {
		return false
	}
	timeout := e.EnableTimeout
	if timeout <= 0 {
		timeout = defaultEnableTimeout
	}
	done := make(chan bool, 1)
	go func() {
		done <- e.exec.Execute(ctx, Request{Argv: argv, Timeout: timeout}).Success()
	}()
	select {
	case ok := <-done:
		return ok
	case <-ctx.Done():
		return false
	}
}
