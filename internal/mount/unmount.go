package mount

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff"

	"sirikali/internal/engines"
	"sirikali/internal/logging"
	"sirikali/internal/task"
)

const (
	defaultUnmountTimeout  = 10 * time.Second
	defaultUnmountAttempts = 5
	unmountRetryDelay      = time.Second
)

// Messages after which retrying an unmount cannot help.
var permanentUnmountFailures = []string{
	"not mounted",
	"not found in /etc/mtab",
	"invalid argument",
}

// UnmountRequest identifies a mounted volume.
type UnmountRequest struct {
	CipherFolder string
	MountPoint   string
	// FilesystemType is looked up in the mount table when empty.
	FilesystemType string
	// Attempts defaults to the configured unmount attempts.
	Attempts int

	PreUnmountCommand  string
	PostUnmountCommand string
}

// elevationGuard allows the enable-elevation-and-retry path to fire once per
// unmount call.
type elevationGuard struct {
	used bool
}

// unmountAttempt runs one unmount command.
type unmountAttempt func(ctx context.Context, guard *elevationGuard) task.Result

func (o *Orchestrator) unmount(ctx context.Context, req UnmountRequest) (engines.CmdStatus, string) {
	fsType := strings.TrimSpace(req.FilesystemType)
	if fsType == "" {
		detected, err := o.fsType(req.MountPoint)
		if err != nil {
			return engines.CmdStatus{Code: engines.StatusFailedToUnmount, ExitCode: -1, Message: err.Error()}, ""
		}
		fsType = detected
	}
	engineName := fsType
	if d, ok := o.registry.ByFilesystemType(fsType); ok {
		engineName = d.Name
	}

	if !o.runHook(ctx, "pre-unmount", req.PreUnmountCommand, req.MountPoint) {
		return engines.NewStatus(engines.StatusPreUnmountCommandFailed), engineName
	}
	if !o.runHook(ctx, "global pre-unmount", o.settings.PreUnmountCommand, req.MountPoint) {
		return engines.NewStatus(engines.StatusPreUnmountCommandFailed), engineName
	}

	var attempt unmountAttempt
	if engines.IsEcryptfs(fsType) {
		exe := o.registry.LookPath("ecryptfs-simple")
		if exe == "" {
			return engines.CmdStatus{Code: engines.StatusExecutableNotFound, ExitCode: -1, Message: "ecryptfs-simple not found"}, engineName
		}
		attempt = o.ecryptfsAttempt(engines.EcryptfsUnmountCommand(exe, req.CipherFolder).Argv)
	} else {
		argv, st := o.genericUnmountArgv(req.MountPoint)
		if !st.Success() {
			return st, engineName
		}
		attempt = o.plainAttempt(argv)
	}

	attempts := req.Attempts
	if attempts <= 0 {
		attempts = o.settings.UnmountAttempts
	}
	if attempts <= 0 {
		attempts = defaultUnmountAttempts
	}

	res := o.retryUnmount(ctx, req, attempts, attempt)
	if !res.Success() {
		return engines.CmdStatus{Code: engines.StatusFailedToUnmount, ExitCode: res.ExitCode, Message: res.Message()}, engineName
	}

	o.runHook(ctx, "post-unmount", req.PostUnmountCommand, req.MountPoint)
	o.deleteMountFolder(ctx, req.MountPoint)
	return engines.CmdStatus{Code: engines.StatusSuccess}, engineName
}

// retryUnmount makes up to attempts tries spaced by a constant one-second
// backoff. Permanent failures stop the loop early.
func (o *Orchestrator) retryUnmount(ctx context.Context, req UnmountRequest, attempts int, attempt unmountAttempt) task.Result {
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(unmountRetryDelay), uint64(attempts-1))
	policy.Reset()

	guard := &elevationGuard{}
	logger := o.requestLogger(ctx, "", req.CipherFolder, req.MountPoint)
	for n := 1; ; n++ {
		res := attempt(ctx, guard)
		if res.Success() {
			return res
		}
		logger.Debug("unmount attempt failed",
			logging.Int(logging.FieldAttempt, n),
			logging.Int(logging.FieldExitCode, res.ExitCode),
			logging.String("message", res.Message()),
		)
		if n >= attempts || isPermanentUnmountFailure(res.Message()) {
			return res
		}
		wait := policy.NextBackOff()
		if wait == backoff.Stop {
			return res
		}
		o.sleep(wait)
	}
}

func (o *Orchestrator) plainAttempt(argv []string) unmountAttempt {
	return func(ctx context.Context, _ *elevationGuard) task.Result {
		return o.runner.Run(ctx, task.Request{Argv: argv, Timeout: o.unmountTimeout()})
	}
}

// ecryptfsAttempt runs the elevated ecryptfs unmount. The first gid failure
// in a call enables elevation and retries immediately; later ones do not.
func (o *Orchestrator) ecryptfsAttempt(argv []string) unmountAttempt {
	return func(ctx context.Context, guard *elevationGuard) task.Result {
		req := task.Request{Argv: argv, Timeout: o.unmountTimeout(), Elevate: true}
		res := o.runner.Run(ctx, req)
		if res.Success() {
			return res
		}
		if !guard.used && strings.Contains(res.Stderr, engines.ElevationFailureMarker) {
			guard.used = true
			if o.runner.Elevator().Enable(ctx) {
				return o.runner.Run(ctx, req)
			}
		}
		return res
	}
}

func (o *Orchestrator) genericUnmountArgv(mountPoint string) ([]string, engines.CmdStatus) {
	switch o.platform.OS() {
	case "darwin":
		return []string{"umount", mountPoint}, engines.NewStatus(engines.StatusSuccess)
	case "windows":
		return nil, engines.CmdStatus{Code: engines.StatusFailedToUnmount, ExitCode: -1, Message: "unmounting is not supported on windows"}
	}
	for _, name := range []string{"fusermount", "fusermount3"} {
		if exe := o.registry.LookPath(name); exe != "" {
			return []string{exe, "-u", mountPoint}, engines.NewStatus(engines.StatusSuccess)
		}
	}
	return nil, engines.CmdStatus{Code: engines.StatusExecutableNotFound, ExitCode: -1, Message: "fusermount not found"}
}

func (o *Orchestrator) unmountTimeout() time.Duration {
	if o.settings.UnmountTimeout > 0 {
		return o.settings.UnmountTimeout
	}
	return defaultUnmountTimeout
}

func isPermanentUnmountFailure(msg string) bool {
	msg = strings.ToLower(msg)
	for _, marker := range permanentUnmountFailures {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
