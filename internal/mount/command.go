package mount

import (
	"context"
	"strings"
	"time"

	"sirikali/internal/engines"
	"sirikali/internal/logging"
	"sirikali/internal/task"
)

const defaultMountTimeout = 20 * time.Second

// runCommand builds and runs one backend create or mount command. When the
// ecryptfs helper reports bad permissions, elevation is enabled and the
// command runs once more.
func (o *Orchestrator) runCommand(ctx context.Context, d *engines.Descriptor, create bool, opts engines.Options, configPath string) engines.CmdStatus {
	exe := o.registry.ExecutablePath(d)
	if exe == "" {
		return d.NotFoundCode()
	}

	run := func() engines.CmdStatus {
		cfg := ""
		if configPath != "" {
			cfg = d.SetConfigFilePath(absPath(configPath))
			if cfg == "" {
				return engines.NewStatus(engines.StatusBackendDoesNotSupportCustomConfigPath)
			}
		}
		cmd := d.Command(engines.CommandArgs{
			Exe:            exe,
			Options:        opts,
			ConfigFilePath: cfg,
			CipherFolder:   opts.CipherFolder,
			PlainFolder:    opts.PlainFolder,
			Create:         create,
		})

		logger := o.requestLogger(ctx, d.Name, opts.CipherFolder, opts.PlainFolder)
		logger.Debug("running backend", logging.String(logging.FieldCommand, cmd.String()))

		var stdin []byte
		if opts.Key != "" {
			stdin = []byte(d.SetPassword(opts.Key))
		}
		res := o.runner.Run(ctx, task.Request{
			Argv:    cmd.Argv,
			Env:     cmd.Env,
			Stdin:   stdin,
			Timeout: o.commandTimeout(d),
			Elevate: d.RequiresElevation,
		})
		return o.interpret(d, res)
	}

	st := run()
	if st.Is(engines.StatusEcryptfsBadExePermissions) {
		if o.runner.Elevator().Enable(ctx) {
			st = run()
		}
	}
	return st
}

func (o *Orchestrator) interpret(d *engines.Descriptor, res task.Result) engines.CmdStatus {
	switch {
	case res.Success():
		return engines.CmdStatus{Code: engines.StatusSuccess, ExitCode: res.ExitCode}
	case res.TimedOut:
		return engines.CmdStatus{Code: engines.StatusBackendTimedOut, ExitCode: -1, Message: task.ErrTimeout.Error()}
	}
	msg := res.Message()
	return engines.CmdStatus{
		Code:     d.Classify(strings.ToLower(msg), res.ExitCode),
		ExitCode: res.ExitCode,
		Message:  msg,
	}
}

func (o *Orchestrator) commandTimeout(d *engines.Descriptor) time.Duration {
	if d.Name == "sshfs" && o.settings.SSHFSTimeout > 0 {
		return o.settings.SSHFSTimeout
	}
	if o.settings.MountTimeout > 0 {
		return o.settings.MountTimeout
	}
	return defaultMountTimeout
}
