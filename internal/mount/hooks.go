package mount

import (
	"context"
	"strings"

	"sirikali/internal/engines"
	"sirikali/internal/logging"
)

// runOnMount starts the configured "run on mount" command with the cipher
// folder, mount point and engine name appended. The outcome is not checked.
func (o *Orchestrator) runOnMount(ctx context.Context, opts engines.Options) {
	exe := strings.TrimSpace(o.settings.RunCommandOnMount)
	if exe == "" {
		return
	}
	line := strings.Join([]string{
		exe,
		engines.ShellQuote(opts.CipherFolder),
		engines.ShellQuote(opts.PlainFolder),
		engines.ShellQuote(opts.Type),
	}, " ")
	if err := o.runner.StartDetached(line); err != nil {
		o.hookFailed(ctx, "run on mount", err.Error())
	}
}

// runHook runs a per-volume hook with the mount point as its last argument
// and reports whether it succeeded. Empty hooks succeed.
func (o *Orchestrator) runHook(ctx context.Context, name, command, mountPoint string) bool {
	command = strings.TrimSpace(command)
	if command == "" {
		return true
	}
	res := o.runner.RunShell(ctx, command+" "+engines.ShellQuote(mountPoint), o.unmountTimeout())
	if !res.Success() {
		o.hookFailed(ctx, name, res.Message())
		return false
	}
	return true
}

func (o *Orchestrator) hookFailed(ctx context.Context, name, detail string) {
	logging.WarnWithContext(logging.WithContext(ctx, o.logger), name+" command failed", "hook_failed",
		logging.String("hook", name),
		logging.String("message", detail),
		logging.String(logging.FieldErrorHint, "check the hook command configured for this volume"),
	)
}
