package mount

import (
	"context"
	"path/filepath"

	"sirikali/internal/engines"
)

func (o *Orchestrator) create(ctx context.Context, opts engines.Options) (engines.CmdStatus, string) {
	d, err := o.registry.ForOptions(opts)
	if err != nil {
		return engines.CmdStatus{Code: engines.StatusUnknown, Message: err.Error()}, ""
	}
	opts.Type = d.Name
	if !d.SupportsCreate {
		return engines.NewStatus(engines.StatusBackendCreateUnsupported), d.Name
	}
	if o.illegalPath(d.Name, opts) {
		return engines.NewStatus(engines.StatusEcryptfsIllegalPath), d.Name
	}

	if !o.createFolder(opts.CipherFolder) {
		return engines.NewStatus(engines.StatusFailedToCreateMountPoint), d.Name
	}
	if !o.createFolder(opts.PlainFolder) {
		o.deleteFolders(ctx, opts.CipherFolder)
		return engines.NewStatus(engines.StatusFailedToCreateMountPoint), d.Name
	}

	configPath := absPath(opts.ConfigFilePath)
	if configPath == "" && d.Name == "ecryptfs" {
		configPath = filepath.Join(opts.CipherFolder, d.ConfigFileName())
	}

	st := o.runCommand(ctx, d, true, opts, configPath)
	if !st.Success() {
		o.deleteFolders(ctx, opts.PlainFolder, opts.CipherFolder)
		return st, d.Name
	}
	if d.AutoMountsOnCreate {
		return st, d.Name
	}

	mounted := o.mountWith(ctx, true, d, opts, absPath(opts.ConfigFilePath))
	if !mounted.Success() {
		o.deleteFolders(ctx, opts.CipherFolder, opts.PlainFolder)
		return mounted, d.Name
	}
	return st, d.Name
}
