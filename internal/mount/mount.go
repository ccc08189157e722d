package mount

import (
	"context"
	"path/filepath"
	"strings"

	"sirikali/internal/engines"
)

const reverseMarkerSuffix = "gocryptfs.reverse.conf"

// resolution is the outcome of inspecting a mount request.
type resolution struct {
	engine     *engines.Descriptor
	opts       engines.Options
	configPath string
}

// resolve picks the backend for a mount request. It returns false when no
// backend matches.
func (o *Orchestrator) resolve(opts engines.Options) (resolution, bool) {
	switch {
	case strings.HasPrefix(opts.CipherFolder, engines.SSHFSPrefix):
		d, err := o.registry.ByName("sshfs")
		if err != nil {
			return resolution{}, false
		}
		opts.CipherFolder = strings.TrimPrefix(opts.CipherFolder, engines.SSHFSPrefix)
		return resolution{engine: d, opts: opts}, true

	case opts.ConfigFilePath == "":
		d, marker := o.registry.ByConfigFileNames(func(m string) bool {
			return o.platform.PathExists(filepath.Join(opts.CipherFolder, m))
		})
		if !d.Known() {
			return resolution{}, false
		}
		res := resolution{engine: d, opts: opts}
		switch {
		case strings.HasSuffix(marker, reverseMarkerSuffix):
			res.opts.ReverseMode = true
		case d.Name == "ecryptfs":
			res.configPath = filepath.Join(opts.CipherFolder, marker)
		}
		return res, true

	case o.platform.PathExists(opts.ConfigFilePath):
		d, _ := o.registry.ByConfigFileNames(func(m string) bool {
			return strings.HasSuffix(opts.ConfigFilePath, m)
		})
		if !d.Known() {
			return resolution{}, false
		}
		return resolution{engine: d, opts: opts, configPath: opts.ConfigFilePath}, true

	default:
		name, path, ok := engines.ParseVirtualConfigPath(opts.ConfigFilePath)
		if !ok || !o.platform.PathExists(path) {
			return resolution{}, false
		}
		d, err := o.registry.ByName(name)
		if err != nil {
			return resolution{}, false
		}
		return resolution{engine: d, opts: opts, configPath: path}, true
	}
}

func (o *Orchestrator) mount(ctx context.Context, opts engines.Options, reuse bool) (engines.CmdStatus, string) {
	res, ok := o.resolve(opts)
	if !ok {
		return engines.NewStatus(engines.StatusUnknown), ""
	}
	return o.mountWith(ctx, reuse, res.engine, res.opts, res.configPath), res.engine.Name
}

func (o *Orchestrator) mountWith(ctx context.Context, reuse bool, d *engines.Descriptor, opts engines.Options, configPath string) engines.CmdStatus {
	opts.Type = d.Name

	if o.illegalPath(d.Name, opts) {
		return engines.NewStatus(engines.StatusEcryptfsIllegalPath)
	}
	if !o.runHook(ctx, "pre-mount", opts.PreMountCommand, opts.PlainFolder) {
		return engines.NewStatus(engines.StatusPreMountCommandFailed)
	}
	if !o.createFolder(opts.PlainFolder) && !reuse {
		return engines.NewStatus(engines.StatusFailedToCreateMountPoint)
	}

	st := o.runCommand(ctx, d, false, opts, configPath)
	if !st.Success() {
		o.deleteMountFolder(ctx, opts.PlainFolder)
		return st
	}
	o.runOnMount(ctx, opts)
	o.runHook(ctx, "post-mount", opts.PostMountCommand, opts.PlainFolder)
	return st
}
