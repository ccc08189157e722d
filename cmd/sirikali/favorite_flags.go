package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sirikali/internal/config"
	"sirikali/internal/favorites"
)

// favoriteFlags are the editable favorite fields. Only flags the user set
// are applied, so the same set serves add and replace.
type favoriteFlags struct {
	mountPoint  string
	configFile  string
	keyFile     string
	idle        string
	options     string
	preMount    string
	postMount   string
	preUnmount  string
	postUnmount string
	reverse     bool
	noPassword  bool
	readOnly    string
	autoMount   string
}

func (f *favoriteFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.mountPoint, "mount-point", "", "Mount point (default: under the mount prefix)")
	fl.StringVar(&f.configFile, "config-file", "", "Backend configuration file")
	fl.StringVar(&f.keyFile, "key-file", "", "Key file")
	fl.StringVar(&f.idle, "idle", "", "Idle timeout in minutes")
	fl.StringVar(&f.options, "options", "", "Extra backend mount options")
	fl.StringVar(&f.preMount, "pre-mount", "", "Command run before mounting")
	fl.StringVar(&f.postMount, "post-mount", "", "Command run after mounting")
	fl.StringVar(&f.preUnmount, "pre-unmount", "", "Command run before unmounting")
	fl.StringVar(&f.postUnmount, "post-unmount", "", "Command run after unmounting")
	fl.BoolVar(&f.reverse, "reverse", false, "Reverse mode")
	fl.BoolVar(&f.noPassword, "no-password", false, "The volume does not need a password")
	fl.StringVar(&f.readOnly, "read-only", "undefined", "Mount read-only: true, false or undefined")
	fl.StringVar(&f.autoMount, "auto-mount", "undefined", "Mount automatically: true, false or undefined")
}

func (f *favoriteFlags) apply(cmd *cobra.Command, e *favorites.Entry) error {
	changed := cmd.Flags().Changed
	paths := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"mount-point", f.mountPoint, &e.MountPointPath},
		{"config-file", f.configFile, &e.ConfigFilePath},
		{"key-file", f.keyFile, &e.KeyFile},
	}
	for _, p := range paths {
		if !changed(p.flag) {
			continue
		}
		expanded, err := expandArg(p.value)
		if err != nil {
			return err
		}
		*p.dst = expanded
	}

	strs := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"idle", f.idle, &e.IdleTimeOut},
		{"options", f.options, &e.MountOptions},
		{"pre-mount", f.preMount, &e.PreMountCommand},
		{"post-mount", f.postMount, &e.PostMountCommand},
		{"pre-unmount", f.preUnmount, &e.PreUnmountCommand},
		{"post-unmount", f.postUnmount, &e.PostUnmountCommand},
	}
	for _, s := range strs {
		if changed(s.flag) {
			*s.dst = s.value
		}
	}

	if changed("reverse") {
		e.ReverseMode = f.reverse
	}
	if changed("no-password") {
		e.VolumeNeedNoPassword = f.noPassword
	}
	if changed("read-only") {
		v, err := favorites.ParseTriState(f.readOnly)
		if err != nil {
			return fmt.Errorf("--read-only: %w", err)
		}
		e.ReadOnlyMode = v
	}
	if changed("auto-mount") {
		v, err := favorites.ParseTriState(f.autoMount)
		if err != nil {
			return fmt.Errorf("--auto-mount: %w", err)
		}
		e.AutoMount = v
	}
	return nil
}

func favoriteFields(e favorites.Entry, s config.MountSettings) [][2]string {
	return [][2]string{
		{"Volume", e.VolumePath},
		{"Mount point", e.MountPointPath},
		{"Config file", e.ConfigFilePath},
		{"Key file", e.KeyFile},
		{"Idle timeout", e.IdleTimeOut},
		{"Mount options", e.MountOptions},
		{"Pre-mount command", e.PreMountCommand},
		{"Post-mount command", e.PostMountCommand},
		{"Pre-unmount command", e.PreUnmountCommand},
		{"Post-unmount command", e.PostUnmountCommand},
		{"Reverse", yesNo(e.ReverseMode)},
		{"Needs no password", yesNo(e.VolumeNeedNoPassword)},
		{"Read-only", triStateField(e.ReadOnlyMode, s.ReadOnlyDefault)},
		{"Auto mount", triStateField(e.AutoMount, s.AutoMountDefault)},
	}
}

// triStateField shows an explicit value as yes/no and an unset one as the
// global default it falls back to.
func triStateField(t favorites.TriState, def bool) string {
	if t.IsSet() {
		return yesNo(t.Resolve(def))
	}
	return "default (" + yesNo(def) + ")"
}
