package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sirikali/internal/engines"
	"sirikali/internal/favorites"
	"sirikali/internal/mount"
	"sirikali/internal/mountinfo"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var keys keySource
	var configFile string
	var reverse bool
	var addFavorite bool

	cmd := &cobra.Command{
		Use:   "create <engine> <volume> [mount-point]",
		Short: "Create a new encrypted volume and mount it",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := ctx.registry()
			d, err := registry.ByName(args[0])
			if err != nil {
				return fmt.Errorf("unknown engine %q; choose one of: %s", args[0], strings.Join(registry.Names(), ", "))
			}
			engine := d.Name

			volume, err := expandArg(args[1])
			if err != nil {
				return err
			}
			mountPoint := ctx.config.MountPath(volume)
			if len(args) == 3 {
				if mountPoint, err = expandArg(args[2]); err != nil {
					return err
				}
			}
			key, keyFile, err := keys.resolve(cmd, volume)
			if err != nil {
				return err
			}
			cfgPath, err := configFileArg(configFile)
			if err != nil {
				return err
			}

			opts := engines.Options{
				Type:           engine,
				CipherFolder:   volume,
				PlainFolder:    mountPoint,
				Key:            key,
				KeyFile:        keyFile,
				ConfigFilePath: cfgPath,
				ReverseMode:    reverse,
			}
			st := ctx.orchestrator().Create(cmd.Context(), opts).Get()
			if !st.Success() {
				return ctx.statusError(st)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s volume %s, mounted at %s\n",
				ctx.translator().DisplayName(opts.Type), volume, mountPoint)

			if addFavorite {
				store, err := ctx.favorites()
				if err != nil {
					return err
				}
				e := favorites.Entry{VolumePath: volume, MountPointPath: mountPoint, ConfigFilePath: cfgPath, ReverseMode: reverse}
				if err := store.Add(e); err != nil && !errors.Is(err, favorites.ErrAlreadyExists) {
					return err
				}
			}
			return nil
		},
	}
	keys.bind(cmd)
	cmd.Flags().StringVar(&configFile, "config-file", "", "Store the backend configuration at this path")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Create a reverse-mode volume (gocryptfs, encfs)")
	cmd.Flags().BoolVar(&addFavorite, "favorite", false, "Add the new volume to favorites")
	return cmd
}

func newMountCommand(ctx *commandContext) *cobra.Command {
	var keys keySource
	var configFile string
	var options string
	var idle string
	var readOnly bool
	var reverse bool
	var reuse bool

	cmd := &cobra.Command{
		Use:   "mount <volume> [mount-point]",
		Short: "Mount an encrypted volume",
		Long: "Mount an encrypted volume. Settings saved in a matching favorite are used; " +
			"flags given on the command line override them. Remote sshfs volumes are given as \"sshfs user@host:/path\".",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			volume, err := expandArg(args[0])
			if err != nil {
				return err
			}
			var mountPoint string
			if len(args) == 2 {
				if mountPoint, err = expandArg(args[1]); err != nil {
					return err
				}
			}

			store, err := ctx.favorites()
			if err != nil {
				return err
			}
			entry, found, err := store.ReadByKey(volume, mountPoint)
			if err != nil {
				return err
			}
			if !found {
				entry = favorites.Entry{VolumePath: volume, MountPointPath: mountPoint}
			}
			if entry.MountPointPath == "" {
				entry.MountPointPath = ctx.config.MountPath(volume)
			}

			if entry.VolumeNeedNoPassword && !cmd.Flags().Changed("key-file") {
				keys.noPassword = true
			}
			if entry.KeyFile != "" && keys.keyFile == "" && !keys.noPassword {
				keys.keyFile = entry.KeyFile
			}
			key, keyFile, err := keys.resolve(cmd, volume)
			if err != nil {
				return err
			}

			opts := mount.OptionsForEntry(entry, key, ctx.config.MountSettings())
			opts.KeyFile = keyFile
			flags := cmd.Flags()
			if flags.Changed("config-file") {
				if opts.ConfigFilePath, err = configFileArg(configFile); err != nil {
					return err
				}
			}
			if flags.Changed("options") {
				opts.MountOptions = options
			}
			if flags.Changed("idle") {
				opts.IdleTimeout = idle
			}
			if flags.Changed("read-only") {
				opts.ReadOnly = readOnly
			}
			if flags.Changed("reverse") {
				opts.ReverseMode = reverse
			}

			st := ctx.orchestrator().Mount(cmd.Context(), opts, reuse).Get()
			if !st.Success() {
				return ctx.statusError(st)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mounted %s at %s\n", volume, opts.PlainFolder)
			return nil
		},
	}
	keys.bind(cmd)
	cmd.Flags().StringVar(&configFile, "config-file", "", "Backend configuration file, or [[[engine]]]path")
	cmd.Flags().StringVar(&options, "options", "", "Extra backend mount options")
	cmd.Flags().StringVar(&idle, "idle", "", "Idle timeout in minutes")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Mount read-only")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Reverse mode")
	cmd.Flags().BoolVar(&reuse, "reuse", false, "Use the mount point even if it already exists")
	return cmd
}

func newUnmountCommand(ctx *commandContext) *cobra.Command {
	var fsType string
	var attempts int

	cmd := &cobra.Command{
		Use:     "unmount <mount-point>",
		Aliases: []string{"umount"},
		Short:   "Unmount a mounted volume",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mountPoint, err := expandArg(args[0])
			if err != nil {
				return err
			}
			req := mount.UnmountRequest{MountPoint: mountPoint}
			if m, ok, err := mountinfo.Lookup(mountPoint); err == nil && ok {
				req.CipherFolder = m.Source
				req.FilesystemType = m.FSType
			}
			if e, ok := ctx.favoriteForMountPoint(mountPoint); ok {
				fav := mount.UnmountRequestForEntry(e)
				if req.CipherFolder == "" {
					req.CipherFolder = fav.CipherFolder
				}
				req.PreUnmountCommand = fav.PreUnmountCommand
				req.PostUnmountCommand = fav.PostUnmountCommand
			}
			if strings.TrimSpace(fsType) != "" {
				req.FilesystemType = fsType
			}
			req.Attempts = attempts

			st := ctx.orchestrator().Unmount(cmd.Context(), req).Get()
			if !st.Success() {
				return ctx.statusError(st)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unmounted %s\n", mountPoint)
			return nil
		},
	}
	cmd.Flags().StringVar(&fsType, "fs", "", "Filesystem type (default: read from the mount table)")
	cmd.Flags().IntVar(&attempts, "attempts", 0, "Unmount attempts (default: mount.unmount_attempts)")
	return cmd
}

func newMountsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "mounts",
		Short: "List mounted encrypted volumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			mounts, err := mountinfo.List()
			if err != nil {
				return err
			}
			registry := ctx.registry()
			type mounted struct {
				Engine     string `json:"engine"`
				Volume     string `json:"volume"`
				MountPoint string `json:"mount_point"`
				ReadOnly   bool   `json:"read_only"`
			}
			result := []mounted{}
			for _, m := range mounts {
				d, ok := registry.ByFilesystemType(m.FSType)
				if !ok {
					continue
				}
				result = append(result, mounted{Engine: d.Name, Volume: m.Source, MountPoint: m.MountPoint, ReadOnly: m.ReadOnly})
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			if len(result) == 0 {
				fmt.Fprintln(out, "No encrypted volumes mounted")
				return nil
			}
			tr := ctx.translator()
			rows := make([][]string, 0, len(result))
			for _, m := range result {
				rows = append(rows, []string{tr.DisplayName(m.Engine), m.Volume, m.MountPoint, yesNo(m.ReadOnly)})
			}
			fmt.Fprint(out, renderTable([]string{"Engine", "Volume", "Mount Point", "Read-only"}, rows, nil))
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func (c *commandContext) favoriteForMountPoint(mountPoint string) (favorites.Entry, bool) {
	store, err := c.favorites()
	if err != nil {
		return favorites.Entry{}, false
	}
	entries, err := store.ReadAll()
	if err != nil {
		return favorites.Entry{}, false
	}
	for _, e := range entries {
		if e.MountPointPath == mountPoint {
			return e, true
		}
	}
	return favorites.Entry{}, false
}

// statusError renders a failed status in the user's language.
func (c *commandContext) statusError(st engines.CmdStatus) error {
	return errors.New(c.translator().StatusMessage(st))
}

// configFileArg expands a config file flag. Virtual [[[engine]]]path values
// keep their form and only the path part is expanded.
func configFileArg(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if name, path, ok := engines.ParseVirtualConfigPath(value); ok {
		expanded, err := expandArg(path)
		if err != nil {
			return "", err
		}
		return engines.FormatVirtualConfigPath(name, expanded), nil
	}
	return expandArg(value)
}

