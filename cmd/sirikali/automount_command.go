package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sirikali/internal/automount"
)

func newAutomountCommand(ctx *commandContext) *cobra.Command {
	var watch bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "automount",
		Short: "Mount favorites flagged for automatic mounting",
		Long: "Mount every favorite flagged for automatic mounting whose volume is present and which " +
			"needs no password or has a key file. With --watch, keep running and repeat whenever a block device appears.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.favorites()
			if err != nil {
				return err
			}
			mounter := automount.NewMounter(store, ctx.orchestrator(), ctx.config.MountSettings(),
				automount.WithLogger(ctx.loggerValue()),
				automount.WithMountPath(ctx.config.MountPath),
			)
			out := cmd.OutOrStdout()

			if dryRun {
				entries, err := mounter.Candidates()
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Fprintf(out, "%s -> %s\n", e.VolumePath, e.MountPointPath)
				}
				return nil
			}

			if watch {
				if !ctx.config.Automount.Enabled {
					return errors.New("automount is disabled; set automount.enabled = true in the configuration")
				}
				if ctx.config.Automount.MountOnStartup {
					if _, err := mounter.MountAvailable(cmd.Context()); err != nil {
						return err
					}
				}
				watcher := automount.NewWatcher(mounter, msDuration(ctx.config.Automount.SettleDelayMs),
					ctx.config.Paths.LockDir, ctx.loggerValue())
				err := watcher.Run(cmd.Context())
				if errors.Is(err, automount.ErrAlreadyRunning) {
					return fmt.Errorf("%w; stop the other `sirikali automount --watch` first", err)
				}
				return err
			}

			outcomes, err := mounter.MountAvailable(cmd.Context())
			if err != nil {
				return err
			}
			tr := ctx.translator()
			failed := 0
			for _, o := range outcomes {
				if o.Status.Success() {
					fmt.Fprintf(out, "Mounted %s at %s\n", o.Entry.VolumePath, o.Entry.MountPointPath)
					continue
				}
				failed++
				fmt.Fprintf(out, "Failed %s: %s\n", o.Entry.VolumePath, tr.StatusMessage(o.Status))
			}
			if len(outcomes) == 0 {
				fmt.Fprintln(out, "Nothing to mount")
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d volumes failed to mount", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and mount when block devices appear")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the volumes that would be mounted")
	return cmd
}
