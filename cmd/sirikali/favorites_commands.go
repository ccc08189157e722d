package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"sirikali/internal/favorites"
)

func newFavoritesCommand(ctx *commandContext) *cobra.Command {
	favCmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite volumes",
	}

	favCmd.AddCommand(newFavoritesListCommand(ctx))
	favCmd.AddCommand(newFavoritesShowCommand(ctx))
	favCmd.AddCommand(newFavoritesAddCommand(ctx))
	favCmd.AddCommand(newFavoritesRemoveCommand(ctx))
	favCmd.AddCommand(newFavoritesReplaceCommand(ctx))
	favCmd.AddCommand(newFavoritesMigrateCommand(ctx))

	return favCmd
}

func newFavoritesListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List favorite volumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.favorites()
			if err != nil {
				return err
			}
			entries, err := store.ReadAll()
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No favorites")
				return nil
			}
			settings := ctx.config.MountSettings()
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.VolumePath,
					e.MountPointPath,
					yesNo(e.AutoMount.Resolve(settings.AutoMountDefault)),
					yesNo(e.ReadOnlyMode.Resolve(settings.ReadOnlyDefault)),
				})
			}
			fmt.Fprint(out, renderTable([]string{"Volume", "Mount Point", "Auto", "Read-only"}, rows, nil))
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newFavoritesShowCommand(ctx *commandContext) *cobra.Command {
	var mountPoint string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <volume>",
		Short: "Show one favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := ctx.lookupFavorite(args[0], mountPoint)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, e)
			}
			out := cmd.OutOrStdout()
			for _, field := range favoriteFields(e, ctx.config.MountSettings()) {
				if field[1] == "" {
					continue
				}
				fmt.Fprintf(out, "%-22s %s\n", field[0]+":", field[1])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mountPoint, "mount-point", "", "Mount point identifying the favorite")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newFavoritesAddCommand(ctx *commandContext) *cobra.Command {
	flags := &favoriteFlags{}

	cmd := &cobra.Command{
		Use:   "add <volume>",
		Short: "Add a favorite volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			volume, err := expandArg(args[0])
			if err != nil {
				return err
			}
			e := favorites.Entry{VolumePath: volume}
			if err := flags.apply(cmd, &e); err != nil {
				return err
			}
			if e.MountPointPath == "" {
				e.MountPointPath = ctx.config.MountPath(volume)
			}
			store, err := ctx.favorites()
			if err != nil {
				return err
			}
			if err := store.Add(e); err != nil {
				if errors.Is(err, favorites.ErrAlreadyExists) {
					return fmt.Errorf("favorite %s at %s already exists", e.VolumePath, e.MountPointPath)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added favorite %s at %s\n", e.VolumePath, e.MountPointPath)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newFavoritesRemoveCommand(ctx *commandContext) *cobra.Command {
	var mountPoint string

	cmd := &cobra.Command{
		Use:     "remove <volume>",
		Aliases: []string{"rm"},
		Short:   "Remove a favorite volume",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := ctx.lookupFavorite(args[0], mountPoint)
			if err != nil {
				return err
			}
			store, err := ctx.favorites()
			if err != nil {
				return err
			}
			if err := store.Remove(e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed favorite %s\n", e.VolumePath)
			return nil
		},
	}
	cmd.Flags().StringVar(&mountPoint, "mount-point", "", "Mount point identifying the favorite")
	return cmd
}

func newFavoritesReplaceCommand(ctx *commandContext) *cobra.Command {
	flags := &favoriteFlags{}
	var current string

	cmd := &cobra.Command{
		Use:   "replace <volume>",
		Short: "Change the settings of a favorite",
		Long:  "Change the settings of a favorite. Only the flags given are changed. The old record is removed before the new one is written.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := ctx.lookupFavorite(args[0], current)
			if err != nil {
				return err
			}
			updated := old
			if err := flags.apply(cmd, &updated); err != nil {
				return err
			}
			store, err := ctx.favorites()
			if err != nil {
				return err
			}
			if err := store.Replace(old, updated); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated favorite %s at %s\n", updated.VolumePath, updated.MountPointPath)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&current, "current-mount-point", "", "Current mount point identifying the favorite")
	return cmd
}

func newFavoritesMigrateCommand(ctx *commandContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Import favorites from a legacy tab-separated list",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) == "" {
				return errors.New("--file is required; favorites listed in the configuration file are migrated automatically")
			}
			lines, err := readLines(file)
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(ctx.config.Paths.LockDir, favoritesLockName))
			if err := lock.Lock(); err != nil {
				return fmt.Errorf("acquire favorites lock: %w", err)
			}
			defer lock.Unlock()

			store, err := ctx.favorites()
			if err != nil {
				return err
			}
			migrated, err := store.MigrateLegacy(lines)
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d favorites\n", migrated)
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Legacy favorites list, one volume per line")
	return cmd
}

// lookupFavorite finds a favorite by volume and optional mount point.
func (c *commandContext) lookupFavorite(volumeArg, mountPointArg string) (favorites.Entry, error) {
	volume, err := expandArg(volumeArg)
	if err != nil {
		return favorites.Entry{}, err
	}
	mountPoint, err := expandArg(mountPointArg)
	if err != nil {
		return favorites.Entry{}, err
	}
	store, err := c.favorites()
	if err != nil {
		return favorites.Entry{}, err
	}
	e, ok, err := store.ReadByKey(volume, mountPoint)
	if err != nil {
		return favorites.Entry{}, err
	}
	if !ok {
		return favorites.Entry{}, fmt.Errorf("no favorite for %s", volume)
	}
	return e, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open legacy list: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read legacy list: %w", err)
	}
	return lines, nil
}
