package engines

import "strings"

// ElevationFailureMarker is printed by ecryptfs-simple when it cannot drop or
// regain group privileges, usually because it lacks setuid or the elevation
// helper is not running.
const ElevationFailureMarker = "error: failed to set gid"

const ecryptfsCreateOptions = "key=passphrase,ecryptfs_key_bytes=32,ecryptfs_cipher=aes," +
	"ecryptfs_passthrough=n,ecryptfs_enable_filename_crypto=y"

func newEcryptfs() *Descriptor {
	return &Descriptor{
		Name:                     "ecryptfs",
		Executable:               "ecryptfs-simple",
		Aliases:                  []string{"ecryptfs-simple"},
		ConfigFileNames:          []string{".ecryptfs.config", "ecryptfs.config"},
		FilesystemTypes:          []string{"ecryptfs"},
		SupportsCustomConfigPath: true,
		SupportsCreate:           true,
		AutoMountsOnCreate:       true,
		RequiresElevation:        true,
		build:                    ecryptfsCommand,
		classify:                 ecryptfsClassify,
	}
}

func ecryptfsCommand(args CommandArgs) Command {
	opts := args.Options
	argv := []string{args.Exe, "-a"}
	if args.ConfigFilePath != "" {
		argv = append(argv, "-c", args.ConfigFilePath)
	}

	var mountOpts []string
	if args.Create {
		mountOpts = append(mountOpts, ecryptfsCreateOptions)
	}
	if opts.ReadOnly && !args.Create {
		mountOpts = append(mountOpts, "ro")
	}
	if extra := strings.TrimSpace(opts.MountOptions); extra != "" {
		mountOpts = append(mountOpts, extra)
	}
	if len(mountOpts) > 0 {
		argv = append(argv, "-o", strings.Join(mountOpts, ","))
	}
	return Command{Argv: append(argv, args.CipherFolder, args.PlainFolder)}
}

// EcryptfsUnmountCommand builds the ecryptfs-simple unmount invocation.
func EcryptfsUnmountCommand(exe, cipherFolder string) Command {
	return Command{Argv: []string{exe, "-k", cipherFolder}}
}

func ecryptfsClassify(msg string, _ int) (Status, bool) {
	switch {
	case containsAny(msg, ElevationFailureMarker, "operation not permitted", "must be setuid"):
		return StatusEcryptfsBadExePermissions, true
	case containsAny(msg, "wrong password", "incorrect passphrase", "error: mount failed"):
		return StatusEcryptfsBadPassword, true
	}
	return 0, false
}
