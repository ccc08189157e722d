package engines

import "strings"

// cryfs exit codes, see cryfs/src/cryfs/impl/ErrorCodes.h.
const (
	cryfsExitWrongPassword    = 11
	cryfsExitTooNewFilesystem = 14
	cryfsExitTooOldFilesystem = 15
)

func newCryfs() *Descriptor {
	return &Descriptor{
		Name:                     "cryfs",
		Executable:               "cryfs",
		ConfigFileNames:          []string{"cryfs.config"},
		FilesystemTypes:          []string{"fuse.cryfs"},
		SupportsCustomConfigPath: true,
		SupportsCreate:           true,
		AutoMountsOnCreate:       true,
		build:                    cryfsCommand,
		classify:                 cryfsClassify,
	}
}

func cryfsCommand(args CommandArgs) Command {
	opts := args.Options
	argv := []string{args.Exe}
	if args.ConfigFilePath != "" {
		argv = append(argv, "--config", args.ConfigFilePath)
	}
	if idle := strings.TrimSpace(opts.IdleTimeout); idle != "" {
		argv = append(argv, "--unmount-idle", idle)
	}
	argv = append(argv, args.CipherFolder, args.PlainFolder)

	var fuse []string
	if opts.ReadOnly && !args.Create {
		fuse = append(fuse, "-o", "ro")
	}
	fuse = append(fuse, SplitOptions(opts.MountOptions)...)
	if len(fuse) > 0 {
		argv = append(append(argv, "--"), fuse...)
	}
	return Command{
		Argv: argv,
		Env:  []string{"CRYFS_FRONTEND=noninteractive", "CRYFS_NO_UPDATE_CHECK=TRUE"},
	}
}

func cryfsClassify(msg string, exitCode int) (Status, bool) {
	switch {
	case exitCode == cryfsExitWrongPassword || strings.Contains(msg, "did you enter the correct password"):
		return StatusCryfsBadPassword, true
	case exitCode == cryfsExitTooNewFilesystem || strings.Contains(msg, "please update your cryfs version"):
		return StatusCryfsVersionTooNew, true
	case exitCode == cryfsExitTooOldFilesystem || strings.Contains(msg, "migrate"):
		return StatusCryfsMigrateFileSystem, true
	}
	return 0, false
}
