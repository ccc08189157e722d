package engines

import "strings"

// gocryptfs exit codes, see gocryptfs/internal/exitcodes.
const (
	gocryptfsExitPassword = 12
	gocryptfsExitLoadConf = 23
)

func newGocryptfs() *Descriptor {
	return &Descriptor{
		Name:                     "gocryptfs",
		Executable:               "gocryptfs",
		ConfigFileNames:          []string{"gocryptfs.conf", ".gocryptfs.reverse.conf", "gocryptfs.reverse.conf"},
		FilesystemTypes:          []string{"fuse.gocryptfs", "fuse.gocryptfs-reverse"},
		SupportsCustomConfigPath: true,
		SupportsCreate:           true,
		build:                    gocryptfsCommand,
		classify:                 gocryptfsClassify,
	}
}

func gocryptfsCommand(args CommandArgs) Command {
	opts := args.Options
	argv := []string{args.Exe, "-q"}
	if args.Create {
		argv = append(argv, "-init")
	}
	if opts.ReverseMode {
		argv = append(argv, "-reverse")
	}
	if args.ConfigFilePath != "" {
		argv = append(argv, "-config", args.ConfigFilePath)
	}
	if args.Create {
		return Command{Argv: append(argv, args.CipherFolder)}
	}
	if opts.ReadOnly {
		argv = append(argv, "-ro")
	}
	if idle := strings.TrimSpace(opts.IdleTimeout); idle != "" {
		argv = append(argv, "-idle", idle+"m")
	}
	argv = append(argv, SplitOptions(opts.MountOptions)...)
	return Command{Argv: append(argv, args.CipherFolder, args.PlainFolder)}
}

func gocryptfsClassify(msg string, exitCode int) (Status, bool) {
	switch {
	case exitCode == gocryptfsExitPassword || strings.Contains(msg, "password incorrect"):
		return StatusGocryptfsBadPassword, true
	case exitCode == gocryptfsExitLoadConf || containsAny(msg, "gocryptfs.conf: no such file", "config file not found"):
		return StatusGocryptfsConfigMissing, true
	}
	return 0, false
}
