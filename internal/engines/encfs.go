package engines

import "strings"

func newEncfs() *Descriptor {
	return &Descriptor{
		Name:                     "encfs",
		Executable:               "encfs",
		ConfigFileNames:          []string{".encfs6.xml", "encfs6.xml"},
		FilesystemTypes:          []string{"fuse.encfs"},
		SupportsCustomConfigPath: true,
		SupportsCreate:           true,
		AutoMountsOnCreate:       true,
		build:                    encfsCommand,
		password:                 appendPassword,
		classify:                 encfsClassify,
	}
}

// encfs has no config flag; the location is passed through ENCFS6_CONFIG.
func encfsCommand(args CommandArgs) Command {
	opts := args.Options
	argv := []string{args.Exe, "-S"}
	if args.Create {
		argv = append(argv, "--standard")
	}
	if opts.ReverseMode {
		argv = append(argv, "--reverse")
	}
	if idle := strings.TrimSpace(opts.IdleTimeout); idle != "" && !args.Create {
		argv = append(argv, "--idle="+idle)
	}
	if opts.ReadOnly && !args.Create {
		argv = append(argv, "-o", "ro")
	}
	argv = append(argv, SplitOptions(opts.MountOptions)...)
	argv = append(argv, args.CipherFolder, args.PlainFolder)

	var env []string
	if args.ConfigFilePath != "" {
		env = append(env, "ENCFS6_CONFIG="+args.ConfigFilePath)
	}
	return Command{Argv: argv, Env: env}
}

func encfsClassify(msg string, _ int) (Status, bool) {
	if containsAny(msg, "password incorrect", "error decoding volume key") {
		return StatusEncfsBadPassword, true
	}
	return 0, false
}
