package engines

import "strings"

// SSHFSPrefix marks a cipher folder that is really an sshfs remote.
const SSHFSPrefix = "sshfs "

func newSshfs() *Descriptor {
	return &Descriptor{
		Name:            "sshfs",
		Executable:      "sshfs",
		FilesystemTypes: []string{"fuse.sshfs"},
		build:           sshfsCommand,
		password:        appendPassword,
		classify:        sshfsClassify,
	}
}

func sshfsCommand(args CommandArgs) Command {
	opts := args.Options
	argv := []string{args.Exe}
	if opts.Key != "" {
		argv = append(argv, "-o", "password_stdin")
	}
	if opts.KeyFile != "" {
		argv = append(argv, "-o", "IdentityFile="+opts.KeyFile)
	}
	if opts.ReadOnly {
		argv = append(argv, "-o", "ro")
	}
	argv = append(argv, SplitOptions(opts.MountOptions)...)
	return Command{Argv: append(argv, args.CipherFolder, args.PlainFolder)}
}

func sshfsClassify(msg string, _ int) (Status, bool) {
	switch {
	case strings.Contains(msg, "permission denied"):
		return StatusSshfsBadPassword, true
	case containsAny(msg,
		"connection refused",
		"connection reset",
		"connection timed out",
		"no route to host",
		"could not resolve hostname",
		"remote host has disconnected",
	):
		return StatusSshfsConnectionFailed, true
	}
	return 0, false
}
