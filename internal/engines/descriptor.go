package engines

import "strings"

// Descriptor describes one backend. Descriptors are immutable once the
// registry is built.
type Descriptor struct {
	Name            string
	Executable      string
	Aliases         []string
	ConfigFileNames []string
	FilesystemTypes []string

	SupportsCustomConfigPath bool
	AutoMountsOnCreate       bool
	SupportsCreate           bool
	RequiresElevation        bool

	build      func(CommandArgs) Command
	password   func(string) string
	configPath func(string) string
	classify   func(msg string, exitCode int) (Status, bool)
}

// Unknown is returned when no backend matches.
var Unknown = &Descriptor{}

// Known reports whether d is a real backend rather than Unknown.
func (d *Descriptor) Known() bool { return d != nil && d.Name != "" }

// Matches reports whether name refers to d, case-insensitively.
func (d *Descriptor) Matches(name string) bool {
	if !d.Known() {
		return false
	}
	if strings.EqualFold(d.Name, name) {
		return true
	}
	for _, alias := range d.Aliases {
		if strings.EqualFold(alias, name) {
			return true
		}
	}
	return false
}

// ConfigFileName is the default config marker written on create.
func (d *Descriptor) ConfigFileName() string {
	if len(d.ConfigFileNames) == 0 {
		return ""
	}
	return d.ConfigFileNames[0]
}

// Command builds the backend invocation. It is a pure function of args.
func (d *Descriptor) Command(args CommandArgs) Command {
	if d.build == nil {
		return Command{}
	}
	cmd := d.build(args)
	if cmd.Argv == nil {
		cmd.Argv = []string{}
	}
	return cmd
}

// SetConfigFilePath returns the form of path the backend accepts, or "" when
// the backend cannot use a custom config location.
func (d *Descriptor) SetConfigFilePath(path string) string {
	if !d.SupportsCustomConfigPath || path == "" {
		return ""
	}
	if d.configPath != nil {
		return d.configPath(path)
	}
	return path
}

// SetPassword encodes a password the way the backend reads it from stdin.
func (d *Descriptor) SetPassword(raw string) string {
	if d.password == nil {
		return raw
	}
	return d.password(raw)
}

// Classify maps a lowercased failure message and exit code to a status.
func (d *Descriptor) Classify(msg string, exitCode int) Status {
	if d.classify != nil {
		if s, ok := d.classify(msg, exitCode); ok {
			return s
		}
	}
	return StatusBackendFailed
}

// NotFoundCode is the status reported when the executable is missing.
func (d *Descriptor) NotFoundCode() CmdStatus {
	return CmdStatus{Code: StatusExecutableNotFound, ExitCode: -1, Message: d.Executable + " not found"}
}

// IsEcryptfs reports whether name is an ecryptfs variant, either an engine
// name or a filesystem type.
func IsEcryptfs(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ecryptfs", "ecryptfs-simple":
		return true
	}
	return false
}

func appendPassword(raw string) string {
	if raw == "" || strings.HasSuffix(raw, "\n") {
		return raw
	}
	return raw + "\n"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
