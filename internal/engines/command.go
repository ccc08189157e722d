package engines

import (
	"strings"

	"github.com/google/shlex"
)

// CommandArgs are the inputs to a descriptor's command template. Paths are
// expected to be absolute.
type CommandArgs struct {
	Exe            string
	Options        Options
	ConfigFilePath string
	CipherFolder   string
	PlainFolder    string
	Create         bool
}

// Command is a fully built backend invocation. Env holds additional
// KEY=VALUE pairs layered over the caller's environment.
type Command struct {
	Argv []string
	Env  []string
}

// String renders the command as a POSIX shell line for logs and display.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Env)+len(c.Argv))
	for _, kv := range c.Env {
		parts = append(parts, ShellQuote(kv))
	}
	for _, arg := range c.Argv {
		parts = append(parts, ShellQuote(arg))
	}
	return strings.Join(parts, " ")
}

// ShellQuote quotes s for a POSIX shell. Strings made only of safe
// characters are returned unchanged.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isShellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("@%+=:,./-_", r)
}

// SplitOptions splits a user supplied mount-option string with shell rules.
// An unbalanced quote falls back to whitespace splitting.
func SplitOptions(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	fields, err := shlex.Split(s)
	if err != nil {
		return strings.Fields(s)
	}
	return fields
}
