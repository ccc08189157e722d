package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sirikali/internal/config"
	"sirikali/internal/engines"
)

// keyEnv names the environment variable consulted for a password.
const keyEnv = "SIRIKALI_KEY"

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// keySource collects the password flags shared by create and mount.
type keySource struct {
	keyFile    string
	noPassword bool
}

func (k *keySource) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&k.keyFile, "key-file", "", "Read the password from this file (an SSH identity for sshfs)")
	cmd.Flags().BoolVar(&k.noPassword, "no-password", false, "The volume does not need a password")
}

// resolve returns the password and the key file to pass to the backend. For
// sshfs the key file is an identity file and is passed through; for other
// backends its contents are the password.
func (k *keySource) resolve(cmd *cobra.Command, volume string) (key, keyFile string, err error) {
	if k.noPassword {
		return "", "", nil
	}
	if path := strings.TrimSpace(k.keyFile); path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return "", "", err
		}
		if strings.HasPrefix(volume, engines.SSHFSPrefix) {
			return "", expanded, nil
		}
		data, err := os.ReadFile(expanded)
		if err != nil {
			return "", "", fmt.Errorf("read key file: %w", err)
		}
		return strings.TrimSuffix(string(data), "\n"), "", nil
	}
	if value, ok := os.LookupEnv(keyEnv); ok {
		return value, "", nil
	}
	key, err = readKeyLine(cmd.InOrStdin())
	return key, "", err
}

func readKeyLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("no password given; use --key-file, %s or stdin", keyEnv)
	}
	return line, nil
}

// expandArg expands ~ in a path argument and makes it absolute. Remote sshfs
// volumes are returned unchanged.
func expandArg(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" || strings.HasPrefix(arg, engines.SSHFSPrefix) {
		return arg, nil
	}
	return config.ExpandPath(arg)
}
