package engines

import "fmt"

// Status is the outcome code of a create, mount or unmount request.
type Status int

const (
	StatusSuccess Status = iota
	StatusUnknown
	StatusFailedToCreateMountPoint
	StatusEcryptfsIllegalPath
	StatusEcryptfsBadExePermissions
	StatusBackendDoesNotSupportCustomConfigPath
	StatusExecutableNotFound
	StatusBackendTimedOut
	StatusBackendFailed
	StatusFailedToUnmount
	StatusPreUnmountCommandFailed
	StatusPreMountCommandFailed
	StatusEcryptfsBadPassword
	StatusGocryptfsBadPassword
	StatusGocryptfsConfigMissing
	StatusCryfsBadPassword
	StatusCryfsMigrateFileSystem
	StatusCryfsVersionTooNew
	StatusEncfsBadPassword
	StatusSshfsBadPassword
	StatusSshfsConnectionFailed
	StatusBackendCreateUnsupported
)

var statusNames = map[Status]string{
	StatusSuccess:                               "success",
	StatusUnknown:                               "unknown",
	StatusFailedToCreateMountPoint:              "failedToCreateMountPoint",
	StatusEcryptfsIllegalPath:                   "ecryptfsIllegalPath",
	StatusEcryptfsBadExePermissions:             "ecrypfsBadExePermissions",
	StatusBackendDoesNotSupportCustomConfigPath: "backEndDoesNotSupportCustomConfigPath",
	StatusExecutableNotFound:                    "executableNotFound",
	StatusBackendTimedOut:                       "backendTimedOut",
	StatusBackendFailed:                         "backendFailed",
	StatusFailedToUnmount:                       "failedToUnmount",
	StatusPreUnmountCommandFailed:               "preUnmountCommandFailed",
	StatusPreMountCommandFailed:                 "preMountCommandFailed",
	StatusEcryptfsBadPassword:                   "ecryptfsBadPassword",
	StatusGocryptfsBadPassword:                  "gocryptfsBadPassword",
	StatusGocryptfsConfigMissing:                "gocryptfsConfigMissing",
	StatusCryfsBadPassword:                      "cryfsBadPassword",
	StatusCryfsMigrateFileSystem:                "cryfsMigrateFileSystem",
	StatusCryfsVersionTooNew:                    "cryfsVersionTooNew",
	StatusEncfsBadPassword:                      "encfsBadPassword",
	StatusSshfsBadPassword:                      "sshfsBadPassword",
	StatusSshfsConnectionFailed:                 "sshfsConnectionFailed",
	StatusBackendCreateUnsupported:              "backendCreateUnsupported",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// AllStatuses lists every status code in declaration order.
func AllStatuses() []Status {
	out := make([]Status, 0, len(statusNames))
	for s := StatusSuccess; s <= StatusBackendCreateUnsupported; s++ {
		out = append(out, s)
	}
	return out
}

// CmdStatus is the immutable result of one backend command.
type CmdStatus struct {
	Code     Status
	ExitCode int
	Message  string
}

// NewStatus returns a CmdStatus carrying only a code.
func NewStatus(code Status) CmdStatus {
	return CmdStatus{Code: code}
}

// Success reports whether the command succeeded.
func (c CmdStatus) Success() bool { return c.Code == StatusSuccess }

// Is reports whether c carries code.
func (c CmdStatus) Is(code Status) bool { return c.Code == code }

func (c CmdStatus) String() string {
	if c.Message == "" {
		return c.Code.String()
	}
	return fmt.Sprintf("%s (exit %d): %s", c.Code, c.ExitCode, c.Message)
}
