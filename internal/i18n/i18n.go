// Package i18n turns orchestrator status codes into user-facing text.
package i18n

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"sirikali/internal/engines"
)

type entry struct {
	text string
	// withDetail marks templates that take the backend output as %s.
	withDetail bool
}

var english = map[engines.Status]entry{
	engines.StatusSuccess:                               {text: "Success."},
	engines.StatusUnknown:                               {text: "Failed to identify the backend for this volume."},
	engines.StatusFailedToCreateMountPoint:              {text: "Failed to create the mount point."},
	engines.StatusEcryptfsIllegalPath:                   {text: "Paths containing spaces are not supported by ecryptfs when elevation is enabled."},
	engines.StatusEcryptfsBadExePermissions:             {text: "ecryptfs-simple must be setuid root or elevation must be enabled."},
	engines.StatusBackendDoesNotSupportCustomConfigPath: {text: "This backend does not support a custom config file path."},
	engines.StatusExecutableNotFound:                    {text: "Backend executable not found: %s", withDetail: true},
	engines.StatusBackendTimedOut:                       {text: "The backend took too long to respond."},
	engines.StatusBackendFailed:                         {text: "The backend reported an error: %s", withDetail: true},
	engines.StatusFailedToUnmount:                       {text: "Failed to unmount the volume: %s", withDetail: true},
	engines.StatusPreUnmountCommandFailed:               {text: "The pre-unmount command failed; the volume was not unmounted."},
	engines.StatusPreMountCommandFailed:                 {text: "The pre-mount command failed; the volume was not mounted."},
	engines.StatusEcryptfsBadPassword:                   {text: "Failed to unlock an ecryptfs volume. Wrong password?"},
	engines.StatusGocryptfsBadPassword:                  {text: "Failed to unlock a gocryptfs volume. Wrong password?"},
	engines.StatusGocryptfsConfigMissing:                {text: "The gocryptfs config file could not be read."},
	engines.StatusCryfsBadPassword:                      {text: "Failed to unlock a cryfs volume. Wrong password?"},
	engines.StatusCryfsMigrateFileSystem:                {text: "This cryfs volume must be migrated to a newer format first."},
	engines.StatusCryfsVersionTooNew:                    {text: "This cryfs volume was created by a newer cryfs; please update cryfs."},
	engines.StatusEncfsBadPassword:                      {text: "Failed to unlock an encfs volume. Wrong password?"},
	engines.StatusSshfsBadPassword:                      {text: "Failed to connect to the sshfs server. Wrong password?"},
	engines.StatusSshfsConnectionFailed:                 {text: "Failed to connect to the sshfs server."},
	engines.StatusBackendCreateUnsupported:              {text: "This backend cannot create volumes."},
}

var displayNames = map[string]string{
	"ecryptfs": "eCryptfs",
	"cryfs":    "CryFS",
	"encfs":    "EncFS",
	"sshfs":    "SSHFS",
}

// Translator renders status codes for one language.
type Translator struct {
	printer *message.Printer
	title   cases.Caser
}

// NewTranslator builds a Translator for tag. Languages without a catalog
// fall back to English.
func NewTranslator(tag language.Tag) *Translator {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for status, e := range english {
		_ = b.SetString(language.English, key(status), e.text)
	}
	supported := b.Languages()
	_, idx, _ := language.NewMatcher(supported).Match(tag)
	return &Translator{
		printer: message.NewPrinter(supported[idx], message.Catalog(b)),
		title:   cases.Title(language.English),
	}
}

// StatusMessage returns the translated text for st.
func (t *Translator) StatusMessage(st engines.CmdStatus) string {
	e, ok := english[st.Code]
	if !ok {
		return st.String()
	}
	if e.withDetail {
		detail := strings.TrimSpace(st.Message)
		if detail == "" {
			detail = "no output"
		}
		return t.printer.Sprintf(key(st.Code), detail)
	}
	return t.printer.Sprintf(key(st.Code))
}

// DisplayName returns the conventional capitalization of an engine name.
func (t *Translator) DisplayName(engine string) string {
	engine = strings.ToLower(strings.TrimSpace(engine))
	if name, ok := displayNames[engine]; ok {
		return name
	}
	return t.title.String(engine)
}

func key(s engines.Status) string {
	return "status." + s.String()
}
