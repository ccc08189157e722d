package automount

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"sirikali/internal/config"
	"sirikali/internal/engines"
	"sirikali/internal/favorites"
	"sirikali/internal/fileutil"
	"sirikali/internal/logging"
	"sirikali/internal/mount"
	"sirikali/internal/mountinfo"
)

// Store lists favorites.
type Store interface {
	ReadAll() ([]favorites.Entry, error)
}

// Orchestrator mounts volumes.
type Orchestrator interface {
	Mount(ctx context.Context, opts engines.Options, reuse bool) *mount.Future[engines.CmdStatus]
}

// Outcome is the result of one automatic mount.
type Outcome struct {
	Entry  favorites.Entry
	Status engines.CmdStatus
}

// Mounter mounts the favorites that qualify for automatic mounting.
type Mounter struct {
	store     Store
	orch      Orchestrator
	settings  config.MountSettings
	logger    *slog.Logger
	mountPath func(volume string) string
	isMounted func(mountPoint string) bool
	exists    func(path string) bool
	readFile  func(path string) ([]byte, error)
}

// Option configures a Mounter.
type Option func(*Mounter)

// WithMountPath sets the mount point used for favorites that do not name
// one.
func WithMountPath(fn func(volume string) string) Option {
	return func(m *Mounter) {
		if fn != nil {
			m.mountPath = fn
		}
	}
}

// WithMountCheck replaces the mount table lookup.
func WithMountCheck(fn func(mountPoint string) bool) Option {
	return func(m *Mounter) {
		if fn != nil {
			m.isMounted = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mounter) {
		m.logger = logger
	}
}

// NewMounter constructs a Mounter.
func NewMounter(store Store, orch Orchestrator, settings config.MountSettings, opts ...Option) *Mounter {
	m := &Mounter{
		store:     store,
		orch:      orch,
		settings:  settings,
		isMounted: mountinfo.IsMounted,
		exists:    fileutil.PathExists,
		readFile:  os.ReadFile,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "automount")
	return m
}

// Candidates returns the favorites MountAvailable would mount right now.
func (m *Mounter) Candidates() ([]favorites.Entry, error) {
	entries, err := m.store.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read favorites: %w", err)
	}
	var out []favorites.Entry
	for _, e := range entries {
		if e.MountPointPath == "" && m.mountPath != nil {
			e.MountPointPath = m.mountPath(e.VolumePath)
		}
		if m.eligible(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Mounter) eligible(e favorites.Entry) bool {
	switch {
	case !e.AutoMount.Resolve(m.settings.AutoMountDefault):
		return false
	case !m.volumePresent(e.VolumePath):
		return false
	case e.MountPointPath == "" || m.isMounted(e.MountPointPath):
		return false
	}
	return e.VolumeNeedNoPassword || e.KeyFile != ""
}

// MountAvailable mounts every candidate. The requests run concurrently on
// the orchestrator; the outcomes come back in favorites order.
func (m *Mounter) MountAvailable(ctx context.Context) ([]Outcome, error) {
	entries, err := m.Candidates()
	if err != nil {
		return nil, err
	}

	pending := make([]*mount.Future[engines.CmdStatus], len(entries))
	outcomes := make([]Outcome, len(entries))
	for i, e := range entries {
		outcomes[i].Entry = e
		key, err := m.keyFor(e)
		if err != nil {
			outcomes[i].Status = engines.CmdStatus{Code: engines.StatusBackendFailed, ExitCode: -1, Message: err.Error()}
			continue
		}
		pending[i] = m.orch.Mount(ctx, mount.OptionsForEntry(e, key, m.settings), false)
	}

	for i, f := range pending {
		if f == nil {
			continue
		}
		st, err := f.Wait(ctx)
		if err != nil {
			return outcomes[:i], err
		}
		outcomes[i].Status = st
	}

	for _, o := range outcomes {
		m.report(o)
	}
	return outcomes, nil
}

// keyFor returns the password for a favorite. Key files hold the password
// itself, except for sshfs where the file is an SSH identity.
func (m *Mounter) keyFor(e favorites.Entry) (string, error) {
	if e.KeyFile == "" || strings.HasPrefix(e.VolumePath, engines.SSHFSPrefix) {
		return "", nil
	}
	data, err := m.readFile(e.KeyFile)
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func (m *Mounter) report(o Outcome) {
	logger := m.logger.With(
		logging.String(logging.FieldCipherFolder, o.Entry.VolumePath),
		logging.String(logging.FieldPlainFolder, o.Entry.MountPointPath),
	)
	if o.Status.Success() {
		logger.Info("volume auto-mounted", logging.String(logging.FieldEventType, "automount_succeeded"))
		return
	}
	logging.WarnWithContext(logger, "auto-mount failed", "automount_failed",
		logging.String(logging.FieldStatus, o.Status.Code.String()),
		logging.String("message", o.Status.Message),
		logging.String(logging.FieldErrorHint, "mount the volume manually to see the backend error"),
		logging.String(logging.FieldImpact, "volume left unmounted"),
	)
}

// volumePresent reports whether a local volume exists. Remote sshfs volumes
// cannot be checked and count as present.
func (m *Mounter) volumePresent(volume string) bool {
	if strings.HasPrefix(volume, engines.SSHFSPrefix) {
		return true
	}
	return m.exists(volume)
}
