package mount

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"sirikali/internal/config"
	"sirikali/internal/engines"
	"sirikali/internal/history"
	"sirikali/internal/logging"
	"sirikali/internal/mountinfo"
	"sirikali/internal/task"
)

const defaultMaxTasks = 4

// Deps are the collaborators of an Orchestrator. Registry and Runner are
// required; the rest default to the host implementations.
type Deps struct {
	Registry *engines.Registry
	Runner   *task.Runner
	Settings config.MountSettings
	Platform Platform
	History  history.Recorder
	Logger   *slog.Logger

	// FilesystemType resolves the mounted filesystem type of a mount
	// point when an unmount request does not name it.
	FilesystemType func(mountPoint string) (string, error)
	// Sleep waits between unmount attempts.
	Sleep func(time.Duration)
}

// Orchestrator runs create, mount and unmount requests.
type Orchestrator struct {
	registry *engines.Registry
	runner   *task.Runner
	settings config.MountSettings
	platform Platform
	history  history.Recorder
	logger   *slog.Logger
	fsType   func(string) (string, error)
	sleep    func(time.Duration)
	sem      *semaphore.Weighted
}

// New constructs an Orchestrator.
func New(deps Deps) *Orchestrator {
	o := &Orchestrator{
		registry: deps.Registry,
		runner:   deps.Runner,
		settings: deps.Settings,
		platform: deps.Platform,
		history:  deps.History,
		logger:   logging.NewComponentLogger(deps.Logger, "mount"),
		fsType:   deps.FilesystemType,
		sleep:    deps.Sleep,
	}
	if o.registry == nil {
		o.registry = engines.NewRegistry(deps.Settings.ExecutableSearchPath...)
	}
	if o.runner == nil {
		o.runner = task.NewRunner(task.WithLogger(deps.Logger))
	}
	if o.platform == nil {
		o.platform = HostPlatform{}
	}
	if o.fsType == nil {
		o.fsType = mountinfo.FilesystemType
	}
	if o.sleep == nil {
		o.sleep = time.Sleep
	}
	maxTasks := deps.Settings.MaxConcurrentTasks
	if maxTasks <= 0 {
		maxTasks = defaultMaxTasks
	}
	o.sem = semaphore.NewWeighted(int64(maxTasks))
	return o
}

// Create makes a new encrypted volume and, for backends that do not mount on
// create, mounts it.
func (o *Orchestrator) Create(ctx context.Context, opts engines.Options) *Future[engines.CmdStatus] {
	return o.submit(ctx, history.OperationCreate, opts.CipherFolder, opts.PlainFolder, func(ctx context.Context) (engines.CmdStatus, string) {
		return o.create(ctx, opts)
	})
}

// Mount mounts an existing volume. With reuse set an existing mount point is
// used even when reuse is disabled globally.
func (o *Orchestrator) Mount(ctx context.Context, opts engines.Options, reuse bool) *Future[engines.CmdStatus] {
	return o.submit(ctx, history.OperationMount, opts.CipherFolder, opts.PlainFolder, func(ctx context.Context) (engines.CmdStatus, string) {
		return o.mount(ctx, opts, reuse)
	})
}

// Unmount unmounts a mounted volume.
func (o *Orchestrator) Unmount(ctx context.Context, req UnmountRequest) *Future[engines.CmdStatus] {
	return o.submit(ctx, history.OperationUnmount, req.CipherFolder, req.MountPoint, func(ctx context.Context) (engines.CmdStatus, string) {
		return o.unmount(ctx, req)
	})
}

type job func(ctx context.Context) (status engines.CmdStatus, engine string)

func (o *Orchestrator) submit(ctx context.Context, op history.Operation, cipher, plain string, fn job) *Future[engines.CmdStatus] {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := logging.RequestIDFromContext(ctx); !ok {
		ctx = logging.WithRequestID(ctx, uuid.NewString())
	}
	f := newFuture[engines.CmdStatus]()
	go func() {
		if err := o.sem.Acquire(ctx, 1); err != nil {
			f.resolve(engines.CmdStatus{Code: engines.StatusUnknown, ExitCode: -1, Message: err.Error()})
			return
		}
		defer o.sem.Release(1)

		started := time.Now()
		status, engine := fn(ctx)
		o.journal(ctx, op, cipher, plain, engine, status, started)
		f.resolve(status)
	}()
	return f
}

func (o *Orchestrator) journal(ctx context.Context, op history.Operation, cipher, plain, engine string, st engines.CmdStatus, started time.Time) {
	logger := o.requestLogger(ctx, engine, cipher, plain)
	attrs := []logging.Attr{
		logging.String(logging.FieldStatus, st.Code.String()),
		logging.Int(logging.FieldExitCode, st.ExitCode),
		logging.Duration("elapsed", time.Since(started)),
	}
	if st.Success() {
		logger.Info(string(op)+" completed", logging.Args(attrs...)...)
	} else {
		attrs = append(attrs, logging.String("message", st.Message))
		logging.WarnWithContext(logger, string(op)+" failed", string(op)+"_failed",
			append(attrs, logging.String(logging.FieldImpact, "volume state unchanged"))...)
	}

	if o.history == nil {
		return
	}
	requestID, _ := logging.RequestIDFromContext(ctx)
	err := o.history.Record(ctx, history.Event{
		RequestID:    requestID,
		Operation:    op,
		CipherFolder: cipher,
		PlainFolder:  plain,
		Engine:       engine,
		Status:       st.Code.String(),
		ExitCode:     st.ExitCode,
		Message:      st.Message,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	})
	if err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the history database path and permissions"),
			logging.String(logging.FieldImpact, "event missing from history"),
		)
	}
}

func (o *Orchestrator) requestLogger(ctx context.Context, engine, cipher, plain string) *slog.Logger {
	logger := logging.WithContext(ctx, o.logger)
	attrs := []any{logging.String(logging.FieldCipherFolder, cipher), logging.String(logging.FieldPlainFolder, plain)}
	if engine != "" {
		attrs = append(attrs, logging.String(logging.FieldEngine, engine))
	}
	return logger.With(attrs...)
}

// createFolder reports whether path is usable as a fresh folder. An existing
// path is usable only when mount points are reused.
func (o *Orchestrator) createFolder(path string) bool {
	if o.platform.OS() == "windows" {
		return true
	}
	if o.platform.PathExists(path) {
		return o.settings.ReuseMountPoint
	}
	return o.platform.CreateFolder(path) == nil
}

// deleteFolders removes each folder in order, if empty.
func (o *Orchestrator) deleteFolders(ctx context.Context, paths ...string) {
	if !o.platform.CanRemoveFolders() {
		return
	}
	for _, path := range paths {
		if err := o.platform.RemoveFolder(path); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, o.logger), "folder cleanup failed", "folder_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the folder manually"),
				logging.String(logging.FieldImpact, "empty folder left behind"),
			)
		}
	}
}

// deleteMountFolder removes a mount point unless mount points are reused.
func (o *Orchestrator) deleteMountFolder(ctx context.Context, path string) {
	if o.settings.ReuseMountPoint {
		return
	}
	o.deleteFolders(ctx, path)
}

// illegalPath reports the ecryptfs restriction on spaces in paths when the
// elevation helper is in use.
func (o *Orchestrator) illegalPath(engineName string, opts engines.Options) bool {
	if !engines.IsEcryptfs(engineName) || !o.settings.UsePolkit {
		return false
	}
	return strings.Contains(opts.CipherFolder, " ") || strings.Contains(opts.PlainFolder, " ")
}

func absPath(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
