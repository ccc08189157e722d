package mount_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"sirikali/internal/config"
	"sirikali/internal/engines"
	"sirikali/internal/history"
	"sirikali/internal/logging"
	"sirikali/internal/mount"
	"sirikali/internal/task"
)

const enableCommand = "sirikali-enable-polkit"

type call struct {
	argv  []string
	stdin string
	env   []string
}

// fakeExec answers commands by executable base name.
type fakeExec struct {
	mu       sync.Mutex
	calls    []call
	detached [][]string
	counts   map[string]int
	respond  func(name string, n int, req task.Request) task.Result
}

func (f *fakeExec) Execute(_ context.Context, req task.Request) task.Result {
	f.mu.Lock()
	f.calls = append(f.calls, call{argv: req.Argv, stdin: string(req.Stdin), env: req.Env})
	name := filepath.Base(req.Argv[0])
	if name == "pkexec" && len(req.Argv) > 1 {
		name = filepath.Base(req.Argv[1])
	}
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[name]++
	n := f.counts[name]
	respond := f.respond
	f.mu.Unlock()

	if respond == nil {
		return task.Result{}
	}
	return respond(name, n, req)
}

func (f *fakeExec) StartDetached(argv []string, _ []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detached = append(f.detached, argv)
	return nil
}

func (f *fakeExec) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[name]
}

func (f *fakeExec) callsTo(name string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		base := filepath.Base(c.argv[0])
		if base == "pkexec" && len(c.argv) > 1 {
			base = filepath.Base(c.argv[1])
		}
		if base == name {
			out = append(out, c)
		}
	}
	return out
}

type memHistory struct {
	mu     sync.Mutex
	events []history.Event
}

func (m *memHistory) Record(_ context.Context, ev history.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

type harness struct {
	orch    *mount.Orchestrator
	exec    *fakeExec
	history *memHistory
	root    string

	mu     sync.Mutex
	sleeps []time.Duration
}

func (h *harness) slept() []time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]time.Duration(nil), h.sleeps...)
}

type harnessOption func(*config.MountSettings, *mount.Deps)

func withSettings(fn func(*config.MountSettings)) harnessOption {
	return func(s *config.MountSettings, _ *mount.Deps) { fn(s) }
}

func withFilesystemType(fstype string) harnessOption {
	return func(_ *config.MountSettings, d *mount.Deps) {
		d.FilesystemType = func(string) (string, error) { return fstype, nil }
	}
}

func newHarness(t *testing.T, respond func(name string, n int, req task.Request) task.Result, opts ...harnessOption) *harness {
	t.Helper()
	root := t.TempDir()
	binDir := filepath.Join(root, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"gocryptfs", "cryfs", "encfs", "sshfs", "ecryptfs-simple", "fusermount"} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	settings := config.MountSettings{
		MountTimeout:       time.Second,
		UnmountTimeout:     time.Second,
		UnmountAttempts:    3,
		MaxConcurrentTasks: 2,
	}
	deps := mount.Deps{FilesystemType: func(string) (string, error) { return "fuse.gocryptfs", nil }}
	for _, opt := range opts {
		opt(&settings, &deps)
	}

	fake := &fakeExec{respond: respond}
	h := &harness{exec: fake, history: &memHistory{}, root: root}
	deps.Registry = engines.NewRegistry(binDir)
	deps.Runner = task.NewRunner(
		task.WithExecutor(fake),
		task.WithElevator(&task.Elevator{Enabled: settings.UsePolkit, Helper: "pkexec", EnableCommand: enableCommand}),
	)
	deps.Settings = settings
	deps.History = h.history
	deps.Logger = logging.NewNop()
	deps.Sleep = func(d time.Duration) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.sleeps = append(h.sleeps, d)
	}
	h.orch = mount.New(deps)
	return h
}

func (h *harness) path(parts ...string) string {
	return filepath.Join(append([]string{h.root}, parts...)...)
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o700); err != nil {
		t.Fatal(err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	mkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func contains(argv []string, want ...string) bool {
	joined := "\x00" + strings.Join(argv, "\x00") + "\x00"
	return strings.Contains(joined, "\x00"+strings.Join(want, "\x00")+"\x00")
}

func fail(exit int, stderr string) task.Result {
	return task.Result{ExitCode: exit, Stderr: stderr}
}
