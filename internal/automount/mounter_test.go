package automount_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sirikali/internal/automount"
	"sirikali/internal/config"
	"sirikali/internal/engines"
	"sirikali/internal/favorites"
	"sirikali/internal/mount"
)

type staticStore []favorites.Entry

func (s staticStore) ReadAll() ([]favorites.Entry, error) { return s, nil }

type recordingOrchestrator struct {
	mu     sync.Mutex
	mounts []engines.Options
	status func(engines.Options) engines.CmdStatus
}

func (r *recordingOrchestrator) Mount(_ context.Context, opts engines.Options, _ bool) *mount.Future[engines.CmdStatus] {
	r.mu.Lock()
	r.mounts = append(r.mounts, opts)
	r.mu.Unlock()
	st := engines.NewStatus(engines.StatusSuccess)
	if r.status != nil {
		st = r.status(opts)
	}
	return mount.Resolved(st)
}

func (r *recordingOrchestrator) folders() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, o := range r.mounts {
		out = append(out, o.CipherFolder)
	}
	return out
}

func TestMountAvailableSelectsEligibleFavorites(t *testing.T) {
	dir := t.TempDir()
	volume := func(name string) string {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(path, 0o700); err != nil {
			t.Fatal(err)
		}
		return path
	}
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := staticStore{
		{VolumePath: volume("nopass"), MountPointPath: "/mnt/nopass", AutoMount: favorites.True, VolumeNeedNoPassword: true},
		{VolumePath: volume("keyfile"), MountPointPath: "/mnt/keyfile", AutoMount: favorites.True, KeyFile: keyFile},
		{VolumePath: volume("prompt"), MountPointPath: "/mnt/prompt", AutoMount: favorites.True},
		{VolumePath: volume("off"), MountPointPath: "/mnt/off", AutoMount: favorites.False, VolumeNeedNoPassword: true},
		{VolumePath: volume("default"), MountPointPath: "/mnt/default", VolumeNeedNoPassword: true},
		{VolumePath: filepath.Join(dir, "absent"), MountPointPath: "/mnt/absent", AutoMount: favorites.True, VolumeNeedNoPassword: true},
		{VolumePath: volume("mounted"), MountPointPath: "/mnt/mounted", AutoMount: favorites.True, VolumeNeedNoPassword: true},
	}
	orch := &recordingOrchestrator{}
	m := automount.NewMounter(store, orch, config.MountSettings{},
		automount.WithMountCheck(func(p string) bool { return p == "/mnt/mounted" }),
	)

	outcomes, err := m.MountAvailable(context.Background())
	if err != nil {
		t.Fatalf("MountAvailable: %v", err)
	}
	want := []string{filepath.Join(dir, "nopass"), filepath.Join(dir, "keyfile")}
	if diff := cmp.Diff(want, orch.folders()); diff != "" {
		t.Fatalf("mounted volumes mismatch (-want +got):\n%s", diff)
	}
	if len(outcomes) != 2 || !outcomes[0].Status.Success() {
		t.Fatalf("unexpected outcomes %+v", outcomes)
	}
	if orch.mounts[1].Key != "secret" {
		t.Fatalf("key file contents should be the password, got %q", orch.mounts[1].Key)
	}
}

func TestMountAvailableUsesGlobalDefault(t *testing.T) {
	dir := t.TempDir()
	store := staticStore{{VolumePath: dir, MountPointPath: "/mnt/x", VolumeNeedNoPassword: true}}
	orch := &recordingOrchestrator{}
	m := automount.NewMounter(store, orch, config.MountSettings{AutoMountDefault: true},
		automount.WithMountCheck(func(string) bool { return false }),
	)

	if _, err := m.MountAvailable(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(orch.folders()) != 1 {
		t.Fatalf("expected the unset favorite to follow the default, got %v", orch.folders())
	}
}

func TestMountAvailableFillsMountPoint(t *testing.T) {
	dir := t.TempDir()
	store := staticStore{{VolumePath: dir, AutoMount: favorites.True, VolumeNeedNoPassword: true}}
	orch := &recordingOrchestrator{}
	m := automount.NewMounter(store, orch, config.MountSettings{},
		automount.WithMountCheck(func(string) bool { return false }),
		automount.WithMountPath(func(v string) string { return "/media/" + filepath.Base(v) }),
	)

	if _, err := m.MountAvailable(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(orch.mounts) != 1 || orch.mounts[0].PlainFolder != "/media/"+filepath.Base(dir) {
		t.Fatalf("unexpected mounts %+v", orch.mounts)
	}
}

func TestMountAvailableReportsFailures(t *testing.T) {
	dir := t.TempDir()
	store := staticStore{{VolumePath: dir, MountPointPath: "/mnt/x", AutoMount: favorites.True, KeyFile: filepath.Join(dir, "missing-key")}}
	orch := &recordingOrchestrator{}
	m := automount.NewMounter(store, orch, config.MountSettings{},
		automount.WithMountCheck(func(string) bool { return false }),
	)

	outcomes, err := m.MountAvailable(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(orch.mounts) != 0 {
		t.Fatal("a volume with an unreadable key file must not be mounted")
	}
	if len(outcomes) != 1 || !outcomes[0].Status.Is(engines.StatusBackendFailed) {
		t.Fatalf("unexpected outcomes %+v", outcomes)
	}
}

func TestCandidatesIncludeRemoteSshfs(t *testing.T) {
	remote := "sshfs me@example.org:/srv/data"
	store := staticStore{
		{VolumePath: remote, MountPointPath: "/mnt/remote", AutoMount: favorites.True, KeyFile: "/home/me/.ssh/id_ed25519"},
	}
	orch := &recordingOrchestrator{}
	m := automount.NewMounter(store, orch, config.MountSettings{},
		automount.WithMountCheck(func(string) bool { return false }),
	)

	outcomes, err := m.MountAvailable(context.Background())
	if err != nil {
		t.Fatalf("MountAvailable: %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].Status.Success() {
		t.Fatalf("unexpected outcomes %+v", outcomes)
	}
	if diff := cmp.Diff([]string{remote}, orch.folders()); diff != "" {
		t.Fatalf("mounted volumes mismatch (-want +got):\n%s", diff)
	}
	if orch.mounts[0].Key != "" {
		t.Fatal("the sshfs key file is an identity, not a password")
	}
}
