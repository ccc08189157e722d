package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"sirikali/internal/favorites"
	"sirikali/internal/history"
	"sirikali/internal/testsupport"
)

func stubBackend(t *testing.T, env *cliTestEnv, name, script string) {
	t.Helper()
	path := filepath.Join(env.baseDir, "bin", name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestMountAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	volume := testsupport.NewVolume(t, env.baseDir, "vault", "gocryptfs.conf")
	mountPoint := filepath.Join(env.baseDir, "plain")

	out, _, err := runCLI(t, []string{"mount", volume, mountPoint}, env.configPath, "secret\n")
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	requireContains(t, out, "Mounted "+volume)
	if _, err := os.Stat(mountPoint); err != nil {
		t.Fatalf("mount point should exist: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var events []history.Event
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(events) != 1 || events[0].Operation != history.OperationMount || events[0].Engine != "gocryptfs" {
		t.Fatalf("unexpected history %+v", events)
	}
}

func TestMountReportsBackendError(t *testing.T) {
	env := setupCLITestEnv(t)
	stubBackend(t, env, "gocryptfs", "echo 'Password incorrect.' >&2\nexit 12")
	volume := testsupport.NewVolume(t, env.baseDir, "vault", "gocryptfs.conf")
	mountPoint := filepath.Join(env.baseDir, "plain")
	t.Setenv(keyEnv, "wrong")

	_, _, err := runCLI(t, []string{"mount", volume, mountPoint}, env.configPath, "")
	if err == nil {
		t.Fatal("expected mount to fail")
	}
	requireContains(t, err.Error(), "Wrong password?")
	if _, statErr := os.Stat(mountPoint); !os.IsNotExist(statErr) {
		t.Fatal("mount point should be removed after failure")
	}
}

func TestMountRequiresPassword(t *testing.T) {
	env := setupCLITestEnv(t)
	volume := testsupport.NewVolume(t, env.baseDir, "vault", "gocryptfs.conf")

	_, _, err := runCLI(t, []string{"mount", volume}, env.configPath, "")
	if err == nil {
		t.Fatal("expected mount without a password to fail")
	}
	requireContains(t, err.Error(), "no password given")
}

func TestMountUsesFavoriteSettings(t *testing.T) {
	env := setupCLITestEnv(t)
	volume := testsupport.NewVolume(t, env.baseDir, "vault", "gocryptfs.conf")
	mountPoint := filepath.Join(env.baseDir, "fav-plain")
	keyFile := filepath.Join(env.baseDir, "vault.key")
	testsupport.WriteFile(t, keyFile, []byte("secret\n"))

	store := testsupport.MustFavorites(t, env.cfg)
	if err := store.Add(favorites.Entry{VolumePath: volume, MountPointPath: mountPoint, KeyFile: keyFile}); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"mount", volume}, env.configPath, "")
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	requireContains(t, out, mountPoint)
}

func TestCreateAddsFavorite(t *testing.T) {
	env := setupCLITestEnv(t)
	volume := filepath.Join(env.baseDir, "new-vault")
	mountPoint := filepath.Join(env.baseDir, "new-plain")
	t.Setenv(keyEnv, "secret")

	out, _, err := runCLI(t, []string{"create", "gocryptfs", volume, mountPoint, "--favorite"}, env.configPath, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	requireContains(t, out, "Created Gocryptfs volume")

	store := testsupport.MustFavorites(t, env.cfg)
	if _, ok, err := store.ReadByKey(volume, mountPoint); err != nil || !ok {
		t.Fatalf("expected favorite for the new volume: %v %v", ok, err)
	}
}

func TestCreateSshfsUnsupported(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"create", "sshfs", "sshfs me@host:/srv", filepath.Join(env.baseDir, "r"), "--no-password"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected sshfs create to fail")
	}
	requireContains(t, err.Error(), "cannot create volumes")
}

func TestCreateRejectsUnknownEngine(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"create", "truecrypt", filepath.Join(env.baseDir, "v")}, env.configPath, "")
	if err == nil {
		t.Fatal("expected unknown engine to fail")
	}
	requireContains(t, err.Error(), "choose one of: ecryptfs, gocryptfs, cryfs, encfs, sshfs")
	if _, statErr := os.Stat(filepath.Join(env.baseDir, "v")); !os.IsNotExist(statErr) {
		t.Fatal("no folder should be created for an unknown engine")
	}
}

func TestUnmountWithExplicitFilesystem(t *testing.T) {
	env := setupCLITestEnv(t)
	mountPoint := filepath.Join(env.baseDir, "plain")
	if err := os.MkdirAll(mountPoint, 0o700); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"unmount", mountPoint, "--fs", "fuse.gocryptfs"}, env.configPath, "")
	if err != nil {
		t.Fatalf("unmount: %v", err)
	}
	requireContains(t, out, "Unmounted "+mountPoint)
	if _, err := os.Stat(mountPoint); !os.IsNotExist(err) {
		t.Fatal("mount point should be removed after unmount")
	}
}

func TestEnginesCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"engines"}, env.configPath, "")
	if err != nil {
		t.Fatalf("engines: %v", err)
	}
	requireContains(t, out, "== Engines ==")
	requireContains(t, out, "CryFS:")
	requireContains(t, out, "[OK]")
}

func TestAutomountDryRun(t *testing.T) {
	env := setupCLITestEnv(t)
	volume := testsupport.NewVolume(t, env.baseDir, "usb", "cryfs.config")
	store := testsupport.MustFavorites(t, env.cfg)
	if err := store.Add(favorites.Entry{VolumePath: volume, MountPointPath: filepath.Join(env.baseDir, "usb-plain"), AutoMount: favorites.True, VolumeNeedNoPassword: true}); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"automount", "--dry-run"}, env.configPath, "")
	if err != nil {
		t.Fatalf("automount: %v", err)
	}
	requireContains(t, out, volume)

	out, _, err = runCLI(t, []string{"automount"}, env.configPath, "")
	if err != nil {
		t.Fatalf("automount: %v", err)
	}
	requireContains(t, out, "Mounted "+volume)
}

func TestAutomountWatchRequiresEnabled(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"automount", "--watch"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected --watch to refuse when disabled")
	}
	requireContains(t, err.Error(), "automount is disabled")
}
