package favorites_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"sirikali/internal/favorites"
)

func TestParseLegacyLine(t *testing.T) {
	got := favorites.ParseLegacyLine("/vol\t/mnt\ttrue\tN/A\tN/A\t-SiriKaliReverseMode -SiriKaliMountReadOnly")
	want := favorites.Entry{
		VolumePath:     "/vol",
		MountPointPath: "/mnt",
		AutoMount:      favorites.True,
		ReverseMode:    true,
		ReadOnlyMode:   favorites.True,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("legacy decode mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLegacyLineKeepsRealOptions(t *testing.T) {
	got := favorites.ParseLegacyLine("/vol\t/mnt\tfalse\t/keys/cryfs.config\t10\t-SiriKaliVolumeNeedNoPassword --allow-other")
	if got.AutoMount != favorites.False {
		t.Fatalf("auto mount = %v", got.AutoMount)
	}
	if got.ConfigFilePath != "/keys/cryfs.config" || got.IdleTimeOut != "10" {
		t.Fatalf("unexpected fields: %+v", got)
	}
	if !got.VolumeNeedNoPassword || got.ReverseMode || got.ReadOnlyMode != favorites.Unset {
		t.Fatalf("unexpected flags: %+v", got)
	}
	if got.MountOptions != "--allow-other" {
		t.Fatalf("mount options = %q", got.MountOptions)
	}
}

func TestParseLegacyLineShortLine(t *testing.T) {
	got := favorites.ParseLegacyLine("/vol\t/mnt\tN/A")
	want := favorites.Entry{VolumePath: "/vol", MountPointPath: "/mnt"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("short line mismatch (-want +got):\n%s", diff)
	}
}

func TestMigrateLegacy(t *testing.T) {
	store := newStore(t)
	lines := []string{
		"/vol\t/mnt\ttrue\tN/A\tN/A\t-SiriKaliReverseMode",
		"",
		"/other\t/mnt/other\tN/A\tN/A\tN/A\tN/A",
		"/vol\t/mnt\tfalse\tN/A\tN/A\tN/A",
	}
	added, err := store.MigrateLegacy(lines)
	if err != nil {
		t.Fatalf("MigrateLegacy: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 records, got %d", added)
	}
	got, ok, err := store.ReadByKey("/vol", "/mnt")
	if err != nil || !ok {
		t.Fatalf("ReadByKey: ok=%v err=%v", ok, err)
	}
	if got.AutoMount != favorites.True || !got.ReverseMode {
		t.Fatalf("first line should win: %+v", got)
	}
}
