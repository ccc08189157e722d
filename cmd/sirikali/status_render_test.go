package main

import (
	"fmt"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"sirikali/internal/deps"
	"sirikali/internal/i18n"
)

func TestRenderEngineLineNoColor(t *testing.T) {
	got := renderEngineLine("CryFS", engineReady, "/usr/bin/cryfs (create, mount)", false)
	want := fmt.Sprintf("%s%-*s %s", engineIndent, engineLabelWidth, "CryFS:", "[OK] /usr/bin/cryfs (create, mount)")
	if got != want {
		t.Fatalf("renderEngineLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderEngineLineWithColor(t *testing.T) {
	got := renderEngineLine("eCryptfs", engineLimited, "", true)
	if !strings.HasPrefix(got, ansiYellow) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected yellow line, got %q", got)
	}
	if plain := renderEngineLine("EncFS", engineNotInstalled, "", true); strings.Contains(plain, "\x1b[") {
		t.Fatalf("not installed backends are not colored: %q", plain)
	}
}

func TestEngineStateOf(t *testing.T) {
	tests := []struct {
		name string
		st   deps.Status
		want engineState
	}{
		{name: "ready", st: deps.Status{Available: true, Optional: true}, want: engineReady},
		{name: "setuid", st: deps.Status{Available: true, Optional: true, Detail: "not setuid root"}, want: engineLimited},
		{name: "optional", st: deps.Status{Optional: true}, want: engineNotInstalled},
		{name: "required", st: deps.Status{}, want: engineMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engineStateOf(tt.st); got != tt.want {
				t.Fatalf("engineStateOf = %s, want %s", got.label(), tt.want.label())
			}
		})
	}
}

func TestEngineLines(t *testing.T) {
	tr := i18n.NewTranslator(language.English)
	results := []deps.Status{
		{Name: "ecryptfs", Command: "/usr/bin/ecryptfs-simple", Optional: true, Available: true, Detail: "not setuid root; enable elevation to use it"},
		{Name: "gocryptfs", Command: "/usr/bin/gocryptfs", Description: "create, mount, custom config path", Optional: true, Available: true},
		{Name: "cryfs", Command: "cryfs", Optional: true, Detail: `binary "cryfs" not found`},
		{Name: "fusermount", Command: "/usr/bin/fusermount", Available: true},
	}
	lines := engineLines(results, tr, false)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(lines), lines)
	}
	want := []string{
		"[OK] 2 of 3 backends usable",
		"[LIMITED] /usr/bin/ecryptfs-simple: not setuid root",
		"[OK] /usr/bin/gocryptfs (create, mount, custom config path)",
		`[NOT INSTALLED] binary "cryfs" not found`,
		"[OK] /usr/bin/fusermount",
	}
	for i, w := range want {
		if !strings.Contains(lines[i], w) {
			t.Fatalf("line %d = %q, want it to contain %q", i, lines[i], w)
		}
	}
	if !strings.Contains(lines[1], "eCryptfs:") || !strings.Contains(lines[3], "CryFS:") {
		t.Fatalf("expected display names, got %q", lines)
	}
}

func TestEngineLinesMissingHelper(t *testing.T) {
	tr := i18n.NewTranslator(language.English)
	lines := engineLines([]deps.Status{
		{Name: "gocryptfs", Command: "/usr/bin/gocryptfs", Optional: true, Available: true},
		{Name: "fusermount", Command: "fusermount", Detail: `binary "fusermount" not found`},
	}, tr, false)
	if !strings.Contains(lines[0], "[MISSING] 1 of 1 backends usable") {
		t.Fatalf("summary should report the missing helper: %q", lines[0])
	}

	lines = engineLines([]deps.Status{{Name: "encfs", Optional: true, Detail: "not found"}}, tr, false)
	if !strings.Contains(lines[0], "[NOT INSTALLED] 0 of 1 backends usable") {
		t.Fatalf("summary should report no usable backend: %q", lines[0])
	}
}
