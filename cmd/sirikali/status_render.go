package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"sirikali/internal/deps"
	"sirikali/internal/i18n"
)

// engineState is how usable a backend is on this host.
type engineState int

const (
	engineReady engineState = iota
	// Installed, but the ecryptfs helper only works through the elevation
	// helper and elevation is off.
	engineLimited
	// An optional backend that is not installed.
	engineNotInstalled
	// A required helper is missing; nothing can be unmounted.
	engineMissing
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	engineLabelWidth = 14
	engineIndent     = "  "
)

func engineStateOf(st deps.Status) engineState {
	switch {
	case !st.Available && st.Optional:
		return engineNotInstalled
	case !st.Available:
		return engineMissing
	case st.Detail != "":
		return engineLimited
	default:
		return engineReady
	}
}

func (s engineState) label() string {
	switch s {
	case engineReady:
		return "OK"
	case engineLimited:
		return "LIMITED"
	case engineNotInstalled:
		return "NOT INSTALLED"
	default:
		return "MISSING"
	}
}

func (s engineState) color() string {
	switch s {
	case engineReady:
		return ansiGreen
	case engineLimited:
		return ansiYellow
	case engineMissing:
		return ansiRed
	default:
		return ""
	}
}

// engineDetail is the text after the state label: the resolved executable
// and its capabilities when usable, otherwise why it is not.
func engineDetail(st deps.Status, state engineState) string {
	switch state {
	case engineReady:
		if st.Description == "" {
			return st.Command
		}
		return st.Command + " (" + st.Description + ")"
	case engineLimited:
		return st.Command + ": " + st.Detail
	default:
		return st.Detail
	}
}

func renderEngineLine(label string, state engineState, detail string, colorize bool) string {
	text := fmt.Sprintf("[%s]", state.label())
	if detail != "" {
		text += " " + detail
	}
	line := fmt.Sprintf("%s%-*s %s", engineIndent, engineLabelWidth, label+":", text)
	if colorize {
		if color := state.color(); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

// engineLines renders a summary line followed by one line per checked
// executable. The summary is MISSING when a required helper is absent and
// NOT INSTALLED when no backend can be used.
func engineLines(results []deps.Status, tr *i18n.Translator, colorize bool) []string {
	lines := make([]string, 0, len(results)+1)
	backends, usable := 0, 0
	blocked := false
	for _, st := range results {
		state := engineStateOf(st)
		if st.Optional {
			backends++
			if state == engineReady || state == engineLimited {
				usable++
			}
		}
		if state == engineMissing {
			blocked = true
		}
		lines = append(lines, renderEngineLine(tr.DisplayName(st.Name), state, engineDetail(st, state), colorize))
	}

	summary := engineReady
	switch {
	case blocked:
		summary = engineMissing
	case usable == 0:
		summary = engineNotInstalled
	}
	head := renderEngineLine("Summary", summary, fmt.Sprintf("%d of %d backends usable", usable, backends), colorize)
	return append([]string{head}, lines...)
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
