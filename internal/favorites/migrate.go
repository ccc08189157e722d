package favorites

import (
	"errors"
	"strings"
)

const (
	legacyDelimiter = "\t"
	legacyAbsent    = "N/A"

	markerReverseMode    = "-SiriKaliReverseMode"
	markerNeedNoPassword = "-SiriKaliVolumeNeedNoPassword"
	markerReadOnly       = "-SiriKaliMountReadOnly"
)

// ParseLegacyLine decodes one line of the legacy bulk list. Fields are, in
// order: volume path, mount point, auto mount, config file, idle timeout and
// mount options. Missing trailing fields are treated as absent.
func ParseLegacyLine(line string) Entry {
	fields := strings.Split(line, legacyDelimiter)
	field := func(i int) string {
		if i >= len(fields) || fields[i] == legacyAbsent {
			return ""
		}
		return fields[i]
	}

	e := Entry{
		VolumePath:     field(0),
		MountPointPath: field(1),
		ConfigFilePath: field(3),
		IdleTimeOut:    field(4),
	}
	switch field(2) {
	case "":
	case "true":
		e.AutoMount = True
	default:
		e.AutoMount = False
	}

	options := field(5)
	e.ReverseMode = strings.Contains(options, markerReverseMode)
	e.VolumeNeedNoPassword = strings.Contains(options, markerNeedNoPassword)
	if strings.Contains(options, markerReadOnly) {
		e.ReadOnlyMode = True
	}
	for _, marker := range []string{markerReadOnly, markerNeedNoPassword, markerReverseMode} {
		options = strings.ReplaceAll(options, marker, "")
	}
	e.MountOptions = strings.TrimSpace(options)
	return e
}

// MigrateLegacy inserts every legacy line as an individual record. Lines whose
// entry already exists are skipped. It returns the number of records added.
// Callers remove the legacy list from the settings file afterwards.
func (s *Store) MigrateLegacy(lines []string) (int, error) {
	added := 0
	var errs []error
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		err := s.Add(ParseLegacyLine(line))
		switch {
		case err == nil:
			added++
		case errors.Is(err, ErrAlreadyExists):
		default:
			errs = append(errs, err)
		}
	}
	return added, errors.Join(errs...)
}
