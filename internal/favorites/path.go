package favorites

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const recordExt = ".json"

// segment reduces a volume path to the short name used in record names:
// anything before the last "@" (sshfs user@host) and the last "/" is dropped,
// and colons are removed.
func segment(volumePath string) string {
	s := strings.TrimRight(volumePath, "/")
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return strings.ReplaceAll(s, ":", "")
}

// RecordName returns the deterministic record file name for an entry.
func RecordName(e Entry) string {
	seg := segment(e.VolumePath)
	sum := sha256.Sum256([]byte(seg + e.MountPointPath))
	return seg + "-" + hex.EncodeToString(sum[:]) + recordExt
}

func (s *Store) recordPath(e Entry) string {
	return filepath.Join(s.dir, RecordName(e))
}
