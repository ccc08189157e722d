package favorites

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TriState is an optional boolean. Unset defers to the global default.
type TriState int

const (
	Unset TriState = iota
	True
	False
)

// IsSet reports whether the value overrides the global default.
func (t TriState) IsSet() bool { return t == True || t == False }

// Resolve returns the explicit value or def when unset.
func (t TriState) Resolve(def bool) bool {
	switch t {
	case True:
		return true
	case False:
		return false
	default:
		return def
	}
}

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "undefined"
	}
}

// ParseTriState accepts "true", "false" and "undefined" (or empty).
func ParseTriState(s string) (TriState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return True, nil
	case "false":
		return False, nil
	case "", "undefined", "unset", "n/a":
		return Unset, nil
	default:
		return Unset, fmt.Errorf("invalid tri-state value %q", s)
	}
}

func (t TriState) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TriState) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null":
		*t = Unset
		return nil
	case "true":
		*t = True
		return nil
	case "false":
		*t = False
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode tri-state: %w", err)
	}
	parsed, err := ParseTriState(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Entry is one saved favorite. Identity is (VolumePath, MountPointPath).
type Entry struct {
	VolumePath           string   `json:"volumePath" validate:"required"`
	MountPointPath       string   `json:"mountPointPath"`
	ConfigFilePath       string   `json:"configFilePath"`
	KeyFile              string   `json:"keyFilePath"`
	IdleTimeOut          string   `json:"idleTimeOut"`
	MountOptions         string   `json:"mountOptions"`
	PreMountCommand      string   `json:"preMountCommand"`
	PostMountCommand     string   `json:"postMountCommand"`
	PreUnmountCommand    string   `json:"preUnmountCommand"`
	PostUnmountCommand   string   `json:"postUnmountCommand"`
	ReverseMode          bool     `json:"reverseMode"`
	VolumeNeedNoPassword bool     `json:"volumeNeedNoPassword"`
	ReadOnlyMode         TriState `json:"mountReadOnly"`
	AutoMount            TriState `json:"autoMountVolume"`
}

// SameKey reports whether e and other share an identity.
func (e Entry) SameKey(other Entry) bool {
	return e.VolumePath == other.VolumePath && e.MountPointPath == other.MountPointPath
}
