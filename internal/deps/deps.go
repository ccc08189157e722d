package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"sirikali/internal/engines"
)

// Requirement defines an external program sirikali relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// EngineRequirements lists every backend executable plus the FUSE unmount
// helper. Commands are resolved through the registry search path when
// possible so extra search directories are honored.
func EngineRequirements(r *engines.Registry) []Requirement {
	reqs := make([]Requirement, 0, len(r.All())+1)
	for _, d := range r.All() {
		cmd := r.ExecutablePath(d)
		if cmd == "" {
			cmd = d.Executable
		}
		reqs = append(reqs, Requirement{
			Name:        d.Name,
			Command:     cmd,
			Description: engineDescription(d),
			Optional:    true,
		})
	}

	unmount := r.LookPath("fusermount")
	if unmount == "" {
		unmount = r.LookPath("fusermount3")
	}
	if unmount == "" {
		unmount = "fusermount"
	}
	reqs = append(reqs, Requirement{
		Name:        "fusermount",
		Command:     unmount,
		Description: "Unmounts FUSE volumes",
	})
	return reqs
}

// CheckEngines checks the engine requirements and flags an ecryptfs helper
// that can only work through the elevation helper.
func CheckEngines(r *engines.Registry, elevation bool) []Status {
	results := CheckBinaries(EngineRequirements(r))
	for i := range results {
		st := &results[i]
		if !st.Available || !engines.IsEcryptfs(st.Name) || elevation {
			continue
		}
		if !isSetuidRoot(st.Command) {
			st.Detail = "not setuid root; enable elevation to use it"
		}
	}
	return results
}

var isSetuidRoot = engines.IsSetuidRoot

func engineDescription(d *engines.Descriptor) string {
	var parts []string
	if d.SupportsCreate {
		parts = append(parts, "create")
	}
	parts = append(parts, "mount")
	if d.SupportsCustomConfigPath {
		parts = append(parts, "custom config path")
	}
	if d.RequiresElevation {
		parts = append(parts, "needs privileges")
	}
	return strings.Join(parts, ", ")
}
