// Package deps reports the availability of the external binaries hermes
// invokes.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency hermes relies on.
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
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// FFmpeg reports the encoder binary hermes will execute.
func FFmpeg(command string) Status {
	if strings.TrimSpace(command) == "" {
		command = "ffmpeg"
	}
	statuses := CheckBinaries([]Requirement{{
		Name:        "FFmpeg",
		Command:     command,
		Description: "Splits and encodes tracks",
	}})
	return statuses[0]
}
