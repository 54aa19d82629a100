// Package report persists validation runs so they can be retrieved by
// run ID after the fact.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/deixis/manifestcheck/internal/runner"
	"github.com/google/uuid"
)

// ErrNotFound is returned by Store.Load for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Store persists and retrieves runs.
type Store interface {
	Save(run *Run) error
	Load(runID string) (*Run, error)
}

// Run is the stored record of one validator invocation.
type Run struct {
	ID               string        `json:"id"`
	Argv             []string      `json:"argv"`
	WorkingDirectory string        `json:"working_directory"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`

	// Set when the validator ran.
	ExitCode  int    `json:"exit_code"`
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	Truncated bool   `json:"truncated,omitempty"`

	// Set when no result was produced: the validator could not be started,
	// or it was stopped by a timeout or cancellation.
	Error string `json:"error,omitempty"`
}

// NewRun records the outcome of running argv in dir. Exactly one of res
// and runErr is expected to be non-nil. A failed run has no runner ID, so
// one is generated.
func NewRun(argv []string, dir string, startedAt time.Time, res *runner.Result, runErr error) *Run {
	r := &Run{
		Argv:             argv,
		WorkingDirectory: dir,
		StartedAt:        startedAt,
		Duration:         time.Since(startedAt),
	}
	if runErr != nil {
		r.ID = uuid.New().String()
		r.Error = runErr.Error()
		return r
	}
	r.ID = res.RunID
	r.ExitCode = res.ExitCode
	r.Stdout = res.StdoutText()
	r.Stderr = res.StderrText()
	r.Truncated = res.Truncated
	return r
}

// Finished reports whether the validator ran to completion and produced
// a result.
func (r *Run) Finished() bool {
	return r.Error == ""
}

// WriteTo writes a human-readable description of the run.
func (r *Run) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s\n", r.ID)
	fmt.Fprintf(&b, "Command: %s\n", strings.Join(r.Argv, " "))
	fmt.Fprintf(&b, "Working directory: %s\n", r.WorkingDirectory)
	fmt.Fprintf(&b, "Started: %s (%s)\n", r.StartedAt.Format(time.RFC3339), r.Duration.Round(time.Millisecond))
	fmt.Fprintln(&b)

	if !r.Finished() {
		fmt.Fprintf(&b, "Error: %s\n", r.Error)
	} else {
		fmt.Fprintf(&b, "STDOUT: %s\n", r.Stdout)
		fmt.Fprintf(&b, "STDERR: %s\n", r.Stderr)
		fmt.Fprintf(&b, "Return Code: %d\n", r.ExitCode)
		if r.Truncated {
			fmt.Fprintln(&b, "(output truncated)")
		}
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
