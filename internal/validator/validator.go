// Package validator runs an external packaging validator against a
// manifest and reports its captured output. It is consumed by both the
// CLI and the MCP server.
package validator

import (
	"context"
	"fmt"
	"io"

	"github.com/deixis/manifestcheck/internal/config"
	"github.com/deixis/manifestcheck/internal/runner"
)

// CommandRunner executes commands in a working directory.
// Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, dir string) (*runner.Result, error)
}

// Validator invokes one validation executable against one manifest.
type Validator struct {
	Executable string // validation executable
	Manifest   string // manifest path, resolved by the child relative to Dir
	Dir        string // working directory of the child process
	Runner     CommandRunner
}

// New builds a Validator from a validated configuration.
func New(cfg *config.Config) *Validator {
	return &Validator{
		Executable: cfg.Executable,
		Manifest:   cfg.Manifest,
		Dir:        cfg.WorkingDirectory,
		Runner: &runner.Runner{
			Timeout:   cfg.Timeout(),
			MaxOutput: cfg.MaxOutputBytes(),
		},
	}
}

// Argv returns the full command line:
//
//	<executable> validate /m <manifest> /v
func (v *Validator) Argv() []string {
	return []string{v.Executable, "validate", "/m", v.Manifest, "/v"}
}

// Run executes the validator and waits for it to exit. Neither path is
// checked beforehand; a validator that cannot be started yields a
// *runner.LaunchError. A non-zero exit code is a normal result.
func (v *Validator) Run(ctx context.Context) (*runner.Result, error) {
	return v.Runner.Run(ctx, v.Argv(), v.Dir)
}

// Report announces the manifest, runs the validator and writes either the
// three result lines or a single "Error:" line to w. The returned error is
// the launch failure, already written to w; callers need not print it again.
func (v *Validator) Report(ctx context.Context, w io.Writer) (*runner.Result, error) {
	fmt.Fprintf(w, "Validating %s...\n", v.Manifest)

	res, err := v.Run(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nil, err
	}

	WriteResult(w, res)
	return res, nil
}

// WriteResult writes the captured streams and exit code, one field per
// line. Captured text is written with line endings normalised to "\n".
func WriteResult(w io.Writer, res *runner.Result) {
	fmt.Fprintf(w, "STDOUT: %s\n", res.StdoutText())
	fmt.Fprintf(w, "STDERR: %s\n", res.StderrText())
	fmt.Fprintf(w, "Return Code: %d\n", res.ExitCode)
}
