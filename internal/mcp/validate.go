package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deixis/manifestcheck/internal/config"
	"github.com/deixis/manifestcheck/internal/report"
	"github.com/deixis/manifestcheck/internal/runner"
	"github.com/deixis/manifestcheck/internal/validator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type validateParams struct {
	Executable       string `json:"executable,omitempty" jsonschema:"Path to the validation executable (e.g. makeappx.exe). Defaults to the server configuration."`
	Manifest         string `json:"manifest,omitempty" jsonschema:"Manifest file to validate, relative to the working directory or absolute. Defaults to the server configuration."`
	WorkingDirectory string `json:"working_directory,omitempty" jsonschema:"Directory the validator is started in. Defaults to the server configuration."`
}

func (h *handler) validateHandler(ctx context.Context, req *mcp.CallToolRequest, params validateParams) (*mcp.CallToolResult, any, error) {
	cfg := *h.config
	cfg.Override(config.Config{
		Executable:       params.Executable,
		Manifest:         params.Manifest,
		WorkingDirectory: params.WorkingDirectory,
	})
	if err := cfg.Validate(); err != nil {
		return errorResult(fmt.Sprintf("Cannot validate: %v. Pass it as a parameter or set it in the server configuration.", err))
	}

	v := validator.New(&cfg)
	started := time.Now()
	res, runErr := v.Run(ctx)
	run := report.NewRun(v.Argv(), v.Dir, started, res, runErr)

	// Save for manifest_inspect.
	_ = h.store.Save(run)

	if runErr != nil {
		return errorResult(formatRunError(run, runErr))
	}
	return textResult(formatValidate(run))
}

func formatValidate(run *report.Run) string {
	var b strings.Builder

	if run.ExitCode == 0 {
		fmt.Fprintln(&b, "Status: PASS")
	} else {
		fmt.Fprintln(&b, "Status: FAIL")
	}
	fmt.Fprintf(&b, "Run: %s\n", run.ID)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "STDOUT: %s\n", run.Stdout)
	fmt.Fprintf(&b, "STDERR: %s\n", run.Stderr)
	fmt.Fprintf(&b, "Return Code: %d\n", run.ExitCode)

	return b.String()
}

func formatRunError(run *report.Run, runErr error) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Error: %s\n", run.Error)
	fmt.Fprintf(&b, "Run: %s\n", run.ID)
	fmt.Fprintln(&b)

	var launchErr *runner.LaunchError
	switch {
	case errors.As(runErr, &launchErr):
		fmt.Fprintln(&b, "Action: check that the executable exists and is runnable, and that the working directory exists.")
	case errors.Is(runErr, context.DeadlineExceeded):
		fmt.Fprintln(&b, "Action: the validator exceeded the configured timeout and was stopped. Raise the timeout or check why it hangs.")
	case errors.Is(runErr, context.Canceled):
		fmt.Fprintln(&b, "Action: none, the request was cancelled before the validator finished.")
	}

	return b.String()
}
