// Package runner provides synchronous command execution with captured
// output, an optional timeout, and an optional output size limit.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/google/uuid"
)

// Runner executes commands and buffers their output in memory.
// The zero value runs without a timeout and keeps all output.
type Runner struct {
	Timeout   time.Duration // zero means wait indefinitely
	MaxOutput int           // bytes per stream; zero means unbounded
}

// LaunchError reports that a child process could not be created: the
// binary is missing or not executable, the working directory is invalid,
// or the OS refused to start it.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Run executes a command with the given argv. The first element is the
// binary (a path, or a name resolved via PATH), and the rest are arguments.
// dir is the working directory of the child; empty means the current one.
//
// A non-zero exit status is reported in the Result, not as an error.
// Failures to start the process are returned as *LaunchError.
func (r *Runner) Run(ctx context.Context, argv []string, dir string) (*Result, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty argv")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	runID := uuid.New().String()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	configureCancel(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = r.writer(&stdout)
	cmd.Stderr = r.writer(&stderr)

	runErr := cmd.Run()

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, &LaunchError{Path: argv[0], Err: runErr}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("running %s: %w", argv[0], ctxErr)
		}
		exitCode = exitStatus(exitErr)
	}

	truncated := r.MaxOutput > 0 && (stdout.Len() >= r.MaxOutput || stderr.Len() >= r.MaxOutput)

	return &Result{
		RunID:     runID,
		ExitCode:  exitCode,
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Truncated: truncated,
	}, nil
}

func (r *Runner) writer(buf *bytes.Buffer) io.Writer {
	if r.MaxOutput <= 0 {
		return buf
	}
	return &limitWriter{buf: buf, limit: r.MaxOutput}
}

// limitWriter writes up to limit bytes to buf, then silently discards the rest.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Report all bytes as consumed to avoid short write errors from io.Copy.
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
