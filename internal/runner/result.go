package runner

import "strings"

// Result holds the output of a command execution.
type Result struct {
	RunID     string // unique identifier for this run
	ExitCode  int    // exit code, or -signal if the process was killed by one
	Stdout    []byte // captured stdout, byte for byte
	Stderr    []byte // captured stderr, byte for byte
	Truncated bool   // true if output exceeded an explicit size cap
}

// StdoutText returns stdout decoded as text. See DecodeText.
func (r *Result) StdoutText() string { return DecodeText(r.Stdout) }

// StderrText returns stderr decoded as text. See DecodeText.
func (r *Result) StderrText() string { return DecodeText(r.Stderr) }

// DecodeText converts captured output to text with universal newlines:
// "\r\n" and lone "\r" both become "\n".
func DecodeText(b []byte) string {
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
