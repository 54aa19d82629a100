package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deixis/manifestcheck/internal/runner"
)

var testArgv = []string{"makeappx", "validate", "/m", "AppxManifest.xml", "/v"}

func TestNewRun_Result(t *testing.T) {
	started := time.Now()
	res := &runner.Result{RunID: "abc", ExitCode: 1, Stdout: []byte("out"), Stderr: []byte("err")}

	run := NewRun(testArgv, "/work", started, res, nil)
	if run.ID != "abc" {
		t.Errorf("ID = %q, want abc", run.ID)
	}
	if !run.Finished() {
		t.Error("Finished() = false, want true")
	}
	if run.ExitCode != 1 || run.Stdout != "out" || run.Stderr != "err" {
		t.Errorf("run = %+v, want result fields copied", run)
	}
}

func TestNewRun_LaunchError(t *testing.T) {
	err := &runner.LaunchError{Path: "makeappx", Err: os.ErrNotExist}
	run := NewRun(testArgv, "/work", time.Now(), nil, err)
	if run.ID == "" {
		t.Error("ID is empty")
	}
	if run.Finished() {
		t.Error("Finished() = true, want false")
	}
	if !strings.Contains(run.Error, "makeappx") {
		t.Errorf("Error = %q, want to mention the executable", run.Error)
	}
}

func TestNewRun_NormalisesLineEndings(t *testing.T) {
	res := &runner.Result{RunID: "abc", Stdout: []byte("line1\r\nline2\r\n"), Stderr: []byte("a\rb")}
	run := NewRun(testArgv, "/work", time.Now(), res, nil)
	if run.Stdout != "line1\nline2\n" {
		t.Errorf("Stdout = %q, want %q", run.Stdout, "line1\nline2\n")
	}
	if run.Stderr != "a\nb" {
		t.Errorf("Stderr = %q, want %q", run.Stderr, "a\nb")
	}
}

func TestRun_WriteTo(t *testing.T) {
	res := &runner.Result{RunID: "abc", ExitCode: 0, Stdout: []byte("OK")}
	run := NewRun(testArgv, "/work", time.Now(), res, nil)

	var b strings.Builder
	if _, err := run.WriteTo(&b); err != nil {
		t.Fatal(err)
	}
	text := b.String()
	for _, want := range []string{
		"Run: abc",
		"Command: makeappx validate /m AppxManifest.xml /v",
		"Working directory: /work",
		"STDOUT: OK",
		"STDERR: \n",
		"Return Code: 0",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRun_WriteToLaunchError(t *testing.T) {
	run := NewRun(testArgv, "/work", time.Now(), nil, errors.New("boom"))

	var b strings.Builder
	if _, err := run.WriteTo(&b); err != nil {
		t.Fatal(err)
	}
	text := b.String()
	if !strings.Contains(text, "Error: boom") {
		t.Errorf("output missing Error line:\n%s", text)
	}
	if strings.Contains(text, "Return Code:") {
		t.Errorf("output has Return Code on launch failure:\n%s", text)
	}
}

func TestDiskStore_RoundTrip(t *testing.T) {
	s := NewDiskStore(t.TempDir())
	run := NewRun(testArgv, "/work", time.Now(), &runner.Result{RunID: "r1", Stdout: []byte("OK")}, nil)
	if err := s.Save(run); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("r1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Stdout != "OK" || got.WorkingDirectory != "/work" || len(got.Argv) != len(testArgv) {
		t.Errorf("loaded run = %+v", got)
	}
}

func TestDiskStore_LazyTempDir(t *testing.T) {
	s := NewDiskStore("")
	run := NewRun(testArgv, "", time.Now(), &runner.Result{RunID: "r1"}, nil)
	if err := s.Save(run); err != nil {
		t.Fatalf("Save: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(s.dir) })

	if _, err := os.Stat(filepath.Join(s.dir, "r1.json")); err != nil {
		t.Errorf("run file not written: %v", err)
	}
}

func TestDiskStore_NotFound(t *testing.T) {
	s := NewDiskStore(t.TempDir())
	_, err := s.Load("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDiskStore_PathTraversal(t *testing.T) {
	root := t.TempDir()
	s := NewDiskStore(filepath.Join(root, "runs"))
	run := NewRun(testArgv, "", time.Now(), &runner.Result{RunID: "../escape"}, nil)
	if err := s.Save(run); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.json")); err == nil {
		t.Error("run file written outside the store directory")
	}
}

// countingStore counts calls to the backing store.
type countingStore struct {
	runs  map[string]*Run
	loads int
}

func (c *countingStore) Save(run *Run) error {
	c.runs[run.ID] = run
	return nil
}

func (c *countingStore) Load(runID string) (*Run, error) {
	c.loads++
	run, ok := c.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return run, nil
}

func TestLRUStore_HitAvoidsBackingStore(t *testing.T) {
	back := &countingStore{runs: map[string]*Run{}}
	s := NewLRUStore(2, back)

	if err := s.Save(&Run{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load("a"); err != nil {
		t.Fatal(err)
	}
	if back.loads != 0 {
		t.Errorf("backing loads = %d, want 0", back.loads)
	}
}

func TestLRUStore_EvictsOldest(t *testing.T) {
	back := &countingStore{runs: map[string]*Run{}}
	s := NewLRUStore(2, back)

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Save(&Run{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	// "a" was evicted and must come from the backing store.
	if _, err := s.Load("a"); err != nil {
		t.Fatal(err)
	}
	if back.loads != 1 {
		t.Errorf("backing loads = %d, want 1", back.loads)
	}
	// Promoting "a" evicted "b"; "c" is still cached.
	if _, err := s.Load("c"); err != nil {
		t.Fatal(err)
	}
	if back.loads != 1 {
		t.Errorf("backing loads = %d, want 1", back.loads)
	}
}

func TestLRUStore_MissPropagatesError(t *testing.T) {
	s := NewLRUStore(1, &countingStore{runs: map[string]*Run{}})
	if _, err := s.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
