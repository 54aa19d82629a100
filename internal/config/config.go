// Package config loads and validates manifestcheck settings from the
// optional .manifestcheck YAML file and MANIFESTCHECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the current directory.
const FileName = ".manifestcheck"

// Environment variables that override file values.
const (
	EnvExecutable       = "MANIFESTCHECK_EXECUTABLE"
	EnvManifest         = "MANIFESTCHECK_MANIFEST"
	EnvWorkingDirectory = "MANIFESTCHECK_WORKING_DIRECTORY"
	EnvTimeout          = "MANIFESTCHECK_TIMEOUT"
	EnvMaxOutput        = "MANIFESTCHECK_MAX_OUTPUT"
)

// Config holds the merged manifestcheck configuration.
// Executable, Manifest and WorkingDirectory are required; see Validate.
type Config struct {
	Executable       string `yaml:"executable"`        // path to the validation executable
	Manifest         string `yaml:"manifest"`          // manifest to validate, relative to WorkingDirectory
	WorkingDirectory string `yaml:"working_directory"` // cwd of the validator process
	RawTimeout       string `yaml:"timeout"`           // e.g. "5m"; empty means no timeout
	RawMaxOutput     int    `yaml:"max_output"`        // bytes; zero means unbounded
}

// Timeout returns the configured timeout, or zero (no timeout) when unset
// or unparsable.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// MaxOutputBytes returns the configured per-stream output cap, or zero.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return 0
}

// MissingError lists required options that have no value.
type MissingError struct {
	Options []string
}

func (e *MissingError) Error() string {
	return "missing required option(s): " + strings.Join(e.Options, ", ")
}

// Validate reports every required option that is empty.
func (c *Config) Validate() error {
	var missing []string
	if c.Executable == "" {
		missing = append(missing, "executable")
	}
	if c.Manifest == "" {
		missing = append(missing, "manifest")
	}
	if c.WorkingDirectory == "" {
		missing = append(missing, "working_directory")
	}
	if len(missing) > 0 {
		return &MissingError{Options: missing}
	}
	if c.RawTimeout != "" {
		if _, err := time.ParseDuration(c.RawTimeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.RawTimeout, err)
		}
	}
	return nil
}

// Load reads the config file at path, then applies environment overrides.
// An empty path means FileName in dir. A missing default file is not an
// error; a missing explicit path is.
func Load(dir, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// No file; environment and flags may still supply everything.
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from the environment. Unset or empty variables leave
// the file value in place.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvExecutable); ok && v != "" {
		c.Executable = v
	}
	if v, ok := lookup(EnvManifest); ok && v != "" {
		c.Manifest = v
	}
	if v, ok := lookup(EnvWorkingDirectory); ok && v != "" {
		c.WorkingDirectory = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		c.RawTimeout = v
	}
	if v, ok := lookup(EnvMaxOutput); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMaxOutput, err)
		}
		c.RawMaxOutput = n
	}
	return nil
}

// Override copies every non-empty field of o onto c. Used to layer
// command-line flags and per-call parameters over the loaded config.
func (c *Config) Override(o Config) {
	if o.Executable != "" {
		c.Executable = o.Executable
	}
	if o.Manifest != "" {
		c.Manifest = o.Manifest
	}
	if o.WorkingDirectory != "" {
		c.WorkingDirectory = o.WorkingDirectory
	}
	if o.RawTimeout != "" {
		c.RawTimeout = o.RawTimeout
	}
	if o.RawMaxOutput > 0 {
		c.RawMaxOutput = o.RawMaxOutput
	}
}
