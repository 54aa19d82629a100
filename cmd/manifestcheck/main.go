// Command manifestcheck validates an application package manifest with an
// external packaging validator and prints what the validator reported.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/deixis/manifestcheck"
	"github.com/deixis/manifestcheck/internal/config"
	manifestmcp "github.com/deixis/manifestcheck/internal/mcp"
	"github.com/deixis/manifestcheck/internal/report"
	"github.com/deixis/manifestcheck/internal/runner"
	"github.com/deixis/manifestcheck/internal/validator"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("manifestcheck: ")

	// Bare flags, or no arguments at all, mean validate.
	cmd := "validate"
	args := os.Args[1:]
	if len(args) > 0 && (!strings.HasPrefix(args[0], "-") || args[0] == "-h" || args[0] == "--help") {
		cmd = args[0]
		args = args[1:]
	}

	var (
		code int
		err  error
	)
	switch cmd {
	case "validate":
		code, err = validateMain(args, os.Stdout)
	case "mcp":
		err = mcpMain(args)
	case "version":
		fmt.Println(manifestcheck.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "manifestcheck: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: manifestcheck [<command>] [flags]

Commands:
  validate    Validate the manifest and print the validator's output (default)
  mcp         Start the MCP server
  version     Print the version
  help        Show this help

Settings come from .manifestcheck in the current directory, then
MANIFESTCHECK_* environment variables, then flags.

Use "manifestcheck <command> -h" for command-specific flags.`)
}

// --- shared ---

// settingFlags registers the flags shared by validate and mcp.
func settingFlags(fs *flag.FlagSet) (configPath *string, over *config.Config) {
	over = &config.Config{}
	configPath = fs.String("config", "", "path to config file (default ./"+config.FileName+")")
	fs.StringVar(&over.Executable, "exe", "", "path to the validation executable")
	fs.StringVar(&over.Manifest, "manifest", "", "manifest to validate, relative to -dir")
	fs.StringVar(&over.WorkingDirectory, "dir", "", "working directory of the validator")
	fs.StringVar(&over.RawTimeout, "timeout", "", "abort the validator after this long (e.g. 5m); default none")
	return configPath, over
}

// loadConfig merges file, environment and flag settings.
func loadConfig(configPath string, over *config.Config) (*config.Config, error) {
	workspace, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining working directory: %w", err)
	}
	cfg, err := config.Load(workspace, configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.Override(*over)
	return cfg, nil
}

// --- validate ---

// validateMain runs one validation and returns the process exit code.
// Without -strict the code is always 0: the validator's outcome is
// reported as output, never as this program's status.
func validateMain(args []string, stdout io.Writer) (int, error) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath, over := settingFlags(fs)
	strict := fs.Bool("strict", false, "exit with the validator's return code (1 if it cannot be started)")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*configPath, over)
	if err != nil {
		return 0, err
	}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Report has already printed any launch failure.
	res, runErr := validator.New(cfg).Report(ctx, stdout)
	return exitCode(*strict, res, runErr), nil
}

func exitCode(strict bool, res *runner.Result, runErr error) int {
	if !strict {
		return 0
	}
	if runErr != nil {
		return 1
	}
	return res.ExitCode
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	configPath, over := settingFlags(fs)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	runsDir := fs.String("runs", "", "directory for stored runs (default: a temp directory)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(manifestmcp.Instructions)
		return nil
	}

	// The config may be partial; tool calls supply what is missing.
	cfg, err := loadConfig(*configPath, over)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := report.NewLRUStore(16, report.NewDiskStore(*runsDir))
	server := manifestmcp.NewServer(cfg, store)

	if *httpAddr != "" {
		return serveHTTP(ctx, server, *httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
