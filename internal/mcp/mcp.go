// Package mcp provides the manifestcheck MCP server, registering the
// validation tools and publishing model instructions.
package mcp

import (
	_ "embed"

	"github.com/deixis/manifestcheck"
	"github.com/deixis/manifestcheck/internal/config"
	"github.com/deixis/manifestcheck/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	config *config.Config // defaults for manifest_validate; never mutated
	store  report.Store
}

// NewServer creates an MCP server with all manifestcheck tools registered.
// cfg supplies the default executable, manifest and working directory; it
// does not need to be complete since each call may fill in the rest.
func NewServer(cfg *config.Config, store report.Store) *mcp.Server {
	h := &handler{
		config: cfg,
		store:  store,
	}

	opts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "manifestcheck", Version: manifestcheck.Version}, opts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "manifest_validate",
		Description: `Validate an application package manifest with the configured validator.

Runs "<executable> validate /m <manifest> /v" in the working directory and returns
the validator's STDOUT, STDERR and Return Code. Omitted parameters fall back to the
server configuration. Results are stored for later retrieval via manifest_inspect.`,
	}, h.validateHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "manifest_inspect",
		Description: "Show a previous manifest_validate run: command line, working directory, timing and full output.",
	}, h.inspectHandler)

	return s
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
