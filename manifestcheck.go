// Package manifestcheck runs an external packaging validator against an
// application manifest and reports what it printed.
package manifestcheck

// Version is the manifestcheck release, reported by the CLI and the MCP server.
const Version = "v0.1.0"
