// Package driving holds the use-case interfaces the CLI, TUI and MCP server
// call into: ingest, review, assembly, session, settings and merge drafting.
// internal/core/services implements every one of them.
package driving
