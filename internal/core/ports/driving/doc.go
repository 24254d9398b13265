// Package driving holds the use-case interfaces the CLI, the MCP server and
// the chat UI call into: ingest, search, answer, datasets and settings.
// internal/core/services implements every one of them.
package driving
