package main

import (
	wellmcp "github.com/hyperengineering/wellspring/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for assistant integration",
	Long: `Start a Model Context Protocol (MCP) server over stdio.

This lets an assistant record check-ins, read scores and insights, and
give feedback on tips.

Example client configuration:

  {
    "mcpServers": {
      "wellspring": {
        "command": "wellspring",
        "args": ["mcp"],
        "env": {
          "WELLSPRING_PROFILE": "default",
          "WELLSPRING_TZ": "Europe/Berlin"
        }
      }
    }
  }

Environment variables:
  WELLSPRING_PROFILE    Profile to use (default: default)
  WELLSPRING_DB_PATH    Explicit database path (overrides the profile path)
  WELLSPRING_HOME       Profile root directory (default: ~/.wellspring)
  WELLSPRING_TZ         IANA time zone for calendar days
  WELLSPRING_DEBUG      Enable debug logging to stderr
  WELLSPRING_DEBUG_LOG  Write debug logs to this file instead`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// The client lives for the server lifetime.
	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	return wellmcp.NewServer(client).Run()
}
