package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmerge/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so an AI assistant can review
duplicate groups and inspect destination documents.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead, for the MCP Inspector or remote access.

Examples:
  # Stdio mode (default)
  docmerge mcp serve

  # HTTP mode
  docmerge mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "docmerge": {
        "command": "/path/to/docmerge",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if reviewService == nil {
		return notConfigured("review")
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{Review: reviewService}
	if assemblyService != nil {
		ports.Assembly = assemblyService
	}
	if draftService != nil {
		ports.Draft = draftService
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
