package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagegen/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can generate
product pages.

The server exposes the generate_pages and list_runs tools, and the loaded
templates and past run reports as resources.

By default, the server communicates over stdio using JSON-RPC. Use --port
to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for desktop assistants)
  pagegen mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  pagegen mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "pagegen": {
        "command": "/path/to/pagegen",
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
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if settingsService == nil || newPipeline == nil {
		return errors.New("pipeline not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	ctx := commandContext(cmd)
	pipeline, release, err := newPipeline(ctx, *settings)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer release()

	ports := &mcp.Ports{
		Pipeline:  pipeline,
		Templates: templateService,
		History:   historyService,
	}

	server, err := mcp.NewServer(ports, version)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
