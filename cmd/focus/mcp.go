// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server exposing observations and analysis tools.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/focus/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and reads and writes the same
storage as the rest of the CLI. Logs go to stderr.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "focus": {
        "command": "focus",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_observation     Record or replace one day of metrics
  list_observations   List recent days
  delete_observation  Delete a day by ID or prefix
  describe            Descriptive statistics per metric
  correlate           Rank metrics by correlation with focus
  analyze             Full analysis with models and findings

AVAILABLE RESOURCES:

  focus://recent      The last 14 recorded days
  focus://summary     Span, latest day, and weekly vs overall averages`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, analysisOptions())
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		logger.Info("mcp server listening on stdio", "backend", cfg.GetBackend())
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
