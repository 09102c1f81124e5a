// ABOUTME: MCP server setup for the focus observation store.
// ABOUTME: Wraps the MCP server with a storage Repository and analysis settings.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/focus/internal/analysis"
	"github.com/harperreed/focus/internal/dataset"
	"github.com/harperreed/focus/internal/models"
	"github.com/harperreed/focus/internal/storage"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	opts      analysis.Options
}

// NewServer creates a new MCP server with the given storage. opts is used
// by the analyze tool.
func NewServer(repo storage.Repository, opts analysis.Options) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("mcp server: nil repository")
	}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "focus",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		opts:      opts,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// loadDataset reads stored observations on or after since (all when nil).
func (s *Server) loadDataset(since *time.Time) (*dataset.Dataset, error) {
	obs, err := s.repo.ListObservations(since, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	return dataset.New(obs)
}

// parseDay parses an optional YYYY-MM-DD argument.
func parseDay(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	day, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%s: expected YYYY-MM-DD, got %q", field, value)
	}
	return &day, nil
}
