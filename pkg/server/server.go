// Package server provides the MCP server implementation for the topocoding integration.
package server

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/topomcp/pkg/config"
	"github.com/NERVsystems/topomcp/pkg/tools"
	"github.com/NERVsystems/topomcp/pkg/topocoding"
	"github.com/NERVsystems/topomcp/pkg/version"
)

// Server encapsulates the MCP server with topocoding tools.
type Server struct {
	srv      *server.MCPServer
	registry *tools.Registry
	client   *topocoding.Client
}

// NewServer creates a new topocoding MCP server with all tools registered.
func NewServer(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("initializing topocoding MCP server",
		"name", cfg.Server.Name,
		"version", version.BuildVersion,
		"api_key_set", cfg.Topocoding.APIKey != "")

	// Create MCP server with options
	srv := server.NewMCPServer(
		cfg.Server.Name,
		version.BuildVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	client := topocoding.NewClient(cfg.ClientOptions(logger))

	// Create tool registry and register all tools
	registry := tools.NewRegistry(logger, client)
	registry.RegisterTools(srv)

	return &Server{
		srv:      srv,
		registry: registry,
		client:   client,
	}, nil
}

// MCPServer exposes the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}

// Run starts the MCP server using stdin/stdout for communication.
func (s *Server) Run() error {
	return server.ServeStdio(s.srv)
}
