package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/mlevkov/go-todo-backend/internal/services"
)

const serverName = "todo-assistant"

// Server exposes task management tools over MCP stdio. Tools go
// through the same TodoService as the HTTP API, so ownership filtering
// applies to every call.
type Server struct {
	logger zerolog.Logger
	todos  services.TodoService
	mcp    *mcp.Server
}

func NewServer(logger zerolog.Logger, version string, todos services.TodoService) *Server {
	s := &Server{
		logger: logger,
		todos:  todos,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Run serves MCP over stdin and stdout until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info().
		Str("server", serverName).
		Msg("serving mcp over stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
