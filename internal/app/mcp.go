package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mlevkov/go-todo-backend/internal/mcp"
	"github.com/mlevkov/go-todo-backend/internal/services"
)

const mcpServerVersion = "1.0.0"

func MustRunMCPServer() {
	// Stdout carries the MCP protocol stream; logs must not mix into it.
	globalLogger = globalLogger.Output(os.Stderr)

	todoService := services.NewTodoService(globalLogger, globalGateway)
	server := mcp.NewServer(globalLogger, mcpServerVersion, todoService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := server.Run(ctx)
	if err != nil && ctx.Err() == nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to run mcp server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down mcp server")
}
