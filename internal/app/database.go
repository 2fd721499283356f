package app

import (
	"context"

	"github.com/mlevkov/go-todo-backend/internal/config"
	"github.com/mlevkov/go-todo-backend/internal/storage"
)

var globalGateway *storage.Gateway

func MustOpenStorage() {
	cfg := config.Global().Database

	gateway, err := storage.Open(globalLogger, cfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to open storage")
		panic(err)
	}

	err = gateway.Init(context.Background())
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to initialize schema")
		panic(err)
	}

	globalGateway = gateway
}

func CloseStorage() {
	err := globalGateway.Close()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to close storage")
		return
	}
	globalLogger.Info().Msg("closed storage")
}
