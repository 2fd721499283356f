package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/go-todo-backend/internal/config"
	"github.com/mlevkov/go-todo-backend/internal/storage"
)

func newTestGateway(t *testing.T) *storage.Gateway {
	t.Helper()

	gateway, err := storage.Open(zerolog.Nop(), config.DatabaseConfig{
		URL:         filepath.Join(t.TempDir(), "test.db"),
		PingTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = gateway.Close() })

	require.NoError(t, gateway.Init(context.Background()))
	return gateway
}

// insertTestUser seeds a user row directly; todos and conversations
// reference users, and the foreign keys pragma is on.
func insertTestUser(t *testing.T, gateway *storage.Gateway, email string) string {
	t.Helper()

	userUUID, err := uuid.NewV7()
	require.NoError(t, err)
	userID := userUUID.String()

	now := time.Now().UTC()
	_, err = gateway.Querier().ExecContext(context.Background(), `
INSERT INTO users (id, email, password_hash, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, email, "test-hash", true, now, now)
	require.NoError(t, err)
	return userID
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
