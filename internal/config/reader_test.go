package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvReader_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.HTTP.AllowedOrigins)

	assert.Equal(t, "./todo_app.db", cfg.Database.URL)
	assert.Equal(t, 15, cfg.Database.MaxOpenConns)

	assert.Equal(t, "todo-api", cfg.JWT.Issuer)
	assert.Equal(t, "test-secret", cfg.JWT.SigningKey)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTokenTTL)

	assert.Empty(t, cfg.Chat.APIKey)
	assert.Equal(t, "gemini-pro", cfg.Chat.Model)
}

func TestEnvReader_RequiresJWTSecret(t *testing.T) {
	// t.Setenv registers the restore; the unset below is what the
	// reader actually sees.
	t.Setenv("JWT_SECRET", "placeholder")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := NewEnvReader().Read()
	assert.Error(t, err)
}

func TestEnvReader_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", EnvProd)
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/todos")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "15m")
	t.Setenv("ALLOWED_ORIGINS", "https://todo.example.com")

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, "postgres://localhost:5432/todos", cfg.Database.URL)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, []string{"https://todo.example.com"}, cfg.HTTP.AllowedOrigins)
}

func TestGlobalConfig(t *testing.T) {
	cfg := &Config{Env: EnvDev}
	SetGlobal(cfg)
	assert.Same(t, cfg, Global())
}
