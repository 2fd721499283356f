package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env      string `env:"ENV" env-default:"local"`
	HTTP     HTTPConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Chat     ChatConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8000"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	// Origins allowed to call the API with credentials.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-default:"http://localhost:3000,http://localhost:3001"`
}

type DatabaseConfig struct {
	// URL selects the backend: postgres:// and postgresql:// URLs use
	// the pooled network database, anything else is an embedded
	// sqlite file path.
	URL             string        `env:"DATABASE_URL" env-default:"./todo_app.db"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" env-default:"15"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" env-default:"5m"`
	PingTimeout     time.Duration `env:"DATABASE_PING_TIMEOUT" env-default:"10s"`
}

type JWTConfig struct {
	Issuer         string        `env:"JWT_ISSUER" env-default:"todo-api"`
	SigningKey     string        `env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"30m"`
}

type ChatConfig struct {
	// APIKey is optional; without it the chat endpoint answers with
	// a degraded response instead of calling the model.
	APIKey  string        `env:"GEMINI_API_KEY" env-default:""`
	Model   string        `env:"GEMINI_MODEL" env-default:"gemini-pro"`
	BaseURL string        `env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT" env-default:"60s"`
}
