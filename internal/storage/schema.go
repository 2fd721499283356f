package storage

import "context"

// Schema statements are written to run unchanged on both sqlite and
// postgres. Conversations cascade to their messages; todos do not
// cascade anywhere.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS todos (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users (id),
	title       TEXT NOT NULL,
	description TEXT,
	completed   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_user_id ON todos (user_id)`,
	`CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users (id),
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations (id) ON DELETE CASCADE,
	todo_id         TEXT REFERENCES todos (id),
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON messages (conversation_id)`,
}

// Init creates the schema. It always runs at startup and is safe to
// repeat; every statement is IF NOT EXISTS.
func (g *Gateway) Init(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		_, err := g.db.ExecContext(ctx, stmt)
		if err != nil {
			g.logger.Error().
				Err(err).
				Msg("failed to apply schema statement")
			return err
		}
	}
	g.logger.Info().Msg("initialized database schema")
	return nil
}
