package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/mlevkov/go-todo-backend/internal/config"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repository code is written against it so the same queries run inside
// and outside a unit of work.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Gateway owns the database handle and hands out scoped units of work.
type Gateway struct {
	logger zerolog.Logger
	db     *sql.DB
	driver string
}

func Open(logger zerolog.Logger, cfg config.DatabaseConfig) (*Gateway, error) {
	driver, dsn := resolveDSN(cfg.URL)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		logger.Error().
			Err(err).
			Str("driver", driver).
			Msg("failed to open database")
		return nil, err
	}

	switch driver {
	case "pgx":
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	case "sqlite":
		// The embedded store has a single writer; a second writer
		// would get SQLITE_BUSY instead of queueing.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Str("driver", driver).
			Msg("failed to ping database")
		_ = db.Close()
		return nil, err
	}
	logger.Info().
		Str("driver", driver).
		Msg("connected to database")

	return &Gateway{
		logger: logger,
		db:     db,
		driver: driver,
	}, nil
}

// resolveDSN maps a DATABASE_URL to a driver name and DSN. Postgres URLs
// go through the pgx stdlib driver; everything else is treated as an
// embedded sqlite file path.
func resolveDSN(url string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", url
	case strings.HasPrefix(url, "sqlite://"):
		url = strings.TrimPrefix(url, "sqlite://")
		fallthrough
	default:
		return "sqlite", fmt.Sprintf(
			"file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
			url)
	}
}

func (g *Gateway) Querier() Querier {
	return g.db
}

// WithinTx runs fn inside a transaction. It commits when fn returns nil
// and rolls back otherwise; the deferred rollback also fires if fn
// panics, so a connection is never left holding an open transaction.
func (g *Gateway) WithinTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		g.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback() }()

	err = fn(tx)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		g.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}
	return nil
}

func (g *Gateway) Close() error {
	g.logger.Info().Msg("closing database")
	return g.db.Close()
}

// IsUniqueViolation reports whether err is a unique-constraint failure
// from either backend.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlitelib.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
