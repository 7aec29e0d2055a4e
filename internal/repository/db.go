package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver          string // DriverSQLite (default) or DriverPostgres
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DB is a database/sql handle plus the dialect it speaks. Postgres
// connections come from a pgx pool; SQLite uses the pure-Go driver.
type DB struct {
	sql     *sql.DB
	pool    *pgxpool.Pool
	dialect string
	logger  *slog.Logger
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS invoices (
		id            TEXT PRIMARY KEY,
		business_name TEXT NOT NULL DEFAULT '',
		client_name   TEXT NOT NULL DEFAULT '',
		total         DOUBLE PRECISION NOT NULL DEFAULT 0,
		data          TEXT NOT NULL,
		saved_at      BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS invoices_saved_at_idx ON invoices (saved_at)`,
	`CREATE TABLE IF NOT EXISTS documentation (
		topic      TEXT PRIMARY KEY,
		content    TEXT NOT NULL,
		keywords   TEXT NOT NULL DEFAULT '[]',
		created_at BIGINT NOT NULL
	)`,
}

// Open connects, verifies the connection and creates missing tables.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}
	logger.Info("connecting to database", "driver", cfg.Driver)

	var (
		db  *DB
		err error
	)
	switch cfg.Driver {
	case DriverPostgres:
		db, err = openPostgres(ctx, cfg, logger)
	case DriverSQLite:
		db, err = openSQLite(ctx, cfg, logger)
	default:
		err = fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	if err := db.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("successfully connected to database")
	return db, nil
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "invoicees"

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return &DB{sql: stdlib.OpenDBFromPool(pool), pool: pool, dialect: DriverPostgres, logger: logger}, nil
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// each connection to ":memory:" opens a separate database
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &DB{sql: sqlDB, dialect: DriverSQLite, logger: logger}, nil
}

func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	db.logger.Debug("db.migrate.ok", "statements", len(schema))
	return nil
}

// Dialect reports DriverSQLite or DriverPostgres.
func (db *DB) Dialect() string {
	return db.dialect
}

// rebind rewrites "?" placeholders as "$1", "$2", ... for Postgres.
func (db *DB) rebind(query string) string {
	if db.dialect != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database connections gracefully
func (db *DB) Close() {
	if db == nil {
		return
	}
	db.logger.Info("closing database connections")
	if err := db.sql.Close(); err != nil {
		db.logger.Error("failed to close database", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
	db.logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	db.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if db.pool != nil {
		if err := db.pool.Ping(ctx); err != nil {
			return err
		}
	} else if err := db.sql.PingContext(ctx); err != nil {
		return err
	}
	db.logger.Debug("database ping successful")
	return nil
}
