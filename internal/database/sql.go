package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gogotex/todo-service/internal/config"
	"github.com/gogotex/todo-service/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// NormalizeURL maps DATABASE_URL onto a dialect and a DSN the matching gorm
// driver accepts. postgres://, postgresql:// and postgresql+<driver>:// all
// become postgres://. Postgres connections always use TLS: an sslmode in the
// URL is kept only if it is require, verify-ca or verify-full, anything else
// is replaced by sslMode ("require" when empty).
// sqlite://<path> opens the file at <path>.
func NormalizeURL(raw, sslMode string) (Dialect, string, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return "", "", fmt.Errorf("database url %q has no scheme", redact(raw))
	}
	base, _, _ := strings.Cut(strings.ToLower(scheme), "+")

	switch base {
	case "postgres", "postgresql":
		u, err := url.Parse("postgres://" + rest)
		if err != nil {
			return "", "", fmt.Errorf("parse database url: %w", err)
		}
		if sslMode == "" {
			sslMode = "require"
		}
		if !config.SecureSSLMode(sslMode) {
			return "", "", fmt.Errorf("sslmode %q does not enforce TLS", sslMode)
		}
		q := u.Query()
		if !config.SecureSSLMode(q.Get("sslmode")) {
			q.Set("sslmode", sslMode)
		}
		u.RawQuery = q.Encode()
		return DialectPostgres, u.String(), nil
	case "sqlite", "sqlite3":
		if rest == "" {
			return "", "", fmt.Errorf("sqlite url needs a path")
		}
		return DialectSQLite, rest, nil
	}
	return "", "", fmt.Errorf("unsupported database scheme %q", scheme)
}

// redact drops credentials so URLs can be logged.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

// Open connects to the relational store described by cfg and verifies the
// connection with a ping. Pooled connections are recycled after
// cfg.PoolRecycle, both by age and by idleness.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialect, dsn, err := NormalizeURL(cfg.URL, cfg.SSLMode)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	case DialectSQLite:
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(logger.Printer{Level: logger.LevelWarn}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	if cfg.PoolRecycle > 0 {
		sqlDB.SetConnMaxLifetime(cfg.PoolRecycle)
		sqlDB.SetConnMaxIdleTime(cfg.PoolRecycle)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if dialect == DialectSQLite {
		// one writer at a time; SQLite reports SQLITE_BUSY otherwise
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%s ping: %w", dialect, err)
	}
	return db, nil
}

// OpenWithRetry calls Open up to cfg.ConnectAttempts times, doubling the
// wait between attempts, to tolerate the database starting after us.
func OpenWithRetry(ctx context.Context, cfg config.DatabaseConfig, backoff time.Duration) (*gorm.DB, error) {
	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := Open(ctx, cfg)
		if err == nil {
			return db, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to %s: %v", attempt, attempts, redact(cfg.URL), err)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("database unavailable after %d attempts: %w", attempts, lastErr)
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping backs the /ready check.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
