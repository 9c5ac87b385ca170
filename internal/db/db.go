package db

import (
	"cerebmod/internal/models"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var ErrNoDatabaseURL = errors.New("DATABASE_URL is not set")

// Models is the single schema registry. Order does not matter, AutoMigrate
// sorts by foreign key dependencies.
var Models = []any{
	&models.Post{},
	&models.ModerationCase{},
	&models.SubredditInsight{},
	&models.ModReply{},
}

// Init opens the pool and ensures the schema exists. Any failure is returned
// to the caller, there is no retry.
func Init(ctx context.Context, dburl string) (*Provider, error) {
	gdb, err := Open(dburl)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, gdb); err != nil {
		if sqlDB, cerr := gdb.DB(); cerr == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	return NewProvider(gdb), nil
}

// Open accepts PostgreSQL URLs ("postgres://", "postgresql://"), libpq
// key=value DSNs, and "sqlite://path" for local runs and tests.
func Open(dburl string) (*gorm.DB, error) {
	if dburl == "" {
		return nil, ErrNoDatabaseURL
	}

	var dial gorm.Dialector
	if strings.HasPrefix(dburl, "sqlite://") {
		path := strings.TrimPrefix(dburl, "sqlite://")
		if !strings.HasPrefix(path, ":memory:") {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("creating sqlite directory: %w", err)
			}
		}
		dial = sqlite.Open(sqliteDSN(path))
	} else {
		if _, err := pgconn.ParseConfig(dburl); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		dial = postgres.Open(dburl)
	}

	slog.Info("connecting to database", "target", Redact(dburl))

	gdb, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger:         slogGorm.New(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")
	return gdb, nil
}

// sqliteDSN turns the path of a sqlite:// URL into a driver DSN. Foreign
// keys are off by default in sqlite, so they are always switched on. An
// in-memory database is opened in shared-cache mode so every pooled
// connection sees the same schema.
func sqliteDSN(path string) string {
	if rest, ok := strings.CutPrefix(path, ":memory:"); ok {
		path = "file::memory:" + rest
		if !strings.Contains(path, "cache=") {
			path = addQueryParam(path, "cache=shared")
		}
	}
	if !strings.Contains(path, "_foreign_keys=") && !strings.Contains(path, "_fk=") {
		path = addQueryParam(path, "_foreign_keys=on")
	}
	return path
}

func addQueryParam(dsn, param string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}

// Migrate creates any missing tables, columns and constraints. Running it
// against an up to date schema is a no-op.
func Migrate(ctx context.Context, gdb *gorm.DB) error {
	if err := gdb.WithContext(ctx).AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("database tables created or verified", "tables", len(Models))
	return nil
}

// Redact returns a loggable description of a connection string with the
// credentials removed.
func Redact(dburl string) string {
	if strings.HasPrefix(dburl, "sqlite://") {
		return dburl
	}
	cfg, err := pgconn.ParseConfig(dburl)
	if err != nil {
		return "postgres (unparseable)"
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}
	return u.String()
}
