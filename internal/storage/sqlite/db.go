// Package sqlite is the default relational store. Every exported Store method
// opens its own connection and closes it before returning.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	sqlite3migrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type Store struct {
	path   string
	logger *zap.Logger
}

func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

func dsn(path string) string {
	return path + "?_foreign_keys=on"
}

func (s *Store) open(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", dsn(s.path))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	return db, nil
}

// Init applies any pending schema migrations.
func (s *Store) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Migrate(s.path, s.logger)
}

// Migrate brings the database at path up to the latest embedded schema.
// The migrate instance owns and closes its own connection.
func Migrate(path string, logger *zap.Logger) error {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return err
	}
	driver, err := sqlite3migrate.WithInstance(db, &sqlite3migrate.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migration driver: %w", err)
	}
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("migrate instance: %w", err)
	}
	defer m.Close()
	m.Log = migrationLogger{logger: logger.Sugar()}

	err = m.Up()
	switch {
	case err == nil:
		logger.Info("applied database migrations", zap.String("path", path))
	case errors.Is(err, migrate.ErrNoChange):
		logger.Debug("no new migrations to apply", zap.String("path", path))
	default:
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

type migrationLogger struct {
	logger *zap.SugaredLogger
}

func (l migrationLogger) Printf(format string, v ...any) {
	l.logger.Debugf(format, v...)
}

func (l migrationLogger) Verbose() bool {
	return false
}
