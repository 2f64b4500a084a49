// Package migrations holds the embedded database schema.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed *.sql
var files embed.FS

// Up applies every pending migration.
func Up(db *sql.DB, log *logrus.Logger) error {
	if err := setup(log); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(db *sql.DB, log *logrus.Logger) error {
	if err := setup(log); err != nil {
		return err
	}
	if err := goose.Down(db, "."); err != nil {
		return fmt.Errorf("roll back migration: %w", err)
	}
	return nil
}

// Status logs the applied state of each migration.
func Status(db *sql.DB, log *logrus.Logger) error {
	if err := setup(log); err != nil {
		return err
	}
	return goose.Status(db, ".")
}

func setup(log *logrus.Logger) error {
	goose.SetBaseFS(files)
	goose.SetLogger(log)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	return nil
}
