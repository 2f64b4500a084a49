package main

import (
	"database/sql"

	"storefront/migrations"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  withDB(migrations.Up),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE:  withDB(migrations.Down),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the applied state of every migration",
	RunE:  withDB(migrations.Status),
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

func withDB(fn func(*sql.DB, *logrus.Logger) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		conn, err := connectDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeDB(conn)
		return fn(conn.DB, logger)
	}
}
