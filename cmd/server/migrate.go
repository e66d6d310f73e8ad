package main

import (
	"blogapi/internal/config"
	"blogapi/internal/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := cfg.NewLogger()

		conn, err := db.Open(cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if sqlDB, err := conn.DB(); err == nil {
				sqlDB.Close()
			}
		}()

		if err := db.Migrate(conn); err != nil {
			return err
		}
		log.Info("migration complete")
		return nil
	},
}
