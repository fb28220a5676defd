// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/store"
)

// migrateConfig holds flags for the migrate subcommand.
type migrateConfig struct {
	down  bool
	force int
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	mcfg := &migrateConfig{force: -1}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database schema migrations",
		Long: `Apply pending schema migrations against the PostgreSQL database.
With --down, roll every migration back instead. With --force, record a
version without running migrations (dirty-state recovery only).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadStorage(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runMigrate(cmd, cfg, mcfg)
		},
	}

	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().BoolVar(&mcfg.down, "down", false, "roll back all migrations (destructive)")
	cmd.Flags().IntVar(&mcfg.force, "force", -1, "force schema version without migrating")

	return cmd
}

func runMigrate(cmd *cobra.Command, cfg *config.Config, mcfg *migrateConfig) error {
	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrln("warning:", closeErr)
		}
	}()

	switch {
	case mcfg.force >= 0:
		if err := migrator.Force(mcfg.force); err != nil {
			return err
		}
		cmd.Printf("Schema version forced to %d\n", mcfg.force)
	case mcfg.down:
		if err := migrator.Down(); err != nil {
			return err
		}
		cmd.Println("All migrations rolled back")
	default:
		if err := migrator.Up(); err != nil {
			return err
		}
		cmd.Println("Migrations applied")
	}
	return nil
}
