// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/store"
)

// DatabaseStatus holds the health report for the database.
type DatabaseStatus struct {
	Reachable     bool   `json:"reachable"`
	SchemaVersion uint   `json:"schema_version"`
	Dirty         bool   `json:"dirty"`
	Error         string `json:"error,omitempty"`
}

// statusConfig holds flags for the status subcommand.
type statusConfig struct {
	jsonOutput bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	scfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database and schema health",
		Long:  `Report whether the database is reachable, the current schema version, and whether a failed migration left the schema dirty.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadStorage(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runStatus(cmd, cfg, scfg)
		},
	}

	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().BoolVar(&scfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *config.Config, scfg *statusConfig) error {
	status := queryDatabaseStatus(cmd.Context(), cfg.Database.URL)

	if scfg.jsonOutput {
		out, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("format status: %w", err)
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Println(formatStatusTable(status))
	return nil
}

func queryDatabaseStatus(ctx context.Context, databaseURL string) DatabaseStatus {
	var status DatabaseStatus

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer pool.Close()
	status.Reachable = true

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer func() { _ = migrator.Close() }() //nolint:errcheck // status is read-only

	version, dirty, err := migrator.Version()
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.SchemaVersion = version
	status.Dirty = dirty
	return status
}

func formatStatusTable(status DatabaseStatus) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "REACHABLE\tSCHEMA VERSION\tDIRTY\tERROR\n")
	errText := "-"
	if status.Error != "" {
		errText = status.Error
	}
	fmt.Fprintf(w, "%t\t%d\t%t\t%s\n", status.Reachable, status.SchemaVersion, status.Dirty, errText)

	_ = w.Flush() //nolint:errcheck // strings.Builder does not fail
	return sb.String()
}
