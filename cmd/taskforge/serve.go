// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskforge/taskforge/internal/account"
	accountpg "github.com/taskforge/taskforge/internal/account/postgres"
	"github.com/taskforge/taskforge/internal/apierror"
	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/credential"
	"github.com/taskforge/taskforge/internal/httpapi"
	"github.com/taskforge/taskforge/internal/logging"
	"github.com/taskforge/taskforge/internal/observability"
	"github.com/taskforge/taskforge/internal/store"
	"github.com/taskforge/taskforge/internal/token"
	"github.com/taskforge/taskforge/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server. Pending schema migrations are applied
before the listener opens.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("server.listen", "", "API listen address")
	cmd.Flags().String("observability.listen", "", "metrics/health listen address")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("environment", "", "environment (production or development)")
	cmd.Flags().String("log.format", "", "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logging.SetDefault(logging.Options{
		Service:     "taskforge",
		Version:     version,
		Format:      cfg.Log.Format,
		Development: cfg.Development(),
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting server",
		"listen", cfg.Server.Listen,
		"environment", cfg.Environment,
	)

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	slog.Info("connected to database")

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close() //nolint:errcheck // migration error takes precedence
		return err
	}
	if err := migrator.Close(); err != nil {
		return err
	}
	slog.Info("schema migrations applied")

	tokens, err := token.NewService([]byte(cfg.Auth.SigningSecret), cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	schemas, err := httpapi.NewSchemaRegistry()
	if err != nil {
		return err
	}

	obsServer := observability.NewServer(cfg.Observability.Listen, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrChan, err := obsServer.Start()
	if err != nil {
		return err
	}
	slog.Info("observability server started", "addr", obsServer.Addr())

	accounts := account.NewService(
		accountpg.NewAccountRepository(pool),
		credential.NewArgon2idHasher(),
		tokens,
	)

	engine := httpapi.NewRouter(httpapi.RouterConfig{
		Accounts:   accounts,
		Schemas:    schemas,
		Tokens:     tokens,
		Normalizer: apierror.NewNormalizer(logger, cfg.Development()),
		Metrics:    obsServer.Metrics(),
	})

	apiServer := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	apiErrChan := make(chan error, 1)
	go func() {
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			apiErrChan <- err
		}
	}()
	slog.Info("API server listening", "addr", cfg.Server.Listen)

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-apiErrChan:
		runErr = oops.Code("SERVER_FAILED").Wrap(err)
	case err := <-obsErrChan:
		if err != nil {
			runErr = oops.Code("OBSERVABILITY_FAILED").Wrap(err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("API server shutdown incomplete", "error", err)
	}
	if err := obsServer.Stop(shutdownCtx); err != nil {
		slog.Warn("observability server shutdown incomplete", "error", err)
	}

	if runErr != nil {
		errutil.LogError(logger, "server terminated", runErr)
		return runErr
	}

	slog.Info("server stopped")
	return nil
}
