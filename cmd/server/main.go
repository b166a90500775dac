package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"medication-adherence/internal/config"
	"medication-adherence/internal/platform/logger"
	"medication-adherence/internal/platform/store"
	"medication-adherence/internal/platform/telegram"
	"medication-adherence/internal/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "adherence-api",
		Short: "Medication adherence analytics API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run PostgreSQL schema migrations",
	}

	run := func(up bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required for migrations")
			}
			if err := store.Migrate(cfg.MigrationsPath, cfg.DatabaseURL, up); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE:  run(true),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE:  run(false),
	})
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		log.Info().Str("path", cfg.SQLitePath).Msg("using sqlite store")
		lite, err := store.OpenSQLite(cfg.SQLitePath, cfg.ScanPageSize, log)
		if err != nil {
			return nil, err
		}
		return lite, nil
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return store.NewMemory(cfg.ScanPageSize, log), nil
	default:
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL, cfg.ScanPageSize, log)
		if err != nil {
			return nil, err
		}
		if cfg.MigrationsPath != "" {
			if err := store.Migrate(cfg.MigrationsPath, cfg.DatabaseURL, true); err != nil {
				log.Error().Err(err).Msg("migration up failed")
			} else {
				log.Info().Msg("migrations applied")
			}
		}
		return pg, nil
	}
}

func runServer(cfg *config.Config) error {
	log := logger.New(cfg.IsDev(), cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := openStore(ctx, cfg, log)
	cancel()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if cfg.DeepSeekAPIKey == "" {
		log.Warn().Msg("DEEPSEEK_API_KEY not set, assistant replies will report an error")
	}

	svcs := server.NewServices(cfg, st, server.Clients{
		Telegram: telegram.NewClient(cfg.TelegramBotToken),
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(svcs, cfg.RequestTimeout, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
