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

	"tender-marketplace/db"
	"tender-marketplace/db/migrations"
	"tender-marketplace/internal/config"
	"tender-marketplace/internal/handlers"
	"tender-marketplace/internal/logger"
	"tender-marketplace/internal/metrics"
	"tender-marketplace/internal/service"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version подставляется при сборке через -ldflags "-X main.version=..."
var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:           "tender-server",
		Short:         "Tender marketplace API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tender-server",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tender-server version %s\n", version)
		},
	}
)

type migrateFunc func(ctx context.Context, conn *sqlx.DB, log *zap.Logger) error

func migrateCommand(use, short string, fn migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), fn)
		},
	}
}

func init() {
	migrateCmd.AddCommand(
		migrateCommand("up", "Apply all pending migrations", func(ctx context.Context, conn *sqlx.DB, log *zap.Logger) error {
			return migrations.Up(ctx, conn.DB, log)
		}),
		migrateCommand("down", "Roll back the last migration", func(ctx context.Context, conn *sqlx.DB, log *zap.Logger) error {
			return migrations.Down(ctx, conn.DB, log)
		}),
		migrateCommand("status", "Show migration status", func(ctx context.Context, conn *sqlx.DB, log *zap.Logger) error {
			return migrations.Status(ctx, conn.DB, log)
		}),
	)
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withDatabase поднимает конфиг, логгер и пул соединений для одноразовой команды
func withDatabase(ctx context.Context, fn migrateFunc) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	conn, err := db.Connect(ctx, cfg.Postgres.DSN(), poolOptions(cfg.Postgres))
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, conn, log)
}

func poolOptions(pg config.Postgres) db.PoolOptions {
	return db.PoolOptions{
		MaxOpenConns:    pg.MaxOpenConns,
		MaxIdleConns:    pg.MaxIdleConns,
		ConnMaxLifetime: pg.ConnMaxLifetime,
	}
}

func quorumCounting(mode string) service.QuorumCounting {
	if mode == config.QuorumCountApproved {
		return service.CountApprovedOnly
	}
	return service.CountAllDecisions
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	conn, err := db.Connect(ctx, cfg.Postgres.DSN(), poolOptions(cfg.Postgres))
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.Server.MigrateOnStart {
		if err := migrations.Up(ctx, conn.DB, log); err != nil {
			return err
		}
	}

	opts := []service.Option{service.WithQuorum(cfg.Quorum.Cap, quorumCounting(cfg.Quorum.CountMode))}
	var instr handlers.Instrumenter
	if cfg.Metrics.Enabled {
		m := metrics.New(cfg.Metrics.Namespace)
		opts = append(opts, service.WithRecorder(m))
		instr = m
	}

	svc := service.New(db.NewStorage(conn), log, opts...)
	h := handlers.NewHandler(svc, log)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handlers.NewRouter(h, instr, cfg.Server.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("address", cfg.Server.Address),
			zap.String("version", version),
			zap.Int("quorum_cap", cfg.Quorum.Cap),
			zap.String("quorum_count_mode", cfg.Quorum.CountMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
