package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "baymap/internal/adapters/http"
	"baymap/internal/config"
	"baymap/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bay persistence API",
	Long: `Serve GET /v1/zones, GET/POST /v1/bays, PUT/DELETE /v1/bays/:id, health
checks and /metrics over the configured file or postgres store. Editors
with store.driver=remote talk to this server.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	if cfg.Store.Driver == config.DriverRemote {
		return errors.New("serve needs a file or postgres store, not remote")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	be, err := openBackend(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer be.Close()

	app := httpadapter.NewApp(
		time.Duration(cfg.Server.ReadTimeout)*time.Second,
		time.Duration(cfg.Server.WriteTimeout)*time.Second,
	)
	httpadapter.SetupRoutes(app, &httpadapter.Dependencies{
		Store:   be.store,
		Checks:  be.checks,
		Version: rootCmd.Version,
	})

	errc := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "store", cfg.Store.Driver)
		errc <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	}

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
