package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"baymap/internal/adapters/postgres"
	"baymap/internal/config"
	"baymap/internal/logging"
)

var migrateFlags struct {
	seedSite string
	zones    string
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the postgres schema",
	Long: `Create the PostGIS tables used by store.driver=postgres. Safe to run
repeatedly. With --seed-site a site and its zones are inserted and the new
site id is printed, ready for editor.site_id.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrateFlags.seedSite, "seed-site", "", "insert a site with this name")
	migrateCmd.Flags().StringVar(&migrateFlags.zones, "zones", "", "comma separated zone names for --seed-site")
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	if cfg.Store.Driver != config.DriverPostgres {
		return errors.New("migrate needs store.driver=postgres")
	}
	if migrateFlags.zones != "" && migrateFlags.seedSite == "" {
		return errors.New("--zones requires --seed-site")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}
	fmt.Println("schema ready")

	if migrateFlags.seedSite == "" {
		return nil
	}
	var zones []string
	for _, z := range strings.Split(migrateFlags.zones, ",") {
		if z = strings.TrimSpace(z); z != "" {
			zones = append(zones, z)
		}
	}
	siteID, err := postgres.Seed(ctx, db, migrateFlags.seedSite, zones)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Printf("site %q: %s (%d zones)\n", migrateFlags.seedSite, siteID, len(zones))
	return nil
}
