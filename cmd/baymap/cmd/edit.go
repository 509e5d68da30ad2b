package cmd

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	natsadapter "baymap/internal/adapters/nats"
	"baymap/internal/bay"
	"baymap/internal/config"
	"baymap/internal/geom"
	"baymap/internal/logging"
	"baymap/internal/metrics"
	"baymap/internal/tui"
)

var editFlags struct {
	basemap string
	site    string
	theme   string
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the bay editor",
	Long: `Open the terminal bay editor. The mouse draws and drags rectangles;
press h for the key bindings. Logs go to log.file because the editor owns
the terminal.`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
	addEditFlags(editCmd)
}

func addEditFlags(c *cobra.Command) {
	c.Flags().StringVar(&editFlags.basemap, "basemap", "", "reference map file (.geojson, .kml, .csv, .wkt)")
	c.Flags().StringVar(&editFlags.site, "site", "", "site id for new bays when none is loaded")
	c.Flags().StringVar(&editFlags.theme, "theme", "", "map theme: dark, light or contrast")
}

// applyEditFlags overrides config values with flags given on the command line.
func applyEditFlags(c *cobra.Command, cfg *config.Config) error {
	if c.Flags().Changed("basemap") {
		cfg.Editor.Basemap = editFlags.basemap
	}
	if c.Flags().Changed("site") {
		cfg.Editor.SiteID = editFlags.site
	}
	if c.Flags().Changed("theme") {
		cfg.Editor.Theme = editFlags.theme
	}
	return cfg.Validate()
}

func runEdit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyEditFlags(cmd, cfg); err != nil {
		return err
	}

	closeLog, err := logging.SetupFile(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A remote store publishes from the server; publishing here would
	// announce every change twice.
	be, err := openBackend(ctx, cfg, cfg.Store.Driver != config.DriverRemote)
	if err != nil {
		return err
	}
	defer be.Close()

	var basemap geom.Data
	if cfg.Editor.Basemap != "" {
		basemap, err = geom.Load(cfg.Editor.Basemap)
		if err != nil {
			return fmt.Errorf("basemap: %w", err)
		}
	}

	// Live reload when other operators save
	var events <-chan bay.Event
	if cfg.NATS.URL != "" {
		sub, err := natsadapter.Subscribe(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			slog.Warn("nats subscribe failed", "error", err)
		} else {
			defer sub.Close()
			events = sub.Events()
		}
	}

	if cfg.Metrics.Addr != "" {
		app, errc := metrics.Listen(cfg.Metrics.Addr)
		defer func() { _ = app.Shutdown() }()
		go func() {
			if err := <-errc; err != nil {
				slog.Warn("metrics listener stopped", "addr", cfg.Metrics.Addr, "error", err)
			}
		}()
	}

	slog.Info("editor_start", "store", cfg.Store.Driver, "site_id", cfg.Editor.SiteID, "basemap", cfg.Editor.Basemap)

	m := tui.New(tui.Options{
		Service:        bay.NewService(be.store, bay.WithDefaultSite(cfg.Editor.SiteID)),
		Center:         [2]float64{cfg.Editor.CenterLon, cfg.Editor.CenterLat},
		MetersPerPixel: cfg.Editor.MetersPerPixel,
		Snap:           cfg.Editor.Snap,
		HandleRadius:   cfg.Editor.HandleRadius,
		Theme:          cfg.Editor.Theme,
		Basemap:        basemap,
		BasemapName:    cfg.Editor.Basemap,
		Events:         events,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithReportFocus()).Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}
