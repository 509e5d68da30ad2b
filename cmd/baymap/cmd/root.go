package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"baymap/internal/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "baymap",
	Short: "baymap - parking bay rectangle editor",
	Long: `baymap draws, moves, resizes and rotates parking bay rectangles on a
geo-referenced map and stores them as polygons.

Examples:
  baymap                                   # Open the editor (same as "baymap edit")
  baymap edit --basemap lot.geojson        # Edit over a base map
  baymap serve                             # Serve the bay API for remote editors
  baymap migrate --seed-site "Depot" --zones North,South
  baymap bays --zone <id> --format wkt     # Print bays`,
	Version:      "0.4.0",
	SilenceUsage: true,
	RunE:         runEdit,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./baymap.yaml or ./configs/baymap.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	addEditFlags(rootCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}
