package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"baymap/internal/api"
	"baymap/internal/bay"
	"baymap/internal/geom"
	"baymap/internal/logging"
	"baymap/internal/projection"
)

var baysFlags struct {
	zone   string
	format string
}

var baysCmd = &cobra.Command{
	Use:   "bays",
	Short: "Print the bays of a zone",
	Long: `Print stored bays as a table, as WKT polygons (one per line) or as the
JSON returned by the API.`,
	Args: cobra.NoArgs,
	RunE: runBays,
}

func init() {
	rootCmd.AddCommand(baysCmd)
	baysCmd.Flags().StringVar(&baysFlags.zone, "zone", "", "zone id (default: all zones)")
	baysCmd.Flags().StringVarP(&baysFlags.format, "format", "f", "table", "output format: table, wkt or json")
}

func runBays(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	be, err := openBackend(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer be.Close()

	svc := bay.NewService(be.store)
	var zoneID *string
	if baysFlags.zone != "" {
		zoneID = &baysFlags.zone
	}
	bays, err := svc.Reload(ctx, zoneID)
	if err != nil {
		return err
	}
	zones, err := svc.Zones(ctx)
	if err != nil {
		return err
	}
	return writeBays(os.Stdout, bays, zones, baysFlags.format)
}

func writeBays(w io.Writer, bays []bay.Bay, zones []bay.Zone, format string) error {
	switch format {
	case "table":
		names := make(map[string]string, len(zones))
		for _, z := range zones {
			names[z.ID] = z.Name
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#243141"))).
			Headers("CODE", "ZONE", "WIDTH M", "LENGTH M", "ANGLE", "ID")
		for _, b := range bays {
			zone := "-"
			if b.ZoneID != nil {
				zone = *b.ZoneID
				if n := names[*b.ZoneID]; n != "" {
					zone = n
				}
			}
			wm, lm, angle := measure(b.Geometry)
			t.Row(b.Code, zone, wm, lm, angle, b.ID)
		}
		_, err := fmt.Fprintln(w, t.String())
		return err
	case "wkt":
		for _, b := range bays {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", b.Code, geom.FormatPolygon(b.Geometry)); err != nil {
				return err
			}
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(api.FromBays(bays))
	}
	return fmt.Errorf("unknown format %q: use table, wkt or json", format)
}

// measure reports the short side, long side and angle of a bay using a
// one metre per pixel view centred on it.
func measure(ring geom.Ring) (width, length, angle string) {
	if len(ring) == 0 {
		return "?", "?", "?"
	}
	vp := &projection.Viewport{Center: ring.Centroid(), MetersPerPixel: 1}
	r, ok := geom.RectFromRing(ring, vp)
	if !ok {
		return "?", "?", "?"
	}
	d := math.Mod(r.Angle*180/math.Pi+360, 360)
	return fmt.Sprintf("%.2f", math.Min(r.W, r.H)), fmt.Sprintf("%.2f", math.Max(r.W, r.H)), fmt.Sprintf("%.1f", d)
}
