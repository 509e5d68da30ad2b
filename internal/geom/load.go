package geom

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads a base map file, picking the decoder by extension.
func Load(path string) (Data, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".geojson", ".json":
		return LoadGeo(path)
	case ".csv":
		return LoadCSV(path)
	case ".kml":
		return LoadKML(path)
	case ".wkt":
		b, err := os.ReadFile(path)
		if err != nil {
			return Data{}, err
		}
		return ParseWKTData(string(b))
	default:
		return Data{}, fmt.Errorf("unsupported file: %s", ext)
	}
}
