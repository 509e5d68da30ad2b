package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Geometry is a GeoJSON Polygon as stored for a bay.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates []Ring `json:"coordinates"`
}

// PolygonGeometry wraps a ring as a single-ring GeoJSON Polygon.
func PolygonGeometry(r Ring) Geometry {
	return Geometry{Type: "Polygon", Coordinates: []Ring{r.Closed()}}
}

// Outer returns the outer ring of a Polygon geometry.
func (g Geometry) Outer() (Ring, error) {
	if g.Type != "Polygon" {
		return nil, fmt.Errorf("geojson: expected Polygon, got %q", g.Type)
	}
	if len(g.Coordinates) == 0 || len(g.Coordinates[0]) < 4 {
		return nil, errors.New("geojson: polygon needs at least 4 positions")
	}
	return g.Coordinates[0].Closed(), nil
}

// LoadGeo reads a GeoJSON file and returns Data (points, lines, polygons).
func LoadGeo(path string) (Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return ParseGeoJSON(b)
}

// ParseGeoJSON walks a Feature, FeatureCollection or bare geometry.
func ParseGeoJSON(b []byte) (Data, error) {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return Data{}, err
	}
	var d Data
	var walk func(g map[string]any)
	walk = func(g map[string]any) {
		gt, _ := g["type"].(string)
		c := g["coordinates"]
		switch gt {
		case "Point":
			if pt, ok := parsePosition(c); ok {
				d.addPoint(pt)
			}
		case "MultiPoint":
			for _, p := range parsePositions(c) {
				d.addPoint(p)
			}
		case "LineString":
			d.addLine(parsePositions(c))
		case "MultiLineString":
			for _, ls := range parseNested(c) {
				d.addLine(ls)
			}
		case "Polygon":
			d.addPolygon(parseNested(c))
		case "MultiPolygon":
			if arr, ok := c.([]any); ok {
				for _, el := range arr {
					d.addPolygon(parseNested(el))
				}
			}
		case "GeometryCollection":
			if gs, ok := g["geometries"].([]any); ok {
				for _, el := range gs {
					if gm, ok := el.(map[string]any); ok {
						walk(gm)
					}
				}
			}
		}
	}
	t, _ := raw["type"].(string)
	switch t {
	case "Feature":
		if g, ok := raw["geometry"].(map[string]any); ok {
			walk(g)
		}
	case "FeatureCollection":
		fs, _ := raw["features"].([]any)
		for _, f := range fs {
			if fm, ok := f.(map[string]any); ok {
				if g, ok := fm["geometry"].(map[string]any); ok {
					walk(g)
				}
			}
		}
	default:
		if len(raw) > 0 {
			walk(raw)
		}
	}
	if d.Empty() {
		return Data{}, errors.New("no geometries found")
	}
	return d, nil
}

func parsePosition(v any) ([2]float64, bool) {
	if a, ok := v.([]any); ok && len(a) >= 2 {
		lon, lok := a[0].(float64)
		lat, aok := a[1].(float64)
		if lok && aok {
			return [2]float64{lon, lat}, true
		}
	}
	return [2]float64{}, false
}

func parsePositions(v any) [][2]float64 {
	arr, _ := v.([]any)
	var pts [][2]float64
	for _, el := range arr {
		if pt, ok := parsePosition(el); ok {
			pts = append(pts, pt)
		}
	}
	return pts
}

func parseNested(v any) [][][2]float64 {
	arr, _ := v.([]any)
	var out [][][2]float64
	for _, el := range arr {
		if ls := parsePositions(el); len(ls) > 0 {
			out = append(out, ls)
		}
	}
	return out
}
