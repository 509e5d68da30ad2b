package geom

import (
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads a CSV with latitude/longitude columns as points, or a
// "wkt" column as geometries (one WKT value per row).
// Column detection: lat|latitude|y and lon|lng|long|longitude|x (case-insensitive).
func LoadCSV(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	recs, err := r.ReadAll()
	if err != nil {
		return Data{}, err
	}
	if len(recs) == 0 {
		return Data{}, errors.New("empty csv")
	}
	idxLat, idxLon, idxWKT := -1, -1, -1
	for i, h := range recs[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		case "wkt", "geometry", "geom":
			if idxWKT == -1 {
				idxWKT = i
			}
		}
	}
	var d Data
	switch {
	case idxWKT >= 0:
		for _, row := range recs[1:] {
			if idxWKT >= len(row) {
				continue
			}
			rd, err := ParseWKTData(row[idxWKT])
			if err != nil {
				continue
			}
			for _, p := range rd.Points {
				d.addPoint(p)
			}
			for _, ls := range rd.Lines {
				d.addLine(ls)
			}
			for _, poly := range rd.Polygons {
				d.addPolygon(poly)
			}
		}
	case idxLat >= 0 && idxLon >= 0:
		for _, row := range recs[1:] {
			if idxLon >= len(row) || idxLat >= len(row) {
				continue
			}
			lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
			lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
			if err1 != nil || err2 != nil {
				continue
			}
			d.addPoint([2]float64{lon, lat})
		}
	default:
		return Data{}, errors.New("csv: latitude/longitude columns not found")
	}
	if d.Empty() {
		return Data{}, errors.New("csv: no valid rows parsed")
	}
	return d, nil
}
