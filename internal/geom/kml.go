package geom

import (
	"encoding/xml"
	"errors"
	"os"
	"strconv"
	"strings"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer kmlCoords   `xml:"outerBoundaryIs>LinearRing"`
	Inner []kmlCoords `xml:"innerBoundaryIs>LinearRing"`
}

type kmlGeometry struct {
	Points   []kmlCoords  `xml:"Point"`
	Lines    []kmlCoords  `xml:"LineString"`
	Polygons []kmlPolygon `xml:"Polygon"`
}

type kmlPlacemark struct {
	kmlGeometry
	Multi *kmlGeometry `xml:"MultiGeometry"`
}

type kmlFolder struct {
	Placemarks []kmlPlacemark `xml:"Placemark"`
	Folders    []kmlFolder    `xml:"Folder"`
}

type kmlDoc struct {
	kmlFolder
	Document *kmlFolder `xml:"Document"`
}

// LoadKML reads Placemark points, line strings and polygons.
// KML coordinates are "lon,lat[,alt]"; altitude is ignored.
func LoadKML(path string) (Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	var doc kmlDoc
	if err := xml.Unmarshal(b, &doc); err != nil {
		return Data{}, err
	}
	var d Data
	addGeom := func(g kmlGeometry) {
		for _, p := range g.Points {
			for _, pt := range parseKMLCoords(p.Coordinates) {
				d.addPoint(pt)
			}
		}
		for _, l := range g.Lines {
			d.addLine(parseKMLCoords(l.Coordinates))
		}
		for _, pg := range g.Polygons {
			poly := [][][2]float64{parseKMLCoords(pg.Outer.Coordinates)}
			for _, in := range pg.Inner {
				poly = append(poly, parseKMLCoords(in.Coordinates))
			}
			d.addPolygon(poly)
		}
	}
	var walk func(f kmlFolder)
	walk = func(f kmlFolder) {
		for _, pm := range f.Placemarks {
			addGeom(pm.kmlGeometry)
			if pm.Multi != nil {
				addGeom(*pm.Multi)
			}
		}
		for _, sub := range f.Folders {
			walk(sub)
		}
	}
	walk(doc.kmlFolder)
	if doc.Document != nil {
		walk(*doc.Document)
	}
	if d.Empty() {
		return Data{}, errors.New("kml: no geometries found")
	}
	return d, nil
}

// parseKMLCoords splits whitespace-separated "lon,lat[,alt]" tuples.
func parseKMLCoords(s string) [][2]float64 {
	var out [][2]float64
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, [2]float64{lon, lat})
	}
	return out
}
