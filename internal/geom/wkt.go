package geom

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrEmptyWKT       = errors.New("empty wkt")
	ErrUnsupportedWKT = errors.New("unsupported wkt type")
)

// ParseWKTData parses POINT, MULTIPOINT, LINESTRING and POLYGON text.
func ParseWKTData(wkt string) (Data, error) {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return Data{}, ErrEmptyWKT
	}
	up := strings.ToUpper(s)
	var d Data
	switch {
	case strings.HasPrefix(up, "MULTIPOINT"), strings.HasPrefix(up, "POINT"):
		body, err := between(s, "(", ")")
		if err != nil {
			return Data{}, errors.New("wkt point: invalid")
		}
		// MULTIPOINT((1 2),(3 4)) and MULTIPOINT(1 2, 3 4) are both accepted
		body = strings.NewReplacer("(", "", ")", "").Replace(body)
		for _, p := range parseTuples(body) {
			d.addPoint(p)
		}
	case strings.HasPrefix(up, "LINESTRING"):
		body, err := between(s, "(", ")")
		if err != nil {
			return Data{}, errors.New("wkt linestring: invalid")
		}
		d.addLine(parseTuples(body))
	case strings.HasPrefix(up, "POLYGON"):
		body, err := between(s, "((", "))")
		if err != nil {
			return Data{}, errors.New("wkt polygon: invalid")
		}
		// normalize spaces around ring separators
		norm := strings.ReplaceAll(body, "), (", "),(")
		norm = strings.ReplaceAll(norm, ") , (", "),(")
		var poly [][][2]float64
		for _, rp := range strings.Split(norm, "),(") {
			poly = append(poly, parseTuples(rp))
		}
		d.addPolygon(poly)
	default:
		return Data{}, ErrUnsupportedWKT
	}
	if d.Empty() {
		return Data{}, errors.New("wkt: no coordinates parsed")
	}
	return d, nil
}

// ParsePolygon returns the outer ring of a WKT POLYGON.
func ParsePolygon(wkt string) (Ring, error) {
	d, err := ParseWKTData(wkt)
	if err != nil {
		return nil, err
	}
	if len(d.Polygons) == 0 || len(d.Polygons[0]) == 0 {
		return nil, errors.New("wkt: not a polygon")
	}
	return Ring(d.Polygons[0][0]).Closed(), nil
}

// FormatPolygon renders a ring as a single-ring WKT POLYGON.
func FormatPolygon(r Ring) string {
	var b strings.Builder
	b.WriteString("POLYGON((")
	for i, p := range r.Closed() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(p[0], 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p[1], 'f', -1, 64))
	}
	b.WriteString("))")
	return b.String()
}

func between(s, open, close string) (string, error) {
	i := strings.Index(s, open)
	j := strings.LastIndex(s, close)
	if i < 0 || j <= i {
		return "", errors.New("unbalanced")
	}
	return s[i+len(open) : j], nil
}

// parseTuples reads "x y, x y, ..." skipping malformed tuples.
func parseTuples(block string) [][2]float64 {
	var out [][2]float64
	for _, tup := range strings.Split(block, ",") {
		parts := strings.Fields(strings.TrimSpace(tup))
		if len(parts) < 2 {
			continue
		}
		x, e1 := strconv.ParseFloat(parts[0], 64)
		y, e2 := strconv.ParseFloat(parts[1], 64)
		if e1 != nil || e2 != nil {
			continue
		}
		out = append(out, [2]float64{x, y})
	}
	return out
}
