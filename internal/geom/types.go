package geom

type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Valid reports whether the box has a positive extent on both axes.
func (b BBox) Valid() bool {
	return b.MaxX > b.MinX && b.MaxY > b.MinY
}

func (b BBox) Center() [2]float64 {
	return [2]float64{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2}
}

// Union returns the smallest box containing both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		MinX: min(b.MinX, o.MinX),
		MinY: min(b.MinY, o.MinY),
		MaxX: max(b.MaxX, o.MaxX),
		MaxY: max(b.MaxY, o.MaxY),
	}
}

// Data is a minimal geometry container for the reference base map.
type Data struct {
	Points   [][2]float64
	Lines    [][][2]float64
	Polygons [][][][2]float64 // polygons with rings (first outer, following holes)
	BBox     BBox

	seen int
}

// Empty reports whether nothing was collected.
func (d *Data) Empty() bool {
	return len(d.Points) == 0 && len(d.Lines) == 0 && len(d.Polygons) == 0
}

// grow extends the bounding box with p. The first vertex initialises it.
func (d *Data) grow(p [2]float64) {
	if d.seen == 0 {
		d.BBox = BBox{MinX: p[0], MinY: p[1], MaxX: p[0], MaxY: p[1]}
	} else {
		d.BBox.MinX = min(d.BBox.MinX, p[0])
		d.BBox.MinY = min(d.BBox.MinY, p[1])
		d.BBox.MaxX = max(d.BBox.MaxX, p[0])
		d.BBox.MaxY = max(d.BBox.MaxY, p[1])
	}
	d.seen++
}

func (d *Data) addPoint(p [2]float64) {
	d.Points = append(d.Points, p)
	d.grow(p)
}

func (d *Data) addLine(ls [][2]float64) {
	if len(ls) == 0 {
		return
	}
	d.Lines = append(d.Lines, ls)
	for _, p := range ls {
		d.grow(p)
	}
}

func (d *Data) addPolygon(poly [][][2]float64) {
	if len(poly) == 0 || len(poly[0]) == 0 {
		return
	}
	d.Polygons = append(d.Polygons, poly)
	for _, ring := range poly {
		for _, p := range ring {
			d.grow(p)
		}
	}
}
