package tui

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/overlay"
)

// Layout (must match View)
const (
	sidebarWidth = 28
	headerHeight = 1
	footerHeight = 2
)

type layout struct {
	contentW, contentH int
	sidebarW           int
	mapX, mapY         int
	mapW, mapH         int
}

func (m Model) layout() layout {
	l := layout{
		contentW: max(10, m.width),
		contentH: max(4, m.height-headerHeight-footerHeight),
		mapY:     headerHeight,
	}
	if m.showSidebar {
		l.sidebarW = sidebarWidth
		l.mapX = sidebarWidth + 1
	}
	l.mapW = max(10, l.contentW-l.sidebarW-1)
	l.mapH = l.contentH
	return l
}

// toMap converts a terminal cell into the micro-pixel at the centre of that
// cell, in viewport pixels, and reports whether it lies on the map.
func (l layout) toMap(x, y int) (r2.Vec, bool) {
	cx, cy := x-l.mapX, y-l.mapY
	in := cx >= 0 && cx < l.mapW && cy >= 0 && cy < l.mapH
	return r2.Vec{X: float64(cx*2 + 1), Y: float64(cy*4 + 2)}, in
}

// micro projects lon/lat onto the braille microgrid.
func (m Model) micro(ll [2]float64) [2]int {
	p := m.vp.Project(ll)
	return [2]int{int(math.Floor(p.X)), int(math.Floor(p.Y))}
}

func (m Model) microRing(r [][2]float64) [][2]int {
	out := make([][2]int, 0, len(r))
	for _, p := range r {
		out = append(out, m.micro(p))
	}
	return out
}

// renderMap draws the base map and then every visible overlay layer, bottom
// to top, onto a w x h cell canvas.
func (m Model) renderMap(w, h int) string {
	br := newBrailleBuf(w, h)
	m.drawBasemap(br)
	for _, l := range m.surface.Layers() {
		if l.Hidden {
			continue
		}
		fs, ok := m.surface.SourceData(l.Source)
		if !ok {
			continue
		}
		br.pen = l.Role
		for _, f := range fs {
			m.drawFeature(br, l.Type, f)
		}
	}
	return strings.Join(br.toLines(themes[m.theme].style), "\n")
}

func (m Model) drawFeature(br *brailleBuf, t overlay.LayerType, f overlay.Feature) {
	if len(f.Ring) == 0 {
		return
	}
	switch t {
	case overlay.Fill:
		if f.Kind == overlay.Polygon {
			br.fillRingMicro(m.microRing(f.Ring))
		}
	case overlay.Line:
		if f.Kind == overlay.Polygon {
			br.drawRingMicro(m.microRing(f.Ring))
		}
	case overlay.Label:
		if f.Label == "" {
			return
		}
		p := m.micro(f.Ring.Centroid())
		br.text(p[0]/2, p[1]/4, f.Label)
	case overlay.Marker:
		p := m.micro(f.Ring[0])
		br.glyph(p[0]/2, p[1]/4, '◯')
	}
}

func (m Model) drawBasemap(br *brailleBuf) {
	if m.basemap.Empty() {
		return
	}
	br.pen = roleBase
	for _, poly := range m.basemap.Polygons {
		for _, ring := range poly {
			br.drawRingMicro(m.microRing(ring))
		}
	}
	for _, ls := range m.basemap.Lines {
		r := m.microRing(ls)
		for i := 0; i+1 < len(r); i++ {
			br.drawLineMicro(r[i][0], r[i][1], r[i+1][0], r[i+1][1])
		}
	}
	for _, p := range m.basemap.Points {
		q := m.micro(p)
		br.setPixel(q[0], q[1])
	}
}
