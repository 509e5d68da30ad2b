package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// MinSize is the smallest side, in pixels, a rectangle keeps while resized.
const MinSize = 6.0

// below this side length a polygon is not editable as a rectangle
const degenerateSize = 2.0

// Projector converts between geographic (lon, lat) and screen pixels.
// Implementations only need to be accurate locally.
type Projector interface {
	Project(ll [2]float64) r2.Vec
	Unproject(p r2.Vec) [2]float64
}

// Rect is an oriented rectangle in pixel space. Angle is in radians and
// turns clockwise on a y-down screen.
type Rect struct {
	Center r2.Vec
	W, H   float64
	Angle  float64
}

// Corners returns TL, TR, BR, BL of the local frame, rotated and translated.
// Corner i and corner (i+2)%4 are always diagonal opposites.
func (r Rect) Corners() [4]r2.Vec {
	hw, hh := r.W/2, r.H/2
	local := [4]r2.Vec{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
	var out [4]r2.Vec
	for i, p := range local {
		out[i] = r2.Add(r.Center, r2.Rotate(p, r.Angle, r2.Vec{}))
	}
	return out
}

// Translate returns r moved by d.
func (r Rect) Translate(d r2.Vec) Rect {
	r.Center = r2.Add(r.Center, d)
	return r
}

// NormalizeAngle folds a into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// RectFromPoints rebuilds a rectangle from its first four corners. The
// centre is their centroid, the width and height are the first two edge
// lengths and the angle is the direction of the first edge. ok is false
// when there are fewer than four points or a side is degenerate.
func RectFromPoints(pts []r2.Vec) (Rect, bool) {
	if len(pts) < 4 {
		return Rect{}, false
	}
	var c r2.Vec
	for _, p := range pts[:4] {
		c = r2.Add(c, p)
	}
	c = r2.Scale(0.25, c)
	e0 := r2.Sub(pts[1], pts[0])
	w := r2.Norm(e0)
	h := r2.Norm(r2.Sub(pts[2], pts[1]))
	for _, v := range []float64{c.X, c.Y, w, h} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Rect{}, false
		}
	}
	if w < degenerateSize || h < degenerateSize {
		return Rect{}, false
	}
	return Rect{Center: c, W: w, H: h, Angle: math.Atan2(e0.Y, e0.X)}, true
}

// RectFromRing projects the ring and rebuilds the rectangle.
func RectFromRing(ring Ring, proj Projector) (Rect, bool) {
	open := ring.Open()
	if len(open) < 4 {
		return Rect{}, false
	}
	pts := make([]r2.Vec, 4)
	for i := range pts {
		pts[i] = proj.Project(open[i])
	}
	return RectFromPoints(pts)
}

// PolygonFromRect unprojects the corners into a closed geographic ring.
func PolygonFromRect(r Rect, proj Projector) Ring {
	cs := r.Corners()
	ring := make(Ring, 0, 5)
	for _, c := range cs {
		ring = append(ring, proj.Unproject(c))
	}
	return append(ring, ring[0])
}

// BoundsRing is the closed lon/lat box spanned by a and b, in the same
// corner order as Rect.Corners on a north-up map.
func BoundsRing(a, b [2]float64) Ring {
	minX, maxX := min(a[0], b[0]), max(a[0], b[0])
	minY, maxY := min(a[1], b[1]), max(a[1], b[1])
	return Ring{
		{minX, maxY},
		{maxX, maxY},
		{maxX, minY},
		{minX, minY},
		{minX, maxY},
	}
}

// BoundsRectangle is the axis-aligned pixel rectangle spanning two
// geographic corners.
func BoundsRectangle(a, b [2]float64, proj Projector) Rect {
	ring := BoundsRing(a, b)
	tl, tr, br := proj.Project(ring[0]), proj.Project(ring[1]), proj.Project(ring[2])
	return Rect{
		Center: r2.Scale(0.5, r2.Add(tl, br)),
		W:      r2.Norm(r2.Sub(tr, tl)),
		H:      r2.Norm(r2.Sub(br, tr)),
	}
}
