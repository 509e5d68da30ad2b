// Package projection is the local map projection the editor draws with.
//
// It is an equirectangular approximation around the viewport centre and is
// only accurate for small, zoomed-in extents such as a single car park.
package projection

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/geom"
)

// MetersPerDegree is the length of one degree of latitude.
const MetersPerDegree = 111320.0

const (
	minMetersPerPixel = 0.01
	maxMetersPerPixel = 5000
)

// Viewport maps lon/lat to pixels with the centre in the middle of a
// Width x Height pixel canvas, y growing downwards.
type Viewport struct {
	Center         [2]float64
	MetersPerPixel float64
	Width, Height  float64
}

var _ geom.Projector = (*Viewport)(nil)

func (v *Viewport) scale() (kx, ky float64) {
	ky = MetersPerDegree / v.MetersPerPixel
	kx = ky * math.Cos(v.Center[1]*math.Pi/180)
	return kx, ky
}

func (v *Viewport) Project(ll [2]float64) r2.Vec {
	kx, ky := v.scale()
	return r2.Vec{
		X: v.Width/2 + (ll[0]-v.Center[0])*kx,
		Y: v.Height/2 - (ll[1]-v.Center[1])*ky,
	}
}

func (v *Viewport) Unproject(p r2.Vec) [2]float64 {
	kx, ky := v.scale()
	return [2]float64{
		v.Center[0] + (p.X-v.Width/2)/kx,
		v.Center[1] - (p.Y-v.Height/2)/ky,
	}
}

// Resize changes the canvas size, keeping the centre.
func (v *Viewport) Resize(w, h float64) {
	v.Width, v.Height = w, h
}

// Pan moves the view by dx, dy pixels. Content moves the opposite way.
func (v *Viewport) Pan(dx, dy float64) {
	v.Center = v.Unproject(r2.Vec{X: v.Width/2 + dx, Y: v.Height/2 + dy})
}

// ZoomBy scales the view around its centre; f > 1 zooms in.
func (v *Viewport) ZoomBy(f float64) {
	if f <= 0 {
		return
	}
	v.MetersPerPixel = clamp(v.MetersPerPixel/f, minMetersPerPixel, maxMetersPerPixel)
}

// Fit frames bb with a small margin. Degenerate boxes only recentre.
func (v *Viewport) Fit(bb geom.BBox) {
	v.Center = bb.Center()
	if !bb.Valid() || v.Width <= 0 || v.Height <= 0 {
		return
	}
	wm := (bb.MaxX - bb.MinX) * MetersPerDegree * math.Cos(v.Center[1]*math.Pi/180)
	hm := (bb.MaxY - bb.MinY) * MetersPerDegree
	mpp := math.Max(wm/v.Width, hm/v.Height) * 1.1
	v.MetersPerPixel = clamp(mpp, minMetersPerPixel, maxMetersPerPixel)
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}
