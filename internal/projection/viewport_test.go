package projection_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/geom"
	"baymap/internal/projection"
)

func TestProjectUnproject(t *testing.T) {
	v := &projection.Viewport{Center: [2]float64{-2.935, 43.263}, MetersPerPixel: 0.5, Width: 200, Height: 100}
	c := v.Project(v.Center)
	if c.X != 100 || c.Y != 50 {
		t.Fatalf("centre projects to %v", c)
	}
	for _, p := range []r2.Vec{{X: 0, Y: 0}, {X: 17.5, Y: 93}, {X: 200, Y: 100}} {
		ll := v.Unproject(p)
		back := v.Project(ll)
		if math.Abs(back.X-p.X) > 1e-6 || math.Abs(back.Y-p.Y) > 1e-6 {
			t.Fatalf("round trip %v -> %v", p, back)
		}
	}
	north := v.Project([2]float64{v.Center[0], v.Center[1] + 0.0001})
	if north.Y >= 50 {
		t.Fatal("north must be up")
	}
}

func TestOneMeterPerPixelAtEquator(t *testing.T) {
	v := &projection.Viewport{MetersPerPixel: 1, Width: 400, Height: 400}
	r := geom.BoundsRectangle([2]float64{0, 0}, [2]float64{0.001, 0.001}, v)
	if math.Abs(r.W-111.32) > 1e-6 || math.Abs(r.H-111.32) > 1e-6 {
		t.Fatalf("expected ~111px square, got %vx%v", r.W, r.H)
	}
}

func TestPanZoomFit(t *testing.T) {
	v := &projection.Viewport{MetersPerPixel: 1, Width: 100, Height: 100}
	before := v.Project([2]float64{0, 0})
	v.Pan(10, 0)
	after := v.Project([2]float64{0, 0})
	if math.Abs(after.X-(before.X-10)) > 1e-9 {
		t.Fatalf("pan: %v -> %v", before, after)
	}
	v.ZoomBy(2)
	if v.MetersPerPixel != 0.5 {
		t.Fatalf("zoom: %v", v.MetersPerPixel)
	}
	v.ZoomBy(0)
	if v.MetersPerPixel != 0.5 {
		t.Fatal("non-positive zoom factor must be ignored")
	}
	v.Fit(geom.BBox{MinX: 0, MinY: 0, MaxX: 0.001, MaxY: 0.0005})
	tl := v.Project([2]float64{0, 0.0005})
	br := v.Project([2]float64{0.001, 0})
	if tl.X < 0 || tl.Y < 0 || br.X > 100 || br.Y > 100 {
		t.Fatalf("fit does not frame the box: %v %v", tl, br)
	}
}
