package editor

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/geom"
)

// RotateLever is how far the rotate handle sits above the top edge.
const RotateLever = 30.0

const (
	snapStep      = 5 * math.Pi / 180
	snapTolerance = 3 * math.Pi / 180
)

type HandleKind int

const (
	CornerHandle HandleKind = iota
	RotateHandle
)

// Handle is a draggable control in pixel space. Index is the corner
// index for corner handles.
type Handle struct {
	Kind  HandleKind
	Index int
	Pos   r2.Vec
}

// HandlesFor returns the four corner handles followed by the rotate handle.
func HandlesFor(r geom.Rect) []Handle {
	hs := make([]Handle, 0, 5)
	for i, c := range r.Corners() {
		hs = append(hs, Handle{Kind: CornerHandle, Index: i, Pos: c})
	}
	lever := r2.Vec{Y: -r.H/2 - RotateLever}
	hs = append(hs, Handle{Kind: RotateHandle, Pos: r2.Add(r.Center, r2.Rotate(lever, r.Angle, r2.Vec{}))})
	return hs
}

// Handles are recomputed from the active shape on every call. None are
// shown outside edit mode or when the shape is not a rectangle.
func (e *Editor) Handles() []Handle {
	if !e.editMode {
		return nil
	}
	r, ok := e.ActiveRect()
	if !ok {
		return nil
	}
	return HandlesFor(r)
}

// hitHandle picks the nearest handle within the handle radius.
func (e *Editor) hitHandle(p r2.Vec) (Handle, bool) {
	best, bestD := Handle{}, math.Inf(1)
	for _, h := range e.Handles() {
		if d := r2.Norm(r2.Sub(h.Pos, p)); d <= e.handleRadius && d < bestD {
			best, bestD = h, d
		}
	}
	return best, !math.IsInf(bestD, 1)
}

// ResizeFromCorner moves corner i to p while the opposite corner stays put.
// The centre is the midpoint of p and the opposite corner, so the rectangle
// follows p across the opposite corner. The angle is kept; width and height
// are measured in the rectangle's own frame and floored at geom.MinSize.
func ResizeFromCorner(base geom.Rect, i int, p r2.Vec) geom.Rect {
	i = ((i % 4) + 4) % 4
	corners := base.Corners()
	opp := corners[(i+2)%4]
	d := r2.Rotate(r2.Sub(p, opp), -base.Angle, r2.Vec{})
	grabbed := r2.Rotate(r2.Sub(corners[i], opp), -base.Angle, r2.Vec{})

	// a floored side grows towards the side p is on
	half := r2.Vec{
		X: side(d.X, grabbed.X) * max(math.Abs(d.X), geom.MinSize) / 2,
		Y: side(d.Y, grabbed.Y) * max(math.Abs(d.Y), geom.MinSize) / 2,
	}
	return geom.Rect{
		Center: r2.Add(opp, r2.Rotate(half, base.Angle, r2.Vec{})),
		W:      2 * math.Abs(half.X),
		H:      2 * math.Abs(half.Y),
		Angle:  base.Angle,
	}
}

// side is the sign of v, or of fallback when v is zero.
func side(v, fallback float64) float64 {
	if v == 0 {
		v = fallback
	}
	if v < 0 {
		return -1
	}
	return 1
}

// RotateTo turns base so that its rotate handle points at p.
func RotateTo(base geom.Rect, p r2.Vec, snap bool) geom.Rect {
	d := r2.Sub(p, base.Center)
	if d.X == 0 && d.Y == 0 {
		return base
	}
	a := math.Atan2(d.Y, d.X) + math.Pi/2
	if snap {
		a = SnapAngle(a)
	}
	base.Angle = geom.NormalizeAngle(a)
	return base
}

// SnapAngle pulls a onto a multiple of 90° when it is within 3° of one,
// otherwise rounds it to the nearest 5°.
func SnapAngle(a float64) float64 {
	quarter := math.Round(a/(math.Pi/2)) * (math.Pi / 2)
	if math.Abs(a-quarter) <= snapTolerance {
		return quarter
	}
	return math.Round(a/snapStep) * snapStep
}
