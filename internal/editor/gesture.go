package editor

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/bay"
	"baymap/internal/geom"
)

// DragThreshold is the per-axis distance, in pixels, a drag must exceed
// before it moves anything.
const DragThreshold = 3.0

type State int

const (
	Idle State = iota
	Drawing
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Dragging:
		return "dragging"
	}
	return "unknown"
}

type Target int

const (
	TargetNone Target = iota
	TargetDraft
	TargetBay
	TargetCorner
	TargetRotate
)

// gesture exists between pointer-down and pointer-up.
type gesture struct {
	pointer int
	state   State
	target  Target
	corner  int
	onDraft bool // corner/rotate: which buffer is transformed

	start  r2.Vec
	anchor [2]float64

	base    geom.Rect
	baseOK  bool
	basePts []r2.Vec // fallback for polygons that are not rectangles
	moved   bool
}

// Target reports what the active gesture manipulates.
func (e *Editor) Target() Target {
	if e.gesture == nil {
		return TargetNone
	}
	return e.gesture.target
}

func (e *Editor) pointerDown(m PointerDown) Result {
	if e.gesture != nil {
		return Result{}
	}
	if e.drawMode {
		e.pushUndo("draw")
		e.clearSelection()
		e.draft = &Shape{ZoneID: bay.CloneZone(e.zoneID)}
		e.gesture = &gesture{pointer: m.ID, state: Drawing, start: m.Pos, anchor: e.proj.Unproject(m.Pos)}
		e.panLocked = true
		return Result{Captured: true, Changed: true}
	}
	if h, ok := e.hitHandle(m.Pos); ok {
		rect, _ := e.ActiveRect()
		g := &gesture{pointer: m.ID, state: Dragging, start: m.Pos, base: rect, baseOK: true, onDraft: e.draft != nil}
		if h.Kind == RotateHandle {
			e.pushUndo("rotate")
			g.target = TargetRotate
		} else {
			e.pushUndo("resize")
			g.target = TargetCorner
			g.corner = h.Index
		}
		e.gesture = g
		return Result{Captured: true}
	}
	if e.draft != nil {
		if !e.draft.Ring.Contains(e.proj.Unproject(m.Pos)) {
			return Result{}
		}
		e.pushUndo("move-draft")
		e.gesture = e.dragFrom(m, TargetDraft, e.draft.Ring)
		return Result{Captured: true}
	}
	if e.engine == nil {
		return Result{}
	}
	hits := e.engine.QueryFeatures(m.Pos, []string{LayerBaysHit})
	if len(hits) == 0 {
		return Result{}
	}
	b, ok := e.bay(hits[0].Feature.ID)
	if !ok {
		return Result{}
	}
	// re-grabbing the selected bay keeps its unsaved edits
	if e.selected != b.ID || e.edit == nil {
		e.selectBay(b)
	}
	e.pushUndo("move-bay")
	e.gesture = e.dragFrom(m, TargetBay, e.edit.Ring)
	return Result{Captured: true, Changed: true}
}

func (e *Editor) dragFrom(m PointerDown, t Target, ring geom.Ring) *gesture {
	g := &gesture{pointer: m.ID, state: Dragging, target: t, start: m.Pos}
	g.base, g.baseOK = geom.RectFromRing(ring, e.proj)
	if !g.baseOK {
		for _, p := range ring.Open() {
			g.basePts = append(g.basePts, e.proj.Project(p))
		}
	}
	return g
}

func (e *Editor) pointerMove(m PointerMove) Result {
	g := e.gesture
	if g == nil || g.pointer != m.ID {
		return Result{}
	}
	if g.state == Drawing {
		if e.draft == nil {
			return Result{Captured: true}
		}
		e.draft.Ring = geom.BoundsRing(g.anchor, e.proj.Unproject(m.Pos))
		return Result{Captured: true, Changed: true}
	}
	d := r2.Sub(m.Pos, g.start)
	if !g.moved && math.Abs(d.X) < DragThreshold && math.Abs(d.Y) < DragThreshold {
		return Result{Captured: true}
	}
	g.moved = true
	e.panLocked = true

	var ring geom.Ring
	switch g.target {
	case TargetDraft, TargetBay:
		ring = e.translated(g, d)
	case TargetCorner:
		ring = geom.PolygonFromRect(ResizeFromCorner(g.base, g.corner, m.Pos), e.proj)
	case TargetRotate:
		ring = geom.PolygonFromRect(RotateTo(g.base, m.Pos, e.snap), e.proj)
	}
	if s := e.buffer(g); s != nil {
		s.Ring = ring
	}
	return Result{Captured: true, Changed: true}
}

func (e *Editor) translated(g *gesture, d r2.Vec) geom.Ring {
	if g.baseOK {
		return geom.PolygonFromRect(g.base.Translate(d), e.proj)
	}
	ring := make(geom.Ring, 0, len(g.basePts)+1)
	for _, p := range g.basePts {
		ring = append(ring, e.proj.Unproject(r2.Add(p, d)))
	}
	return ring.Closed()
}

// buffer is the shape a drag writes to.
func (e *Editor) buffer(g *gesture) *Shape {
	switch g.target {
	case TargetDraft:
		return e.draft
	case TargetBay:
		return e.edit
	}
	if g.onDraft {
		return e.draft
	}
	return e.edit
}

func (e *Editor) pointerUp(m PointerUp) Result {
	g := e.gesture
	if g == nil || g.pointer != m.ID {
		return Result{}
	}
	e.gesture = nil
	e.panLocked = false
	if g.state == Drawing {
		e.finishDraw()
	}
	return Result{Captured: true, Changed: true}
}

// finishDraw names the drawn draft and leaves draw mode.
func (e *Editor) finishDraw() {
	if e.draft == nil {
		return
	}
	if _, ok := geom.RectFromRing(e.draft.Ring, e.proj); !ok {
		// a click without a drag draws nothing; stay in draw mode
		e.draft = nil
		return
	}
	e.draft.Code = bay.NextCode(e.bays)
	e.draft.ZoneID = bay.CloneZone(e.zoneID)
	e.drawMode = false
}

// pointerCancel ends the gesture. Geometry already pushed stays; undo
// holds the state from before the gesture.
func (e *Editor) pointerCancel(m PointerCancel) Result {
	g := e.gesture
	if g == nil || g.pointer != m.ID {
		return Result{}
	}
	e.gesture = nil
	e.panLocked = false
	if g.state == Drawing {
		e.finishDraw()
	}
	return Result{Changed: true}
}
