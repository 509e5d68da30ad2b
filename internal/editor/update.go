package editor

import (
	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/bay"
	"baymap/internal/geom"
)

// Msg is an input to Update.
type Msg interface{ editorMsg() }

// Pointer input, in pixels. ID identifies the pointer; only one is
// tracked at a time.
type (
	PointerDown struct {
		ID  int
		Pos r2.Vec
	}
	PointerMove struct {
		ID  int
		Pos r2.Vec
	}
	PointerUp struct {
		ID  int
		Pos r2.Vec
	}
	PointerCancel struct{ ID int }
)

// Commands.
type (
	BeginDraw  struct{}
	CancelDraw struct{}
	// CreateAtCenter drafts an axis-aligned W x H pixel rectangle.
	CreateAtCenter struct {
		Center r2.Vec
		W, H   float64
	}
	// ImportDraft drafts an existing geographic ring, e.g. pasted WKT.
	ImportDraft struct{ Ring geom.Ring }
	CancelDraft struct{}
	Undo        struct{}
	ToggleEdit  struct{}
	ToggleSnap  struct{}
	SelectZone  struct{ ZoneID *string }
	Select      struct{ ID string }
	Deselect    struct{}
	SetCode     struct{ Code string }
)

// Results of store calls made by the host. A nil Bays means the reload
// after a successful mutation failed; the previous list is kept.
type (
	ZonesLoaded struct{ Zones []bay.Zone }
	BaysLoaded  struct{ Bays []bay.Bay }
	DraftSaved  struct{ Bays []bay.Bay }
	BaySaved    struct{ Bays []bay.Bay }
	BayDeleted  struct{ Bays []bay.Bay }
)

func (PointerDown) editorMsg()    {}
func (PointerMove) editorMsg()    {}
func (PointerUp) editorMsg()      {}
func (PointerCancel) editorMsg()  {}
func (BeginDraw) editorMsg()      {}
func (CancelDraw) editorMsg()     {}
func (CreateAtCenter) editorMsg() {}
func (ImportDraft) editorMsg()    {}
func (CancelDraft) editorMsg()    {}
func (Undo) editorMsg()           {}
func (ToggleEdit) editorMsg()     {}
func (ToggleSnap) editorMsg()     {}
func (SelectZone) editorMsg()     {}
func (Select) editorMsg()         {}
func (Deselect) editorMsg()       {}
func (SetCode) editorMsg()        {}
func (ZonesLoaded) editorMsg()    {}
func (BaysLoaded) editorMsg()     {}
func (DraftSaved) editorMsg()     {}
func (BaySaved) editorMsg()       {}
func (BayDeleted) editorMsg()     {}

// Result tells the host what an update did. Captured means the pointer
// belongs to the editor and must not pan the map. Changed means the
// overlay should be pushed again.
type Result struct {
	Captured bool
	Changed  bool
	Err      error
}

var changed = Result{Changed: true}

// Update applies one message.
func (e *Editor) Update(msg Msg) Result {
	switch m := msg.(type) {
	case PointerDown:
		return e.pointerDown(m)
	case PointerMove:
		return e.pointerMove(m)
	case PointerUp:
		return e.pointerUp(m)
	case PointerCancel:
		return e.pointerCancel(m)

	case BeginDraw:
		e.drawMode = true
		return changed
	case CancelDraw:
		e.drawMode = false
		return changed
	case CreateAtCenter:
		e.pushUndo("create")
		r := geom.Rect{Center: m.Center, W: max(m.W, geom.MinSize), H: max(m.H, geom.MinSize)}
		e.startDraft(geom.PolygonFromRect(r, e.proj))
		return changed
	case ImportDraft:
		if _, ok := geom.RectFromRing(m.Ring, e.proj); !ok {
			return Result{Err: ErrNotRectangle}
		}
		e.pushUndo("import")
		e.startDraft(m.Ring.Closed())
		return changed
	case CancelDraft:
		if e.draft == nil {
			return Result{}
		}
		e.pushUndo("cancel-draft")
		e.draft = nil
		return changed
	case Undo:
		return e.undoOnce()
	case ToggleEdit:
		e.editMode = !e.editMode
		return changed
	case ToggleSnap:
		e.snap = !e.snap
		return Result{}
	case SetCode:
		s := e.active()
		if s == nil {
			return Result{Err: ErrNothingActive}
		}
		s.Code = m.Code
		return changed

	case SelectZone:
		e.zoneID = bay.CloneZone(m.ZoneID)
		e.clearSelection()
		return changed
	case Select:
		if e.draft != nil {
			return Result{Err: ErrDraftPending}
		}
		b, ok := e.bay(m.ID)
		if !ok {
			return Result{Err: ErrUnknownBay}
		}
		if e.selected != b.ID {
			e.selectBay(b)
		}
		return changed
	case Deselect:
		e.clearSelection()
		return changed

	case ZonesLoaded:
		e.zones = m.Zones
		return Result{}
	case BaysLoaded:
		e.replaceBays(m.Bays)
		return changed
	case DraftSaved:
		e.draft = nil
		if m.Bays != nil {
			e.replaceBays(m.Bays)
		}
		return changed
	case BaySaved:
		if m.Bays != nil {
			e.replaceBays(m.Bays)
			if b, ok := e.bay(e.selected); ok {
				e.edit = shapeOf(b)
			}
		}
		return changed
	case BayDeleted:
		e.clearSelection()
		if m.Bays != nil {
			e.replaceBays(m.Bays)
		}
		return changed
	}
	return Result{}
}

// undoOnce aborts any gesture and restores the latest snapshot.
func (e *Editor) undoOnce() Result {
	e.gesture = nil
	e.panLocked = false
	s, ok := e.undo.Pop()
	if !ok {
		return Result{}
	}
	e.restore(s)
	return changed
}
