// Package editor is the interactive rectangle editor for parking bays.
//
// All state lives in one Editor value. Input arrives as messages applied by
// Update, which reports whether the pointer was captured and whether the
// overlay needs to be pushed again. The editor never talks to the store;
// saving and reloading are done by the caller with bay.Service and fed
// back as messages.
package editor

import (
	"errors"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/bay"
	"baymap/internal/geom"
	"baymap/internal/overlay"
)

var (
	ErrDraftPending  = errors.New("save or cancel the draft first")
	ErrUnknownBay    = errors.New("bay is not in the loaded list")
	ErrNothingActive = errors.New("no draft or selected bay")
	ErrNotRectangle  = errors.New("polygon is not an editable rectangle")
)

// Querier answers which overlay features lie under a pixel.
type Querier interface {
	QueryFeatures(p r2.Vec, layerIDs []string) []overlay.Hit
}

// Shape is an editable buffer: the draft, or the copy of a selected bay.
type Shape struct {
	Ring   geom.Ring
	Code   string
	ZoneID *string
}

func (s *Shape) clone() *Shape {
	if s == nil {
		return nil
	}
	return &Shape{Ring: s.Ring.Clone(), Code: s.Code, ZoneID: bay.CloneZone(s.ZoneID)}
}

func (s *Shape) equal(o *Shape) bool {
	if s == nil || o == nil {
		return s == nil && o == nil
	}
	return s.Code == o.Code && bay.SameZone(s.ZoneID, o.ZoneID) && slices.Equal(s.Ring, o.Ring)
}

type Options struct {
	// Projector is read on every call, so it may be a viewport that the
	// host pans and zooms.
	Projector geom.Projector
	// Engine answers hit tests against the invisible bay hit layer.
	Engine Querier
	Snap   bool
	// HandleRadius is the pick distance for handles, in pixels.
	HandleRadius float64
}

type Editor struct {
	proj         geom.Projector
	engine       Querier
	handleRadius float64

	bays   []bay.Bay
	zones  []bay.Zone
	zoneID *string

	selected string
	edit     *Shape
	draft    *Shape

	drawMode bool
	editMode bool
	snap     bool

	gesture   *gesture
	panLocked bool

	undo UndoStack
}

func New(o Options) *Editor {
	r := o.HandleRadius
	if r <= 0 {
		r = 6
	}
	return &Editor{proj: o.Projector, engine: o.Engine, snap: o.Snap, handleRadius: r}
}

func (e *Editor) Bays() []bay.Bay   { return e.bays }
func (e *Editor) Zones() []bay.Zone { return e.zones }
func (e *Editor) ZoneID() *string   { return e.zoneID }
func (e *Editor) DrawMode() bool    { return e.drawMode }
func (e *Editor) EditMode() bool    { return e.editMode }
func (e *Editor) SnapEnabled() bool { return e.snap }
func (e *Editor) UndoDepth() int    { return e.undo.Len() }

// PanEnabled reports whether the host may pan the map.
func (e *Editor) PanEnabled() bool { return !e.panLocked }

// State is the gesture machine state.
func (e *Editor) State() State {
	if e.gesture == nil {
		return Idle
	}
	return e.gesture.state
}

// Snapshot returns the current interaction state.
func (e *Editor) Snapshot() Snapshot { return e.snapshot("") }

// Selected returns the selected persisted bay.
func (e *Editor) Selected() (bay.Bay, bool) {
	if e.selected == "" {
		return bay.Bay{}, false
	}
	return e.bay(e.selected)
}

// Draft returns a copy of the unsaved draft.
func (e *Editor) Draft() (Shape, bool) {
	if e.draft == nil {
		return Shape{}, false
	}
	return *e.draft.clone(), true
}

// Edit returns a copy of the selected bay's edit buffer.
func (e *Editor) Edit() (Shape, bool) {
	if e.edit == nil {
		return Shape{}, false
	}
	return *e.edit.clone(), true
}

// Active is the shape handles operate on: the draft if there is one,
// otherwise the selected bay's edit buffer.
func (e *Editor) Active() (Shape, bool) {
	if s := e.active(); s != nil {
		return *s.clone(), true
	}
	return Shape{}, false
}

func (e *Editor) active() *Shape {
	if e.draft != nil {
		return e.draft
	}
	return e.edit
}

// ActiveRect rebuilds the active shape as a pixel rectangle.
func (e *Editor) ActiveRect() (geom.Rect, bool) {
	s := e.active()
	if s == nil {
		return geom.Rect{}, false
	}
	return geom.RectFromRing(s.Ring, e.proj)
}

// Scope is the list view the bay service reloads after a save.
func (e *Editor) Scope() bay.Scope {
	return bay.Scope{ZoneID: bay.CloneZone(e.zoneID), Loaded: e.bays}
}

// DraftInput is what saving the draft sends.
func (e *Editor) DraftInput() (bay.Input, bool) {
	if e.draft == nil {
		return bay.Input{}, false
	}
	return bay.Input{Code: e.draft.Code, ZoneID: bay.CloneZone(e.draft.ZoneID), Geometry: e.draft.Ring.Clone()}, true
}

// EditInput is what saving the selected bay sends.
func (e *Editor) EditInput() (string, bay.Input, bool) {
	if e.selected == "" || e.edit == nil {
		return "", bay.Input{}, false
	}
	return e.selected, bay.Input{Code: e.edit.Code, ZoneID: bay.CloneZone(e.edit.ZoneID), Geometry: e.edit.Ring.Clone()}, true
}

func (e *Editor) bay(id string) (bay.Bay, bool) {
	for _, b := range e.bays {
		if b.ID == id {
			return b, true
		}
	}
	return bay.Bay{}, false
}

func shapeOf(b bay.Bay) *Shape {
	return &Shape{Ring: b.Geometry.Clone(), Code: b.Code, ZoneID: bay.CloneZone(b.ZoneID)}
}

func (e *Editor) selectBay(b bay.Bay) {
	e.selected = b.ID
	e.edit = shapeOf(b)
}

func (e *Editor) clearSelection() {
	e.selected = ""
	e.edit = nil
}

// startDraft replaces any draft. A draft and a selection never coexist.
func (e *Editor) startDraft(ring geom.Ring) {
	e.clearSelection()
	e.draft = &Shape{Ring: ring, Code: bay.NextCode(e.bays), ZoneID: bay.CloneZone(e.zoneID)}
	e.drawMode = false
}

func (e *Editor) replaceBays(bs []bay.Bay) {
	e.bays = bs
	if e.selected == "" {
		return
	}
	if _, ok := e.bay(e.selected); !ok {
		e.clearSelection()
	}
}
