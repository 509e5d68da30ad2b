package editor_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/bay"
	"baymap/internal/editor"
	"baymap/internal/geom"
	"baymap/internal/overlay"
	"baymap/internal/projection"
)

const tol = 1e-6

func deg(d float64) float64 { return d * math.Pi / 180 }

// newViewport is about 1 m per pixel near the equator.
func newViewport() *projection.Viewport {
	return &projection.Viewport{Center: [2]float64{0.0005, 0.0005}, MetersPerPixel: 1, Width: 400, Height: 400}
}

type fixture struct {
	vp      *projection.Viewport
	surface *overlay.Surface
	ed      *editor.Editor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	vp := newViewport()
	s := overlay.NewSurface(vp)
	s.SetStyle("dark")
	s.MarkStyleLoaded()
	return &fixture{vp: vp, surface: s, ed: editor.New(editor.Options{Projector: vp, Engine: s})}
}

func (f *fixture) send(t *testing.T, msg editor.Msg) editor.Result {
	t.Helper()
	res := f.ed.Update(msg)
	if res.Changed {
		if err := overlay.Reconcile(f.surface, f.ed.DesiredOverlay()); err != nil {
			t.Fatalf("reconcile: %v", err)
		}
	}
	return res
}

// bayAt is a 20 x 10 px axis-aligned bay centred on pixel c.
func bayAt(vp *projection.Viewport, id, code string, c r2.Vec) bay.Bay {
	r := geom.Rect{Center: c, W: 20, H: 10}
	return bay.Bay{ID: id, Code: code, SiteID: "s1", Geometry: geom.PolygonFromRect(r, vp)}
}

func near(a, b r2.Vec) bool { return r2.Norm(r2.Sub(a, b)) < tol }

type mockStore struct {
	createFn func(ctx context.Context, siteID, code string, zoneID *string, g geom.Ring) (string, error)
	updateFn func(ctx context.Context, id, code string, zoneID *string, g geom.Ring) error
}

func (m *mockStore) ListZones(context.Context) ([]bay.Zone, error) { return nil, nil }
func (m *mockStore) ListBaysForZone(context.Context, *string) ([]bay.Bay, error) {
	return []bay.Bay{}, nil
}
func (m *mockStore) CreateBay(ctx context.Context, siteID, code string, zoneID *string, g geom.Ring) (string, error) {
	return m.createFn(ctx, siteID, code, zoneID, g)
}
func (m *mockStore) UpdateBay(ctx context.Context, id, code string, zoneID *string, g geom.Ring) error {
	return m.updateFn(ctx, id, code, zoneID, g)
}
func (m *mockStore) DeleteBay(context.Context, string) error { return nil }

// ---------------------------------------------------------------------------
// Undo
// ---------------------------------------------------------------------------

func TestUndoStackIsBounded(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < editor.MaxUndo+25; i++ {
		f.send(t, editor.CreateAtCenter{Center: r2.Vec{X: 200, Y: 200}, W: 20, H: 10})
	}
	if got := f.ed.UndoDepth(); got != editor.MaxUndo {
		t.Fatalf("undo depth = %d, want %d", got, editor.MaxUndo)
	}
}

func TestUndoRestoresStateBeforeFirstPush(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.ToggleEdit{})
	before := f.ed.Snapshot()

	f.send(t, editor.CreateAtCenter{Center: r2.Vec{X: 200, Y: 200}, W: 20, H: 10})
	f.send(t, editor.PointerDown{ID: 1, Pos: r2.Vec{X: 200, Y: 200}})
	f.send(t, editor.PointerMove{ID: 1, Pos: r2.Vec{X: 230, Y: 190}})
	f.send(t, editor.PointerUp{ID: 1, Pos: r2.Vec{X: 230, Y: 190}})
	f.send(t, editor.CancelDraft{})
	f.send(t, editor.BeginDraw{})

	k := f.ed.UndoDepth()
	if k != 3 {
		t.Fatalf("undo depth = %d, want 3", k)
	}
	for i := 0; i < k; i++ {
		f.send(t, editor.Undo{})
	}
	if !f.ed.Snapshot().Equal(before) {
		t.Fatalf("state after undo = %+v, want %+v", f.ed.Snapshot(), before)
	}
	// empty stack is a no-op
	if res := f.send(t, editor.Undo{}); res.Changed {
		t.Fatal("undo on empty stack reported a change")
	}
}

func TestUndoRestoresModeFlags(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.BeginDraw{})
	f.send(t, editor.PointerDown{ID: 1, Pos: r2.Vec{X: 100, Y: 100}})
	f.send(t, editor.PointerMove{ID: 1, Pos: r2.Vec{X: 150, Y: 130}})
	f.send(t, editor.PointerUp{ID: 1, Pos: r2.Vec{X: 150, Y: 130}})
	if f.ed.DrawMode() {
		t.Fatal("draw mode should end after a completed draw")
	}
	f.send(t, editor.Undo{})
	if !f.ed.DrawMode() {
		t.Fatal("undo should re-arm draw mode")
	}
	if _, ok := f.ed.Draft(); ok {
		t.Fatal("undo should drop the drawn draft")
	}
}

// ---------------------------------------------------------------------------
// Gestures
// ---------------------------------------------------------------------------

func TestDragBelowThresholdIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.CreateAtCenter{Center: r2.Vec{X: 200, Y: 200}, W: 20, H: 10})
	before, _ := f.ed.Draft()

	res := f.send(t, editor.PointerDown{ID: 1, Pos: r2.Vec{X: 200, Y: 200}})
	if !res.Captured {
		t.Fatal("pointer-down on the draft should be captured")
	}
	for _, p := range []r2.Vec{{X: 202, Y: 201}, {X: 197.5, Y: 202.9}, {X: 200, Y: 197.1}} {
		f.send(t, editor.PointerMove{ID: 1, Pos: p})
		if !f.ed.PanEnabled() {
			t.Fatalf("pan disabled by a %v move", p)
		}
	}
	f.send(t, editor.PointerUp{ID: 1, Pos: r2.Vec{X: 200, Y: 197.1}})
	after, _ := f.ed.Draft()
	if !slicesEqual(before.Ring, after.Ring) {
		t.Fatalf("geometry changed: %v -> %v", before.Ring, after.Ring)
	}
}

func TestDragDraftTranslates(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.CreateAtCenter{Center: r2.Vec{X: 200, Y: 200}, W: 20, H: 10})
	f.send(t, editor.PointerDown{ID: 1, Pos: r2.Vec{X: 200, Y: 200}})
	f.send(t, editor.PointerMove{ID: 1, Pos: r2.Vec{X: 240, Y: 180}})
	if f.ed.PanEnabled() {
		t.Fatal("pan should be disabled past the threshold")
	}
	if f.ed.State() != editor.Dragging || f.ed.Target() != editor.TargetDraft {
		t.Fatalf("state %v target %v", f.ed.State(), f.ed.Target())
	}
	f.send(t, editor.PointerUp{ID: 1, Pos: r2.Vec{X: 240, Y: 180}})
	if !f.ed.PanEnabled() || f.ed.State() != editor.Idle {
		t.Fatal("gesture should end on pointer-up")
	}
	r, ok := f.ed.ActiveRect()
	if !ok || !near(r.Center, r2.Vec{X: 240, Y: 180}) {
		t.Fatalf("moved rect = %+v", r)
	}
	if f.ed.UndoDepth() != 2 {
		t.Fatalf("one drag must be one undo step, depth %d", f.ed.UndoDepth())
	}
}

func TestPointerCancelKeepsGeometryAndUndoes(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.CreateAtCenter{Center: r2.Vec{X: 200, Y: 200}, W: 20, H: 10})
	before, _ := f.ed.Draft()

	f.send(t, editor.PointerDown{ID: 1, Pos: r2.Vec{X: 200, Y: 200}})
	f.send(t, editor.PointerMove{ID: 1, Pos: r2.Vec{X: 230, Y: 210}})
	if f.ed.PanEnabled() {
		t.Fatal("pan should be disabled past the threshold")
	}
	if res := f.send(t, editor.PointerCancel{ID: 1}); !res.Changed {
		t.Fatal("cancel of an active gesture should report a change")
	}
	if f.ed.State() != editor.Idle || !f.ed.PanEnabled() {
		t.Fatalf("after cancel: state %v, pan %v", f.ed.State(), f.ed.PanEnabled())
	}
	r, ok := f.ed.ActiveRect()
	if !ok || !near(r.Center, r2.Vec{X: 230, Y: 210}) {
		t.Fatalf("cancel dropped the pushed geometry: %+v", r)
	}

	f.send(t, editor.Undo{})
	after, _ := f.ed.Draft()
	if !slicesEqual(before.Ring, after.Ring) {
		t.Fatalf("undo after cancel: %v, want %v", after.Ring, before.Ring)
	}
}

func TestPointerCancelWhileDrawingNamesDraft(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.BeginDraw{})
	f.send(t, editor.PointerDown{ID: 1, Pos: r2.Vec{X: 100, Y: 100}})
	f.send(t, editor.PointerMove{ID: 1, Pos: r2.Vec{X: 140, Y: 120}})
	f.send(t, editor.PointerCancel{ID: 1})

	d, ok := f.ed.Draft()
	if !ok || d.Code != "A01" {
		t.Fatalf("draft after cancel = %+v, %v", d, ok)
	}
	if f.ed.State() != editor.Idle || f.ed.DrawMode() || !f.ed.PanEnabled() {
		t.Fatal("cancel should end the draw gesture")
	}
}

func TestPointerCancelIgnoresForeignPointer(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.CreateAtCenter{Center: r2.Vec{X: 200, Y: 200}, W: 20, H: 10})
	f.send(t, editor.PointerDown{ID: 1, Pos: r2.Vec{X: 200, Y: 200}})
	if res := f.send(t, editor.PointerCancel{ID: 2}); res.Changed {
		t.Fatal("foreign cancel changed the editor")
	}
	if f.ed.State() != editor.Dragging {
		t.Fatal("foreign cancel ended the gesture")
	}
}

func TestSecondPointerIgnored(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.CreateAtCenter{Center: r2.Vec{X: 200, Y: 200}, W: 20, H: 10})
	before, _ := f.ed.Draft()
	f.send(t, editor.PointerDown{ID: 1, Pos: r2.Vec{X: 200, Y: 200}})
	if res := f.send(t, editor.PointerDown{ID: 2, Pos: r2.Vec{X: 10, Y: 10}}); res.Captured {
		t.Fatal("second pointer-down captured")
	}
	f.send(t, editor.PointerMove{ID: 2, Pos: r2.Vec{X: 300, Y: 300}})
	f.send(t, editor.PointerUp{ID: 2, Pos: r2.Vec{X: 300, Y: 300}})
	if f.ed.State() != editor.Dragging {
		t.Fatal("foreign pointer-up ended the gesture")
	}
	after, _ := f.ed.Draft()
	if !slicesEqual(before.Ring, after.Ring) {
		t.Fatal("foreign pointer moved the draft")
	}
}

func TestDrawScenarioCreatesWithNullZone(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.BaysLoaded{Bays: []bay.Bay{bayAt(f.vp, "b0", "A09", r2.Vec{X: 30, Y: 30})}})

	a, b := [2]float64{0, 0}, [2]float64{0.001, 0.001}
	f.send(t, editor.BeginDraw{})
	if res := f.send(t, editor.PointerDown{ID: 1, Pos: f.vp.Project(a)}); !res.Captured || f.ed.PanEnabled() {
		t.Fatal("draw should capture the pointer and lock panning")
	}
	f.send(t, editor.PointerMove{ID: 1, Pos: f.vp.Project(b)})
	f.send(t, editor.PointerUp{ID: 1, Pos: f.vp.Project(b)})

	r, ok := f.ed.ActiveRect()
	if !ok {
		t.Fatal("drawn draft is not a rectangle")
	}
	want := 0.001 * projection.MetersPerDegree
	if math.Abs(r.W-want) > 0.01 || math.Abs(r.H-want) > 0.01 {
		t.Fatalf("size %.3f x %.3f, want %.3f", r.W, r.H, want)
	}
	d, _ := f.ed.Draft()
	if d.Code != "A10" {
		t.Fatalf("draft code = %q", d.Code)
	}

	var created bool
	store := &mockStore{createFn: func(_ context.Context, siteID, code string, zoneID *string, g geom.Ring) (string, error) {
		created = true
		if zoneID != nil {
			t.Errorf("zone = %q, want nil", *zoneID)
		}
		if code != "A10" || siteID != "s1" || len(g) != 5 {
			t.Errorf("create(%q, %q, %d points)", siteID, code, len(g))
		}
		return "new", nil
	}}
	in, ok := f.ed.DraftInput()
	if !ok {
		t.Fatal("no draft input")
	}
	saved, err := bay.NewService(store).SaveDraft(context.Background(), f.ed.Scope(), in)
	if err != nil || !created {
		t.Fatalf("save: %v", err)
	}
	f.send(t, editor.DraftSaved{Bays: saved.Bays})
	if _, ok := f.ed.Draft(); ok {
		t.Fatal("draft should be cleared after save")
	}
}

func TestClickInDrawModeDrawsNothing(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.BeginDraw{})
	f.send(t, editor.PointerDown{ID: 1, Pos: r2.Vec{X: 100, Y: 100}})
	f.send(t, editor.PointerUp{ID: 1, Pos: r2.Vec{X: 100, Y: 100}})
	if _, ok := f.ed.Draft(); ok {
		t.Fatal("a click should not leave a draft")
	}
	if !f.ed.DrawMode() {
		t.Fatal("draw mode should stay on after an empty draw")
	}
}

func TestPointerDownSelectsBayThroughHitLayer(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.BaysLoaded{Bays: []bay.Bay{
		bayAt(f.vp, "b1", "A01", r2.Vec{X: 100, Y: 100}),
		bayAt(f.vp, "b2", "A02", r2.Vec{X: 300, Y: 300}),
	}})
	if res := f.send(t, editor.PointerDown{ID: 1, Pos: r2.Vec{X: 50, Y: 50}}); res.Captured {
		t.Fatal("empty map should not capture")
	}
	res := f.send(t, editor.PointerDown{ID: 1, Pos: r2.Vec{X: 302, Y: 299}})
	if !res.Captured {
		t.Fatal("bay hit should capture")
	}
	sel, ok := f.ed.Selected()
	if !ok || sel.ID != "b2" {
		t.Fatalf("selected %+v", sel)
	}
	f.send(t, editor.PointerUp{ID: 1, Pos: r2.Vec{X: 302, Y: 299}})
	if _, ok := f.surface.SourceData(editor.SourceEdit); !ok {
		t.Fatal("edit source missing after reconcile")
	}
}

func TestDraftBlocksBayHits(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.BaysLoaded{Bays: []bay.Bay{bayAt(f.vp, "b1", "A01", r2.Vec{X: 100, Y: 100})}})
	f.send(t, editor.CreateAtCenter{Center: r2.Vec{X: 300, Y: 300}, W: 20, H: 10})
	if res := f.send(t, editor.PointerDown{ID: 1, Pos: r2.Vec{X: 100, Y: 100}}); res.Captured {
		t.Fatal("bay hit while a draft exists")
	}
	if res := f.send(t, editor.Select{ID: "b1"}); !errors.Is(res.Err, editor.ErrDraftPending) {
		t.Fatalf("select with draft: %v", res.Err)
	}
}

// ---------------------------------------------------------------------------
// Handles
// ---------------------------------------------------------------------------

func TestRotateSelectedBayAndSave(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.BaysLoaded{Bays: []bay.Bay{bayAt(f.vp, "b1", "A01", r2.Vec{X: 200, Y: 200})}})
	f.send(t, editor.Select{ID: "b1"})
	f.send(t, editor.ToggleEdit{})

	hs := f.ed.Handles()
	if len(hs) != 5 || hs[4].Kind != editor.RotateHandle {
		t.Fatalf("handles = %+v", hs)
	}
	base, _ := f.ed.ActiveRect()
	if res := f.send(t, editor.PointerDown{ID: 1, Pos: hs[4].Pos}); !res.Captured {
		t.Fatal("rotate handle not hit")
	}
	dir := deg(47) - math.Pi/2
	p := r2.Add(base.Center, r2.Vec{X: 60 * math.Cos(dir), Y: 60 * math.Sin(dir)})
	f.send(t, editor.PointerMove{ID: 1, Pos: p})
	f.send(t, editor.PointerUp{ID: 1, Pos: p})

	r, ok := f.ed.ActiveRect()
	if !ok {
		t.Fatal("rotated edit is not a rectangle")
	}
	if math.Abs(geom.NormalizeAngle(r.Angle)-deg(47)) > 1e-9 {
		t.Fatalf("angle = %.9f°, want 47°", r.Angle*180/math.Pi)
	}
	if math.Abs(r.W-20) > tol || math.Abs(r.H-10) > tol {
		t.Fatalf("rotation changed size: %+v", r)
	}

	var gotID string
	var gotGeom geom.Ring
	store := &mockStore{updateFn: func(_ context.Context, id, _ string, _ *string, g geom.Ring) error {
		gotID, gotGeom = id, g
		return nil
	}}
	id, in, ok := f.ed.EditInput()
	if !ok {
		t.Fatal("no edit input")
	}
	if _, err := bay.NewService(store).SaveSelected(context.Background(), f.ed.Scope(), id, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if gotID != "b1" {
		t.Fatalf("update id = %q", gotID)
	}
	stored, ok := geom.RectFromRing(gotGeom, f.vp)
	if !ok || math.Abs(geom.NormalizeAngle(stored.Angle)-deg(47)) > 1e-9 {
		t.Fatalf("stored polygon angle = %v", stored.Angle*180/math.Pi)
	}
}

func TestCornerDragKeepsOppositeCorner(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.ImportDraft{Ring: geom.PolygonFromRect(geom.Rect{Center: r2.Vec{X: 200, Y: 200}, W: 40, H: 20, Angle: deg(30)}, f.vp)})
	f.send(t, editor.ToggleEdit{})

	base, _ := f.ed.ActiveRect()
	opp := base.Corners()[0]
	h := f.ed.Handles()[2]
	f.send(t, editor.PointerDown{ID: 1, Pos: h.Pos})
	target := r2.Add(h.Pos, r2.Vec{X: 25, Y: 14})
	f.send(t, editor.PointerMove{ID: 1, Pos: target})
	f.send(t, editor.PointerUp{ID: 1, Pos: target})

	r, ok := f.ed.ActiveRect()
	if !ok {
		t.Fatal("resized draft is not a rectangle")
	}
	if !near(r.Corners()[0], opp) {
		t.Fatalf("opposite corner moved: %v -> %v", opp, r.Corners()[0])
	}
	if math.Abs(geom.NormalizeAngle(r.Angle)-deg(30)) > 1e-9 {
		t.Fatalf("resize changed angle to %v", r.Angle)
	}
}

func hasCorner(r geom.Rect, p r2.Vec) bool {
	for _, c := range r.Corners() {
		if near(c, p) {
			return true
		}
	}
	return false
}

func TestResizeFromCornerProperty(t *testing.T) {
	bases := []geom.Rect{
		{Center: r2.Vec{X: 50, Y: 50}, W: 30, H: 12},
		{Center: r2.Vec{X: -10, Y: 5}, W: 8, H: 40, Angle: deg(73)},
		{Center: r2.Vec{X: 0, Y: 0}, W: 100, H: 100, Angle: deg(-140)},
	}
	drags := []r2.Vec{{X: 0, Y: 0}, {X: 120, Y: -30}, {X: 51, Y: 49}, {X: -200, Y: 300}}
	for _, base := range bases {
		for i := 0; i < 4; i++ {
			opp := base.Corners()[(i+2)%4]
			for _, p := range drags {
				r := editor.ResizeFromCorner(base, i, p)
				if !hasCorner(r, opp) {
					t.Fatalf("base %+v corner %d to %v: opposite corner moved", base, i, p)
				}
				if r.W < geom.MinSize-tol || r.H < geom.MinSize-tol || r.Angle != base.Angle {
					t.Fatalf("bad resize result %+v", r)
				}
				// away from the size floor the centre is the midpoint and p a corner
				local := r2.Rotate(r2.Sub(p, opp), -base.Angle, r2.Vec{})
				if math.Abs(local.X) >= geom.MinSize && math.Abs(local.Y) >= geom.MinSize {
					if !near(r.Center, r2.Scale(0.5, r2.Add(p, opp))) || !hasCorner(r, p) {
						t.Fatalf("base %+v corner %d to %v: got %+v", base, i, p, r)
					}
				}
			}
		}
	}
}

func TestResizeFromCornerAcrossOppositeCorner(t *testing.T) {
	base := geom.Rect{W: 20, H: 10}
	p := r2.Vec{X: 30, Y: 20}
	r := editor.ResizeFromCorner(base, 0, p)

	if !near(r.Center, r2.Vec{X: 20, Y: 12.5}) {
		t.Fatalf("center = %v, want midpoint {20 12.5}", r.Center)
	}
	if math.Abs(r.W-20) > tol || math.Abs(r.H-15) > tol {
		t.Fatalf("size = %vx%v, want 20x15", r.W, r.H)
	}
	if !hasCorner(r, p) || !hasCorner(r, r2.Vec{X: 10, Y: 5}) {
		t.Fatalf("corners %v miss the pointer or the fixed corner", r.Corners())
	}
}

func TestResizeFromCornerFloorFollowsPointerSide(t *testing.T) {
	base := geom.Rect{W: 20, H: 10}
	// corner 0 is (-10,-5); the fixed corner is (10,5)
	r := editor.ResizeFromCorner(base, 0, r2.Vec{X: 12, Y: -20})
	if math.Abs(r.W-geom.MinSize) > tol {
		t.Fatalf("width = %v, want floor %v", r.W, geom.MinSize)
	}
	if !near(r.Center, r2.Vec{X: 13, Y: -7.5}) {
		t.Fatalf("center = %v, want {13 -7.5}", r.Center)
	}
}

func TestSnapAngleProperty(t *testing.T) {
	for d := -360.0; d <= 360; d += 0.37 {
		raw := deg(d)
		got := editor.SnapAngle(raw)
		quarter := math.Round(raw/(math.Pi/2)) * (math.Pi / 2)
		if math.Abs(raw-quarter) <= deg(3) {
			if got != quarter {
				t.Fatalf("%.2f° snapped to %v, want %v", d, got, quarter)
			}
			continue
		}
		steps := got / deg(5)
		if math.Abs(steps-math.Round(steps)) > 1e-9 {
			t.Fatalf("%.2f° snapped to %.4f°, not a 5° multiple", d, got*180/math.Pi)
		}
	}
}

func TestRotateToSnaps(t *testing.T) {
	base := geom.Rect{Center: r2.Vec{X: 0, Y: 0}, W: 10, H: 10}
	dir := deg(92) - math.Pi/2
	p := r2.Vec{X: math.Cos(dir) * 40, Y: math.Sin(dir) * 40}
	if got := editor.RotateTo(base, p, true).Angle; math.Abs(got-math.Pi/2) > 1e-12 {
		t.Fatalf("angle = %v°", got*180/math.Pi)
	}
	if got := editor.RotateTo(base, p, false).Angle; math.Abs(got-deg(92)) > 1e-9 {
		t.Fatalf("unsnapped angle = %v°", got*180/math.Pi)
	}
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func TestCancelDraftIsUndoable(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.CreateAtCenter{Center: r2.Vec{X: 200, Y: 200}, W: 20, H: 10})
	f.send(t, editor.CancelDraft{})
	if _, ok := f.ed.Draft(); ok {
		t.Fatal("draft should be gone")
	}
	f.send(t, editor.Undo{})
	if _, ok := f.ed.Draft(); !ok {
		t.Fatal("undo should bring the draft back")
	}
}

func TestImportRejectsNonRectangle(t *testing.T) {
	f := newFixture(t)
	tri := geom.Ring{{0, 0}, {0.0002, 0}, {0.0001, 0.0002}, {0, 0}}
	if res := f.send(t, editor.ImportDraft{Ring: tri}); !errors.Is(res.Err, editor.ErrNotRectangle) {
		t.Fatalf("expected ErrNotRectangle, got %v", res.Err)
	}
	if f.ed.UndoDepth() != 0 {
		t.Fatal("rejected import pushed undo")
	}
}

func TestSetCodeNeedsActiveShape(t *testing.T) {
	f := newFixture(t)
	if res := f.send(t, editor.SetCode{Code: "B1"}); !errors.Is(res.Err, editor.ErrNothingActive) {
		t.Fatalf("expected ErrNothingActive, got %v", res.Err)
	}
}

func TestSelectZoneClearsSelection(t *testing.T) {
	f := newFixture(t)
	f.send(t, editor.BaysLoaded{Bays: []bay.Bay{bayAt(f.vp, "b1", "A01", r2.Vec{X: 100, Y: 100})}})
	f.send(t, editor.Select{ID: "b1"})
	z := "z1"
	f.send(t, editor.SelectZone{ZoneID: &z})
	if _, ok := f.ed.Selected(); ok {
		t.Fatal("zone change should clear the selection")
	}
	if got := f.ed.ZoneID(); got == nil || *got != "z1" {
		t.Fatalf("zone = %v", got)
	}
}

func slicesEqual(a, b geom.Ring) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
