package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/adapters/filestore"
	"baymap/internal/bay"
	"baymap/internal/editor"
	"baymap/internal/geom"
	"baymap/internal/overlay"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type mockStore struct {
	createFn func(ctx context.Context, siteID, code string, zoneID *string, g geom.Ring) (string, error)
}

func (m *mockStore) ListZones(context.Context) ([]bay.Zone, error) { return nil, nil }
func (m *mockStore) ListBaysForZone(context.Context, *string) ([]bay.Bay, error) {
	return []bay.Bay{}, nil
}
func (m *mockStore) CreateBay(ctx context.Context, siteID, code string, zoneID *string, g geom.Ring) (string, error) {
	return m.createFn(ctx, siteID, code, zoneID, g)
}
func (m *mockStore) UpdateBay(context.Context, string, string, *string, geom.Ring) error {
	return errors.New("not implemented")
}
func (m *mockStore) DeleteBay(context.Context, string) error { return errors.New("not implemented") }

func key(s string) tea.KeyMsg {
	switch s {
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mouse(x, y int, a tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: a, Button: tea.MouseButtonLeft}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return nm, cmd
}

// run executes a single (non-batch) command and feeds its message back.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, _ = send(t, m, cmd())
	return m
}

// newTestModel is a 100x40 terminal with the map style loaded. The map is
// 99x37 cells, i.e. 198x148 pixels at 0.1 m per pixel.
func newTestModel(t *testing.T, store bay.Store, opts ...bay.Option) Model {
	t.Helper()
	m := New(Options{
		Service:        bay.NewService(store, opts...),
		Center:         [2]float64{0.001, 0.001},
		MetersPerPixel: 0.1,
		Snap:           true,
	})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	_ = m.Init()
	m, _ = send(t, m, styleLoadedMsg{style: m.surface.Style()})
	m, _ = send(t, m, passMsg{pass: overlay.Pass{Seq: m.watchdog.Seq()}})
	if !m.surface.HasSource(editor.SourceBays) {
		t.Fatal("overlay not established")
	}
	return m
}

// seedBay stores a 40 x 40 px bay centred on the map.
func seedBay(t *testing.T, m Model, store bay.Store, code string) string {
	t.Helper()
	r := geom.Rect{Center: r2.Vec{X: m.vp.Width / 2, Y: m.vp.Height / 2}, W: 40, H: 40}
	id, err := store.CreateBay(context.Background(), "s1", code, nil, geom.PolygonFromRect(r, m.vp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return id
}

func fileStore(t *testing.T) *filestore.Store {
	return filestore.New(filepath.Join(t.TempDir(), "bays.geojson"))
}

// ---------------------------------------------------------------------------
// Draw and save
// ---------------------------------------------------------------------------

func TestDrawAndSave(t *testing.T) {
	store := fileStore(t)
	m := newTestModel(t, store, bay.WithDefaultSite("s1"))

	m, _ = send(t, m, key("d"))
	if !m.ed.DrawMode() {
		t.Fatal("draw mode not enabled")
	}
	m, _ = send(t, m, mouse(20, 10, tea.MouseActionPress))
	m, _ = send(t, m, mouse(40, 20, tea.MouseActionMotion))
	m, _ = send(t, m, mouse(40, 20, tea.MouseActionRelease))

	d, ok := m.ed.Draft()
	if !ok || d.Code != "A01" {
		t.Fatalf("expected draft A01, got %+v (%v)", d, ok)
	}
	if m.ed.DrawMode() {
		t.Fatal("draw mode should end after a rectangle")
	}
	if m.panning {
		t.Fatal("drawing must not pan")
	}

	m, cmd := send(t, m, key("ctrl+s"))
	if !m.saving {
		t.Fatal("expected save in flight")
	}
	if m2, cmd2 := send(t, m, key("ctrl+s")); cmd2 != nil || m2.Status() != "save in progress" {
		t.Fatalf("second save must wait, status %q", m2.Status())
	}
	m = run(t, m, cmd)

	if _, ok := m.ed.Draft(); ok {
		t.Fatal("draft should be cleared after save")
	}
	bays := m.ed.Bays()
	if len(bays) != 1 || bays[0].Code != "A01" || bays[0].SiteID != "s1" {
		t.Fatalf("unexpected bays: %+v", bays)
	}
	if !strings.Contains(m.Status(), "save A01: ok") {
		t.Fatalf("unexpected status %q", m.Status())
	}
	if len(m.l.Items()) != 1 {
		t.Fatalf("sidebar not refreshed: %d items", len(m.l.Items()))
	}
	stored, err := store.ListBaysForZone(context.Background(), nil)
	if err != nil || len(stored) != 1 {
		t.Fatalf("expected 1 stored bay, got %d (%v)", len(stored), err)
	}
}

func TestSaveErrorKeepsDraft(t *testing.T) {
	calls := 0
	store := &mockStore{createFn: func(context.Context, string, string, *string, geom.Ring) (string, error) {
		calls++
		return "", errors.New("boom")
	}}
	m := newTestModel(t, store, bay.WithDefaultSite("s1"))

	m, _ = send(t, m, key("n"))
	m, cmd := send(t, m, key("ctrl+s"))
	m = run(t, m, cmd)

	if calls != 1 {
		t.Fatalf("expected one create call, got %d", calls)
	}
	if m.Status() != "save error: create bay: boom" || !m.statusErr {
		t.Fatalf("unexpected status %q", m.Status())
	}
	if _, ok := m.ed.Draft(); !ok {
		t.Fatal("draft must survive a failed save")
	}
	if m.saving {
		t.Fatal("saving flag not reset")
	}
}

func TestSaveWithoutSiteNeverCallsStore(t *testing.T) {
	store := &mockStore{createFn: func(context.Context, string, string, *string, geom.Ring) (string, error) {
		t.Fatal("store must not be called")
		return "", nil
	}}
	m := newTestModel(t, store)

	m, _ = send(t, m, key("n"))
	m, cmd := send(t, m, key("ctrl+s"))
	m = run(t, m, cmd)

	if !strings.HasPrefix(m.Status(), "save error: ") || !strings.Contains(m.Status(), bay.ErrNoSite.Error()) {
		t.Fatalf("unexpected status %q", m.Status())
	}
}

func TestSaveNothing(t *testing.T) {
	m := newTestModel(t, fileStore(t))
	m, cmd := send(t, m, key("ctrl+s"))
	if cmd != nil {
		t.Fatal("nothing to save must not issue a command")
	}
	if m.Status() != "save error: "+editor.ErrNothingActive.Error() {
		t.Fatalf("unexpected status %q", m.Status())
	}
}

// ---------------------------------------------------------------------------
// Selection, delete, live reload
// ---------------------------------------------------------------------------

func TestClickSelectsBay(t *testing.T) {
	store := fileStore(t)
	m := newTestModel(t, store)
	id := seedBay(t, m, store, "A01")
	m = run(t, m, loadBays(m.svc, nil, m.storeTimeout))

	// cell (49, 18) of the map is pixel (99, 74), the map centre
	m, _ = send(t, m, mouse(49, 19, tea.MouseActionPress))
	m, _ = send(t, m, mouse(49, 19, tea.MouseActionRelease))

	sel, ok := m.ed.Selected()
	if !ok || sel.ID != id {
		t.Fatalf("expected %s selected, got %+v (%v)", id, sel, ok)
	}
	if m.panning {
		t.Fatal("a bay press must not pan")
	}
}

func TestSidebarSelectAndDelete(t *testing.T) {
	store := fileStore(t)
	m := newTestModel(t, store)
	seedBay(t, m, store, "A01")
	m = run(t, m, loadBays(m.svc, nil, m.storeTimeout))

	m, _ = send(t, m, key("tab"))
	m, _ = send(t, m, key("enter"))
	if sel, ok := m.ed.Selected(); !ok || sel.Code != "A01" {
		t.Fatalf("sidebar enter did not select: %+v", sel)
	}

	m, cmd := send(t, m, key("delete"))
	m = run(t, m, cmd)
	if len(m.ed.Bays()) != 0 {
		t.Fatalf("expected no bays, got %d", len(m.ed.Bays()))
	}
	if _, ok := m.ed.Selected(); ok {
		t.Fatal("selection should clear on delete")
	}
	if m.Status() != "delete A01: ok" {
		t.Fatalf("unexpected status %q", m.Status())
	}
}

func TestDeleteWithoutSelection(t *testing.T) {
	m := newTestModel(t, fileStore(t))
	m, cmd := send(t, m, key("delete"))
	if cmd != nil {
		t.Fatal("expected no command")
	}
	if m.Status() != "delete error: "+bay.ErrNoSelection.Error() {
		t.Fatalf("unexpected status %q", m.Status())
	}
}

func TestBayEventReloads(t *testing.T) {
	ch := make(chan bay.Event, 1)
	m := New(Options{Service: bay.NewService(fileStore(t)), Events: ch})
	m, cmd := send(t, m, bayEventMsg{ev: bay.Event{Kind: bay.Created, Code: "A07"}})
	if cmd == nil {
		t.Fatal("expected reload command")
	}
	if m.Status() != "bay A07 created, reloading" {
		t.Fatalf("unexpected status %q", m.Status())
	}
}

// ---------------------------------------------------------------------------
// Map interaction
// ---------------------------------------------------------------------------

func TestDragOnEmptyMapPans(t *testing.T) {
	m := newTestModel(t, fileStore(t))
	before := m.vp.Center

	m, _ = send(t, m, mouse(30, 10, tea.MouseActionPress))
	if !m.panning {
		t.Fatal("press on empty map should start panning")
	}
	m, _ = send(t, m, mouse(35, 10, tea.MouseActionMotion))
	m, _ = send(t, m, mouse(35, 10, tea.MouseActionRelease))

	if m.panning {
		t.Fatal("release should end panning")
	}
	if m.vp.Center[0] >= before[0] {
		t.Fatalf("dragging right should move the view west: %v -> %v", before, m.vp.Center)
	}
	if m.vp.Center[1] != before[1] {
		t.Fatalf("horizontal drag changed latitude: %v -> %v", before, m.vp.Center)
	}
}

func TestFocusLossCancelsDrag(t *testing.T) {
	m := newTestModel(t, fileStore(t))
	m, _ = send(t, m, key("n"))
	before, _ := m.ed.Draft()

	// cell (49,19) is the map centre, inside the new draft
	m, _ = send(t, m, mouse(49, 19, tea.MouseActionPress))
	m, _ = send(t, m, mouse(55, 19, tea.MouseActionMotion))
	if m.ed.State() != editor.Dragging || m.ed.PanEnabled() {
		t.Fatalf("drag not active: state %v", m.ed.State())
	}

	m, _ = send(t, m, tea.BlurMsg{})
	if m.ed.State() != editor.Idle || !m.ed.PanEnabled() {
		t.Fatalf("focus loss left state %v, pan %v", m.ed.State(), m.ed.PanEnabled())
	}
	if m.Status() != "gesture cancelled" {
		t.Fatalf("unexpected status %q", m.Status())
	}
	moved, _ := m.ed.Draft()
	if moved.Ring[0] == before.Ring[0] {
		t.Fatal("cancel dropped the dragged geometry")
	}

	m, _ = send(t, m, key("u"))
	restored, _ := m.ed.Draft()
	if restored.Ring[0] != before.Ring[0] {
		t.Fatalf("undo after cancel: %v, want %v", restored.Ring[0], before.Ring[0])
	}
}

func TestEscCancelsPan(t *testing.T) {
	m := newTestModel(t, fileStore(t))
	m, _ = send(t, m, mouse(30, 10, tea.MouseActionPress))
	if !m.panning {
		t.Fatal("press on empty map should start panning")
	}
	m, _ = send(t, m, key("esc"))
	if m.panning {
		t.Fatal("esc should end panning")
	}
}

func TestWheelZoomKeepsCursorPoint(t *testing.T) {
	m := newTestModel(t, fileStore(t))
	p, _ := m.layout().toMap(10, 5)
	ll := m.vp.Unproject(p)
	mpp := m.vp.MetersPerPixel

	m, _ = send(t, m, tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})

	if m.vp.MetersPerPixel >= mpp {
		t.Fatal("wheel up should zoom in")
	}
	q := m.vp.Project(ll)
	if r2.Norm(r2.Sub(p, q)) > 1e-6 {
		t.Fatalf("point under cursor moved from %v to %v", p, q)
	}
}

func TestUndoKey(t *testing.T) {
	m := newTestModel(t, fileStore(t))
	m, _ = send(t, m, key("n"))
	if _, ok := m.ed.Draft(); !ok {
		t.Fatal("expected a draft")
	}
	m, _ = send(t, m, key("u"))
	if _, ok := m.ed.Draft(); ok {
		t.Fatal("undo should remove the created draft")
	}
	m, _ = send(t, m, key("u"))
	if m.Status() != "nothing to undo" {
		t.Fatalf("unexpected status %q", m.Status())
	}
}

// ---------------------------------------------------------------------------
// Zones, code entry, WKT import
// ---------------------------------------------------------------------------

func TestZoneCycling(t *testing.T) {
	store := fileStore(t)
	zid, err := store.AddZone(context.Background(), "s1", "North")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := newTestModel(t, store)
	m = run(t, m, loadZones(m.svc, m.storeTimeout))

	m, cmd := send(t, m, key("z"))
	if z := m.ed.ZoneID(); z == nil || *z != zid {
		t.Fatalf("expected zone %s, got %v", zid, z)
	}
	m = run(t, m, cmd)
	if m.Status() != "loaded 0 bays (zone North)" {
		t.Fatalf("unexpected status %q", m.Status())
	}

	m, _ = send(t, m, key("z"))
	if m.ed.ZoneID() != nil {
		t.Fatal("cycling past the last zone should show all zones")
	}
}

func TestCodeEntry(t *testing.T) {
	m := newTestModel(t, fileStore(t))
	m, _ = send(t, m, key("c"))
	if m.codeMode || !m.statusErr {
		t.Fatal("code entry needs an active shape")
	}

	m, _ = send(t, m, key("n"))
	m, _ = send(t, m, key("c"))
	if !m.codeMode || m.ti.Value() != "A01" {
		t.Fatalf("code entry should start with the draft code, got %q", m.ti.Value())
	}
	m.ti.SetValue(" B7 ")
	m, _ = send(t, m, key("enter"))
	if d, _ := m.ed.Draft(); d.Code != "B7" {
		t.Fatalf("expected code B7, got %q", d.Code)
	}
	if m.codeMode {
		t.Fatal("enter should close code entry")
	}
}

func TestWKTImport(t *testing.T) {
	m := newTestModel(t, fileStore(t))

	m, _ = send(t, m, key("w"))
	if !m.pasteMode {
		t.Fatal("expected paste mode")
	}
	m.ta.SetValue("POLYGON((0.001 0.001, 0.001 0.001, 0.00103 0.00106, 0.001 0.001))")
	m, _ = send(t, m, key("enter"))
	if _, ok := m.ed.Draft(); ok || !strings.Contains(m.Status(), "error") {
		t.Fatalf("degenerate polygon imported, status %q", m.Status())
	}

	m.ta.SetValue("POLYGON((0.001 0.001, 0.00103 0.001, 0.00103 0.00106, 0.001 0.00106, 0.001 0.001))")
	m, _ = send(t, m, key("enter"))
	if _, ok := m.ed.Draft(); !ok {
		t.Fatalf("rectangle not imported, status %q", m.Status())
	}
	if m.pasteMode {
		t.Fatal("import should leave paste mode")
	}
}

// ---------------------------------------------------------------------------
// Theme switch and watchdog
// ---------------------------------------------------------------------------

func TestThemeSwitchRestoresOverlay(t *testing.T) {
	store := fileStore(t)
	m := newTestModel(t, store)
	seedBay(t, m, store, "A01")
	m = run(t, m, loadBays(m.svc, nil, m.storeTimeout))

	old := m.watchdog.Seq()
	m, cmd := send(t, m, key("t"))
	if cmd == nil || m.theme != "light" {
		t.Fatalf("expected switch to light, got %q", m.theme)
	}
	if m.surface.HasSource(editor.SourceBays) {
		t.Fatal("style switch should drop the overlay")
	}
	seq := m.watchdog.Seq()

	// not loaded yet: retry
	m, cmd = send(t, m, passMsg{pass: overlay.Pass{Seq: seq}})
	if cmd == nil {
		t.Fatal("expected a retry")
	}
	// superseded generation: nothing
	if _, cmd = send(t, m, passMsg{pass: overlay.Pass{Seq: old}}); cmd != nil {
		t.Fatal("stale pass must stop")
	}
	// a late load of the previous style is ignored
	m, _ = send(t, m, styleLoadedMsg{style: "dark"})
	if m.surface.StyleLoaded() {
		t.Fatal("stale style load accepted")
	}

	m, _ = send(t, m, styleLoadedMsg{style: "light"})
	m, cmd = send(t, m, passMsg{pass: overlay.Pass{Seq: seq, Attempt: 1}})
	if cmd != nil {
		t.Fatal("expected the pass to finish")
	}
	hits, ok := m.surface.SourceData(editor.SourceBaysHit)
	if !ok || len(hits) != 1 {
		t.Fatalf("overlay not restored: %v", hits)
	}
}

func TestViewRendersBayLabel(t *testing.T) {
	store := fileStore(t)
	m := newTestModel(t, store)
	seedBay(t, m, store, "A01")
	m = run(t, m, loadBays(m.svc, nil, m.storeTimeout))

	v := m.View()
	if !strings.Contains(v, "A01") {
		t.Fatal("bay label not rendered")
	}
	if !strings.Contains(v, "baymap") {
		t.Fatal("header missing")
	}
	if (Model{}).View() != "" {
		t.Fatal("unsized model should render nothing")
	}
}

func TestNextZoneAndTheme(t *testing.T) {
	zones := []bay.Zone{{ID: "a"}, {ID: "b"}}
	z := nextZone(zones, nil)
	if z == nil || *z != "a" {
		t.Fatalf("expected a, got %v", z)
	}
	z = nextZone(zones, z)
	if z == nil || *z != "b" {
		t.Fatalf("expected b, got %v", z)
	}
	if nextZone(zones, z) != nil {
		t.Fatal("expected all zones after the last")
	}
	if nextZone(nil, nil) != nil {
		t.Fatal("no zones means all")
	}
	if nextTheme("contrast") != "dark" || nextTheme("bogus") != "dark" || nextTheme("dark") != "light" {
		t.Fatal("unexpected theme cycle")
	}
}
