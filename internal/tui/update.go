package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/bay"
	"baymap/internal/editor"
	"baymap/internal/geom"
	"baymap/internal/metrics"
	"baymap/internal/overlay"
)

const (
	zoomStep = 1.25
	// panFraction of the map width is moved per arrow key.
	panFraction = 0.1
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	case tea.BlurMsg:
		// the release will never arrive once the terminal loses focus
		m.cancelPointer()
		return m, nil

	case zonesMsg:
		if msg.err != nil {
			m.setError("zones error: ", msg.err)
			return m, nil
		}
		m.dispatch(editor.ZonesLoaded{Zones: msg.zones})
		m.refreshBays()
		return m, nil
	case baysMsg:
		if msg.err != nil {
			m.setError("load error: ", msg.err)
			return m, nil
		}
		m.dispatch(editor.BaysLoaded{Bays: msg.bays})
		m.refreshBays()
		m.fitIfNeeded()
		m.setStatus(fmt.Sprintf("loaded %d bays (%s)", len(msg.bays), m.zoneTitle()))
		return m, nil
	case savedMsg:
		return m.handleSaved(msg), nil
	case bayEventMsg:
		name := msg.ev.Code
		if name == "" {
			name = msg.ev.BayID
		}
		m.setStatus(fmt.Sprintf("bay %s %s, reloading", name, msg.ev.Kind))
		return m, tea.Batch(loadBays(m.svc, m.ed.ZoneID(), m.storeTimeout), waitEvent(m.events))

	case styleLoadedMsg:
		// a superseded style never finishes loading
		if msg.style == m.surface.Style() {
			m.surface.MarkStyleLoaded()
		}
		return m, nil
	case passMsg:
		return m.handlePass(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// If list is visible and filtering, send keys to list and ignore global commands
	if m.showSidebar && m.l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	if m.pasteMode {
		return m.handlePasteKey(msg)
	}
	if m.codeMode {
		return m.handleCodeKey(msg)
	}
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "d":
		if m.ed.DrawMode() {
			m.dispatch(editor.CancelDraw{})
			m.setStatus("draw mode off")
		} else {
			m.dispatch(editor.BeginDraw{})
			m.setStatus("draw: drag a rectangle on the map")
		}
	case "n":
		mpp := m.vp.MetersPerPixel
		res := m.dispatch(editor.CreateAtCenter{
			Center: r2.Vec{X: m.vp.Width / 2, Y: m.vp.Height / 2},
			W:      newBayWidthMeters / mpp,
			H:      newBayHeightMeters / mpp,
		})
		if res.Err == nil {
			m.setStatus("new draft at centre")
		}
	case "x":
		if res := m.dispatch(editor.CancelDraft{}); res.Changed {
			m.setStatus("draft discarded")
		}
	case "e":
		m.dispatch(editor.ToggleEdit{})
		m.setStatus(fmt.Sprintf("edit handles: %v", m.ed.EditMode()))
	case "s":
		m.dispatch(editor.ToggleSnap{})
		m.setStatus(fmt.Sprintf("rotation snap: %v", m.ed.SnapEnabled()))
	case "ctrl+s":
		return m.save()
	case "delete":
		return m.remove()
	case "ctrl+z", "u":
		if res := m.dispatch(editor.Undo{}); res.Changed {
			m.setStatus(fmt.Sprintf("undo (%d left)", m.ed.UndoDepth()))
		} else {
			m.setStatus("nothing to undo")
		}
	case "esc":
		if m.panning || m.ed.State() != editor.Idle {
			m.cancelPointer()
		} else if m.ed.DrawMode() {
			m.dispatch(editor.CancelDraw{})
			m.setStatus("draw mode off")
		} else {
			m.dispatch(editor.Deselect{})
		}
	case "up", "down":
		if m.showSidebar {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		step := m.vp.Height * panFraction
		if msg.String() == "up" {
			step = -step
		}
		m.pan(0, step)
	case "left":
		m.pan(-m.vp.Width*panFraction, 0)
	case "right":
		m.pan(m.vp.Width*panFraction, 0)
	case "+", "=":
		m.zoomAt(r2.Vec{X: m.vp.Width / 2, Y: m.vp.Height / 2}, zoomStep)
	case "-", "_":
		m.zoomAt(r2.Vec{X: m.vp.Width / 2, Y: m.vp.Height / 2}, 1/zoomStep)
	case "f":
		if bb, ok := m.extent(); ok {
			m.vp.Fit(bb)
			m.syncOverlay()
		}
	case "tab":
		m.showSidebar = !m.showSidebar
		m.resize()
	case "enter":
		if m.showSidebar {
			if it, ok := m.l.SelectedItem().(bayItem); ok {
				m.selectBay(it.id)
			}
		}
	case "a":
		m.showAttrs = !m.showAttrs
		if m.showAttrs {
			m.refreshAttrs()
		}
	case "h":
		m.helpVisible = !m.helpVisible
	case "z":
		zid := nextZone(m.ed.Zones(), m.ed.ZoneID())
		m.dispatch(editor.SelectZone{ZoneID: zid})
		m.setStatus("loading " + m.zoneTitle())
		return m, loadBays(m.svc, zid, m.storeTimeout)
	case "t":
		name := nextTheme(m.theme)
		m.setStatus("theme: " + name)
		return m, m.switchTheme(name)
	case "c":
		s, ok := m.ed.Active()
		if !ok {
			m.setError("code: ", editor.ErrNothingActive)
			return m, nil
		}
		m.codeMode = true
		m.ti.SetValue(s.Code)
		m.ti.CursorEnd()
		m.ti.Focus()
		return m, textinput.Blink
	case "w":
		m.pasteMode = true
		m.ta.SetValue("")
		m.ta.Focus()
		m.setStatus("paste mode")
	default:
		if m.showSidebar {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handlePasteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		m.setStatus("view mode")
		return m, nil
	case "enter":
		w := strings.TrimSpace(m.ta.Value())
		if w == "" {
			m.setStatus("paste: empty")
			return m, nil
		}
		ring, err := geom.ParsePolygon(w)
		if err != nil {
			m.setError("wkt error: ", err)
			return m, nil
		}
		m.vp.Center = ring.BBox().Center()
		if res := m.dispatch(editor.ImportDraft{Ring: ring}); res.Err != nil {
			m.setError("import error: ", res.Err)
			return m, nil
		}
		m.pasteMode = false
		m.ta.Blur()
		m.syncOverlay()
		m.setStatus("imported draft " + m.draftCode())
		return m, nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

func (m Model) handleCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.codeMode = false
		m.ti.Blur()
		return m, nil
	case "enter":
		code := strings.TrimSpace(m.ti.Value())
		m.codeMode = false
		m.ti.Blur()
		if res := m.dispatch(editor.SetCode{Code: code}); res.Err == nil {
			m.setStatus("code: " + code + " (unsaved)")
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	p, in := m.layout().toMap(msg.X, msg.Y)
	m.hoverHasGeo = in
	if in {
		ll := m.vp.Unproject(p)
		m.hoverLon, m.hoverLat = ll[0], ll[1]
	}
	if m.pasteMode || m.codeMode || m.showAttrs {
		return m
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		if in {
			m.zoomAt(p, zoomStep)
		}
	case msg.Button == tea.MouseButtonWheelDown:
		if in {
			m.zoomAt(p, 1/zoomStep)
		}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !in {
			break
		}
		res := m.dispatch(editor.PointerDown{Pos: p})
		if !res.Captured && m.ed.PanEnabled() {
			m.panning = true
			m.panLast = p
		}
	case msg.Action == tea.MouseActionMotion:
		if m.panning {
			m.pan(m.panLast.X-p.X, m.panLast.Y-p.Y)
			m.panLast = p
			break
		}
		m.dispatch(editor.PointerMove{Pos: p})
	case msg.Action == tea.MouseActionRelease:
		if m.panning {
			m.panning = false
			break
		}
		if res := m.dispatch(editor.PointerUp{Pos: p}); res.Changed {
			if d, ok := m.ed.Draft(); ok && !m.ed.DrawMode() && m.ed.State() == editor.Idle {
				m.setStatus("draft " + d.Code + ": ctrl+s to save")
			}
		}
	}
	return m
}

// cancelPointer abandons the active pan or gesture. Pushed geometry stays
// and one undo restores the state from before the gesture.
func (m *Model) cancelPointer() {
	m.panning = false
	if m.ed.State() == editor.Idle {
		return
	}
	if res := m.dispatch(editor.PointerCancel{}); res.Changed {
		m.setStatus("gesture cancelled")
	}
}

// dispatch feeds the editor and pushes any change to the overlay.
func (m *Model) dispatch(msg editor.Msg) editor.Result {
	res := m.ed.Update(msg)
	if res.Err != nil {
		m.setError("", res.Err)
	}
	if res.Changed {
		m.syncOverlay()
		if m.showAttrs {
			m.refreshAttrs()
		}
	}
	metrics.UndoDepth.Set(float64(m.ed.UndoDepth()))
	return res
}

// syncOverlay pushes the editor state to the surface. Missing sources are
// added right away when the style is loaded; otherwise the watchdog will.
func (m *Model) syncOverlay() {
	d := m.ed.DesiredOverlay()
	if overlay.Push(m.surface, d) {
		return
	}
	if err := overlay.Reconcile(m.surface, d); err != nil && !errors.Is(err, overlay.ErrNotReady) {
		m.setError("overlay error: ", err)
	}
}

// switchTheme swaps the map style, which drops every overlay, and schedules
// the watchdog passes that bring them back.
func (m *Model) switchTheme(name string) tea.Cmd {
	m.theme = name
	m.surface.SetStyle(name)
	cmds := []tea.Cmd{loadStyle(name, m.styleLoadDelay)}
	for _, s := range m.watchdog.StyleChanged() {
		cmds = append(cmds, schedulePass(s.Pass, s.Delay))
	}
	slog.Debug("style_switch", "style", name, "seq", m.watchdog.Seq())
	return tea.Batch(cmds...)
}

func (m Model) handlePass(msg passMsg) (tea.Model, tea.Cmd) {
	out := m.watchdog.Run(msg.pass, m.surface, m.ed.DesiredOverlay())
	metrics.OverlayPasses.WithLabelValues(out.Status.String()).Inc()
	switch out.Status {
	case overlay.Retry:
		return m, schedulePass(out.Next, out.Delay)
	case overlay.Exhausted:
		m.setError("overlay error: ", fmt.Errorf("style %q did not load: %w", m.surface.Style(), out.Err))
	case overlay.Failed:
		m.setError("overlay error: ", out.Err)
	}
	return m, nil
}

func (m Model) save() (tea.Model, tea.Cmd) {
	if m.saving {
		m.setStatus("save in progress")
		return m, nil
	}
	if in, ok := m.ed.DraftInput(); ok {
		m.saving = true
		m.setStatus("saving " + in.Code + "...")
		return m, saveDraft(m.svc, m.ed.Scope(), in, m.storeTimeout)
	}
	if id, in, ok := m.ed.EditInput(); ok {
		m.saving = true
		m.setStatus("saving " + in.Code + "...")
		return m, saveSelected(m.svc, m.ed.Scope(), id, in, m.storeTimeout)
	}
	m.setError("save error: ", editor.ErrNothingActive)
	return m, nil
}

func (m Model) remove() (tea.Model, tea.Cmd) {
	if m.saving {
		m.setStatus("save in progress")
		return m, nil
	}
	sel, ok := m.ed.Selected()
	if !ok {
		m.setError("delete error: ", bay.ErrNoSelection)
		return m, nil
	}
	m.saving = true
	m.setStatus("deleting " + sel.Code + "...")
	return m, deleteSelected(m.svc, m.ed.Scope(), sel.ID, sel.Code, m.storeTimeout)
}

func (m Model) handleSaved(msg savedMsg) Model {
	m.saving = false
	if msg.err != nil && msg.saved.ID == "" {
		m.setError(msg.op.String()+" error: ", msg.err)
		return m
	}
	switch msg.op {
	case opCreate:
		m.dispatch(editor.DraftSaved{Bays: msg.saved.Bays})
	case opUpdate:
		m.dispatch(editor.BaySaved{Bays: msg.saved.Bays})
	case opDelete:
		m.dispatch(editor.BayDeleted{Bays: msg.saved.Bays})
	}
	m.refreshBays()
	if msg.err != nil {
		m.setError(fmt.Sprintf("%s %s done, reload error: ", msg.op, msg.code), msg.err)
		return m
	}
	m.setStatus(fmt.Sprintf("%s %s: ok", msg.op, msg.code))
	return m
}

func (m *Model) selectBay(id string) {
	if res := m.dispatch(editor.Select{ID: id}); res.Err != nil {
		return
	}
	if b, ok := m.ed.Selected(); ok && len(b.Geometry) > 0 {
		m.vp.Center = b.Geometry.Centroid()
		m.syncOverlay()
		m.setStatus("selected " + b.Code)
	}
}

func (m *Model) pan(dx, dy float64) {
	m.vp.Pan(dx, dy)
	m.syncOverlay()
}

// zoomAt zooms by f keeping the point under pixel p fixed.
func (m *Model) zoomAt(p r2.Vec, f float64) {
	ll := m.vp.Unproject(p)
	m.vp.ZoomBy(f)
	q := m.vp.Project(ll)
	m.vp.Pan(q.X-p.X, q.Y-p.Y)
	m.syncOverlay()
}

func (m *Model) resize() {
	lay := m.layout()
	m.vp.Resize(float64(lay.mapW*2), float64(lay.mapH*4))
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, lay.contentH-2)
	}
	m.fitIfNeeded()
	m.syncOverlay()
}

// fitIfNeeded frames the data once when no start centre was configured.
func (m *Model) fitIfNeeded() {
	if !m.needFit || m.width == 0 {
		return
	}
	bb, ok := m.extent()
	if !ok {
		return
	}
	m.vp.Fit(bb)
	m.needFit = false
	m.syncOverlay()
}

// extent is the box of the loaded bays and the base map.
func (m Model) extent() (geom.BBox, bool) {
	var bb geom.BBox
	ok := false
	add := func(b geom.BBox) {
		if !ok {
			bb, ok = b, true
			return
		}
		bb = bb.Union(b)
	}
	for _, b := range m.ed.Bays() {
		if len(b.Geometry) > 0 {
			add(b.Geometry.BBox())
		}
	}
	if !m.basemap.Empty() {
		add(m.basemap.BBox)
	}
	return bb, ok
}

func (m Model) draftCode() string {
	if d, ok := m.ed.Draft(); ok {
		return d.Code
	}
	return ""
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(prefix string, err error) {
	m.status = prefix + err.Error()
	m.statusErr = true
	slog.Warn("editor_error", "status", m.status)
}
