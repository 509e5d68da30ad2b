package tui

import (
	"fmt"

	table "github.com/charmbracelet/bubbles/table"

	"baymap/internal/geom"
)

var attrColumns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "code", Width: 8},
	{Title: "zone", Width: 12},
	{Title: "width m", Width: 8},
	{Title: "length m", Width: 9},
	{Title: "angle", Width: 7},
}

// refreshAttrs fills the attribute table from the loaded bays. The selected
// bay shows its unsaved edits.
func (m *Model) refreshAttrs() {
	names := m.zoneNames()
	sel, hasSel := m.ed.Selected()
	edit, hasEdit := m.ed.Edit()
	rows := make([]table.Row, 0, len(m.ed.Bays()))
	for i, b := range m.ed.Bays() {
		ring, code, zone := b.Geometry, b.Code, b.ZoneID
		if hasSel && hasEdit && b.ID == sel.ID {
			ring, code, zone = edit.Ring, edit.Code, edit.ZoneID
		}
		w, l, angle := "?", "?", "?"
		if r, ok := geom.RectFromRing(ring, m.vp); ok {
			// width is the short side of a bay
			a, c := r.W*m.vp.MetersPerPixel, r.H*m.vp.MetersPerPixel
			w, l = fmt.Sprintf("%.2f", min(a, c)), fmt.Sprintf("%.2f", max(a, c))
			angle = degrees(r.Angle)
		}
		rows = append(rows, table.Row{fmt.Sprintf("%d", i+1), code, zoneLabel(zone, names), w, l, angle})
	}
	// Avoid transient mismatch: clear rows, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetRows(rows)
}
