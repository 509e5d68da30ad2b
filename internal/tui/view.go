package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lay := m.layout()

	// Header
	info := m.zoneTitle() + " · " + m.theme
	if m.baseName != "" {
		info += " · " + m.baseName
	}
	header := titleStyle.Render(" baymap ─ parking bay editor ") + dimStyle.Render(" "+info)
	header = lipgloss.NewStyle().Width(lay.contentW).Padding(0).Render(header)

	// Sidebar
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(lay.sidebarW).Render(m.l.View())
	}

	var mapView string
	switch {
	case m.showAttrs:
		// Render attributes table centered in the map area
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		maxW := min(lay.mapW, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(lay.mapH-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Center, lipgloss.Center, attrsBox)
	case m.pasteMode:
		m.ta.SetWidth(lay.mapW)
		m.ta.SetHeight(min(lay.mapH, 12))
		mapView = lipgloss.NewStyle().Width(lay.mapW).Height(lay.mapH).Render(m.ta.View())
	default:
		// plain map canvas: no border
		mapView = lipgloss.NewStyle().Width(lay.mapW).Height(lay.mapH).Render(m.renderMap(lay.mapW, lay.mapH))
	}

	// Code entry popup over the map
	if m.codeMode {
		box := boxStyle.Render(m.ti.View())
		mapView = lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Center, lipgloss.Center, box)
	}

	var body string
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	} else {
		body = mapView
	}

	// Footer: status and modes on the first line, help on the second
	status := dimStyle.Render(" " + m.status + " ")
	if m.statusErr {
		status = errStyle.Render(" " + m.status + " ")
	}
	coords := ""
	if m.hoverHasGeo {
		coords = dimStyle.Render(fmt.Sprintf("  lon=%.6f lat=%.6f  ", m.hoverLon, m.hoverLat))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, m.renderModes(), status)
	spacerW := max(0, lay.contentW-lipgloss.Width(left)-lipgloss.Width(coords))
	line1 := left + padRight("", spacerW) + coords
	footer := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(lay.contentW).MaxHeight(1).Render(line1),
		lipgloss.NewStyle().Width(lay.contentW).MaxHeight(1).Render(m.renderHelp()),
	)

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(lay.contentW).Height(m.height).Render(ui)
}

// renderModes shows the active editor modes as badges.
func (m Model) renderModes() string {
	var modes []string
	if m.ed.DrawMode() {
		modes = append(modes, modeStyle.Render("DRAW"))
	}
	if m.ed.EditMode() {
		modes = append(modes, modeStyle.Render("EDIT"))
	}
	if m.ed.SnapEnabled() {
		modes = append(modes, dimStyle.Render("snap"))
	}
	if n := m.ed.UndoDepth(); n > 0 {
		modes = append(modes, dimStyle.Render(fmt.Sprintf("undo:%d", n)))
	}
	if len(modes) == 0 {
		return ""
	}
	return " " + strings.Join(modes, " ")
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"d draw",
		"n new",
		"e edit",
		"s snap",
		"^s save",
		"del delete",
		"u undo",
		"x discard",
		"c code",
		"w wkt",
		"z zone",
		"t theme",
		"↑↓←→ pan",
		"+/- zoom",
		"Tab bays",
		"a attrs",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
