package tui

import (
	list "github.com/charmbracelet/bubbles/list"

	"baymap/internal/bay"
)

type bayItem struct {
	id, code, zone string
}

func (b bayItem) Title() string       { return b.code }
func (b bayItem) Description() string { return b.zone }
func (b bayItem) FilterValue() string { return b.code }

// zoneNames maps zone ids to names for display.
func (m Model) zoneNames() map[string]string {
	names := make(map[string]string, len(m.ed.Zones()))
	for _, z := range m.ed.Zones() {
		names[z.ID] = z.Name
	}
	return names
}

// refreshBays rebuilds the sidebar and attribute table from the loaded bays.
func (m *Model) refreshBays() {
	names := m.zoneNames()
	bays := m.ed.Bays()
	items := make([]list.Item, 0, len(bays))
	for _, b := range bays {
		items = append(items, bayItem{id: b.ID, code: b.Code, zone: zoneLabel(b.ZoneID, names)})
	}
	m.l.SetItems(items)
	if m.showAttrs {
		m.refreshAttrs()
	}
}

// zoneTitle is the current zone filter for the header.
func (m Model) zoneTitle() string {
	z := m.ed.ZoneID()
	if z == nil {
		return "all zones"
	}
	return "zone " + zoneLabel(z, m.zoneNames())
}

// nextZone cycles all -> each zone -> all.
func nextZone(zones []bay.Zone, cur *string) *string {
	if len(zones) == 0 {
		return nil
	}
	if cur == nil {
		id := zones[0].ID
		return &id
	}
	for i, z := range zones {
		if z.ID == *cur {
			if i+1 == len(zones) {
				return nil
			}
			id := zones[i+1].ID
			return &id
		}
	}
	return nil
}
