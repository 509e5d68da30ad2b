package editor

import (
	"strconv"

	"baymap/internal/overlay"
)

// Source and layer ids. All carry overlay.OwnedPrefix.
const (
	SourceBays    = "editor-bays"
	SourceBaysHit = "editor-bays-hit"
	SourceDraft   = "editor-draft"
	SourceEdit    = "editor-edit"
	SourceHandles = "editor-handles"

	LayerBaysFill  = "editor-bays-fill"
	LayerBaysLine  = "editor-bays-line"
	LayerBaysLabel = "editor-bays-label"
	LayerBaysHit   = "editor-bays-hit"
	LayerEditFill  = "editor-edit-fill"
	LayerEditLine  = "editor-edit-line"
	LayerDraftFill = "editor-draft-fill"
	LayerDraftLine = "editor-draft-line"
	LayerHandles   = "editor-handles"
)

// Style roles understood by the renderer.
const (
	RoleBay      = "bay"
	RoleSelected = "selected"
	RoleDraft    = "draft"
	RoleHandle   = "handle"
)

// overlayLayers is listed bottom to top.
var overlayLayers = []overlay.Layer{
	{ID: LayerBaysFill, Source: SourceBays, Type: overlay.Fill, Role: RoleBay},
	{ID: LayerBaysLine, Source: SourceBays, Type: overlay.Line, Role: RoleBay},
	{ID: LayerBaysLabel, Source: SourceBays, Type: overlay.Label, Role: RoleBay},
	{ID: LayerBaysHit, Source: SourceBaysHit, Type: overlay.Fill, Hidden: true},
	{ID: LayerEditFill, Source: SourceEdit, Type: overlay.Fill, Role: RoleSelected},
	{ID: LayerEditLine, Source: SourceEdit, Type: overlay.Line, Role: RoleSelected},
	{ID: LayerDraftFill, Source: SourceDraft, Type: overlay.Fill, Role: RoleDraft},
	{ID: LayerDraftLine, Source: SourceDraft, Type: overlay.Line, Role: RoleDraft},
	{ID: LayerHandles, Source: SourceHandles, Type: overlay.Marker, Role: RoleHandle},
}

// DesiredOverlay is everything the editor wants drawn right now. The
// selected bay is drawn from its edit buffer instead of the stored list,
// and the hit source follows the edit buffer so a moved bay can be grabbed
// where it is shown.
func (e *Editor) DesiredOverlay() overlay.Desired {
	var bays, hit []overlay.Feature
	for _, b := range e.bays {
		if len(b.Geometry) == 0 {
			continue
		}
		ring := b.Geometry
		if b.ID == e.selected && e.edit != nil {
			hit = append(hit, overlay.Feature{ID: b.ID, Kind: overlay.Polygon, Ring: e.edit.Ring})
			continue
		}
		bays = append(bays, overlay.Feature{ID: b.ID, Kind: overlay.Polygon, Ring: ring, Label: b.Code})
		hit = append(hit, overlay.Feature{ID: b.ID, Kind: overlay.Polygon, Ring: ring})
	}

	var edit, draft, handles []overlay.Feature
	if e.edit != nil && len(e.edit.Ring) > 0 {
		edit = []overlay.Feature{{ID: e.selected, Kind: overlay.Polygon, Ring: e.edit.Ring, Label: e.edit.Code}}
	}
	if e.draft != nil && len(e.draft.Ring) > 0 {
		draft = []overlay.Feature{{ID: "draft", Kind: overlay.Polygon, Ring: e.draft.Ring, Label: e.draft.Code}}
	}
	for _, h := range e.Handles() {
		id := "rotate"
		if h.Kind == CornerHandle {
			id = "corner-" + strconv.Itoa(h.Index)
		}
		handles = append(handles, overlay.Feature{ID: id, Kind: overlay.Point, Ring: [][2]float64{e.proj.Unproject(h.Pos)}})
	}

	return overlay.Desired{
		Sources: []overlay.Source{
			{ID: SourceBays, Features: bays},
			{ID: SourceBaysHit, Features: hit},
			{ID: SourceEdit, Features: edit},
			{ID: SourceDraft, Features: draft},
			{ID: SourceHandles, Features: handles},
		},
		Layers: overlayLayers,
	}
}
