package overlay

import (
	"fmt"
	"slices"
)

// Reconcile brings the editor-owned part of the engine in line with d.
// Obsolete layers go before obsolete sources so a source is never removed
// while referenced. Sources are added or refreshed, then missing layers are
// added in order. Calling it again with the same d changes nothing.
func Reconcile(e Engine, d Desired) error {
	if !e.StyleLoaded() {
		return ErrNotReady
	}
	wantSrc := make(map[string]bool, len(d.Sources))
	for _, s := range d.Sources {
		wantSrc[s.ID] = true
	}
	wantLayer := make(map[string]Layer, len(d.Layers))
	for _, l := range d.Layers {
		wantLayer[l.ID] = l
	}

	for _, l := range e.Layers() {
		if !Owned(l.ID) {
			continue
		}
		w, ok := wantLayer[l.ID]
		if ok && w == l {
			continue
		}
		// changed layers are re-added below
		if err := e.RemoveLayer(l.ID); err != nil {
			return fmt.Errorf("remove layer %s: %w", l.ID, err)
		}
	}
	for _, id := range e.Sources() {
		if !Owned(id) || wantSrc[id] {
			continue
		}
		if err := e.RemoveSource(id); err != nil {
			return fmt.Errorf("remove source %s: %w", id, err)
		}
	}

	for _, s := range d.Sources {
		var err error
		if e.HasSource(s.ID) {
			err = e.SetSourceData(s.ID, s.Features)
		} else {
			err = e.AddSource(s.ID, s.Features)
		}
		if err != nil {
			return fmt.Errorf("source %s: %w", s.ID, err)
		}
	}
	for _, l := range d.Layers {
		if e.HasLayer(l.ID) {
			continue
		}
		if err := e.AddLayer(l); err != nil {
			return fmt.Errorf("layer %s: %w", l.ID, err)
		}
	}
	return nil
}

// Push refreshes the data of sources already on the engine and reports
// whether every desired source was present. Missing ones are left to the
// watchdog.
func Push(e Engine, d Desired) bool {
	complete := true
	for _, s := range d.Sources {
		if !e.HasSource(s.ID) || e.SetSourceData(s.ID, s.Features) != nil {
			complete = false
		}
	}
	return complete
}

// Missing lists desired source and layer ids absent from the engine.
func Missing(e Engine, d Desired) []string {
	var out []string
	for _, s := range d.Sources {
		if !e.HasSource(s.ID) {
			out = append(out, s.ID)
		}
	}
	have := e.Layers()
	for _, l := range d.Layers {
		if !slices.ContainsFunc(have, func(h Layer) bool { return h.ID == l.ID }) {
			out = append(out, l.ID)
		}
	}
	return out
}
