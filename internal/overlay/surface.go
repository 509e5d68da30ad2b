package overlay

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/geom"
)

// Surface is the in-process rendering engine behind the terminal map. It
// keeps sources and layers per style; switching style drops all of them
// and reports not-ready until MarkStyleLoaded is called.
type Surface struct {
	proj    geom.Projector
	style   string
	loaded  bool
	sources map[string][]Feature
	order   []string // source insertion order
	layers  []Layer
}

func NewSurface(proj geom.Projector) *Surface {
	return &Surface{proj: proj, sources: map[string][]Feature{}}
}

// SetStyle starts loading a new style, wiping every source and layer.
func (s *Surface) SetStyle(name string) {
	s.style = name
	s.loaded = false
	s.sources = map[string][]Feature{}
	s.order = nil
	s.layers = nil
}

func (s *Surface) MarkStyleLoaded() { s.loaded = true }

func (s *Surface) Style() string { return s.style }

func (s *Surface) StyleLoaded() bool { return s.loaded }

func (s *Surface) Sources() []string { return slices.Clone(s.order) }

func (s *Surface) HasSource(id string) bool {
	_, ok := s.sources[id]
	return ok
}

// SourceData returns the features of a source for drawing.
func (s *Surface) SourceData(id string) ([]Feature, bool) {
	fs, ok := s.sources[id]
	return fs, ok
}

func (s *Surface) AddSource(id string, fs []Feature) error {
	if !s.loaded {
		return ErrNotReady
	}
	if s.HasSource(id) {
		return ErrSourceExists
	}
	if err := validate(fs); err != nil {
		return err
	}
	s.sources[id] = slices.Clone(fs)
	s.order = append(s.order, id)
	return nil
}

func (s *Surface) SetSourceData(id string, fs []Feature) error {
	if !s.HasSource(id) {
		return ErrNoSource
	}
	if err := validate(fs); err != nil {
		return err
	}
	s.sources[id] = slices.Clone(fs)
	return nil
}

func (s *Surface) RemoveSource(id string) error {
	if !s.HasSource(id) {
		return ErrNoSource
	}
	for _, l := range s.layers {
		if l.Source == id {
			return ErrSourceInUse
		}
	}
	delete(s.sources, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	return nil
}

func (s *Surface) Layers() []Layer { return slices.Clone(s.layers) }

func (s *Surface) HasLayer(id string) bool {
	return slices.ContainsFunc(s.layers, func(l Layer) bool { return l.ID == id })
}

func (s *Surface) AddLayer(l Layer) error {
	if !s.loaded {
		return ErrNotReady
	}
	if s.HasLayer(l.ID) {
		return ErrLayerExists
	}
	if !s.HasSource(l.Source) {
		return ErrNoSource
	}
	s.layers = append(s.layers, l)
	return nil
}

func (s *Surface) RemoveLayer(id string) error {
	if !s.HasLayer(id) {
		return ErrNoLayer
	}
	s.layers = slices.DeleteFunc(s.layers, func(l Layer) bool { return l.ID == id })
	return nil
}

// QueryFeatures hit-tests polygon features of the named layers, hidden
// ones included. Later layers are drawn on top and are reported first.
func (s *Surface) QueryFeatures(p r2.Vec, layerIDs []string) []Hit {
	if s.proj == nil {
		return nil
	}
	ll := s.proj.Unproject(p)
	var hits []Hit
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		if !slices.Contains(layerIDs, l.ID) {
			continue
		}
		fs := s.sources[l.Source]
		for j := len(fs) - 1; j >= 0; j-- {
			f := fs[j]
			if f.Kind == Polygon && f.Ring.Contains(ll) {
				hits = append(hits, Hit{Layer: l.ID, Feature: f})
			}
		}
	}
	return hits
}

func validate(fs []Feature) error {
	for _, f := range fs {
		if len(f.Ring) == 0 {
			return errInvalidFeature
		}
	}
	return nil
}
