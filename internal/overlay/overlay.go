// Package overlay holds the editor's drawable state: named feature sources,
// the styled layers drawn over them, and the reconciliation that restores
// both after the map style replaces them.
package overlay

import (
	"errors"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/geom"
)

// OwnedPrefix marks sources and layers managed by the editor. Anything else
// on the engine (base map) is left alone by Reconcile.
const OwnedPrefix = "editor-"

var (
	ErrNotReady       = errors.New("overlay: style not loaded")
	ErrSourceExists   = errors.New("overlay: source already exists")
	ErrNoSource       = errors.New("overlay: no such source")
	ErrSourceInUse    = errors.New("overlay: source still referenced by a layer")
	ErrLayerExists    = errors.New("overlay: layer already exists")
	ErrNoLayer        = errors.New("overlay: no such layer")
	errInvalidFeature = errors.New("overlay: feature has no geometry")
)

type Kind int

const (
	Polygon Kind = iota
	Point
)

// Feature is one drawable item. Point features use Ring[0] as position.
type Feature struct {
	ID    string
	Kind  Kind
	Ring  geom.Ring
	Label string
}

type LayerType int

const (
	Fill LayerType = iota
	Line
	Label
	Marker
)

func (t LayerType) String() string {
	switch t {
	case Fill:
		return "fill"
	case Line:
		return "line"
	case Label:
		return "label"
	case Marker:
		return "marker"
	}
	return "unknown"
}

// Layer draws a source with a style role. Hidden layers are never drawn
// but still answer QueryFeatures, which is how the bay hit layer works.
type Layer struct {
	ID     string
	Source string
	Type   LayerType
	Role   string
	Hidden bool
}

// Hit is a feature returned by QueryFeatures.
type Hit struct {
	Layer   string
	Feature Feature
}

// Engine is the slice of a map rendering engine the editor needs.
type Engine interface {
	StyleLoaded() bool

	Sources() []string
	HasSource(id string) bool
	AddSource(id string, fs []Feature) error
	SetSourceData(id string, fs []Feature) error
	RemoveSource(id string) error

	Layers() []Layer
	HasLayer(id string) bool
	AddLayer(l Layer) error
	RemoveLayer(id string) error

	// QueryFeatures returns features of the given layers under pixel p,
	// topmost layer first.
	QueryFeatures(p r2.Vec, layerIDs []string) []Hit
}

// Source is the desired content of one named source.
type Source struct {
	ID       string
	Features []Feature
}

// Desired is the complete overlay the editor wants on the engine.
type Desired struct {
	Sources []Source
	Layers  []Layer
}

// Owned reports whether id belongs to the editor.
func Owned(id string) bool { return strings.HasPrefix(id, OwnedPrefix) }
