// Package filestore keeps bays in a single GeoJSON FeatureCollection on
// disk, for one operator working without a database.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"baymap/internal/bay"
	"baymap/internal/geom"
)

// document is the file layout. Zones are a foreign member of the
// collection so the file stays valid GeoJSON.
type document struct {
	Type     string     `json:"type"`
	Zones    []bay.Zone `json:"zones"`
	Features []feature  `json:"features"`
}

type feature struct {
	Type       string        `json:"type"`
	ID         string        `json:"id"`
	Properties properties    `json:"properties"`
	Geometry   geom.Geometry `json:"geometry"`
}

type properties struct {
	Code   string  `json:"code"`
	ZoneID *string `json:"zone_id"`
	SiteID string  `json:"site_id"`
}

// Store implements bay.Store on a GeoJSON file. A missing file reads as
// an empty collection and is created on the first write.
type Store struct {
	path  string
	mu    sync.Mutex
	newID func() string
}

var _ bay.Store = (*Store)(nil)

func New(path string) *Store {
	return &Store{path: path, newID: uuid.NewString}
}

func (s *Store) Path() string { return s.path }

func (s *Store) read() (document, error) {
	doc := document{Type: "FeatureCollection"}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if doc.Type != "FeatureCollection" {
		return doc, fmt.Errorf("parse %s: expected FeatureCollection, got %q", s.path, doc.Type)
	}
	return doc, nil
}

// write replaces the file atomically.
func (s *Store) write(doc document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".baymap-*.geojson")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *Store) ListZones(_ context.Context) ([]bay.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	zones := append([]bay.Zone(nil), doc.Zones...)
	sort.Slice(zones, func(i, j int) bool { return zones[i].Name < zones[j].Name })
	return zones, nil
}

func (s *Store) ListBaysForZone(_ context.Context, zoneID *string) ([]bay.Bay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	bays := []bay.Bay{}
	for _, f := range doc.Features {
		if zoneID != nil && !bay.SameZone(zoneID, f.Properties.ZoneID) {
			continue
		}
		ring, err := f.Geometry.Outer()
		if err != nil {
			return nil, fmt.Errorf("bay %s: %w", f.ID, err)
		}
		bays = append(bays, bay.Bay{
			ID:       f.ID,
			Code:     f.Properties.Code,
			ZoneID:   bay.CloneZone(f.Properties.ZoneID),
			SiteID:   f.Properties.SiteID,
			Geometry: ring,
		})
	}
	sort.SliceStable(bays, func(i, j int) bool { return bays[i].Code < bays[j].Code })
	return bays, nil
}

func (s *Store) CreateBay(_ context.Context, siteID, code string, zoneID *string, g geom.Ring) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return "", err
	}
	id := s.newID()
	doc.Features = append(doc.Features, feature{
		Type:       "Feature",
		ID:         id,
		Properties: properties{Code: code, ZoneID: bay.CloneZone(zoneID), SiteID: siteID},
		Geometry:   geom.PolygonGeometry(g),
	})
	if err := s.write(doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateBay(_ context.Context, id, code string, zoneID *string, g geom.Ring) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	i := doc.index(id)
	if i < 0 {
		return bay.ErrNotFound
	}
	f := &doc.Features[i]
	f.Properties.Code = code
	f.Properties.ZoneID = bay.CloneZone(zoneID)
	f.Geometry = geom.PolygonGeometry(g)
	return s.write(doc)
}

func (s *Store) DeleteBay(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	i := doc.index(id)
	if i < 0 {
		return bay.ErrNotFound
	}
	doc.Features = append(doc.Features[:i], doc.Features[i+1:]...)
	return s.write(doc)
}

// AddZone registers a zone and returns its id.
func (s *Store) AddZone(_ context.Context, siteID, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return "", err
	}
	z := bay.Zone{ID: s.newID(), Name: name, SiteID: siteID}
	doc.Zones = append(doc.Zones, z)
	if err := s.write(doc); err != nil {
		return "", err
	}
	return z.ID, nil
}

func (d document) index(id string) int {
	for i, f := range d.Features {
		if f.ID == id {
			return i
		}
	}
	return -1
}
