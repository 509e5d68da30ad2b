// Package bay models parking bays and the save/delete lifecycle that
// moves them between an unsaved draft and a persisted record.
package bay

import (
	"context"
	"errors"
	"time"

	"baymap/internal/geom"
)

var (
	ErrNoGeometry  = errors.New("bay has no geometry")
	ErrNoSite      = errors.New("no site id: load a bay of the site first or set editor.site_id")
	ErrEmptyCode   = errors.New("bay code is empty")
	ErrNoSelection = errors.New("no bay selected")
	ErrNotFound    = errors.New("bay not found")
)

// Bay is a parking bay footprint. An empty ID denotes an unsaved draft.
type Bay struct {
	ID       string    `json:"id"`
	Code     string    `json:"code"`
	ZoneID   *string   `json:"zone_id"`
	SiteID   string    `json:"site_id"`
	Geometry geom.Ring `json:"geometry"`
}

func (b Bay) IsDraft() bool { return b.ID == "" }

type Zone struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	SiteID string `json:"site_id"`
}

// Store is the persistence API. A nil zone lists every bay.
type Store interface {
	ListZones(ctx context.Context) ([]Zone, error)
	ListBaysForZone(ctx context.Context, zoneID *string) ([]Bay, error)
	CreateBay(ctx context.Context, siteID, code string, zoneID *string, geometry geom.Ring) (string, error)
	UpdateBay(ctx context.Context, id, code string, zoneID *string, geometry geom.Ring) error
	DeleteBay(ctx context.Context, id string) error
}

type EventKind string

const (
	Created EventKind = "created"
	Updated EventKind = "updated"
	Deleted EventKind = "deleted"
)

// Event announces a successful mutation.
type Event struct {
	Kind   EventKind `json:"kind"`
	BayID  string    `json:"bay_id"`
	Code   string    `json:"code,omitempty"`
	ZoneID *string   `json:"zone_id,omitempty"`
	SiteID string    `json:"site_id,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher delivers bay events to other consumers.
type Publisher interface {
	PublishBayEvent(ctx context.Context, ev Event) error
}

// CloneZone copies an optional zone id.
func CloneZone(z *string) *string {
	if z == nil {
		return nil
	}
	v := *z
	return &v
}

// SameZone compares optional zone ids by value.
func SameZone(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
