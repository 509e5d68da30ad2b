// Package api holds the JSON shapes of the bay persistence API shared by
// the server and the remote store client.
package api

import (
	"baymap/internal/bay"
	"baymap/internal/geom"
)

// Bay is a bay on the wire; geometry is a GeoJSON Polygon.
type Bay struct {
	ID       string        `json:"id"`
	Code     string        `json:"code"`
	ZoneID   *string       `json:"zone_id"`
	SiteID   string        `json:"site_id"`
	Geometry geom.Geometry `json:"geometry"`
}

type CreateBayRequest struct {
	SiteID   string        `json:"site_id"`
	Code     string        `json:"code"`
	ZoneID   *string       `json:"zone_id"`
	Geometry geom.Geometry `json:"geometry"`
}

type UpdateBayRequest struct {
	Code     string        `json:"code"`
	ZoneID   *string       `json:"zone_id"`
	Geometry geom.Geometry `json:"geometry"`
}

type Created struct {
	ID string `json:"id"`
}

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, internal_error, ...
	Message   string `json:"message"` // human-readable
	RequestID string `json:"request_id,omitempty"`
}

func (e *APIError) Error() string { return e.Code + ": " + e.Message }

func FromBay(b bay.Bay) Bay {
	return Bay{ID: b.ID, Code: b.Code, ZoneID: b.ZoneID, SiteID: b.SiteID, Geometry: geom.PolygonGeometry(b.Geometry)}
}

func FromBays(bs []bay.Bay) []Bay {
	out := make([]Bay, 0, len(bs))
	for _, b := range bs {
		out = append(out, FromBay(b))
	}
	return out
}

// ToBay converts back, validating the geometry.
func (b Bay) ToBay() (bay.Bay, error) {
	ring, err := b.Geometry.Outer()
	if err != nil {
		return bay.Bay{}, err
	}
	return bay.Bay{ID: b.ID, Code: b.Code, ZoneID: b.ZoneID, SiteID: b.SiteID, Geometry: ring}, nil
}
