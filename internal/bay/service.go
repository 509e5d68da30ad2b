package bay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"baymap/internal/geom"
	"baymap/internal/metrics"
)

// Input is the editable part of a bay as sent on save.
type Input struct {
	Code     string
	ZoneID   *string
	Geometry geom.Ring
}

// Scope is the list the editor is showing: its zone filter and the bays
// currently loaded for it.
type Scope struct {
	ZoneID *string
	Loaded []Bay
}

// Saved is the result of a mutation: the affected id and the reloaded list.
// Bays is nil when the mutation succeeded but the reload failed.
type Saved struct {
	ID   string
	Bays []Bay
}

// Service runs the bay lifecycle against a Store. Prerequisites are checked
// before any call is made; store failures are reported, never retried, and
// the list is always reloaded after a successful mutation.
type Service struct {
	store       Store
	defaultSite string
}

type Option func(*Service)

// WithDefaultSite sets the site used when no loaded bay provides one.
func WithDefaultSite(id string) Option {
	return func(s *Service) { s.defaultSite = strings.TrimSpace(id) }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Zones(ctx context.Context) ([]Zone, error) {
	defer metrics.ObserveStore("list_zones", time.Now())
	zs, err := s.store.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	return zs, nil
}

func (s *Service) Reload(ctx context.Context, zoneID *string) ([]Bay, error) {
	defer metrics.ObserveStore("list_bays", time.Now())
	bays, err := s.store.ListBaysForZone(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("list bays: %w", err)
	}
	return bays, nil
}

// ResolveSite picks the site of the first loaded bay, then the default.
func (s *Service) ResolveSite(loaded []Bay) (string, error) {
	for _, b := range loaded {
		if b.SiteID != "" {
			return b.SiteID, nil
		}
	}
	if s.defaultSite != "" {
		return s.defaultSite, nil
	}
	return "", ErrNoSite
}

// SaveDraft creates the draft as a new bay and reloads the list.
func (s *Service) SaveDraft(ctx context.Context, scope Scope, in Input) (Saved, error) {
	if len(in.Geometry) < 4 {
		return Saved{}, ErrNoGeometry
	}
	site, err := s.ResolveSite(scope.Loaded)
	if err != nil {
		return Saved{}, err
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return Saved{}, ErrEmptyCode
	}
	start := time.Now()
	id, err := s.store.CreateBay(ctx, site, code, in.ZoneID, in.Geometry.Closed())
	metrics.ObserveStore("create_bay", start)
	metrics.BayMutations.WithLabelValues("create", metrics.Result(err)).Inc()
	if err != nil {
		return Saved{}, fmt.Errorf("create bay: %w", err)
	}
	slog.Info("bay_created", "id", id, "code", code, "site_id", site)
	return s.reload(ctx, scope, id)
}

// SaveSelected writes the edit buffer of a persisted bay and reloads.
func (s *Service) SaveSelected(ctx context.Context, scope Scope, id string, in Input) (Saved, error) {
	if id == "" {
		return Saved{}, ErrNoSelection
	}
	if len(in.Geometry) < 4 {
		return Saved{}, ErrNoGeometry
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return Saved{}, ErrEmptyCode
	}
	start := time.Now()
	err := s.store.UpdateBay(ctx, id, code, in.ZoneID, in.Geometry.Closed())
	metrics.ObserveStore("update_bay", start)
	metrics.BayMutations.WithLabelValues("update", metrics.Result(err)).Inc()
	if err != nil {
		return Saved{}, fmt.Errorf("update bay: %w", err)
	}
	slog.Info("bay_updated", "id", id, "code", code)
	return s.reload(ctx, scope, id)
}

// DeleteSelected deletes a persisted bay and reloads.
func (s *Service) DeleteSelected(ctx context.Context, scope Scope, id string) (Saved, error) {
	if id == "" {
		return Saved{}, ErrNoSelection
	}
	start := time.Now()
	err := s.store.DeleteBay(ctx, id)
	metrics.ObserveStore("delete_bay", start)
	metrics.BayMutations.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		return Saved{}, fmt.Errorf("delete bay: %w", err)
	}
	slog.Info("bay_deleted", "id", id)
	return s.reload(ctx, scope, id)
}

func (s *Service) reload(ctx context.Context, scope Scope, id string) (Saved, error) {
	bays, err := s.Reload(ctx, scope.ZoneID)
	if err != nil {
		return Saved{ID: id}, err
	}
	if bays == nil {
		// nil means "reload failed" to callers
		bays = []Bay{}
	}
	return Saved{ID: id, Bays: bays}, nil
}
