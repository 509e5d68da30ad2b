package valkey

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"baymap/internal/bay"
	"baymap/internal/geom"
	"baymap/internal/metrics"
)

// generationKey is bumped on every mutation; list keys embed it, so a
// bump invalidates every cached list at once and old keys expire by TTL.
const generationKey = "baymap:gen"

type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// CachedStore is a read-through cache in front of a bay.Store. Cache
// failures are logged and fall through to the store. After a failed
// invalidation reads bypass the cache until the generation is bumped.
type CachedStore struct {
	bay.Store
	kv    kv
	ttl   time.Duration
	stale atomic.Bool
}

// NewCachedStore wraps next with c.
func NewCachedStore(next bay.Store, c *Cache, ttl time.Duration) *CachedStore {
	return newCachedStore(next, c, ttl)
}

func newCachedStore(next bay.Store, c kv, ttl time.Duration) *CachedStore {
	return &CachedStore{Store: next, kv: c, ttl: ttl}
}

func (s *CachedStore) ListZones(ctx context.Context) ([]bay.Zone, error) {
	var zones []bay.Zone
	err := s.readThrough(ctx, "list_zones", "zones", &zones, func() (any, error) {
		return s.Store.ListZones(ctx)
	})
	return zones, err
}

func (s *CachedStore) ListBaysForZone(ctx context.Context, zoneID *string) ([]bay.Bay, error) {
	scope := "all"
	if zoneID != nil {
		scope = "zone:" + *zoneID
	}
	var bays []bay.Bay
	err := s.readThrough(ctx, "list_bays", "bays:"+scope, &bays, func() (any, error) {
		return s.Store.ListBaysForZone(ctx, zoneID)
	})
	return bays, err
}

func (s *CachedStore) CreateBay(ctx context.Context, siteID, code string, zoneID *string, g geom.Ring) (string, error) {
	id, err := s.Store.CreateBay(ctx, siteID, code, zoneID, g)
	if err == nil {
		s.invalidate(ctx)
	}
	return id, err
}

func (s *CachedStore) UpdateBay(ctx context.Context, id, code string, zoneID *string, g geom.Ring) error {
	err := s.Store.UpdateBay(ctx, id, code, zoneID, g)
	if err == nil {
		s.invalidate(ctx)
	}
	return err
}

func (s *CachedStore) DeleteBay(ctx context.Context, id string) error {
	err := s.Store.DeleteBay(ctx, id)
	if err == nil {
		s.invalidate(ctx)
	}
	return err
}

// readThrough decodes the cached value into out, or loads, stores and
// decodes it.
func (s *CachedStore) readThrough(ctx context.Context, op, name string, out any, load func() (any, error)) error {
	if s.stale.Load() && !s.bump(ctx) {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		v, err := load()
		if err != nil {
			return err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, out)
	}
	key, keyErr := s.key(ctx, name)
	if keyErr == nil {
		b, err := s.kv.Get(ctx, key)
		switch {
		case err == nil:
			if json.Unmarshal(b, out) == nil {
				metrics.CacheHits.WithLabelValues(op).Inc()
				return nil
			}
		case !errors.Is(err, ErrMiss):
			slog.Warn("cache_get_failed", "key", key, "error", err)
		}
	}
	metrics.CacheMisses.WithLabelValues(op).Inc()

	v, err := load()
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if keyErr == nil {
		if err := s.kv.Set(ctx, key, b, s.ttl); err != nil {
			slog.Warn("cache_set_failed", "key", key, "error", err)
		}
	}
	return json.Unmarshal(b, out)
}

func (s *CachedStore) key(ctx context.Context, name string) (string, error) {
	b, err := s.kv.Get(ctx, generationKey)
	gen := "0"
	switch {
	case err == nil:
		gen = string(b)
	case errors.Is(err, ErrMiss):
	default:
		slog.Warn("cache_generation_failed", "error", err)
		return "", err
	}
	return "baymap:" + gen + ":" + name, nil
}

func (s *CachedStore) invalidate(ctx context.Context) {
	if !s.bump(ctx) {
		s.stale.Store(true)
	}
}

// bump advances the generation and reports whether it succeeded.
func (s *CachedStore) bump(ctx context.Context) bool {
	gen, err := s.kv.Incr(ctx, generationKey)
	if err != nil {
		slog.Warn("cache_invalidate_failed", "error", err)
		return false
	}
	s.stale.Store(false)
	slog.Debug("cache_invalidated", "generation", strconv.FormatInt(gen, 10))
	return true
}
