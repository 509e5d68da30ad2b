package bay

import (
	"context"
	"log/slog"
	"time"

	"baymap/internal/geom"
	"baymap/internal/metrics"
)

// notifyingStore publishes an Event after every successful mutation.
// Publish failures are logged; they never fail the mutation.
type notifyingStore struct {
	Store
	pub Publisher
	now func() time.Time
}

// WithEvents wraps s so mutations are announced through pub.
func WithEvents(s Store, pub Publisher) Store {
	return &notifyingStore{Store: s, pub: pub, now: time.Now}
}

func (n *notifyingStore) CreateBay(ctx context.Context, siteID, code string, zoneID *string, g geom.Ring) (string, error) {
	id, err := n.Store.CreateBay(ctx, siteID, code, zoneID, g)
	if err == nil {
		n.publish(ctx, Event{Kind: Created, BayID: id, Code: code, ZoneID: zoneID, SiteID: siteID})
	}
	return id, err
}

func (n *notifyingStore) UpdateBay(ctx context.Context, id, code string, zoneID *string, g geom.Ring) error {
	err := n.Store.UpdateBay(ctx, id, code, zoneID, g)
	if err == nil {
		n.publish(ctx, Event{Kind: Updated, BayID: id, Code: code, ZoneID: zoneID})
	}
	return err
}

func (n *notifyingStore) DeleteBay(ctx context.Context, id string) error {
	err := n.Store.DeleteBay(ctx, id)
	if err == nil {
		n.publish(ctx, Event{Kind: Deleted, BayID: id})
	}
	return err
}

func (n *notifyingStore) publish(ctx context.Context, ev Event) {
	ev.At = n.now().UTC()
	err := n.pub.PublishBayEvent(ctx, ev)
	metrics.EventsPublished.WithLabelValues(string(ev.Kind), metrics.Result(err)).Inc()
	if err != nil {
		slog.Warn("bay_event_publish_failed", "kind", ev.Kind, "id", ev.BayID, "error", err)
	}
}
