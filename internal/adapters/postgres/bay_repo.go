package postgres

import (
	"context"
	"fmt"

	"baymap/internal/bay"
	"baymap/internal/geom"
)

// BayRepo implements bay.Store on PostGIS.
type BayRepo struct {
	db *DB
}

func NewBayRepo(db *DB) *BayRepo {
	return &BayRepo{db: db}
}

var _ bay.Store = (*BayRepo)(nil)

func (r *BayRepo) ListZones(ctx context.Context) ([]bay.Zone, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, name, site_id::text
		FROM zones ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []bay.Zone
	for rows.Next() {
		var z bay.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.SiteID); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func (r *BayRepo) ListBaysForZone(ctx context.Context, zoneID *string) ([]bay.Bay, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, code, zone_id::text, site_id::text, ST_AsText(geom)
		FROM bays
		WHERE $1::uuid IS NULL OR zone_id = $1::uuid
		ORDER BY code, id
	`, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bays := []bay.Bay{}
	for rows.Next() {
		var (
			b   bay.Bay
			wkt string
		)
		if err := rows.Scan(&b.ID, &b.Code, &b.ZoneID, &b.SiteID, &wkt); err != nil {
			return nil, err
		}
		if b.Geometry, err = geom.ParsePolygon(wkt); err != nil {
			return nil, fmt.Errorf("bay %s geometry: %w", b.ID, err)
		}
		bays = append(bays, b)
	}
	return bays, rows.Err()
}

func (r *BayRepo) CreateBay(ctx context.Context, siteID, code string, zoneID *string, g geom.Ring) (string, error) {
	var id string
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO bays (site_id, zone_id, code, geom)
		VALUES ($1::uuid, $2::uuid, $3, ST_GeomFromText($4, 4326))
		RETURNING id::text
	`, siteID, zoneID, code, geom.FormatPolygon(g)).Scan(&id)
	return id, err
}

func (r *BayRepo) UpdateBay(ctx context.Context, id, code string, zoneID *string, g geom.Ring) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE bays
		SET code = $2, zone_id = $3::uuid, geom = ST_GeomFromText($4, 4326), updated_at = now()
		WHERE id = $1::uuid
	`, id, code, zoneID, geom.FormatPolygon(g))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return bay.ErrNotFound
	}
	return nil
}

func (r *BayRepo) DeleteBay(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM bays WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return bay.ErrNotFound
	}
	return nil
}
