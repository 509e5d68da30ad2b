package postgres

import (
	"context"
	"fmt"
	"log/slog"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS sites (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name       text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS zones (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		site_id    uuid NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
		name       text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bays (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		site_id    uuid NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
		zone_id    uuid REFERENCES zones(id) ON DELETE SET NULL,
		code       text NOT NULL,
		geom       geometry(Polygon, 4326) NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS bays_zone_idx ON bays (zone_id)`,
	`CREATE INDEX IF NOT EXISTS bays_geom_idx ON bays USING gist (geom)`,
}

// EnsureSchema creates the tables the bay store needs.
func EnsureSchema(ctx context.Context, db *DB) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema step %d: %w", i+1, err)
		}
	}
	slog.Info("schema_ready", "steps", len(schema))
	return nil
}

// Seed inserts a site with the named zones and returns the site id.
func Seed(ctx context.Context, db *DB, site string, zones []string) (string, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var siteID string
	if err := tx.QueryRow(ctx, `INSERT INTO sites (name) VALUES ($1) RETURNING id::text`, site).Scan(&siteID); err != nil {
		return "", fmt.Errorf("insert site: %w", err)
	}
	for _, z := range zones {
		if _, err := tx.Exec(ctx, `INSERT INTO zones (site_id, name) VALUES ($1, $2)`, siteID, z); err != nil {
			return "", fmt.Errorf("insert zone %s: %w", z, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	slog.Info("site_seeded", "site_id", siteID, "zones", len(zones))
	return siteID, nil
}
