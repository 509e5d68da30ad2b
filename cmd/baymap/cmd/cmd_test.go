package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"baymap/internal/adapters/filestore"
	"baymap/internal/bay"
	"baymap/internal/config"
	"baymap/internal/geom"
)

// 2.5 x 5 m near the equator, axis aligned.
var testBay = bay.Bay{
	ID:   "b1",
	Code: "A01",
	Geometry: geom.Ring{
		{0, 0}, {2.5 / 111320.0, 0}, {2.5 / 111320.0, 5 / 111320.0}, {0, 5 / 111320.0}, {0, 0},
	},
}

func TestWriteBaysTable(t *testing.T) {
	zone := "z1"
	b := testBay
	b.ZoneID = &zone

	var buf bytes.Buffer
	if err := writeBays(&buf, []bay.Bay{b}, []bay.Zone{{ID: "z1", Name: "North"}}, "table"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"CODE", "A01", "North", "2.50", "5.00", "b1"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestWriteBaysWKTAndJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeBays(&buf, []bay.Bay{testBay}, nil, "wkt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	code, wkt, ok := strings.Cut(line, "\t")
	if !ok || code != "A01" {
		t.Fatalf("unexpected line %q", line)
	}
	ring, err := geom.ParsePolygon(wkt)
	if err != nil || len(ring) != 5 {
		t.Fatalf("wkt does not parse back: %v (%d points)", err, len(ring))
	}

	buf.Reset()
	if err := writeBays(&buf, []bay.Bay{testBay}, nil, "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(out) != 1 || out[0]["code"] != "A01" {
		t.Fatalf("unexpected json: %v", out)
	}

	if err := writeBays(&buf, nil, nil, "yaml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestMeasureDegenerate(t *testing.T) {
	w, l, a := measure(nil)
	if w != "?" || l != "?" || a != "?" {
		t.Fatalf("expected unknowns, got %s %s %s", w, l, a)
	}
}

func TestOpenBackendFileStore(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.DriverFile, Path: filepath.Join(t.TempDir(), "bays.geojson")},
	}
	be, err := openBackend(context.Background(), cfg, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer be.Close()

	if _, ok := be.store.(*filestore.Store); !ok {
		t.Fatalf("expected the bare file store, got %T", be.store)
	}
	if len(be.checks) != 0 {
		t.Fatalf("expected no checks, got %d", len(be.checks))
	}
	bays, err := be.store.ListBaysForZone(context.Background(), nil)
	if err != nil || len(bays) != 0 {
		t.Fatalf("expected empty store, got %v, %v", bays, err)
	}
}

func TestOpenBackendUnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}
	if _, err := openBackend(context.Background(), cfg, false); err == nil {
		t.Fatal("expected error")
	}
}
