package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"baymap/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != config.DriverFile || cfg.Store.Path != "bays.geojson" {
		t.Fatalf("store: %+v", cfg.Store)
	}
	if !cfg.Editor.Snap || cfg.Editor.Theme != "dark" || cfg.Editor.HandleRadius != 6 {
		t.Fatalf("editor: %+v", cfg.Editor)
	}
	if cfg.NATS.URL != "" || cfg.Valkey.Addr != "" {
		t.Fatal("optional integrations must default to off")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BAYMAP_STORE_DRIVER", "postgres")
	t.Setenv("BAYMAP_DATABASE_HOST", "db.internal")
	t.Setenv("BAYMAP_EDITOR_SITE_ID", "site-7")
	t.Setenv("BAYMAP_EDITOR_SNAP", "false")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != config.DriverPostgres || cfg.Database.Host != "db.internal" {
		t.Fatalf("env not applied: %+v %+v", cfg.Store, cfg.Database)
	}
	if cfg.Editor.SiteID != "site-7" || cfg.Editor.Snap {
		t.Fatalf("editor: %+v", cfg.Editor)
	}
	if got := cfg.Database.DSN(); got != "postgres://baymap:@db.internal:5432/baymap?sslmode=disable" {
		t.Fatalf("dsn: %s", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	body := "store:\n  driver: remote\nremote:\n  base_url: https://bays.example\neditor:\n  theme: contrast\n  meters_per_pixel: 0.5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Remote.BaseURL != "https://bays.example" || cfg.Editor.Theme != "contrast" || cfg.Editor.MetersPerPixel != 0.5 {
		t.Fatalf("file not applied: %+v", cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Store:  config.StoreConfig{Driver: config.DriverFile, Path: "bays.geojson"},
			Server: config.ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
			Editor: config.EditorConfig{Theme: "dark", MetersPerPixel: 1, HandleRadius: 6},
		}
	}
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		want   string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"unknown driver", func(c *config.Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"postgres needs db", func(c *config.Config) { c.Store.Driver = config.DriverPostgres }, "database.host"},
		{"remote url", func(c *config.Config) {
			c.Store.Driver = config.DriverRemote
			c.Remote = config.RemoteConfig{BaseURL: "ftp://x", Timeout: 1}
		}, "remote.base_url"},
		{"theme", func(c *config.Config) { c.Editor.Theme = "neon" }, "editor.theme"},
		{"scale", func(c *config.Config) { c.Editor.MetersPerPixel = 0 }, "editor.meters_per_pixel"},
		{"valkey ttl", func(c *config.Config) { c.Valkey.Addr = "localhost:6379" }, "valkey.ttl"},
		{"nats subject", func(c *config.Config) { c.NATS.URL = "nats://localhost:4222" }, "nats.subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
