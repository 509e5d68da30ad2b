package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRemote   = "remote"
)

// Config holds all application configuration.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Valkey   ValkeyConfig   `mapstructure:"valkey"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Server   ServerConfig   `mapstructure:"server"`
	Editor   EditorConfig   `mapstructure:"editor"`
	Log      LogConfig      `mapstructure:"log"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RemoteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout in seconds.
	Timeout int `mapstructure:"timeout"`
}

// ValkeyConfig enables the bay list cache when Addr is set.
type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
	// TTL in seconds.
	TTL int `mapstructure:"ttl"`
}

// NATSConfig enables bay change events when URL is set.
type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// MetricsConfig serves /metrics from the editor when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type EditorConfig struct {
	SiteID         string  `mapstructure:"site_id"`
	Snap           bool    `mapstructure:"snap"`
	Theme          string  `mapstructure:"theme"`
	CenterLon      float64 `mapstructure:"center_lon"`
	CenterLat      float64 `mapstructure:"center_lat"`
	MetersPerPixel float64 `mapstructure:"meters_per_pixel"`
	Basemap        string  `mapstructure:"basemap"`
	HandleRadius   float64 `mapstructure:"handle_radius"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration from .env, an optional baymap.yaml and the
// environment. file overrides the config file search when not empty.
func Load(file string) (*Config, error) {
	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("baymap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		_ = v.ReadInConfig() // OK if missing
	}

	// Environment variables: BAYMAP_EDITOR_SITE_ID → editor.site_id
	v.SetEnvPrefix("BAYMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.path", "bays.geojson")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "baymap")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "baymap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("remote.base_url", "http://localhost:8080")
	v.SetDefault("remote.timeout", 10)
	v.SetDefault("valkey.addr", "")
	v.SetDefault("valkey.ttl", 60)
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "baymap.bays")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("editor.site_id", "")
	v.SetDefault("editor.snap", true)
	v.SetDefault("editor.theme", "dark")
	v.SetDefault("editor.center_lon", 0.0)
	v.SetDefault("editor.center_lat", 0.0)
	v.SetDefault("editor.meters_per_pixel", 0.25)
	v.SetDefault("editor.basemap", "")
	v.SetDefault("editor.handle_radius", 6.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "baymap.log")
}

var themes = []string{"dark", "light", "contrast"}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	switch c.Store.Driver {
	case DriverFile:
		if c.Store.Path == "" {
			errs = append(errs, "store.path is required for the file driver")
		}
	case DriverPostgres:
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "database.max_conns must be positive")
		}
	case DriverRemote:
		if !strings.HasPrefix(c.Remote.BaseURL, "http://") && !strings.HasPrefix(c.Remote.BaseURL, "https://") {
			errs = append(errs, fmt.Sprintf("remote.base_url must be an http(s) URL, got %q", c.Remote.BaseURL))
		}
		if c.Remote.Timeout <= 0 {
			errs = append(errs, "remote.timeout must be positive")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be file, postgres or remote, got %q", c.Store.Driver))
	}

	if c.Valkey.Addr != "" && c.Valkey.TTL <= 0 {
		errs = append(errs, "valkey.ttl must be positive")
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		errs = append(errs, "nats.subject is required when nats.url is set")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Editor.MetersPerPixel <= 0 {
		errs = append(errs, "editor.meters_per_pixel must be positive")
	}
	if c.Editor.HandleRadius <= 0 {
		errs = append(errs, "editor.handle_radius must be positive")
	}
	if c.Editor.CenterLat < -85 || c.Editor.CenterLat > 85 {
		errs = append(errs, fmt.Sprintf("editor.center_lat must be within ±85, got %g", c.Editor.CenterLat))
	}
	if !validTheme(c.Editor.Theme) {
		errs = append(errs, fmt.Sprintf("editor.theme must be one of %s, got %q", strings.Join(themes, ", "), c.Editor.Theme))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validTheme(name string) bool {
	for _, t := range themes {
		if t == name {
			return true
		}
	}
	return false
}
