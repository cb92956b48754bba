package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/composite"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
)

// Config holds settings loaded from ~/.config/turnstyle/config.toml.
// Every field has a working default; a missing config file is not an error.
type Config struct {
	// DeviceClass selects the layout profile: "regular" or "compact".
	DeviceClass string `toml:"device_class"`

	// UserID owns looks created by this machine.
	UserID string `toml:"user_id"`

	Composite CompositeConfig `toml:"composite"`
	Store     StoreConfig     `toml:"store"`
	Redis     RedisConfig     `toml:"redis"`
	Serve     ServeConfig     `toml:"serve"`
}

// CompositeConfig controls composite rendering.
type CompositeConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// BGRemoval selects background removal: "none", "chroma", or "api".
	BGRemoval string `toml:"bg_removal"`

	// BGRemovalEndpoint is the removal service URL when BGRemoval is "api".
	BGRemovalEndpoint string `toml:"bg_removal_endpoint"`

	// BGRemovalTolerance tunes chroma keying. Zero uses the default.
	BGRemovalTolerance float64 `toml:"bg_removal_tolerance"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Backend is "memory" or "mongo".
	Backend string `toml:"backend"`

	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// RedisConfig enables a shared Redis cache when Addr is set.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ServeConfig controls the HTTP server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() *Config {
	return &Config{
		DeviceClass: string(geometry.DeviceRegular),
		UserID:      "local",
		Composite: CompositeConfig{
			Width:     composite.DefaultWidth,
			Height:    composite.DefaultHeight,
			BGRemoval: "none",
		},
		Store: StoreConfig{
			Backend:       "memory",
			MongoDatabase: appName,
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields the defaults; a malformed file is an
// error.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DeviceClass {
	case string(geometry.DeviceRegular), string(geometry.DeviceCompact):
	default:
		return fmt.Errorf("unknown device_class %q (want regular or compact)", c.DeviceClass)
	}
	switch c.Store.Backend {
	case "memory", "mongo":
	default:
		return fmt.Errorf("unknown store backend %q (want memory or mongo)", c.Store.Backend)
	}
	if c.Store.Backend == "mongo" && c.Store.MongoURI == "" {
		return fmt.Errorf("store backend mongo requires mongo_uri")
	}
	switch c.Composite.BGRemoval {
	case "", "none", "chroma", "api":
	default:
		return fmt.Errorf("unknown bg_removal %q (want none, chroma, or api)", c.Composite.BGRemoval)
	}
	if c.Composite.BGRemoval == "api" && c.Composite.BGRemovalEndpoint == "" {
		return fmt.Errorf("bg_removal api requires bg_removal_endpoint")
	}
	return nil
}

// Profile returns the layout profile for the configured device class.
func (c *Config) Profile() geometry.LayoutProfile {
	return geometry.ProfileFor(geometry.DeviceClass(c.DeviceClass))
}
