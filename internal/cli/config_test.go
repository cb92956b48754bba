package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.DeviceClass != string(geometry.DeviceRegular) {
		t.Errorf("DeviceClass = %q, want %q", cfg.DeviceClass, geometry.DeviceRegular)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Serve.Addr != ":8080" {
		t.Errorf("Serve.Addr = %q, want :8080", cfg.Serve.Addr)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
device_class = "compact"
user_id = "u-42"

[composite]
width = 300
height = 400
bg_removal = "chroma"

[store]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"

[redis]
addr = "localhost:6379"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.DeviceClass != string(geometry.DeviceCompact) {
		t.Errorf("DeviceClass = %q, want compact", cfg.DeviceClass)
	}
	if cfg.UserID != "u-42" {
		t.Errorf("UserID = %q, want u-42", cfg.UserID)
	}
	if cfg.Composite.Width != 300 || cfg.Composite.Height != 400 {
		t.Errorf("Composite dims = %dx%d, want 300x400", cfg.Composite.Width, cfg.Composite.Height)
	}
	if cfg.Store.Backend != "mongo" {
		t.Errorf("Store.Backend = %q, want mongo", cfg.Store.Backend)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q, want localhost:6379", cfg.Redis.Addr)
	}

	profile := cfg.Profile()
	if profile.Class != geometry.DeviceCompact {
		t.Errorf("Profile().Class = %q, want compact", profile.Class)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad device class", `device_class = "tablet"`},
		{"bad backend", "[store]\nbackend = \"postgres\""},
		{"mongo without uri", "[store]\nbackend = \"mongo\""},
		{"bad bg removal", "[composite]\nbg_removal = \"magic\""},
		{"api without endpoint", "[composite]\nbg_removal = \"api\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadConfig() error = nil, want validation error")
			}
		})
	}
}

func TestLoadConfigMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q, want memory defaults", cfg.Store.Backend)
	}
}
