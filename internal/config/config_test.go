package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-autograde/internal/config"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Mode != config.ModeOffline || cfg.HTTPAddr != ":8080" || cfg.DBDriver != "sqlite" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SiteID != "local" {
		t.Fatalf("site id = %q", cfg.SiteID)
	}
	if cfg.LemmaTimeout != 2*time.Second || cfg.LemmaCacheSize != 10000 || !cfg.MetricsEnabled {
		t.Fatalf("unexpected lemma/metrics defaults: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins(), []string{"http://localhost:3000", "http://localhost:3010"}) {
		t.Fatalf("offline origins = %v", cfg.CORSOrigins())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("LEMMA_TIMEOUT", "750ms")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("SITE_ID", "lab-7")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Mode != config.ModeOnline || cfg.DBDriver != "postgres" {
		t.Fatalf("overrides ignored: %+v", cfg)
	}
	if cfg.LemmaTimeout != 750*time.Millisecond || cfg.MetricsEnabled || cfg.SiteID != "lab-7" {
		t.Fatalf("typed overrides ignored: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins(), []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("online origins = %v", cfg.CORSOrigins())
	}
}

func TestFromEnvConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradingd.yaml")
	if err := os.WriteFile(path, []byte("HTTP_ADDR: \":9090\"\nLOG_LEVEL: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("file value ignored: %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("env should win over file, got %q", cfg.LogLevel)
	}
}

func TestFromEnvMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := config.FromEnv(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
