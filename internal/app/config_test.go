package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := LoadConfig(testLogger(t))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.MaxTreeDepth != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AccessTokenTTL().Seconds() != 3600 {
		t.Fatalf("access ttl = %v", cfg.AccessTokenTTL())
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("http_port: \"9000\"\nmax_tree_depth: 5\njwt_secret_key: from-file\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET_KEY", "from-env")

	cfg, err := LoadConfig(testLogger(t))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPPort != "9000" || cfg.MaxTreeDepth != 5 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.JWTSecretKey != "from-env" {
		t.Fatalf("env must override file, got %q", cfg.JWTSecretKey)
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{ not yaml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	if _, err := LoadConfig(testLogger(t)); err == nil {
		t.Fatalf("expected parse error")
	}
}
