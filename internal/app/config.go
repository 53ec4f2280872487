package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deepstudy/deepstudy-backend/internal/platform/envutil"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
)

// Config is the process configuration. Values come from an optional yaml
// file (CONFIG_PATH, default config.yaml) with environment variables taking
// precedence over file values.
type Config struct {
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	HTTPPort    string `yaml:"http_port"`

	JWTSecretKey           string `yaml:"jwt_secret_key"`
	AccessTokenTTLSeconds  int    `yaml:"access_token_ttl_seconds"`
	RefreshTokenTTLSeconds int    `yaml:"refresh_token_ttl_seconds"`

	MaxTreeDepth int `yaml:"max_tree_depth"`
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLSeconds) * time.Second
}

func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLSeconds) * time.Second
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Environment:            "development",
		HTTPPort:               "8080",
		JWTSecretKey:           "defaultsecret",
		AccessTokenTTLSeconds:  3600,
		RefreshTokenTTLSeconds: 86400,
		MaxTreeDepth:           10,
	}

	path := envutil.String("CONFIG_PATH", "config.yaml")
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		log.Debug("no config file found, using defaults and env", "path", path)
	default:
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg.Environment = envutil.String("APP_ENV", cfg.Environment)
	cfg.Version = envutil.String("APP_VERSION", cfg.Version)
	cfg.HTTPPort = envutil.String("HTTP_PORT", cfg.HTTPPort)
	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey)
	cfg.AccessTokenTTLSeconds = envutil.Int("ACCESS_TOKEN_TTL", cfg.AccessTokenTTLSeconds)
	cfg.RefreshTokenTTLSeconds = envutil.Int("REFRESH_TOKEN_TTL", cfg.RefreshTokenTTLSeconds)
	cfg.MaxTreeDepth = envutil.Int("MAX_TREE_DEPTH", cfg.MaxTreeDepth)

	if cfg.MaxTreeDepth < 1 {
		cfg.MaxTreeDepth = 10
	}

	return cfg, nil
}
