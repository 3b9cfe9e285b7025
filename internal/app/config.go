package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/farmassist/farmassist-backend/internal/platform/envutil"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type Config struct {
	Port            string `yaml:"port"`
	JWTSecretKey    string `yaml:"jwt_secret_key"`
	AccessTokenTTL  time.Duration
	DefaultLocation string `yaml:"default_location"`

	AccessTokenTTLSeconds int `yaml:"access_token_ttl_seconds"`
}

// LoadConfig reads the optional YAML file named by CONFIG_FILE and then
// lets environment variables override each field. Everything has a
// development default so a bare `go run` works.
func LoadConfig(log *logger.Logger) (Config, error) {
	var cfg Config

	if path := envutil.GetEnv("CONFIG_FILE", "", log); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = envutil.GetEnv("PORT", orDefault(cfg.Port, "8080"), log)
	cfg.JWTSecretKey = envutil.GetEnv("JWT_SECRET_KEY", orDefault(cfg.JWTSecretKey, "defaultsecret"), log)
	cfg.DefaultLocation = envutil.GetEnv("DEFAULT_LOCATION", orDefault(cfg.DefaultLocation, "Delhi"), log)

	ttlSeconds := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", cfg.AccessTokenTTLSeconds, log)
	if ttlSeconds <= 0 {
		ttlSeconds = 86400
	}
	cfg.AccessTokenTTLSeconds = ttlSeconds
	cfg.AccessTokenTTL = time.Duration(ttlSeconds) * time.Second

	return cfg, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
