package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort      = 8300
	DefaultRedisAddr = "127.0.0.1:6379"
	configEnvVar     = "MEETUP_CONFIG"
)

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Port:       DefaultPort,
		SessionTTL: "168h",
		Redis:      RedisConfig{Addr: DefaultRedisAddr},
	}
}

// DefaultPath is ~/.config/meetup/meetup.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "meetup.yaml"
	}
	return filepath.Join(home, ".config", "meetup", "meetup.yaml")
}

// Load reads the YAML file named by MEETUP_CONFIG (or the default path),
// then applies environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	path := os.Getenv(configEnvVar)
	if path == "" {
		path = DefaultPath()
	}
	return LoadFrom(path, os.Getenv)
}

// LoadFrom is Load with an explicit file path and environment lookup.
func LoadFrom(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	// Either variable name is accepted for the text-generation key.
	if v := firstNonEmpty(getenv("GOOGLE_API_KEY"), getenv("GEMINI_API_KEY")); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := firstNonEmpty(getenv("GOOGLE_MAPS_API_KEY"), getenv("NEXT_PUBLIC_GOOGLE_MAPS_API_KEY")); v != "" {
		cfg.MapsAPIKey = v
	}
	if v := getenv("GEMINI_MODELS"); v != "" {
		cfg.GeminiModels = splitList(v)
	}
	if v := getenv("MEETUP_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := getenv("MEETUP_SESSION_TTL"); v != "" {
		cfg.SessionTTL = v
	}
	if v := getenv("MEETUP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MEETUP_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.Redis.DB = db
	}
	if v := getenv("GOOGLE_OAUTH_CLIENT_ID"); v != "" {
		cfg.OAuth.ClientID = v
	}
	if v := getenv("GOOGLE_OAUTH_CLIENT_SECRET"); v != "" {
		cfg.OAuth.ClientSecret = v
	}
	if v := getenv("GOOGLE_OAUTH_REDIRECT_URL"); v != "" {
		cfg.OAuth.RedirectURL = v
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
