package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix     = "STREAMHUB_"
	ConfigPathEnv = "STREAMHUB_CONFIG"
)

type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	GRPC     GRPCConfig     `koanf:"grpc"`
	Sync     SyncConfig     `koanf:"sync"`
	Database DatabaseConfig `koanf:"database"`
	Media    MediaConfig    `koanf:"media"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
	Shelves  ShelvesConfig  `koanf:"shelves"`
}

type HTTPConfig struct {
	Addr           string   `koanf:"addr" validate:"required"`
	TrustedProxies []string `koanf:"trusted_proxies"`
}

type GRPCConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

type SyncConfig struct {
	TCPAddr string `koanf:"tcp_addr"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type MediaConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required,min=8"`
	JWTIssuer string        `koanf:"jwt_issuer" validate:"required"`
	JWTTTL    time.Duration `koanf:"jwt_ttl" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type ShelvesConfig struct {
	PopularWindowDays int `koanf:"popular_window_days" validate:"gt=0"`
	Limit             int `koanf:"limit" validate:"gt=0"`
	NewestLimit       int `koanf:"newest_limit" validate:"gt=0,lte=50"`
	GenreLimit        int `koanf:"genre_limit" validate:"gt=0"`
	RecentFetch       int `koanf:"recent_fetch" validate:"gt=0"`
}

func defaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return Config{
		HTTP:     HTTPConfig{Addr: ":8080", TrustedProxies: []string{"127.0.0.1"}},
		GRPC:     GRPCConfig{Addr: ":9090"},
		Sync:     SyncConfig{TCPAddr: ":7070"},
		Database: DatabaseConfig{Path: filepath.Join(home, ".streamhub", "data.db")},
		Media:    MediaConfig{Dir: "media"},
		Auth: AuthConfig{
			// dev default (change for production)
			JWTSecret: "dev-secret-change-me",
			JWTIssuer: "streamhub",
			JWTTTL:    24 * time.Hour,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Shelves: ShelvesConfig{
			PopularWindowDays: 30,
			Limit:             20,
			NewestLimit:       20,
			GenreLimit:        15,
			RecentFetch:       20,
		},
	}
}

// Load layers struct defaults, an optional YAML file and STREAMHUB_* env vars,
// in that order of increasing priority. An empty path falls back to
// $STREAMHUB_CONFIG, then ./config.yaml when present.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load for binaries that cannot run without configuration.
func MustLoad() *Config {
	cfg, err := Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// envKey maps STREAMHUB_HTTP_ADDR to http.addr and
// STREAMHUB_SHELVES_POPULAR_WINDOW_DAYS to shelves.popular_window_days.
// Only the first underscore separates section from field.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + field
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	for _, p := range []string{"config.yaml", "config.yml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
