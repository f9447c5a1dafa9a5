// Package config loads fundchat settings from a YAML, TOML or JSON file and
// FUNDCHAT_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "fundchat.yaml"

// EnvPrefix prefixes every environment override, e.g. FUNDCHAT_SERVER_PORT.
const EnvPrefix = "FUNDCHAT"

// Source kinds.
const (
	SourceStatic = "static"
	SourceHTTP   = "http"
)

// Cache kinds.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

type Config struct {
	Animation    AnimationConfig   `mapstructure:"animation"`
	Suggestions  SuggestionsConfig `mapstructure:"suggestions"`
	Source       SourceConfig      `mapstructure:"source"`
	Cache        CacheConfig       `mapstructure:"cache"`
	Server       ServerConfig      `mapstructure:"server"`
	MCP          MCPConfig         `mapstructure:"mcp"`
	Log          LogConfig         `mapstructure:"log"`
	MaxInputSize int               `mapstructure:"max_input_size"`
}

type AnimationConfig struct {
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	PerCharDelay time.Duration `mapstructure:"per_char_delay"`
}

type SuggestionsConfig struct {
	Max          int           `mapstructure:"max"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

type SourceConfig struct {
	Kind    string   `mapstructure:"kind"`
	BaseURL string   `mapstructure:"base_url"`
	Funds   []string `mapstructure:"funds"`
}

type CacheConfig struct {
	Kind          string        `mapstructure:"kind"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
	Prefix        string        `mapstructure:"prefix"`
}

type ServerConfig struct {
	Port        int           `mapstructure:"port"`
	AllowOrigin string        `mapstructure:"allow_origin"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

type MCPConfig struct {
	Transport string `mapstructure:"transport"`
	Port      int    `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Animation: AnimationConfig{
			InitialDelay: domain.DefaultInitialDelay,
			PerCharDelay: domain.DefaultPerCharDelay,
		},
		Suggestions: SuggestionsConfig{
			Max:          domain.DefaultMaxSuggestions,
			FetchTimeout: 15 * time.Second,
		},
		Source: SourceConfig{
			Kind:    SourceHTTP,
			BaseURL: "https://api.mfapi.in",
		},
		Cache: CacheConfig{
			Kind:      CacheMemory,
			RedisAddr: "localhost:6379",
			TTL:       time.Hour,
			Prefix:    "fundchat:",
		},
		Server: ServerConfig{
			Port:        8080,
			AllowOrigin: "*",
			SessionTTL:  10 * time.Minute,
		},
		MCP: MCPConfig{
			Transport: TransportStdio,
			Port:      8081,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		MaxInputSize: 4096,
	}
}

// envKeys lists the settings that can be overridden from the environment.
var envKeys = [][]string{
	{"animation", "initial_delay"},
	{"animation", "per_char_delay"},
	{"suggestions", "max"},
	{"suggestions", "fetch_timeout"},
	{"source", "kind"},
	{"source", "base_url"},
	{"source", "funds"},
	{"cache", "kind"},
	{"cache", "redis_addr"},
	{"cache", "redis_password"},
	{"cache", "redis_db"},
	{"cache", "ttl"},
	{"cache", "prefix"},
	{"server", "port"},
	{"server", "allow_origin"},
	{"server", "session_ttl"},
	{"mcp", "transport"},
	{"mcp", "port"},
	{"log", "level"},
	{"log", "format"},
	{"max_input_size"},
}

// EnvName returns the environment variable overriding the setting at path.
func EnvName(path ...string) string {
	parts := []string{EnvPrefix}
	for _, p := range path {
		parts = append(parts, strcase.ToScreamingSnake(p))
	}
	return strings.Join(parts, "_")
}

// Load reads path (a missing file means defaults), applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	raw, err := readFile(path)
	if err != nil {
		return Config{}, err
	}
	applyEnv(raw, os.LookupEnv)

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Animation.InitialDelay < 0 || c.Animation.PerCharDelay < 0 {
		errs = append(errs, errors.New("animation delays must not be negative"))
	}
	if c.Suggestions.Max <= 0 {
		errs = append(errs, fmt.Errorf("suggestions.max must be positive, got %d", c.Suggestions.Max))
	}
	switch c.Source.Kind {
	case SourceStatic, SourceHTTP:
	default:
		errs = append(errs, fmt.Errorf("unknown source.kind %q", c.Source.Kind))
	}
	switch c.Cache.Kind {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown cache.kind %q", c.Cache.Kind))
	}
	switch c.MCP.Transport {
	case TransportStdio, TransportSSE:
	default:
		errs = append(errs, fmt.Errorf("unknown mcp.transport %q", c.MCP.Transport))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("server.session_ttl must be positive, got %s", c.Server.SessionTTL))
	}
	return errors.Join(errs...)
}

func readFile(path string) (map[string]any, error) {
	raw := map[string]any{}
	if path == "" {
		return raw, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return raw, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func applyEnv(raw map[string]any, lookup func(string) (string, bool)) {
	for _, key := range envKeys {
		val, ok := lookup(EnvName(key...))
		if !ok {
			continue
		}
		node := raw
		for _, section := range key[:len(key)-1] {
			child, ok := node[section].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[section] = child
			}
			node = child
		}
		node[key[len(key)-1]] = val
	}
}
