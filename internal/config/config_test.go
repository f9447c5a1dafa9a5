package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 500*time.Millisecond, cfg.Animation.InitialDelay)
	assert.Equal(t, 30*time.Millisecond, cfg.Animation.PerCharDelay)
	assert.Equal(t, 10, cfg.Suggestions.Max)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "fundchat.yaml", `
animation:
  initial_delay: 1s
  per_char_delay: 10ms
suggestions:
  max: 5
source:
  kind: static
  funds: [BlueFund, RedFund]
cache:
  kind: redis
  ttl: 30m
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Animation.InitialDelay)
	assert.Equal(t, 10*time.Millisecond, cfg.Animation.PerCharDelay)
	assert.Equal(t, 5, cfg.Suggestions.Max)
	assert.Equal(t, SourceStatic, cfg.Source.Kind)
	assert.Equal(t, []string{"BlueFund", "RedFund"}, cfg.Source.Funds)
	assert.Equal(t, CacheRedis, cfg.Cache.Kind)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr, "unset keys keep defaults")
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "fundchat.toml", `
max_input_size = 1024

[server]
port = 9090
allow_origin = "http://localhost:3000"
session_ttl = "30m"

[mcp]
transport = "sse"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.MaxInputSize)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.AllowOrigin)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, TransportSSE, cfg.MCP.Transport)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "fundchat.json", `{"log": {"level": "debug", "format": "json"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "fundchat.yaml", "server:\n  port: 9090\n")
	t.Setenv("FUNDCHAT_SERVER_PORT", "7070")
	t.Setenv("FUNDCHAT_ANIMATION_PER_CHAR_DELAY", "5ms")
	t.Setenv("FUNDCHAT_SOURCE_FUNDS", "A,B,C")
	t.Setenv("FUNDCHAT_MAX_INPUT_SIZE", "2048")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 5*time.Millisecond, cfg.Animation.PerCharDelay)
	assert.Equal(t, []string{"A", "B", "C"}, cfg.Source.Funds)
	assert.Equal(t, 2048, cfg.MaxInputSize)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeFile(t, "fundchat.yaml", "animation:\n  speed: fast\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "speed")
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, "fundchat.yaml", "cache:\n  kind: disk\nsuggestions:\n  max: 0\nserver:\n  session_ttl: 0s\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.session_ttl must be positive")
	assert.Contains(t, err.Error(), `unknown cache.kind "disk"`)
	assert.Contains(t, err.Error(), "suggestions.max must be positive")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeFile(t, "fundchat.yaml", "animation: [unclosed\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "FUNDCHAT_CACHE_REDIS_ADDR", EnvName("cache", "redis_addr"))
	assert.Equal(t, "FUNDCHAT_MAX_INPUT_SIZE", EnvName("max_input_size"))
}
