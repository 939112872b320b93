package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/bagrules/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"TARGET", "WORKERS", "CACHE_DIR", "NO_CACHE", "CACHE_TTL", "LOG_LEVEL", "METRICS_FILE"} {
		t.Setenv(envPrefix+k, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "shiny gold", cfg.Target)
	assert.Equal(t, 1, cfg.Workers)
}

func TestLoadMissingDefaultFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeFileNotFound))
}

func TestLoadTOML(t *testing.T) {
	isolate(t)
	path := writeFile(t, "config.toml", `
target = "dark olive"
workers = 4
cache_ttl = "90m"
log_level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dark olive", cfg.Target)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 90*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.NoCache)
}

func TestLoadYAML(t *testing.T) {
	isolate(t)
	path := writeFile(t, "config.yaml", "target: vibrant plum\nno_cache: true\nmetrics_file: /tmp/m.prom\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "vibrant plum", cfg.Target)
	assert.True(t, cfg.NoCache)
	assert.Equal(t, "/tmp/m.prom", cfg.MetricsFile)
	assert.Equal(t, 1, cfg.Workers, "unset keys keep defaults")
}

func TestLoadDefaultPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, appName), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, appName, "config.toml"), []byte(`workers = 3`), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	isolate(t)
	path := writeFile(t, "config.json", `{}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))
}

func TestLoadMalformedFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, "config.toml", `workers = "many`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, "config.toml", `target = "dark olive"`)
	t.Setenv("BAGRULES_TARGET", "faded blue")
	t.Setenv("BAGRULES_WORKERS", "8")
	t.Setenv("BAGRULES_NO_CACHE", "true")
	t.Setenv("BAGRULES_CACHE_TTL", "5m")
	t.Setenv("BAGRULES_LOG_LEVEL", "WARN")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "faded blue", cfg.Target)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.NoCache)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestEnvInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"BAGRULES_WORKERS", "lots"},
		{"BAGRULES_NO_CACHE", "perhaps"},
		{"BAGRULES_CACHE_TTL", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	path := writeFile(t, ".env", "BAGRULES_TARGET=muted yellow\n")
	os.Unsetenv("BAGRULES_TARGET")
	t.Cleanup(func() { os.Unsetenv("BAGRULES_TARGET") })

	require.NoError(t, LoadDotEnv(path))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "muted yellow", cfg.Target)
}

func TestLoadDotEnvMissingIsIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty target", func(c *Config) { c.Target = "" }},
		{"one word target", func(c *Config) { c.Target = "gold" }},
		{"three word target", func(c *Config) { c.Target = "very shiny gold" }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"too many workers", func(c *Config) { c.Workers = 1000 }},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}
