// Package config loads bagrules settings.
//
// Settings are layered, later sources winning:
//
//  1. [Default] values
//  2. a config file, TOML or YAML by extension
//  3. a .env file and BAGRULES_* environment variables
//  4. command-line flags (applied by the caller)
//
// Load does not validate; call [Config.Validate] once flags are applied.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/bagrules/pkg/errors"
)

const (
	appName   = "bagrules"
	envPrefix = "BAGRULES_"

	// DefaultTarget is the entity queried when none is configured.
	DefaultTarget = "shiny gold"

	// DefaultCacheTTL bounds how long cached query results are reused.
	DefaultCacheTTL = 24 * time.Hour
)

// Config holds all user-tunable settings.
type Config struct {
	Target      string        `toml:"target" yaml:"target" validate:"required,entity"`
	Workers     int           `toml:"workers" yaml:"workers" validate:"gte=1,lte=256"`
	CacheDir    string        `toml:"cache_dir" yaml:"cache_dir"`
	NoCache     bool          `toml:"no_cache" yaml:"no_cache"`
	CacheTTL    time.Duration `toml:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
	LogLevel    string        `toml:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	MetricsFile string        `toml:"metrics_file" yaml:"metrics_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Target:   DefaultTarget,
		Workers:  1,
		CacheTTL: DefaultCacheTTL,
		LogLevel: "info",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/bagrules/config.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load builds a Config from defaults, the file at path and the environment.
// An empty path means DefaultPath, which may be absent; an explicit path
// must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if !explicit && errs.Is(err, errs.ErrCodeFileNotFound) {
				err = nil
			}
			if err != nil {
				return cfg, err
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from .env files into the process environment.
// Variables that are already set are left alone. Missing files are ignored,
// so the default call is safe outside a project directory.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "load %s", strings.Join(present, ", "))
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errs.New(errs.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config")
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unsupported config format %q (use .toml, .yaml or .yml)", ext)
	}
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", filepath.Base(path))
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("TARGET"); ok {
		c.Target = v
	}
	if v, ok := get("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "%sWORKERS", envPrefix)
		}
		c.Workers = n
	}
	if v, ok := get("CACHE_DIR"); ok {
		c.CacheDir = v
	}
	if v, ok := get("NO_CACHE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "%sNO_CACHE", envPrefix)
		}
		c.NoCache = b
	}
	if v, ok := get("CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "%sCACHE_TTL", envPrefix)
		}
		c.CacheTTL = d
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := get("METRICS_FILE"); ok {
		c.MetricsFile = v
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("entity", func(fl validator.FieldLevel) bool {
		return errs.ValidateEntityName(fl.Field().String()) == nil
	})
	return v
}

// Validate checks every field and reports the first violation.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
		fe := ve[0]
		if fe.Tag() == "entity" {
			return errs.Wrap(errs.ErrCodeInvalidConfig, errs.ValidateEntityName(c.Target), "invalid target")
		}
		return errs.New(errs.ErrCodeInvalidConfig, "invalid %s: failed %q check (value %v)", fe.Field(), fe.Tag(), fe.Value())
	}
	return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid config")
}
