// Package cli implements the bagrules command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bagrules/pkg/buildinfo"
	"github.com/matzehuels/bagrules/pkg/cache"
	"github.com/matzehuels/bagrules/pkg/config"
	errs "github.com/matzehuels/bagrules/pkg/errors"
	"github.com/matzehuels/bagrules/pkg/observability"
	"github.com/matzehuels/bagrules/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "bagrules"

	// stdinName is the input argument that selects standard input.
	stdinName = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfg     config.Config
	flags   globalFlags
	metrics *observability.Metrics
}

type globalFlags struct {
	configPath  string
	verbose     bool
	noCache     bool
	metricsFile string
	workers     int
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Bagrules answers questions about nested bag containment rules",
		Long: `Bagrules reads rules of the form

  light red bags contain 1 bright white bag, 2 muted yellow bags.

builds the containment graph they describe and answers two questions about
a target bag: how many bag colors can eventually hold it, and how many bags
it must hold itself.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&c.flags.configPath, "config", "", "config file (.toml, .yaml); default $XDG_CONFIG_HOME/bagrules/config.toml")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable the result cache")
	pf.StringVar(&c.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
	pf.IntVar(&c.flags.workers, "workers", 1, "parse input lines with this many goroutines")

	root.AddCommand(c.ancestorsCommand())
	root.AddCommand(c.contentsCommand())
	root.AddCommand(c.rulesCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup layers configuration from file, environment and flags, then applies
// it to the logger and observability hooks.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("no-cache") {
		cfg.NoCache = c.flags.noCache
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = c.flags.metricsFile
	}
	if flags.Changed("workers") {
		cfg.Workers = c.flags.workers
	}
	if c.flags.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "log level")
	}
	c.SetLogLevel(level)

	if cfg.MetricsFile != "" && c.metrics == nil {
		c.metrics = observability.NewMetrics()
		observability.SetQueryHooks(c.metrics)
		observability.SetCacheHooks(c.metrics)
	}
	c.Logger.Debug("loaded config", "target", cfg.Target, "workers", cfg.Workers, "no_cache", cfg.NoCache)
	return nil
}

// Shutdown flushes state that outlives a single command, currently the
// metrics textfile. It is safe to call when no command ran.
func (c *CLI) Shutdown() error {
	if c.metrics == nil || c.cfg.MetricsFile == "" {
		return nil
	}
	if err := c.metrics.WriteTextfile(c.cfg.MetricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	c.Logger.Debug("wrote metrics", "path", c.cfg.MetricsFile)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Cache keys are scoped by
// build so an upgraded binary never serves results computed by an older one.
func (c *CLI) newRunner() (*pipeline.Runner, error) {
	rc, err := c.newCache()
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
	return pipeline.NewRunner(rc, keyer, c.Logger), nil
}

func (c *CLI) newCache() (cache.Cache, error) {
	if c.cfg.NoCache {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.CacheDir != "" {
		return c.cfg.CacheDir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/bagrules/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Input
// =============================================================================

// readInput returns the rule text named by args and a display name for it.
// No argument or "-" reads stdin.
func readInput(stdin io.Reader, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == stdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", errs.Wrap(errs.ErrCodeInvalidInput, err, "read stdin")
		}
		return string(data), "stdin", nil
	}

	path := args[0]
	if err := errs.ValidatePath(path); err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", errs.New(errs.ErrCodeFileNotFound, "file not found: %s", path)
		}
		return "", "", errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", path)
	}
	return string(data), filepath.Base(path), nil
}

// targetOr returns flag when set, else the configured target.
func (c *CLI) targetOr(flag string) string {
	if t := strings.TrimSpace(flag); t != "" {
		return t
	}
	return c.cfg.Target
}
