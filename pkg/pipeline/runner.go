package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/bagrules/pkg/cache"
	"github.com/matzehuels/bagrules/pkg/dag"
	"github.com/matzehuels/bagrules/pkg/observability"
	"github.com/matzehuels/bagrules/pkg/query"
	"github.com/matzehuels/bagrules/pkg/rules"
)

const keyTypeResult = "result"

// Runner encapsulates query execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs parse → build → query with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	logger := r.Logger.With("run", runID[:8])
	inputHash := cache.Hash([]byte(opts.Input))
	key := r.Keyer.ResultKey(inputHash, cache.ResultKeyOpts{
		Query:  string(opts.Query),
		Target: opts.Target,
		List:   opts.List,
	})

	if !opts.Refresh {
		if res, ok := r.lookup(ctx, key); ok {
			res.RunID = runID
			res.CacheHit = true
			logger.Debug("cache hit", "query", opts.Query, "target", opts.Target)
			return res, nil
		}
	}

	result := &Result{
		RunID:     runID,
		Query:     opts.Query,
		Target:    opts.Target,
		InputHash: inputHash,
	}

	g, err := r.load(ctx, logger, opts.Input, opts.Query.Direction(), opts.Workers, &result.Stats)
	if err != nil {
		return nil, err
	}
	for _, e := range g.Duplicates() {
		result.Duplicates = append(result.Duplicates, e.String())
	}

	queryStart := time.Now()
	value, err := opts.Query.Run(g, opts.target)
	result.Stats.QueryTime = time.Since(queryStart)
	observability.Query().OnQuery(ctx, string(opts.Query), opts.Target, value, result.Stats.QueryTime, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Query, err)
	}
	result.Value = value

	if opts.List && opts.Query == query.KindAncestors {
		set, err := query.AncestorSet(g, opts.target)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opts.Query, err)
		}
		result.Ancestors = make([]string, len(set))
		for i, e := range set {
			result.Ancestors[i] = e.String()
		}
	}

	logger.Info("answered query",
		"query", opts.Query,
		"target", opts.Target,
		"value", value,
		"duration", result.Stats.QueryTime)

	r.store(ctx, key, result, opts.CacheTTL)
	return result, nil
}

// Parse parses rule text, reporting to the observability hooks.
func (r *Runner) Parse(ctx context.Context, input string, workers int) ([]rules.Rule, error) {
	rs, _, err := r.parse(ctx, r.Logger, input, workers)
	return rs, err
}

// Build constructs the containment graph and warns about duplicate subjects.
func (r *Runner) Build(ctx context.Context, rs []rules.Rule, dir dag.Direction) (*dag.Graph, error) {
	return r.build(ctx, r.Logger, rs, dir, nil)
}

// Load parses input and builds the graph in one step.
func (r *Runner) Load(ctx context.Context, input string, dir dag.Direction, workers int) (*dag.Graph, Stats, error) {
	var stats Stats
	g, err := r.load(ctx, r.Logger, input, dir, workers, &stats)
	return g, stats, err
}

func (r *Runner) load(ctx context.Context, logger *log.Logger, input string, dir dag.Direction, workers int, stats *Stats) (*dag.Graph, error) {
	parseStart := time.Now()
	rs, lines, err := r.parse(ctx, logger, input, workers)
	if err != nil {
		return nil, err
	}
	stats.Lines = lines
	stats.Rules = len(rs)
	stats.ParseTime = time.Since(parseStart)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buildStart := time.Now()
	g, err := r.build(ctx, logger, rs, dir, stats)
	if err != nil {
		return nil, err
	}
	stats.BuildTime = time.Since(buildStart)
	return g, nil
}

func (r *Runner) parse(ctx context.Context, logger *log.Logger, input string, workers int) ([]rules.Rule, int, error) {
	hooks := observability.Query()
	hooks.OnParseStart(ctx)

	start := time.Now()
	lines := countLines(input)
	rs, err := rules.ParseWithOptions(ctx, input, rules.Options{Workers: workers})
	hooks.OnParseComplete(ctx, lines, len(rs), time.Since(start), err)
	if err != nil {
		return nil, lines, fmt.Errorf("parse: %w", err)
	}

	logger.Info("parsed rules",
		"lines", lines,
		"rules", len(rs),
		"duration", time.Since(start))
	return rs, lines, nil
}

func (r *Runner) build(ctx context.Context, logger *log.Logger, rs []rules.Rule, dir dag.Direction, stats *Stats) (*dag.Graph, error) {
	start := time.Now()
	g, err := dag.Build(rs, dir)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	elapsed := time.Since(start)
	observability.Query().OnBuild(ctx, dir.String(), g.NodeCount(), g.EdgeCount(), elapsed)

	for _, e := range g.Duplicates() {
		logger.Warn("duplicate rule, later definition wins", "subject", e)
	}
	if stats != nil {
		stats.NodeCount = g.NodeCount()
		stats.EdgeCount = g.EdgeCount()
	}

	logger.Info("built graph",
		"direction", dir,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", elapsed)
	return g, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*Result, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, keyTypeResult)
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		hooks.OnCacheMiss(ctx, keyTypeResult)
		return nil, false
	}
	hooks.OnCacheHit(ctx, keyTypeResult)
	return &res, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result, ttl time.Duration) {
	if ttl <= 0 {
		ttl = cache.TTLResult
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeResult, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// countLines counts non-blank input lines.
func countLines(input string) int {
	n := 0
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
