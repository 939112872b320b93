// Package pipeline runs bagrules queries end to end.
//
// A run has three stages:
//
//  1. Parse: turn rule text into [rules.Rule] values
//  2. Build: construct the containment graph in the direction the query needs
//  3. Query: count ancestors or weighted contents of the target
//
// Results are cached by the content hash of the input, so repeating a query
// over an unchanged file skips all three stages.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:  text,
//	    Query:  query.KindContents,
//	    Target: "shiny gold",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Value)
//
// Stages can also be run on their own with [Runner.Parse], [Runner.Build]
// and [Runner.Load].
package pipeline

import (
	"time"

	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/bagrules/pkg/errors"
	"github.com/matzehuels/bagrules/pkg/query"
	"github.com/matzehuels/bagrules/pkg/rules"
)

const (
	// DefaultTarget is the entity queried when Options.Target is empty.
	DefaultTarget = "shiny gold"

	// MaxWorkers bounds concurrent line parsing.
	MaxWorkers = 256
)

// =============================================================================
// Options - Query Configuration
// =============================================================================

// Options configures a single run.
type Options struct {
	// Input is the raw rule text.
	Input string `json:"-"`

	Query   query.Kind `json:"query" validate:"required,oneof=ancestors contents"`
	Target  string     `json:"target" validate:"required"`
	List    bool       `json:"list,omitempty"`
	Workers int        `json:"workers,omitempty" validate:"gte=1,lte=256"`

	// Refresh bypasses cached results; the fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// CacheTTL overrides cache.TTLResult when positive.
	CacheTTL time.Duration `json:"-"`

	target    rules.Entity
	validated bool
}

// Result is the outcome of a run.
type Result struct {
	RunID  string     `json:"run_id"`
	Query  query.Kind `json:"query"`
	Target string     `json:"target"`
	Value  uint64     `json:"value"`

	// Ancestors lists the containers of Target when Options.List was set
	// on an ancestors query.
	Ancestors []string `json:"ancestors,omitempty"`

	// Duplicates names subjects defined by more than one rule.
	Duplicates []string `json:"duplicates,omitempty"`

	InputHash string `json:"input_hash"`
	Stats     Stats  `json:"stats"`
	CacheHit  bool   `json:"cache_hit"`
}

// Summary renders the result as a sentence.
func (r *Result) Summary() string {
	e, err := rules.ParseEntity(r.Target)
	if err != nil {
		e = rules.Entity{Adjective: r.Target}
	}
	return query.Describe(r.Query, e, r.Value)
}

// Stats contains run statistics. Timings are zero on a cache hit.
type Stats struct {
	Lines     int           `json:"lines"`
	Rules     int           `json:"rules"`
	NodeCount int           `json:"nodes"`
	EdgeCount int           `json:"edges"`
	ParseTime time.Duration `json:"parse_time"`
	BuildTime time.Duration `json:"build_time"`
	QueryTime time.Duration `json:"query_time"`
}

// =============================================================================
// Validation
// =============================================================================

var validate = validator.New()

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Target == "" {
		o.Target = DefaultTarget
	}
	if o.Workers == 0 {
		o.Workers = 1
	}

	if err := validate.Struct(o); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			return errs.New(errs.ErrCodeInvalidInput, "invalid %s %v (%s)", fe.Field(), fe.Value(), describeTag(fe.Tag()))
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid options")
	}

	if err := errs.ValidateEntityName(o.Target); err != nil {
		return err
	}
	target, err := rules.ParseEntity(o.Target)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidTarget, err, "invalid target")
	}
	o.target = target
	o.validated = true
	return nil
}

func describeTag(tag string) string {
	switch tag {
	case "oneof":
		return "must be ancestors or contents"
	case "gte", "lte":
		return "must be between 1 and 256"
	default:
		return tag
	}
}
