// Package pipeline runs enumerations for the CLI and the HTTP API.
//
// The pipeline turns textual options (a Schläfli symbol, relation strings,
// a subgroup) into a presentation, enumerates it, and caches the result.
// Centralizing this keeps defaults, validation and cache keys identical
// across entry points.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Enumerate(ctx, pipeline.Options{
//	    Schlafli: "{5,3}",
//	    Limit:    500,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Group.PointCount()) // 120
//
// Quotients enumerate the element table and the coset table of the same
// presentation and link them with the inverse map:
//
//	q, err := runner.Quotient(ctx, pipeline.Options{
//	    Schlafli:  "{7,3}",
//	    Relations: []string{"0 2 1;8"},
//	    Subgroup:  "0 1",
//	})
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/discrete/pkg/cache"
	"github.com/matzehuels/discrete/pkg/config"
	"github.com/matzehuels/discrete/pkg/coxeter"
	derrors "github.com/matzehuels/discrete/pkg/errors"
	"github.com/matzehuels/discrete/pkg/group"
	"github.com/matzehuels/discrete/pkg/toddcoxeter"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultLimit is the number of discovery steps used when Options.Limit
	// is zero.
	DefaultLimit = config.DefaultLimit

	// DefaultTTL is how long results stay cached.
	DefaultTTL = 24 * time.Hour
)

// Kinds passed to observability hooks and used as cache key types.
const (
	KindEnumeration = "enum"
	KindQuotient    = "quotient"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options describes a presentation and how far to enumerate it.
// This struct supports JSON serialization for API requests.
//
// With Schlafli set, the Coxeter relations of the symbol come first and
// Relations are appended; Generators may then be omitted. Without it,
// Generators and Relations are the whole presentation.
type Options struct {
	Generators int      `json:"generators,omitempty"`
	Schlafli   string   `json:"schlafli,omitempty"`
	Relations  []string `json:"relations,omitempty"`
	Subgroup   string   `json:"subgroup,omitempty"`

	// Limit caps discovery steps. Zero selects DefaultLimit.
	Limit int `json:"limit,omitempty"`

	// Refresh skips the cache lookup but still stores the result.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	TTL    time.Duration `json:"-"`
	Logger *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// OptionsFromSettings converts tiling settings from a config file.
func OptionsFromSettings(s coxeter.Settings, limit int) Options {
	return Options{
		Schlafli:  s.Schlafli,
		Relations: s.Relations,
		Subgroup:  s.Subgroup,
		Limit:     limit,
	}
}

// Presentation is a parsed set of Options.
type Presentation struct {
	Generators int
	Relations  []group.Word
	Subgroup   []group.Generator
}

// KeyOpts returns the cache key inputs for an enumeration of p.
func (p Presentation) KeyOpts(limit int) cache.EnumerationKeyOpts {
	return cache.EnumerationKeyOpts{
		Generators: p.Generators,
		Relations:  p.Relations,
		Subgroup:   p.Subgroup,
		Limit:      limit,
	}
}

// Result is the outcome of Runner.Enumerate.
type Result struct {
	// ID identifies this run in logs and API responses.
	ID string `json:"id"`

	Group    *group.Group      `json:"group"`
	Stats    toddcoxeter.Stats `json:"stats"`
	CacheHit bool              `json:"cache_hit"`
	Duration time.Duration     `json:"-"`
}

// QuotientResult is the outcome of Runner.Quotient.
type QuotientResult struct {
	ID string `json:"id"`

	Quotient     *coxeter.Quotient `json:"quotient"`
	ElementStats toddcoxeter.Stats `json:"element_stats"`
	CosetStats   toddcoxeter.Stats `json:"coset_stats"`
	CacheHit     bool              `json:"cache_hit"`
	Duration     time.Duration     `json:"-"`
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the limit and fills in defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if err := derrors.ValidateLimit(o.Limit); err != nil {
		return err
	}
	if err := derrors.ValidateGeneratorCount(o.Generators); err != nil {
		return err
	}
	if o.Schlafli == "" && o.Generators == 0 && len(o.Relations) > 0 {
		return derrors.New(derrors.ErrCodeInvalidInput, "generators or schlafli is required")
	}
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Presentation parses the textual options. Generator indices are checked
// against the generator count.
func (o *Options) Presentation() (Presentation, error) {
	if o.Schlafli != "" {
		t, err := coxeter.NewTiling(coxeter.Settings{
			Schlafli:  o.Schlafli,
			Relations: o.Relations,
			Subgroup:  o.Subgroup,
		})
		if err != nil {
			return Presentation{}, err
		}
		if o.Generators != 0 && o.Generators != t.Rank() {
			return Presentation{}, derrors.New(derrors.ErrCodeInvalidInput,
				"schlafli %s has %d generators, but generators is %d", t.Schlafli, t.Rank(), o.Generators)
		}
		return Presentation{Generators: t.Rank(), Relations: t.Relations(), Subgroup: t.Subgroup}, nil
	}

	rels, err := coxeter.ParseRelations(o.Relations)
	if err != nil {
		return Presentation{}, err
	}
	for _, rel := range rels {
		for _, g := range rel {
			if err := derrors.ValidateGenerator(int(g), o.Generators); err != nil {
				return Presentation{}, derrors.Wrap(derrors.ErrCodeInvalidRelation, err, "relation %s", rel)
			}
		}
	}
	sub, err := coxeter.ParseSubgroup(o.Subgroup)
	if err != nil {
		return Presentation{}, err
	}
	for _, g := range sub {
		if err := derrors.ValidateGenerator(int(g), o.Generators); err != nil {
			return Presentation{}, derrors.Wrap(derrors.ErrCodeInvalidSubgroup, err, "subgroup %q", o.Subgroup)
		}
	}
	return Presentation{Generators: o.Generators, Relations: rels, Subgroup: sub}, nil
}
