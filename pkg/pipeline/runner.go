package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/discrete/pkg/cache"
	"github.com/matzehuels/discrete/pkg/coxeter"
	"github.com/matzehuels/discrete/pkg/group"
	"github.com/matzehuels/discrete/pkg/observability"
	"github.com/matzehuels/discrete/pkg/toddcoxeter"
)

// Runner encapsulates enumeration with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options.
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

// cachedEnumeration is the cache payload for a single table.
type cachedEnumeration struct {
	Group *group.Group      `json:"group"`
	Stats toddcoxeter.Stats `json:"stats"`
}

// cachedQuotient is the cache payload for a quotient.
type cachedQuotient struct {
	Quotient     *coxeter.Quotient `json:"quotient"`
	ElementStats toddcoxeter.Stats `json:"element_stats"`
	CosetStats   toddcoxeter.Stats `json:"coset_stats"`
}

// Enumerate builds the coset table of the subgroup named in opts (the
// element table when the subgroup is empty), consulting the cache first.
func (r *Runner) Enumerate(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	pres, err := opts.Presentation()
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	start := time.Now()
	hooks := observability.Enumeration()
	hooks.OnEnumerateStart(ctx, KindEnumeration, pres.Generators, opts.Limit)

	key := r.Keyer.EnumerationKey(pres.KeyOpts(opts.Limit))
	res := &Result{ID: uuid.NewString()}

	var cached cachedEnumeration
	if r.lookup(ctx, KindEnumeration, key, opts, &cached) && cached.Group != nil {
		res.Group, res.Stats, res.CacheHit = cached.Group, cached.Stats, true
	} else {
		g, stats, err := r.enumerate(ctx, pres, pres.Subgroup, opts)
		if err != nil {
			hooks.OnEnumerateComplete(ctx, KindEnumeration, observability.EnumerationResult{}, time.Since(start), err)
			return nil, fmt.Errorf("enumerate: %w", err)
		}
		res.Group, res.Stats = g, stats
		r.store(ctx, KindEnumeration, key, cachedEnumeration{Group: g, Stats: stats}, opts.TTL)
	}
	res.Duration = time.Since(start)

	hooks.OnEnumerateComplete(ctx, KindEnumeration, hookResult(res.Stats), res.Duration, nil)
	r.Logger.Info("enumerated",
		"id", res.ID,
		"points", res.Stats.Points,
		"steps", res.Stats.Steps,
		"coincidences", res.Stats.Coincidences,
		"complete", res.Stats.Complete,
		"cached", res.CacheHit,
		"duration", res.Duration)
	return res, nil
}

// Quotient enumerates both the element table and the coset table of the
// presentation in opts and links them with the inverse map.
func (r *Runner) Quotient(ctx context.Context, opts Options) (*QuotientResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	pres, err := opts.Presentation()
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	start := time.Now()
	hooks := observability.Enumeration()
	hooks.OnEnumerateStart(ctx, KindQuotient, pres.Generators, opts.Limit)
	fail := func(err error) (*QuotientResult, error) {
		hooks.OnEnumerateComplete(ctx, KindQuotient, observability.EnumerationResult{}, time.Since(start), err)
		return nil, fmt.Errorf("quotient: %w", err)
	}

	key := r.Keyer.QuotientKey(pres.KeyOpts(opts.Limit))
	res := &QuotientResult{ID: uuid.NewString()}

	var cached cachedQuotient
	if r.lookup(ctx, KindQuotient, key, opts, &cached) && cached.Quotient != nil {
		res.Quotient, res.ElementStats, res.CosetStats, res.CacheHit =
			cached.Quotient, cached.ElementStats, cached.CosetStats, true
	} else {
		elements, elementStats, err := r.enumerate(ctx, pres, nil, opts)
		if err != nil {
			return fail(err)
		}
		cosets, cosetStats, err := r.enumerate(ctx, pres, pres.Subgroup, opts)
		if err != nil {
			return fail(err)
		}
		q, err := coxeter.NewQuotient(elements, cosets)
		if err != nil {
			return fail(err)
		}
		res.Quotient, res.ElementStats, res.CosetStats = q, elementStats, cosetStats
		r.store(ctx, KindQuotient, key, cachedQuotient{
			Quotient:     q,
			ElementStats: elementStats,
			CosetStats:   cosetStats,
		}, opts.TTL)
	}
	res.Duration = time.Since(start)

	stats := hookResult(res.ElementStats)
	stats.Coincidences += res.CosetStats.Coincidences
	stats.Complete = res.Quotient.Complete()
	hooks.OnEnumerateComplete(ctx, KindQuotient, stats, res.Duration, nil)
	r.Logger.Info("enumerated quotient",
		"id", res.ID,
		"elements", res.Quotient.Elements.PointCount(),
		"cosets", res.Quotient.Cosets.PointCount(),
		"complete", stats.Complete,
		"cached", res.CacheHit,
		"duration", res.Duration)
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) enumerate(ctx context.Context, pres Presentation, subgroup []group.Generator, opts Options) (*group.Group, toddcoxeter.Stats, error) {
	t, err := toddcoxeter.New(pres.Generators, pres.Relations, subgroup)
	if err != nil {
		return nil, toddcoxeter.Stats{}, err
	}
	t.SetLogger(opts.Logger)
	if _, err := t.Run(ctx, opts.Limit); err != nil {
		return nil, t.Stats(), err
	}
	return t.Group(), t.Stats(), nil
}

// lookup reads a cached payload into v. Cache errors are logged and treated
// as misses.
func (r *Runner) lookup(ctx context.Context, kind, key string, opts Options, v any) bool {
	if opts.Refresh {
		return false
	}
	hit, err := cache.GetJSON(ctx, r.Cache, key, v)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, kind)
	} else {
		observability.Cache().OnCacheMiss(ctx, kind)
	}
	return hit
}

// store writes a payload to the cache. Failures only lose the cache entry.
func (r *Runner) store(ctx context.Context, kind, key string, v any, ttl time.Duration) {
	size, err := cache.SetJSON(ctx, r.Cache, key, v, ttl)
	if err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, size)
}

func hookResult(s toddcoxeter.Stats) observability.EnumerationResult {
	return observability.EnumerationResult{
		Points:       s.Points,
		Steps:        s.Steps,
		Coincidences: s.Coincidences,
		Complete:     s.Complete,
	}
}
