package tenant

import (
	"context"
	"log/slog"
	"time"

	"github.com/drishiq/concierge/internal/cache"
	"github.com/drishiq/concierge/internal/domain"
)

// globalDefaults is the lowest-priority layer of every resolution.
func globalDefaults() map[string]any {
	return map[string]any{
		"ai": map[string]any{
			"model":       "gpt-4-turbo",
			"temperature": 0.7,
			"maxTokens":   2000,
		},
		"gating": map[string]any{
			"enableKindHonesty": true,
		},
	}
}

// stageDefaults holds per-stage model selection for the closed set of known
// conversation stages. Unknown stage ids contribute nothing.
var stageDefaults = map[string]map[string]any{
	"greeting": {"ai": map[string]any{"model": "gpt-4o-mini"}},
	"intent":   {"ai": map[string]any{"model": "gpt-4-turbo"}},
	"plan":     {"ai": map[string]any{"model": "gpt-4o"}},
}

// ExperimentSource supplies per-tenant experiment flag overrides. The
// default implementation returns none; the seam exists so a flag service can
// be plugged in without touching resolution order.
type ExperimentSource interface {
	Flags(ctx context.Context, tenantID string) map[string]any
}

type noExperiments struct{}

func (noExperiments) Flags(context.Context, string) map[string]any { return nil }

// Resolver composes the registry's tenant config with global defaults, stage
// defaults, environment overrides, and experiment flags. Resolved results
// are cached per (tenant, stage) with the same TTL the registry uses.
type Resolver struct {
	registry    *Registry
	cache       *cache.TTL[*domain.ResolvedTenantConfig]
	experiments ExperimentSource
	environment string
	logger      *slog.Logger
	now         func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithEnvironment sets the deployment environment name used for the
// environment-override layer ("staging" swaps in a cheaper model).
func WithEnvironment(env string) ResolverOption {
	return func(r *Resolver) {
		r.environment = env
	}
}

// WithExperiments replaces the experiment flag source.
func WithExperiments(src ExperimentSource) ResolverOption {
	return func(r *Resolver) {
		r.experiments = src
	}
}

// WithResolverClock injects the clock for both the cache and the resolution
// timestamp, for tests.
func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
		r.cache = cache.NewTTL(CacheTTL, cache.WithClock[*domain.ResolvedTenantConfig](now))
	}
}

// WithResolverLogger sets the resolver logger.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver over registry.
func NewResolver(registry *Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry:    registry,
		cache:       cache.NewTTL[*domain.ResolvedTenantConfig](CacheTTL),
		experiments: noExperiments{},
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveTenantConfig materializes the full configuration for a tenant and
// optional stage, merging layers in increasing priority: global defaults,
// stage defaults, the tenant record, environment overrides, experiment
// flags. It never fails; missing layers simply contribute nothing.
func (r *Resolver) ResolveTenantConfig(ctx context.Context, tenantID, stageID string) *domain.ResolvedTenantConfig {
	merged := globalDefaults()
	source := domain.ConfigSource{Global: true}

	if stage, ok := stageDefaults[stageID]; ok {
		merged = deepMerge(merged, stage)
		source.Stage = true
	}

	tenantCfg := r.registry.GetTenantConfig(ctx, tenantID)
	merged = deepMerge(merged, toMap(tenantCfg))
	for k, v := range tenantCfg.Extra {
		merged[k] = v
	}
	source.Tenant = true

	if env := r.environmentOverrides(); env != nil {
		merged = deepMerge(merged, env)
		source.Environment = true
	}

	if flags := r.experiments.Flags(ctx, tenantID); len(flags) > 0 {
		merged = deepMerge(merged, flags)
		source.Experiment = true
	}

	resolved := &domain.ResolvedTenantConfig{}
	if err := fromMap(merged, &resolved.TenantConfig); err != nil {
		r.logger.Error("resolved config decode failed, using tenant config",
			slog.String("tenant_id", tenantID),
			slog.String("stage_id", stageID),
			slog.String("error", err.Error()),
		)
		resolved.TenantConfig = *tenantCfg
	}
	resolved.ID = tenantID
	if resolved.Name == "" {
		resolved.Name = "default"
	}
	for k, v := range merged {
		if !knownConfigKeys[k] {
			if resolved.Extra == nil {
				resolved.Extra = make(map[string]any)
			}
			resolved.Extra[k] = v
		}
	}
	resolved.ResolvedAt = r.now().UTC().Format(time.RFC3339)
	resolved.Source = source
	return resolved
}

// environmentOverrides returns the environment layer, currently a cheaper
// model when running in staging.
func (r *Resolver) environmentOverrides() map[string]any {
	if r.environment == "staging" {
		return map[string]any{
			"ai": map[string]any{"model": "gpt-4o-mini"},
		}
	}
	return nil
}

// GetResolvedTenantConfig is the cached variant of ResolveTenantConfig,
// keyed by "tenant:stage". A fresh entry is returned as-is; a stale or
// missing one is recomputed synchronously and recached.
func (r *Resolver) GetResolvedTenantConfig(ctx context.Context, tenantID, stageID string) *domain.ResolvedTenantConfig {
	key := cacheKey(tenantID, stageID)
	if cfg, ok := r.cache.Get(key); ok {
		return cfg
	}

	resolved := r.ResolveTenantConfig(ctx, tenantID, stageID)
	r.cache.Set(key, resolved)
	return resolved
}

func cacheKey(tenantID, stageID string) string {
	if stageID == "" {
		stageID = "default"
	}
	return tenantID + ":" + stageID
}

// Invalidate removes the resolver entries for one tenant (all stages) and
// the registry's raw entry, leaving other tenants untouched.
func (r *Resolver) Invalidate(tenantID string) {
	r.cache.InvalidatePrefix(tenantID + ":")
	r.registry.Invalidate(tenantID)
}

// Clear empties both caches.
func (r *Resolver) Clear() {
	r.cache.Clear()
	r.registry.Clear()
}
