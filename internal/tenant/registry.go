// Package tenant loads, layers, and caches tenant configuration. The
// Registry owns the raw per-tenant record with field defaults applied; the
// Resolver composes it with global, stage, environment, and experiment
// layers into one materialized config. Both keep independent TTL caches.
package tenant

import (
	"context"
	"log/slog"
	"time"

	"github.com/drishiq/concierge/internal/cache"
	"github.com/drishiq/concierge/internal/domain"
	"github.com/drishiq/concierge/internal/storage"
)

// CacheTTL is how long registry and resolver entries stay fresh. An entry
// older than this is recomputed synchronously on the next lookup.
const CacheTTL = 5 * time.Minute

// DefaultTenantConfig returns the built-in configuration used when a tenant
// has no stored record or its record cannot be fetched.
func DefaultTenantConfig() *domain.TenantConfig {
	return &domain.TenantConfig{
		Gating: domain.GatingConfig{
			UseProfileGreeting:  false,
			DisableLegacyCFQ:    false,
			EnableKindHonesty:   true,
			EnableHardQuestions: true,
		},
		AI: domain.AIConfig{
			Model:       "gpt-4-turbo",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Templates: domain.TemplateConfig{
			FallbackToDefault: true,
		},
		Privacy: domain.PrivacyConfig{
			RedactPIIInLogs:  false,
			AllowDataSharing: true,
			RetentionDays:    365,
		},
	}
}

// knownConfigKeys are the top-level sections the typed config models; any
// other key in a stored record rides along in TenantConfig.Extra.
var knownConfigKeys = map[string]bool{
	"id": true, "name": true, "locale": true, "timezone": true,
	"brand": true, "gating": true, "ai": true, "templates": true,
	"privacy": true,
}

// Registry fetches raw tenant records and materializes them over the
// built-in defaults, with a per-tenant TTL cache in front of storage.
type Registry struct {
	store  storage.TenantStore
	cache  *cache.TTL[*domain.TenantConfig]
	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryClock injects the cache clock, for tests.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.cache = cache.NewTTL(CacheTTL, cache.WithClock[*domain.TenantConfig](now))
	}
}

// WithRegistryLogger sets the logger used for degradation events.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a registry reading from store.
func NewRegistry(store storage.TenantStore, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:  store,
		cache:  cache.NewTTL[*domain.TenantConfig](CacheTTL),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetTenantConfig returns the tenant's configuration with field defaults
// applied. It never fails: an empty id, a missing record, or a storage error
// all degrade to the built-in defaults. Storage errors are logged with the
// tenant id and swallowed here so a broken tenant record cannot block an
// active conversation.
func (r *Registry) GetTenantConfig(ctx context.Context, tenantID string) *domain.TenantConfig {
	if tenantID == "" {
		return DefaultTenantConfig()
	}

	if cfg, ok := r.cache.Get(tenantID); ok {
		return cfg
	}

	rec, err := r.store.GetTenantRecord(ctx, tenantID)
	if err != nil {
		r.logger.Error("tenant config fetch failed, using defaults",
			slog.String("tenant_id", tenantID),
			slog.String("error", err.Error()),
		)
		return DefaultTenantConfig()
	}

	cfg := r.materialize(tenantID, rec)
	r.cache.Set(tenantID, cfg)
	return cfg
}

// materialize merges a raw record over the defaults and splits off unmodeled
// keys into Extra. A nil record yields the defaults with the id set.
func (r *Registry) materialize(tenantID string, rec *storage.TenantRecord) *domain.TenantConfig {
	cfg := DefaultTenantConfig()
	cfg.ID = tenantID
	if rec == nil {
		return cfg
	}

	merged := deepMerge(toMap(cfg), rec.Config)
	out := &domain.TenantConfig{}
	if err := fromMap(merged, out); err != nil {
		r.logger.Error("tenant config decode failed, using defaults",
			slog.String("tenant_id", tenantID),
			slog.String("error", err.Error()),
		)
		return cfg
	}
	out.ID = tenantID
	if out.Name == "" {
		out.Name = rec.Name
	}
	for k, v := range merged {
		if !knownConfigKeys[k] {
			if out.Extra == nil {
				out.Extra = make(map[string]any)
			}
			out.Extra[k] = v
		}
	}
	return out
}

// Invalidate drops the cached entry for one tenant.
func (r *Registry) Invalidate(tenantID string) {
	r.cache.Delete(tenantID)
}

// Clear drops every cached entry.
func (r *Registry) Clear() {
	r.cache.Clear()
}
