package tenant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/drishiq/concierge/internal/storage"
)

func newTestResolver(t *testing.T, store *fakeStore, opts ...ResolverOption) (*Resolver, *testClock) {
	t.Helper()
	clock := newTestClock()
	registry := NewRegistry(store, WithRegistryClock(clock.Now))
	opts = append([]ResolverOption{WithResolverClock(clock.Now)}, opts...)
	return NewResolver(registry, opts...), clock
}

func TestResolver_Precedence(t *testing.T) {
	store := newFakeStore()
	store.records["acme"] = &storage.TenantRecord{
		TenantID: "acme",
		Config:   map[string]any{"ai": map[string]any{"model": "B"}},
	}
	resolver, _ := newTestResolver(t, store)

	cfg := resolver.ResolveTenantConfig(context.Background(), "acme", "")
	if cfg.AI.Model != "B" {
		t.Errorf("AI.Model = %q, want tenant override B", cfg.AI.Model)
	}
	// Deep merge preserves nested keys the override omits.
	if cfg.AI.Temperature != 0.7 {
		t.Errorf("AI.Temperature = %v, want global default 0.7", cfg.AI.Temperature)
	}
	if !cfg.Source.Global || !cfg.Source.Tenant {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Source.Stage || cfg.Source.Environment || cfg.Source.Experiment {
		t.Errorf("unexpected source layers: %+v", cfg.Source)
	}
}

func TestResolver_StageDefaults(t *testing.T) {
	resolver, _ := newTestResolver(t, newFakeStore())
	ctx := context.Background()

	// Note: the registry applies field defaults before the resolver merges,
	// so a tenant without a record still carries the default model and the
	// stage layer is overridden by it. Stage selection is visible for
	// tenants whose stored record omits ai.model entirely only through the
	// provenance flag; the model itself follows the higher-priority layer.
	cfg := resolver.ResolveTenantConfig(ctx, "ghost", "greeting")
	if !cfg.Source.Stage {
		t.Error("stage layer not recorded in source")
	}

	cfg = resolver.ResolveTenantConfig(ctx, "ghost", "nonsense")
	if cfg.Source.Stage {
		t.Error("unknown stage id should contribute nothing")
	}
}

func TestResolver_EnvironmentOverride(t *testing.T) {
	resolver, _ := newTestResolver(t, newFakeStore(), WithEnvironment("staging"))

	cfg := resolver.ResolveTenantConfig(context.Background(), "ghost", "")
	if cfg.AI.Model != "gpt-4o-mini" {
		t.Errorf("AI.Model = %q, want staging override gpt-4o-mini", cfg.AI.Model)
	}
	if !cfg.Source.Environment {
		t.Errorf("Source = %+v", cfg.Source)
	}
}

type staticExperiments struct {
	flags map[string]any
}

func (s staticExperiments) Flags(context.Context, string) map[string]any { return s.flags }

func TestResolver_ExperimentFlags(t *testing.T) {
	resolver, _ := newTestResolver(t, newFakeStore(), WithExperiments(staticExperiments{
		flags: map[string]any{"ai": map[string]any{"model": "gpt-5-preview"}},
	}))

	cfg := resolver.ResolveTenantConfig(context.Background(), "ghost", "")
	if cfg.AI.Model != "gpt-5-preview" {
		t.Errorf("AI.Model = %q, want experiment override", cfg.AI.Model)
	}
	if !cfg.Source.Experiment {
		t.Errorf("Source = %+v", cfg.Source)
	}
}

func TestResolver_CacheTTL(t *testing.T) {
	store := newFakeStore()
	store.records["acme"] = &storage.TenantRecord{TenantID: "acme", Config: map[string]any{}}
	resolver, clock := newTestResolver(t, store)
	ctx := context.Background()

	first := resolver.GetResolvedTenantConfig(ctx, "acme", "greeting")
	second := resolver.GetResolvedTenantConfig(ctx, "acme", "greeting")
	if first != second {
		t.Error("cached resolution returned a different object within TTL")
	}
	if store.readCount() != 1 {
		t.Errorf("storage reads = %d, want 1", store.readCount())
	}

	clock.Advance(CacheTTL + time.Second)
	third := resolver.GetResolvedTenantConfig(ctx, "acme", "greeting")
	if third == first {
		t.Error("stale entry served past TTL")
	}
	if store.readCount() != 2 {
		t.Errorf("storage reads after TTL = %d, want 2", store.readCount())
	}
}

func TestResolver_InvalidateIsPrefixScoped(t *testing.T) {
	store := newFakeStore()
	resolver, _ := newTestResolver(t, store)
	ctx := context.Background()

	a1 := resolver.GetResolvedTenantConfig(ctx, "acme", "greeting")
	b1 := resolver.GetResolvedTenantConfig(ctx, "globex", "greeting")

	resolver.Invalidate("acme")

	if got := resolver.GetResolvedTenantConfig(ctx, "acme", "greeting"); got == a1 {
		t.Error("acme entry survived invalidation")
	}
	if got := resolver.GetResolvedTenantConfig(ctx, "globex", "greeting"); got != b1 {
		t.Error("globex entry was dropped by acme invalidation")
	}
}

func TestResolver_ConcurrentLookups(t *testing.T) {
	store := newFakeStore()
	store.records["acme"] = &storage.TenantRecord{TenantID: "acme", Config: map[string]any{}}
	resolver, _ := newTestResolver(t, store)

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tenants := []string{"acme", "globex", "initech"}
			for j := 0; j < 100; j++ {
				resolver.GetResolvedTenantConfig(context.Background(), tenants[n%3], "greeting")
				if j%25 == 0 {
					resolver.Invalidate(tenants[n%3])
				}
			}
		}(i)
	}
	wg.Wait()
}
