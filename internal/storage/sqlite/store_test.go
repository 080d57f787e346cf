package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/drishiq/concierge/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &storage.TenantRecord{
		TenantID: "acme",
		Name:     "Acme Wellness",
		Config: map[string]any{
			"ai":     map[string]any{"model": "gpt-4o", "temperature": 0.5},
			"gating": map[string]any{"useProfileGreeting": true},
			"custom": "passthrough",
		},
		UpdatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.PutTenantRecord(ctx, rec); err != nil {
		t.Fatalf("PutTenantRecord() error = %v", err)
	}

	got, err := store.GetTenantRecord(ctx, "acme")
	if err != nil {
		t.Fatalf("GetTenantRecord() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetTenantRecord() = nil, want record")
	}
	if got.Name != "Acme Wellness" {
		t.Errorf("Name = %q", got.Name)
	}
	ai, _ := got.Config["ai"].(map[string]any)
	if ai["model"] != "gpt-4o" {
		t.Errorf("ai.model = %v", ai["model"])
	}
	if got.Config["custom"] != "passthrough" {
		t.Errorf("unmodeled key dropped: %v", got.Config["custom"])
	}
}

func TestStore_MissingTenant(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetTenantRecord(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetTenantRecord() error = %v", err)
	}
	if got != nil {
		t.Fatalf("GetTenantRecord() = %+v, want nil", got)
	}
}

func TestStore_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, model := range []string{"gpt-4-turbo", "gpt-4o-mini"} {
		err := store.PutTenantRecord(ctx, &storage.TenantRecord{
			TenantID: "acme",
			Config:   map[string]any{"ai": map[string]any{"model": model}},
		})
		if err != nil {
			t.Fatalf("PutTenantRecord(%s) error = %v", model, err)
		}
	}

	got, err := store.GetTenantRecord(ctx, "acme")
	if err != nil {
		t.Fatalf("GetTenantRecord() error = %v", err)
	}
	ai, _ := got.Config["ai"].(map[string]any)
	if ai["model"] != "gpt-4o-mini" {
		t.Errorf("ai.model = %v, want gpt-4o-mini", ai["model"])
	}
}
