// Package storage defines the persistence ports of the intake layer. The
// tenant registry reads raw tenant records through TenantStore; everything
// beyond the modeled fields is opaque JSON passed through untouched.
package storage

import (
	"context"
	"time"
)

// TenantRecord is the raw stored configuration row for one tenant. Config is
// the decoded JSON document; its schema beyond the known sections is opaque.
type TenantRecord struct {
	TenantID  string
	Name      string
	Config    map[string]any
	UpdatedAt time.Time
}

// TenantStore reads and writes raw tenant records. GetTenantRecord returns
// (nil, nil) when the tenant has no record; errors are reserved for storage
// failures.
type TenantStore interface {
	GetTenantRecord(ctx context.Context, tenantID string) (*TenantRecord, error)
	PutTenantRecord(ctx context.Context, rec *TenantRecord) error
}
