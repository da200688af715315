package ports

import (
	"context"
	"errors"

	"github.com/vibin/wikisearch-bot/internal/core/domain"
)

// ErrEndpointNotFound is returned by Get when no record exists for the
// (tenant, alias) key.
var ErrEndpointNotFound = errors.New("endpoint not found")

// EndpointStorePort defines the interface for endpoint persistence.
// (tenant, alias) is unique; Upsert must let concurrent writers converge
// on the last value instead of erroring.
type EndpointStorePort interface {
	// Get returns the endpoint URL for a tenant alias.
	Get(ctx context.Context, tenant, alias string) (string, error)

	// Upsert writes the endpoint for (tenant, alias), inserting or updating.
	Upsert(ctx context.Context, tenant, alias, endpoint string) error

	// Delete removes one alias for a tenant.
	Delete(ctx context.Context, tenant, alias string) error

	// ListByTenant returns all records for a tenant.
	ListByTenant(ctx context.Context, tenant string) ([]domain.EndpointRecord, error)

	// CountByTenant returns the number of records for a tenant.
	CountByTenant(ctx context.Context, tenant string) (int, error)

	// DeleteTenant removes every record for a tenant.
	DeleteTenant(ctx context.Context, tenant string) error
}
