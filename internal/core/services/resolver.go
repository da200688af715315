package services

import (
	"context"
	"errors"

	"github.com/vibin/wikisearch-bot/internal/core/domain"
	"github.com/vibin/wikisearch-bot/internal/core/ports"
	"github.com/vibin/wikisearch-bot/internal/logger"
)

// defaultEndpoints is the seed set for a new tenant: the ten largest
// Wikipedia editions plus the default alias.
var defaultEndpoints = []domain.EndpointRecord{
	{Alias: "default", Endpoint: "https://en.wikipedia.org/w/api.php"},
	{Alias: "en", Endpoint: "https://en.wikipedia.org/w/api.php"},
	{Alias: "de", Endpoint: "https://de.wikipedia.org/w/api.php"},
	{Alias: "fr", Endpoint: "https://fr.wikipedia.org/w/api.php"},
	{Alias: "ja", Endpoint: "https://ja.wikipedia.org/w/api.php"},
	{Alias: "es", Endpoint: "https://es.wikipedia.org/w/api.php"},
	{Alias: "ru", Endpoint: "https://ru.wikipedia.org/w/api.php"},
	{Alias: "pt", Endpoint: "https://pt.wikipedia.org/w/api.php"},
	{Alias: "zh", Endpoint: "https://zh.wikipedia.org/w/api.php"},
	{Alias: "it", Endpoint: "https://it.wikipedia.org/w/api.php"},
	{Alias: "ar", Endpoint: "https://ar.wikipedia.org/w/api.php"},
}

// EndpointResolver maps a tenant and optional alias to a search endpoint.
type EndpointResolver struct {
	store  ports.EndpointStorePort
	global string
	logger logger.Logger
}

// NewEndpointResolver creates a new EndpointResolver. globalDefault is the
// last-resort endpoint for tenants with no records.
func NewEndpointResolver(store ports.EndpointStorePort, globalDefault string, log logger.Logger) *EndpointResolver {
	return &EndpointResolver{
		store:  store,
		global: globalDefault,
		logger: log,
	}
}

// Resolve returns the endpoint URL for the tenant's alias. Resolution
// never fails: an unknown alias falls back to the tenant's default record,
// and a missing default falls back to the global endpoint.
func (r *EndpointResolver) Resolve(ctx context.Context, tenant, alias string) string {
	if alias != "" {
		endpoint, err := r.store.Get(ctx, tenant, alias)
		if err == nil {
			return endpoint
		}
		if !errors.Is(err, ports.ErrEndpointNotFound) {
			r.logger.Warn("Alias lookup failed", "tenant", tenant, "alias", alias, "error", err)
		}
	}

	endpoint, err := r.store.Get(ctx, tenant, domain.DefaultAlias)
	if err != nil {
		if !errors.Is(err, ports.ErrEndpointNotFound) {
			r.logger.Warn("Default lookup failed, using global endpoint", "tenant", tenant, "error", err)
		}
		return r.global
	}
	return endpoint
}

// EnsureTenant seeds the default endpoint set on first contact with a
// tenant. Running it against an initialized tenant is a no-op.
func (r *EndpointResolver) EnsureTenant(ctx context.Context, tenant string) error {
	count, err := r.store.CountByTenant(ctx, tenant)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, seed := range defaultEndpoints {
		if err := r.store.Upsert(ctx, tenant, seed.Alias, seed.Endpoint); err != nil {
			return err
		}
	}

	r.logger.Info("Seeded default endpoints", "tenant", tenant, "count", len(defaultEndpoints))
	return nil
}
