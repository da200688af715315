package domain

import "fmt"

// CardState tracks where a result card is in its lifecycle.
type CardState string

const (
	// CardPending is the placeholder state shown while the search runs.
	CardPending CardState = "pending"

	// CardFound means the search produced a title and page URL.
	CardFound CardState = "found"

	// CardNotFound means the remote search returned no candidate.
	CardNotFound CardState = "not_found"

	// CardFailed means a round trip failed. Rendered like not-found but
	// logged and counted separately.
	CardFailed CardState = "failed"
)

// ResultCard is the rendered outcome of one query.
type ResultCard struct {
	Title     string
	URL       string
	Summary   string
	Thumbnail string
	State     CardState
}

// NewPendingCard returns the placeholder card shown before results arrive.
func NewPendingCard(query string) ResultCard {
	return ResultCard{
		Title: fmt.Sprintf("Searching for %s...", query),
		State: CardPending,
	}
}

// NewNotFoundCard returns the card shown when the search has no candidate.
func NewNotFoundCard(query string) ResultCard {
	return ResultCard{
		Title: fmt.Sprintf("No results found for %s", query),
		State: CardNotFound,
	}
}

// NewFailedCard returns the card for a request whose fetch pipeline broke.
// Users see the same message as not-found.
func NewFailedCard(query string) ResultCard {
	return ResultCard{
		Title: fmt.Sprintf("No results found for %s", query),
		State: CardFailed,
	}
}

// Terminal reports whether the card is in a final state.
func (c ResultCard) Terminal() bool {
	return c.State != CardPending
}

const (
	// DefaultTenant scopes endpoints for chats outside any group.
	DefaultTenant = "default"

	// DefaultAlias is the fallback alias every initialized tenant has.
	// It cannot be deleted.
	DefaultAlias = "default"
)

// EndpointRecord maps a tenant-scoped alias to a wiki API endpoint URL.
// (tenant, alias) is the unique key.
type EndpointRecord struct {
	Tenant   string
	Alias    string
	Endpoint string
}
