package services

import (
	"context"

	"github.com/vibin/wikisearch-bot/internal/core/domain"
	"github.com/vibin/wikisearch-bot/internal/logger"
)

// Assembler turns a batch of queries into placeholder cards and then,
// in the same order, into terminal cards.
type Assembler struct {
	search *SearchService
	logger logger.Logger
}

// NewAssembler creates a new Assembler
func NewAssembler(search *SearchService, log logger.Logger) *Assembler {
	return &Assembler{
		search: search,
		logger: log,
	}
}

// Placeholders returns one pending card per request, in request order,
// for immediate display.
func (a *Assembler) Placeholders(requests []domain.QueryRequest) []domain.ResultCard {
	cards := make([]domain.ResultCard, 0, len(requests))
	for _, req := range requests {
		cards = append(cards, domain.NewPendingCard(req.Query))
	}
	return cards
}

// Resolve runs the pipeline for every request, one at a time, in order.
// The returned list always matches the input length and order; a failing
// request only affects its own slot.
func (a *Assembler) Resolve(ctx context.Context, tenant string, requests []domain.QueryRequest) []domain.ResultCard {
	cards := make([]domain.ResultCard, 0, len(requests))
	for _, req := range requests {
		cards = append(cards, a.search.Run(ctx, tenant, req))
	}
	return cards
}
