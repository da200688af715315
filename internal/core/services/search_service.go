package services

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/vibin/wikisearch-bot/config"
	"github.com/vibin/wikisearch-bot/internal/core/domain"
	"github.com/vibin/wikisearch-bot/internal/core/ports"
	"github.com/vibin/wikisearch-bot/internal/logger"
	"github.com/vibin/wikisearch-bot/internal/metrics"
)

const noSummaryPlaceholder = "No summary could be found"

// SearchService runs the fetch pipeline for one query: find the best
// matching title, fetch the article page for its thumbnail, then fetch
// the plain-text excerpt.
type SearchService struct {
	resolver *EndpointResolver
	fetcher  ports.PageFetcherPort
	config   *config.SearchConfig
	logger   logger.Logger
}

// NewSearchService creates a new SearchService
func NewSearchService(resolver *EndpointResolver, fetcher ports.PageFetcherPort, cfg *config.SearchConfig, log logger.Logger) *SearchService {
	return &SearchService{
		resolver: resolver,
		fetcher:  fetcher,
		config:   cfg,
		logger:   log,
	}
}

// Run resolves the request's endpoint and drives the three round trips.
// A transport failure at any round aborts this request only; the caller
// gets a failed card and sibling requests in the batch are unaffected.
func (s *SearchService) Run(ctx context.Context, tenant string, req domain.QueryRequest) domain.ResultCard {
	endpoint := s.resolver.Resolve(ctx, tenant, req.Alias)

	searchBody, err := s.fetcher.FetchText(ctx, s.searchURL(endpoint, req.Query))
	if err != nil {
		return s.failed(tenant, req, "search", err)
	}

	title, ok := ExtractTitle(searchBody)
	if !ok {
		metrics.SearchesTotal.WithLabelValues(string(domain.CardNotFound)).Inc()
		return domain.NewNotFoundCard(req.Query)
	}

	pageURL := s.pageURL(endpoint, title)
	pageBody, err := s.fetcher.FetchText(ctx, pageURL)
	if err != nil {
		return s.failed(tenant, req, "page", err)
	}

	excerptBody, err := s.fetcher.FetchText(ctx, s.extractURL(endpoint, title))
	if err != nil {
		return s.failed(tenant, req, "extract", err)
	}

	card := domain.ResultCard{
		Title:   title,
		URL:     pageURL,
		Summary: noSummaryPlaceholder,
		State:   domain.CardFound,
	}
	if summary, ok := ExtractSummary(excerptBody); ok {
		if decoded, err := decodeEscapes(summary); err == nil {
			card.Summary = decoded
		}
	}
	if thumbnail, ok := ExtractThumbnail(pageBody); ok {
		// A thumbnail that fails escape decoding is dropped, not fatal.
		if decoded, err := decodeEscapes(thumbnail); err == nil {
			card.Thumbnail = decoded
		}
	}

	metrics.SearchesTotal.WithLabelValues(string(domain.CardFound)).Inc()
	return card
}

func (s *SearchService) failed(tenant string, req domain.QueryRequest, stage string, err error) domain.ResultCard {
	s.logger.Error("Round trip failed",
		"tenant", tenant,
		"query", req.Query,
		"stage", stage,
		"error", err)
	metrics.RoundTripFailuresTotal.WithLabelValues(stage).Inc()
	metrics.SearchesTotal.WithLabelValues(string(domain.CardFailed)).Inc()
	return domain.NewFailedCard(req.Query)
}

// searchURL builds the round-1 full-text search call, limited to the
// single best candidate.
func (s *SearchService) searchURL(endpoint, query string) string {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "search")
	params.Set("formatversion", "2")
	params.Set("srwhat", "text")
	params.Set("srinfo", "")
	params.Set("srprop", "")
	params.Set("srlimit", strconv.Itoa(s.config.ResultLimit))
	params.Set("srsearch", query)
	return endpoint + "?" + params.Encode()
}

// extractURL builds the round-3 excerpt call for a discovered title.
func (s *SearchService) extractURL(endpoint, title string) string {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("exchars", strconv.Itoa(s.config.ExcerptChars))
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("titles", title)
	return endpoint + "?" + params.Encode()
}

// pageURL derives the canonical article URL from the api.php endpoint.
// Endpoints that don't follow the /w/api.php layout keep working for
// search and extract; only the article link falls back to the API base.
func (s *SearchService) pageURL(endpoint, title string) string {
	base := strings.TrimSuffix(endpoint, "/w/api.php")
	return base + "/wiki/" + url.PathEscape(title)
}
