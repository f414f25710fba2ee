package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mmcdole/ytdown/internal/domain"
)

// resultCache stores completed searches (consumer-defined interface)
type resultCache interface {
	GetResults(query string, maxResults int) ([]domain.SearchResult, bool)
	PutResults(query string, maxResults int, results []domain.SearchResult) error
}

// SearchService runs catalog searches, consulting the result cache first
type SearchService struct {
	provider domain.SearchProvider
	cache    resultCache
	logger   *slog.Logger
}

// NewSearchService creates a new search service. provider may be nil when
// no credential is configured; every search then fails with a
// ConfigurationError. cache may be nil.
func NewSearchService(provider domain.SearchProvider, cache resultCache, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		provider: provider,
		cache:    cache,
		logger:   logger,
	}
}

// Available reports whether a search provider is configured.
func (s *SearchService) Available() bool {
	return s.provider != nil
}

// NormalizeQuery trims the query and rejects empty input.
func NormalizeQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", &domain.ValidationError{Field: "query", Message: "Search query cannot be empty"}
	}
	return q, nil
}

// Search returns up to maxResults results for query in provider order.
// maxResults is capped at the provider ceiling.
func (s *SearchService) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, &domain.ConfigurationError{
			Message: domain.ErrMissingCredential.Error(),
			Err:     domain.ErrMissingCredential,
		}
	}
	if maxResults > domain.MaxSearchResultsCeiling {
		maxResults = domain.MaxSearchResultsCeiling
	}
	if maxResults < domain.MinSearchResults {
		maxResults = domain.DefaultSearchResults
	}

	if s.cache != nil {
		if cached, ok := s.cache.GetResults(q, maxResults); ok {
			s.logger.Debug("search cache hit", "query", q, "results", len(cached))
			return cached, nil
		}
	}

	results, err := s.provider.Search(ctx, q, maxResults)
	if err != nil {
		s.logger.Error("search failed", "query", q, "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "search cancelled", goerr.V("query", q))
	}

	s.logger.Info("search complete", "query", q, "results", len(results))

	if s.cache != nil && len(results) > 0 {
		if err := s.cache.PutResults(q, maxResults, results); err != nil {
			s.logger.Warn("failed to cache search results", "query", q, "error", err)
		}
	}
	return results, nil
}

// FilterResults returns the indexes of results whose title or channel
// fuzzily match pattern, best match first. An empty pattern matches all
// results in their original order.
func FilterResults(results []domain.SearchResult, pattern string) []int {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		all := make([]int, len(results))
		for i := range results {
			all[i] = i
		}
		return all
	}

	targets := make([]string, len(results))
	for i, r := range results {
		targets[i] = r.Title + " " + r.Channel
	}

	ranks := fuzzy.RankFindNormalizedFold(pattern, targets)
	sort.Stable(ranks)

	indexes := make([]int, len(ranks))
	for i, r := range ranks {
		indexes[i] = r.OriginalIndex
	}
	return indexes
}
