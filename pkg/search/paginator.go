// Package search collects result URLs for a keyword from a paged search API.
package search

//go:generate mockgen -source=paginator.go -destination=mocks/mock_searcher.go -package=mocks

import (
	"context"
	"fmt"
	"strings"

	"github.com/amosWeiskopf/linkscout/internal/log"
)

const (
	// PageSize is the number of results the provider returns per page.
	PageSize = 10
	// MaxResults is the hard cap on results collected per query.
	MaxResults = 100
)

// PageSearcher fetches one page of result links from a search provider.
// start is the 1-based offset of the first result, num the page size.
type PageSearcher interface {
	SearchPage(ctx context.Context, query string, start, num int) ([]string, error)
}

// Paginator walks the result pages of a PageSearcher.
type Paginator struct {
	searcher PageSearcher
	logger   log.Logger
}

// NewPaginator creates a Paginator over the given provider.
func NewPaginator(searcher PageSearcher, logger log.Logger) *Paginator {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Paginator{searcher: searcher, logger: logger}
}

// ClampResults limits a requested result count to [0, MaxResults].
func ClampResults(maxResults int) int {
	switch {
	case maxResults < 0:
		return 0
	case maxResults > MaxResults:
		return MaxResults
	default:
		return maxResults
	}
}

// PageCount returns how many full pages are requested for maxResults.
// Partial pages are never requested.
func PageCount(maxResults int) int {
	return ClampResults(maxResults) / PageSize
}

// Paginate returns up to maxResults result links for query in provider
// order. Pages are requested one after another and never retried; the
// first failing page aborts the query.
func (p *Paginator) Paginate(ctx context.Context, query string, maxResults int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	pages := PageCount(maxResults)
	urls := make([]string, 0, pages*PageSize)
	for page := 1; page <= pages; page++ {
		start := (page-1)*PageSize + 1
		links, err := p.searcher.SearchPage(ctx, query, start, PageSize)
		if err != nil {
			return nil, fmt.Errorf("search %q at start %d: %w", query, start, err)
		}
		if len(links) > PageSize {
			links = links[:PageSize]
		}
		p.logger.Debug("Fetched search page",
			log.String("query", query),
			log.Int("start", start),
			log.Int("results", len(links)),
		)
		urls = append(urls, links...)
	}
	return urls, nil
}
