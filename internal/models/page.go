package models

import (
	"strings"
	"time"
)

// Keyword is a single search term supplied by the operator
type Keyword string

// ParseKeywords splits a comma-separated keyword list, trimming whitespace
// and dropping empty entries. Duplicates are kept.
func ParseKeywords(raw string) []Keyword {
	var keywords []Keyword
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keywords = append(keywords, Keyword(part))
	}
	return keywords
}

// SearchResult is one URL returned by the search provider for a keyword
type SearchResult struct {
	Keyword Keyword `json:"keyword"`
	URL     string  `json:"url"`
	Rank    int     `json:"rank"`
}

// FetchedPage is a fetched HTML document handed to the classifier
type FetchedPage struct {
	URL  string
	Body []byte
}

// LinkRecord is a dofollow link found inside a discussion area of a page
type LinkRecord struct {
	PageURL string `json:"page_url"`
	Href    string `json:"href"`
}

// RunSummary contains the counters of a scout run
type RunSummary struct {
	Keywords       int           `json:"keywords"`
	SearchFailures int           `json:"search_failures"`
	ResultsFound   int           `json:"results_found"`
	PagesFetched   int           `json:"pages_fetched"`
	PagesQualified int           `json:"pages_qualified"`
	RecordsWritten int           `json:"records_written"`
	WriteFailures  int           `json:"write_failures"`
	DispatchErrors int           `json:"dispatch_errors"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
}
