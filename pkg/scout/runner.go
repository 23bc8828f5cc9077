// Package scout runs the prospecting pipeline: search each keyword, fetch
// every result page and append the dofollow links found in its discussion
// areas to the output sink.
package scout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amosWeiskopf/linkscout/internal/log"
	"github.com/amosWeiskopf/linkscout/internal/models"
	"github.com/amosWeiskopf/linkscout/pkg/classifier"
	"github.com/amosWeiskopf/linkscout/pkg/crawler"
)

// Searcher returns result URLs for one keyword.
type Searcher interface {
	Paginate(ctx context.Context, query string, maxResults int) ([]string, error)
}

// RecordSink stores LinkRecords. Append must be safe for concurrent use.
type RecordSink interface {
	Append(rec models.LinkRecord) error
}

// Runner wires the pipeline stages together
type Runner struct {
	searcher   Searcher
	dispatcher crawler.Dispatcher
	classifier *classifier.Classifier
	sink       RecordSink
	logger     log.Logger
	failFast   bool

	mu      sync.Mutex
	summary models.RunSummary
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger log.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFailFast aborts the run on the first search failure instead of
// skipping to the next keyword.
func WithFailFast(failFast bool) Option {
	return func(r *Runner) {
		r.failFast = failFast
	}
}

// NewRunner creates a Runner.
func NewRunner(searcher Searcher, dispatcher crawler.Dispatcher, cls *classifier.Classifier, sink RecordSink, opts ...Option) *Runner {
	if cls == nil {
		cls = classifier.New()
	}
	r := &Runner{
		searcher:   searcher,
		dispatcher: dispatcher,
		classifier: cls,
		sink:       sink,
		logger:     log.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes keywords one at a time and waits for every dispatched page
// before returning. The summary is valid even when an error is returned.
// Cancelling ctx stops new searches and dispatches.
func (r *Runner) Run(ctx context.Context, keywords []models.Keyword, maxResults int) (models.RunSummary, error) {
	r.mu.Lock()
	r.summary = models.RunSummary{StartedAt: time.Now()}
	r.mu.Unlock()

	err := r.searchAll(ctx, keywords, maxResults)
	r.dispatcher.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Duration = time.Since(r.summary.StartedAt)
	return r.summary, err
}

func (r *Runner) searchAll(ctx context.Context, keywords []models.Keyword, maxResults int) error {
	for _, keyword := range keywords {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted: %w", err)
		}
		r.count(func(s *models.RunSummary) { s.Keywords++ })

		urls, err := r.searcher.Paginate(ctx, string(keyword), maxResults)
		if err != nil {
			r.count(func(s *models.RunSummary) { s.SearchFailures++ })
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("run interrupted: %w", err)
			}
			r.logger.Error("Search failed",
				log.String("keyword", string(keyword)),
				log.Err(err),
			)
			if r.failFast {
				return fmt.Errorf("keyword %q: %w", keyword, err)
			}
			continue
		}

		r.logger.Info("Search complete",
			log.String("keyword", string(keyword)),
			log.Int("results", len(urls)),
		)
		r.count(func(s *models.RunSummary) { s.ResultsFound += len(urls) })

		for rank, pageURL := range urls {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("run interrupted: %w", err)
			}
			result := models.SearchResult{Keyword: keyword, URL: pageURL, Rank: rank + 1}
			if err := r.dispatcher.Dispatch(result.URL, r.handlePage); err != nil {
				r.count(func(s *models.RunSummary) { s.DispatchErrors++ })
				r.logger.Warn("Dispatch failed",
					log.String("keyword", string(result.Keyword)),
					log.Int("rank", result.Rank),
					log.String("url", result.URL),
					log.Err(err),
				)
			}
		}
	}
	return nil
}

// handlePage classifies one fetched page and appends its records.
// It runs on dispatcher goroutines.
func (r *Runner) handlePage(page models.FetchedPage) {
	written, failed, found := 0, 0, 0
	for rec := range r.classifier.Classify(page) {
		found++
		if err := r.sink.Append(rec); err != nil {
			failed++
			r.logger.Error("Failed to write record",
				log.String("page_url", rec.PageURL),
				log.String("href", rec.Href),
				log.Err(err),
			)
			continue
		}
		written++
		r.logger.Info("Found dofollow link",
			log.String("page_url", rec.PageURL),
			log.String("href", rec.Href),
		)
	}

	r.count(func(s *models.RunSummary) {
		s.PagesFetched++
		if found > 0 {
			s.PagesQualified++
		}
		s.RecordsWritten += written
		s.WriteFailures += failed
	})
}

func (r *Runner) count(update func(s *models.RunSummary)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	update(&r.summary)
}
