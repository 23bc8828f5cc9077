package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// quotaReasons are googleapi error reasons that signal rate or quota rejection.
var quotaReasons = []string{
	"ratelimitexceeded",
	"userratelimitexceeded",
	"dailylimitexceeded",
	"quotaexceeded",
	"resource_exhausted",
}

// GoogleOptions configures a GoogleSearcher.
type GoogleOptions struct {
	APIKey   string
	EngineID string
	// Endpoint overrides the API base URL. Empty means the public endpoint.
	Endpoint string
	// RequestsPerSecond paces outbound search calls. Zero disables pacing.
	RequestsPerSecond float64
}

// GoogleSearcher is a PageSearcher backed by the Custom Search JSON API.
type GoogleSearcher struct {
	opts    GoogleOptions
	limiter *rate.Limiter

	mu      sync.Mutex
	service *customsearch.Service
}

// NewGoogleSearcher creates a searcher. Credentials are not checked until
// the first request.
func NewGoogleSearcher(opts GoogleOptions) *GoogleSearcher {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &GoogleSearcher{opts: opts, limiter: limiter}
}

// SearchPage implements PageSearcher.
func (g *GoogleSearcher) SearchPage(ctx context.Context, query string, start, num int) ([]string, error) {
	svc, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	res, err := svc.Cse.List().
		Q(query).
		Cx(g.opts.EngineID).
		Start(int64(start)).
		Num(int64(num)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyAPIError(err)
	}

	links := make([]string, 0, len(res.Items))
	for _, item := range res.Items {
		if item == nil || item.Link == "" {
			continue
		}
		links = append(links, item.Link)
	}
	return links, nil
}

func (g *GoogleSearcher) client(ctx context.Context) (*customsearch.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.service != nil {
		return g.service, nil
	}
	if g.opts.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is not set", ErrAuthentication)
	}
	if g.opts.EngineID == "" {
		return nil, fmt.Errorf("%w: search engine ID is not set", ErrAuthentication)
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(g.opts.APIKey)}
	if g.opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(g.opts.Endpoint))
	}
	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	g.service = svc
	return svc, nil
}

// classifyAPIError maps provider errors onto the package error kinds.
func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Message)
	case apiErr.Code == http.StatusForbidden && isQuotaError(apiErr):
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Message)
	case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuthentication, apiErr.Message)
	case apiErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "api key"):
		return fmt.Errorf("%w: %s", ErrAuthentication, apiErr.Message)
	}
	return err
}

func isQuotaError(apiErr *googleapi.Error) bool {
	texts := []string{apiErr.Message}
	for _, item := range apiErr.Errors {
		texts = append(texts, item.Reason, item.Message)
	}
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, reason := range quotaReasons {
			if strings.Contains(lower, reason) {
				return true
			}
		}
		if strings.Contains(lower, "quota") {
			return true
		}
	}
	return false
}
