package crawler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	colly "github.com/gocolly/colly/v2"

	"github.com/amosWeiskopf/linkscout/internal/log"
	"github.com/amosWeiskopf/linkscout/internal/models"
)

// ErrUnsupportedURL is returned for URLs that cannot point at an HTML page.
var ErrUnsupportedURL = errors.New("unsupported url")

// handlerKey stores the page handler in the colly request context.
const handlerKey = "page_handler"

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

func getRandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

var nonWebExts = []string{".jpg", ".jpeg", ".png", ".gif", ".pdf", ".zip", ".mp4", ".mp3", ".css", ".js", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx"}

var webpageMIMEs = []string{"text/html", "application/xhtml+xml", "application/xhtml"}

// Crawler fetches one page per dispatched URL using an async colly collector.
type Crawler struct {
	collector *colly.Collector
	logger    log.Logger
	opts      Options

	dispatched atomic.Int64
	fetched    atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64
}

var _ Dispatcher = (*Crawler)(nil)

// New creates a Crawler. Cancelling ctx aborts in-flight and queued requests.
func New(ctx context.Context, opts Options, logger log.Logger) (*Crawler, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}

	collectorOpts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.Async(true),
		colly.MaxDepth(1),
		colly.AllowURLRevisit(),
	}
	if opts.UserAgent != "" {
		collectorOpts = append(collectorOpts, colly.UserAgent(opts.UserAgent))
	}
	if opts.MaxBodySize > 0 {
		collectorOpts = append(collectorOpts, colly.MaxBodySize(opts.MaxBodySize))
	}

	collector := colly.NewCollector(collectorOpts...)
	collector.IgnoreRobotsTxt = !opts.FollowRobotsTxt
	if opts.Timeout > 0 {
		collector.SetRequestTimeout(opts.Timeout)
	}
	collector.WithTransport(&http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 50,
		IdleConnTimeout:     30 * time.Second,
	})
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: opts.Parallelism,
	}); err != nil {
		return nil, fmt.Errorf("failed to set crawl limits: %w", err)
	}

	c := &Crawler{
		collector: collector,
		logger:    logger,
		opts:      opts,
	}
	c.registerCallbacks()
	return c, nil
}

func (c *Crawler) registerCallbacks() {
	c.collector.OnRequest(func(r *colly.Request) {
		if c.opts.UseRandomUserAgent {
			r.Headers.Set("User-Agent", getRandomUserAgent())
		}
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})

	c.collector.OnResponse(c.handleResponse)

	c.collector.OnError(func(r *colly.Response, err error) {
		c.failed.Add(1)
		pageURL := ""
		if r != nil && r.Request != nil {
			pageURL = r.Request.URL.String()
		}
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		c.logger.Warn("Fetch failed",
			log.String("url", pageURL),
			log.Int("status", status),
			log.Err(err),
		)
	})
}

func (c *Crawler) handleResponse(r *colly.Response) {
	pageURL := r.Request.URL.String()

	contentType := r.Headers.Get("Content-Type")
	if !isWebpageMIME(contentType) {
		c.skipped.Add(1)
		c.logger.Debug("Skipped non-webpage response",
			log.String("url", pageURL),
			log.String("content_type", contentType),
		)
		return
	}
	if isChallengePage(r) {
		c.skipped.Add(1)
		c.logger.Info("Anti-bot protection detected", log.String("url", pageURL))
		return
	}

	handle, ok := r.Ctx.GetAny(handlerKey).(PageHandler)
	if !ok || handle == nil {
		c.skipped.Add(1)
		return
	}

	c.fetched.Add(1)
	c.logger.Debug("Fetched page", log.String("url", pageURL), log.Int("bytes", len(r.Body)))
	handle(models.FetchedPage{URL: pageURL, Body: r.Body})
}

// Dispatch implements Dispatcher.
func (c *Crawler) Dispatch(pageURL string, handle PageHandler) error {
	if !isWebpageURL(pageURL) {
		c.skipped.Add(1)
		return fmt.Errorf("%w: %s", ErrUnsupportedURL, pageURL)
	}

	ctx := colly.NewContext()
	ctx.Put(handlerKey, handle)

	c.dispatched.Add(1)
	if err := c.collector.Request(http.MethodGet, pageURL, nil, ctx, nil); err != nil {
		c.failed.Add(1)
		return fmt.Errorf("dispatch %s: %w", pageURL, err)
	}
	return nil
}

// Wait implements Dispatcher.
func (c *Crawler) Wait() {
	c.collector.Wait()
}

// Stats returns a snapshot of the dispatcher counters.
func (c *Crawler) Stats() Stats {
	return Stats{
		Dispatched: c.dispatched.Load(),
		Fetched:    c.fetched.Load(),
		Skipped:    c.skipped.Load(),
		Failed:     c.failed.Load(),
	}
}

func isWebpageURL(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	lowercasePath := strings.ToLower(u.Path)
	for _, ext := range nonWebExts {
		if strings.HasSuffix(lowercasePath, ext) {
			return false
		}
	}
	return true
}

func isWebpageMIME(contentType string) bool {
	mimeType := strings.TrimSpace(strings.Split(strings.ToLower(contentType), ";")[0])
	for _, mime := range webpageMIMEs {
		if mime == mimeType {
			return true
		}
	}
	return false
}

func isChallengePage(r *colly.Response) bool {
	if strings.EqualFold(r.Headers.Get("Cf-Mitigated"), "challenge") {
		return true
	}
	return strings.Contains(string(r.Body), "cf-browser-verification")
}
