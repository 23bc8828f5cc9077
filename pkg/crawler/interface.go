package crawler

import (
	"time"

	"github.com/amosWeiskopf/linkscout/internal/models"
)

// PageHandler receives a successfully fetched HTML page. It is called
// exactly once per page and may run concurrently with other handlers.
type PageHandler func(page models.FetchedPage)

// Dispatcher defines the fetch operations used by the scout runner
type Dispatcher interface {
	// Dispatch schedules a fetch of pageURL; handle runs when the page arrives.
	// It returns without waiting for the response.
	Dispatch(pageURL string, handle PageHandler) error

	// Wait blocks until every dispatched fetch has completed
	Wait()
}

// Options contains configuration for the crawler
type Options struct {
	UserAgent          string        // Fixed user agent string
	UseRandomUserAgent bool          // Rotate desktop browser user agents per request
	Timeout            time.Duration // Request timeout
	Parallelism        int           // Concurrent requests
	MaxBodySize        int           // Response body limit in bytes, 0 for colly's default
	FollowRobotsTxt    bool          // Respect robots.txt
}

// Stats counts dispatcher outcomes
type Stats struct {
	Dispatched int64
	Fetched    int64
	Skipped    int64
	Failed     int64
}
