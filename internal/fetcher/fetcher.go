// Package fetcher retrieves websites for analysis: the page HTML, its
// robots.txt, and whether a sitemap is published.
package fetcher

import (
	"context"

	"github.com/federicodeponte/openanalytics/internal/model"
)

// WebFetcher retrieves everything the health checks need about a URL in a
// single call. Implementations must populate FetchResult.Error instead of
// returning an error for unreachable sites, so a failed fetch still produces
// a scoreable result.
type WebFetcher interface {
	Fetch(ctx context.Context, rawURL string) (model.FetchResult, error)
}
