package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/federicodeponte/openanalytics/internal/model"
)

// maxBodyBytes caps how much HTML is read from a page. Pages larger than
// this are truncated, not rejected.
const maxBodyBytes = 5 << 20

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// RequestsPerSecond limits requests per target host. Zero means the
	// default of 5/s.
	RequestsPerSecond float64
}

// HTTPFetcher implements WebFetcher using net/http with retry and per-host
// rate limiting.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "openanalytics/1.0 (+https://github.com/federicodeponte/openanalytics)"
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 5
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch retrieves the page, its robots.txt and the sitemap flag. Network
// failures on the main page are reported through FetchResult.Error; only a
// malformed URL returns an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (model.FetchResult, error) {
	u, err := url.Parse(normalizeURL(rawURL))
	if err != nil || u.Host == "" {
		return model.FetchResult{}, eris.Errorf("fetcher: invalid url %q", rawURL)
	}

	result := model.FetchResult{FinalURL: u.String()}

	start := time.Now()
	body, finalURL, status, fetchErr := f.getPage(ctx, u.String())
	result.ResponseTimeMS = int(time.Since(start).Milliseconds())
	result.StatusCode = status
	if finalURL != "" {
		result.FinalURL = finalURL
	}

	if fetchErr != nil {
		result.Error = fetchErr.Error()
		zap.L().Warn("page fetch failed",
			zap.String("url", u.String()),
			zap.Error(fetchErr))
		return result, nil
	}

	result.HTML = body
	if blocked, blockType := detectBlock(status, body); blocked {
		result.Blocked = true
		result.BlockType = blockType
		result.Error = "fetch blocked: " + blockType
		zap.L().Warn("page fetch blocked",
			zap.String("url", u.String()),
			zap.String("block_type", blockType))
		return result, nil
	}
	if status >= 400 {
		result.Error = eris.Errorf("fetcher: http %d from %s", status, u.String()).Error()
		return result, nil
	}

	// robots.txt and sitemap.xml are independent of the page fetch and of
	// each other.
	base := u.Scheme + "://" + u.Host
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		robots, err := f.getText(gctx, base+"/robots.txt")
		if err == nil {
			result.RobotsTxt = robots
		}
		return nil
	})
	g.Go(func() error {
		result.SitemapFound = f.exists(gctx, base+"/sitemap.xml")
		return nil
	})
	_ = g.Wait()

	return result, nil
}

// normalizeURL defaults to https when no scheme is given.
func normalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.Contains(rawURL, "://") {
		return "https://" + rawURL
	}
	return rawURL
}

// getPage fetches the main page with retries. Returns the body, the URL
// after redirects, and the final status code.
func (f *HTTPFetcher) getPage(ctx context.Context, pageURL string) (body, finalURL string, status int, err error) {
	resp, err := f.doWithRetry(ctx, pageURL)
	if err != nil {
		return "", "", 0, err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", resp.Request.URL.String(), resp.StatusCode, eris.Wrap(err, "fetcher: read body")
	}
	return string(data), resp.Request.URL.String(), resp.StatusCode, nil
}

func (f *HTTPFetcher) getText(ctx context.Context, rawURL string) (string, error) {
	resp, err := f.doWithRetry(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("fetcher: http %d from %s", resp.StatusCode, rawURL)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", eris.Wrap(err, "fetcher: read body")
	}
	return string(data), nil
}

// exists reports whether the URL answers with a 2xx. HEAD first, falling
// back to GET for servers that reject HEAD.
func (f *HTTPFetcher) exists(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	if err := f.limiterFor(rawURL).Wait(ctx); err != nil {
		return false
	}
	resp, err := f.client.Do(req)
	if err == nil {
		_ = resp.Body.Close()
		if resp.StatusCode < 300 {
			return true
		}
		if resp.StatusCode != http.StatusMethodNotAllowed {
			return false
		}
	}
	body, err := f.getText(ctx, rawURL)
	return err == nil && body != ""
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(f.opts.RequestsPerSecond), int(math.Max(1, f.opts.RequestsPerSecond)))
		f.limiters[host] = lim
	}
	return lim
}

func (f *HTTPFetcher) doWithRetry(ctx context.Context, rawURL string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < f.opts.MaxRetries; attempt++ {
		if err := f.limiterFor(rawURL).Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: create request")
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("http request failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			f.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("fetcher: http %d from %s", resp.StatusCode, rawURL)
			zap.L().Warn("retryable status, backing off",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1))
			f.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}
	return nil, eris.Wrap(lastErr, "fetcher: all retries exhausted")
}

func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 15 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int63n(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// blockSignatures are body substrings that identify bot-protection
// interstitials served with a 2xx or 403.
var blockSignatures = map[string]string{
	"cf-browser-verification":          "cloudflare_challenge",
	"checking your browser":            "cloudflare_challenge",
	"just a moment...":                 "cloudflare_challenge",
	"attention required! | cloudflare": "cloudflare_block",
	"ddos protection by":               "ddos_protection",
	"please verify you are a human":    "captcha",
	"px-captcha":                       "captcha",
}

func detectBlock(status int, body string) (bool, string) {
	lower := strings.ToLower(body)
	for sig, blockType := range blockSignatures {
		if strings.Contains(lower, sig) {
			return true, blockType
		}
	}
	if status == http.StatusForbidden {
		return true, "access_denied"
	}
	return false, ""
}
