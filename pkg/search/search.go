// Package search finds candidate URLs for a query.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/osintlab/mailtrace/pkg/httpcache"
)

// Provider returns result URLs for a query.
type Provider interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// DefaultMaxResults caps results per query.
const DefaultMaxResults = 10

const defaultBaseURL = "https://html.duckduckgo.com/html/"

// userAgents is rotated per request; the HTML endpoint blocks clients
// that keep one fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:123.0) Gecko/20100101 Firefox/123.0",
}

// resultPattern matches result anchors in the DuckDuckGo HTML endpoint.
var resultPattern = regexp.MustCompile(`(?i)<a[^>]+class="[^"]*result__a[^"]*"[^>]+href="([^"]+)"`)

// DuckDuckGo is a Provider backed by the JavaScript-free HTML endpoint.
type DuckDuckGo struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	baseURL    string
	maxResults int
}

// Option configures a DuckDuckGo provider.
type Option func(*DuckDuckGo)

// WithHTTPCache sets the HTTP cache.
func WithHTTPCache(cache httpcache.Cacher) Option {
	return func(d *DuckDuckGo) { d.cache = cache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *DuckDuckGo) { d.logger = logger }
}

// WithBaseURL overrides the endpoint URL.
func WithBaseURL(baseURL string) Option {
	return func(d *DuckDuckGo) { d.baseURL = baseURL }
}

// WithMaxResults overrides the per-query result cap.
func WithMaxResults(n int) Option {
	return func(d *DuckDuckGo) { d.maxResults = n }
}

// NewDuckDuckGo creates a DuckDuckGo search provider.
func NewDuckDuckGo(opts ...Option) *DuckDuckGo {
	d := &DuckDuckGo{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
		baseURL:    defaultBaseURL,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search runs one query and returns up to maxResults unique URLs.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]string, error) {
	searchURL := d.baseURL + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[rand.N(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	body, err := httpcache.FetchURL(ctx, d.cache, d.httpClient, req, d.logger)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	results := parseResults(string(body), d.maxResults)
	d.logger.InfoContext(ctx, "search complete", "query", query, "results", len(results))
	return results, nil
}

func parseResults(html string, maxResults int) []string {
	var results []string
	seen := make(map[string]bool)
	for _, m := range resultPattern.FindAllStringSubmatch(html, -1) {
		target := decodeResult(m[1])
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		results = append(results, target)
		if len(results) == maxResults {
			break
		}
	}
	return results
}

// decodeResult unwraps the duckduckgo.com/l/?uddg= redirect and drops
// ad links.
func decodeResult(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.Contains(u.Path, "y.js") {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}
