// Package instagram fetches Instagram profiles via the anonymous web API.
//
// Instagram aggressively throttles unauthenticated clients, so every
// lookup goes through a cooldown policy and rate-limit responses trigger
// a much longer escalated wait before the next attempt. A run that keeps
// hitting the limiter abandons the lookup with ErrRateLimited rather
// than failing the whole pass.
package instagram

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/osintlab/mailtrace/pkg/httpcache"
)

// ErrRateLimited indicates Instagram throttled the client and all
// attempts for the current lookup were exhausted.
var ErrRateLimited = errors.New("instagram rate limited")

// ErrNotFound indicates the profile does not exist or is hidden from
// anonymous access.
var ErrNotFound = errors.New("instagram profile not found or private")

// Profile holds the subset of profile data the anonymous API exposes.
type Profile struct {
	Username    string `json:"username"`
	FullName    string `json:"full_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	Followers   int    `json:"followers,omitempty"`
	Following   int    `json:"following,omitempty"`
	Private     bool   `json:"private,omitempty"`
	Verified    bool   `json:"verified,omitempty"`
}

// Backoff controls the pauses around Instagram requests.
type Backoff struct {
	// CooldownMin/Max bound the random pause before each lookup after
	// the first.
	CooldownMin time.Duration
	CooldownMax time.Duration
	// RateLimitMin/Max bound the random pause after a throttled
	// response before the next attempt.
	RateLimitMin time.Duration
	RateLimitMax time.Duration
	// Attempts is the number of tries per lookup before abandoning
	// with ErrRateLimited.
	Attempts int
}

// DefaultBackoff returns the standard anonymous-access policy.
func DefaultBackoff() Backoff {
	return Backoff{
		CooldownMin:  60 * time.Second,
		CooldownMax:  180 * time.Second,
		RateLimitMin: 600 * time.Second,
		RateLimitMax: 1200 * time.Second,
		Attempts:     3,
	}
}

type lookupResult struct {
	profile *Profile
	err     error
}

// Client handles Instagram requests. It is not safe for concurrent use;
// lookups are expected to run sequentially within an enrichment pass.
type Client struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	backoff    Backoff
	sleep      func(context.Context, time.Duration) error
	interval   func(min, max time.Duration) time.Duration
	apiBase    string
	seen       map[string]lookupResult
	warmed     bool
}

// Option configures a Client.
type Option func(*config)

type config struct {
	cache    httpcache.Cacher
	logger   *slog.Logger
	jar      http.CookieJar
	backoff  Backoff
	sleep    func(context.Context, time.Duration) error
	interval func(min, max time.Duration) time.Duration
}

// WithHTTPCache sets the HTTP cache.
func WithHTTPCache(httpCache httpcache.Cacher) Option {
	return func(c *config) { c.cache = httpCache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithCookieJar sets session cookies for authenticated access.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *config) { c.jar = jar }
}

// WithBackoff overrides the default backoff policy.
func WithBackoff(b Backoff) Option {
	return func(c *config) { c.backoff = b }
}

// WithSleep overrides the pause function. Tests inject a no-op here.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(c *config) { c.sleep = sleep }
}

// WithInterval overrides the random interval picker.
func WithInterval(interval func(min, max time.Duration) time.Duration) Option {
	return func(c *config) { c.interval = interval }
}

// New creates an Instagram client.
func New(_ context.Context, opts ...Option) (*Client, error) {
	cfg := &config{
		logger:   slog.Default(),
		backoff:  DefaultBackoff(),
		sleep:    sleepCtx,
		interval: randomInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.backoff.Attempts < 1 {
		return nil, fmt.Errorf("backoff attempts must be positive, got %d", cfg.backoff.Attempts)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // needed for corporate proxies
			},
			Jar: cfg.jar,
		},
		cache:    cfg.cache,
		logger:   cfg.logger,
		backoff:  cfg.backoff,
		sleep:    cfg.sleep,
		interval: cfg.interval,
		apiBase:  "https://i.instagram.com",
		seen:     make(map[string]lookupResult),
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func randomInterval(minD, maxD time.Duration) time.Duration {
	if maxD <= minD {
		return minD
	}
	return minD + rand.N(maxD-minD)
}

// Lookup fetches a profile by username. Repeated lookups of the same
// username within a client's lifetime return the first result without
// touching the network again.
func (c *Client) Lookup(ctx context.Context, username string) (*Profile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, errors.New("empty username")
	}

	if res, ok := c.seen[username]; ok {
		c.logger.DebugContext(ctx, "instagram lookup already attempted", "username", username)
		return res.profile, res.err
	}

	profile, err := c.lookup(ctx, username)
	c.seen[username] = lookupResult{profile: profile, err: err}
	return profile, err
}

func (c *Client) lookup(ctx context.Context, username string) (*Profile, error) {
	for attempt := 1; attempt <= c.backoff.Attempts; attempt++ {
		if c.warmed {
			pause := c.interval(c.backoff.CooldownMin, c.backoff.CooldownMax)
			c.logger.DebugContext(ctx, "instagram cooldown", "username", username, "pause", pause)
			if err := c.sleep(ctx, pause); err != nil {
				return nil, err
			}
		}
		c.warmed = true

		// Throttled responses are negatively cached, so retries go
		// straight to the network; replaying the cached error would
		// make the escalated pauses pointless.
		profile, err := c.fetch(ctx, username, attempt == 1)
		if err == nil {
			return profile, nil
		}
		if !isRateLimitError(err) {
			return nil, err
		}

		c.logger.WarnContext(ctx, "instagram rate limited",
			"username", username, "attempt", attempt, "error", err)
		if attempt == c.backoff.Attempts {
			break
		}
		pause := c.interval(c.backoff.RateLimitMin, c.backoff.RateLimitMax)
		if err := c.sleep(ctx, pause); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRateLimited, username)
}

func (c *Client) fetch(ctx context.Context, username string, useCache bool) (*Profile, error) {
	apiURL := c.apiBase + "/api/v1/users/web_profile_info/?username=" + username

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Required header for anonymous access
	req.Header.Set("X-Ig-App-Id", "936619743392459")
	req.Header.Set("User-Agent", httpcache.UserAgent)

	cache := c.cache
	if !useCache {
		cache = nil
	}
	body, err := httpcache.FetchURL(ctx, cache, c.httpClient, req, c.logger)
	if err != nil {
		return nil, fmt.Errorf("fetch instagram API: %w", err)
	}

	return parseResponse(body)
}

// isRateLimitError detects throttling. Instagram answers anonymous
// overuse with 429, but also serves 401s with a wait message.
func isRateLimitError(err error) bool {
	var httpErr *httpcache.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests ||
			httpErr.StatusCode == http.StatusUnauthorized
	}
	return strings.Contains(strings.ToLower(err.Error()), "please wait a few minutes")
}

func parseResponse(data []byte) (*Profile, error) {
	var resp apiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	user := resp.Data.User
	if user.Username == "" {
		return nil, ErrNotFound
	}

	return &Profile{
		Username:    user.Username,
		FullName:    user.FullName,
		Bio:         user.Biography,
		ExternalURL: user.ExternalURL,
		Followers:   user.EdgeFollowedBy.Count,
		Following:   user.EdgeFollow.Count,
		Private:     user.IsPrivate,
		Verified:    user.IsVerified,
	}, nil
}

// apiResponse represents the Instagram API response structure.
type apiResponse struct {
	Data struct {
		User userInfo `json:"user"`
	} `json:"data"`
}

type userInfo struct {
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	Biography      string `json:"biography"`
	ExternalURL    string `json:"external_url"`
	EdgeFollowedBy count  `json:"edge_followed_by"`
	EdgeFollow     count  `json:"edge_follow"`
	IsVerified     bool   `json:"is_verified"`
	IsPrivate      bool   `json:"is_private"`
}

type count struct {
	Count int `json:"count"`
}
