// Package render drives a headless browser to fetch fully rendered pages.
//
// Search hits routinely sit behind JavaScript, so plain HTTP fetches of
// result URLs come back near empty. A Session owns one browser for a
// whole enrichment pass and renders each URL in a fresh tab.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/osintlab/mailtrace/pkg/htmlutil"
)

// userAgents is rotated per session so repeated runs do not present a
// single fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:123.0) Gecko/20100101 Firefox/123.0",
}

// Page holds the rendered content of one URL.
type Page struct {
	URL             string
	Title           string
	MetaDescription string
	Headings        []string
	Paragraphs      []string
	Links           []string
}

// FullText joins title, description, headings and paragraphs into one
// whitespace-normalized string.
func (p *Page) FullText() string {
	parts := []string{p.Title, p.MetaDescription}
	parts = append(parts, p.Headings...)
	parts = append(parts, p.Paragraphs...)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Session owns a headless browser. It is not safe for concurrent use.
type Session struct {
	browser   *rod.Browser
	launch    *launcher.Launcher
	logger    *slog.Logger
	userAgent string
	navigate  time.Duration
	settle    time.Duration
	closed    bool
}

// Option configures a Session.
type Option func(*config)

type config struct {
	logger    *slog.Logger
	userAgent string
	navigate  time.Duration
	settle    time.Duration
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithUserAgent pins the User-Agent instead of picking a random one.
func WithUserAgent(ua string) Option {
	return func(c *config) { c.userAgent = ua }
}

// WithNavigateTimeout bounds navigation plus body wait per URL.
func WithNavigateTimeout(d time.Duration) Option {
	return func(c *config) { c.navigate = d }
}

// WithSettleDelay sets the pause after scrolling before content capture.
func WithSettleDelay(d time.Duration) Option {
	return func(c *config) { c.settle = d }
}

// New launches a headless browser and connects to it.
func New(ctx context.Context, opts ...Option) (*Session, error) {
	cfg := &config{
		logger:    slog.Default(),
		userAgent: userAgents[rand.N(len(userAgents))],
		navigate:  10 * time.Second,
		settle:    2 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	launch := launcher.New().Headless(true)
	controlURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		launch.Cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	cfg.logger.DebugContext(ctx, "browser session started", "user_agent", cfg.userAgent)

	return &Session{
		browser:   browser,
		launch:    launch,
		logger:    cfg.logger,
		userAgent: cfg.userAgent,
		navigate:  cfg.navigate,
		settle:    cfg.settle,
	}, nil
}

// Render loads a URL in a fresh tab and returns its parsed content.
func (s *Session) Render(ctx context.Context, rawURL string) (*Page, error) {
	s.logger.InfoContext(ctx, "rendering page", "url", rawURL)

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer page.Close() //nolint:errcheck // tab cleanup

	if err := (proto.NetworkSetUserAgentOverride{UserAgent: s.userAgent}).Call(page); err != nil {
		s.logger.DebugContext(ctx, "failed to set user agent", "error", err)
	}

	page = page.Context(ctx).Timeout(s.navigate)
	if err := page.Navigate(rawURL); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	if _, err := page.Element("body"); err != nil {
		return nil, fmt.Errorf("wait for body of %s: %w", rawURL, err)
	}

	// Scroll to the bottom so lazy-loaded content appears, then let the
	// page settle before capture.
	if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		s.logger.DebugContext(ctx, "scroll failed", "url", rawURL, "error", err)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.settle):
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("capture HTML of %s: %w", rawURL, err)
	}

	return Parse(rawURL, html), nil
}

// Parse extracts page content from raw HTML.
func Parse(rawURL, html string) *Page {
	return &Page{
		URL:             rawURL,
		Title:           htmlutil.Title(html),
		MetaDescription: htmlutil.Description(html),
		Headings:        htmlutil.Headings(html),
		Paragraphs:      htmlutil.Paragraphs(html),
		Links:           htmlutil.Links(html),
	}
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.browser.Close()
	s.launch.Cleanup()
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}
