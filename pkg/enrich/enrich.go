// Package enrich runs the full pipeline for an email address: name
// inference, query planning, search, rendering, classification, name
// verification and persistence.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/osintlab/mailtrace/pkg/aggregate"
	"github.com/osintlab/mailtrace/pkg/analyze"
	"github.com/osintlab/mailtrace/pkg/instagram"
	"github.com/osintlab/mailtrace/pkg/queryplan"
	"github.com/osintlab/mailtrace/pkg/render"
	"github.com/osintlab/mailtrace/pkg/resolver"
	"github.com/osintlab/mailtrace/pkg/search"
	"github.com/osintlab/mailtrace/pkg/social"
	"github.com/osintlab/mailtrace/pkg/store"
	"github.com/osintlab/mailtrace/pkg/verify"
)

// Renderer renders URLs into parsed pages. One Renderer serves one
// enrichment pass and is closed afterwards.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (*render.Page, error)
	Close() error
}

// RendererFactory opens a fresh Renderer. The engine calls it once per
// email so a crashed browser cannot poison later passes.
type RendererFactory func(ctx context.Context) (Renderer, error)

// Config wires the pipeline together. Resolver, Planner, Search,
// NewRenderer, Analyzer and Store are required; Instagram is optional.
type Config struct {
	Resolver    *resolver.Resolver
	Planner     *queryplan.Planner
	Search      search.Provider
	NewRenderer RendererFactory
	Analyzer    *analyze.Analyzer
	Store       store.Store
	Instagram   *instagram.Client
	Logger      *slog.Logger

	// SearchDelayMin/Max bound the random pause before every search
	// query. Left zero, they default to 2-5s.
	SearchDelayMin time.Duration
	SearchDelayMax time.Duration

	// Sleep is the pause function, injectable for tests.
	Sleep func(context.Context, time.Duration) error
}

// PageReport records what happened to one rendered URL.
type PageReport struct {
	URL          string  `json:"url"`
	Title        string  `json:"title,omitempty"`
	Label        string  `json:"label"`
	Confidence   float64 `json:"confidence"`
	NameVerified bool    `json:"name_verified"`
	Excluded     bool    `json:"excluded,omitempty"`
}

// Report is the outcome of one enrichment pass.
type Report struct {
	Email     string              `json:"email"`
	Name      string              `json:"name,omitempty"`
	Resolved  bool                `json:"resolved"`
	Skipped   bool                `json:"skipped,omitempty"`
	Queries   []string            `json:"queries,omitempty"`
	Pages     []PageReport        `json:"pages,omitempty"`
	Instagram []instagram.Profile `json:"instagram,omitempty"`
	Summary   map[string]string   `json:"summary,omitempty"`

	instagramHandles []string
}

// Engine runs enrichment passes strictly sequentially.
type Engine struct {
	cfg Config
}

// New validates the wiring and returns an Engine.
func New(cfg Config) (*Engine, error) {
	switch {
	case cfg.Resolver == nil:
		return nil, errors.New("resolver required")
	case cfg.Planner == nil:
		return nil, errors.New("planner required")
	case cfg.Search == nil:
		return nil, errors.New("search provider required")
	case cfg.NewRenderer == nil:
		return nil, errors.New("renderer factory required")
	case cfg.Analyzer == nil:
		return nil, errors.New("analyzer required")
	case cfg.Store == nil:
		return nil, errors.New("store required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepCtx
	}
	if cfg.SearchDelayMax <= 0 {
		cfg.SearchDelayMin = 2 * time.Second
		cfg.SearchDelayMax = 5 * time.Second
	}
	return &Engine{cfg: cfg}, nil
}

// Enrich runs the pipeline for one email. Records that already carry
// content are skipped. URL-level failures degrade to fewer findings,
// never to a failed pass; the record is upserted even when nothing was
// found so the address stays registered.
func (e *Engine) Enrich(ctx context.Context, email string) (*Report, error) {
	log := e.cfg.Logger

	if record, err := e.cfg.Store.Get(ctx, email); err == nil && record.Enriched() {
		log.InfoContext(ctx, "record already enriched, skipping", "email", email)
		return &Report{Email: email, Skipped: true}, nil
	}

	name := e.cfg.Resolver.Resolve(email)
	domain := emailDomain(email)
	queries := e.cfg.Planner.Build(email, domain, name)

	report := &Report{Email: email, Name: name.Display, Resolved: name.Resolved}
	for _, q := range queries {
		report.Queries = append(report.Queries, q.Text)
	}

	results := e.runSearches(ctx, queries)
	if len(results) == 0 {
		log.InfoContext(ctx, "no search results", "email", email)
		return report, e.cfg.Store.Upsert(ctx, email, store.Update{})
	}

	renderer, err := e.cfg.NewRenderer(ctx)
	if err != nil {
		return nil, fmt.Errorf("open renderer: %w", err)
	}
	defer renderer.Close() //nolint:errcheck // browser teardown

	buckets := e.analyzeURLs(ctx, renderer, results, name, report)

	if e.cfg.Instagram != nil {
		e.lookupInstagram(ctx, report)
	}

	summary := buckets.Summarize()
	report.Summary = summaryMap(summary)

	err = e.cfg.Store.Upsert(ctx, email, store.Update{
		SocialMedia: summary.SocialMedia,
		School:      summary.School,
		Sports:      summary.Sports,
		Other:       summary.Other,
	})
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "enrichment pass complete",
		"email", email, "name", name.Display, "resolved", name.Resolved,
		"urls", len(results), "findings", len(report.Pages))
	return report, nil
}

// Run enriches every pending record sequentially. A failing email does
// not stop the batch unless the context is done.
func (e *Engine) Run(ctx context.Context) ([]*Report, error) {
	pending, err := e.cfg.Store.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending records: %w", err)
	}
	e.cfg.Logger.InfoContext(ctx, "batch run starting", "pending", len(pending))

	var reports []*Report
	for _, record := range pending {
		report, err := e.Enrich(ctx, record.Email)
		if err != nil {
			if ctx.Err() != nil {
				return reports, ctx.Err()
			}
			e.cfg.Logger.WarnContext(ctx, "enrichment failed", "email", record.Email, "error", err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// runSearches executes the query plan with a jittered pause before
// every query. A failed query contributes no URLs.
func (e *Engine) runSearches(ctx context.Context, queries []queryplan.Query) queryplan.ResultSet {
	results := queryplan.ResultSet{}
	for _, q := range queries {
		pause := randomInterval(e.cfg.SearchDelayMin, e.cfg.SearchDelayMax)
		if err := e.cfg.Sleep(ctx, pause); err != nil {
			return results
		}

		urls, err := e.cfg.Search.Search(ctx, q.Text)
		if err != nil {
			e.cfg.Logger.WarnContext(ctx, "search failed", "query", q.Text, "error", err)
			continue
		}
		for _, u := range urls {
			results.Add(u, q.RequiresNameCheck)
		}
	}
	return results
}

// analyzeURLs renders and classifies every result URL in stable order,
// filling the report and returning the content buckets.
func (e *Engine) analyzeURLs(
	ctx context.Context,
	renderer Renderer,
	results queryplan.ResultSet,
	name resolver.Name,
	report *Report,
) *aggregate.Buckets {
	log := e.cfg.Logger

	urls := make([]string, 0, len(results))
	for u := range results {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	var buckets aggregate.Buckets
	for _, u := range urls {
		page, err := renderer.Render(ctx, u)
		if err != nil {
			log.WarnContext(ctx, "render failed", "url", u, "error", err)
			continue
		}

		analysis, err := e.cfg.Analyzer.Analyze(ctx, page)
		if err != nil {
			log.WarnContext(ctx, "analysis failed", "url", u, "error", err)
			continue
		}

		verified := verify.ContainsName(analysis.Text, name.Display)
		pr := PageReport{
			URL:          u,
			Title:        page.Title,
			Label:        analysis.Label,
			Confidence:   analysis.Confidence,
			NameVerified: verified,
		}

		if results[u] && !verified {
			log.DebugContext(ctx, "page does not mention name, excluding",
				"url", u, "name", name.Display)
			pr.Excluded = true
			report.Pages = append(report.Pages, pr)
			continue
		}
		report.Pages = append(report.Pages, pr)

		buckets.Add(analysis.Label, aggregate.Finding{
			URL:         u,
			Title:       page.Title,
			Description: page.MetaDescription,
			Confidence:  analysis.Confidence,
		})

		e.collectInstagramHandles(analysis.SocialLinks, report)
	}
	return &buckets
}

// collectInstagramHandles queues usernames found in page social links.
func (e *Engine) collectInstagramHandles(links []string, report *Report) {
	if e.cfg.Instagram == nil {
		return
	}
	for _, link := range links {
		if username := social.InstagramUsername(link); username != "" {
			report.instagramHandles = appendUnique(report.instagramHandles, strings.ToLower(username))
		}
	}
}

// lookupInstagram fetches queued profiles. Profile data goes into the
// report only; a rate-limit abandon stops further lookups without
// failing the pass.
func (e *Engine) lookupInstagram(ctx context.Context, report *Report) {
	for _, username := range report.instagramHandles {
		profile, err := e.cfg.Instagram.Lookup(ctx, username)
		if err != nil {
			if errors.Is(err, instagram.ErrRateLimited) {
				e.cfg.Logger.WarnContext(ctx, "instagram throttled, abandoning lookups", "username", username)
				return
			}
			e.cfg.Logger.DebugContext(ctx, "instagram lookup failed", "username", username, "error", err)
			continue
		}
		report.Instagram = append(report.Instagram, *profile)
	}
}

func summaryMap(s aggregate.Summary) map[string]string {
	m := make(map[string]string)
	if s.SocialMedia != nil {
		m[analyze.LabelSocialMedia] = *s.SocialMedia
	}
	if s.School != nil {
		m[analyze.LabelSchool] = *s.School
	}
	if s.Sports != nil {
		m[analyze.LabelSports] = *s.Sports
	}
	if s.Other != nil {
		m[analyze.LabelOther] = *s.Other
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func emailDomain(email string) string {
	if _, domain, ok := strings.Cut(email, "@"); ok {
		return strings.ToLower(domain)
	}
	return ""
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
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
