// Package queryplan expands a resolved name into search-query variants and
// builds the ordered query list for one enrichment pass.
package queryplan

import (
	"log/slog"
	"strings"

	"github.com/osintlab/mailtrace/pkg/namedict"
	"github.com/osintlab/mailtrace/pkg/resolver"
)

// Query is a single search to run. RequiresNameCheck marks queries broad
// enough that result pages must be verified to actually mention the name.
type Query struct {
	Text              string
	RequiresNameCheck bool
}

// Variants expands a two-word name into search-string permutations: the
// quoted exact form (diacritics preserved) followed by six folded
// concatenations. Names that are not exactly two words yield nothing.
func Variants(name string) []string {
	parts := strings.Fields(name)
	if len(parts) != 2 {
		return nil
	}

	first := namedict.Fold(parts[0])
	last := namedict.Fold(parts[1])

	return []string{
		`"` + name + `"`,
		first + last,
		first + "." + last,
		first + "_" + last,
		last + first,
		last + "." + first,
		last + "_" + first,
	}
}

// defaultFreeProviders is the allow-list of free/public mail providers.
// Domains not on the list are treated as organizational.
var defaultFreeProviders = []string{
	"gmail.com", "googlemail.com",
	"yahoo.com", "ymail.com",
	"hotmail.com", "outlook.com", "live.com", "msn.com",
	"icloud.com", "me.com",
	"aol.com", "protonmail.com", "proton.me", "pm.me",
	"seznam.cz", "email.cz", "post.cz", "centrum.cz", "atlas.cz", "volny.cz",
}

// Planner builds query lists and classifies email domains.
type Planner struct {
	freeProviders map[string]bool
	logger        *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithFreeProviders replaces the free-provider allow-list.
func WithFreeProviders(domains []string) Option {
	return func(p *Planner) {
		p.freeProviders = make(map[string]bool, len(domains))
		for _, d := range domains {
			p.freeProviders[strings.ToLower(d)] = true
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// New creates a Planner with the default free-provider list.
func New(opts ...Option) *Planner {
	p := &Planner{logger: slog.Default()}
	WithFreeProviders(defaultFreeProviders)(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsFreeProvider reports whether the domain is a known free/public mail
// provider. Everything else counts as organizational.
func (p *Planner) IsFreeProvider(domain string) bool {
	return p.freeProviders[strings.ToLower(domain)]
}

// Build produces the ordered query list for one email. Organizational
// domains are searched alongside the name (the employer or school often
// hosts the hit) and on their own to surface the organization itself.
func (p *Planner) Build(email, domain string, name resolver.Name) []Query {
	var queries []Query

	organizational := domain != "" && !p.IsFreeProvider(domain)

	if name.Resolved {
		variants := Variants(name.Display)
		quoted := `"` + name.Display + `"`
		if len(variants) > 0 {
			quoted = variants[0]
		}

		if organizational {
			queries = append(queries, Query{Text: quoted + " " + domain, RequiresNameCheck: true})
		}
		queries = append(queries, Query{Text: quoted, RequiresNameCheck: true})
		for _, v := range variants[min(1, len(variants)):] {
			queries = append(queries, Query{Text: v, RequiresNameCheck: true})
		}
		if organizational {
			for _, v := range variants[min(1, len(variants)):] {
				queries = append(queries, Query{Text: v + " " + domain, RequiresNameCheck: true})
			}
		}
	} else {
		queries = append(queries, Query{Text: email, RequiresNameCheck: false})
		if domain != "" {
			queries = append(queries, Query{Text: domain, RequiresNameCheck: false})
		}
	}

	// The bare organizational domain is searched regardless of name
	// resolution; it surfaces the organization even without a name hit.
	if organizational {
		queries = append(queries, Query{Text: domain, RequiresNameCheck: false})
	}

	p.logger.Debug("query plan built", "email", email, "organizational", organizational, "queries", len(queries))

	return dedupe(queries)
}

// dedupe drops repeated query texts, keeping the first occurrence.
func dedupe(queries []Query) []Query {
	seen := make(map[string]bool, len(queries))
	out := queries[:0]
	for _, q := range queries {
		if seen[q.Text] {
			continue
		}
		seen[q.Text] = true
		out = append(out, q)
	}
	return out
}

// ResultSet accumulates search results as URL -> requiresNameCheck. A URL
// surfaced by several queries keeps the logical AND of all flags: one
// occurrence from an unchecked query downgrades the URL to unchecked.
type ResultSet map[string]bool

// Add merges one search hit into the set.
func (rs ResultSet) Add(url string, requiresNameCheck bool) {
	if existing, ok := rs[url]; ok {
		rs[url] = existing && requiresNameCheck
		return
	}
	rs[url] = requiresNameCheck
}
