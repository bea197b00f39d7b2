// Package social recognizes social-platform domains and extracts profile
// usernames from their URLs.
package social

import (
	"regexp"
	"strings"
)

// defaultDomains are the platforms whose links count as social-profile
// references and whose pages force the "social media" classification.
var defaultDomains = []string{
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"tiktok.com",
	"youtube.com",
	"linkedin.com",
	"threads.net",
}

// Matcher matches URLs against a social-platform domain list.
type Matcher struct {
	domains []string
}

// NewMatcher creates a Matcher. With no arguments the default platform list
// applies; otherwise only the given domains match.
func NewMatcher(domains ...string) *Matcher {
	if len(domains) == 0 {
		domains = defaultDomains
	}
	return &Matcher{domains: domains}
}

// Domains returns the matcher's domain list.
func (m *Matcher) Domains() []string { return m.domains }

// MatchURL reports whether the URL references one of the matcher's platforms.
// Matching is a plain substring test, so subdomains and path forms all hit.
func (m *Matcher) MatchURL(url string) bool {
	lower := strings.ToLower(url)
	for _, domain := range m.domains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// CleanURL strips query parameters and fragments.
func CleanURL(url string) string {
	if idx := strings.IndexAny(url, "?#"); idx >= 0 {
		return url[:idx]
	}
	return url
}

// systemPaths are path segments that look like usernames but are platform
// navigation, not profiles.
var systemPaths = map[string]bool{
	"login": true, "home": true, "settings": true, "explore": true,
	"company": true, "sharer": true, "intent": true, "help": true,
	"people": true, "accessibility": true, "recover": true, "watch": true,
	"policies": true, "legal": true, "public": true, "v": true, "_u": true,
	"blog": true, "about-us": true,
}

var trailingIDPattern = regexp.MustCompile(`[-\d]+$`)

// Username extracts the profile username that follows the site domain in a
// URL, e.g. Username("https://instagram.com/jan.novak?hl=cs", "instagram.com")
// returns "jan.novak". Navigation paths and trailing numeric IDs are
// filtered out; returns "" when no plausible username is present.
func Username(rawURL, site string) string {
	cleaned := CleanURL(rawURL)
	pattern, err := regexp.Compile(regexp.QuoteMeta(site) + `/([^/?#]+)`)
	if err != nil {
		return ""
	}
	matches := pattern.FindStringSubmatch(cleaned)
	if len(matches) < 2 {
		return ""
	}
	username := matches[1]
	if systemPaths[strings.ToLower(username)] {
		return ""
	}
	return trailingIDPattern.ReplaceAllString(username, "")
}

// InstagramUsername extracts a username from an Instagram profile URL.
func InstagramUsername(rawURL string) string {
	if !strings.Contains(strings.ToLower(rawURL), "instagram.com/") {
		return ""
	}
	return Username(rawURL, "instagram.com")
}
