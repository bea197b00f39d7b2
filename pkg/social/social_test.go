package social

import "testing"

func TestMatchURL(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.facebook.com/jan.novak", true},
		{"https://instagram.com/jannovak", true},
		{"https://x.com/jannovak", true},
		{"https://www.threads.net/@jannovak", true},
		{"https://example.com/about", false},
		{"https://gymnazium-brno.cz/studenti", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := m.MatchURL(tc.url); got != tc.want {
			t.Errorf("MatchURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestMatcherCustomDomains(t *testing.T) {
	m := NewMatcher("mastodon.social")
	if !m.MatchURL("https://mastodon.social/@jan") {
		t.Error("custom domain should match")
	}
	if m.MatchURL("https://facebook.com/jan") {
		t.Error("default domains should not match a custom matcher")
	}
}

func TestCleanURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://instagram.com/jan?hl=cs", "https://instagram.com/jan"},
		{"https://example.com/page#section", "https://example.com/page"},
		{"https://example.com/page", "https://example.com/page"},
	}
	for _, tc := range tests {
		if got := CleanURL(tc.in); got != tc.want {
			t.Errorf("CleanURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUsername(t *testing.T) {
	tests := []struct {
		url  string
		site string
		want string
	}{
		{"https://instagram.com/jan.novak?hl=cs", "instagram.com", "jan.novak"},
		{"https://www.linkedin.com/in/jan-novak", "linkedin.com", "in"},
		{"https://facebook.com/sharer/sharer.php", "facebook.com", ""},
		{"https://twitter.com/intent/tweet", "twitter.com", ""},
		// Trailing numeric IDs are trimmed.
		{"https://facebook.com/jan.novak-123456789", "facebook.com", "jan.novak"},
		{"https://example.com/whatever", "instagram.com", ""},
	}
	for _, tc := range tests {
		if got := Username(tc.url, tc.site); got != tc.want {
			t.Errorf("Username(%q, %q) = %q, want %q", tc.url, tc.site, got, tc.want)
		}
	}
}

func TestInstagramUsername(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://instagram.com/jan.novak", "jan.novak"},
		{"https://www.instagram.com/jan.novak/", "jan.novak"},
		{"https://instagram.com/explore", ""},
		{"https://facebook.com/jan.novak", ""},
	}
	for _, tc := range tests {
		if got := InstagramUsername(tc.url); got != tc.want {
			t.Errorf("InstagramUsername(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
