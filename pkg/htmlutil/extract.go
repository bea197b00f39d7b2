// Package htmlutil provides HTML processing utilities for rendered pages.
package htmlutil

import (
	"html"
	"regexp"
	"strings"
)

// StripTags removes HTML tags and returns plain text.
func StripTags(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}
	content := tagPattern.ReplaceAllString(htmlContent, " ")
	content = html.UnescapeString(content)
	content = multiSpacePattern.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// Title extracts the title from HTML content.
func Title(htmlContent string) string {
	if matches := titlePattern.FindStringSubmatch(htmlContent); len(matches) > 1 {
		return strings.TrimSpace(html.UnescapeString(matches[1]))
	}
	if matches := ogTitlePattern.FindStringSubmatch(htmlContent); len(matches) > 1 {
		return strings.TrimSpace(html.UnescapeString(matches[1]))
	}
	return ""
}

// Description extracts the meta description from HTML content.
// Handles both name="description" and og:description, with either
// attribute order.
func Description(htmlContent string) string {
	for _, p := range descPatterns {
		if matches := p.FindStringSubmatch(htmlContent); len(matches) > 1 {
			return strings.TrimSpace(html.UnescapeString(matches[1]))
		}
	}
	return ""
}

// Headings extracts the text of h1-h3 elements in document order.
func Headings(htmlContent string) []string {
	var out []string
	for _, m := range headingPattern.FindAllStringSubmatch(htmlContent, -1) {
		if text := StripTags(m[1]); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// Paragraphs extracts the text of p elements in document order.
// Empty paragraphs are dropped.
func Paragraphs(htmlContent string) []string {
	var out []string
	for _, m := range paragraphPattern.FindAllStringSubmatch(htmlContent, -1) {
		if text := StripTags(m[1]); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// Links extracts anchor href values in document order, deduplicated.
// Fragment-only and javascript: hrefs are skipped.
func Links(htmlContent string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range hrefPattern.FindAllStringSubmatch(htmlContent, -1) {
		href := strings.TrimSpace(html.UnescapeString(m[1]))
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(href), "javascript:") {
			continue
		}
		if !seen[href] {
			seen[href] = true
			out = append(out, href)
		}
	}
	return out
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
	titlePattern      = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	ogTitlePattern    = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']+)["']`)

	descPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<meta[^>]+name=["']description["'][^>]+content=["']([^"']+)["']`),
		regexp.MustCompile(`(?i)<meta[^>]+content=["']([^"']+)["'][^>]+name=["']description["']`),
		regexp.MustCompile(`(?i)<meta[^>]+property=["']og:description["'][^>]+content=["']([^"']+)["']`),
	}

	headingPattern   = regexp.MustCompile(`(?is)<h[1-3][^>]*>(.*?)</h[1-3]>`)
	paragraphPattern = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	hrefPattern      = regexp.MustCompile(`(?i)<a[^>]+href=["']([^"']+)["']`)
)
