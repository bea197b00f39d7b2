// Package analyze classifies rendered pages into content categories.
//
// Classification is model-first: the zero-shot classifier picks among
// the candidate labels, and only when its confidence is low does a
// small ordered rule table override the result. Social profile links
// are collected from every page regardless of its category.
package analyze

import (
	"context"
	"log/slog"
	"strings"

	"github.com/osintlab/mailtrace/pkg/classify"
	"github.com/osintlab/mailtrace/pkg/render"
	"github.com/osintlab/mailtrace/pkg/social"
)

// Content category labels.
const (
	LabelSports      = "sports"
	LabelSchool      = "school"
	LabelSocialMedia = "social media"
	LabelOther       = "other"
)

// Labels returns the candidate labels in classifier order.
func Labels() []string {
	return []string{LabelSports, LabelSchool, LabelSocialMedia, LabelOther}
}

// maxClassifyWords bounds the text sent to the classifier. Full text is
// still kept for name verification.
const maxClassifyWords = 300

// confidenceThreshold is the score below which the rule table may
// override the model.
const confidenceThreshold = 0.5

// Default keyword lists for the low-confidence rules, Czech and English
// mixed because Czech pages often carry English sports terms.
var (
	defaultSportsKeywords = []string{
		"sport", "rowing", "basketball", "football", "tennis",
		"veslování", "basketbal", "fotbal", "tenis", "házená", "volejbal",
		"turnaj", "pohár", "mistrovství", "championship", "cup", "tournament",
	}
	defaultSchoolKeywords = []string{
		"university", "school", "college", "gymnázium", "škola", "institut",
	}
)

// Analysis is the outcome for one rendered page.
type Analysis struct {
	URL         string
	Label       string
	Confidence  float64
	Text        string
	SocialLinks []string
}

// Analyzer classifies pages.
type Analyzer struct {
	classifier     classify.Classifier
	matcher        *social.Matcher
	logger         *slog.Logger
	sportsKeywords []string
	schoolKeywords []string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// WithMatcher overrides the social domain matcher.
func WithMatcher(m *social.Matcher) Option {
	return func(a *Analyzer) { a.matcher = m }
}

// WithSportsKeywords overrides the sports rule keywords.
func WithSportsKeywords(words []string) Option {
	return func(a *Analyzer) { a.sportsKeywords = words }
}

// WithSchoolKeywords overrides the school rule keywords.
func WithSchoolKeywords(words []string) Option {
	return func(a *Analyzer) { a.schoolKeywords = words }
}

// New creates an Analyzer backed by the given classifier.
func New(classifier classify.Classifier, opts ...Option) *Analyzer {
	a := &Analyzer{
		classifier:     classifier,
		matcher:        social.NewMatcher(),
		logger:         slog.Default(),
		sportsKeywords: defaultSportsKeywords,
		schoolKeywords: defaultSchoolKeywords,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze classifies one rendered page.
func (a *Analyzer) Analyze(ctx context.Context, page *render.Page) (*Analysis, error) {
	text := page.FullText()
	analysis := &Analysis{
		URL:         page.URL,
		Label:       LabelOther,
		Text:        text,
		SocialLinks: a.collectSocialLinks(page.Links),
	}

	excerpt := truncateWords(text, maxClassifyWords)
	if excerpt == "" {
		a.logger.DebugContext(ctx, "page has no text, skipping classification", "url", page.URL)
		// The URL rule still applies: a social-platform page that
		// renders to nothing is still a social-media hit.
		if label, score, rule := a.applyRules(page.URL, ""); rule != "" {
			analysis.Label = label
			analysis.Confidence = score
		}
		return analysis, nil
	}

	result, err := a.classifier.Classify(ctx, excerpt, Labels())
	if err != nil {
		return nil, err
	}
	analysis.Label = result.Label
	analysis.Confidence = result.Score

	if result.Score < confidenceThreshold {
		if label, score, rule := a.applyRules(page.URL, excerpt); rule != "" {
			a.logger.DebugContext(ctx, "low confidence, rule override",
				"url", page.URL, "model_label", result.Label, "model_score", result.Score,
				"rule", rule, "label", label)
			analysis.Label = label
			analysis.Confidence = score
		}
	}

	return analysis, nil
}

// applyRules runs the ordered low-confidence rules. The first match
// wins; no match returns an empty rule name.
func (a *Analyzer) applyRules(url, excerpt string) (label string, score float64, rule string) {
	lower := strings.ToLower(excerpt)
	switch {
	case a.matcher.MatchURL(url):
		return LabelSocialMedia, 0.9, "social-domain"
	case containsAny(lower, a.schoolKeywords):
		return LabelSchool, 0.7, "school-keywords"
	case containsAny(lower, a.sportsKeywords):
		return LabelSports, 0.7, "sports-keywords"
	default:
		return "", 0, ""
	}
}

func (a *Analyzer) collectSocialLinks(links []string) []string {
	var out []string
	for _, link := range links {
		if a.matcher.MatchURL(link) {
			out = append(out, link)
		}
	}
	return out
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func truncateWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
