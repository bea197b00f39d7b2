// Package aggregate groups analyzed pages into content buckets and
// renders them into storable summaries.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/osintlab/mailtrace/pkg/analyze"
)

// Finding is one verified page attributed to a person.
type Finding struct {
	URL         string
	Title       string
	Description string
	Confidence  float64
}

// Buckets holds findings grouped by content category.
type Buckets struct {
	SocialMedia []Finding
	School      []Finding
	Sports      []Finding
	Other       []Finding
}

// Add places a finding into the bucket for label. Unknown labels land
// in Other.
func (b *Buckets) Add(label string, f Finding) {
	switch label {
	case analyze.LabelSocialMedia:
		b.SocialMedia = append(b.SocialMedia, f)
	case analyze.LabelSchool:
		b.School = append(b.School, f)
	case analyze.LabelSports:
		b.Sports = append(b.Sports, f)
	default:
		b.Other = append(b.Other, f)
	}
}

// Empty reports whether no bucket holds any finding.
func (b *Buckets) Empty() bool {
	return len(b.SocialMedia) == 0 && len(b.School) == 0 &&
		len(b.Sports) == 0 && len(b.Other) == 0
}

// Summary carries one text blob per category. A nil field means the
// category had no findings, which lets the store keep any previously
// saved value.
type Summary struct {
	SocialMedia *string
	School      *string
	Sports      *string
	Other       *string
}

// Summarize renders each bucket into its summary field.
func (b *Buckets) Summarize() Summary {
	return Summary{
		SocialMedia: joinFindings(b.SocialMedia),
		School:      joinFindings(b.School),
		Sports:      joinFindings(b.Sports),
		Other:       joinFindings(b.Other),
	}
}

// joinFindings renders findings one per line, nil when there are none.
func joinFindings(findings []Finding) *string {
	if len(findings) == 0 {
		return nil
	}
	lines := make([]string, 0, len(findings))
	for _, f := range findings {
		lines = append(lines, f.line())
	}
	s := strings.Join(lines, "\n")
	return &s
}

func (f Finding) line() string {
	var sb strings.Builder
	sb.WriteString(f.URL)
	if f.Title != "" {
		sb.WriteString(" | ")
		sb.WriteString(f.Title)
	}
	if f.Description != "" {
		sb.WriteString(" | ")
		sb.WriteString(f.Description)
	}
	fmt.Fprintf(&sb, " (%.2f)", f.Confidence)
	return sb.String()
}
