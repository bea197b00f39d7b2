// Package resolver infers a probable display name from the local part of an
// email address using the name dictionaries.
//
// Resolution never fails: when no dictionary heuristic matches, the local part
// is returned title-cased and the result is marked unresolved so the query
// planner can fall back to searching the raw address instead.
package resolver

import (
	"log/slog"
	"strings"

	"github.com/osintlab/mailtrace/pkg/namedict"
)

// dividers in fixed priority order. Only the first divider present in the
// local part is split on.
var dividers = []byte{'.', '_', '-'}

// Name is a resolved display name.
type Name struct {
	// Display is "First Last", "Initial. Surname" or the title-cased
	// fallback, diacritics preserved where the dictionaries know them.
	Display string
	// Resolved is false when only the title-case fallback applied.
	Resolved bool
}

// Resolver infers names from email local parts.
type Resolver struct {
	dict   *namedict.Dictionary
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// New creates a Resolver backed by the given dictionary.
func New(dict *namedict.Dictionary, opts ...Option) *Resolver {
	r := &Resolver{dict: dict, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve infers a display name from an email address.
func (r *Resolver) Resolve(email string) Name {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}

	// Keep only lowercase ASCII letters and the divider characters.
	// Uppercase letters are stripped along with punctuation; this mirrors
	// the long-observed behavior of the original sanitizer and is kept
	// deliberately (see DESIGN.md).
	local = sanitize(local)

	for _, div := range dividers {
		idx := strings.IndexByte(local, div)
		if idx < 0 {
			continue
		}
		if name, ok := r.fromPair(local[:idx], local[idx+1:]); ok {
			r.logger.Debug("name resolved from divider split", "local", local, "divider", string(div), "name", name)
			return Name{Display: name, Resolved: true}
		}
	}

	if name, ok := r.fromWhole(local); ok {
		r.logger.Debug("name resolved from undivided local part", "local", local, "name", name)
		return Name{Display: name, Resolved: true}
	}

	r.logger.Debug("name not resolved, using title-case fallback", "local", local)
	return Name{Display: namedict.TitleCase(local), Resolved: false}
}

func sanitize(local string) string {
	var b strings.Builder
	b.Grow(len(local))
	for i := range len(local) {
		c := local[i]
		if (c >= 'a' && c <= 'z') || c == '.' || c == '-' || c == '_' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// fromPair tries the divider-split heuristics in fixed priority order:
// first+surname (A), surname+first (B), first-only in either position (C, D),
// then the single-letter initial form.
func (r *Resolver) fromPair(c1, c2 string) (string, bool) {
	// A: c1 is a first name, c2 resolves as a surname or falls back to
	// title case.
	if first, ok := r.dict.FirstName(c1); ok && c2 != "" {
		return first + " " + r.surnameOrTitle(c2), true
	}

	// B: mirrored, c2 is the first name.
	if first, ok := r.dict.FirstName(c2); ok && c1 != "" {
		return first + " " + r.surnameOrTitle(c1), true
	}

	// C, D: only one candidate resolves and the other is empty; A/B above
	// already consumed the non-empty cases.
	if first, ok := r.dict.FirstName(c1); ok {
		return first + " " + namedict.TitleCase(c2), true
	}
	if first, ok := r.dict.FirstName(c2); ok {
		return first + " " + namedict.TitleCase(c1), true
	}

	// Initial form: a single-letter candidate is an abbreviated first name,
	// the other candidate is the surname.
	if len(c1) == 1 && c2 != "" {
		return strings.ToUpper(c1) + ". " + r.surnameOrTitle(c2), true
	}
	if len(c2) == 1 && c1 != "" {
		return strings.ToUpper(c2) + ". " + r.surnameOrTitle(c1), true
	}

	return "", false
}

// fromWhole handles local parts without a usable divider.
func (r *Resolver) fromWhole(local string) (string, bool) {
	if local == "" {
		return "", false
	}

	// A bare first name stands alone.
	if first, ok := r.dict.FirstName(local); ok {
		return first, true
	}

	// Scan split points, longest first segment first. Either half may be
	// the first name; the other half resolves as a surname.
	for i := len(local) - 1; i >= 1; i-- {
		prefix, suffix := local[:i], local[i:]
		if first, ok := r.dict.FirstName(prefix); ok {
			return first + " " + r.surnameOrTitle(suffix), true
		}
		if first, ok := r.dict.FirstName(suffix); ok {
			return first + " " + r.surnameOrTitle(prefix), true
		}
	}

	// Trim exactly one character off the back, then off the front: the
	// trimmed character becomes an initial when the remainder is a known
	// surname, or a surname initial when the remainder is a first name.
	if len(local) >= 2 {
		head, last := local[:len(local)-1], local[len(local)-1:]
		if surname, ok := r.dict.Surname(head); ok {
			return strings.ToUpper(last) + ". " + surname, true
		}
		if first, ok := r.dict.FirstName(head); ok {
			return first + " " + strings.ToUpper(last) + ".", true
		}

		lead, tail := local[:1], local[1:]
		if surname, ok := r.dict.Surname(tail); ok {
			return strings.ToUpper(lead) + ". " + surname, true
		}
		if first, ok := r.dict.FirstName(tail); ok {
			return first + " " + strings.ToUpper(lead) + ".", true
		}
	}

	return "", false
}

func (r *Resolver) surnameOrTitle(candidate string) string {
	if surname, ok := r.dict.Surname(candidate); ok {
		return surname
	}
	return namedict.TitleCase(candidate)
}
