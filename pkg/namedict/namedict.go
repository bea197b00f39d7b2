// Package namedict provides diacritics-insensitive lookups of first names and
// surnames loaded from plain-text dictionary files.
//
// The first-name dictionary is read eagerly; surname dictionaries are split
// into one file per initial letter (surnamesA.txt .. surnamesZ.txt) and loaded
// on first use. Lookups are keyed by the folded (diacritics-stripped,
// lower-cased) form while the returned value keeps the original diacritics and
// casing from the file.
package namedict

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FirstNamesFile is the file name of the eager first-name dictionary.
const FirstNamesFile = "czech_names.txt"

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold strips diacritics and lower-cases a string. All dictionary keys and
// text comparisons in the pipeline go through this.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		// Transform only fails on malformed input; fall back to lowercasing.
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

// TitleCase upper-cases the first letter of every alphabetic run, like the
// title-casing used for dictionary misses ("novak" -> "Novak",
// "de-la-cruz" -> "De-La-Cruz").
func TitleCase(s string) string {
	prevLetter := false
	return strings.Map(func(r rune) rune {
		wasLetter := prevLetter
		prevLetter = unicode.IsLetter(r)
		if prevLetter && !wasLetter {
			return unicode.ToUpper(r)
		}
		return unicode.ToLower(r)
	}, s)
}

// Dictionary holds the first-name set and the per-letter surname sets.
//
// The surname cache is populated lazily and is not synchronized: the
// enrichment engine is strictly sequential, and any future parallel use must
// either pre-warm all letters or add locking here first.
type Dictionary struct {
	dir      string
	logger   *slog.Logger
	first    map[string]string
	surnames map[byte]map[string]string
}

// Option configures a Dictionary.
type Option func(*Dictionary)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dictionary) { d.logger = logger }
}

// Load creates a Dictionary backed by the dictionary files in dir.
// A missing or unreadable first-name file is logged and treated as empty;
// resolution then degrades to fallbacks instead of failing.
func Load(dir string, opts ...Option) *Dictionary {
	d := &Dictionary{
		dir:      dir,
		logger:   slog.Default(),
		surnames: make(map[byte]map[string]string),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.first = d.readSet(filepath.Join(dir, FirstNamesFile))
	return d
}

// FirstName looks up a candidate in the first-name dictionary.
// Returns the canonical display form and whether it was found.
func (d *Dictionary) FirstName(candidate string) (string, bool) {
	name, ok := d.first[Fold(candidate)]
	return name, ok
}

// Surname looks up a candidate in the surname dictionary keyed by the
// candidate's own first letter. Candidates whose folded form does not start
// with an ASCII letter cannot be keyed to a file and always miss.
func (d *Dictionary) Surname(candidate string) (string, bool) {
	folded := Fold(candidate)
	if folded == "" {
		return "", false
	}
	letter := folded[0]
	if letter < 'a' || letter > 'z' {
		return "", false
	}
	name, ok := d.surnameSet(letter - 'a' + 'A')[folded]
	return name, ok
}

// surnameSet returns the surname set for an upper-case letter, loading the
// backing file on first use. Sequential access only; see the type comment.
func (d *Dictionary) surnameSet(letter byte) map[string]string {
	if set, ok := d.surnames[letter]; ok {
		return set
	}
	set := d.readSet(filepath.Join(d.dir, "surnames"+string(letter)+".txt"))
	d.surnames[letter] = set
	return set
}

// readSet reads one name per line into a folded-key map. Missing files
// degrade to an empty set.
func (d *Dictionary) readSet(path string) map[string]string {
	set := make(map[string]string)

	f, err := os.Open(path)
	if err != nil {
		d.logger.Warn("dictionary file unavailable", "path", path, "error", err)
		return set
	}
	defer f.Close() //nolint:errcheck // read-only file

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		set[Fold(name)] = name
	}
	if err := scanner.Err(); err != nil {
		d.logger.Warn("dictionary file partially read", "path", path, "error", err)
	}

	d.logger.Debug("dictionary loaded", "path", path, "entries", len(set))
	return set
}
