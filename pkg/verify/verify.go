// Package verify checks whether a page actually mentions the person
// it was retrieved for.
package verify

import (
	"strings"

	"github.com/osintlab/mailtrace/pkg/namedict"
)

// ContainsName reports whether text mentions name, ignoring case and
// diacritics on both sides. An empty name never matches.
func ContainsName(text, name string) bool {
	folded := namedict.Fold(name)
	if folded == "" {
		return false
	}
	return strings.Contains(namedict.Fold(text), folded)
}
