// Package store persists enrichment results keyed by email address.
package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrNotFound is returned when no record exists for an email.
var ErrNotFound = errors.New("record not found")

// Record is one tracked email address and what has been learned about it.
type Record struct {
	ID          int64
	Email       string
	Domain      string
	Token       string
	SocialMedia *string
	School      *string
	Sports      *string
	Other       *string
}

// Enriched reports whether any content field has been filled. Records
// that are already enriched are skipped on batch runs.
func (r *Record) Enriched() bool {
	return r.SocialMedia != nil || r.School != nil || r.Sports != nil || r.Other != nil
}

// Update carries new content for a record. A nil field never overwrites
// a stored value.
type Update struct {
	SocialMedia *string
	School      *string
	Sports      *string
	Other       *string
}

// Store is the record persistence interface.
type Store interface {
	// Get returns the record for an email, or ErrNotFound.
	Get(ctx context.Context, email string) (*Record, error)
	// Upsert inserts the email if unseen and merges the update into
	// its record. Existing values survive nil update fields.
	Upsert(ctx context.Context, email string, u Update) error
	// Pending returns records with no content yet, oldest first.
	Pending(ctx context.Context) ([]Record, error)
	// Close releases the underlying resources.
	Close()
}

// newToken returns a random identifier assigned to a record on first
// insert. It ties later campaign interactions back to the record.
func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("read random token: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// domainOf extracts the domain part of an email address, stored
// alongside the record on first insert.
func domainOf(email string) string {
	if _, domain, ok := strings.Cut(email, "@"); ok {
		return domain
	}
	return ""
}
