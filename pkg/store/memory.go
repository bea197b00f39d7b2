package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Store with the same merge semantics as
// Postgres. It backs dry runs and tests.
type Memory struct {
	mu      sync.Mutex
	records map[string]*Record
	nextID  int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*Record), nextID: 1}
}

// Get returns the record for an email, or ErrNotFound.
func (m *Memory) Get(_ context.Context, email string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, email)
	}
	cp := *r
	return &cp, nil
}

// Upsert inserts or merges a record. Nil update fields keep stored
// values, mirroring the Postgres COALESCE merge.
func (m *Memory) Upsert(_ context.Context, email string, u Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[email]
	if !ok {
		r = &Record{ID: m.nextID, Email: email, Domain: domainOf(email), Token: newToken()}
		m.nextID++
		m.records[email] = r
	}

	if u.SocialMedia != nil {
		r.SocialMedia = u.SocialMedia
	}
	if u.School != nil {
		r.School = u.School
	}
	if u.Sports != nil {
		r.Sports = u.Sports
	}
	if u.Other != nil {
		r.Other = u.Other
	}
	return nil
}

// Pending returns records with no content yet, oldest first.
func (m *Memory) Pending(_ context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var records []Record
	for _, r := range m.records {
		if !r.Enriched() {
			records = append(records, *r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// Close is a no-op for the in-memory store.
func (*Memory) Close() {}
