package store

import (
	"context"
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestMemoryUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "jan.novak@firma.cz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}

	if err := m.Upsert(ctx, "jan.novak@firma.cz", Update{Sports: strPtr("fk slavoj")}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	r, err := m.Get(ctx, "jan.novak@firma.cz")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if r.Token == "" {
		t.Error("record should get a token on insert")
	}
	if r.Domain != "firma.cz" {
		t.Errorf("Domain = %q, want firma.cz", r.Domain)
	}
	if r.Sports == nil || *r.Sports != "fk slavoj" {
		t.Errorf("Sports = %v, want fk slavoj", r.Sports)
	}
	if !r.Enriched() {
		t.Error("record with sports content should be enriched")
	}
}

func TestMemoryNilNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Upsert(ctx, "a@b.cz", Update{School: strPtr("gymnázium")}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if err := m.Upsert(ctx, "a@b.cz", Update{Other: strPtr("blog")}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	r, err := m.Get(ctx, "a@b.cz")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if r.School == nil || *r.School != "gymnázium" {
		t.Errorf("School = %v, want gymnázium", r.School)
	}
	if r.Other == nil || *r.Other != "blog" {
		t.Errorf("Other = %v, want blog", r.Other)
	}
}

func TestMemoryTokenStableAcrossUpserts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Upsert(ctx, "a@b.cz", Update{}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	first, err := m.Get(ctx, "a@b.cz")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	if err := m.Upsert(ctx, "a@b.cz", Update{Sports: strPtr("x")}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	second, err := m.Get(ctx, "a@b.cz")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if first.Token != second.Token {
		t.Error("token must not change on repeated upserts")
	}
}

func TestMemoryPending(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Upsert(ctx, "empty@b.cz", Update{}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if err := m.Upsert(ctx, "full@b.cz", Update{Sports: strPtr("x")}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if err := m.Upsert(ctx, "later@b.cz", Update{}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending() failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("len(pending) = %d, want 2", len(pending))
	}
	if pending[0].Email != "empty@b.cz" || pending[1].Email != "later@b.cz" {
		t.Errorf("pending order = %s, %s", pending[0].Email, pending[1].Email)
	}
}
