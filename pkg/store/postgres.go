package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_data (
	id BIGSERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	domain TEXT NOT NULL DEFAULT '',
	token TEXT NOT NULL,
	social_media TEXT,
	school TEXT,
	sports TEXT,
	other TEXT
);`

// Postgres is a Store backed by a PostgreSQL user_data table.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) PostgresOption {
	return func(p *Postgres) { p.logger = logger }
}

// NewPostgres connects to the database and ensures the schema exists.
func NewPostgres(ctx context.Context, dsn string, opts ...PostgresOption) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	p := &Postgres{pool: pool, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Get returns the record for an email, or ErrNotFound.
func (p *Postgres) Get(ctx context.Context, email string) (*Record, error) {
	var r Record
	err := p.pool.QueryRow(ctx, `
		SELECT id, email, domain, token, social_media, school, sports, other
		FROM user_data
		WHERE email = $1
	`, email).Scan(&r.ID, &r.Email, &r.Domain, &r.Token, &r.SocialMedia, &r.School, &r.Sports, &r.Other)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &r, nil
}

// Upsert inserts or merges a record. COALESCE keeps any stored value
// when the corresponding update field is nil, and the token assigned on
// first insert is never replaced.
func (p *Postgres) Upsert(ctx context.Context, email string, u Update) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO user_data (email, domain, token, social_media, school, sports, other)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email)
		DO UPDATE SET
			social_media = COALESCE(EXCLUDED.social_media, user_data.social_media),
			school = COALESCE(EXCLUDED.school, user_data.school),
			sports = COALESCE(EXCLUDED.sports, user_data.sports),
			other = COALESCE(EXCLUDED.other, user_data.other)
	`, email, domainOf(email), newToken(), u.SocialMedia, u.School, u.Sports, u.Other)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}

	p.logger.DebugContext(ctx, "record upserted", "email", email)
	return nil
}

// Pending returns records with no content yet, oldest first.
func (p *Postgres) Pending(ctx context.Context) ([]Record, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, email, domain, token, social_media, school, sports, other
		FROM user_data
		WHERE social_media IS NULL AND school IS NULL AND sports IS NULL AND other IS NULL
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list pending records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Email, &r.Domain, &r.Token, &r.SocialMedia, &r.School, &r.Sports, &r.Other); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
