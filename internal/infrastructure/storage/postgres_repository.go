package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NewsForge/internal/domain"
	"NewsForge/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
    id                     BIGSERIAL PRIMARY KEY,
    reference_url          TEXT NOT NULL UNIQUE,
    reference_name         TEXT NOT NULL,
    reference_published_at TIMESTAMPTZ NOT NULL,
    header                 TEXT NOT NULL,
    subheader              TEXT NOT NULL DEFAULT '',
    summary                TEXT NOT NULL,
    body                   TEXT NOT NULL,
    category               TEXT NOT NULL,
    created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_articles_category_published
    ON articles (category, reference_published_at DESC);`

var articleColumns = []string{
	"reference_url", "reference_name", "reference_published_at",
	"header", "subheader", "summary", "body", "category",
}

// PostgresRepository persists generated articles into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.ArticleRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the articles table and indexes when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Count returns the number of stored articles for a category.
func (r *PostgresRepository) Count(ctx context.Context, category domain.Category) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("articles").
		Where(sq.Eq{"category": string(category)}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// ExistingReferenceURLs loads the known reference URL set for a category.
func (r *PostgresRepository) ExistingReferenceURLs(ctx context.Context, category domain.Category) (map[string]struct{}, error) {
	query, args, err := psql.Select("reference_url").From("articles").
		Where(sq.Eq{"category": string(category)}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build urls query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reference urls: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan reference url: %w", err)
		}
		known[u] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return known, nil
}

// Save inserts articles one row at a time with ON CONFLICT DO NOTHING, so a
// duplicate reference_url skips that row without losing its siblings. It
// returns the number of rows actually inserted.
func (r *PostgresRepository) Save(ctx context.Context, articles []domain.Article) (int, error) {
	inserted := 0
	for _, a := range articles {
		query, args, err := psql.Insert("articles").
			Columns(articleColumns...).
			Values(a.ReferenceURL, a.ReferenceName, a.ReferencePublishedAt,
				a.Header, a.Subheader, a.Summary, a.Body, string(a.Category)).
			Suffix("ON CONFLICT (reference_url) DO NOTHING").
			ToSql()
		if err != nil {
			return inserted, fmt.Errorf("build insert: %w", err)
		}

		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert article %s: %w", a.ReferenceURL, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}

// RecentByCategory returns the newest stored articles for a category.
func (r *PostgresRepository) RecentByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.Article, error) {
	query, args, err := psql.Select(articleColumns...).From("articles").
		Where(sq.Eq{"category": string(category)}).
		OrderBy("reference_published_at DESC").
		Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent articles: %w", err)
	}
	defer rows.Close()

	var result []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// ByReferenceURL returns the single article stored under a reference URL.
func (r *PostgresRepository) ByReferenceURL(ctx context.Context, referenceURL string) (domain.Article, error) {
	query, args, err := psql.Select(articleColumns...).From("articles").
		Where(sq.Eq{"reference_url": referenceURL}).ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build lookup query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.Article{}, fmt.Errorf("query article: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Article{}, fmt.Errorf("rows iteration: %w", err)
		}
		return domain.Article{}, ports.ErrNotFound
	}
	return scanArticle(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var a domain.Article
	var category string
	err := row.Scan(&a.ReferenceURL, &a.ReferenceName, &a.ReferencePublishedAt,
		&a.Header, &a.Subheader, &a.Summary, &a.Body, &category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Article{}, ports.ErrNotFound
		}
		return domain.Article{}, fmt.Errorf("scan article: %w", err)
	}
	a.Category = domain.Category(category)
	return a, nil
}
