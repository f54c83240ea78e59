package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/mpavlovic/news-digest/internal/domain"
	"github.com/mpavlovic/news-digest/internal/storage"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type ArticleStore struct {
	db *pgxpool.Pool
}

func NewArticleStore(pool *ConnectionPool) *ArticleStore {
	return &ArticleStore{db: pool.conn}
}

func (s *ArticleStore) InsertArticle(ctx context.Context, article domain.Article) (uuid.UUID, bool, error) {
	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	if article.PubDate.IsZero() {
		article.PubDate = time.Now().UTC()
	}

	cmd := `
		INSERT INTO news_articles (id, source, title, link, pub_date, content, embedding, summarized)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false)
		ON CONFLICT (link) DO NOTHING
		RETURNING id;
	`
	var id uuid.UUID
	err := s.db.QueryRow(
		ctx,
		cmd,
		article.ID,
		article.Source,
		article.Title,
		article.Link,
		article.PubDate,
		article.Content,
		pgvector.NewVector(article.Embedding),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Duplicate link, no-op insert. Hand back the existing id.
		var existing uuid.UUID
		if err := s.db.QueryRow(ctx, `SELECT id FROM news_articles WHERE link = $1`, article.Link).Scan(&existing); err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to resolve duplicate link: %w", err)
		}
		return existing, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to insert article: %w", err)
	}

	return id, true, nil
}

func (s *ArticleStore) GetArticle(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	cmd := `
		SELECT id, source, title, link, pub_date, content, embedding, summarized
		FROM news_articles
		WHERE id = $1;
	`
	article, err := scanArticleWithEmbedding(s.db.QueryRow(ctx, cmd, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

func (s *ArticleStore) ListArticles(ctx context.Context, filter storage.ArticleFilter, opts storage.ListOptions) ([]domain.Article, error) {
	q := psql.Select("id", "source", "title", "link", "pub_date", "content", "summarized").
		From("news_articles").
		OrderBy("pub_date DESC", "id ASC").
		Offset(uint64(opts.Offset))
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}
	q = applyArticleFilter(q, filter)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.ID, &a.Source, &a.Title, &a.Link, &a.PubDate, &a.Content, &a.Summarized); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (s *ArticleStore) CountArticles(ctx context.Context, filter storage.ArticleFilter) (int64, error) {
	q := applyArticleFilter(psql.Select("COUNT(*)").From("news_articles"), filter)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int64
	if err := s.db.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func applyArticleFilter(q sq.SelectBuilder, filter storage.ArticleFilter) sq.SelectBuilder {
	if filter.Source != "" {
		q = q.Where(sq.Eq{"source": filter.Source})
	}
	if filter.Summarized != nil {
		q = q.Where(sq.Eq{"summarized": *filter.Summarized})
	}
	return q
}

func (s *ArticleStore) RandomUnconsumed(ctx context.Context) (*domain.Article, error) {
	cmd := `
		SELECT id, source, title, link, pub_date, content, embedding, summarized
		FROM news_articles
		WHERE summarized = false AND claimed_at IS NULL
		ORDER BY random()
		LIMIT 1;
	`
	article, err := scanArticleWithEmbedding(s.db.QueryRow(ctx, cmd))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

func (s *ArticleStore) ClaimArticles(ctx context.Context, ids []uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin claim: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE news_articles
		SET claimed_at = now()
		WHERE id = ANY($1) AND summarized = false AND claimed_at IS NULL;
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to claim articles: %w", err)
	}

	if tag.RowsAffected() != int64(len(ids)) {
		// Partial claim means a concurrent flow holds some of these; the
		// rollback undoes what this one touched.
		return storage.ErrClaimConflict
	}

	return tx.Commit(ctx)
}

func (s *ArticleStore) ReleaseArticles(ctx context.Context, ids []uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
		UPDATE news_articles
		SET claimed_at = NULL
		WHERE id = ANY($1) AND summarized = false;
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to release articles: %w", err)
	}
	return nil
}

func scanArticleWithEmbedding(row pgx.Row) (*domain.Article, error) {
	var a domain.Article
	var vec pgvector.Vector

	if err := row.Scan(&a.ID, &a.Source, &a.Title, &a.Link, &a.PubDate, &a.Content, &vec, &a.Summarized); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}

	a.Embedding = vec.Slice()
	return &a, nil
}
