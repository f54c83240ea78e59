package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/mpavlovic/news-digest/internal/domain"
	"github.com/mpavlovic/news-digest/internal/storage"
)

type SummaryStore struct {
	db *pgxpool.Pool
}

func NewSummaryStore(pool *ConnectionPool) *SummaryStore {
	return &SummaryStore{db: pool.conn}
}

// SaveSummary inserts the summary and consumes its source articles in one
// transaction. If either side fails, nothing is persisted and no article is
// marked summarized.
func (s *SummaryStore) SaveSummary(ctx context.Context, summary domain.Summary, consume []uuid.UUID) (uuid.UUID, error) {
	if summary.ID == uuid.Nil {
		summary.ID = uuid.New()
	}
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}

	refsJSON, err := json.Marshal(summary.Refs)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal refs: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmd := `
		INSERT INTO summaries (id, title, tldr, summary, news_articles_ids, refs, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;
	`
	var id uuid.UUID
	err = tx.QueryRow(
		ctx,
		cmd,
		summary.ID,
		summary.Title,
		summary.TLDR,
		summary.Summary,
		summary.ArticleIDs,
		refsJSON,
		pgvector.NewVector(summary.Embedding),
		summary.CreatedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert summary: %w", err)
	}

	if len(consume) > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE news_articles
			SET summarized = true, claimed_at = NULL
			WHERE id = ANY($1);
		`, consume)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to mark articles summarized: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit summary: %w", err)
	}

	return id, nil
}

func (s *SummaryStore) GetSummary(ctx context.Context, id uuid.UUID) (*domain.Summary, error) {
	cmd := `
		SELECT id, title, tldr, summary, news_articles_ids, refs, created_at
		FROM summaries
		WHERE id = $1;
	`
	summary, err := scanSummary(s.db.QueryRow(ctx, cmd, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *SummaryStore) ListSummaries(ctx context.Context, opts storage.ListOptions) ([]domain.Summary, error) {
	q := psql.Select("id", "title", "tldr", "summary", "news_articles_ids", "refs", "created_at").
		From("summaries").
		OrderBy("created_at DESC", "id ASC").
		Offset(uint64(opts.Offset))
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	var summaries []domain.Summary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, rows.Err()
}

func (s *SummaryStore) CountSummaries(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM summaries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count summaries: %w", err)
	}
	return count, nil
}

func scanSummary(row pgx.Row) (*domain.Summary, error) {
	var summary domain.Summary
	var refsJSON []byte

	if err := row.Scan(
		&summary.ID,
		&summary.Title,
		&summary.TLDR,
		&summary.Summary,
		&summary.ArticleIDs,
		&refsJSON,
		&summary.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan summary: %w", err)
	}

	if err := json.Unmarshal(refsJSON, &summary.Refs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal refs: %w", err)
	}

	return &summary, nil
}
