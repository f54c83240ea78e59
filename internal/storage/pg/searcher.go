package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/mpavlovic/news-digest/internal/domain"
	"github.com/mpavlovic/news-digest/internal/storage"
)

// Searcher is the pgvector-backed similarity primitive. Ranking and limiting
// run fully inside one SQL statement: ascending cosine distance with
// ascending id as the tie-break, never truncated before ordering.
type Searcher struct {
	db *pgxpool.Pool
}

func NewSearcher(pool *ConnectionPool) *Searcher {
	return &Searcher{db: pool.conn}
}

func (s *Searcher) NearestArticles(ctx context.Context, q storage.NearestQuery) ([]domain.ArticleMatch, error) {
	args := []any{pgvector.NewVector(q.Vector)}

	var where []string
	if q.Source != "" {
		args = append(args, q.Source)
		where = append(where, fmt.Sprintf("source = $%d", len(args)))
	}
	if q.ExcludeSource != "" {
		args = append(args, q.ExcludeSource)
		where = append(where, fmt.Sprintf("source <> $%d", len(args)))
	}
	if q.UnconsumedOnly {
		where = append(where, "summarized = false AND claimed_at IS NULL")
	}
	if len(q.ExcludeIDs) > 0 {
		args = append(args, q.ExcludeIDs)
		where = append(where, fmt.Sprintf("NOT (id = ANY($%d))", len(args)))
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT id, source, title, link, pub_date, content, summarized,
		       embedding <=> $1 AS distance
		FROM news_articles
	`)
	if len(where) > 0 {
		sb.WriteString("WHERE " + strings.Join(where, " AND ") + "\n")
	}
	sb.WriteString("ORDER BY embedding <=> $1, id\n")
	if q.K != nil {
		args = append(args, *q.K)
		sb.WriteString(fmt.Sprintf("LIMIT $%d", len(args)))
	}

	rows, err := s.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute similarity query: %w", err)
	}
	defer rows.Close()

	var matches []domain.ArticleMatch
	for rows.Next() {
		var m domain.ArticleMatch
		var distance float64
		if err := rows.Scan(&m.ID, &m.Source, &m.Title, &m.Link, &m.PubDate, &m.Content, &m.Summarized, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan similarity hit: %w", err)
		}
		m.Similarity = float32(1 - distance)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Searcher) NearestSummaries(ctx context.Context, vector []float32, k int) ([]domain.SummaryMatch, error) {
	cmd := `
		SELECT id, title, tldr, summary, news_articles_ids, refs, created_at,
		       embedding <=> $1 AS distance
		FROM summaries
		ORDER BY embedding <=> $1, id
		LIMIT $2;
	`
	rows, err := s.db.Query(ctx, cmd, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("failed to execute summary similarity query: %w", err)
	}
	defer rows.Close()

	var matches []domain.SummaryMatch
	for rows.Next() {
		var m domain.SummaryMatch
		var refsJSON []byte
		var distance float64
		if err := rows.Scan(
			&m.ID,
			&m.Title,
			&m.TLDR,
			&m.Summary.Summary,
			&m.ArticleIDs,
			&refsJSON,
			&m.CreatedAt,
			&distance,
		); err != nil {
			return nil, fmt.Errorf("failed to scan summary hit: %w", err)
		}
		if err := json.Unmarshal(refsJSON, &m.Refs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal refs: %w", err)
		}
		m.Similarity = float32(1 - distance)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
