// Package dto holds the wire representations served by the HTTP API. The
// field names are a stable contract; domain structs never hit the wire
// directly.
package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/mpavlovic/news-digest/internal/domain"
)

type Article struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	PubDate    time.Time `json:"pub_date"`
	Content    string    `json:"content"`
	Summarized bool      `json:"summarized"`
}

// ArticleMatch is a search hit. It intentionally omits the summarized flag.
type ArticleMatch struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	PubDate    time.Time `json:"pub_date"`
	Content    string    `json:"content"`
	Similarity float32   `json:"similarity"`
}

type SearchResponse struct {
	Query    string         `json:"query"`
	Articles []ArticleMatch `json:"articles"`
}

type ArticleList struct {
	Total    int64     `json:"total"`
	Offset   int       `json:"offset"`
	Limit    int       `json:"limit"`
	Articles []Article `json:"articles"`
}

func FromArticle(a domain.Article) Article {
	return Article{
		ID:         a.ID,
		Source:     a.Source,
		Title:      a.Title,
		Link:       a.Link,
		PubDate:    a.PubDate,
		Content:    a.Content,
		Summarized: a.Summarized,
	}
}

func FromArticles(articles []domain.Article) []Article {
	out := make([]Article, len(articles))
	for i, a := range articles {
		out[i] = FromArticle(a)
	}
	return out
}

func FromArticleMatch(m domain.ArticleMatch) ArticleMatch {
	return ArticleMatch{
		ID:         m.ID,
		Source:     m.Source,
		Title:      m.Title,
		Link:       m.Link,
		PubDate:    m.PubDate,
		Content:    m.Content,
		Similarity: m.Similarity,
	}
}

func FromArticleMatches(matches []domain.ArticleMatch) []ArticleMatch {
	out := make([]ArticleMatch, len(matches))
	for i, m := range matches {
		out[i] = FromArticleMatch(m)
	}
	return out
}
