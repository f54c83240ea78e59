package ingest

import (
	"strings"
	"time"

	"github.com/mpavlovic/news-digest/internal/domain"
)

// RawRecord is one article before normalization, all fields still strings.
type RawRecord struct {
	Source  string
	Title   string
	Link    string
	PubDate string
	Content string
}

// pubDateLayouts are tried in order; anything else falls back to the
// ingestion timestamp.
var pubDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize turns a raw record into an article. An unparseable or missing
// publication date takes the given fallback, typically the ingestion time.
func Normalize(raw RawRecord, fallback time.Time) domain.Article {
	return domain.Article{
		Source:  strings.TrimSpace(raw.Source),
		Title:   strings.TrimSpace(raw.Title),
		Link:    strings.TrimSpace(raw.Link),
		PubDate: parsePubDate(raw.PubDate, fallback),
		Content: strings.TrimSpace(raw.Content),
	}
}

func parsePubDate(raw string, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	for _, layout := range pubDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return fallback
}
