package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Collector pulls raw records from a live source. One implementation per
// source shape, no shared state between them.
type Collector interface {
	FetchAndNormalize(ctx context.Context) ([]RawRecord, error)
}

// FeedCollector scrapes a listing page: every node matching the selector is
// one article teaser whose first anchor carries the link and title.
type FeedCollector struct {
	source   string
	url      string
	selector string
	http     *http.Client
}

type FeedOption func(*FeedCollector)

func WithFeedHttpClient(httpClient *http.Client) FeedOption {
	return func(c *FeedCollector) {
		c.http = httpClient
	}
}

func NewFeedCollector(source string, cfg FeedSource, opts ...FeedOption) *FeedCollector {
	c := &FeedCollector{
		source:   source,
		url:      cfg.URL,
		selector: cfg.Selector,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FeedCollector) FetchAndNormalize(ctx context.Context) ([]RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("new feed request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: unexpected status %s", c.url, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed page: %w", err)
	}

	base, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}

	var records []RawRecord
	doc.Find(c.selector).Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("a").First()
		href, ok := anchor.Attr("href")
		if !ok || href == "" {
			return
		}

		link, err := base.Parse(href)
		if err != nil {
			return
		}

		title := strings.TrimSpace(anchor.Text())
		if title == "" {
			return
		}

		records = append(records, RawRecord{
			Source:  c.source,
			Title:   title,
			Link:    link.String(),
			Content: strings.TrimSpace(s.Text()),
		})
	})

	return records, nil
}
