// Package ingest loads article dumps and live feed pages into storage:
// read, normalize, embed, insert with link dedup.
package ingest

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Manifest maps source names to their input, either a CSV dump or a feed
// page. Exactly one input per source.
type Manifest struct {
	Sources []SourceConfig `yaml:"sources"`
}

type SourceConfig struct {
	Name string      `yaml:"name"`
	CSV  *CSVSource  `yaml:"csv,omitempty"`
	Feed *FeedSource `yaml:"feed,omitempty"`
}

type CSVSource struct {
	Path          string `yaml:"path"`
	TitleColumn   string `yaml:"title_column"`
	LinkColumn    string `yaml:"link_column"`
	DateColumn    string `yaml:"date_column"`
	ContentColumn string `yaml:"content_column"`
}

type FeedSource struct {
	URL      string `yaml:"url"`
	Selector string `yaml:"selector"`
}

func LoadManifest(r io.Reader) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	var m Manifest
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) Validate() error {
	if len(m.Sources) == 0 {
		return fmt.Errorf("manifest has no sources")
	}

	for i := range m.Sources {
		s := &m.Sources[i]
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if (s.CSV == nil) == (s.Feed == nil) {
			return fmt.Errorf("source %q: exactly one of csv or feed is required", s.Name)
		}

		if s.CSV != nil {
			if s.CSV.Path == "" {
				return fmt.Errorf("source %q: csv path is required", s.Name)
			}
			if s.CSV.ContentColumn == "" {
				return fmt.Errorf("source %q: csv content_column is required", s.Name)
			}
			if s.CSV.TitleColumn == "" {
				s.CSV.TitleColumn = "title"
			}
			if s.CSV.LinkColumn == "" {
				s.CSV.LinkColumn = "link"
			}
			if s.CSV.DateColumn == "" {
				s.CSV.DateColumn = "pub_date"
			}
		}

		if s.Feed != nil {
			if s.Feed.URL == "" {
				return fmt.Errorf("source %q: feed url is required", s.Name)
			}
			if s.Feed.Selector == "" {
				return fmt.Errorf("source %q: feed selector is required", s.Name)
			}
		}
	}

	return nil
}
