package rss

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/noveee/SinisterBot/internal/domain"
)

// Config holds fetcher configuration.
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// Fetcher pulls RSS/Atom documents and normalizes their items into entries.
// It is shared by all sources; per-source state lives in domain.Source.
type Fetcher struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

// New creates a feed fetcher.
func New(cfg Config, logger *slog.Logger) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: cfg.Timeout}
	if cfg.UserAgent != "" {
		parser.UserAgent = cfg.UserAgent
	}

	return &Fetcher{
		parser: parser,
		logger: logger.With("component", "rss"),
	}
}

// Fetch retrieves one source's feed and returns its normalized entries in feed
// order. A failure to fetch or parse the document fails the whole source; a
// single malformed item never does.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source) ([]domain.Entry, error) {
	feed, err := f.parser.ParseURLWithContext(src.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %q: %w", src.FeedURL, err)
	}

	entries := make([]domain.Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entries = append(entries, f.normalize(src, item))
	}

	f.logger.Debug("fetched feed",
		"source_id", src.ID,
		"entries", len(entries),
	)

	return entries, nil
}

func (f *Fetcher) normalize(src domain.Source, item *gofeed.Item) domain.Entry {
	entry := domain.Entry{
		GUID:        pickGUID(item),
		SourceID:    src.ID,
		Title:       item.Title,
		Link:        item.Link,
		Summary:     pickSummary(item),
		PublishedAt: pickPublished(item),
	}

	if src.IncludeAudio {
		entry.AudioURL = pickAudio(item)
	}

	return entry
}

// pickGUID derives the dedup key. gofeed folds the raw id/guid fields of both
// RSS and Atom into Item.GUID, so the fallback chain is GUID, else link. The
// result must be stable across repeated fetches of the same item.
func pickGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

// pickPublished returns nil when the feed supplied no parseable date; such
// entries are still announced, they are just exempt from retention purging.
func pickPublished(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		return &t
	}
	if item.UpdatedParsed != nil {
		t := item.UpdatedParsed.UTC()
		return &t
	}
	return nil
}

func pickSummary(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}

func pickAudio(item *gofeed.Item) *string {
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			url := enc.URL
			return &url
		}
	}
	return nil
}
