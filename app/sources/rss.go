package sources

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"golang.org/x/sync/errgroup"
)

const (
	rssTimeout     = 10 * time.Second
	rssConcurrency = 8
)

// RSSAdapter collects items from the configured RSS/Atom feeds. Each feed
// carries its own tier and language from configuration.
type RSSAdapter struct {
	feeds      []FeedConfig
	httpClient *http.Client
	userAgent  string
}

func NewRSSAdapter(feeds []FeedConfig, httpClient *http.Client, userAgent string) *RSSAdapter {
	return &RSSAdapter{
		feeds:      feeds,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (a *RSSAdapter) Name() string { return "rss" }

func (a *RSSAdapter) Collect(ctx context.Context, windowHours int) []Item {
	minPublished := cutoff(windowHours)

	var mu sync.Mutex
	var items []Item

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rssConcurrency)

	for _, feedConfig := range a.feeds {
		g.Go(func() error {
			feedItems := a.collectFeed(gctx, feedConfig, minPublished)
			mu.Lock()
			items = append(items, feedItems...)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	slog.Debug("RSS collection finished", "feeds", len(a.feeds), "items", len(items))
	return items
}

func (a *RSSAdapter) collectFeed(ctx context.Context, feedConfig FeedConfig, minPublished time.Time) []Item {
	data, err := fetch(ctx, a.httpClient, feedConfig.URL, a.userAgent, rssTimeout)
	if err != nil {
		slog.Warn("Failed to fetch feed", "feed", feedConfig.Title, "url", feedConfig.URL, "error", err)
		return nil
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to parse feed", "feed", feedConfig.Title, "error", err)
		return nil
	}

	tier := ParseTier(feedConfig.Tier)
	lang := FeedLang(feedConfig.Lang)

	var items []Item
	for _, entry := range parsed.Items {
		published := entryPublishedAt(entry)
		if published == nil || published.Before(minPublished) {
			continue
		}
		if entry.Title == "" || entry.Link == "" {
			continue
		}

		items = append(items, Item{
			Title:        entry.Title,
			Link:         entry.Link,
			PublishedAt:  published.UTC(),
			Summary:      TruncateSummary(stripHTML(entry.Description)),
			SourceDomain: Domain(entry.Link),
			FeedTitle:    feedConfig.Title,
			Tier:         tier,
			Lang:         lang,
		})
	}

	return items
}

// entryPublishedAt prefers the published timestamp and falls back to
// updated, mirroring feeds that only emit one of pubDate/isoDate.
func entryPublishedAt(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed
	}
	return entry.UpdatedParsed
}
