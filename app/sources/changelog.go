package sources

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"golang.org/x/sync/errgroup"
)

const (
	changelogTimeout     = 10 * time.Second
	changelogConcurrency = 4
)

// ChangelogAdapter scrapes vendor changelog pages with per-source CSS
// selector strategies from configuration.
type ChangelogAdapter struct {
	configs    []ChangelogConfig
	httpClient *http.Client
	userAgent  string
}

func NewChangelogAdapter(configs []ChangelogConfig, httpClient *http.Client, userAgent string) *ChangelogAdapter {
	return &ChangelogAdapter{
		configs:    configs,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (a *ChangelogAdapter) Name() string { return "changelog" }

func (a *ChangelogAdapter) Collect(ctx context.Context, windowHours int) []Item {
	minPublished := cutoff(windowHours)

	var mu sync.Mutex
	var items []Item

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(changelogConcurrency)

	for _, config := range a.configs {
		g.Go(func() error {
			sourceItems := a.collectSource(gctx, config, minPublished)
			mu.Lock()
			items = append(items, sourceItems...)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	slog.Debug("Changelog collection finished", "sources", len(a.configs), "items", len(items))
	return items
}

func (a *ChangelogAdapter) collectSource(ctx context.Context, config ChangelogConfig, minPublished time.Time) []Item {
	data, err := fetch(ctx, a.httpClient, config.URL, a.userAgent, changelogTimeout)
	if err != nil {
		slog.Warn("Failed to fetch changelog", "source", config.Name, "error", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to parse changelog HTML", "source", config.Name, "error", err)
		return nil
	}

	tier := ParseTier(config.Tier)
	base, _ := url.Parse(config.URL)

	var items []Item
	doc.Find(config.ItemSelector).Each(func(_ int, entry *goquery.Selection) {
		dateText := strings.TrimSpace(entry.Find(config.DateSelector).First().Text())
		published, err := time.Parse(config.DateFormat, dateText)
		if err != nil || published.Before(minPublished) {
			return
		}

		link := entry.Find(config.LinkSelector).First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" {
			title = strings.TrimSpace(entry.Find(config.DateSelector).First().NextFiltered("p, li, h3, h4").Text())
		}
		if title == "" {
			return
		}

		itemURL := config.URL
		if href != "" && base != nil {
			if resolved, err := base.Parse(href); err == nil {
				itemURL = resolved.String()
			}
		}

		items = append(items, Item{
			Title:        title,
			Link:         itemURL,
			PublishedAt:  published.UTC(),
			SourceDomain: Domain(itemURL),
			FeedTitle:    config.Name,
			Tier:         tier,
			Lang:         LangEn,
		})
	})

	return items
}
