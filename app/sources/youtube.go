package sources

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
	"unicode"

	"github.com/mmcdole/gofeed"

	"golang.org/x/sync/errgroup"
)

const (
	youtubeFeedBase    = "https://www.youtube.com/feeds/videos.xml?channel_id="
	youtubeTimeout     = 8 * time.Second
	youtubeConcurrency = 4
)

// YouTubeAdapter reads the Atom feed of each tracked channel. The item
// language is guessed from Hangul codepoints in the channel name.
type YouTubeAdapter struct {
	channels   []ChannelConfig
	httpClient *http.Client
	userAgent  string
}

func NewYouTubeAdapter(channels []ChannelConfig, httpClient *http.Client, userAgent string) *YouTubeAdapter {
	return &YouTubeAdapter{
		channels:   channels,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (a *YouTubeAdapter) Name() string { return "youtube" }

func (a *YouTubeAdapter) Collect(ctx context.Context, windowHours int) []Item {
	minPublished := cutoff(windowHours)

	var mu sync.Mutex
	var items []Item

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(youtubeConcurrency)

	for _, channel := range a.channels {
		g.Go(func() error {
			channelItems := a.collectChannel(gctx, channel, minPublished)
			mu.Lock()
			items = append(items, channelItems...)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	slog.Debug("YouTube collection finished", "channels", len(a.channels), "items", len(items))
	return items
}

func (a *YouTubeAdapter) collectChannel(ctx context.Context, channel ChannelConfig, minPublished time.Time) []Item {
	data, err := fetch(ctx, a.httpClient, youtubeFeedBase+channel.ID, a.userAgent, youtubeTimeout)
	if err != nil {
		slog.Warn("Failed to fetch channel feed", "channel", channel.Name, "error", err)
		return nil
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to parse channel feed", "channel", channel.Name, "error", err)
		return nil
	}

	lang := LangEn
	if ContainsHangul(channel.Name) {
		lang = LangKo
	}

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
			SourceDomain: "youtube.com",
			FeedTitle:    channel.Name,
			Tier:         TierP1Context,
			Lang:         lang,
		})
	}

	return items
}

// ContainsHangul reports whether s carries at least one Hangul codepoint.
func ContainsHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}
