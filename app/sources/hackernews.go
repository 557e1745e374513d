package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	hnEndpoint = "https://hn.algolia.com/api/v1/search_by_date"
	hnQuery    = "AI"
	hnTimeout  = 8 * time.Second
	hnPageSize = 50
)

// HackerNewsAdapter queries the Algolia HN API for stories created inside
// the collection window.
type HackerNewsAdapter struct {
	httpClient *http.Client
	userAgent  string
}

func NewHackerNewsAdapter(httpClient *http.Client, userAgent string) *HackerNewsAdapter {
	return &HackerNewsAdapter{httpClient: httpClient, userAgent: userAgent}
}

func (a *HackerNewsAdapter) Name() string { return "hackernews" }

type hnResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	StoryText  string `json:"story_text"`
	CreatedAtI int64  `json:"created_at_i"`
}

func (a *HackerNewsAdapter) Collect(ctx context.Context, windowHours int) []Item {
	minPublished := cutoff(windowHours)

	query := url.Values{}
	query.Set("query", hnQuery)
	query.Set("tags", "story")
	query.Set("hitsPerPage", fmt.Sprintf("%d", hnPageSize))
	query.Set("numericFilters", fmt.Sprintf("created_at_i>%d", minPublished.Unix()))

	data, err := fetch(ctx, a.httpClient, hnEndpoint+"?"+query.Encode(), a.userAgent, hnTimeout)
	if err != nil {
		slog.Warn("Failed to query Hacker News", "error", err)
		return nil
	}

	var response hnResponse
	if err := json.Unmarshal(data, &response); err != nil {
		slog.Warn("Failed to parse Hacker News response", "error", err)
		return nil
	}

	var items []Item
	for _, hit := range response.Hits {
		if hit.Title == "" || hit.URL == "" {
			continue
		}
		published := time.Unix(hit.CreatedAtI, 0).UTC()
		if published.Before(minPublished) {
			continue
		}

		items = append(items, Item{
			Title:        hit.Title,
			Link:         hit.URL,
			PublishedAt:  published,
			Summary:      TruncateSummary(stripHTML(hit.StoryText)),
			SourceDomain: Domain(hit.URL),
			FeedTitle:    "Hacker News",
			Tier:         TierCommunity,
			Lang:         LangEn,
		})
	}

	slog.Debug("Hacker News collection finished", "items", len(items))
	return items
}
