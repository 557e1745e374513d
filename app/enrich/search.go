package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/minhokang/trendsnap/app/sources"
)

const (
	tavilyEndpoint   = "https://api.tavily.com/search"
	searchTimeout    = 15 * time.Second
	searchMaxResults = 10
)

// SourceTypes is the fixed order search groups are queried and flattened in.
var SourceTypes = []string{"news", "web", "video", "image"}

// Source is one enrichment source attached to a keyword.
type Source struct {
	Type        string
	Title       string
	URL         string
	Domain      string
	PublishedAt *time.Time
	Snippet     string
	ImageURL    string
	TitleKo     string
	TitleEn     string
}

// Searcher is the external search surface the enricher depends on.
type Searcher interface {
	Search(ctx context.Context, query, sourceType string) []Source
}

// TavilyClient queries a Tavily-compatible search API with one request per
// source type. Failures yield an empty group.
type TavilyClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewTavilyClient(apiKey string) *TavilyClient {
	return &TavilyClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: searchTimeout},
	}
}

type tavilyRequest struct {
	Query      string `json:"query"`
	Topic      string `json:"topic"`
	TimeRange  string `json:"time_range"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Content       string `json:"content"`
		PublishedDate string `json:"published_date"`
	} `json:"results"`
}

func (c *TavilyClient) Search(ctx context.Context, query, sourceType string) []Source {
	if c.apiKey == "" {
		return nil
	}

	request := tavilyRequest{
		Query:      searchQuery(query, sourceType),
		Topic:      "general",
		TimeRange:  "month",
		MaxResults: searchMaxResults,
	}
	if sourceType == "news" {
		request.Topic = "news"
		request.TimeRange = "week"
	}

	body, err := json.Marshal(request)
	if err != nil {
		slog.Warn("Failed to marshal search request", "error", err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyEndpoint, bytes.NewReader(body))
	if err != nil {
		slog.Warn("Failed to create search request", "error", err)
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("Search request failed", "query", query, "type", sourceType, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Search returned unexpected status", "query", query, "type", sourceType, "status", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		slog.Warn("Failed to read search response", "error", err)
		return nil
	}

	var response tavilyResponse
	if err := json.Unmarshal(data, &response); err != nil {
		slog.Warn("Failed to parse search response", "error", err)
		return nil
	}

	results := make([]Source, 0, len(response.Results))
	for _, result := range response.Results {
		if result.URL == "" {
			continue
		}
		source := Source{
			Type:    sourceType,
			Title:   result.Title,
			URL:     result.URL,
			Domain:  sources.Domain(result.URL),
			Snippet: sources.TruncateSummary(result.Content),
		}
		if result.PublishedDate != "" {
			if published, err := parsePublishedDate(result.PublishedDate); err == nil {
				source.PublishedAt = &published
			}
		}
		results = append(results, source)
	}

	return results
}

func searchQuery(query, sourceType string) string {
	switch sourceType {
	case "video":
		return query + " video"
	case "image":
		return query + " image"
	default:
		return query
	}
}

func parsePublishedDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "Mon, 02 Jan 2006 15:04:05 MST"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", value)
}
