package sources

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	gdeltEndpoint   = "https://api.gdeltproject.org/api/v2/doc/doc"
	gdeltQuery      = `"artificial intelligence" OR "AI model" OR "LLM"`
	gdeltTimeout    = 15 * time.Second
	gdeltMaxRecords = "75"
	gdeltTimeLayout = "20060102150405"
)

// GDELTAdapter queries the GDELT DOC v2 API with a compact-timestamp time
// bound and maps its language labels onto the item language.
type GDELTAdapter struct {
	httpClient *http.Client
	userAgent  string
}

func NewGDELTAdapter(httpClient *http.Client, userAgent string) *GDELTAdapter {
	return &GDELTAdapter{httpClient: httpClient, userAgent: userAgent}
}

func (a *GDELTAdapter) Name() string { return "gdelt" }

type gdeltResponse struct {
	Articles []gdeltArticle `json:"articles"`
}

type gdeltArticle struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	SeenDate string `json:"seendate"`
	Language string `json:"language"`
	Domain   string `json:"domain"`
}

func (a *GDELTAdapter) Collect(ctx context.Context, windowHours int) []Item {
	now := time.Now().UTC()
	minPublished := cutoff(windowHours)

	query := url.Values{}
	query.Set("query", gdeltQuery)
	query.Set("mode", "artlist")
	query.Set("format", "json")
	query.Set("maxrecords", gdeltMaxRecords)
	query.Set("startdatetime", minPublished.Format(gdeltTimeLayout))
	query.Set("enddatetime", now.Format(gdeltTimeLayout))

	data, err := fetch(ctx, a.httpClient, gdeltEndpoint+"?"+query.Encode(), a.userAgent, gdeltTimeout)
	if err != nil {
		slog.Warn("Failed to query GDELT", "error", err)
		return nil
	}

	var response gdeltResponse
	if err := json.Unmarshal(data, &response); err != nil {
		slog.Warn("Failed to parse GDELT response", "error", err)
		return nil
	}

	var items []Item
	for _, article := range response.Articles {
		if article.Title == "" || article.URL == "" {
			continue
		}
		published, err := parseGDELTTime(article.SeenDate)
		if err != nil || published.Before(minPublished) {
			continue
		}

		domain := strings.ToLower(article.Domain)
		if domain == "" {
			domain = Domain(article.URL)
		}

		items = append(items, Item{
			Title:        article.Title,
			Link:         article.URL,
			PublishedAt:  published,
			SourceDomain: strings.TrimPrefix(domain, "www."),
			FeedTitle:    "GDELT",
			Tier:         TierP2Raw,
			Lang:         gdeltLang(article.Language),
		})
	}

	slog.Debug("GDELT collection finished", "items", len(items))
	return items
}

// parseGDELTTime accepts both the compact YYYYMMDDhhmmss form and the
// zoned YYYYMMDDThhmmssZ variant the API emits in artlist mode.
func parseGDELTTime(value string) (time.Time, error) {
	value = strings.TrimSuffix(strings.ReplaceAll(value, "T", ""), "Z")
	t, err := time.Parse(gdeltTimeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func gdeltLang(label string) Lang {
	if strings.EqualFold(label, "korean") || strings.EqualFold(label, "kor") {
		return LangKo
	}
	return LangEn
}
