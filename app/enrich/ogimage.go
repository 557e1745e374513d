package enrich

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultImageURL is the sentinel stored when no usable image exists.
	DefaultImageURL = "/images/default-source.png"

	ogTimeout       = 5 * time.Second
	ogBackfillLimit = 10
	ogChunkSize     = 5
	ogMaxBody       = 2 << 20
)

// badImageKeywords reject decorative assets masquerading as page images.
var badImageKeywords = []string{"sprite", "spacer", "pixel", "logo", "avatar", "transparent", "placeholder"}

// ImageScraper backfills missing source images from OG meta tags.
type ImageScraper struct {
	httpClient *http.Client
	userAgent  string
}

func NewImageScraper(userAgent string) *ImageScraper {
	return &ImageScraper{
		httpClient: &http.Client{Timeout: ogTimeout},
		userAgent:  userAgent,
	}
}

// Backfill scrapes OG images for the first imageless sources, running at
// most ogChunkSize requests at a time and writing results in place. Sources
// that still lack an image get the sentinel.
func (s *ImageScraper) Backfill(ctx context.Context, srcs []*Source) {
	var pending []*Source
	for _, source := range srcs {
		if source.ImageURL == "" && len(pending) < ogBackfillLimit {
			pending = append(pending, source)
		}
	}

	for start := 0; start < len(pending); start += ogChunkSize {
		end := start + ogChunkSize
		if end > len(pending) {
			end = len(pending)
		}

		var wg sync.WaitGroup
		for _, source := range pending[start:end] {
			wg.Add(1)
			go func(source *Source) {
				defer wg.Done()
				source.ImageURL = s.scrape(ctx, source.URL)
			}(source)
		}
		wg.Wait()
	}

	for _, source := range srcs {
		if source.ImageURL == "" {
			source.ImageURL = DefaultImageURL
		}
	}
}

// scrape fetches a page and extracts the best image candidate in priority
// order: og:image, twitter:image, link[rel=icon], sentinel.
func (s *ImageScraper) scrape(ctx context.Context, pageURL string) string {
	timeoutCtx, cancel := context.WithTimeout(ctx, ogTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pageURL, nil)
	if err != nil {
		return DefaultImageURL
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Debug("OG scrape failed", "url", pageURL, "error", err)
		return DefaultImageURL
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DefaultImageURL
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, ogMaxBody))
	if err != nil {
		return DefaultImageURL
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return DefaultImageURL
	}

	if img, ok := metaContent(doc, `meta[property="og:image"]`); ok && usableImage(img) {
		return img
	}
	if img, ok := metaContent(doc, `meta[name="twitter:image"]`); ok && usableImage(img) {
		return img
	}
	if icon, ok := doc.Find(`link[rel="icon"], link[rel="shortcut icon"]`).First().Attr("href"); ok && icon != "" {
		if resolved := resolveURL(pageURL, icon); resolved != "" {
			return resolved
		}
	}

	return DefaultImageURL
}

func metaContent(doc *goquery.Document, selector string) (string, bool) {
	content, ok := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content), ok && strings.TrimSpace(content) != ""
}

// usableImage rejects decorative asset URLs.
func usableImage(imageURL string) bool {
	lowered := strings.ToLower(imageURL)
	if !strings.HasPrefix(lowered, "http") {
		return false
	}
	for _, keyword := range badImageKeywords {
		if strings.Contains(lowered, keyword) {
			return false
		}
	}
	return true
}

func resolveURL(base, ref string) string {
	req, err := http.NewRequest("GET", base, nil)
	if err != nil {
		return ""
	}
	resolved, err := req.URL.Parse(ref)
	if err != nil {
		return ""
	}
	return resolved.String()
}
