package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"
)

const markdownFileLimit = 3

var (
	fileDatePattern = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	mdLinkPattern   = regexp.MustCompile(`\[([^\]\[]+)\]\((https?://[^)\s]+)\)`)
)

// GitHubMarkdownAdapter reads a repository folder of date-named curated
// markdown listings and extracts their [title](url) links.
type GitHubMarkdownAdapter struct {
	client     *githubClient
	httpClient *http.Client
	userAgent  string
	config     MarkdownConfig
}

func NewGitHubMarkdownAdapter(httpClient *http.Client, token, userAgent string, config MarkdownConfig) *GitHubMarkdownAdapter {
	return &GitHubMarkdownAdapter{
		client:     newGitHubClient(httpClient, token, userAgent),
		httpClient: httpClient,
		userAgent:  userAgent,
		config:     config,
	}
}

func (a *GitHubMarkdownAdapter) Name() string { return "github-markdown" }

type githubContentEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

func (a *GitHubMarkdownAdapter) Collect(ctx context.Context, windowHours int) []Item {
	if a.client.token == "" || a.config.Repo == "" {
		slog.Debug("GitHub markdown listings not configured, skipping")
		return nil
	}

	minDay := cutoff(windowHours).Truncate(24 * time.Hour)

	var entries []githubContentEntry
	path := fmt.Sprintf("/repos/%s/contents/%s", a.config.Repo, a.config.Path)
	if err := a.client.get(ctx, path, &entries); err != nil {
		slog.Warn("Failed to list markdown folder", "repo", a.config.Repo, "error", err)
		return nil
	}

	type datedFile struct {
		entry githubContentEntry
		date  time.Time
	}

	var candidates []datedFile
	for _, entry := range entries {
		if entry.Type != "file" || !strings.HasSuffix(entry.Name, ".md") {
			continue
		}
		date, ok := parseFileDate(entry.Name)
		if !ok || date.Before(minDay) {
			continue
		}
		candidates = append(candidates, datedFile{entry: entry, date: date})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].date.After(candidates[j].date)
	})
	if len(candidates) > markdownFileLimit {
		candidates = candidates[:markdownFileLimit]
	}

	var items []Item
	for _, candidate := range candidates {
		data, err := fetch(ctx, a.httpClient, candidate.entry.DownloadURL, a.userAgent, githubTimeout)
		if err != nil {
			slog.Warn("Failed to download markdown file", "file", candidate.entry.Name, "error", err)
			continue
		}
		items = append(items, a.extractLinks(string(data), candidate.date)...)
	}

	slog.Debug("GitHub markdown collection finished", "files", len(candidates), "items", len(items))
	return items
}

func (a *GitHubMarkdownAdapter) extractLinks(content string, published time.Time) []Item {
	var items []Item
	for _, match := range mdLinkPattern.FindAllStringSubmatch(content, -1) {
		title := strings.TrimSpace(match[1])
		link := match[2]
		domain := Domain(link)
		if title == "" || domain == "" || a.isSkippedDomain(domain) {
			continue
		}
		items = append(items, Item{
			Title:        title,
			Link:         link,
			PublishedAt:  published,
			SourceDomain: domain,
			FeedTitle:    a.config.Repo,
			Tier:         TierP0Curated,
			Lang:         LangEn,
		})
	}
	return items
}

func (a *GitHubMarkdownAdapter) isSkippedDomain(domain string) bool {
	for _, skip := range a.config.SkipDomains {
		if domain == skip || strings.HasSuffix(domain, "."+skip) {
			return true
		}
	}
	return false
}

func parseFileDate(name string) (time.Time, bool) {
	match := fileDatePattern.FindString(name)
	if match == "" {
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", match)
	if err != nil {
		return time.Time{}, false
	}
	return date.UTC(), true
}
