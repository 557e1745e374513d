package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	githubAPIBase     = "https://api.github.com"
	githubAPIVersion  = "2022-11-28"
	githubTimeout     = 12 * time.Second
	githubConcurrency = 4
	releasesPerRepo   = 5
)

// githubClient wraps authenticated GitHub REST v3 access. A 404 is treated
// as an empty result, not an error.
type githubClient struct {
	httpClient *http.Client
	token      string
	userAgent  string
}

func newGitHubClient(httpClient *http.Client, token, userAgent string) *githubClient {
	return &githubClient{httpClient: httpClient, token: token, userAgent: userAgent}
}

func (c *githubClient) get(ctx context.Context, path string, out any) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, githubTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", githubAPIBase+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call GitHub API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return json.Unmarshal(data, out)
}

// GitHubReleasesAdapter lists recent releases of the tracked repositories.
type GitHubReleasesAdapter struct {
	client *githubClient
	repos  []string
}

func NewGitHubReleasesAdapter(httpClient *http.Client, token, userAgent string, repos []string) *GitHubReleasesAdapter {
	return &GitHubReleasesAdapter{
		client: newGitHubClient(httpClient, token, userAgent),
		repos:  repos,
	}
}

func (a *GitHubReleasesAdapter) Name() string { return "github-releases" }

type githubRelease struct {
	Name        string    `json:"name"`
	TagName     string    `json:"tag_name"`
	HTMLURL     string    `json:"html_url"`
	Body        string    `json:"body"`
	PublishedAt time.Time `json:"published_at"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
}

func (a *GitHubReleasesAdapter) Collect(ctx context.Context, windowHours int) []Item {
	if a.client.token == "" {
		slog.Debug("GitHub token not configured, skipping releases")
		return nil
	}

	minPublished := cutoff(windowHours)

	var mu sync.Mutex
	var items []Item

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(githubConcurrency)

	for _, repo := range a.repos {
		g.Go(func() error {
			var releases []githubRelease
			path := fmt.Sprintf("/repos/%s/releases?per_page=%d", repo, releasesPerRepo)
			if err := a.client.get(gctx, path, &releases); err != nil {
				slog.Warn("Failed to list releases", "repo", repo, "error", err)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, release := range releases {
				if release.Draft || release.HTMLURL == "" {
					continue
				}
				if release.PublishedAt.Before(minPublished) {
					continue
				}
				title := release.Name
				if title == "" {
					title = release.TagName
				}
				items = append(items, Item{
					Title:        fmt.Sprintf("%s %s", repo, title),
					Link:         release.HTMLURL,
					PublishedAt:  release.PublishedAt.UTC(),
					Summary:      TruncateSummary(release.Body),
					SourceDomain: "github.com",
					FeedTitle:    repo,
					Tier:         TierP1Context,
					Lang:         LangEn,
				})
			}
			return nil
		})
	}

	_ = g.Wait()

	slog.Debug("GitHub releases collection finished", "repos", len(a.repos), "items", len(items))
	return items
}

// GitHubSearchAdapter runs the configured repository search queries.
type GitHubSearchAdapter struct {
	client  *githubClient
	queries []string
}

func NewGitHubSearchAdapter(httpClient *http.Client, token, userAgent string, queries []string) *GitHubSearchAdapter {
	return &GitHubSearchAdapter{
		client:  newGitHubClient(httpClient, token, userAgent),
		queries: queries,
	}
}

func (a *GitHubSearchAdapter) Name() string { return "github-search" }

type githubSearchResponse struct {
	Items []githubSearchRepo `json:"items"`
}

type githubSearchRepo struct {
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	PushedAt    time.Time `json:"pushed_at"`
}

func (a *GitHubSearchAdapter) Collect(ctx context.Context, windowHours int) []Item {
	if a.client.token == "" {
		slog.Debug("GitHub token not configured, skipping search")
		return nil
	}

	minPublished := cutoff(windowHours)

	var items []Item
	for _, searchQuery := range a.queries {
		var response githubSearchResponse
		path := "/search/repositories?sort=updated&order=desc&per_page=20&q=" + url.QueryEscape(searchQuery)
		if err := a.client.get(ctx, path, &response); err != nil {
			slog.Warn("Failed to search repositories", "query", searchQuery, "error", err)
			continue
		}

		for _, repo := range response.Items {
			if repo.HTMLURL == "" || repo.PushedAt.Before(minPublished) {
				continue
			}
			items = append(items, Item{
				Title:        repo.FullName,
				Link:         repo.HTMLURL,
				PublishedAt:  repo.PushedAt.UTC(),
				Summary:      TruncateSummary(repo.Description),
				SourceDomain: "github.com",
				FeedTitle:    "GitHub Search",
				Tier:         TierCommunity,
				Lang:         LangEn,
			})
		}
	}

	slog.Debug("GitHub search collection finished", "queries", len(a.queries), "items", len(items))
	return items
}
