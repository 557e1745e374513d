package sources

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yml
var defaultSourcesYAML []byte

// Config holds every upstream target the adapters fan out over.
type Config struct {
	Feeds           []FeedConfig      `yaml:"feeds"`
	YouTubeChannels []ChannelConfig   `yaml:"youtube_channels"`
	GitHub          GitHubConfig      `yaml:"github"`
	Changelogs      []ChangelogConfig `yaml:"changelogs"`
}

// FeedConfig describes one RSS/Atom feed.
type FeedConfig struct {
	URL   string `yaml:"url"`
	Title string `yaml:"title"`
	Tier  string `yaml:"tier"`
	Lang  string `yaml:"lang"`
}

// ChannelConfig describes one YouTube channel tracked via its Atom feed.
type ChannelConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// GitHubConfig groups the three GitHub-backed source families.
type GitHubConfig struct {
	Repos    []string       `yaml:"repos"`
	Queries  []string       `yaml:"queries"`
	Markdown MarkdownConfig `yaml:"markdown"`
}

// MarkdownConfig points at a repository folder of date-named curated
// markdown listings.
type MarkdownConfig struct {
	Repo        string   `yaml:"repo"`
	Path        string   `yaml:"path"`
	SkipDomains []string `yaml:"skip_domains"`
}

// ChangelogConfig is a CSS-selector scraping strategy for one vendor
// changelog page.
type ChangelogConfig struct {
	Name         string `yaml:"name"`
	URL          string `yaml:"url"`
	ItemSelector string `yaml:"item_selector"`
	LinkSelector string `yaml:"link_selector"`
	DateSelector string `yaml:"date_selector"`
	DateFormat   string `yaml:"date_format"`
	Tier         string `yaml:"tier"`
}

// LoadConfig reads the source lists from path, falling back to the embedded
// defaults when path is empty or unreadable.
func LoadConfig(path string) (*Config, error) {
	data := defaultSourcesYAML

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("Failed to read sources file, using embedded defaults", "path", path, "error", err)
		} else {
			data = raw
		}
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse sources config: %w", err)
	}

	if len(config.Feeds) == 0 {
		return nil, fmt.Errorf("sources config contains no feeds")
	}

	return &config, nil
}

// FeedLang resolves a configured language label to the item language.
func FeedLang(label string) Lang {
	if label == "ko" {
		return LangKo
	}
	return LangEn
}
