package enrich

import (
	"regexp"
	"strings"
)

// Source categories persisted as primary_type.
const (
	TypeNews   = "news"
	TypeSocial = "social"
	TypeData   = "data"
)

var socialHosts = map[string]bool{
	"twitter.com":         true,
	"x.com":               true,
	"reddit.com":          true,
	"news.ycombinator.com": true,
	"linkedin.com":        true,
	"facebook.com":        true,
	"threads.net":         true,
	"bsky.app":            true,
}

var dataHosts = map[string]bool{
	"github.com":         true,
	"huggingface.co":     true,
	"arxiv.org":          true,
	"paperswithcode.com": true,
	"kaggle.com":         true,
	"openreview.net":     true,
	"colab.research.google.com": true,
}

var academicPattern = regexp.MustCompile(`(?i)arxiv|doi\.org|openreview|\bpaper\b|benchmark|dataset`)
var youtubePattern = regexp.MustCompile(`(?i)youtube\.com|youtu\.be`)

// Classify maps one source to its category: explicit video/image types and
// data-bearing hosts are data, social hosts are social, everything else is
// news.
func Classify(source Source) string {
	if source.Type == "video" || source.Type == "image" {
		return TypeData
	}

	host := strings.TrimPrefix(strings.ToLower(source.Domain), "www.")
	if socialHosts[host] {
		return TypeSocial
	}
	if dataHosts[host] {
		return TypeData
	}
	if academicPattern.MatchString(source.URL) || academicPattern.MatchString(source.Title) {
		return TypeData
	}
	if youtubePattern.MatchString(source.URL) {
		return TypeData
	}

	return TypeNews
}

// PrimaryType determines the dominant category by weighted vote: positions
// 1-3 weigh 3, 4-8 weigh 2, the rest 1. Ties break toward the first
// source's category, then the fixed order news, social, data.
func PrimaryType(srcs []Source) string {
	if len(srcs) == 0 {
		return TypeNews
	}

	votes := map[string]int{}
	for i, source := range srcs {
		weight := 1
		switch {
		case i < 3:
			weight = 3
		case i < 8:
			weight = 2
		}
		votes[Classify(source)] += weight
	}

	best := ""
	bestVotes := -1
	firstCategory := Classify(srcs[0])

	for _, category := range []string{TypeNews, TypeSocial, TypeData} {
		count := votes[category]
		if count > bestVotes {
			best = category
			bestVotes = count
			continue
		}
		if count == bestVotes && category == firstCategory {
			best = category
		}
	}

	return best
}
