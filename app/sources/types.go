package sources

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Tier classifies the authority of a source. The ordinal doubles as the
// dedup priority: lower ordinal wins when two sources carry the same URL.
type Tier int

const (
	TierP0Curated Tier = iota
	TierP0Releases
	TierP1Context
	TierP2Raw
	TierCommunity
)

var tierNames = map[Tier]string{
	TierP0Curated:  "P0_CURATED",
	TierP0Releases: "P0_RELEASES",
	TierP1Context:  "P1_CONTEXT",
	TierP2Raw:      "P2_RAW",
	TierCommunity:  "COMMUNITY",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "COMMUNITY"
}

// ParseTier maps a configuration label to a Tier. Unknown labels fall back
// to COMMUNITY, the lowest authority.
func ParseTier(label string) Tier {
	for tier, name := range tierNames {
		if name == label {
			return tier
		}
	}
	return TierCommunity
}

// Better returns the higher-authority (lower ordinal) of two tiers.
func (t Tier) Better(other Tier) Tier {
	if other < t {
		return other
	}
	return t
}

type Lang string

const (
	LangKo Lang = "ko"
	LangEn Lang = "en"
)

const maxSummaryLen = 500

// Item is the canonical unit every adapter emits. Link is the global dedup
// key; PublishedAt is within the collection window, except that curated
// markdown items carry their file's date (midnight UTC) and may precede the
// cutoff by up to a day.
type Item struct {
	Title        string
	Link         string
	PublishedAt  time.Time
	Summary      string
	SourceDomain string
	FeedTitle    string
	Tier         Tier
	Lang         Lang
}

// Adapter is the single contract shared by all source families. Adapters
// fail in isolation: any error is logged and an empty slice returned.
type Adapter interface {
	Name() string
	Collect(ctx context.Context, windowHours int) []Item
}

// Domain extracts the lowercased host of a URL with any www. prefix
// stripped. Returns "" for unparseable URLs.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	return strings.TrimPrefix(host, "www.")
}

// TruncateSummary caps a summary at the persisted limit without splitting
// a multi-byte rune.
func TruncateSummary(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxSummaryLen {
		return s
	}
	runes := []rune(s)
	if len(runes) > maxSummaryLen {
		runes = runes[:maxSummaryLen]
	}
	return string(runes)
}

func cutoff(windowHours int) time.Time {
	return time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)
}
