package match

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/minhokang/trendsnap/app/extract"
	"github.com/minhokang/trendsnap/app/sources"
)

// Candidate is a keyword with the support evidence gathered from items.
type Candidate struct {
	Keyword  extract.Keyword
	Count    int
	Domains  map[string]bool
	LatestAt time.Time
	Tier     sources.Tier
}

// shortStopwords are ignored when splitting a multi-word phrase into
// significant tokens. English conjunctions and Korean particles.
var shortStopwords = map[string]bool{
	"and": true, "or": true, "the": true, "of": true, "for": true,
	"with": true, "from": true, "into": true, "over": true,
	"의": true, "와": true, "과": true, "및": true, "등": true,
	"에서": true, "으로": true, "로": true, "를": true, "을": true,
}

type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// Run scans all items once per keyword, accumulating count, unique source
// domains, the latest publication time, and the best tier. Keywords with no
// supporting item are dropped.
func (m *Matcher) Run(keywords []extract.Keyword, items []sources.Item) []Candidate {
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = strings.ToLower(item.Title + " " + item.Summary)
	}

	var candidates []Candidate
	for _, keyword := range keywords {
		terms := searchTerms(keyword)

		candidate := Candidate{
			Keyword: keyword,
			Domains: make(map[string]bool),
			Tier:    sources.TierCommunity,
		}

		for i, item := range items {
			if !matchesAny(terms, texts[i]) {
				continue
			}
			candidate.Count++
			if item.SourceDomain != "" {
				candidate.Domains[item.SourceDomain] = true
			}
			if item.PublishedAt.After(candidate.LatestAt) {
				candidate.LatestAt = item.PublishedAt
			}
			candidate.Tier = candidate.Tier.Better(item.Tier)
		}

		if candidate.Count == 0 {
			continue
		}
		candidates = append(candidates, candidate)
	}

	slog.Info("Matching completed", "keywords", len(keywords), "supported", len(candidates))
	return candidates
}

// searchTerms expands a keyword into every searchable surface form: the
// display text, its aliases, and ASCII variants of Hangul-mixed forms so a
// partially transliterated keyword still matches an English title.
func searchTerms(keyword extract.Keyword) []string {
	seen := make(map[string]bool)
	var terms []string

	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	add(keyword.Text)
	if variant := asciiVariant(keyword.Text); variant != "" {
		add(variant)
	}
	for _, alias := range keyword.Aliases {
		add(alias)
		if variant := asciiVariant(alias); variant != "" {
			add(variant)
		}
	}

	return terms
}

// asciiVariant strips Hangul runs and normalizes separators. Returns ""
// when the input has no Hangul or too little remains.
func asciiVariant(text string) string {
	if !hasHangul(text) {
		return ""
	}

	var b strings.Builder
	for _, r := range text {
		if unicode.Is(unicode.Hangul, r) {
			b.WriteByte(' ')
			continue
		}
		if r == '-' || r == '_' {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}

	variant := strings.Join(strings.Fields(b.String()), " ")
	alnum := 0
	for _, r := range variant {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if alnum < 2 {
		return ""
	}
	return variant
}

func hasHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

func matchesAny(terms []string, text string) bool {
	for _, term := range terms {
		if matchesTerm(term, text) {
			return true
		}
	}
	return false
}

// matchesTerm implements the tiered matching rules: whole-word for short
// single tokens, substring for single words, and order-independent
// all-significant-token matching for phrases.
func matchesTerm(term, text string) bool {
	words := strings.Fields(term)

	if len(words) == 1 {
		if len([]rune(term)) <= 2 {
			return wholeWordMatch(term, text)
		}
		return strings.Contains(text, term)
	}

	significant := significantTokens(words)
	if len(significant) == 0 {
		return false
	}
	for _, token := range significant {
		if !strings.Contains(text, token) {
			return false
		}
	}
	return true
}

func significantTokens(words []string) []string {
	var tokens []string
	for _, word := range words {
		if len([]rune(word)) < 3 || shortStopwords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func wholeWordMatch(term, text string) bool {
	pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
	if err != nil {
		return strings.Contains(text, term)
	}
	return pattern.MatchString(text)
}
