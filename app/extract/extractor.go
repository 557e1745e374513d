package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/minhokang/trendsnap/app/sources"
)

const (
	batchSize             = 200
	extractionTemperature = 0
)

const extractionSystemPrompt = `You extract trending AI-related keywords from news titles.
Rules:
- Each keyword is 1-3 words (absolute maximum 4).
- Preserve product and version names verbatim (e.g. "GPT-4o", "Claude 3.5 Sonnet").
- Never return article headlines or full sentences.
- Never return generic AI prefixes like "AI 기반", "AI-powered", "AI technology".
- Target 20-35 keywords per request.
Respond with ONLY a JSON array of objects: [{"keyword": "...", "aliases": ["..."]}].`

// Keyword is a normalized, filter-surviving keyword with its stable ID.
type Keyword struct {
	ID      string
	Text    string
	Aliases []string
}

// Completer is the LLM surface the extractor depends on.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

type Extractor struct {
	llm Completer
}

func NewExtractor(llm Completer) *Extractor {
	return &Extractor{llm: llm}
}

// Run batches item titles through the LLM, falls back to regex scanning
// when the LLM yields nothing, then dedups, filters, and slugifies.
func (e *Extractor) Run(ctx context.Context, items []sources.Item) []Keyword {
	titles := prepareTitles(items)
	if len(titles) == 0 {
		return nil
	}

	merged := make(map[string]*mergedKeyword)
	for start := 0; start < len(titles); start += batchSize {
		end := min(start+batchSize, len(titles))
		batch, err := e.extractBatch(ctx, titles[start:end])
		if err != nil {
			slog.Warn("Extraction batch failed, skipping", "batch_start", start, "error", err)
			continue
		}
		for _, raw := range batch {
			mergeKeyword(merged, raw.Keyword, raw.Aliases)
		}
	}

	if len(merged) == 0 {
		slog.Warn("LLM extraction yielded no keywords, running regex fallback")
		for _, token := range regexFallback(titles) {
			mergeKeyword(merged, token, nil)
		}
	}

	deduped := dedupTrailingVerbs(merged)

	var keywords []Keyword
	dropped := 0
	for _, kw := range deduped {
		if drop, reason := ShouldDrop(kw.text); drop {
			slog.Debug("Keyword dropped", "keyword", kw.text, "reason", reason)
			dropped++
			continue
		}
		keywords = append(keywords, Keyword{
			ID:      Slugify(kw.text),
			Text:    kw.text,
			Aliases: kw.aliasList(),
		})
	}

	sort.Slice(keywords, func(i, j int) bool { return keywords[i].Text < keywords[j].Text })

	slog.Info("Extraction completed", "titles", len(titles), "keywords", len(keywords), "dropped", dropped)
	return keywords
}

// prepareTitles trims, case-insensitively dedups, and stable-sorts titles
// by tier ordinal so higher-authority titles lead each batch.
func prepareTitles(items []sources.Item) []string {
	type titleEntry struct {
		text string
		tier sources.Tier
	}

	seen := make(map[string]bool)
	var entries []titleEntry
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		canonical := strings.ToLower(title)
		if title == "" || seen[canonical] {
			continue
		}
		seen[canonical] = true
		entries = append(entries, titleEntry{text: title, tier: item.Tier})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].tier < entries[j].tier })

	titles := make([]string, len(entries))
	for i, entry := range entries {
		titles[i] = entry.text
	}
	return titles
}

type rawKeyword struct {
	Keyword string   `json:"keyword"`
	Aliases []string `json:"aliases"`
}

func (e *Extractor) extractBatch(ctx context.Context, titles []string) ([]rawKeyword, error) {
	var prompt strings.Builder
	for _, title := range titles {
		prompt.WriteString("- ")
		prompt.WriteString(title)
		prompt.WriteByte('\n')
	}

	response, err := e.llm.Complete(ctx, extractionSystemPrompt, prompt.String(), extractionTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to call extractor model: %w", err)
	}

	return parseKeywordArray(response)
}

// parseKeywordArray tolerates markdown fencing around the JSON by cutting
// out the text from the first '[' to the last ']'.
func parseKeywordArray(response string) ([]rawKeyword, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var parsed []rawKeyword
	if err := json.Unmarshal([]byte(response[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse keyword array: %w", err)
	}

	valid := parsed[:0]
	for _, raw := range parsed {
		if strings.TrimSpace(raw.Keyword) == "" {
			continue
		}
		raw.Keyword = strings.TrimSpace(raw.Keyword)
		valid = append(valid, raw)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("response contained no usable keywords")
	}

	return valid, nil
}

type mergedKeyword struct {
	text    string
	aliases map[string]bool
}

func (m *mergedKeyword) aliasList() []string {
	if len(m.aliases) == 0 {
		return nil
	}
	list := make([]string, 0, len(m.aliases))
	for alias := range m.aliases {
		list = append(list, alias)
	}
	sort.Strings(list)
	return list
}

func mergeKeyword(merged map[string]*mergedKeyword, text string, aliases []string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	canonical := strings.ToLower(text)

	existing, ok := merged[canonical]
	if !ok {
		existing = &mergedKeyword{text: text, aliases: make(map[string]bool)}
		merged[canonical] = existing
	}
	for _, alias := range aliases {
		alias = strings.TrimSpace(alias)
		if alias != "" && !strings.EqualFold(alias, existing.text) {
			existing.aliases[alias] = true
		}
	}
}

// dedupTrailingVerbs re-keys merged keywords by their verb-stripped
// canonical so "GPT-4o 출시" collapses into "GPT-4o", keeping the original
// surface form as an alias.
func dedupTrailingVerbs(merged map[string]*mergedKeyword) []*mergedKeyword {
	stripped := make(map[string]*mergedKeyword)

	canonicals := make([]string, 0, len(merged))
	for canonical := range merged {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)

	for _, canonical := range canonicals {
		kw := merged[canonical]
		base := StripTrailingVerb(kw.text)
		baseCanonical := strings.ToLower(base)

		existing, ok := stripped[baseCanonical]
		if !ok {
			existing = &mergedKeyword{text: base, aliases: make(map[string]bool)}
			stripped[baseCanonical] = existing
		}
		if !strings.EqualFold(kw.text, existing.text) {
			existing.aliases[kw.text] = true
		}
		for alias := range kw.aliases {
			if !strings.EqualFold(alias, existing.text) {
				existing.aliases[alias] = true
			}
		}
	}

	result := make([]*mergedKeyword, 0, len(stripped))
	keys := make([]string, 0, len(stripped))
	for key := range stripped {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		result = append(result, stripped[key])
	}
	return result
}

var (
	camelCasePattern = regexp.MustCompile(`^[A-Z][a-z0-9]*(?:[A-Z][a-z0-9]*)+$`)
	versionedPattern = regexp.MustCompile(`^[A-Za-z]+-?\d+(?:\.\d+)?$`)
)

// regexFallback scans title tokens for CamelCase and version-numbered
// identifiers when the LLM produced nothing.
func regexFallback(titles []string) []string {
	seen := make(map[string]bool)
	var tokens []string

	for _, title := range titles {
		for _, token := range strings.FieldsFunc(title, func(r rune) bool {
			return r == ' ' || r == ',' || r == ':' || r == ';' || r == '(' || r == ')' || r == '"' || r == '\''
		}) {
			token = strings.Trim(token, ".!?")
			if len(token) < 4 {
				continue
			}
			if !camelCasePattern.MatchString(token) && !versionedPattern.MatchString(token) {
				continue
			}
			canonical := strings.ToLower(token)
			if seen[canonical] {
				continue
			}
			seen[canonical] = true
			tokens = append(tokens, token)
		}
	}

	return tokens
}
