package extract

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/minhokang/trendsnap/app/sources"
)

// mockCompleter implements Completer with canned responses
type mockCompleter struct {
	response string
	err      error
	calls    int
}

func (m *mockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func testItems(titles ...string) []sources.Item {
	items := make([]sources.Item, len(titles))
	for i, title := range titles {
		items[i] = sources.Item{
			Title:       title,
			Link:        fmt.Sprintf("https://example.com/%d", i),
			PublishedAt: time.Now().UTC(),
			Tier:        sources.TierP2Raw,
		}
	}
	return items
}

func TestExtractor_ParsesKeywordArray(t *testing.T) {
	llm := &mockCompleter{
		response: `[{"keyword": "GPT-4o", "aliases": ["GPT 4o"]}, {"keyword": "Claude Code", "aliases": []}]`,
	}
	extractor := NewExtractor(llm)

	keywords := extractor.Run(context.Background(), testItems("OpenAI ships GPT-4o update", "Claude Code gets new features"))

	if len(keywords) != 2 {
		t.Fatalf("Expected 2 keywords, got %d", len(keywords))
	}

	byText := map[string]Keyword{}
	for _, keyword := range keywords {
		byText[keyword.Text] = keyword
	}

	gpt, ok := byText["GPT-4o"]
	if !ok {
		t.Fatal("Expected GPT-4o to be extracted")
	}
	if gpt.ID != "gpt_4o" {
		t.Errorf("Expected slug gpt_4o, got %q", gpt.ID)
	}
	if len(gpt.Aliases) != 1 || gpt.Aliases[0] != "GPT 4o" {
		t.Errorf("Expected alias ['GPT 4o'], got %v", gpt.Aliases)
	}
}

func TestExtractor_ToleratesMarkdownFencing(t *testing.T) {
	llm := &mockCompleter{
		response: "```json\n[{\"keyword\": \"Gemini 2.0\", \"aliases\": []}]\n```",
	}
	extractor := NewExtractor(llm)

	keywords := extractor.Run(context.Background(), testItems("Google announces Gemini 2.0"))

	if len(keywords) != 1 || keywords[0].Text != "Gemini 2.0" {
		t.Fatalf("Expected Gemini 2.0 from fenced response, got %v", keywords)
	}
}

func TestExtractor_FiltersGenericKeywords(t *testing.T) {
	llm := &mockCompleter{
		response: `[{"keyword": "AI Agent System", "aliases": []}, {"keyword": "GPT-4o", "aliases": []}]`,
	}
	extractor := NewExtractor(llm)

	keywords := extractor.Run(context.Background(), testItems("some title"))

	if len(keywords) != 1 {
		t.Fatalf("Expected generic keyword to be filtered, got %d keywords", len(keywords))
	}
	if keywords[0].Text != "GPT-4o" {
		t.Errorf("Expected GPT-4o to survive, got %q", keywords[0].Text)
	}
}

func TestExtractor_MergesTrailingVerbVariants(t *testing.T) {
	llm := &mockCompleter{
		response: `[{"keyword": "GPT-4o 출시", "aliases": []}, {"keyword": "GPT-4o", "aliases": []}]`,
	}
	extractor := NewExtractor(llm)

	keywords := extractor.Run(context.Background(), testItems("OpenAI GPT-4o 출시"))

	if len(keywords) != 1 {
		t.Fatalf("Expected verb variant to merge, got %d keywords", len(keywords))
	}
	if keywords[0].Text != "GPT-4o" {
		t.Errorf("Expected stripped form GPT-4o, got %q", keywords[0].Text)
	}

	hasAlias := false
	for _, alias := range keywords[0].Aliases {
		if alias == "GPT-4o 출시" {
			hasAlias = true
		}
	}
	if !hasAlias {
		t.Errorf("Expected original surface form as alias, got %v", keywords[0].Aliases)
	}
}

func TestExtractor_RegexFallbackOnLLMFailure(t *testing.T) {
	llm := &mockCompleter{err: fmt.Errorf("api unavailable")}
	extractor := NewExtractor(llm)

	keywords := extractor.Run(context.Background(), testItems(
		"LangChain adds streaming support",
		"Meta releases Llama-3 weights",
	))

	byText := map[string]bool{}
	for _, keyword := range keywords {
		byText[keyword.Text] = true
	}

	if !byText["LangChain"] {
		t.Errorf("Expected CamelCase fallback to find LangChain, got %v", keywords)
	}
	if !byText["Llama-3"] {
		t.Errorf("Expected versioned fallback to find Llama-3, got %v", keywords)
	}
}

func TestExtractor_EmptyItems(t *testing.T) {
	llm := &mockCompleter{response: "[]"}
	extractor := NewExtractor(llm)

	keywords := extractor.Run(context.Background(), nil)
	if keywords != nil {
		t.Errorf("Expected no keywords for empty input, got %v", keywords)
	}
	if llm.calls != 0 {
		t.Errorf("Expected no LLM calls for empty input, got %d", llm.calls)
	}
}

func TestPrepareTitles_DedupAndTierOrder(t *testing.T) {
	items := []sources.Item{
		{Title: "Shared Title", Tier: sources.TierCommunity},
		{Title: "Curated First", Tier: sources.TierP0Curated},
		{Title: "shared title", Tier: sources.TierP0Curated},
	}

	titles := prepareTitles(items)

	if len(titles) != 2 {
		t.Fatalf("Expected case-insensitive dedup to 2 titles, got %d", len(titles))
	}
	if titles[0] != "Curated First" {
		t.Errorf("Expected curated title to lead the batch, got %q", titles[0])
	}
}
