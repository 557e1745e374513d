package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

const (
	summaryMaxChars    = 220
	summaryTemperature = 0.2
)

const summarySystemPromptKo = `한국어로 AI 업계 소식을 요약합니다.
규칙: 최대 220자, 이모지 금지, 불릿 금지, 한 줄의 산문으로만 답합니다.
고유명사와 제품명은 원문 표기를 유지합니다.`

const summarySystemPromptEn = `You summarize AI industry coverage in English.
Rules: at most 220 characters, no emoji, no bullet points, answer with a single prose line.
Keep proper nouns and product names verbatim.`

// Completer is the LLM surface shared by summarization and translation.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// Summarizer produces the bilingual short summaries for a keyword from its
// enrichment sources.
type Summarizer struct {
	llm          Completer
	contextLimit int
	enableEn     bool
}

func NewSummarizer(llm Completer, contextLimit int, enableEn bool) *Summarizer {
	return &Summarizer{llm: llm, contextLimit: contextLimit, enableEn: enableEn}
}

// Run summarizes in Korean and, when enabled, English in parallel. Each
// failure substitutes a templated sentence, never an empty field.
func (s *Summarizer) Run(ctx context.Context, keyword string, srcs []Source) (summaryKo, summaryEn string) {
	contextText := s.buildContext(srcs)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		summaryKo = s.summarize(ctx, summarySystemPromptKo, keyword, contextText, fallbackSummaryKo(keyword, len(srcs)))
	}()

	if s.enableEn {
		wg.Add(1)
		go func() {
			defer wg.Done()
			summaryEn = s.summarize(ctx, summarySystemPromptEn, keyword, contextText, fallbackSummaryEn(keyword, len(srcs)))
		}()
	}

	wg.Wait()
	return summaryKo, summaryEn
}

// buildContext uses the first news sources, or the first sources of any
// type when no news group exists.
func (s *Summarizer) buildContext(srcs []Source) string {
	var selected []Source
	for _, source := range srcs {
		if source.Type == "news" {
			selected = append(selected, source)
		}
	}
	if len(selected) == 0 {
		selected = srcs
	}
	if len(selected) > s.contextLimit {
		selected = selected[:s.contextLimit]
	}

	var b strings.Builder
	for _, source := range selected {
		b.WriteString("- ")
		b.WriteString(source.Title)
		if source.Snippet != "" {
			b.WriteString(": ")
			b.WriteString(source.Snippet)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (s *Summarizer) summarize(ctx context.Context, systemPrompt, keyword, contextText, fallback string) string {
	if contextText == "" {
		return fallback
	}

	prompt := fmt.Sprintf("Keyword: %s\n\nSources:\n%s", keyword, contextText)
	response, err := s.llm.Complete(ctx, systemPrompt, prompt, summaryTemperature)
	if err != nil {
		slog.Warn("Summarization failed, using fallback", "keyword", keyword, "error", err)
		return fallback
	}

	summary := sanitizeSummary(response)
	if summary == "" {
		return fallback
	}
	return summary
}

// sanitizeSummary collapses the response to a single prose line capped at
// the display limit.
func sanitizeSummary(response string) string {
	line := strings.Join(strings.Fields(response), " ")
	line = strings.Trim(line, "-•* ")

	runes := []rune(line)
	if len(runes) > summaryMaxChars {
		line = string(runes[:summaryMaxChars])
	}
	return line
}

func fallbackSummaryKo(keyword string, sourceCount int) string {
	return fmt.Sprintf("%s 관련 소식 %d건이 최근 보도되었습니다.", keyword, sourceCount)
}

func fallbackSummaryEn(keyword string, sourceCount int) string {
	return fmt.Sprintf("Recent coverage highlights %s across %d sources.", keyword, sourceCount)
}
