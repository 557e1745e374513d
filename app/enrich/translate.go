package enrich

import (
	"context"
	"log/slog"
	"strings"
)

const (
	translateBatchLimit  = 8
	translateTemperature = 0.1
)

const translateSystemPrompt = `You translate news titles into Korean.
Rules: keep proper nouns, product names and version numbers verbatim.
Answer with exactly one translated line per input line, same order, no numbering.`

// Translator batch-translates source titles into Korean, per source type.
type Translator struct {
	llm Completer
}

func NewTranslator(llm Completer) *Translator {
	return &Translator{llm: llm}
}

// Run fills TitleKo/TitleEn for the first sources of each type. A line
// count mismatch keeps the original titles untouched.
func (t *Translator) Run(ctx context.Context, srcs []*Source) {
	byType := make(map[string][]*Source)
	for _, source := range srcs {
		if len(byType[source.Type]) < translateBatchLimit {
			byType[source.Type] = append(byType[source.Type], source)
		}
	}

	for _, sourceType := range SourceTypes {
		group := byType[sourceType]
		if len(group) == 0 {
			continue
		}
		t.translateGroup(ctx, sourceType, group)
	}
}

func (t *Translator) translateGroup(ctx context.Context, sourceType string, group []*Source) {
	lines := make([]string, len(group))
	for i, source := range group {
		lines[i] = source.Title
	}

	response, err := t.llm.Complete(ctx, translateSystemPrompt, strings.Join(lines, "\n"), translateTemperature)
	if err != nil {
		slog.Warn("Title translation failed", "type", sourceType, "error", err)
		return
	}

	translated := nonEmptyLines(response)
	if len(translated) != len(group) {
		slog.Warn("Translation line count mismatch, keeping originals",
			"type", sourceType, "want", len(group), "got", len(translated))
		return
	}

	for i, source := range group {
		source.TitleKo = translated[i]
		source.TitleEn = source.Title
	}
}

func nonEmptyLines(response string) []string {
	var lines []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
