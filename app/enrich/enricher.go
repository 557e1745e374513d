package enrich

import (
	"context"
	"log/slog"
)

// Result is the complete enrichment payload for one keyword.
type Result struct {
	Sources     []Source
	SummaryKo   string
	SummaryEn   string
	PrimaryType string
	TopSource   *Source
}

// Enricher runs the full enrichment path for a keyword: search fan-out,
// OG-image backfill, bilingual summaries, title translation, and the
// primary-type vote.
type Enricher struct {
	searcher   Searcher
	scraper    *ImageScraper
	summarizer *Summarizer
	translator *Translator
}

func NewEnricher(searcher Searcher, scraper *ImageScraper, summarizer *Summarizer, translator *Translator) *Enricher {
	return &Enricher{
		searcher:   searcher,
		scraper:    scraper,
		summarizer: summarizer,
		translator: translator,
	}
}

func (e *Enricher) Run(ctx context.Context, keyword string) Result {
	var flattened []Source
	for _, sourceType := range SourceTypes {
		group := e.searcher.Search(ctx, keyword, sourceType)
		flattened = append(flattened, group...)
	}

	refs := make([]*Source, len(flattened))
	for i := range flattened {
		refs[i] = &flattened[i]
	}

	e.scraper.Backfill(ctx, refs)
	e.translator.Run(ctx, refs)

	summaryKo, summaryEn := e.summarizer.Run(ctx, keyword, flattened)
	primaryType := PrimaryType(flattened)

	result := Result{
		Sources:     flattened,
		SummaryKo:   summaryKo,
		SummaryEn:   summaryEn,
		PrimaryType: primaryType,
		TopSource:   SelectTopSource(flattened, primaryType),
	}

	slog.Debug("Enrichment completed", "keyword", keyword, "sources", len(flattened), "primary_type", primaryType)
	return result
}

// SelectTopSource picks the first source matching the primary type,
// falling back to the first source overall.
func SelectTopSource(srcs []Source, primaryType string) *Source {
	if len(srcs) == 0 {
		return nil
	}
	for i := range srcs {
		if Classify(srcs[i]) == primaryType {
			return &srcs[i]
		}
	}
	return &srcs[0]
}
