package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/minhokang/trendsnap/app/cfg"
	"github.com/minhokang/trendsnap/app/database"
	"github.com/minhokang/trendsnap/app/enrich"
	"github.com/minhokang/trendsnap/app/extract"
	"github.com/minhokang/trendsnap/app/match"
	"github.com/minhokang/trendsnap/app/rank"
	"github.com/minhokang/trendsnap/app/sources"
)

// Summary is the counter set returned to the trigger endpoint.
type Summary struct {
	SnapshotID   string `json:"snapshotId"`
	KeywordCount int    `json:"keywordCount"`
	ReusedCount  int    `json:"reusedCount"`
	NewCount     int    `json:"newCount"`
	DurationMs   int64  `json:"durationMs"`
}

// Phase contracts, satisfied by the concrete components and by test fakes.
type Collector interface {
	Run(ctx context.Context, windowHours int) []sources.Item
}

type Extractor interface {
	Run(ctx context.Context, items []sources.Item) []extract.Keyword
}

type Matcher interface {
	Run(keywords []extract.Keyword, items []sources.Item) []match.Candidate
}

type Ranker interface {
	Run(candidates []match.Candidate, prevRanks map[string]int, limit int, now time.Time) []rank.RankedKeyword
}

type Enricher interface {
	Run(ctx context.Context, keyword string) enrich.Result
}

// Runner composes the pipeline phases into one snapshot run.
type Runner struct {
	collector    Collector
	extractor    Extractor
	matcher      Matcher
	ranker       Ranker
	enricher     Enricher
	reuse        *ReuseCache
	snapshotRepo database.SnapshotRepository
	keywordRepo  database.KeywordRepository
	sourceRepo   database.SourceRepository
	slots        []Slot
}

func NewRunner(collector Collector, extractor Extractor, matcher Matcher,
	ranker Ranker, enricher Enricher, reuse *ReuseCache,
	snapshotRepo database.SnapshotRepository, keywordRepo database.KeywordRepository,
	sourceRepo database.SourceRepository, slots []Slot) *Runner {
	return &Runner{
		collector:    collector,
		extractor:    extractor,
		matcher:      matcher,
		ranker:       ranker,
		enricher:     enricher,
		reuse:        reuse,
		snapshotRepo: snapshotRepo,
		keywordRepo:  keywordRepo,
		sourceRepo:   sourceRepo,
		slots:        slots,
	}
}

// Run executes one snapshot: collect, extract, match, rank, persist the
// snapshot row, then enrich-or-reuse the top keywords. A failing keyword
// never aborts the run; the run fails only when the previous ranks cannot
// be loaded or the snapshot row itself cannot be committed.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	config := cfg.Get()
	start := time.Now()
	now := start.UTC()
	snapshotID := SnapshotID(start)

	slog.Info("Pipeline started", "snapshot_id", snapshotID)

	items := r.collector.Run(ctx, config.WindowHours)
	keywords := r.extractor.Run(ctx, items)
	candidates := r.matcher.Run(keywords, items)

	prevRanks, err := r.keywordRepo.GetPreviousRanks(snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous ranks: %w", err)
	}

	ranked := r.ranker.Run(candidates, prevRanks, config.RankedKeywords, now)

	err = r.snapshotRepo.InsertSnapshot(database.Snapshot{
		SnapshotID:      snapshotID,
		UpdatedAtUTC:    now,
		NextUpdateAtUTC: NextUpdateAt(now, r.slots),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	detailed := ranked
	if len(detailed) > config.DetailedKeywords {
		detailed = detailed[:config.DetailedKeywords]
	}
	lightweight := ranked[len(detailed):]

	var mu sync.Mutex
	summary := &Summary{SnapshotID: snapshotID}

	detailedTasks := make([]func(ctx context.Context), 0, len(detailed))
	for _, entry := range detailed {
		detailedTasks = append(detailedTasks, func(taskCtx context.Context) {
			reused, err := r.processDetailed(taskCtx, snapshotID, entry)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("Keyword processing failed", "snapshot_id", snapshotID,
					"keyword", entry.Candidate.Keyword.Text, "error", err)
				return
			}
			summary.KeywordCount++
			if reused {
				summary.ReusedCount++
			}
			if entry.IsNew {
				summary.NewCount++
			}
		})
	}
	RunPool(ctx, config.KeywordConcurrency, detailedTasks)

	lightweightTasks := make([]func(ctx context.Context), 0, len(lightweight))
	for _, entry := range lightweight {
		lightweightTasks = append(lightweightTasks, func(taskCtx context.Context) {
			err := r.keywordRepo.InsertKeyword(r.buildKeywordRow(snapshotID, entry, "", "", enrich.TypeNews, nil))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("Lightweight keyword insert failed", "snapshot_id", snapshotID,
					"keyword", entry.Candidate.Keyword.Text, "error", err)
				return
			}
			summary.KeywordCount++
			if entry.IsNew {
				summary.NewCount++
			}
		})
	}
	RunPool(ctx, config.LightweightConcurrency, lightweightTasks)

	summary.DurationMs = time.Since(start).Milliseconds()

	slog.Info("Pipeline completed", "snapshot_id", snapshotID,
		"keywords", summary.KeywordCount, "reused", summary.ReusedCount,
		"new", summary.NewCount, "duration_ms", summary.DurationMs)

	return summary, nil
}

// processDetailed persists one top keyword through the reuse cache or the
// full enrichment path. The keyword row is written before its sources.
func (r *Runner) processDetailed(ctx context.Context, snapshotID string, entry rank.RankedKeyword) (bool, error) {
	keyword := entry.Candidate.Keyword

	cached, cachedSources, err := r.reuse.Lookup(keyword.ID, snapshotID)
	if err != nil {
		slog.Warn("Reuse cache lookup failed, enriching instead", "keyword", keyword.Text, "error", err)
	}

	if cached != nil {
		if err := r.persistReused(ctx, snapshotID, entry, cached, cachedSources); err != nil {
			return false, err
		}
		return true, nil
	}

	result := r.enricher.Run(ctx, keyword.Text)

	row := r.buildKeywordRow(snapshotID, entry, result.SummaryKo, result.SummaryEn, result.PrimaryType, result.TopSource)
	if err := r.keywordRepo.InsertKeyword(row); err != nil {
		return false, err
	}

	r.persistSources(snapshotID, keyword.ID, result.Sources)
	r.persistAliases(keyword)

	return false, nil
}

func (r *Runner) persistReused(ctx context.Context, snapshotID string, entry rank.RankedKeyword,
	cached *database.Keyword, cachedSources []database.Source) error {
	converted := make([]enrich.Source, len(cachedSources))
	for i, source := range cachedSources {
		converted[i] = enrich.Source{
			Type:        source.Type,
			Title:       source.Title,
			URL:         source.URL,
			Domain:      source.Domain,
			PublishedAt: source.PublishedAtUTC,
			Snippet:     source.Snippet,
			ImageURL:    source.ImageURL,
			TitleKo:     source.TitleKo,
			TitleEn:     source.TitleEn,
		}
	}

	primaryType := enrich.PrimaryType(converted)
	topSource := enrich.SelectTopSource(converted, primaryType)

	row := r.buildKeywordRow(snapshotID, entry, cached.SummaryShort, cached.SummaryShortEn, primaryType, topSource)
	if err := r.keywordRepo.InsertKeyword(row); err != nil {
		return err
	}

	r.persistSources(snapshotID, entry.Candidate.Keyword.ID, converted)
	return nil
}

// persistSources writes the source rows for one keyword. Inserts run in
// parallel; order within a keyword is irrelevant and the unique index makes
// them idempotent.
func (r *Runner) persistSources(snapshotID, keywordID string, srcs []enrich.Source) {
	var wg sync.WaitGroup
	for _, source := range srcs {
		wg.Add(1)
		go func(source enrich.Source) {
			defer wg.Done()
			err := r.sourceRepo.UpsertSource(database.Source{
				SnapshotID:     snapshotID,
				KeywordID:      keywordID,
				Type:           source.Type,
				Title:          source.Title,
				URL:            source.URL,
				Domain:         source.Domain,
				PublishedAtUTC: source.PublishedAt,
				Snippet:        source.Snippet,
				ImageURL:       source.ImageURL,
				TitleKo:        source.TitleKo,
				TitleEn:        source.TitleEn,
			})
			if err != nil {
				slog.Warn("Source insert failed", "keyword_id", keywordID, "url", source.URL, "error", err)
			}
		}(source)
	}
	wg.Wait()
}

func (r *Runner) persistAliases(keyword extract.Keyword) {
	if len(keyword.Aliases) == 0 {
		return
	}

	byLang := map[string][]string{}
	for _, alias := range keyword.Aliases {
		lang := "en"
		if sources.ContainsHangul(alias) {
			lang = "ko"
		}
		byLang[lang] = append(byLang[lang], alias)
	}

	for lang, aliases := range byLang {
		if err := r.keywordRepo.InsertAliases(keyword.ID, aliases, lang); err != nil {
			slog.Warn("Alias insert failed", "keyword_id", keyword.ID, "error", err)
		}
	}
}

func (r *Runner) buildKeywordRow(snapshotID string, entry rank.RankedKeyword,
	summaryKo, summaryEn, primaryType string, topSource *enrich.Source) database.Keyword {
	row := database.Keyword{
		SnapshotID:     snapshotID,
		KeywordID:      entry.Candidate.Keyword.ID,
		Keyword:        entry.Candidate.Keyword.Text,
		Rank:           entry.Rank,
		DeltaRank:      entry.DeltaRank,
		IsNew:          entry.IsNew,
		Score:          rank.Round4(entry.Scores.Total),
		ScoreRecency:   rank.Round4(entry.Scores.Recency),
		ScoreFrequency: rank.Round4(entry.Scores.Frequency),
		ScoreAuthority: rank.Round4(entry.Scores.Authority),
		ScoreInternal:  rank.Round4(entry.Scores.Internal),
		SummaryShort:   summaryKo,
		SummaryShortEn: summaryEn,
		PrimaryType:    primaryType,
	}

	if topSource != nil {
		row.TopSourceTitle = topSource.Title
		row.TopSourceURL = topSource.URL
		row.TopSourceDomain = topSource.Domain
		row.TopSourceImageURL = topSource.ImageURL
	}

	return row
}
