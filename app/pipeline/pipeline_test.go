package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/minhokang/trendsnap/app/cfg"
	"github.com/minhokang/trendsnap/app/database"
	"github.com/minhokang/trendsnap/app/enrich"
	"github.com/minhokang/trendsnap/app/extract"
	"github.com/minhokang/trendsnap/app/match"
	"github.com/minhokang/trendsnap/app/rank"
	"github.com/minhokang/trendsnap/app/sources"
)

// Fakes for the phase contracts and repositories

type fakeCollector struct {
	items []sources.Item
}

func (f *fakeCollector) Run(ctx context.Context, windowHours int) []sources.Item {
	return f.items
}

type fakeExtractor struct {
	keywords []extract.Keyword
}

func (f *fakeExtractor) Run(ctx context.Context, items []sources.Item) []extract.Keyword {
	return f.keywords
}

type fakeMatcher struct {
	candidates []match.Candidate
}

func (f *fakeMatcher) Run(keywords []extract.Keyword, items []sources.Item) []match.Candidate {
	return f.candidates
}

type fakeRanker struct {
	ranked []rank.RankedKeyword
}

func (f *fakeRanker) Run(candidates []match.Candidate, prevRanks map[string]int, limit int, now time.Time) []rank.RankedKeyword {
	return f.ranked
}

type fakeEnricher struct {
	mu     sync.Mutex
	calls  []string
	result enrich.Result
}

func (f *fakeEnricher) Run(ctx context.Context, keyword string) enrich.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, keyword)
	return f.result
}

func (f *fakeEnricher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSnapshotRepo struct {
	mu        sync.Mutex
	inserted  []database.Snapshot
	recentIDs []string
}

func (f *fakeSnapshotRepo) InsertSnapshot(snapshot database.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, snapshot)
	return nil
}

func (f *fakeSnapshotRepo) GetRecentSnapshotIDs(limit int) ([]string, error) {
	return f.recentIDs, nil
}

func (f *fakeSnapshotRepo) GetLatestSnapshotID() (string, error) {
	if len(f.recentIDs) == 0 {
		return "", nil
	}
	return f.recentIDs[0], nil
}

func (f *fakeSnapshotRepo) GetSnapshotCount() (int, error) {
	return len(f.inserted), nil
}

type fakeKeywordRepo struct {
	mu        sync.Mutex
	inserted  []database.Keyword
	prevRanks map[string]int
	cached    *database.Keyword
	aliases   map[string][]string
}

func (f *fakeKeywordRepo) InsertKeyword(keyword database.Keyword) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, keyword)
	return nil
}

func (f *fakeKeywordRepo) GetPreviousRanks(beforeSnapshotID string) (map[string]int, error) {
	if f.prevRanks == nil {
		return map[string]int{}, nil
	}
	return f.prevRanks, nil
}

func (f *fakeKeywordRepo) GetLatestKeyword(keywordID string, snapshotIDs []string) (*database.Keyword, error) {
	return f.cached, nil
}

func (f *fakeKeywordRepo) InsertAliases(keywordID string, aliases []string, lang string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.aliases == nil {
		f.aliases = map[string][]string{}
	}
	f.aliases[keywordID] = append(f.aliases[keywordID], aliases...)
	return nil
}

func (f *fakeKeywordRepo) insertedRows() []database.Keyword {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := make([]database.Keyword, len(f.inserted))
	copy(rows, f.inserted)
	return rows
}

type fakeSourceRepo struct {
	mu       sync.Mutex
	upserted []database.Source
	stored   []database.Source
}

func (f *fakeSourceRepo) UpsertSource(source database.Source) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, source)
	return nil
}

func (f *fakeSourceRepo) GetSources(snapshotID, keywordID string) ([]database.Source, error) {
	return f.stored, nil
}

func (f *fakeSourceRepo) CountSources(snapshotID, keywordID string) (int, error) {
	return len(f.stored), nil
}

func testConfig() {
	cfg.Set(&cfg.Cfg{
		WindowHours:            48,
		RankedKeywords:         20,
		DetailedKeywords:       2,
		KeywordConcurrency:     2,
		LightweightConcurrency: 2,
		ReuseSnapshots:         4,
	})
}

func rankedEntry(id, text string, position int, isNew bool) rank.RankedKeyword {
	return rank.RankedKeyword{
		Candidate: match.Candidate{
			Keyword: extract.Keyword{ID: id, Text: text},
			Count:   1,
		},
		Scores: rank.Scores{Total: 0.5, Recency: 0.5},
		Rank:   position,
		IsNew:  isNew,
	}
}

func newTestRunner(collector Collector, extractor Extractor, matcher Matcher, ranker Ranker,
	enricher Enricher, snapshotRepo *fakeSnapshotRepo, keywordRepo *fakeKeywordRepo,
	sourceRepo *fakeSourceRepo) *Runner {
	slots, _ := ParseSchedule("0:17,9:17")
	reuse := NewReuseCache(snapshotRepo, keywordRepo, sourceRepo, 4)
	return NewRunner(collector, extractor, matcher, ranker, enricher,
		reuse, snapshotRepo, keywordRepo, sourceRepo, slots)
}

func TestRunner_EmptyUpstream(t *testing.T) {
	testConfig()

	snapshotRepo := &fakeSnapshotRepo{}
	keywordRepo := &fakeKeywordRepo{}
	sourceRepo := &fakeSourceRepo{}
	enricher := &fakeEnricher{}

	runner := newTestRunner(&fakeCollector{}, &fakeExtractor{}, &fakeMatcher{}, &fakeRanker{},
		enricher, snapshotRepo, keywordRepo, sourceRepo)

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(snapshotRepo.inserted) != 1 {
		t.Fatalf("Expected exactly one snapshot row, got %d", len(snapshotRepo.inserted))
	}
	if summary.KeywordCount != 0 || summary.ReusedCount != 0 || summary.NewCount != 0 {
		t.Errorf("Expected zero counters, got %+v", summary)
	}
	if enricher.callCount() != 0 {
		t.Errorf("Expected no enrichment calls, got %d", enricher.callCount())
	}
	if len(keywordRepo.insertedRows()) != 0 {
		t.Errorf("Expected no keyword rows, got %d", len(keywordRepo.insertedRows()))
	}
}

func TestRunner_ReusePathSkipsEnrichment(t *testing.T) {
	testConfig()

	cachedSource := database.Source{
		SnapshotID: "20250609_0917_KST",
		KeywordID:  "gpt_4o",
		Type:       "news",
		Title:      "GPT-4o coverage",
		URL:        "https://news.example.com/gpt4o",
		Domain:     "news.example.com",
		ImageURL:   enrich.DefaultImageURL,
	}

	snapshotRepo := &fakeSnapshotRepo{recentIDs: []string{"20250609_0917_KST"}}
	keywordRepo := &fakeKeywordRepo{
		cached: &database.Keyword{
			SnapshotID:     "20250609_0917_KST",
			KeywordID:      "gpt_4o",
			Keyword:        "GPT-4o",
			SummaryShort:   "캐시된 요약",
			SummaryShortEn: "Cached summary",
			PrimaryType:    "news",
		},
	}
	sourceRepo := &fakeSourceRepo{stored: []database.Source{cachedSource}}
	enricher := &fakeEnricher{}

	ranker := &fakeRanker{ranked: []rank.RankedKeyword{
		rankedEntry("gpt_4o", "GPT-4o", 1, false),
	}}

	runner := newTestRunner(&fakeCollector{}, &fakeExtractor{}, &fakeMatcher{}, ranker,
		enricher, snapshotRepo, keywordRepo, sourceRepo)

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if summary.ReusedCount != 1 || summary.KeywordCount != 1 {
		t.Errorf("Expected full reuse, got %+v", summary)
	}
	if enricher.callCount() != 0 {
		t.Errorf("Expected enricher to be skipped, got %d calls", enricher.callCount())
	}

	rows := keywordRepo.insertedRows()
	if len(rows) != 1 {
		t.Fatalf("Expected 1 keyword row, got %d", len(rows))
	}
	if rows[0].SummaryShort != "캐시된 요약" || rows[0].SummaryShortEn != "Cached summary" {
		t.Errorf("Expected cached summaries to be copied, got %+v", rows[0])
	}

	if len(sourceRepo.upserted) != 1 {
		t.Fatalf("Expected cached source to be re-inserted, got %d", len(sourceRepo.upserted))
	}
	if sourceRepo.upserted[0].SnapshotID == cachedSource.SnapshotID {
		t.Error("Expected re-inserted source to carry the new snapshot ID")
	}
}

func TestRunner_DetailedAndLightweightSplit(t *testing.T) {
	testConfig()

	snapshotRepo := &fakeSnapshotRepo{}
	keywordRepo := &fakeKeywordRepo{}
	sourceRepo := &fakeSourceRepo{}
	enricher := &fakeEnricher{result: enrich.Result{
		SummaryKo:   "요약",
		SummaryEn:   "Summary",
		PrimaryType: "news",
		Sources: []enrich.Source{
			{Type: "news", Title: "t", URL: "https://example.com/a", Domain: "example.com", ImageURL: enrich.DefaultImageURL},
		},
	}}

	ranker := &fakeRanker{ranked: []rank.RankedKeyword{
		rankedEntry("first", "First", 1, true),
		rankedEntry("second", "Second", 2, false),
		rankedEntry("third", "Third", 3, false),
	}}

	runner := newTestRunner(&fakeCollector{}, &fakeExtractor{}, &fakeMatcher{}, ranker,
		enricher, snapshotRepo, keywordRepo, sourceRepo)

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if enricher.callCount() != 2 {
		t.Errorf("Expected 2 enrichment calls for the detailed slice, got %d", enricher.callCount())
	}
	if summary.KeywordCount != 3 {
		t.Errorf("Expected 3 keyword rows, got %d", summary.KeywordCount)
	}
	if summary.NewCount != 1 {
		t.Errorf("Expected 1 new keyword, got %d", summary.NewCount)
	}

	var lightweight *database.Keyword
	for _, row := range keywordRepo.insertedRows() {
		if row.KeywordID == "third" {
			lightweight = &row
		}
	}
	if lightweight == nil {
		t.Fatal("Expected lightweight row for third keyword")
	}
	if lightweight.SummaryShort != "" || lightweight.PrimaryType != "news" {
		t.Errorf("Expected empty summary and news type on lightweight row, got %+v", lightweight)
	}
}

func TestRunPool_RunsAllTasks(t *testing.T) {
	var mu sync.Mutex
	ran := 0

	tasks := make([]func(ctx context.Context), 25)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) {
			mu.Lock()
			ran++
			mu.Unlock()
		}
	}

	RunPool(context.Background(), 3, tasks)

	if ran != 25 {
		t.Errorf("Expected all 25 tasks to run, got %d", ran)
	}
}
