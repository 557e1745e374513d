package pipeline

import (
	"testing"

	"github.com/minhokang/trendsnap/app/database"
)

func TestReuseCache_WindowZeroNeverHits(t *testing.T) {
	cache := NewReuseCache(&fakeSnapshotRepo{recentIDs: []string{"a"}},
		&fakeKeywordRepo{cached: &database.Keyword{}}, &fakeSourceRepo{}, 0)

	keyword, srcs, err := cache.Lookup("gpt_4o", "current")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if keyword != nil || srcs != nil {
		t.Error("Expected no hit with a zero window")
	}
}

func TestReuseCache_ExcludesCurrentSnapshot(t *testing.T) {
	keywordRepo := &fakeKeywordRepo{}
	cache := NewReuseCache(&fakeSnapshotRepo{recentIDs: []string{"current"}},
		keywordRepo, &fakeSourceRepo{}, 4)

	keyword, _, err := cache.Lookup("gpt_4o", "current")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if keyword != nil {
		t.Error("Expected no hit when only the current snapshot exists")
	}
}

func TestReuseCache_MissWithoutSources(t *testing.T) {
	cache := NewReuseCache(&fakeSnapshotRepo{recentIDs: []string{"prev"}},
		&fakeKeywordRepo{cached: &database.Keyword{SnapshotID: "prev", KeywordID: "gpt_4o"}},
		&fakeSourceRepo{}, 4)

	keyword, _, err := cache.Lookup("gpt_4o", "current")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if keyword != nil {
		t.Error("Expected a cached row without sources to be a miss")
	}
}

func TestReuseCache_Hit(t *testing.T) {
	cached := &database.Keyword{SnapshotID: "prev", KeywordID: "gpt_4o", SummaryShort: "요약"}
	stored := []database.Source{{SnapshotID: "prev", KeywordID: "gpt_4o", Type: "news", URL: "https://a.com/1"}}

	cache := NewReuseCache(&fakeSnapshotRepo{recentIDs: []string{"prev"}},
		&fakeKeywordRepo{cached: cached}, &fakeSourceRepo{stored: stored}, 4)

	keyword, srcs, err := cache.Lookup("gpt_4o", "current")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if keyword == nil {
		t.Fatal("Expected a cache hit")
	}
	if keyword.SummaryShort != "요약" {
		t.Errorf("Expected cached summary, got %q", keyword.SummaryShort)
	}
	if len(srcs) != 1 {
		t.Errorf("Expected cached sources, got %d", len(srcs))
	}
}
