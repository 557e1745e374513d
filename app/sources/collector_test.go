package sources

import (
	"context"
	"testing"
	"time"
)

// stubAdapter returns a fixed item list
type stubAdapter struct {
	name  string
	items []Item
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Collect(ctx context.Context, windowHours int) []Item {
	return s.items
}

func TestCollector_DedupKeepsFirstOccurrence(t *testing.T) {
	now := time.Now().UTC()

	curated := &stubAdapter{name: "curated", items: []Item{
		{Title: "Curated coverage", Link: "https://example.com/story", Tier: TierP0Curated, PublishedAt: now},
	}}
	community := &stubAdapter{name: "community", items: []Item{
		{Title: "Community repost", Link: "https://example.com/story", Tier: TierCommunity, PublishedAt: now},
		{Title: "Fresh community story", Link: "https://example.com/other", Tier: TierCommunity, PublishedAt: now},
	}}

	items := NewCollector(curated, community).Run(context.Background(), 48)

	if len(items) != 2 {
		t.Fatalf("Expected 2 deduplicated items, got %d", len(items))
	}
	if items[0].Tier != TierP0Curated {
		t.Errorf("Expected the curated occurrence to win, got tier %v", items[0].Tier)
	}
	if items[0].Title != "Curated coverage" {
		t.Errorf("Expected curated item first, got %q", items[0].Title)
	}
}

func TestCollector_RegistrationOrderIsPriority(t *testing.T) {
	now := time.Now().UTC()
	shared := "https://example.com/shared"

	first := &stubAdapter{name: "first", items: []Item{
		{Title: "From first", Link: shared, Tier: TierP1Context, PublishedAt: now},
	}}
	second := &stubAdapter{name: "second", items: []Item{
		{Title: "From second", Link: shared, Tier: TierP0Curated, PublishedAt: now},
	}}

	// Even a better tier loses when its adapter is registered later
	items := NewCollector(first, second).Run(context.Background(), 48)

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].Title != "From first" {
		t.Errorf("Expected registration order to decide, got %q", items[0].Title)
	}
}

func TestCollector_SkipsEmptyLinks(t *testing.T) {
	adapter := &stubAdapter{name: "broken", items: []Item{
		{Title: "No link item", Link: ""},
	}}

	items := NewCollector(adapter).Run(context.Background(), 48)
	if len(items) != 0 {
		t.Errorf("Expected linkless items to be dropped, got %d", len(items))
	}
}

func TestCollector_NoAdapters(t *testing.T) {
	items := NewCollector().Run(context.Background(), 48)
	if len(items) != 0 {
		t.Errorf("Expected no items from no adapters, got %d", len(items))
	}
}
