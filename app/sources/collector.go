package sources

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Collector fans all adapters out in parallel and merges their results in
// registration order. Registration order is the tier-priority merge order:
// curated RSS, curated markdown, releases, changelogs, YouTube, Hacker News,
// GDELT, GitHub search. The first occurrence of each URL wins, so duplicate
// URLs from lower-priority families are dropped.
type Collector struct {
	adapters []Adapter
}

func NewCollector(adapters ...Adapter) *Collector {
	return &Collector{adapters: adapters}
}

// Run launches every adapter concurrently with settled semantics: a failing
// adapter contributes an empty slice and never aborts the others.
func (c *Collector) Run(ctx context.Context, windowHours int) []Item {
	results := make([][]Item, len(c.adapters))

	g := new(errgroup.Group)
	for i, adapter := range c.adapters {
		g.Go(func() error {
			results[i] = adapter.Collect(ctx, windowHours)
			slog.Info("Adapter finished", "adapter", adapter.Name(), "items", len(results[i]))
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]bool)
	var merged []Item
	duplicates := 0

	for _, adapterItems := range results {
		for _, item := range adapterItems {
			if item.Link == "" || seen[item.Link] {
				duplicates++
				continue
			}
			seen[item.Link] = true
			merged = append(merged, item)
		}
	}

	slog.Info("Collection completed", "adapters", len(c.adapters), "items", len(merged), "duplicates", duplicates)
	return merged
}
