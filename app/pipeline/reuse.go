package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/minhokang/trendsnap/app/database"
)

// ReuseCache answers whether a keyword was already enriched in one of the
// recent snapshots, so its summary and sources can be copied instead of
// paying for search and summarization again.
type ReuseCache struct {
	snapshotRepo database.SnapshotRepository
	keywordRepo  database.KeywordRepository
	sourceRepo   database.SourceRepository
	window       int
}

func NewReuseCache(snapshotRepo database.SnapshotRepository, keywordRepo database.KeywordRepository,
	sourceRepo database.SourceRepository, window int) *ReuseCache {
	return &ReuseCache{
		snapshotRepo: snapshotRepo,
		keywordRepo:  keywordRepo,
		sourceRepo:   sourceRepo,
		window:       window,
	}
}

// Lookup returns the cached keyword row and its sources from the most
// recent of the last window snapshots containing it. A row without any
// source is not a usable cache hit.
func (c *ReuseCache) Lookup(keywordID, currentSnapshotID string) (*database.Keyword, []database.Source, error) {
	if c.window == 0 {
		return nil, nil, nil
	}

	recentIDs, err := c.snapshotRepo.GetRecentSnapshotIDs(c.window + 1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list recent snapshots: %w", err)
	}

	candidateIDs := make([]string, 0, len(recentIDs))
	for _, id := range recentIDs {
		if id == currentSnapshotID {
			continue
		}
		if len(candidateIDs) == c.window {
			break
		}
		candidateIDs = append(candidateIDs, id)
	}
	if len(candidateIDs) == 0 {
		return nil, nil, nil
	}

	cached, err := c.keywordRepo.GetLatestKeyword(keywordID, candidateIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up cached keyword: %w", err)
	}
	if cached == nil {
		return nil, nil, nil
	}

	cachedSources, err := c.sourceRepo.GetSources(cached.SnapshotID, keywordID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cached sources: %w", err)
	}
	if len(cachedSources) == 0 {
		slog.Debug("Cached keyword has no sources, falling through to enrichment", "keyword_id", keywordID)
		return nil, nil, nil
	}

	return cached, cachedSources, nil
}
