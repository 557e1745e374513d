package database

// SnapshotRepository persists and queries pipeline snapshots.
type SnapshotRepository interface {
	InsertSnapshot(snapshot Snapshot) error
	GetRecentSnapshotIDs(limit int) ([]string, error)
	GetLatestSnapshotID() (string, error)
	GetSnapshotCount() (int, error)
}

// KeywordRepository persists keyword rows and serves rank history.
type KeywordRepository interface {
	InsertKeyword(keyword Keyword) error
	GetPreviousRanks(beforeSnapshotID string) (map[string]int, error)
	GetLatestKeyword(keywordID string, snapshotIDs []string) (*Keyword, error)
	InsertAliases(keywordID string, aliases []string, lang string) error
}

// SourceRepository persists enrichment sources.
type SourceRepository interface {
	UpsertSource(source Source) error
	GetSources(snapshotID, keywordID string) ([]Source, error)
	CountSources(snapshotID, keywordID string) (int, error)
}
