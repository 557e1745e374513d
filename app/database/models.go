package database

import (
	"time"
)

// Snapshot is one immutable pipeline run result.
type Snapshot struct {
	SnapshotID      string
	UpdatedAtUTC    time.Time
	NextUpdateAtUTC time.Time
	CreatedAt       time.Time
}

// Keyword is one ranked keyword row within a snapshot.
type Keyword struct {
	SnapshotID        string
	KeywordID         string
	Keyword           string
	Rank              int
	DeltaRank         int
	IsNew             bool
	Score             float64
	ScoreRecency      float64
	ScoreFrequency    float64
	ScoreAuthority    float64
	ScoreInternal     float64
	SummaryShort      string
	SummaryShortEn    string
	PrimaryType       string
	TopSourceTitle    string
	TopSourceURL      string
	TopSourceDomain   string
	TopSourceImageURL string
	CreatedAt         time.Time
}

// Source is one enrichment source row attached to a keyword.
type Source struct {
	ID             int64
	SnapshotID     string
	KeywordID      string
	Type           string
	Title          string
	URL            string
	Domain         string
	PublishedAtUTC *time.Time
	Snippet        string
	ImageURL       string
	TitleKo        string
	TitleEn        string
	CreatedAt      time.Time
}
