package database

import (
	"database/sql"
	"fmt"
)

type KeywordRepositoryImpl struct {
	db *DB
}

var _ KeywordRepository = (*KeywordRepositoryImpl)(nil)

func NewKeywordRepository(db *DB) *KeywordRepositoryImpl {
	return &KeywordRepositoryImpl{db: db}
}

// InsertKeyword writes one ranked keyword row. The composite primary key
// absorbs retries of the same snapshot.
func (r *KeywordRepositoryImpl) InsertKeyword(keyword Keyword) error {
	_, err := r.db.Exec(`
		INSERT INTO keywords (
			snapshot_id, keyword_id, keyword, rank, delta_rank, is_new,
			score, score_recency, score_frequency, score_authority, score_internal,
			summary_short, summary_short_en, primary_type,
			top_source_title, top_source_url, top_source_domain, top_source_image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (snapshot_id, keyword_id) DO NOTHING
	`, keyword.SnapshotID, keyword.KeywordID, keyword.Keyword, keyword.Rank,
		keyword.DeltaRank, keyword.IsNew, keyword.Score, keyword.ScoreRecency,
		keyword.ScoreFrequency, keyword.ScoreAuthority, keyword.ScoreInternal,
		keyword.SummaryShort, keyword.SummaryShortEn, keyword.PrimaryType,
		nullable(keyword.TopSourceTitle), nullable(keyword.TopSourceURL),
		nullable(keyword.TopSourceDomain), nullable(keyword.TopSourceImageURL))

	if err != nil {
		return fmt.Errorf("failed to insert keyword: %w", err)
	}

	return nil
}

// GetPreviousRanks returns, per keyword ID, the rank in the most recent
// snapshot before the given one that contains that keyword.
func (r *KeywordRepositoryImpl) GetPreviousRanks(beforeSnapshotID string) (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT ON (keyword_id) keyword_id, rank
		FROM keywords
		WHERE snapshot_id < $1
		ORDER BY keyword_id, snapshot_id DESC
	`, beforeSnapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get previous ranks: %w", err)
	}
	defer rows.Close()

	ranks := make(map[string]int)
	for rows.Next() {
		var keywordID string
		var rank int
		if err := rows.Scan(&keywordID, &rank); err != nil {
			return nil, fmt.Errorf("failed to scan rank row: %w", err)
		}
		ranks[keywordID] = rank
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rank rows: %w", err)
	}

	return ranks, nil
}

// GetLatestKeyword returns the newest row for a keyword within the given
// snapshot set, or nil when the keyword appears in none of them.
func (r *KeywordRepositoryImpl) GetLatestKeyword(keywordID string, snapshotIDs []string) (*Keyword, error) {
	if len(snapshotIDs) == 0 {
		return nil, nil
	}

	row := r.db.QueryRow(`
		SELECT snapshot_id, keyword_id, keyword, rank, delta_rank, is_new,
		       score, score_recency, score_frequency, score_authority, score_internal,
		       summary_short, summary_short_en, primary_type,
		       COALESCE(top_source_title, ''), COALESCE(top_source_url, ''),
		       COALESCE(top_source_domain, ''), COALESCE(top_source_image_url, ''),
		       created_at
		FROM keywords
		WHERE keyword_id = $1 AND snapshot_id = ANY($2)
		ORDER BY snapshot_id DESC
		LIMIT 1
	`, keywordID, quoteIDs(snapshotIDs))

	var keyword Keyword
	err := row.Scan(
		&keyword.SnapshotID, &keyword.KeywordID, &keyword.Keyword, &keyword.Rank,
		&keyword.DeltaRank, &keyword.IsNew, &keyword.Score, &keyword.ScoreRecency,
		&keyword.ScoreFrequency, &keyword.ScoreAuthority, &keyword.ScoreInternal,
		&keyword.SummaryShort, &keyword.SummaryShortEn, &keyword.PrimaryType,
		&keyword.TopSourceTitle, &keyword.TopSourceURL,
		&keyword.TopSourceDomain, &keyword.TopSourceImageURL,
		&keyword.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest keyword: %w", err)
	}

	return &keyword, nil
}

// InsertAliases records alias mappings for the search surface, best-effort.
func (r *KeywordRepositoryImpl) InsertAliases(keywordID string, aliases []string, lang string) error {
	for _, alias := range aliases {
		_, err := r.db.Exec(`
			INSERT INTO keyword_aliases (canonical_keyword_id, alias, lang)
			VALUES ($1, $2, $3)
			ON CONFLICT (canonical_keyword_id, alias) DO NOTHING
		`, keywordID, alias, lang)
		if err != nil {
			return fmt.Errorf("failed to insert alias: %w", err)
		}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
