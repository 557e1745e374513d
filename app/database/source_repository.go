package database

import (
	"fmt"
)

type SourceRepositoryImpl struct {
	db *DB
}

var _ SourceRepository = (*SourceRepositoryImpl)(nil)

func NewSourceRepository(db *DB) *SourceRepositoryImpl {
	return &SourceRepositoryImpl{db: db}
}

// UpsertSource inserts one source row, refreshing mutable fields when the
// same (snapshot, keyword, type, url) is written again.
func (r *SourceRepositoryImpl) UpsertSource(source Source) error {
	_, err := r.db.Exec(`
		INSERT INTO sources (
			snapshot_id, keyword_id, type, title, url, domain,
			published_at_utc, snippet, image_url, title_ko, title_en
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (snapshot_id, keyword_id, type, url) DO UPDATE SET
			title = EXCLUDED.title,
			snippet = EXCLUDED.snippet,
			image_url = EXCLUDED.image_url,
			title_ko = EXCLUDED.title_ko,
			title_en = EXCLUDED.title_en
	`, source.SnapshotID, source.KeywordID, source.Type, source.Title,
		source.URL, source.Domain, source.PublishedAtUTC,
		nullable(source.Snippet), source.ImageURL,
		nullable(source.TitleKo), nullable(source.TitleEn))

	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

// GetSources returns the sources attached to one keyword within one
// snapshot, in insertion order.
func (r *SourceRepositoryImpl) GetSources(snapshotID, keywordID string) ([]Source, error) {
	rows, err := r.db.Query(`
		SELECT id, snapshot_id, keyword_id, type, title, url, domain,
		       published_at_utc, COALESCE(snippet, ''), image_url,
		       COALESCE(title_ko, ''), COALESCE(title_en, ''), created_at
		FROM sources
		WHERE snapshot_id = $1 AND keyword_id = $2
		ORDER BY id
	`, snapshotID, keywordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}
	defer rows.Close()

	var result []Source
	for rows.Next() {
		var source Source
		err := rows.Scan(
			&source.ID, &source.SnapshotID, &source.KeywordID, &source.Type,
			&source.Title, &source.URL, &source.Domain, &source.PublishedAtUTC,
			&source.Snippet, &source.ImageURL, &source.TitleKo, &source.TitleEn,
			&source.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		result = append(result, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return result, nil
}

func (r *SourceRepositoryImpl) CountSources(snapshotID, keywordID string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM sources WHERE snapshot_id = $1 AND keyword_id = $2
	`, snapshotID, keywordID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sources: %w", err)
	}
	return count, nil
}
